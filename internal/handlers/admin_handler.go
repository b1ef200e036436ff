// File: internal/handlers/admin_handler.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/dtos"
	"github.com/iyunix/go-linksports/internal/repository"
	"github.com/iyunix/go-linksports/internal/repository/audit"
	"github.com/iyunix/go-linksports/internal/repository/user"
	"github.com/iyunix/go-linksports/internal/services/admin_services"
)

type AdminHandler struct {
	adminService *admin_services.AdminService
	logger       Logger
}

func NewAdminHandler(adminService *admin_services.AdminService, logger Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// ListUsers handles GET /users with page, per_page, q and status filters.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	f := userFilter(r)
	users, total, err := h.adminService.ListUsers(r.Context(), currentUser(r), f)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	perPage, _ := repository.Page(f.Page, f.PerPage, user.DefaultPerPage, user.MaxPerPage)
	respondPaged(w, dtos.ToAdminUserSlice(users), f.Page, perPage, total)
}

// ExportUsers streams the filtered users as a CSV attachment. The export is
// buffered so a failure part way still yields a JSON error.
func (h *AdminHandler) ExportUsers(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	count, err := h.adminService.ExportUsersCSV(r.Context(), currentUser(r), userFilter(r), &buf)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	filename := fmt.Sprintf("users_export_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Total-Count", strconv.Itoa(count))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("csv export write failed", "error", err)
	}
}

func (h *AdminHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "User activated", func(id uint, _ string) (*domain.User, error) {
		return h.adminService.Activate(r.Context(), currentUser(r), id)
	})
}

func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "User deactivated", func(id uint, reason string) (*domain.User, error) {
		return h.adminService.Deactivate(r.Context(), currentUser(r), id, reason)
	})
}

func (h *AdminHandler) Ban(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "User banned", func(id uint, reason string) (*domain.User, error) {
		return h.adminService.Ban(r.Context(), currentUser(r), id, reason)
	})
}

func (h *AdminHandler) Unban(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "User unbanned", func(id uint, _ string) (*domain.User, error) {
		return h.adminService.Unban(r.Context(), currentUser(r), id)
	})
}

func (h *AdminHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "User restored", func(id uint, _ string) (*domain.User, error) {
		return h.adminService.Restore(r.Context(), currentUser(r), id)
	})
}

func (h *AdminHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req dtos.ChangeRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	u, err := h.adminService.ChangeRole(r.Context(), currentUser(r), id, domain.Role(req.Role))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, dtos.ToAdminUser(*u), "Role updated")
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	reason, err := h.reason(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.adminService.SoftDelete(r.Context(), currentUser(r), id, reason); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil, "User deleted")
}

func (h *AdminHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	h.verifyContact(w, r, domain.ContactEmail)
}

func (h *AdminHandler) VerifyPhone(w http.ResponseWriter, r *http.Request) {
	h.verifyContact(w, r, domain.ContactPhone)
}

func (h *AdminHandler) verifyContact(w http.ResponseWriter, r *http.Request, channel domain.ContactType) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	contact, err := h.adminService.VerifyContact(r.Context(), currentUser(r), id, channel)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"user_id":      id,
		"contact_type": contact.ContactType,
		"verified":     contact.Verified,
	}, fmt.Sprintf("%s marked as verified", channel))
}

func (h *AdminHandler) CreateSport(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateSportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	sport := req.ToDomain()
	if err := h.adminService.CreateSport(r.Context(), currentUser(r), sport); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusCreated, sport, "Sport created")
}

func (h *AdminHandler) CreateAttribute(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateAttributeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	attr := req.ToDomain()
	if err := h.adminService.CreateAttribute(r.Context(), currentUser(r), attr, req.SportIDs); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusCreated, attr, "Sport attribute created")
}

func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	logs, total, err := h.adminService.AuditLogs(r.Context(), currentUser(r), page, perPage)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	perPage, _ = repository.Page(page, perPage, audit.DefaultPerPage, audit.MaxPerPage)
	respondPaged(w, logs, page, perPage, total)
}

func (h *AdminHandler) moderate(w http.ResponseWriter, r *http.Request, message string, action func(id uint, reason string) (*domain.User, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	reason, err := h.reason(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	u, err := action(id, reason)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, dtos.ToAdminUser(*u), message)
}

// reason reads the optional {"reason": "..."} body.
func (h *AdminHandler) reason(w http.ResponseWriter, r *http.Request) (string, error) {
	if r.ContentLength == 0 {
		return "", nil
	}
	var req dtos.ReasonRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if r.ContentLength < 0 && err.Error() == errEmptyBody {
			return "", nil
		}
		return "", err
	}
	return req.Reason, nil
}

func userFilter(r *http.Request) user.UserFilter {
	page, perPage := pageParams(r)
	q := r.URL.Query()
	return user.UserFilter{
		Page:    page,
		PerPage: perPage,
		Search:  q.Get("q"),
		Status:  q.Get("status"),
	}
}
