package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/dtos"
)

func TestAdminRoutesRequireStaff(t *testing.T) {
	s := newServer(t)
	_, token := s.user("plain", domain.UserTypePlayer)

	rec := s.do(http.MethodGet, "/api/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, envelope(t, rec, nil).Success)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/admin/users", "", nil).Code)
}

func TestAdminModerationFlow(t *testing.T) {
	s := newServer(t)
	admin, adminToken := s.staff("chief", domain.RoleAdmin)
	_, modToken := s.staff("warden", domain.RoleModerator)
	target, targetToken := s.user("rowdy", domain.UserTypePlayer)
	base := fmt.Sprintf("/api/admin/users/%d", target.ID)

	rec := s.do(http.MethodPost, base+"/ban", modToken, map[string]string{"reason": " abusive comments "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var banned dtos.AdminUserResponse
	envelope(t, rec, &banned)
	assert.True(t, banned.Banned)
	assert.NotNil(t, banned.BannedAt)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/auth/me", targetToken, nil).Code)

	rec = s.do(http.MethodPost, base+"/unban", modToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/v1/auth/me", targetToken, nil).Code)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, base+"/role", modToken, map[string]string{"role": "moderator"}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodPatch, base+"/role", adminToken, map[string]string{"role": "owner"}).Code)
	rec = s.do(http.MethodPatch, base+"/role", adminToken, map[string]string{"role": "moderator"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var promoted dtos.AdminUserResponse
	envelope(t, rec, &promoted)
	assert.Equal(t, string(domain.RoleModerator), promoted.Role)

	self := fmt.Sprintf("/api/admin/users/%d/deactivate", admin.ID)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, self, adminToken, nil).Code)

	rec = s.do(http.MethodGet, "/api/admin/audit_logs", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs paged[domain.AuditLog]
	envelope(t, rec, &logs)
	require.Len(t, logs.Items, 3)
	assert.Equal(t, int64(3), logs.Pagination.Total)
	actions := make([]string, 0, len(logs.Items))
	for _, entry := range logs.Items {
		actions = append(actions, entry.Action)
		if entry.Action == domain.AuditBan {
			assert.Equal(t, "abusive comments", entry.Reason)
			assert.Equal(t, target.ID, entry.RecordID)
		}
	}
	assert.ElementsMatch(t, []string{domain.AuditBan, domain.AuditUnban, domain.AuditChangeRole}, actions)
}

func TestAdminSoftDeleteAndRestore(t *testing.T) {
	s := newServer(t)
	_, adminToken := s.staff("chief", domain.RoleAdmin)
	_, modToken := s.staff("warden", domain.RoleModerator)
	target, _ := s.user("leaver", domain.UserTypeCoach)
	base := fmt.Sprintf("/api/admin/users/%d", target.ID)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, base, modToken, nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, base, adminToken, map[string]string{"reason": "requested"}).Code)

	rec := s.do(http.MethodGet, "/api/admin/users?status=deleted", adminToken, nil)
	var deleted paged[dtos.AdminUserResponse]
	envelope(t, rec, &deleted)
	require.Len(t, deleted.Items, 1)
	assert.Equal(t, target.ID, deleted.Items[0].ID)

	rec = s.do(http.MethodPost, base+"/restore", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, base+"/restore", adminToken, nil).Code)
}

func TestAdminVerifyContact(t *testing.T) {
	s := newServer(t)
	_, modToken := s.staff("warden", domain.RoleModerator)
	target, targetToken := s.user("unverified", domain.UserTypeClub)

	rec := s.do(http.MethodPost, fmt.Sprintf("/api/admin/users/%d/verify_email", target.ID), modToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/v1/auth/me", targetToken, nil)
	var me dtos.UserResponse
	envelope(t, rec, &me)
	assert.True(t, me.EmailVerified)
	assert.False(t, me.PhoneVerified)
}

func TestAdminListAndExport(t *testing.T) {
	s := newServer(t)
	_, modToken := s.staff("warden", domain.RoleModerator)
	for _, name := range []string{"alpha", "alpine", "bravo"} {
		s.user(name, domain.UserTypePlayer)
	}

	rec := s.do(http.MethodGet, "/api/admin/users?q=alp&per_page=1", modToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list paged[dtos.AdminUserResponse]
	envelope(t, rec, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, int64(2), list.Pagination.Total)
	assert.Equal(t, 2, list.Pagination.TotalPages)

	rec = s.do(http.MethodGet, "/api/admin/users/export?q=alp", modToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "users_export_")
	assert.Equal(t, "2", rec.Header().Get("X-Total-Count"))

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Username", rows[0][1])
	assert.ElementsMatch(t, []string{"alpha", "alpine"}, []string{rows[1][1], rows[2][1]})
}
