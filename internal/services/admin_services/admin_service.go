// File: internal/services/admin_services/admin_service.go
package admin_services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/repository/audit"
	"github.com/iyunix/go-linksports/internal/repository/contact"
	"github.com/iyunix/go-linksports/internal/repository/user"
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// SportCatalog creates taxonomy entries with their validation rules.
type SportCatalog interface {
	CreateSport(ctx context.Context, sp *domain.Sport) error
	CreateAttribute(ctx context.Context, a *domain.SportAttribute, sportIDs []uint) error
}

// ErrSelfAction is returned when an admin targets their own account.
var ErrSelfAction = fmt.Errorf("cannot change your own account: %w", domain.ErrForbidden)

const exportBatchSize = 100

// AdminService provides functionalities for administrative tasks. Every
// mutation is written to the audit log.
type AdminService struct {
	userRepo    user.UserRepository
	contactRepo contact.ContactRepository
	auditRepo   audit.AuditRepository
	sports      SportCatalog
	logger      Logger
	now         func() time.Time
}

func NewAdminService(userRepo user.UserRepository, contactRepo contact.ContactRepository, auditRepo audit.AuditRepository, sports SportCatalog, logger Logger) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		contactRepo: contactRepo,
		auditRepo:   auditRepo,
		sports:      sports,
		logger:      logger,
		now:         time.Now,
	}
}

// ListUsers returns a page of users matching the filter.
func (s *AdminService) ListUsers(ctx context.Context, actor *domain.User, f user.UserFilter) ([]domain.User, int64, error) {
	if err := requireStaff(actor); err != nil {
		return nil, 0, err
	}
	users, total, err := s.userRepo.FindFiltered(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// ExportUsersCSV writes every user matching the filter as CSV, one page at
// a time.
func (s *AdminService) ExportUsersCSV(ctx context.Context, actor *domain.User, f user.UserFilter, w io.Writer) (int, error) {
	if err := requireStaff(actor); err != nil {
		return 0, err
	}

	csvWriter := csv.NewWriter(w)
	header := []string{"ID", "Username", "Email", "Phone", "FirstName", "LastName", "UserType", "Role", "Active", "Banned", "CreatedAt"}
	if err := csvWriter.Write(header); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}

	written := 0
	f.PerPage = exportBatchSize
	for page := 1; ; page++ {
		f.Page = page
		users, total, err := s.userRepo.FindFiltered(ctx, f)
		if err != nil {
			return written, fmt.Errorf("failed to load users for export: %w", err)
		}
		for _, u := range users {
			record := []string{
				strconv.FormatUint(uint64(u.ID), 10),
				u.Username,
				u.Email,
				u.Phone,
				u.FirstName,
				u.LastName,
				string(u.UserType),
				string(u.Role),
				strconv.FormatBool(u.Active),
				strconv.FormatBool(u.Banned),
				u.CreatedAt.UTC().Format(time.RFC3339),
			}
			if err := csvWriter.Write(record); err != nil {
				return written, fmt.Errorf("failed to write csv record for user %d: %w", u.ID, err)
			}
			written++
		}
		if len(users) < exportBatchSize || int64(written) >= total {
			break
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return written, fmt.Errorf("failed to flush csv: %w", err)
	}
	s.logger.Info("users exported", "admin_id", actor.ID, "count", written)
	return written, nil
}

func (s *AdminService) Activate(ctx context.Context, actor *domain.User, userID uint) (*domain.User, error) {
	return s.updateUser(ctx, actor, userID, domain.AuditActivate, "", requireStaff, func(u *domain.User) map[string]interface{} {
		return map[string]interface{}{"active": true}
	})
}

func (s *AdminService) Deactivate(ctx context.Context, actor *domain.User, userID uint, reason string) (*domain.User, error) {
	return s.updateUser(ctx, actor, userID, domain.AuditDeactivate, reason, requireStaff, func(u *domain.User) map[string]interface{} {
		return map[string]interface{}{"active": false}
	})
}

func (s *AdminService) Ban(ctx context.Context, actor *domain.User, userID uint, reason string) (*domain.User, error) {
	return s.updateUser(ctx, actor, userID, domain.AuditBan, reason, requireStaff, func(u *domain.User) map[string]interface{} {
		return map[string]interface{}{"banned": true, "banned_at": s.now()}
	})
}

func (s *AdminService) Unban(ctx context.Context, actor *domain.User, userID uint) (*domain.User, error) {
	return s.updateUser(ctx, actor, userID, domain.AuditUnban, "", requireStaff, func(u *domain.User) map[string]interface{} {
		return map[string]interface{}{"banned": false, "banned_at": nil}
	})
}

// ChangeRole is restricted to admins.
func (s *AdminService) ChangeRole(ctx context.Context, actor *domain.User, userID uint, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		verr := domain.NewValidationError()
		verr.Add("role", "is not included in the list")
		return nil, verr
	}
	return s.updateUser(ctx, actor, userID, domain.AuditChangeRole, "", requireAdmin, func(u *domain.User) map[string]interface{} {
		return map[string]interface{}{"role": role}
	})
}

// SoftDelete hides the user from every lookup while keeping the row and its
// unique values.
func (s *AdminService) SoftDelete(ctx context.Context, actor *domain.User, userID uint, reason string) error {
	if err := checkTarget(actor, userID, requireAdmin); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	return s.record(ctx, actor, domain.AuditSoftDelete, "User", userID, reason, map[string]any{"deleted": []any{false, true}})
}

func (s *AdminService) Restore(ctx context.Context, actor *domain.User, userID uint) (*domain.User, error) {
	if err := checkTarget(actor, userID, requireAdmin); err != nil {
		return nil, err
	}
	if err := s.userRepo.Restore(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.record(ctx, actor, domain.AuditRestore, "User", userID, "", map[string]any{"deleted": []any{true, false}}); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(ctx, userID)
}

// VerifyContact marks the user's current address on channel verified
// without a code, creating the contact record if needed.
func (s *AdminService) VerifyContact(ctx context.Context, actor *domain.User, userID uint, channel domain.ContactType) (*domain.UserContact, error) {
	if !channel.Valid() {
		return nil, fmt.Errorf("unknown contact type %q", channel)
	}
	if err := checkTarget(actor, userID, requireStaff); err != nil {
		return nil, err
	}
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	c, err := s.contactRepo.FindOrCreate(ctx, u.ID, channel, u.ChannelValue(channel))
	if err != nil {
		if errors.Is(err, contact.ErrContactTaken) {
			verr := domain.NewValidationError()
			verr.Add(string(channel), "has already been taken")
			return nil, verr
		}
		return nil, err
	}
	was := c.Verified
	c.MarkVerified()
	if err := s.contactRepo.MarkVerified(ctx, c); err != nil {
		return nil, err
	}

	action := domain.AuditVerifyEmail
	if channel == domain.ContactPhone {
		action = domain.AuditVerifyPhone
	}
	changes := map[string]any{}
	if !was {
		changes["verified"] = []any{false, true}
	}
	if err := s.record(ctx, actor, action, "UserContact", c.ID, "", changes); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *AdminService) CreateSport(ctx context.Context, actor *domain.User, sp *domain.Sport) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.sports.CreateSport(ctx, sp); err != nil {
		return err
	}
	return s.record(ctx, actor, domain.AuditCreateSport, "Sport", sp.ID, "", map[string]any{
		"name":     []any{nil, sp.Name},
		"category": []any{nil, sp.Category},
	})
}

func (s *AdminService) CreateAttribute(ctx context.Context, actor *domain.User, a *domain.SportAttribute, sportIDs []uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.sports.CreateAttribute(ctx, a, sportIDs); err != nil {
		return err
	}
	return s.record(ctx, actor, domain.AuditCreateAttr, "SportAttribute", a.ID, "", map[string]any{
		"key":        []any{nil, a.Key},
		"field_type": []any{nil, string(a.FieldType)},
		"sport_ids":  []any{nil, sportIDs},
	})
}

func (s *AdminService) AuditLogs(ctx context.Context, actor *domain.User, page, perPage int) ([]domain.AuditLog, int64, error) {
	if err := requireStaff(actor); err != nil {
		return nil, 0, err
	}
	return s.auditRepo.List(ctx, page, perPage)
}

// updateUser applies the fields returned by change, then records the
// columns whose value actually changed.
func (s *AdminService) updateUser(ctx context.Context, actor *domain.User, userID uint, action, reason string, allowed func(*domain.User) error, change func(*domain.User) map[string]interface{}) (*domain.User, error) {
	if err := checkTarget(actor, userID, allowed); err != nil {
		return nil, err
	}
	before, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := change(before)
	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		s.logger.Error("admin update failed", "error", err, "action", action, "user_id", userID, "admin_id", actor.ID)
		return nil, fmt.Errorf("failed to %s user: %w", strings.ReplaceAll(action, "_", " "), err)
	}
	after, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, actor, action, "User", userID, reason, diffUser(before, after, fields)); err != nil {
		return nil, err
	}
	return after, nil
}

func (s *AdminService) record(ctx context.Context, actor *domain.User, action, recordType string, recordID uint, reason string, changes map[string]any) error {
	entry := &domain.AuditLog{
		AdminUserID: actor.ID,
		Action:      action,
		RecordType:  recordType,
		RecordID:    recordID,
		Reason:      strings.TrimSpace(reason),
		Changes:     changes,
	}
	if err := s.auditRepo.Record(ctx, entry); err != nil {
		s.logger.Error("failed to write audit log", "error", err, "action", action, "record_id", recordID, "admin_id", actor.ID)
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	s.logger.Info("admin action", "action", action, "record_type", recordType, "record_id", recordID, "admin_id", actor.ID)
	return nil
}

// diffUser reports {column: [old, new]} for each updated column that changed.
func diffUser(before, after *domain.User, fields map[string]interface{}) map[string]any {
	changes := map[string]any{}
	for column := range fields {
		var old, cur any
		switch column {
		case "active":
			old, cur = before.Active, after.Active
		case "banned":
			old, cur = before.Banned, after.Banned
		case "banned_at":
			old, cur = timeOrNil(before.BannedAt), timeOrNil(after.BannedAt)
		case "role":
			old, cur = string(before.Role), string(after.Role)
		default:
			continue
		}
		if old != cur {
			changes[column] = []any{old, cur}
		}
	}
	return changes
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func requireStaff(actor *domain.User) error {
	if actor == nil || !actor.IsStaff() {
		return domain.ErrForbidden
	}
	return nil
}

func requireAdmin(actor *domain.User) error {
	if actor == nil || !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func checkTarget(actor *domain.User, userID uint, allowed func(*domain.User) error) error {
	if err := allowed(actor); err != nil {
		return err
	}
	if actor.ID == userID {
		return ErrSelfAction
	}
	return nil
}
