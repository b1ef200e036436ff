package admin_services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/repository/audit"
	"github.com/iyunix/go-linksports/internal/repository/contact"
	"github.com/iyunix/go-linksports/internal/repository/sport"
	"github.com/iyunix/go-linksports/internal/repository/user"
	"github.com/iyunix/go-linksports/internal/services"
	"github.com/iyunix/go-linksports/internal/services/sport_services"
	"github.com/iyunix/go-linksports/internal/testutil"
)

type adminFixture struct {
	db        *gorm.DB
	svc       *AdminService
	users     user.UserRepository
	contacts  contact.ContactRepository
	audits    audit.AuditRepository
	admin     *domain.User
	moderator *domain.User
	target    *domain.User
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	logger := &services.NoOpLogger{}
	users := user.NewGormUserRepository(db)
	contacts := contact.NewGormContactRepository(db)
	audits := audit.NewGormAuditRepository(db)
	sports := sport_services.NewSportService(sport.NewGormSportRepository(db), logger)

	svc := NewAdminService(users, contacts, audits, sports, logger)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC) }

	admin := testutil.CreateUser(t, db, "chief", domain.UserTypeClub)
	admin.Role = domain.RoleAdmin
	require.NoError(t, db.Save(admin).Error)
	moderator := testutil.CreateUser(t, db, "warden", domain.UserTypeCoach)
	moderator.Role = domain.RoleModerator
	require.NoError(t, db.Save(moderator).Error)

	return &adminFixture{
		db:        db,
		svc:       svc,
		users:     users,
		contacts:  contacts,
		audits:    audits,
		admin:     admin,
		moderator: moderator,
		target:    testutil.CreateUser(t, db, "rookie", domain.UserTypePlayer),
	}
}

func (f *adminFixture) logs(t *testing.T) []domain.AuditLog {
	t.Helper()
	logs, _, err := f.audits.List(context.Background(), 1, 50)
	require.NoError(t, err)
	return logs
}

func TestBanAndUnbanAreAudited(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	banned, err := f.svc.Ban(ctx, f.moderator, f.target.ID, "  spam  ")
	require.NoError(t, err)
	assert.True(t, banned.Banned)
	require.NotNil(t, banned.BannedAt)
	assert.False(t, banned.CanAuthenticate())

	logs := f.logs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditBan, logs[0].Action)
	assert.Equal(t, "User", logs[0].RecordType)
	assert.Equal(t, f.target.ID, logs[0].RecordID)
	assert.Equal(t, f.moderator.ID, logs[0].AdminUserID)
	assert.Equal(t, "spam", logs[0].Reason)
	assert.Equal(t, []any{false, true}, logs[0].Changes["banned"])
	assert.Equal(t, []any{nil, "2025-03-10T08:00:00Z"}, logs[0].Changes["banned_at"])

	unbanned, err := f.svc.Unban(ctx, f.moderator, f.target.ID)
	require.NoError(t, err)
	assert.False(t, unbanned.Banned)
	assert.Nil(t, unbanned.BannedAt)
	assert.Len(t, f.logs(t), 2)
}

func TestDeactivateRecordsOnlyRealChanges(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	u, err := f.svc.Deactivate(ctx, f.admin, f.target.ID, "inactive for a year")
	require.NoError(t, err)
	assert.False(t, u.Active)

	u, err = f.svc.Activate(ctx, f.admin, f.target.ID)
	require.NoError(t, err)
	assert.True(t, u.Active)

	_, err = f.svc.Activate(ctx, f.admin, f.target.ID)
	require.NoError(t, err)

	logs := f.logs(t)
	require.Len(t, logs, 3)
	// newest first
	assert.Empty(t, logs[0].Changes)
	assert.Equal(t, []any{false, true}, logs[1].Changes["active"])
	assert.Equal(t, []any{true, false}, logs[2].Changes["active"])
	assert.Equal(t, "inactive for a year", logs[2].Reason)
}

func TestPermissions(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	_, err := f.svc.Ban(ctx, f.target, f.moderator.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden, "regular users are not staff")

	_, err = f.svc.ChangeRole(ctx, f.moderator, f.target.ID, domain.RoleModerator)
	assert.ErrorIs(t, err, domain.ErrForbidden, "role changes need an admin")

	err = f.svc.SoftDelete(ctx, f.moderator, f.target.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Deactivate(ctx, f.admin, f.admin.ID, "")
	assert.ErrorIs(t, err, ErrSelfAction)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, _, err = f.svc.ListUsers(ctx, nil, user.UserFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.Empty(t, f.logs(t))
}

func TestChangeRole(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	_, err := f.svc.ChangeRole(ctx, f.admin, f.target.ID, domain.Role("owner"))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	u, err := f.svc.ChangeRole(ctx, f.admin, f.target.ID, domain.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleModerator, u.Role)
	assert.Equal(t, []any{"user", "moderator"}, f.logs(t)[0].Changes["role"])
}

func TestSoftDeleteAndRestore(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SoftDelete(ctx, f.admin, f.target.ID, "requested by user"))
	_, err := f.users.FindByID(ctx, f.target.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Ban(ctx, f.admin, f.target.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	u, err := f.svc.Restore(ctx, f.admin, f.target.ID)
	require.NoError(t, err)
	assert.Equal(t, f.target.ID, u.ID)

	logs := f.logs(t)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.AuditRestore, logs[0].Action)
	assert.Equal(t, domain.AuditSoftDelete, logs[1].Action)
	assert.Equal(t, "requested by user", logs[1].Reason)
}

func TestVerifyContact(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	c, err := f.svc.VerifyContact(ctx, f.moderator, f.target.ID, domain.ContactPhone)
	require.NoError(t, err)
	assert.True(t, c.Verified)
	assert.Equal(t, f.target.Phone, c.Value)

	contacts, err := f.contacts.ListByUser(ctx, f.target.ID)
	require.NoError(t, err)
	assert.True(t, f.target.IsVerified(contacts, domain.ContactPhone))
	assert.False(t, f.target.IsVerified(contacts, domain.ContactEmail))

	logs := f.logs(t)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditVerifyPhone, logs[0].Action)
	assert.Equal(t, "UserContact", logs[0].RecordType)
	assert.Equal(t, c.ID, logs[0].RecordID)
}

func TestCreateSportAndAttribute(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	sp := &domain.Sport{Name: "table tennis", Category: "Racket", Active: true}
	require.NoError(t, f.svc.CreateSport(ctx, f.admin, sp))
	assert.Equal(t, "Table Tennis", sp.Name)

	err := f.svc.CreateSport(ctx, f.admin, &domain.Sport{Name: "Table tennis", Active: true})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	attr := &domain.SportAttribute{Key: "Grip", Label: "Grip", FieldType: domain.FieldSelect, Options: []string{"shakehand", "penhold"}}
	require.NoError(t, f.svc.CreateAttribute(ctx, f.admin, attr, []uint{sp.ID}))

	assert.ErrorIs(t, f.svc.CreateSport(ctx, f.moderator, &domain.Sport{Name: "Squash"}), domain.ErrForbidden)

	logs := f.logs(t)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.AuditCreateAttr, logs[0].Action)
	assert.Equal(t, []any{nil, "grip"}, logs[0].Changes["key"])
	assert.Equal(t, domain.AuditCreateSport, logs[1].Action)
}

func TestListAndExportUsers(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	for _, name := range []string{"striker", "stopper"} {
		testutil.CreateUser(t, f.db, name, domain.UserTypePlayer)
	}
	_, err := f.svc.Ban(ctx, f.admin, f.target.ID, "")
	require.NoError(t, err)

	users, total, err := f.svc.ListUsers(ctx, f.moderator, user.UserFilter{Search: "er"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)

	var buf bytes.Buffer
	n, err := f.svc.ExportUsersCSV(ctx, f.moderator, user.UserFilter{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Username", rows[0][1])

	buf.Reset()
	n, err = f.svc.ExportUsersCSV(ctx, f.moderator, user.UserFilter{Status: user.StatusBanned}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), "rookie@example.com")
}
