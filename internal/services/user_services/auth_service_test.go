package user_services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-linksports/internal/domain"
)

func registration(username, email, phone string) domain.RegistrationParams {
	return domain.RegistrationParams{
		Username:  username,
		Email:     email,
		Phone:     phone,
		Password:  "password123",
		FirstName: "Asha",
		LastName:  "Rao",
		UserType:  domain.UserTypePlayer,
	}
}

func TestRegister_NormalizesAndCreatesProfile(t *testing.T) {
	f := newFixture(t, "123456")
	ctx := context.Background()

	u, profile, err := f.auth.Register(ctx, registration("AshaRao", "Asha@Example.com", "98765 43210"))
	require.NoError(t, err)
	assert.Equal(t, "asharao", u.Username)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, "+919876543210", u.Phone)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NotEqual(t, "password123", u.Password)

	require.NotNil(t, profile)
	assert.Equal(t, u.ID, profile.UserID)
	assert.Equal(t, domain.ProfileTypePlayer, profile.Type)

	var count int64
	require.NoError(t, f.db.Model(&domain.Profile{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	sent, ok := f.dispatcher.last()
	require.True(t, ok)
	assert.Equal(t, domain.ContactEmail, sent.channel)
	assert.Equal(t, "asha@example.com", sent.to)
}

func TestRegister_DuplicatePhone(t *testing.T) {
	f := newFixture(t, "123456")
	ctx := context.Background()

	_, _, err := f.auth.Register(ctx, registration("first", "first@example.com", "9876543210"))
	require.NoError(t, err)

	_, _, err = f.auth.Register(ctx, registration("second", "second@example.com", "+91 98765-43210"))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"has already been taken"}, verr.Fields["phone"])
	assert.NotContains(t, verr.Fields, "username")

	var users int64
	require.NoError(t, f.db.Model(&domain.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)
}

func TestRegister_CaseInsensitiveUniqueness(t *testing.T) {
	f := newFixture(t, "123456")
	ctx := context.Background()

	_, _, err := f.auth.Register(ctx, registration("striker", "striker@example.com", "9876500001"))
	require.NoError(t, err)

	_, _, err = f.auth.Register(ctx, registration("STRIKER", "STRIKER@example.com", "9876500002"))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "email")
}

func TestRegister_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	params := registration("admin", "not-an-email", "")
	params.Password = "short"
	params.UserType = "referee"

	u, profile, err := f.auth.Register(ctx, params)
	assert.Nil(t, u)
	assert.Nil(t, profile)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"username", "email", "phone", "password", "user_type"} {
		assert.Contains(t, verr.Fields, field)
	}
	assert.Equal(t, 0, f.dispatcher.count())
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	f := newFixture(t)

	params := registration("longpass", "longpass@example.com", "9876500009")
	params.Password = strings.Repeat("a", 100)

	_, _, err := f.auth.Register(context.Background(), params)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")
	assert.Equal(t, 0, f.dispatcher.count())
}

func TestRegister_AdminEmailGetsAdminRole(t *testing.T) {
	f := newFixture(t, "123456")

	u, _, err := f.auth.Register(context.Background(), registration("boss", "Boss@LinkSports.test", "9876500003"))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
}

func TestLogin_RequiresVerifiedEmail(t *testing.T) {
	f := newFixture(t, "777777")
	ctx := context.Background()

	u, _, err := f.auth.Register(ctx, registration("keeper", "keeper@example.com", "9876500004"))
	require.NoError(t, err)

	_, _, err = f.auth.Login(ctx, "keeper", "password123")
	assert.ErrorIs(t, err, domain.ErrEmailNotVerified)

	_, _, err = f.auth.VerifyEmail(ctx, u.ID, "000000")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	verified, token, err := f.auth.VerifyEmail(ctx, u.ID, "777777")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotNil(t, verified.LastSignInAt)

	for _, login := range []string{"keeper", "KEEPER", "Keeper@Example.com"} {
		got, token, err := f.auth.Login(ctx, login, "password123")
		require.NoError(t, err, login)
		assert.Equal(t, u.ID, got.ID)

		userID, err := f.tokens.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, userID)
	}
}

func TestLogin_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	f := newFixture(t, "123456")
	ctx := context.Background()

	_, _, err := f.auth.Register(ctx, registration("winger", "winger@example.com", "9876500005"))
	require.NoError(t, err)

	_, _, err = f.auth.Login(ctx, "winger", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = f.auth.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = f.auth.Login(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_DisabledAccount(t *testing.T) {
	f := newFixture(t, "424242")
	ctx := context.Background()

	u, _, err := f.auth.Register(ctx, registration("banned", "banned@example.com", "9876500006"))
	require.NoError(t, err)
	_, _, err = f.auth.VerifyEmail(ctx, u.ID, "424242")
	require.NoError(t, err)

	require.NoError(t, f.users.UpdateFields(ctx, u.ID, map[string]interface{}{"banned": true}))

	_, _, err = f.auth.Login(ctx, "banned", "password123")
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)

	_, _, err = f.auth.Login(ctx, "banned", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestResendEmailCode(t *testing.T) {
	f := newFixture(t, "111111", "222222")
	ctx := context.Background()

	u, _, err := f.auth.Register(ctx, registration("resend", "resend@example.com", "9876500007"))
	require.NoError(t, err)

	_, err = f.auth.ResendEmailCode(ctx, u.ID)
	assert.True(t, domain.IsRateLimited(err, domain.CooldownActive))

	f.clock.Advance(domain.ResendCooldown)
	_, err = f.auth.ResendEmailCode(ctx, u.ID)
	require.NoError(t, err)

	_, _, err = f.auth.VerifyEmail(ctx, u.ID, "111111")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
	_, _, err = f.auth.VerifyEmail(ctx, u.ID, "222222")
	assert.NoError(t, err)

	_, err = f.auth.ResendEmailCode(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
