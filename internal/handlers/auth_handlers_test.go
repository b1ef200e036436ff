package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/dtos"
	"github.com/iyunix/go-linksports/internal/middleware"
	"github.com/iyunix/go-linksports/internal/ratelimit"
)

func registerBody(username string) map[string]string {
	return map[string]string{
		"username":   username,
		"email":      username + "@example.com",
		"phone":      "98765 43210",
		"password":   "password123",
		"first_name": "Asha",
		"last_name":  "Rao",
		"user_type":  "player",
	}
}

func TestRegisterVerifyAndLogin(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodPost, "/api/v1/auth/register", "", registerBody("asha"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var registered dtos.UserResponse
	env := envelope(t, rec, &registered)
	assert.True(t, env.Success)
	assert.Equal(t, "asha", registered.Username)
	assert.False(t, registered.EmailVerified)
	assert.Equal(t, 1, s.dispatcher.count())

	login := map[string]string{"login": "asha@example.com", "password": "password123"}
	rec = s.do(http.MethodPost, "/api/v1/auth/login", "", login)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Please verify your email before signing in", envelope(t, rec, nil).Message)

	rec = s.do(http.MethodPost, "/api/v1/auth/verify_email", "", map[string]interface{}{"user_id": registered.ID, "code": "000000"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/auth/verify_email", "", map[string]interface{}{"user_id": registered.ID, "code": testCode})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var verified dtos.AuthResponse
	envelope(t, rec, &verified)
	assert.NotEmpty(t, verified.Token)
	assert.True(t, verified.User.EmailVerified)

	rec = s.do(http.MethodPost, "/api/v1/auth/login", "", login)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session dtos.AuthResponse
	envelope(t, rec, &session)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.AuthCookieName, cookies[0].Name)
	assert.Equal(t, session.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	rec = s.do(http.MethodGet, "/api/v1/auth/me", session.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me dtos.UserResponse
	envelope(t, rec, &me)
	assert.Equal(t, registered.ID, me.ID)
	assert.True(t, me.EmailVerified)
	assert.False(t, me.PhoneVerified)
}

func TestRegisterValidationErrors(t *testing.T) {
	s := newServer(t)

	body := registerBody("taken")
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/v1/auth/register", "", body).Code)

	body["email"] = "other@example.com"
	body["username"] = "other"
	rec := s.do(http.MethodPost, "/api/v1/auth/register", "", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := envelope(t, rec, nil)
	assert.False(t, env.Success)
	assert.Contains(t, env.Errors, "phone")

	rec = s.do(http.MethodPost, "/api/v1/auth/register", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResendEmailCodeHonoursCooldown(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodPost, "/api/v1/auth/register", "", registerBody("hasty"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var registered dtos.UserResponse
	envelope(t, rec, &registered)

	rec = s.do(http.MethodPost, "/api/v1/auth/resend_email_code", "", map[string]interface{}{"user_id": registered.ID})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, s.dispatcher.count())

	rec = s.do(http.MethodPost, "/api/v1/auth/resend_email_code", "", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPhoneVerificationRequiresSession(t *testing.T) {
	s := newServer(t)
	_, token := s.user("caller", domain.UserTypeCoach)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/auth/resend_phone_code", "", nil).Code)

	rec := s.do(http.MethodPost, "/api/v1/auth/verify_phone", token, map[string]string{"code": testCode})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "no code requested yet")

	rec = s.do(http.MethodPost, "/api/v1/auth/resend_phone_code", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/v1/auth/verify_phone", token, map[string]string{"code": testCode})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me dtos.UserResponse
	envelope(t, rec, &me)
	assert.True(t, me.PhoneVerified)
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newServer(t)
	_, token := s.user("leaving", domain.UserTypePlayer)

	rec := s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.AuthCookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestLoginIsRateLimitedPerClient(t *testing.T) {
	limiter := ratelimit.NewMemoryRateLimiter(&ratelimit.Config{
		WindowSize:  time.Minute,
		MaxAttempts: 2,
		BanDuration: time.Minute,
	})
	t.Cleanup(limiter.Close)
	s := newServer(t, withAuthLimiter(limiter))

	bad := map[string]string{"login": "nobody", "password": "wrong"}
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/auth/login", "", bad).Code)
	}
	rec := s.do(http.MethodPost, "/api/v1/auth/login", "", bad)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}
