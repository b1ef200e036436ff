// File: internal/handlers/auth_handlers.go
package handlers

import (
	"net/http"
	"time"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/dtos"
	"github.com/iyunix/go-linksports/internal/middleware"
	"github.com/iyunix/go-linksports/internal/services/user_services"
)

// AuthHandler serves registration, login and contact verification.
type AuthHandler struct {
	auth         *user_services.AuthService
	verification *user_services.VerificationService
	logger       Logger
	cookieTTL    time.Duration
	secureCookie bool
}

func NewAuthHandler(auth *user_services.AuthService, verification *user_services.VerificationService, logger Logger, cookieTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		verification: verification,
		logger:       logger,
		cookieTTL:    cookieTTL,
		secureCookie: secureCookie,
	}
}

// Register creates the account and its profile; an email code is sent.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	user, _, err := h.auth.Register(r.Context(), req.ToParams())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusCreated, dtos.FromUser(user, false, false),
		"Registration successful. Please check your email for the verification code.")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.respondWithSession(w, r, user, token, "Signed in successfully")
}

// VerifyEmail takes the user id because the account cannot sign in before
// its email is verified.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dtos.VerifyEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if req.UserID == 0 || req.Code == "" {
		respondError(w, r, h.logger, badRequest("user_id and code are required"))
		return
	}

	user, token, err := h.auth.VerifyEmail(r.Context(), req.UserID, req.Code)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.respondWithSession(w, r, user, token, "Email verified successfully")
}

func (h *AuthHandler) ResendEmailCode(w http.ResponseWriter, r *http.Request) {
	var req dtos.ResendEmailCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if req.UserID == 0 {
		respondError(w, r, h.logger, badRequest("user_id is required"))
		return
	}

	if _, err := h.auth.ResendEmailCode(r.Context(), req.UserID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil, "A new verification code has been sent to your email")
}

func (h *AuthHandler) VerifyPhone(w http.ResponseWriter, r *http.Request) {
	var req dtos.VerifyCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	user := currentUser(r)
	if err := h.verification.VerifyUserChannel(r.Context(), user, domain.ContactPhone, req.Code); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.respondUser(w, r, user, "Phone verified successfully")
}

func (h *AuthHandler) ResendPhoneCode(w http.ResponseWriter, r *http.Request) {
	if _, err := h.verification.RequestCode(r.Context(), currentUser(r), domain.ContactPhone); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil, "A verification code has been sent to your phone")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	respondSuccess(w, http.StatusOK, nil, "Signed out")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	h.respondUser(w, r, currentUser(r), "")
}

func (h *AuthHandler) respondUser(w http.ResponseWriter, r *http.Request, user *domain.User, message string) {
	email, phone, err := h.verification.Status(r.Context(), user)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, dtos.FromUser(user, email, phone), message)
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, r *http.Request, user *domain.User, token, message string) {
	email, phone, err := h.verification.Status(r.Context(), user)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Expires:  time.Now().Add(h.cookieTTL),
		HttpOnly: true,
		Secure:   h.secureCookie,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	respondSuccess(w, http.StatusOK, dtos.AuthResponse{
		User:  dtos.FromUser(user, email, phone),
		Token: token,
	}, message)
}
