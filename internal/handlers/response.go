// File: internal/handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/dtos"
	"github.com/iyunix/go-linksports/internal/middleware"
)

const (
	maxBodyBytes = 1 << 20
	errEmptyBody = "request body is empty"
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, body dtos.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	writeJSON(w, status, dtos.Success(data, message))
}

func respondPaged(w http.ResponseWriter, items interface{}, page, perPage int, total int64) {
	respondSuccess(w, http.StatusOK, dtos.PagedData{
		Items:      items,
		Pagination: dtos.NewPagination(page, perPage, total),
	}, "")
}

// respondError maps the error taxonomy onto HTTP statuses. Unexpected
// errors are logged and hidden behind a generic message.
func respondError(w http.ResponseWriter, r *http.Request, logger Logger, err error) {
	var verr *domain.ValidationError
	var rl *domain.RateLimitError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, dtos.Failure("Validation failed", verr.Fields))
	case errors.As(err, &rl):
		if seconds := int(math.Ceil(rl.RetryAfter.Seconds())); seconds > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}
		writeJSON(w, http.StatusTooManyRequests, dtos.Failure(rateLimitMessage(rl), nil))
	case errors.Is(err, domain.ErrTooManyAttempts):
		writeJSON(w, http.StatusTooManyRequests, dtos.Failure("Too many attempts. Please request a new code.", nil))
	case errors.Is(err, domain.ErrInvalidCode):
		writeJSON(w, http.StatusUnauthorized, dtos.Failure("Invalid or expired verification code", nil))
	case errors.Is(err, domain.ErrEmailNotVerified):
		writeJSON(w, http.StatusUnauthorized, dtos.Failure("Please verify your email before signing in", nil))
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrAccountDisabled):
		writeJSON(w, http.StatusUnauthorized, dtos.Failure(credentialsMessage(err), nil))
	case errors.Is(err, domain.ErrVerificationNotInitiated):
		writeJSON(w, http.StatusUnprocessableEntity, dtos.Failure("No verification code has been requested", nil))
	case errors.Is(err, domain.ErrSelfConnection):
		writeJSON(w, http.StatusUnprocessableEntity, dtos.Failure("You cannot connect with yourself", nil))
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, dtos.Failure("You are not allowed to do that", nil))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dtos.Failure("Not found", nil))
	case errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, dtos.Failure(err.Error(), nil))
	default:
		logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()))
		writeJSON(w, http.StatusInternalServerError, dtos.Failure("Something went wrong. Please try again.", nil))
	}
}

func rateLimitMessage(rl *domain.RateLimitError) string {
	if rl.Reason == domain.DailyLimitExceeded {
		return "Daily limit reached. Please try again tomorrow."
	}
	return "Please wait before requesting another code."
}

func credentialsMessage(err error) string {
	if errors.Is(err, domain.ErrAccountDisabled) {
		return "This account has been disabled"
	}
	return "Invalid login or password"
}

// decodeJSON reads a JSON body of at most maxBodyBytes into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest(errEmptyBody)
		}
		return badRequest("invalid JSON body")
	}
	return nil
}

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Is(target error) bool {
	return target == errBadRequest
}

// pathID parses the {name} route variable as a positive id.
func pathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid " + name)
	}
	return uint(id), nil
}

// pageParams reads page and per_page, defaulting page to 1. A zero perPage
// lets the service apply its own default.
func pageParams(r *http.Request) (page, perPage int) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err = strconv.Atoi(q.Get("per_page"))
	if err != nil || perPage < 0 {
		perPage = 0
	}
	return page, perPage
}

// currentUser returns the user the auth middleware attached.
func currentUser(r *http.Request) *domain.User {
	user, _ := middleware.UserFromContext(r.Context())
	return user
}
