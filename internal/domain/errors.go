// File: internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrNotFound                 = errors.New("record not found")
	ErrForbidden                = errors.New("not allowed")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrEmailNotVerified         = errors.New("email not verified")
	ErrAccountDisabled          = errors.New("account disabled")
	ErrTooManyAttempts          = errors.New("too many attempts")
	ErrInvalidCode              = errors.New("invalid or expired verification code")
	ErrVerificationNotInitiated = errors.New("verification not initiated")
	ErrSelfConnection           = errors.New("cannot connect to self")
)

// ValidationError carries field-level messages for a rejected write.
type ValidationError struct {
	Fields map[string][]string `json:"errors"`
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a message for field. Use "base" for errors not tied to a field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil returns e as an error when it holds messages, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RateLimitReason distinguishes the two send throttles.
type RateLimitReason string

const (
	DailyLimitExceeded RateLimitReason = "daily_limit_exceeded"
	CooldownActive     RateLimitReason = "cooldown_active"
)

// RateLimitError is returned when a code send is throttled.
type RateLimitError struct {
	Reason     RateLimitReason
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	switch e.Reason {
	case DailyLimitExceeded:
		return "daily limit reached"
	case CooldownActive:
		return "please wait before requesting another code"
	default:
		return "rate limited"
	}
}

// IsRateLimited reports whether err is a RateLimitError with the given reason.
func IsRateLimited(err error, reason RateLimitReason) bool {
	var rl *RateLimitError
	return errors.As(err, &rl) && rl.Reason == reason
}
