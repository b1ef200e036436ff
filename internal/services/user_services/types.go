// File: internal/services/user_services/types.go
package user_services

import (
	"context"
	"time"

	"github.com/iyunix/go-linksports/internal/domain"
)

// Logger interface for all user services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Dispatcher hands a code to the asynchronous delivery queue.
type Dispatcher interface {
	Dispatch(ctx context.Context, channel domain.ContactType, to, code string) (string, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	GenerateJWT(userID uint) (string, error)
}

// Outcomes passed to Observer.CodeChecked.
const (
	CheckVerified        = "verified"
	CheckInvalid         = "invalid"
	CheckTooManyAttempts = "too_many_attempts"
)

// Observer receives verification outcomes, typically for metrics.
type Observer interface {
	CodeRequested(channel domain.ContactType, err error)
	CodeChecked(channel domain.ContactType, outcome string)
}

type nopObserver struct{}

func (nopObserver) CodeRequested(domain.ContactType, error) {}
func (nopObserver) CodeChecked(domain.ContactType, string) {}

// Clock returns the current time. Tests replace it to cross time windows.
type Clock func() time.Time

func mask(s string) string {
	return domain.MaskPII(s)
}
