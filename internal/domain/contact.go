// File: internal/domain/contact.go
package domain

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

// ContactType defines the verifiable contact channels
type ContactType string

const (
	ContactEmail ContactType = "email"
	ContactPhone ContactType = "phone"
)

func (t ContactType) Valid() bool {
	return t == ContactEmail || t == ContactPhone
}

const (
	CodeLength        = 6
	CodeExpiry        = 10 * time.Minute
	MaxVerifyAttempts = 5
	ResendCooldown    = 60 * time.Second
	MaxDailySends     = 10
)

// UserContact holds the one-time code state of a single channel of a user.
type UserContact struct {
	ID             uint        `json:"id" gorm:"primaryKey"`
	UserID         uint        `json:"user_id" gorm:"not null;index:idx_contact_user_type,priority:1"`
	ContactType    ContactType `json:"contact_type" gorm:"size:10;not null;uniqueIndex:idx_contact_type_value,priority:1;index:idx_contact_user_type,priority:2"`
	Value          string      `json:"value" gorm:"size:255;not null;uniqueIndex:idx_contact_type_value,priority:2"`
	Verified       bool        `json:"verified" gorm:"not null;default:false"`
	Code           *string     `json:"-" gorm:"size:10"`
	CodeSentAt     *time.Time  `json:"-"`
	Attempts       int         `json:"-" gorm:"not null;default:0"`
	LastSentAt     *time.Time  `json:"last_sent_at,omitempty"`
	DailySendCount int         `json:"-" gorm:"not null;default:0"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NormalizeContact applies the channel's normalization rule to value.
func NormalizeContact(channel ContactType, value string) string {
	switch channel {
	case ContactEmail:
		return NormalizeEmail(value)
	case ContactPhone:
		return NormalizePhone(value)
	}
	return value
}

// SendsToday returns the counter when the last send fell on the same
// calendar day as now in loc, and zero otherwise.
func SendsToday(lastSentAt *time.Time, counter int, now time.Time, loc *time.Location) int {
	if lastSentAt == nil {
		return 0
	}
	if loc == nil {
		loc = time.UTC
	}
	ly, lm, ld := lastSentAt.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()
	if ly == ny && lm == nm && ld == nd {
		return counter
	}
	return 0
}

// CheckSendAllowed evaluates the daily cap first, then the cooldown.
func (c *UserContact) CheckSendAllowed(now time.Time, loc *time.Location) error {
	if SendsToday(c.LastSentAt, c.DailySendCount, now, loc) >= MaxDailySends {
		return &RateLimitError{Reason: DailyLimitExceeded, RetryAfter: untilNextDay(now, loc)}
	}
	if c.LastSentAt != nil {
		if elapsed := now.Sub(*c.LastSentAt); elapsed < ResendCooldown {
			return &RateLimitError{Reason: CooldownActive, RetryAfter: ResendCooldown - elapsed}
		}
	}
	return nil
}

// IssueCode stores code as the current code and records the send.
// The previous code, if any, stops being valid and the attempt counter
// starts over for the new code.
func (c *UserContact) IssueCode(code string, now time.Time, loc *time.Location) {
	sends := SendsToday(c.LastSentAt, c.DailySendCount, now, loc)
	c.Code = &code
	c.Attempts = 0
	c.CodeSentAt = &now
	c.LastSentAt = &now
	c.DailySendCount = sends + 1
}

// CodeValid checks presence, expiry and a constant-time match.
func (c *UserContact) CodeValid(submitted string, now time.Time) bool {
	if c.Code == nil || *c.Code == "" || c.CodeSentAt == nil {
		return false
	}
	if now.Sub(*c.CodeSentAt) > CodeExpiry {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*c.Code), []byte(submitted)) == 1
}

// MarkVerified clears the code state and flags the channel verified.
func (c *UserContact) MarkVerified() {
	c.Code = nil
	c.CodeSentAt = nil
	c.Attempts = 0
	c.Verified = true
}

// GenerateCode returns a uniformly random zero-padded six digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func untilNextDay(now time.Time, loc *time.Location) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc).Sub(local)
}
