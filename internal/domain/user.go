// File: internal/domain/user.go
package domain

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserType string

const (
	UserTypePlayer UserType = "player"
	UserTypeCoach  UserType = "coach"
	UserTypeClub   UserType = "club"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypePlayer, UserTypeCoach, UserTypeClub:
		return true
	}
	return false
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

const (
	DefaultCountryCode = "91"
	UsernameMinLength  = 4
	UsernameMaxLength  = 12
	PasswordMinLength  = 8
	PasswordMaxLength  = 72 // bcrypt input limit, in bytes
	NameMaxLength      = 100
)

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)
	rawPhonePattern = regexp.MustCompile(`^\+?[0-9\s\-\(\)]+$`)
	nonDigits       = regexp.MustCompile(`\D`)
)

var reservedUsernames = map[string]struct{}{
	"admin": {}, "root": {}, "support": {}, "api": {}, "profile": {}, "profiles": {},
	"user": {}, "users": {}, "system": {}, "help": {}, "auth": {}, "login": {},
	"signup": {}, "register": {}, "settings": {}, "me": {}, "about": {},
	"contact": {}, "terms": {}, "privacy": {},
}

// IsReservedUsername reports whether name collides with a route or system name.
func IsReservedUsername(name string) bool {
	_, ok := reservedUsernames[NormalizeUsername(name)]
	return ok
}

// User is the account root. Verification state is not stored here; it is
// derived from the user's contacts, see IsVerified.
type User struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Username         string         `json:"username" gorm:"uniqueIndex;not null;size:12"`
	Email            string         `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Phone            string         `json:"phone" gorm:"uniqueIndex;not null;size:20"`
	Password         string         `json:"-" gorm:"not null"`
	FirstName        string         `json:"first_name" gorm:"size:100;not null"`
	LastName         string         `json:"last_name" gorm:"size:100"`
	UserType         UserType       `json:"user_type" gorm:"size:10;not null;index"`
	Role             Role           `json:"role" gorm:"size:20;not null;default:user"`
	Active           bool           `json:"active" gorm:"not null;default:true;index"`
	Banned           bool           `json:"banned" gorm:"not null;default:false"`
	BannedAt         *time.Time     `json:"banned_at,omitempty"`
	ProfileCompleted bool           `json:"profile_completed" gorm:"not null;default:false"`
	LastSignInAt     *time.Time     `json:"last_sign_in_at,omitempty"`
	PostsCount       int            `json:"posts_count" gorm:"not null;default:0"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`

	Contacts []UserContact `json:"-" gorm:"foreignKey:UserID"`
}

// RegistrationParams is the raw, unnormalized input of a registration.
type RegistrationParams struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Password  string   `json:"password"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	UserType  UserType `json:"user_type"`
}

func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleModerator
}

// CanAuthenticate reports whether an admin action has disabled the account.
func (u *User) CanAuthenticate() bool {
	return u.Active && !u.Banned
}

// IsVerified looks up the contact matching the user's current value for the
// channel. A missing contact means unverified.
func (u *User) IsVerified(contacts []UserContact, channel ContactType) bool {
	value := u.ChannelValue(channel)
	if value == "" {
		return false
	}
	for _, c := range contacts {
		if c.UserID == u.ID && c.ContactType == channel && c.Value == value {
			return c.Verified
		}
	}
	return false
}

// ChannelValue returns the normalized address for channel.
func (u *User) ChannelValue(channel ContactType) string {
	switch channel {
	case ContactEmail:
		return NormalizeEmail(u.Email)
	case ContactPhone:
		return NormalizePhone(u.Phone)
	}
	return ""
}

// HashPassword securely hashes the user's password.
func (u *User) HashPassword(password string) error {
	if len(password) < PasswordMinLength {
		return errors.New("password must be at least 8 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// ValidatePassword compares a plain-text password with the user's hashed password.
func (u *User) ValidatePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

// NormalizePhone strips every non-digit, prepends the default country code
// when absent and prefixes "+". It is idempotent.
func NormalizePhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	if digits == "" {
		return ""
	}
	if !strings.HasPrefix(digits, DefaultCountryCode) {
		digits = DefaultCountryCode + digits
	}
	return "+" + digits
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Normalize returns a copy of p with every identifier normalized.
func (p RegistrationParams) Normalize() RegistrationParams {
	p.Username = NormalizeUsername(p.Username)
	p.Email = NormalizeEmail(p.Email)
	p.Phone = NormalizePhone(p.Phone)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	return p
}

// Validate checks presence and format. rawPhone is the phone as submitted;
// the digit count is checked on the normalized form.
// Uniqueness is checked by the caller against storage.
func (p RegistrationParams) Validate(rawPhone string) *ValidationError {
	verr := NewValidationError()

	switch {
	case p.Username == "":
		verr.Add("username", "can't be blank")
	case len(p.Username) < UsernameMinLength || len(p.Username) > UsernameMaxLength:
		verr.Add("username", "must be between 4 and 12 characters")
	case !usernamePattern.MatchString(p.Username):
		verr.Add("username", "may only contain letters, numbers, dashes and underscores")
	case IsReservedUsername(p.Username):
		verr.Add("username", "is reserved")
	}

	if p.Email == "" {
		verr.Add("email", "can't be blank")
	} else if addr, err := mail.ParseAddress(p.Email); err != nil || addr.Address != p.Email {
		verr.Add("email", "is invalid")
	}

	if strings.TrimSpace(rawPhone) == "" {
		verr.Add("phone", "can't be blank")
	} else if !rawPhonePattern.MatchString(strings.TrimSpace(rawPhone)) {
		verr.Add("phone", "is invalid")
	} else if n := len(p.Phone) - 1; n < 10 || n > 15 {
		verr.Add("phone", "must have between 10 and 15 digits")
	}

	if len(p.Password) < PasswordMinLength || len(p.Password) > PasswordMaxLength {
		verr.Add("password", "must be between 8 and 72 bytes")
	}

	if p.FirstName == "" {
		verr.Add("first_name", "can't be blank")
	} else if len(p.FirstName) > NameMaxLength {
		verr.Add("first_name", "is too long (maximum is 100 characters)")
	}
	if len(p.LastName) > NameMaxLength {
		verr.Add("last_name", "is too long (maximum is 100 characters)")
	}

	if !p.UserType.Valid() {
		verr.Add("user_type", "must be one of player, coach, club")
	}

	return verr
}

// MaskPII keeps the first four characters of a value for log lines.
func MaskPII(value string) string {
	return value[:min(4, len(value))] + "****"
}
