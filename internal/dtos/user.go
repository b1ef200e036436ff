// File: internal/dtos/user.go
package dtos

import (
	"time"

	"github.com/iyunix/go-linksports/internal/domain"
)

// UserResponse is the owner's view of their own account.
type UserResponse struct {
	ID               uint    `json:"id"`
	Username         string  `json:"username"`
	Email            string  `json:"email"`
	Phone            string  `json:"phone"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	UserType         string  `json:"user_type"`
	Role             string  `json:"role"`
	EmailVerified    bool    `json:"email_verified"`
	PhoneVerified    bool    `json:"phone_verified"`
	ProfileCompleted bool    `json:"profile_completed"`
	PostsCount       int     `json:"posts_count"`
	LastSignInAt     *string `json:"last_sign_in_at,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

// UserSummary is what other users see of an account.
type UserSummary struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	UserType    string `json:"user_type"`
}

// AdminUserResponse adds moderation state and unmasked contact data.
type AdminUserResponse struct {
	ID           uint    `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	UserType     string  `json:"user_type"`
	Role         string  `json:"role"`
	Active       bool    `json:"active"`
	Banned       bool    `json:"banned"`
	BannedAt     *string `json:"banned_at,omitempty"`
	LastSignInAt *string `json:"last_sign_in_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// AuthResponse is returned by login and a successful email verification.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UserType  string `json:"user_type"`
}

func (r RegisterRequest) ToParams() domain.RegistrationParams {
	return domain.RegistrationParams{
		Username:  r.Username,
		Email:     r.Email,
		Phone:     r.Phone,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		UserType:  domain.UserType(r.UserType),
	}
}

// LoginRequest accepts a username or an email as Login.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	UserID uint   `json:"user_id"`
	Code   string `json:"code"`
}

type ResendEmailCodeRequest struct {
	UserID uint `json:"user_id"`
}

type VerifyCodeRequest struct {
	Code string `json:"code"`
}

func FromUser(u *domain.User, emailVerified, phoneVerified bool) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Phone:            u.Phone,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		UserType:         string(u.UserType),
		Role:             string(u.Role),
		EmailVerified:    emailVerified,
		PhoneVerified:    phoneVerified,
		ProfileCompleted: u.ProfileCompleted,
		PostsCount:       u.PostsCount,
		LastSignInAt:     formatTimePtr(u.LastSignInAt),
		CreatedAt:        u.CreatedAt.Format(time.RFC3339),
	}
}

// SummaryOf returns nil for a nil user so unloaded associations are omitted.
func SummaryOf(u *domain.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName(),
		UserType:    string(u.UserType),
	}
}

func ToAdminUser(u domain.User) AdminUserResponse {
	return AdminUserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Phone:        u.Phone,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		UserType:     string(u.UserType),
		Role:         string(u.Role),
		Active:       u.Active,
		Banned:       u.Banned,
		BannedAt:     formatTimePtr(u.BannedAt),
		LastSignInAt: formatTimePtr(u.LastSignInAt),
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    u.UpdatedAt.Format(time.RFC3339),
	}
}

func ToAdminUserSlice(users []domain.User) []AdminUserResponse {
	out := make([]AdminUserResponse, len(users))
	for i, u := range users {
		out[i] = ToAdminUser(u)
	}
	return out
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}
