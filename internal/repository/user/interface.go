package user

import (
	"context"
	"time"

	"github.com/iyunix/go-linksports/internal/domain"
)

// ProfileBuilder builds the profile for a freshly inserted user.
type ProfileBuilder func(u *domain.User) (*domain.Profile, error)

// Status filters for FindFiltered.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusBanned   = "banned"
	StatusAdmin    = "admin"
	StatusDeleted  = "deleted"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// UserFilter selects a page of users. Search matches username, email,
// phone and names.
type UserFilter struct {
	Page    int
	PerPage int
	Search  string
	Status  string
}

// UserRepository handles user data operations.
type UserRepository interface {
	CreateWithProfile(ctx context.Context, user *domain.User, build ProfileBuilder) (*domain.Profile, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByLogin(ctx context.Context, identifier string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	MarkSignedIn(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) error
	FindAll(ctx context.Context) ([]domain.User, error)
	FindAllWithPaginationAndSearch(ctx context.Context, page, limit int, search string) ([]domain.User, int64, error)
	FindFiltered(ctx context.Context, f UserFilter) ([]domain.User, int64, error)
}
