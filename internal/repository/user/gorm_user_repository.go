// File: internal/repository/user/gorm_user_repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/repository"
)

var (
	ErrUserNotFound  = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrDuplicateUser = errors.New("user already exists")
)

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// CreateWithProfile inserts the user and the profile returned by build in
// one transaction. Nothing is persisted if either insert fails.
func (r *gormUserRepository) CreateWithProfile(ctx context.Context, user *domain.User, build ProfileBuilder) (*domain.Profile, error) {
	if user == nil {
		return nil, errors.New("user cannot be nil")
	}

	var profile *domain.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		p, err := build(user)
		if err != nil {
			return err
		}
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		profile = p
		return nil
	})
	if err != nil {
		user.ID = 0
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		if repository.IsDuplicateKey(err) {
			log.Printf("[UserRepository] Unique constraint hit during user creation: %v", err)
			return nil, ErrDuplicateUser
		}
		log.Printf("[UserRepository] Database error during user creation: %v", err)
		return nil, errors.New("database error creating user")
	}

	log.Printf("[UserRepository] User created successfully with ID: %d", user.ID)
	return profile, nil
}

// Update saves every column of the user.
func (r *gormUserRepository) Update(ctx context.Context, user *domain.User) error {
	if user.ID == 0 {
		return errors.New("invalid user ID")
	}
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		log.Printf("[UserRepository] Database error during user update for ID %d: %v", user.ID, err)
		return errors.New("database error updating user")
	}
	return nil
}

// UpdateFields writes only the given columns, including zero values.
func (r *gormUserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if id == 0 {
		return errors.New("invalid user ID")
	}
	result := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		log.Printf("[UserRepository] Database error updating fields for user ID %d: %v", id, result.Error)
		return errors.New("database error updating user")
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *gormUserRepository) MarkSignedIn(ctx context.Context, id uint, at time.Time) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"last_sign_in_at": at})
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if id == 0 {
		return nil, ErrUserNotFound
	}
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return r.handleFindError(err, &user)
}

func (r *gormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", domain.NormalizeUsername(username)).First(&user).Error
	return r.handleFindError(err, &user)
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", domain.NormalizeEmail(email)).First(&user).Error
	return r.handleFindError(err, &user)
}

// FindByLogin matches identifier against username or email, ignoring case.
func (r *gormUserRepository) FindByLogin(ctx context.Context, identifier string) (*domain.User, error) {
	login := strings.ToLower(strings.TrimSpace(identifier))
	if login == "" {
		return nil, ErrUserNotFound
	}
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ? OR email = ?", login, login).First(&user).Error
	return r.handleFindError(err, &user)
}

func (r *gormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", domain.NormalizeUsername(username))
}

func (r *gormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", domain.NormalizeEmail(email))
}

func (r *gormUserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, "phone", domain.NormalizePhone(phone))
}

// exists counts soft-deleted rows too, since they still hold the unique index.
func (r *gormUserRepository) exists(ctx context.Context, column, value string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&domain.User{}).Where(column+" = ?", value).Count(&count).Error
	if err != nil {
		log.Printf("[UserRepository] Database error checking %s existence: %v", column, err)
		return false, fmt.Errorf("database error checking %s existence", column)
	}
	return count > 0, nil
}

// Delete soft-deletes the user.
func (r *gormUserRepository) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return errors.New("invalid user ID")
	}
	result := r.db.WithContext(ctx).Delete(&domain.User{}, id)
	if result.Error != nil {
		log.Printf("[UserRepository] Database error deleting user ID %d: %v", id, result.Error)
		return errors.New("database error deleting user")
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	log.Printf("[UserRepository] User deleted successfully with ID: %d", id)
	return nil
}

// Restore clears the soft-delete mark of a deleted user.
func (r *gormUserRepository) Restore(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Unscoped().Model(&domain.User{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if result.Error != nil {
		log.Printf("[UserRepository] Database error restoring user ID %d: %v", id, result.Error)
		return errors.New("database error restoring user")
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *gormUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("id asc").Find(&users).Error; err != nil {
		log.Printf("[UserRepository] Database error finding all users: %v", err)
		return nil, errors.New("database error retrieving users")
	}
	return users, nil
}

// FindAllWithPaginationAndSearch provides a paginated, searchable query for users.
func (r *gormUserRepository) FindAllWithPaginationAndSearch(ctx context.Context, page, limit int, search string) ([]domain.User, int64, error) {
	return r.FindFiltered(ctx, UserFilter{Page: page, PerPage: limit, Search: search})
}

// FindFiltered pages through users matching the search term and status.
// Soft-deleted users are included only for StatusDeleted.
func (r *gormUserRepository) FindFiltered(ctx context.Context, f UserFilter) ([]domain.User, int64, error) {
	var users []domain.User
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.User{})
	switch f.Status {
	case StatusActive:
		query = query.Where("active = ?", true)
	case StatusInactive:
		query = query.Where("active = ?", false)
	case StatusBanned:
		query = query.Where("banned = ?", true)
	case StatusAdmin:
		query = query.Where("role = ?", domain.RoleAdmin)
	case StatusDeleted:
		query = query.Unscoped().Where("deleted_at IS NOT NULL")
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		searchTerm := "%" + strings.ToLower(search) + "%"
		query = query.Where("username LIKE ? OR email LIKE ? OR phone LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			searchTerm, searchTerm, searchTerm, searchTerm, searchTerm)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		log.Printf("[UserRepository] Database error counting users with search: %v", err)
		return nil, 0, errors.New("database error counting users")
	}

	limit, offset := repository.Page(f.Page, f.PerPage, DefaultPerPage, MaxPerPage)
	if err := query.Order("id asc").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		log.Printf("[UserRepository] Database error in paginated search query: %v", err)
		return nil, 0, errors.New("database error retrieving paginated users")
	}
	return users, total, nil
}

// handleFindError maps not-found and hides driver errors from callers.
func (r *gormUserRepository) handleFindError(err error, user *domain.User) (*domain.User, error) {
	if err == nil {
		return user, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	log.Printf("[UserRepository] Database query error: %v", err)
	return nil, errors.New("database query failed")
}
