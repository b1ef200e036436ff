// File: internal/repository/profile/profile_repository.go
package profile

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/iyunix/go-linksports/internal/domain"
)

var ErrProfileNotFound = fmt.Errorf("profile %w", domain.ErrNotFound)

type ProfileRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Profile, error)
	FindByUserID(ctx context.Context, userID uint) (*domain.Profile, error)
	Update(ctx context.Context, p *domain.Profile) error
	// CompleteSetup saves p and sets the owner's profile_completed flag atomically.
	CompleteSetup(ctx context.Context, p *domain.Profile) error
}

type gormProfileRepository struct {
	db *gorm.DB
}

func NewGormProfileRepository(db *gorm.DB) ProfileRepository {
	return &gormProfileRepository{db: db}
}

func (r *gormProfileRepository) FindByID(ctx context.Context, id uint) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.WithContext(ctx).First(&p, id).Error
	return handleFindError(err, &p)
}

func (r *gormProfileRepository) FindByUserID(ctx context.Context, userID uint) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	return handleFindError(err, &p)
}

// Update saves every column except the owner and the variant tag.
func (r *gormProfileRepository) Update(ctx context.Context, p *domain.Profile) error {
	return save(r.db.WithContext(ctx), p)
}

func (r *gormProfileRepository) CompleteSetup(ctx context.Context, p *domain.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := save(tx, p); err != nil {
			return err
		}
		result := tx.Model(&domain.User{}).Where("id = ?", p.UserID).Update("profile_completed", true)
		if result.Error != nil {
			log.Printf("[ProfileRepository] Database error completing setup for user ID %d: %v", p.UserID, result.Error)
			return errors.New("database error completing profile setup")
		}
		return nil
	})
}

func save(db *gorm.DB, p *domain.Profile) error {
	if p.ID == 0 {
		return errors.New("invalid profile ID")
	}
	if err := db.Omit("user_id", "type", "created_at").Save(p).Error; err != nil {
		log.Printf("[ProfileRepository] Database error updating profile ID %d: %v", p.ID, err)
		return errors.New("database error updating profile")
	}
	return nil
}

func handleFindError(err error, p *domain.Profile) (*domain.Profile, error) {
	if err == nil {
		return p, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	log.Printf("[ProfileRepository] Database query error: %v", err)
	return nil, errors.New("database query failed")
}
