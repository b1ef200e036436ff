// File: internal/repository/contact/contact_repository.go
package contact

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/repository"
)

var (
	ErrContactNotFound = fmt.Errorf("contact %w", domain.ErrNotFound)
	// ErrContactTaken means the (type, value) pair belongs to another user.
	ErrContactTaken = errors.New("contact already belongs to another account")
)

// ContactRepository persists per-channel verification state.
type ContactRepository interface {
	FindOrCreate(ctx context.Context, userID uint, channel domain.ContactType, value string) (*domain.UserContact, error)
	FindByValue(ctx context.Context, channel domain.ContactType, value string) (*domain.UserContact, error)
	FindByID(ctx context.Context, id uint) (*domain.UserContact, error)
	ListByUser(ctx context.Context, userID uint) ([]domain.UserContact, error)
	RecordSend(ctx context.Context, c *domain.UserContact) error
	IncrementAttempts(ctx context.Context, id uint) error
	MarkVerified(ctx context.Context, c *domain.UserContact) error
}

type gormContactRepository struct {
	db *gorm.DB
}

func NewGormContactRepository(db *gorm.DB) ContactRepository {
	return &gormContactRepository{db: db}
}

// FindOrCreate returns the user's contact for value, creating it on first use.
// value must already be normalized.
func (r *gormContactRepository) FindOrCreate(ctx context.Context, userID uint, channel domain.ContactType, value string) (*domain.UserContact, error) {
	existing, err := r.FindByValue(ctx, channel, value)
	switch {
	case err == nil:
		if existing.UserID != userID {
			return nil, ErrContactTaken
		}
		return existing, nil
	case !errors.Is(err, ErrContactNotFound):
		return nil, err
	}

	c := &domain.UserContact{UserID: userID, ContactType: channel, Value: value}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrContactTaken
		}
		log.Printf("[ContactRepository] Database error creating contact for user ID %d: %v", userID, err)
		return nil, errors.New("database error creating contact")
	}
	return c, nil
}

func (r *gormContactRepository) FindByValue(ctx context.Context, channel domain.ContactType, value string) (*domain.UserContact, error) {
	var c domain.UserContact
	err := r.db.WithContext(ctx).
		Where("contact_type = ? AND value = ?", channel, value).
		First(&c).Error
	return handleFindError(err, &c)
}

func (r *gormContactRepository) FindByID(ctx context.Context, id uint) (*domain.UserContact, error) {
	var c domain.UserContact
	err := r.db.WithContext(ctx).First(&c, id).Error
	return handleFindError(err, &c)
}

func (r *gormContactRepository) ListByUser(ctx context.Context, userID uint) ([]domain.UserContact, error) {
	var contacts []domain.UserContact
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&contacts).Error; err != nil {
		log.Printf("[ContactRepository] Database error listing contacts for user ID %d: %v", userID, err)
		return nil, errors.New("database error listing contacts")
	}
	return contacts, nil
}

// RecordSend persists the code issued by UserContact.IssueCode.
func (r *gormContactRepository) RecordSend(ctx context.Context, c *domain.UserContact) error {
	return r.updateColumns(ctx, c, "code", "code_sent_at", "attempts", "last_sent_at", "daily_send_count")
}

// IncrementAttempts bumps the attempt counter in the database.
func (r *gormContactRepository) IncrementAttempts(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&domain.UserContact{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1"))
	if result.Error != nil {
		log.Printf("[ContactRepository] Database error incrementing attempts for contact ID %d: %v", id, result.Error)
		return errors.New("database error incrementing attempts")
	}
	if result.RowsAffected == 0 {
		return ErrContactNotFound
	}
	return nil
}

// MarkVerified persists the state set by UserContact.MarkVerified.
func (r *gormContactRepository) MarkVerified(ctx context.Context, c *domain.UserContact) error {
	return r.updateColumns(ctx, c, "code", "code_sent_at", "attempts", "verified")
}

func (r *gormContactRepository) updateColumns(ctx context.Context, c *domain.UserContact, columns ...string) error {
	if c.ID == 0 {
		return errors.New("invalid contact ID")
	}
	cols := make([]interface{}, 0, len(columns)-1)
	for _, col := range columns[1:] {
		cols = append(cols, col)
	}
	result := r.db.WithContext(ctx).Model(c).Select(columns[0], cols...).Updates(c)
	if result.Error != nil {
		log.Printf("[ContactRepository] Database error updating contact ID %d: %v", c.ID, result.Error)
		return errors.New("database error updating contact")
	}
	if result.RowsAffected == 0 {
		return ErrContactNotFound
	}
	return nil
}

func handleFindError(err error, c *domain.UserContact) (*domain.UserContact, error) {
	if err == nil {
		return c, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrContactNotFound
	}
	log.Printf("[ContactRepository] Database query error: %v", err)
	return nil, errors.New("database query failed")
}
