// File: internal/repository/connection/connection_repository.go
package connection

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
	ErrConnectionNotFound  = fmt.Errorf("connection %w", domain.ErrNotFound)
	ErrDuplicateConnection = errors.New("connection already exists")
)

type ConnectionRepository interface {
	Create(ctx context.Context, c *domain.Connection) error
	FindByID(ctx context.Context, id uint) (*domain.Connection, error)
	// FindBetween looks up the pair in both directions.
	FindBetween(ctx context.Context, a, b uint) (*domain.Connection, error)
	UpdateStatus(ctx context.Context, c *domain.Connection) error
	Delete(ctx context.Context, id uint) error
	ListAccepted(ctx context.Context, userID uint) ([]domain.Connection, error)
	ListPendingFor(ctx context.Context, addresseeID uint) ([]domain.Connection, error)
	ConnectedUserIDs(ctx context.Context, userID uint) ([]uint, error)
}

type gormConnectionRepository struct {
	db *gorm.DB
}

func NewGormConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &gormConnectionRepository{db: db}
}

func (r *gormConnectionRepository) Create(ctx context.Context, c *domain.Connection) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if repository.IsDuplicateKey(err) {
			return ErrDuplicateConnection
		}
		log.Printf("[ConnectionRepository] Database error creating connection %d -> %d: %v", c.RequesterID, c.AddresseeID, err)
		return errors.New("database error creating connection")
	}
	return nil
}

func (r *gormConnectionRepository) FindByID(ctx context.Context, id uint) (*domain.Connection, error) {
	var c domain.Connection
	err := r.db.WithContext(ctx).First(&c, id).Error
	return handleFindError(err, &c)
}

func (r *gormConnectionRepository) FindBetween(ctx context.Context, a, b uint) (*domain.Connection, error) {
	var c domain.Connection
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)", a, b, b, a).
		First(&c).Error
	return handleFindError(err, &c)
}

func (r *gormConnectionRepository) UpdateStatus(ctx context.Context, c *domain.Connection) error {
	result := r.db.WithContext(ctx).Model(c).
		Select("status", "connected_at", "blocked_by_id").
		Updates(c)
	if result.Error != nil {
		log.Printf("[ConnectionRepository] Database error updating connection ID %d: %v", c.ID, result.Error)
		return errors.New("database error updating connection")
	}
	if result.RowsAffected == 0 {
		return ErrConnectionNotFound
	}
	return nil
}

func (r *gormConnectionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Connection{}, id)
	if result.Error != nil {
		log.Printf("[ConnectionRepository] Database error deleting connection ID %d: %v", id, result.Error)
		return errors.New("database error deleting connection")
	}
	if result.RowsAffected == 0 {
		return ErrConnectionNotFound
	}
	return nil
}

func (r *gormConnectionRepository) ListAccepted(ctx context.Context, userID uint) ([]domain.Connection, error) {
	var conns []domain.Connection
	err := r.db.WithContext(ctx).
		Preload("Requester").Preload("Addressee").
		Where("status = ? AND (requester_id = ? OR addressee_id = ?)", domain.ConnectionAccepted, userID, userID).
		Order("connected_at desc").
		Find(&conns).Error
	if err != nil {
		log.Printf("[ConnectionRepository] Database error listing connections for user ID %d: %v", userID, err)
		return nil, errors.New("database error listing connections")
	}
	return conns, nil
}

func (r *gormConnectionRepository) ListPendingFor(ctx context.Context, addresseeID uint) ([]domain.Connection, error) {
	var conns []domain.Connection
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Where("status = ? AND addressee_id = ?", domain.ConnectionPending, addresseeID).
		Order("created_at desc").
		Find(&conns).Error
	if err != nil {
		log.Printf("[ConnectionRepository] Database error listing requests for user ID %d: %v", addresseeID, err)
		return nil, errors.New("database error listing connection requests")
	}
	return conns, nil
}

// ConnectedUserIDs returns the other party of every accepted connection.
func (r *gormConnectionRepository) ConnectedUserIDs(ctx context.Context, userID uint) ([]uint, error) {
	var conns []domain.Connection
	err := r.db.WithContext(ctx).
		Select("requester_id", "addressee_id").
		Where("status = ? AND (requester_id = ? OR addressee_id = ?)", domain.ConnectionAccepted, userID, userID).
		Find(&conns).Error
	if err != nil {
		log.Printf("[ConnectionRepository] Database error loading connected IDs for user ID %d: %v", userID, err)
		return nil, errors.New("database error loading connections")
	}
	ids := make([]uint, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, c.OtherParty(userID))
	}
	return ids, nil
}

func handleFindError(err error, c *domain.Connection) (*domain.Connection, error) {
	if err == nil {
		return c, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConnectionNotFound
	}
	log.Printf("[ConnectionRepository] Database query error: %v", err)
	return nil, errors.New("database query failed")
}
