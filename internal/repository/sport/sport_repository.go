// File: internal/repository/sport/sport_repository.go
package sport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/repository"
)

var (
	ErrSportNotFound     = fmt.Errorf("sport %w", domain.ErrNotFound)
	ErrAttributeNotFound = fmt.Errorf("sport attribute %w", domain.ErrNotFound)
	ErrUserSportNotFound = fmt.Errorf("user sport %w", domain.ErrNotFound)
	ErrDuplicate         = errors.New("record already exists")
)

type SportRepository interface {
	ListActive(ctx context.Context, category, q string) ([]domain.Sport, error)
	Categories(ctx context.Context) ([]string, error)
	FindByID(ctx context.Context, id uint) (*domain.Sport, error)
	Create(ctx context.Context, s *domain.Sport) error
	CreateAttribute(ctx context.Context, a *domain.SportAttribute) error
	FindAttribute(ctx context.Context, id uint) (*domain.SportAttribute, error)
	AttachAttribute(ctx context.Context, sportID, attributeID uint) error
	AttributesFor(ctx context.Context, sportID uint) ([]domain.SportAttribute, error)

	ListUserSports(ctx context.Context, userID uint) ([]domain.UserSport, error)
	FindUserSport(ctx context.Context, id uint) (*domain.UserSport, error)
	CreateUserSport(ctx context.Context, us *domain.UserSport) error
	UpdateUserSport(ctx context.Context, us *domain.UserSport) error
	DeleteUserSport(ctx context.Context, id uint) error
	HasAnySport(ctx context.Context, userID uint) (bool, error)
}

type gormSportRepository struct {
	db *gorm.DB
}

func NewGormSportRepository(db *gorm.DB) SportRepository {
	return &gormSportRepository{db: db}
}

func (r *gormSportRepository) ListActive(ctx context.Context, category, q string) ([]domain.Sport, error) {
	query := r.db.WithContext(ctx).Where("active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if q = strings.TrimSpace(q); q != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	var sports []domain.Sport
	if err := query.Order("name asc").Find(&sports).Error; err != nil {
		log.Printf("[SportRepository] Database error listing sports: %v", err)
		return nil, errors.New("database error listing sports")
	}
	return sports, nil
}

func (r *gormSportRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&domain.Sport{}).
		Where("active = ? AND category <> ''", true).
		Distinct().Order("category asc").
		Pluck("category", &categories).Error
	if err != nil {
		log.Printf("[SportRepository] Database error listing categories: %v", err)
		return nil, errors.New("database error listing categories")
	}
	return categories, nil
}

func (r *gormSportRepository) FindByID(ctx context.Context, id uint) (*domain.Sport, error) {
	var s domain.Sport
	err := r.db.WithContext(ctx).Preload("Attributes").First(&s, id).Error
	if err != nil {
		return nil, notFoundOr(err, ErrSportNotFound)
	}
	return &s, nil
}

func (r *gormSportRepository) Create(ctx context.Context, s *domain.Sport) error {
	return createOrDuplicate(r.db.WithContext(ctx).Omit(clause.Associations), s, "sport")
}

func (r *gormSportRepository) CreateAttribute(ctx context.Context, a *domain.SportAttribute) error {
	return createOrDuplicate(r.db.WithContext(ctx), a, "sport attribute")
}

func (r *gormSportRepository) FindAttribute(ctx context.Context, id uint) (*domain.SportAttribute, error) {
	var a domain.SportAttribute
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, notFoundOr(err, ErrAttributeNotFound)
	}
	return &a, nil
}

func (r *gormSportRepository) AttachAttribute(ctx context.Context, sportID, attributeID uint) error {
	m := &domain.SportAttributeMapping{SportID: sportID, SportAttributeID: attributeID}
	return createOrDuplicate(r.db.WithContext(ctx), m, "sport attribute mapping")
}

func (r *gormSportRepository) AttributesFor(ctx context.Context, sportID uint) ([]domain.SportAttribute, error) {
	var attrs []domain.SportAttribute
	err := r.db.WithContext(ctx).
		Joins("JOIN sport_attribute_mappings m ON m.sport_attribute_id = sport_attributes.id").
		Where("m.sport_id = ?", sportID).
		Order("sport_attributes.id asc").
		Find(&attrs).Error
	if err != nil {
		log.Printf("[SportRepository] Database error loading attributes for sport ID %d: %v", sportID, err)
		return nil, errors.New("database error loading sport attributes")
	}
	return attrs, nil
}

func (r *gormSportRepository) ListUserSports(ctx context.Context, userID uint) ([]domain.UserSport, error) {
	var list []domain.UserSport
	err := r.db.WithContext(ctx).Preload("Sport").
		Where("user_id = ?", userID).
		Order("is_primary desc, id asc").
		Find(&list).Error
	if err != nil {
		log.Printf("[SportRepository] Database error listing sports for user ID %d: %v", userID, err)
		return nil, errors.New("database error listing user sports")
	}
	return list, nil
}

func (r *gormSportRepository) FindUserSport(ctx context.Context, id uint) (*domain.UserSport, error) {
	var us domain.UserSport
	if err := r.db.WithContext(ctx).Preload("Sport").First(&us, id).Error; err != nil {
		return nil, notFoundOr(err, ErrUserSportNotFound)
	}
	return &us, nil
}

func (r *gormSportRepository) CreateUserSport(ctx context.Context, us *domain.UserSport) error {
	return createOrDuplicate(r.db.WithContext(ctx).Omit(clause.Associations), us, "user sport")
}

func (r *gormSportRepository) UpdateUserSport(ctx context.Context, us *domain.UserSport) error {
	err := r.db.WithContext(ctx).Model(us).
		Select("position", "years_experience", "is_primary", "details").
		Updates(us).Error
	if err != nil {
		log.Printf("[SportRepository] Database error updating user sport ID %d: %v", us.ID, err)
		return errors.New("database error updating user sport")
	}
	return nil
}

func (r *gormSportRepository) DeleteUserSport(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.UserSport{}, id)
	if result.Error != nil {
		log.Printf("[SportRepository] Database error deleting user sport ID %d: %v", id, result.Error)
		return errors.New("database error deleting user sport")
	}
	if result.RowsAffected == 0 {
		return ErrUserSportNotFound
	}
	return nil
}

func (r *gormSportRepository) HasAnySport(ctx context.Context, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.UserSport{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		log.Printf("[SportRepository] Database error counting sports for user ID %d: %v", userID, err)
		return false, errors.New("database error counting user sports")
	}
	return count > 0, nil
}

func createOrDuplicate(db *gorm.DB, value interface{}, what string) error {
	if err := db.Create(value).Error; err != nil {
		if repository.IsDuplicateKey(err) {
			return fmt.Errorf("%s: %w", what, ErrDuplicate)
		}
		log.Printf("[SportRepository] Database error creating %s: %v", what, err)
		return fmt.Errorf("database error creating %s", what)
	}
	return nil
}

func notFoundOr(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	log.Printf("[SportRepository] Database query error: %v", err)
	return errors.New("database query failed")
}
