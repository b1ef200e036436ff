// File: internal/repository/audit/audit_repository.go
package audit

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/repository"
)

const (
	DefaultPerPage = 50
	MaxPerPage     = 200
)

type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, page, perPage int) ([]domain.AuditLog, int64, error)
}

type gormAuditRepository struct {
	db *gorm.DB
}

func NewGormAuditRepository(db *gorm.DB) AuditRepository {
	return &gormAuditRepository{db: db}
}

func (r *gormAuditRepository) Record(ctx context.Context, entry *domain.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		log.Printf("[AuditRepository] Database error recording %s on %s %d: %v", entry.Action, entry.RecordType, entry.RecordID, err)
		return errors.New("database error recording audit log")
	}
	return nil
}

func (r *gormAuditRepository) List(ctx context.Context, page, perPage int) ([]domain.AuditLog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.AuditLog{}).Count(&total).Error; err != nil {
		log.Printf("[AuditRepository] Database error counting audit logs: %v", err)
		return nil, 0, errors.New("database error counting audit logs")
	}
	limit, offset := repository.Page(page, perPage, DefaultPerPage, MaxPerPage)
	var logs []domain.AuditLog
	if err := r.db.WithContext(ctx).Order("created_at desc, id desc").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		log.Printf("[AuditRepository] Database error listing audit logs: %v", err)
		return nil, 0, errors.New("database error listing audit logs")
	}
	return logs, total, nil
}
