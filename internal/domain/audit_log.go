// File: internal/domain/audit_log.go
package domain

import "time"

// Audit actions.
const (
	AuditActivate    = "activate"
	AuditDeactivate  = "deactivate"
	AuditBan         = "ban"
	AuditUnban       = "unban"
	AuditChangeRole  = "change_role"
	AuditSoftDelete  = "soft_delete"
	AuditRestore     = "restore"
	AuditVerifyEmail = "verify_email"
	AuditVerifyPhone = "verify_phone"
	AuditCreateSport = "create_sport"
	AuditCreateAttr  = "create_sport_attribute"
)

// AuditLog records one administrative mutation.
type AuditLog struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	AdminUserID uint           `json:"admin_user_id" gorm:"not null;index"`
	Action      string         `json:"action" gorm:"size:50;not null;index"`
	RecordType  string         `json:"record_type" gorm:"size:50;not null"`
	RecordID    uint           `json:"record_id" gorm:"not null"`
	Reason      string         `json:"reason,omitempty" gorm:"size:500"`
	Changes     map[string]any `json:"changes,omitempty" gorm:"serializer:json;type:text"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
}
