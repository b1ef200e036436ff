// File: internal/dtos/admin.go
package dtos

import (
	"github.com/iyunix/go-linksports/internal/domain"
)

// ReasonRequest carries the optional reason of a moderation action.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

type CreateSportRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

func (r CreateSportRequest) ToDomain() *domain.Sport {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &domain.Sport{
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		Active:      active,
	}
}

type CreateAttributeRequest struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	FieldType string   `json:"field_type"`
	Options   []string `json:"options"`
	SportIDs  []uint   `json:"sport_ids"`
}

func (r CreateAttributeRequest) ToDomain() *domain.SportAttribute {
	return &domain.SportAttribute{
		Key:       r.Key,
		Label:     r.Label,
		FieldType: domain.AttributeFieldType(r.FieldType),
		Options:   r.Options,
	}
}
