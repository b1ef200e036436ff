// File: internal/domain/sport.go
package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

type AttributeFieldType string

const (
	FieldString      AttributeFieldType = "string"
	FieldSelect      AttributeFieldType = "select"
	FieldMultiSelect AttributeFieldType = "multi_select"
)

func (t AttributeFieldType) Valid() bool {
	switch t {
	case FieldString, FieldSelect, FieldMultiSelect:
		return true
	}
	return false
}

var attributeKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type Sport struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Category    string    `json:"category" gorm:"size:100;index"`
	Description string    `json:"description" gorm:"type:text"`
	Active      bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Attributes []SportAttribute `json:"attributes,omitempty" gorm:"many2many:sport_attribute_mappings;"`
}

// Validate title-cases the name and checks presence.
func (s *Sport) Validate() error {
	verr := NewValidationError()
	s.Name = Titleize(s.Name)
	s.Category = strings.TrimSpace(s.Category)
	if s.Name == "" {
		verr.Add("name", "can't be blank")
	} else if len(s.Name) > 100 {
		verr.Add("name", "is too long (maximum is 100 characters)")
	}
	if len(s.Category) > 100 {
		verr.Add("category", "is too long (maximum is 100 characters)")
	}
	return verr.OrNil()
}

type SportAttribute struct {
	ID        uint               `json:"id" gorm:"primaryKey"`
	Key       string             `json:"key" gorm:"size:50;not null;uniqueIndex"`
	Label     string             `json:"label" gorm:"size:100;not null"`
	FieldType AttributeFieldType `json:"field_type" gorm:"size:20;not null"`
	Options   []string           `json:"options" gorm:"serializer:json;type:text"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (a *SportAttribute) Validate() error {
	verr := NewValidationError()
	a.Key = strings.ToLower(strings.TrimSpace(a.Key))
	a.Label = strings.TrimSpace(a.Label)
	if a.Key == "" {
		verr.Add("key", "can't be blank")
	} else if !attributeKeyPattern.MatchString(a.Key) {
		verr.Add("key", "may only contain lowercase letters, numbers and underscores")
	}
	if a.Label == "" {
		verr.Add("label", "can't be blank")
	}
	if !a.FieldType.Valid() {
		verr.Add("field_type", "must be one of string, select, multi_select")
	}

	options := a.Options[:0]
	for _, o := range a.Options {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}
	a.Options = options
	if a.FieldType != FieldString && len(a.Options) == 0 {
		verr.Add("options", "can't be blank for select fields")
	}
	return verr.OrNil()
}

func (a *SportAttribute) hasOption(value string) bool {
	for _, o := range a.Options {
		if o == value {
			return true
		}
	}
	return false
}

// SportAttributeMapping is the join row between a sport and its attributes.
type SportAttributeMapping struct {
	SportID          uint      `gorm:"primaryKey"`
	SportAttributeID uint      `gorm:"primaryKey"`
	CreatedAt        time.Time `json:"created_at"`
}

// UserSport is a sport a user practises, with details keyed by the
// sport's attribute keys.
type UserSport struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_user_sport,priority:1"`
	SportID         uint           `json:"sport_id" gorm:"not null;uniqueIndex:idx_user_sport,priority:2;index"`
	Position        string         `json:"position" gorm:"size:100"`
	YearsExperience *int           `json:"years_experience"`
	Primary         bool           `json:"primary" gorm:"column:is_primary;not null;default:false"`
	Details         map[string]any `json:"details" gorm:"serializer:json;type:text"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	Sport *Sport `json:"sport,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// Validate checks the scalar fields and the details against attrs.
func (us *UserSport) Validate(attrs []SportAttribute) error {
	verr := NewValidationError()
	us.Position = strings.TrimSpace(us.Position)
	if len(us.Position) > 100 {
		verr.Add("position", "is too long (maximum is 100 characters)")
	}
	if us.YearsExperience != nil && *us.YearsExperience < 0 {
		verr.Add("years_experience", "must be greater than or equal to 0")
	}
	validateDetails(verr, us.Details, attrs)
	return verr.OrNil()
}

func validateDetails(verr *ValidationError, details map[string]any, attrs []SportAttribute) {
	byKey := make(map[string]*SportAttribute, len(attrs))
	for i := range attrs {
		byKey[attrs[i].Key] = &attrs[i]
	}

	for key, value := range details {
		attr, ok := byKey[key]
		if !ok {
			verr.Add("details", fmt.Sprintf("%s is not an attribute of this sport", key))
			continue
		}
		switch attr.FieldType {
		case FieldString:
			s, ok := value.(string)
			if !ok {
				verr.Add("details", fmt.Sprintf("%s must be a string", key))
			} else if len(s) > EntryStringMax {
				verr.Add("details", fmt.Sprintf("%s is too long (maximum is 255 characters)", key))
			}
		case FieldSelect:
			s, ok := value.(string)
			if !ok || !attr.hasOption(s) {
				verr.Add("details", fmt.Sprintf("%s must be one of %s", key, strings.Join(attr.Options, ", ")))
			}
		case FieldMultiSelect:
			list, ok := value.([]any)
			if !ok {
				verr.Add("details", fmt.Sprintf("%s must be a list", key))
				continue
			}
			for _, item := range list {
				s, ok := item.(string)
				if !ok || !attr.hasOption(s) {
					verr.Add("details", fmt.Sprintf("%s must only contain %s", key, strings.Join(attr.Options, ", ")))
					break
				}
			}
		}
	}
}

// Titleize collapses whitespace and capitalizes each word.
func Titleize(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
