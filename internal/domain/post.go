// File: internal/domain/post.go
package domain

import (
	"strings"
	"time"
)

type PostVisibility string

const (
	VisibilityPublic      PostVisibility = "public"
	VisibilityConnections PostVisibility = "connections"
	VisibilityPrivate     PostVisibility = "private"
)

func (v PostVisibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityConnections, VisibilityPrivate:
		return true
	}
	return false
}

const (
	PostContentMaxLength    = 4000
	CommentContentMaxLength = 1000
)

type Post struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	UserID        uint           `json:"user_id" gorm:"not null;index"`
	Content       string         `json:"content" gorm:"type:text;not null"`
	Visibility    PostVisibility `json:"visibility" gorm:"size:20;not null;default:public;index"`
	LikesCount    int            `json:"likes_count" gorm:"not null;default:0"`
	CommentsCount int            `json:"comments_count" gorm:"not null;default:0"`
	CreatedAt     time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time      `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// Validate trims the content and checks length and visibility.
func (p *Post) Validate() error {
	verr := NewValidationError()
	p.Content = strings.TrimSpace(p.Content)
	if p.Content == "" {
		verr.Add("content", "can't be blank")
	} else if len([]rune(p.Content)) > PostContentMaxLength {
		verr.Add("content", "is too long (maximum is 4000 characters)")
	}
	if p.Visibility == "" {
		p.Visibility = VisibilityPublic
	}
	if !p.Visibility.Valid() {
		verr.Add("visibility", "must be one of public, connections, private")
	}
	return verr.OrNil()
}

// VisibleTo reports whether viewer may read the post. connected is whether
// viewer has an accepted connection with the author.
func (p *Post) VisibleTo(viewer uint, connected bool) bool {
	if p.UserID == viewer {
		return true
	}
	switch p.Visibility {
	case VisibilityPublic:
		return true
	case VisibilityConnections:
		return connected
	}
	return false
}

type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_like_user_post,priority:1"`
	PostID    uint      `json:"post_id" gorm:"not null;uniqueIndex:idx_like_user_post,priority:2;index"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

func (c *Comment) Validate() error {
	verr := NewValidationError()
	c.Content = strings.TrimSpace(c.Content)
	if c.Content == "" {
		verr.Add("content", "can't be blank")
	} else if len([]rune(c.Content)) > CommentContentMaxLength {
		verr.Add("content", "is too long (maximum is 1000 characters)")
	}
	return verr.OrNil()
}
