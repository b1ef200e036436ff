// File: internal/dtos/social.go
package dtos

import (
	"time"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/services/social_services"
)

type ConnectionResponse struct {
	ID          uint         `json:"id"`
	RequesterID uint         `json:"requester_id"`
	AddresseeID uint         `json:"addressee_id"`
	Status      string       `json:"status"`
	BlockedByID *uint        `json:"blocked_by_id,omitempty"`
	ConnectedAt *string      `json:"connected_at,omitempty"`
	Requester   *UserSummary `json:"requester,omitempty"`
	Addressee   *UserSummary `json:"addressee,omitempty"`
	CreatedAt   string       `json:"created_at"`
}

type ConnectionRequest struct {
	AddresseeID uint `json:"addressee_id"`
}

type ConnectionStatusRequest struct {
	Status string `json:"status"`
}

type PostResponse struct {
	ID            uint         `json:"id"`
	Content       string       `json:"content"`
	ContentHTML   string       `json:"content_html"`
	Visibility    string       `json:"visibility"`
	LikesCount    int          `json:"likes_count"`
	CommentsCount int          `json:"comments_count"`
	LikedByMe     bool         `json:"liked_by_me"`
	Author        *UserSummary `json:"author,omitempty"`
	CreatedAt     string       `json:"created_at"`
}

type CreatePostRequest struct {
	Content    string `json:"content"`
	Visibility string `json:"visibility"`
}

type CommentResponse struct {
	ID        uint         `json:"id"`
	PostID    uint         `json:"post_id"`
	Content   string       `json:"content"`
	Author    *UserSummary `json:"author,omitempty"`
	CreatedAt string       `json:"created_at"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}

type LikeResponse struct {
	PostID     uint `json:"post_id"`
	LikesCount int  `json:"likes_count"`
	Liked      bool `json:"liked"`
}

func FromConnection(c domain.Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:          c.ID,
		RequesterID: c.RequesterID,
		AddresseeID: c.AddresseeID,
		Status:      string(c.Status),
		BlockedByID: c.BlockedByID,
		ConnectedAt: formatTimePtr(c.ConnectedAt),
		Requester:   SummaryOf(c.Requester),
		Addressee:   SummaryOf(c.Addressee),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

func FromConnections(conns []domain.Connection) []ConnectionResponse {
	out := make([]ConnectionResponse, len(conns))
	for i, c := range conns {
		out[i] = FromConnection(c)
	}
	return out
}

func FromPostView(v social_services.PostView) PostResponse {
	return PostResponse{
		ID:            v.Post.ID,
		Content:       v.Post.Content,
		ContentHTML:   v.ContentHTML,
		Visibility:    string(v.Post.Visibility),
		LikesCount:    v.Post.LikesCount,
		CommentsCount: v.Post.CommentsCount,
		LikedByMe:     v.LikedByMe,
		Author:        SummaryOf(v.Post.User),
		CreatedAt:     v.Post.CreatedAt.Format(time.RFC3339),
	}
}

func FromPostViews(views []social_services.PostView) []PostResponse {
	out := make([]PostResponse, len(views))
	for i, v := range views {
		out[i] = FromPostView(v)
	}
	return out
}

func FromComments(comments []domain.Comment) []CommentResponse {
	out := make([]CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = FromComment(c)
	}
	return out
}

func FromComment(c domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		Author:    SummaryOf(c.User),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
