// File: internal/services/social_services/post_service.go
package social_services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/repository"
	"github.com/iyunix/go-linksports/internal/repository/post"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 50
)

// ConnectionLookup answers the graph questions post visibility needs.
type ConnectionLookup interface {
	ConnectedUserIDs(ctx context.Context, userID uint) ([]uint, error)
	IsConnected(ctx context.Context, a, b uint) (bool, error)
}

// PostView is a post with its rendered body and the viewer's like state.
type PostView struct {
	Post        domain.Post
	ContentHTML string
	LikedByMe   bool
}

type PostService struct {
	posts       post.PostRepository
	connections ConnectionLookup
	markdown    goldmark.Markdown
	logger      Logger
}

func NewPostService(posts post.PostRepository, connections ConnectionLookup, logger Logger) *PostService {
	return &PostService{
		posts:       posts,
		connections: connections,
		// Raw HTML in content is dropped by the default renderer.
		markdown: goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough)),
		logger:   logger,
	}
}

// Render converts markdown post content to HTML.
func (s *PostService) Render(content string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("failed to render content: %w", err)
	}
	return buf.String(), nil
}

func (s *PostService) Create(ctx context.Context, authorID uint, content string, visibility domain.PostVisibility) (*PostView, error) {
	p := &domain.Post{UserID: authorID, Content: content, Visibility: visibility}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.posts.Create(ctx, p); err != nil {
		s.logger.Error("post creation failed", "error", err, "user_id", authorID)
		return nil, err
	}
	s.logger.Info("post created", "post_id", p.ID, "user_id", authorID, "visibility", p.Visibility)

	stored, err := s.posts.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return s.view(stored, false)
}

// Get returns the post when viewer may see it and ErrForbidden otherwise.
func (s *PostService) Get(ctx context.Context, viewerID, postID uint) (*PostView, error) {
	p, err := s.visiblePost(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}
	liked, err := s.posts.LikedBy(ctx, viewerID, []uint{p.ID})
	if err != nil {
		return nil, err
	}
	return s.view(p, liked[p.ID])
}

// Delete removes the post. Only the author may delete it.
func (s *PostService) Delete(ctx context.Context, actorID, postID uint) error {
	p, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if p.UserID != actorID {
		s.logger.Warn("post delete by non-author", "post_id", postID, "actor_id", actorID)
		return domain.ErrForbidden
	}
	if err := s.posts.Delete(ctx, p); err != nil {
		return err
	}
	s.logger.Info("post deleted", "post_id", postID, "user_id", actorID)
	return nil
}

// Feed lists public posts, the viewer's own posts and connection-only posts
// of the viewer's connections, newest first.
func (s *PostService) Feed(ctx context.Context, viewerID uint, page, perPage int) ([]PostView, int64, error) {
	connected, err := s.connections.ConnectedUserIDs(ctx, viewerID)
	if err != nil {
		return nil, 0, err
	}
	limit, offset := repository.Page(page, perPage, DefaultPerPage, MaxPerPage)
	posts, total, err := s.posts.Feed(ctx, viewerID, connected, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	liked, err := s.posts.LikedBy(ctx, viewerID, ids)
	if err != nil {
		return nil, 0, err
	}

	views := make([]PostView, 0, len(posts))
	for i := range posts {
		v, err := s.view(&posts[i], liked[posts[i].ID])
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *v)
	}
	return views, total, nil
}

// Like records the viewer's like and returns the new like count.
func (s *PostService) Like(ctx context.Context, viewerID, postID uint) (int, error) {
	if _, err := s.visiblePost(ctx, viewerID, postID); err != nil {
		return 0, err
	}
	if _, err := s.posts.Like(ctx, viewerID, postID); err != nil {
		return 0, err
	}
	return s.likesCount(ctx, postID)
}

func (s *PostService) Unlike(ctx context.Context, viewerID, postID uint) (int, error) {
	if _, err := s.visiblePost(ctx, viewerID, postID); err != nil {
		return 0, err
	}
	if _, err := s.posts.Unlike(ctx, viewerID, postID); err != nil {
		return 0, err
	}
	return s.likesCount(ctx, postID)
}

func (s *PostService) AddComment(ctx context.Context, viewerID, postID uint, content string) (*domain.Comment, error) {
	if _, err := s.visiblePost(ctx, viewerID, postID); err != nil {
		return nil, err
	}
	c := &domain.Comment{PostID: postID, UserID: viewerID, Content: content}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.posts.AddComment(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("comment added", "post_id", postID, "user_id", viewerID, "comment_id", c.ID)
	return c, nil
}

func (s *PostService) ListComments(ctx context.Context, viewerID, postID uint, page, perPage int) ([]domain.Comment, int64, error) {
	if _, err := s.visiblePost(ctx, viewerID, postID); err != nil {
		return nil, 0, err
	}
	limit, offset := repository.Page(page, perPage, DefaultPerPage, MaxPerPage)
	return s.posts.ListComments(ctx, postID, limit, offset)
}

func (s *PostService) visiblePost(ctx context.Context, viewerID, postID uint) (*domain.Post, error) {
	p, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	connected := false
	if p.UserID != viewerID && p.Visibility == domain.VisibilityConnections {
		if connected, err = s.connections.IsConnected(ctx, viewerID, p.UserID); err != nil {
			return nil, err
		}
	}
	if !p.VisibleTo(viewerID, connected) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func (s *PostService) likesCount(ctx context.Context, postID uint) (int, error) {
	p, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return 0, err
	}
	return p.LikesCount, nil
}

func (s *PostService) view(p *domain.Post, liked bool) (*PostView, error) {
	html, err := s.Render(p.Content)
	if err != nil {
		return nil, err
	}
	return &PostView{Post: *p, ContentHTML: html, LikedByMe: liked}, nil
}
