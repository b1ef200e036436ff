// File: internal/repository/post/post_repository.go
package post

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iyunix/go-linksports/internal/domain"
)

var ErrPostNotFound = fmt.Errorf("post %w", domain.ErrNotFound)

type PostRepository interface {
	Create(ctx context.Context, p *domain.Post) error
	FindByID(ctx context.Context, id uint) (*domain.Post, error)
	Delete(ctx context.Context, p *domain.Post) error
	// Feed returns posts visible to viewer given the viewer's connections,
	// newest first.
	Feed(ctx context.Context, viewerID uint, connectedIDs []uint, limit, offset int) ([]domain.Post, int64, error)
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) (bool, error)
	LikedBy(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error)
	AddComment(ctx context.Context, c *domain.Comment) error
	ListComments(ctx context.Context, postID uint, limit, offset int) ([]domain.Comment, int64, error)
}

type gormPostRepository struct {
	db *gorm.DB
}

func NewGormPostRepository(db *gorm.DB) PostRepository {
	return &gormPostRepository{db: db}
}

// Create inserts the post and bumps the author's post counter.
func (r *gormPostRepository) Create(ctx context.Context, p *domain.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
		return tx.Model(&domain.User{}).Where("id = ?", p.UserID).
			Update("posts_count", gorm.Expr("posts_count + 1")).Error
	})
	if err != nil {
		log.Printf("[PostRepository] Database error creating post for user ID %d: %v", p.UserID, err)
		return errors.New("database error creating post")
	}
	return nil
}

func (r *gormPostRepository) FindByID(ctx context.Context, id uint) (*domain.Post, error) {
	var p domain.Post
	err := r.db.WithContext(ctx).Preload("User").First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		log.Printf("[PostRepository] Database query error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &p, nil
}

// Delete removes the post with its likes and comments.
func (r *gormPostRepository) Delete(ctx context.Context, p *domain.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", p.ID).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", p.ID).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Post{}, p.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return tx.Model(&domain.User{}).Where("id = ? AND posts_count > 0", p.UserID).
			Update("posts_count", gorm.Expr("posts_count - 1")).Error
	})
	if errors.Is(err, ErrPostNotFound) {
		return err
	}
	if err != nil {
		log.Printf("[PostRepository] Database error deleting post ID %d: %v", p.ID, err)
		return errors.New("database error deleting post")
	}
	return nil
}

func (r *gormPostRepository) Feed(ctx context.Context, viewerID uint, connectedIDs []uint, limit, offset int) ([]domain.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("visibility = ? OR user_id = ?", domain.VisibilityPublic, viewerID)
	if len(connectedIDs) > 0 {
		query = query.Or("visibility = ? AND user_id IN ?", domain.VisibilityConnections, connectedIDs)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("[PostRepository] Database error counting feed for user ID %d: %v", viewerID, err)
		return nil, 0, errors.New("database error loading feed")
	}

	var posts []domain.Post
	err := query.Preload("User").Order("created_at desc, id desc").Limit(limit).Offset(offset).Find(&posts).Error
	if err != nil {
		log.Printf("[PostRepository] Database error loading feed for user ID %d: %v", viewerID, err)
		return nil, 0, errors.New("database error loading feed")
	}
	return posts, total, nil
}

// Like is idempotent. It reports whether a new like was recorded.
func (r *gormPostRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&domain.Like{UserID: userID, PostID: postID})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		created = true
		return tx.Model(&domain.Post{}).Where("id = ?", postID).
			Update("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if err != nil {
		log.Printf("[PostRepository] Database error liking post ID %d: %v", postID, err)
		return false, errors.New("database error liking post")
	}
	return created, nil
}

func (r *gormPostRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&domain.Like{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		removed = true
		return tx.Model(&domain.Post{}).Where("id = ? AND likes_count > 0", postID).
			Update("likes_count", gorm.Expr("likes_count - 1")).Error
	})
	if err != nil {
		log.Printf("[PostRepository] Database error unliking post ID %d: %v", postID, err)
		return false, errors.New("database error unliking post")
	}
	return removed, nil
}

func (r *gormPostRepository) LikedBy(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool, len(postIDs))
	if len(postIDs) == 0 {
		return liked, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&domain.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		log.Printf("[PostRepository] Database error loading likes for user ID %d: %v", userID, err)
		return nil, errors.New("database error loading likes")
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func (r *gormPostRepository) AddComment(ctx context.Context, c *domain.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Post{}).Where("id = ?", c.PostID).
			Update("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	if err != nil {
		log.Printf("[PostRepository] Database error adding comment to post ID %d: %v", c.PostID, err)
		return errors.New("database error adding comment")
	}
	return nil
}

func (r *gormPostRepository) ListComments(ctx context.Context, postID uint, limit, offset int) ([]domain.Comment, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Comment{}).Where("post_id = ?", postID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("[PostRepository] Database error counting comments for post ID %d: %v", postID, err)
		return nil, 0, errors.New("database error loading comments")
	}
	var comments []domain.Comment
	if err := query.Preload("User").Order("created_at asc, id asc").Limit(limit).Offset(offset).Find(&comments).Error; err != nil {
		log.Printf("[PostRepository] Database error loading comments for post ID %d: %v", postID, err)
		return nil, 0, errors.New("database error loading comments")
	}
	return comments, total, nil
}
