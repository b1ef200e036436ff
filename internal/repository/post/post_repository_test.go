package post

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/testutil"
)

func TestFeedVisibility(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormPostRepository(db)
	ctx := context.Background()
	viewer := testutil.CreateUser(t, db, "viewer", domain.UserTypePlayer)
	friend := testutil.CreateUser(t, db, "friend", domain.UserTypePlayer)
	stranger := testutil.CreateUser(t, db, "stranger", domain.UserTypePlayer)

	create := func(u *domain.User, v domain.PostVisibility) *domain.Post {
		p := &domain.Post{UserID: u.ID, Content: string(v) + " by " + u.Username, Visibility: v}
		require.NoError(t, repo.Create(ctx, p))
		return p
	}
	create(stranger, domain.VisibilityPublic)
	create(stranger, domain.VisibilityConnections)
	create(stranger, domain.VisibilityPrivate)
	create(friend, domain.VisibilityConnections)
	create(friend, domain.VisibilityPrivate)
	create(viewer, domain.VisibilityPrivate)

	posts, total, err := repo.Feed(ctx, viewer.ID, []uint{friend.ID}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	var contents []string
	for _, p := range posts {
		contents = append(contents, p.Content)
		require.NotNil(t, p.User)
	}
	assert.ElementsMatch(t, []string{
		"public by stranger",
		"connections by friend",
		"private by viewer",
	}, contents)

	_, total, err = repo.Feed(ctx, viewer.ID, nil, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	var author domain.User
	require.NoError(t, db.First(&author, stranger.ID).Error)
	assert.Equal(t, 3, author.PostsCount)
}

func TestLikeCommentAndDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormPostRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "author", domain.UserTypeCoach)
	fan := testutil.CreateUser(t, db, "fan", domain.UserTypePlayer)

	p := &domain.Post{UserID: author.ID, Content: "match day", Visibility: domain.VisibilityPublic}
	require.NoError(t, repo.Create(ctx, p))

	created, err := repo.Like(ctx, fan.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = repo.Like(ctx, fan.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, repo.AddComment(ctx, &domain.Comment{PostID: p.ID, UserID: fan.ID, Content: "well played"}))

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.LikesCount)
	assert.Equal(t, 1, stored.CommentsCount)

	liked, err := repo.LikedBy(ctx, fan.ID, []uint{p.ID})
	require.NoError(t, err)
	assert.True(t, liked[p.ID])

	comments, total, err := repo.ListComments(ctx, p.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "well played", comments[0].Content)

	removed, err := repo.Unlike(ctx, fan.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Unlike(ctx, fan.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, repo.Delete(ctx, stored))
	_, err = repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, stored), ErrPostNotFound)

	var count int64
	require.NoError(t, db.Model(&domain.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
	var u domain.User
	require.NoError(t, db.First(&u, author.ID).Error)
	assert.Equal(t, 0, u.PostsCount)
}
