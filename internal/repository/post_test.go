package repository

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPublicBySlug_VisibilityBoundary(t *testing.T) {
	db := newTestDB(t)
	store := cache.NewMemory()
	repo := NewPostRepository(db, store)
	ctx := context.Background()

	author := createAuthor(t, db, "jane")
	category := createCategory(t, db, "engineering")

	// Publish timestamp exactly at (just before) now: visible, the boundary
	// is inclusive.
	atNow := time.Now().UTC().Add(-time.Millisecond)
	createPost(t, db, "at-now", category.ID, author.ID, postOpts{publishedAt: &atNow})

	future := time.Now().UTC().Add(time.Hour)
	createPost(t, db, "future", category.ID, author.ID, postOpts{publishedAt: &future})

	createPost(t, db, "draft", category.ID, author.ID, postOpts{status: models.PostStatusDraft})

	post, err := repo.GetPublicBySlug(ctx, "at-now")
	require.NoError(t, err)
	assert.Equal(t, "at-now", post.Slug)

	_, err = repo.GetPublicBySlug(ctx, "future")
	assert.True(t, IsNotFound(err), "future-dated post must not be publicly visible")

	_, err = repo.GetPublicBySlug(ctx, "draft")
	assert.True(t, IsNotFound(err))

	// The admin path sees everything.
	_, err = repo.GetBySlug(ctx, "future")
	assert.NoError(t, err)
}

func TestAdjacentBySlug(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db, cache.NewMemory())
	ctx := context.Background()

	author := createAuthor(t, db, "jane")
	category := createCategory(t, db, "engineering")

	now := time.Now().UTC()
	times := []time.Time{now.Add(-3 * time.Hour), now.Add(-2 * time.Hour), now.Add(-time.Hour)}
	createPost(t, db, "first", category.ID, author.ID, postOpts{publishedAt: &times[0]})
	createPost(t, db, "second", category.ID, author.ID, postOpts{publishedAt: &times[1]})
	createPost(t, db, "third", category.ID, author.ID, postOpts{publishedAt: &times[2]})

	prev, next, err := repo.AdjacentBySlug(ctx, "second")
	require.NoError(t, err)
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, "first", prev.Slug)
	assert.Equal(t, "third", next.Slug)

	prev, next, err = repo.AdjacentBySlug(ctx, "first")
	require.NoError(t, err)
	assert.Nil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, "second", next.Slug)

	prev, next, err = repo.AdjacentBySlug(ctx, "third")
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Nil(t, next)
	assert.Equal(t, "second", prev.Slug)
}

func TestListingsServedThroughCache(t *testing.T) {
	db := newTestDB(t)
	store := cache.NewMemory()
	repo := NewPostRepository(db, store)
	ctx := context.Background()

	author := createAuthor(t, db, "jane")
	category := createCategory(t, db, "engineering")
	createPost(t, db, "one", category.ID, author.ID, postOpts{featured: true})

	posts, err := repo.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	// The listing is now cached.
	_, found, _ := store.Get(ctx, cache.KeyFeaturedPosts)
	assert.True(t, found)

	// A second read comes from the cache even if the table changes behind it.
	require.NoError(t, db.Exec("DELETE FROM posts").Error)
	posts, err = repo.Featured(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestWriteInvalidatesListings(t *testing.T) {
	db := newTestDB(t)
	store := cache.NewMemory()
	repo := NewPostRepository(db, store)
	ctx := context.Background()

	author := createAuthor(t, db, "jane")
	category := createCategory(t, db, "engineering")
	createPost(t, db, "one", category.ID, author.ID, postOpts{featured: true, trending: true})

	// Warm every listing.
	_, err := repo.Featured(ctx)
	require.NoError(t, err)
	_, err = repo.Trending(ctx)
	require.NoError(t, err)
	_, err = repo.Latest(ctx)
	require.NoError(t, err)

	// A write through the repository evicts them all.
	post := &models.Post{
		Title: "Two", Slug: "two", Content: "c",
		Status: models.PostStatusDraft, CategoryID: category.ID, AuthorID: author.ID,
	}
	require.NoError(t, repo.Create(ctx, post))

	for _, key := range []string{cache.KeyFeaturedPosts, cache.KeyTrendingPosts, cache.KeyLatestPosts, cache.KeyCategoriesWithCounts} {
		_, found, _ := store.Get(ctx, key)
		assert.False(t, found, "key %s should be evicted after a post write", key)
	}
}

func TestPublish_StampsPromotionTime(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db, cache.NewMemory())
	ctx := context.Background()

	author := createAuthor(t, db, "jane")
	category := createCategory(t, db, "engineering")

	scheduledFor := time.Now().UTC().Add(-time.Minute)
	post := createPost(t, db, "scheduled", category.ID, author.ID, postOpts{
		status:      models.PostStatusScheduled,
		publishedAt: &scheduledFor,
	})

	promotedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Publish(ctx, post.ID, promotedAt))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublished, got.Status)
	require.NotNil(t, got.PublishedAt)
	assert.WithinDuration(t, promotedAt, *got.PublishedAt, time.Second)

	// Publishing a missing post reports not found.
	err = repo.Publish(ctx, 99999, promotedAt)
	assert.True(t, IsNotFound(err))
}

func TestListDueScheduled_BoundaryInclusive(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db, cache.NewMemory())
	ctx := context.Background()

	author := createAuthor(t, db, "jane")
	category := createCategory(t, db, "engineering")

	now := time.Now().UTC().Truncate(time.Second)
	atNow := now
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	createPost(t, db, "due-now", category.ID, author.ID, postOpts{status: models.PostStatusScheduled, publishedAt: &atNow})
	createPost(t, db, "due-past", category.ID, author.ID, postOpts{status: models.PostStatusScheduled, publishedAt: &past})
	createPost(t, db, "not-due", category.ID, author.ID, postOpts{status: models.PostStatusScheduled, publishedAt: &future})
	createPost(t, db, "already-live", category.ID, author.ID, postOpts{})

	due, err := repo.ListDueScheduled(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "due-past", due[0].Slug)
	assert.Equal(t, "due-now", due[1].Slug)
}

func TestDelete_CascadesOwnedRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db, cache.NewMemory())
	ctx := context.Background()

	author := createAuthor(t, db, "jane")
	category := createCategory(t, db, "engineering")
	user := createUser(t, db, "reader@example.com")
	post := createPost(t, db, "doomed", category.ID, author.ID, postOpts{})

	require.NoError(t, db.Create(&models.Comment{PostID: post.ID, Content: "hi", Status: models.CommentStatusApproved}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: user.ID, TargetKind: models.LikeTargetPost, TargetID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Save{UserID: user.ID, PostID: post.ID}).Error)

	require.NoError(t, repo.Delete(ctx, post.ID))

	var comments, likes, saves int64
	db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments)
	db.Model(&models.Like{}).Where("target_kind = ? AND target_id = ?", models.LikeTargetPost, post.ID).Count(&likes)
	db.Model(&models.Save{}).Where("post_id = ?", post.ID).Count(&saves)
	assert.Zero(t, comments)
	assert.Zero(t, likes)
	assert.Zero(t, saves)

	_, err := repo.GetByID(ctx, post.ID)
	assert.True(t, IsNotFound(err))
}

func TestIncrementViews(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db, cache.NewMemory())
	ctx := context.Background()

	author := createAuthor(t, db, "jane")
	category := createCategory(t, db, "engineering")
	post := createPost(t, db, "viewed", category.ID, author.ID, postOpts{})

	require.NoError(t, repo.IncrementViews(ctx, post.ID))
	require.NoError(t, repo.IncrementViews(ctx, post.ID))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ViewsCount)
}
