package service

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDue_PromotesOnlyDuePosts(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewPostRepository(db, cache.NewMemory())
	svc := NewPublisherService(repo)
	ctx := context.Background()

	author, category := seedPostFixture(t, db)

	now := time.Now().UTC().Truncate(time.Second)
	due := newScheduledPost(t, db, "due", category.ID, author.ID, now.Add(-time.Hour))
	atBoundary := newScheduledPost(t, db, "boundary", category.ID, author.ID, now)
	notDue := newScheduledPost(t, db, "future", category.ID, author.ID, now.Add(time.Hour))

	published, err := svc.PublishDue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, published)

	for _, id := range []uint{due.ID, atBoundary.ID} {
		var got models.Post
		require.NoError(t, db.First(&got, id).Error)
		assert.Equal(t, models.PostStatusPublished, got.Status)
		require.NotNil(t, got.PublishedAt)
		// The promotion time replaces the scheduled time.
		assert.WithinDuration(t, now, *got.PublishedAt, time.Second)
	}

	var still models.Post
	require.NoError(t, db.First(&still, notDue.ID).Error)
	assert.Equal(t, models.PostStatusScheduled, still.Status)
}

func TestPublishDue_NothingQualifying(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewPostRepository(db, cache.NewMemory())
	svc := NewPublisherService(repo)

	author, category := seedPostFixture(t, db)
	newScheduledPost(t, db, "future", category.ID, author.ID, time.Now().UTC().Add(time.Hour))

	published, err := svc.PublishDue(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, published)
}

func TestPublishDue_PromotedPostBecomesVisible(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewPostRepository(db, cache.NewMemory())
	svc := NewPublisherService(repo)
	ctx := context.Background()

	author, category := seedPostFixture(t, db)
	newScheduledPost(t, db, "went-live", category.ID, author.ID, time.Now().UTC().Add(-time.Minute))

	_, err := repo.GetPublicBySlug(ctx, "went-live")
	require.Error(t, err, "scheduled post must be hidden before promotion")

	_, err = svc.PublishDue(ctx, time.Now().UTC())
	require.NoError(t, err)

	post, err := repo.GetPublicBySlug(ctx, "went-live")
	require.NoError(t, err)
	assert.Equal(t, "went-live", post.Slug)
}
