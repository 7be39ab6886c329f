package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostService(t *testing.T) (*PostService, *models.Author, *models.Category) {
	t.Helper()
	db := newTestDB(t)
	author, category := seedPostFixture(t, db)
	return NewPostService(repository.NewPostRepository(db, cache.NewMemory())), author, category
}

func appErrCode(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func TestPostCreate_Validation(t *testing.T) {
	svc, author, category := newPostService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		post     models.Post
		wantCode string
	}{
		{"missing title", models.Post{Slug: "s", Status: models.PostStatusDraft}, "VALIDATION_ERROR"},
		{"missing slug", models.Post{Title: "T", Status: models.PostStatusDraft}, "VALIDATION_ERROR"},
		{"bad status", models.Post{Title: "T", Slug: "s", Status: "archived"}, "VALIDATION_ERROR"},
		{"scheduled without time", models.Post{Title: "T", Slug: "s", Status: models.PostStatusScheduled}, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.post.CategoryID = category.ID
			tt.post.AuthorID = author.ID
			tt.post.Content = "c"
			err := svc.Create(ctx, &tt.post)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, appErrCode(err))
		})
	}
}

func TestPostCreate_DuplicateSlugConflicts(t *testing.T) {
	svc, author, category := newPostService(t)
	ctx := context.Background()

	first := &models.Post{
		Title: "First", Slug: "shared", Content: "c",
		Status: models.PostStatusDraft, CategoryID: category.ID, AuthorID: author.ID,
	}
	require.NoError(t, svc.Create(ctx, first))

	dup := &models.Post{
		Title: "Second", Slug: "shared", Content: "c",
		Status: models.PostStatusDraft, CategoryID: category.ID, AuthorID: author.ID,
	}
	err := svc.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", appErrCode(err))

	// Updating a post under its own slug is not a conflict.
	first.Title = "First, revised"
	assert.NoError(t, svc.Update(ctx, first))
}

func TestPostCreate_SlugCheckFailurePropagates(t *testing.T) {
	db := newTestDB(t)
	author, category := seedPostFixture(t, db)
	svc := NewPostService(repository.NewPostRepository(db, cache.NewMemory()))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	// A failed uniqueness read must not be mistaken for a free slug.
	post := &models.Post{
		Title: "Unreachable", Slug: "unreachable", Content: "c",
		Status: models.PostStatusDraft, CategoryID: category.ID, AuthorID: author.ID,
	}
	err = svc.Create(context.Background(), post)
	require.Error(t, err)
	assert.Equal(t, "INTERNAL_ERROR", appErrCode(err))
}

func TestPostCreate_PublishStampsTimestamp(t *testing.T) {
	svc, author, category := newPostService(t)
	ctx := context.Background()

	post := &models.Post{
		Title: "Live now", Slug: "live-now", Content: "c",
		Status: models.PostStatusPublished, CategoryID: category.ID, AuthorID: author.ID,
	}
	require.NoError(t, svc.Create(ctx, post))
	require.NotNil(t, post.PublishedAt)
	assert.WithinDuration(t, time.Now().UTC(), *post.PublishedAt, 5*time.Second)

	// An explicit timestamp is preserved.
	explicit := time.Now().UTC().Add(-24 * time.Hour)
	backdated := &models.Post{
		Title: "Backdated", Slug: "backdated", Content: "c",
		Status: models.PostStatusPublished, PublishedAt: &explicit,
		CategoryID: category.ID, AuthorID: author.ID,
	}
	require.NoError(t, svc.Create(ctx, backdated))
	assert.True(t, backdated.PublishedAt.Equal(explicit))
}
