package service

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// PostService enforces editorial rules on top of the post repository:
// slug uniqueness, status transitions, and publish timestamp stamping.
type PostService struct {
	repo repository.PostRepository
}

// NewPostService creates a post service.
func NewPostService(repo repository.PostRepository) *PostService {
	return &PostService{repo: repo}
}

// Create validates and persists a new post.
func (s *PostService) Create(ctx context.Context, post *models.Post) error {
	if err := s.validate(ctx, post, 0); err != nil {
		return err
	}
	stampPublishTime(post, time.Now().UTC())
	return s.repo.Create(ctx, post)
}

// Update validates and persists changes to an existing post.
func (s *PostService) Update(ctx context.Context, post *models.Post) error {
	if err := s.validate(ctx, post, post.ID); err != nil {
		return err
	}
	stampPublishTime(post, time.Now().UTC())
	return s.repo.Update(ctx, post)
}

func (s *PostService) validate(ctx context.Context, post *models.Post, selfID uint) error {
	post.Title = strings.TrimSpace(post.Title)
	post.Slug = strings.TrimSpace(post.Slug)

	if post.Title == "" {
		return models.NewValidationError("title is required")
	}
	if post.Slug == "" {
		return models.NewValidationError("slug is required")
	}
	switch post.Status {
	case models.PostStatusDraft, models.PostStatusPublished, models.PostStatusScheduled:
	default:
		return models.NewValidationError("status must be draft, published, or scheduled")
	}
	if post.Status == models.PostStatusScheduled && post.PublishedAt == nil {
		return models.NewValidationError("scheduled posts require a publish time")
	}

	existing, err := s.repo.GetBySlug(ctx, post.Slug)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return models.NewConflictError("a post with this slug already exists")
		}
	case repository.IsNotFound(err):
		// Slug is free.
	default:
		// A degraded read must not pass for "slug available".
		return models.NewInternalError(err)
	}
	return nil
}

// stampPublishTime backfills published_at for posts published without an
// explicit timestamp, so public visibility starts immediately.
func stampPublishTime(post *models.Post, now time.Time) {
	if post.Status == models.PostStatusPublished && post.PublishedAt == nil {
		post.PublishedAt = &now
	}
}
