package service

import (
	"context"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// PublisherService promotes scheduled posts whose publish time has arrived.
// It runs from the publisher command, typically on a cron cadence.
type PublisherService struct {
	repo repository.PostRepository
}

// NewPublisherService creates a publisher service.
func NewPublisherService(repo repository.PostRepository) *PublisherService {
	return &PublisherService{repo: repo}
}

// PublishDue promotes every scheduled post with published_at <= now to
// published, stamping the promotion time. A post that fails to promote is
// logged and skipped so one bad row does not block the batch. Returns the
// number of posts promoted.
func (s *PublisherService) PublishDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.ListDueScheduled(ctx, now)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, post := range due {
		if err := s.repo.Publish(ctx, post.ID, now); err != nil {
			middleware.Logger.Error("failed to publish scheduled post",
				"post_id", post.ID, "slug", post.Slug, "error", err)
			continue
		}
		middleware.Logger.Info("published scheduled post",
			"post_id", post.ID, "slug", post.Slug)
		published++
	}

	if published > 0 {
		observability.ScheduledPostsPublished.Add(float64(published))
	}
	return published, nil
}
