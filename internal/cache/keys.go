package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inkwell/internal/observability"
)

// Named cache keys. These are the only entries the system maintains; every
// other query goes straight to the database.
const (
	KeyFeaturedPosts        = "posts.featured"
	KeyTrendingPosts        = "posts.trending"
	KeyLatestPosts          = "posts.latest"
	KeyCategoriesWithCounts = "categories.with_posts_count"

	categoryPostsKeyFmt = "category.%d.with_posts"
)

// DefaultTTL bounds the lifetime of every named entry. Set once at startup
// from configuration, before any traffic is served.
var DefaultTTL = time.Hour

// SetDefaultTTL overrides the listing TTL. Non-positive values are ignored.
func SetDefaultTTL(d time.Duration) {
	if d > 0 {
		DefaultTTL = d
	}
}

// CategoryPostsKey is the per-category listing key.
func CategoryPostsKey(categoryID uint) string {
	return fmt.Sprintf(categoryPostsKeyFmt, categoryID)
}

// Invalidate evicts the given keys. Eviction failure must never fail the write
// that triggered it: errors are logged as a degraded-cache condition and
// swallowed.
func Invalidate(ctx context.Context, store Store, keys ...string) {
	if store == nil || len(keys) == 0 {
		return
	}
	for _, k := range keys {
		observability.CacheInvalidations.WithLabelValues(k).Inc()
	}
	if err := store.Delete(ctx, keys...); err != nil {
		slog.WarnContext(ctx, "cache invalidation failed, serving degraded",
			slog.Any("keys", keys),
			slog.String("error", err.Error()),
		)
	}
}

// InvalidateOnPostWrite evicts every entry a post write can stale: the three
// post listings plus the category counts (per-category post counts may have
// changed).
func InvalidateOnPostWrite(ctx context.Context, store Store) {
	Invalidate(ctx, store,
		KeyFeaturedPosts,
		KeyTrendingPosts,
		KeyLatestPosts,
		KeyCategoriesWithCounts,
	)
}

// InvalidateOnCategoryWrite evicts the category count listing and the written
// category's own listing.
func InvalidateOnCategoryWrite(ctx context.Context, store Store, categoryID uint) {
	Invalidate(ctx, store,
		KeyCategoriesWithCounts,
		CategoryPostsKey(categoryID),
	)
}
