// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Number of posts served by the featured/trending/latest listings.
const homeListingLimit = 10

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetPublicBySlug(ctx context.Context, slug string) (*models.Post, error)
	AdjacentBySlug(ctx context.Context, slug string) (prev, next *models.Post, err error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	ListPublic(ctx context.Context, limit, offset int) ([]*models.Post, error)
	ListByCategory(ctx context.Context, categoryID uint, limit, offset int) ([]*models.Post, error)
	Featured(ctx context.Context) ([]*models.Post, error)
	Trending(ctx context.Context) ([]*models.Post, error)
	Latest(ctx context.Context) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
	ListDueScheduled(ctx context.Context, now time.Time) ([]*models.Post, error)
	Publish(ctx context.Context, id uint, at time.Time) error
	WarmListings(ctx context.Context) error
}

// postRepository implements PostRepository
type postRepository struct {
	db    *gorm.DB
	store cache.Store
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB, store cache.Store) PostRepository {
	return &postRepository{db: db, store: store}
}

// publicScope restricts a query to publicly visible posts: published status
// with a publish timestamp at or before now (boundary inclusive).
func publicScope(db *gorm.DB, now time.Time) *gorm.DB {
	return db.
		Where("status = ?", models.PostStatusPublished).
		Where("published_at IS NOT NULL AND published_at <= ?", now)
}

func (r *postRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Author").
		Preload("Tags").
		Preload("FeaturedMedia")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return err
	}
	cache.InvalidateOnPostWrite(ctx, r.store)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.withRelations(r.db.WithContext(ctx)).First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("slug = ?", slug).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetPublicBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := r.withRelations(publicScope(r.db.WithContext(ctx), time.Now().UTC())).
		Where("slug = ?", slug).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// AdjacentBySlug returns the previous and next publicly visible posts by
// publish date relative to the post with the given slug. Either side may be
// nil at the edges of the timeline.
func (r *postRepository) AdjacentBySlug(ctx context.Context, slug string) (*models.Post, *models.Post, error) {
	current, err := r.GetPublicBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()

	var prev models.Post
	err = publicScope(r.db.WithContext(ctx), now).
		Where("published_at < ?", current.PublishedAt).
		Order("published_at DESC").
		First(&prev).Error
	prevPtr := &prev
	if err != nil {
		if !IsNotFound(err) {
			return nil, nil, err
		}
		prevPtr = nil
	}

	var next models.Post
	err = publicScope(r.db.WithContext(ctx), now).
		Where("published_at > ?", current.PublishedAt).
		Order("published_at ASC").
		First(&next).Error
	nextPtr := &next
	if err != nil {
		if !IsNotFound(err) {
			return nil, nil, err
		}
		nextPtr = nil
	}

	return prevPtr, nextPtr, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.withRelations(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListPublic(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.withRelations(publicScope(r.db.WithContext(ctx), time.Now().UTC())).
		Order("published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByCategory(ctx context.Context, categoryID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.withRelations(publicScope(r.db.WithContext(ctx), time.Now().UTC())).
		Where("category_id = ?", categoryID).
		Order("published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// Featured serves the featured listing through the content cache.
func (r *postRepository) Featured(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := cache.Aside(ctx, r.store, cache.KeyFeaturedPosts, &posts, cache.DefaultTTL, func() error {
		return r.queryFeatured(ctx, &posts)
	})
	return posts, err
}

// Trending serves the trending listing through the content cache.
func (r *postRepository) Trending(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := cache.Aside(ctx, r.store, cache.KeyTrendingPosts, &posts, cache.DefaultTTL, func() error {
		return r.queryTrending(ctx, &posts)
	})
	return posts, err
}

// Latest serves the most recent published posts through the content cache.
func (r *postRepository) Latest(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := cache.Aside(ctx, r.store, cache.KeyLatestPosts, &posts, cache.DefaultTTL, func() error {
		return r.queryLatest(ctx, &posts)
	})
	return posts, err
}

func (r *postRepository) queryFeatured(ctx context.Context, dest *[]*models.Post) error {
	return r.withRelations(publicScope(r.db.WithContext(ctx), time.Now().UTC())).
		Where("is_featured = ?", true).
		Order("published_at DESC").
		Limit(homeListingLimit).
		Find(dest).Error
}

func (r *postRepository) queryTrending(ctx context.Context, dest *[]*models.Post) error {
	return r.withRelations(publicScope(r.db.WithContext(ctx), time.Now().UTC())).
		Where("is_trending = ?", true).
		Order("published_at DESC").
		Limit(homeListingLimit).
		Find(dest).Error
}

func (r *postRepository) queryLatest(ctx context.Context, dest *[]*models.Post) error {
	return r.withRelations(publicScope(r.db.WithContext(ctx), time.Now().UTC())).
		Order("published_at DESC").
		Limit(homeListingLimit).
		Find(dest).Error
}

// WarmListings recomputes and stores the cached listings. Used by the
// maintenance command's rewarm phase.
func (r *postRepository) WarmListings(ctx context.Context) error {
	var featured, trending, latest []*models.Post
	if err := r.queryFeatured(ctx, &featured); err != nil {
		return err
	}
	if err := cache.SetJSON(ctx, r.store, cache.KeyFeaturedPosts, featured, cache.DefaultTTL); err != nil {
		return err
	}
	if err := r.queryTrending(ctx, &trending); err != nil {
		return err
	}
	if err := cache.SetJSON(ctx, r.store, cache.KeyTrendingPosts, trending, cache.DefaultTTL); err != nil {
		return err
	}
	if err := r.queryLatest(ctx, &latest); err != nil {
		return err
	}
	return cache.SetJSON(ctx, r.store, cache.KeyLatestPosts, latest, cache.DefaultTTL)
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.InvalidateOnPostWrite(ctx, r.store)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Comments and engagement rows are owned by the post.
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("target_kind = ? AND target_id = ?", models.LikeTargetPost, id).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Save{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidateOnPostWrite(ctx, r.store)
	return nil
}

func (r *postRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
}

// ListDueScheduled returns scheduled posts whose publish timestamp has passed.
// The boundary is inclusive.
func (r *postRepository) ListDueScheduled(ctx context.Context, now time.Time) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("status = ?", models.PostStatusScheduled).
		Where("published_at IS NOT NULL AND published_at <= ?", now).
		Order("published_at ASC").
		Find(&posts).Error
	return posts, err
}

// Publish promotes a post to published, stamping the publish timestamp to the
// promotion time.
func (r *postRepository) Publish(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.PostStatusPublished,
			"published_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateOnPostWrite(ctx, r.store)
	return nil
}

// IsNotFound reports whether the error is the record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
