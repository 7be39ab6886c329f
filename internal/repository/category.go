package repository

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	ListWithPostCounts(ctx context.Context) ([]*models.Category, error)
	GetWithPosts(ctx context.Context, id uint) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
	RecountPosts(ctx context.Context, id uint) error
	WarmListing(ctx context.Context) error
}

type categoryRepository struct {
	db    *gorm.DB
	store cache.Store
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB, store cache.Store) CategoryRepository {
	return &categoryRepository{db: db, store: store}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return err
	}
	cache.InvalidateOnCategoryWrite(ctx, r.store, category.ID)
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

// ListWithPostCounts serves the category listing, with denormalized post
// counts refreshed at query time, through the content cache.
func (r *categoryRepository) ListWithPostCounts(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := cache.Aside(ctx, r.store, cache.KeyCategoriesWithCounts, &categories, cache.DefaultTTL, func() error {
		return r.queryWithPostCounts(ctx, &categories)
	})
	return categories, err
}

func (r *categoryRepository) queryWithPostCounts(ctx context.Context, dest *[]*models.Category) error {
	return r.db.WithContext(ctx).
		Select("categories.*, (SELECT COUNT(*) FROM posts WHERE posts.category_id = categories.id AND posts.deleted_at IS NULL) AS posts_count").
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(dest).Error
}

// GetWithPosts serves a category and its publicly visible posts through the
// per-category cache key.
func (r *categoryRepository) GetWithPosts(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := cache.Aside(ctx, r.store, cache.CategoryPostsKey(id), &category, cache.DefaultTTL, func() error {
		if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
			return err
		}
		posts, err := NewPostRepository(r.db, r.store).ListByCategory(ctx, id, homeListingLimit, 0)
		if err != nil {
			return err
		}
		category.Posts = make([]models.Post, 0, len(posts))
		for _, p := range posts {
			category.Posts = append(category.Posts, *p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return err
	}
	cache.InvalidateOnCategoryWrite(ctx, r.store, category.ID)
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Category{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateOnCategoryWrite(ctx, r.store, id)
	return nil
}

// RecountPosts repairs the denormalized post count from the true count.
func (r *categoryRepository) RecountPosts(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		UpdateColumn("posts_count", gorm.Expr(
			"(SELECT COUNT(*) FROM posts WHERE posts.category_id = ? AND posts.deleted_at IS NULL)", id,
		)).Error
}

// WarmListing recomputes and stores the cached category listing.
func (r *categoryRepository) WarmListing(ctx context.Context) error {
	var categories []*models.Category
	if err := r.queryWithPostCounts(ctx, &categories); err != nil {
		return err
	}
	return cache.SetJSON(ctx, r.store, cache.KeyCategoriesWithCounts, categories, cache.DefaultTTL)
}
