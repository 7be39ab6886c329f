package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// AuthorRepository defines the interface for author data operations
type AuthorRepository interface {
	Create(ctx context.Context, author *models.Author) error
	GetByID(ctx context.Context, id uint) (*models.Author, error)
	GetBySlug(ctx context.Context, slug string) (*models.Author, error)
	List(ctx context.Context, limit, offset int) ([]*models.Author, error)
	Update(ctx context.Context, author *models.Author) error
	Delete(ctx context.Context, id uint) error
	RecountAggregates(ctx context.Context, id uint) error
}

type authorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository creates a new author repository
func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) Create(ctx context.Context, author *models.Author) error {
	return r.db.WithContext(ctx).Create(author).Error
}

func (r *authorRepository) GetByID(ctx context.Context, id uint) (*models.Author, error) {
	var author models.Author
	if err := r.db.WithContext(ctx).First(&author, id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *authorRepository) GetBySlug(ctx context.Context, slug string) (*models.Author, error) {
	var author models.Author
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&author).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *authorRepository) List(ctx context.Context, limit, offset int) ([]*models.Author, error) {
	var authors []*models.Author
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&authors).Error
	return authors, err
}

func (r *authorRepository) Update(ctx context.Context, author *models.Author) error {
	return r.db.WithContext(ctx).Save(author).Error
}

func (r *authorRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Author{}, id).Error
}

// RecountAggregates repairs the denormalized posts/views/likes counters from
// the true per-post values.
func (r *authorRepository) RecountAggregates(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Author{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"posts_count": gorm.Expr(
				"(SELECT COUNT(*) FROM posts WHERE posts.author_id = ? AND posts.deleted_at IS NULL)", id,
			),
			"views_count": gorm.Expr(
				"(SELECT COALESCE(SUM(views_count), 0) FROM posts WHERE posts.author_id = ? AND posts.deleted_at IS NULL)", id,
			),
			"likes_count": gorm.Expr(
				"(SELECT COALESCE(SUM(likes_count), 0) FROM posts WHERE posts.author_id = ? AND posts.deleted_at IS NULL)", id,
			),
		}).Error
}
