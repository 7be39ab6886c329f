package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// MediaRepository defines the interface for media metadata operations
type MediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
	GetByID(ctx context.Context, id uint) (*models.Media, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Media, error)
	List(ctx context.Context, limit, offset int) ([]*models.Media, error)
	Update(ctx context.Context, media *models.Media) error
	Delete(ctx context.Context, id uint) error
}

type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(ctx context.Context, media *models.Media) error {
	return r.db.WithContext(ctx).Create(media).Error
}

func (r *mediaRepository) GetByID(ctx context.Context, id uint) (*models.Media, error) {
	var media models.Media
	if err := r.db.WithContext(ctx).First(&media, id).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *mediaRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Media, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var media []*models.Media
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&media).Error
	return media, err
}

func (r *mediaRepository) List(ctx context.Context, limit, offset int) ([]*models.Media, error) {
	var media []*models.Media
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&media).Error
	return media, err
}

func (r *mediaRepository) Update(ctx context.Context, media *models.Media) error {
	return r.db.WithContext(ctx).Save(media).Error
}

func (r *mediaRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Media{}, id).Error
}
