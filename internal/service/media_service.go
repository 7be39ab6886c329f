package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/google/uuid"
)

// MediaService coordinates upload storage, variant generation, and the
// metadata row. Derived files are owned by the media row: deleting the row
// deletes every file.
type MediaService struct {
	repo           repository.MediaRepository
	images         *ImageService
	maxUploadBytes int64
}

// NewMediaService creates a media service. maxUploadMB bounds the accepted
// upload size.
func NewMediaService(repo repository.MediaRepository, images *ImageService, maxUploadMB int) *MediaService {
	return &MediaService{
		repo:           repo,
		images:         images,
		maxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
	}
}

// Upload validates the file, derives the default size set, and persists the
// metadata row. Any failure after files were written cleans them up so a
// failed upload leaves no orphans on disk.
func (s *MediaService) Upload(ctx context.Context, filename string, data []byte) (*models.Media, error) {
	if len(data) == 0 {
		return nil, models.NewValidationError("uploaded file is empty")
	}
	if s.maxUploadBytes > 0 && int64(len(data)) > s.maxUploadBytes {
		return nil, models.NewValidationError(
			fmt.Sprintf("file exceeds maximum upload size of %d MB", s.maxUploadBytes/(1024*1024)))
	}

	storedName := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	variants, err := s.images.GenerateVariants(data, storedName, DefaultSizeSpecs())
	if err != nil {
		s.cleanupVariants(variants)
		if errors.Is(err, ErrDecode) {
			return nil, models.NewValidationError("file is not a decodable image")
		}
		return nil, models.NewInternalError(err)
	}

	original := variants["original"]
	media := &models.Media{
		OriginalFilename: filepath.Base(filename),
		Path:             original.Path,
		URL:              original.URL,
		MimeType:         mimeTypeForPath(original.Path),
		SizeBytes:        original.Bytes,
		Width:            &original.Width,
		Height:           &original.Height,
		IsActive:         true,
		SizesData:        toSizesData(variants),
	}

	if err := s.repo.Create(ctx, media); err != nil {
		s.cleanupVariants(variants)
		return nil, models.NewInternalError(err)
	}
	return media, nil
}

// Delete removes the metadata row, the primary file, and all derived files.
func (s *MediaService) Delete(ctx context.Context, id uint) error {
	media, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.images.Delete(media.Path, media.VariantPaths()); err != nil {
		middleware.Logger.Warn("failed to remove media files",
			"media_id", id, "error", err)
	}
	return s.repo.Delete(ctx, id)
}

// BulkDelete deletes each media row independently, returning how many were
// removed. Individual failures are logged and skipped.
func (s *MediaService) BulkDelete(ctx context.Context, ids []uint) int {
	deleted := 0
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			middleware.Logger.Warn("bulk media delete skipped item",
				"media_id", id, "error", err)
			continue
		}
		deleted++
	}
	return deleted
}

func (s *MediaService) cleanupVariants(variants map[string]VariantMeta) {
	if len(variants) == 0 {
		return
	}
	paths := make([]string, 0, len(variants))
	for _, v := range variants {
		paths = append(paths, v.Path)
	}
	if err := s.images.Delete("", paths); err != nil {
		middleware.Logger.Warn("failed to clean up partial upload", "error", err)
	}
}

func toSizesData(variants map[string]VariantMeta) models.SizesData {
	out := make(models.SizesData, len(variants))
	for name, v := range variants {
		out[name] = models.VariantMeta{
			Path:   v.Path,
			URL:    v.URL,
			Width:  v.Width,
			Height: v.Height,
			Bytes:  v.Bytes,
		}
	}
	return out
}

func mimeTypeForPath(path string) string {
	switch strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".") {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
