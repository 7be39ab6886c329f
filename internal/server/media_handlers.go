package server

import (
	"io"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMedia handles GET /api/v1/admin/media
func (s *Server) GetMedia(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	media, err := s.mediaRepo.List(c.Context(), limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"media": media, "limit": limit, "offset": offset})
}

// UploadMedia handles POST /api/v1/admin/media. The multipart "file" field
// carries the image; the default size set is derived on upload.
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("A file field is required"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	media, err := s.mediaService.Upload(c.Context(), fileHeader.Filename, data)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(media)
}

// DeleteMedia handles DELETE /api/v1/admin/media/:id, removing the metadata
// row, the stored file, and every derived variant.
func (s *Server) DeleteMedia(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if err := s.mediaService.Delete(c.Context(), id); err != nil {
		return respondRepoError(c, err, "Media", id)
	}
	return c.JSON(fiber.Map{"message": "media deleted"})
}

// BulkDeleteMedia handles DELETE /api/v1/admin/media/bulk. Items are deleted
// independently; the response reports how many were removed.
func (s *Server) BulkDeleteMedia(c *fiber.Ctx) error {
	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := c.BodyParser(&req); err != nil || len(req.IDs) == 0 {
		return models.RespondWithAppError(c,
			models.NewValidationError("A non-empty ids list is required"))
	}

	deleted := s.mediaService.BulkDelete(c.Context(), req.IDs)
	return c.JSON(fiber.Map{"deleted": deleted, "requested": len(req.IDs)})
}
