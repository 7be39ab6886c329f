package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetTags handles GET /api/v1/tags
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.tagRepo.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"tags": tags})
}

// CreateTag handles POST /api/v1/admin/tags
func (s *Server) CreateTag(c *fiber.Ctx) error {
	var tag models.Tag
	if err := c.BodyParser(&tag); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	if tag.Name == "" || tag.Slug == "" {
		return models.RespondWithAppError(c,
			models.NewValidationError("Name and slug are required"))
	}
	if err := s.tagRepo.Create(c.Context(), &tag); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}

// UpdateTag handles PUT /api/v1/admin/tags/:id
func (s *Server) UpdateTag(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	existing, err := s.tagRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondRepoError(c, err, "Tag", id)
	}

	var updated models.Tag
	if err := c.BodyParser(&updated); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.tagRepo.Update(c.Context(), &updated); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(updated)
}

// DeleteTag handles DELETE /api/v1/admin/tags/:id
func (s *Server) DeleteTag(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if _, err := s.tagRepo.GetByID(c.Context(), id); err != nil {
		return respondRepoError(c, err, "Tag", id)
	}
	if err := s.tagRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"message": "tag deleted"})
}
