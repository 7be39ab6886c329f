package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/v1/categories, serving the cached listing
// with per-category post counts. A slug query parameter selects one category.
func (s *Server) GetCategories(c *fiber.Ctx) error {
	if slug := c.Query("slug"); slug != "" {
		category, err := s.categoryRepo.GetBySlug(c.Context(), slug)
		if err != nil {
			return respondRepoError(c, err, "Category", slug)
		}
		return c.JSON(category)
	}

	categories, err := s.categoryRepo.ListWithPostCounts(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// GetCategoryWithPosts handles GET /api/v1/categories/:id/posts
func (s *Server) GetCategoryWithPosts(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	category, err := s.categoryRepo.GetWithPosts(c.Context(), id)
	if err != nil {
		return respondRepoError(c, err, "Category", id)
	}
	return c.JSON(category)
}

// CreateCategory handles POST /api/v1/admin/categories
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var category models.Category
	if err := c.BodyParser(&category); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	if category.Name == "" || category.Slug == "" {
		return models.RespondWithAppError(c,
			models.NewValidationError("Name and slug are required"))
	}
	if err := s.categoryRepo.Create(c.Context(), &category); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// UpdateCategory handles PUT /api/v1/admin/categories/:id
func (s *Server) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	existing, err := s.categoryRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondRepoError(c, err, "Category", id)
	}

	var updated models.Category
	if err := c.BodyParser(&updated); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.categoryRepo.Update(c.Context(), &updated); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(updated)
}

// DeleteCategory handles DELETE /api/v1/admin/categories/:id
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if _, err := s.categoryRepo.GetByID(c.Context(), id); err != nil {
		return respondRepoError(c, err, "Category", id)
	}
	if err := s.categoryRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"message": "category deleted"})
}
