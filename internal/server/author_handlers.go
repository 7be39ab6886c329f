package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAuthors handles GET /api/v1/authors
func (s *Server) GetAuthors(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	authors, err := s.authorRepo.List(c.Context(), limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"authors": authors, "limit": limit, "offset": offset})
}

// GetAuthorBySlug handles GET /api/v1/authors/:slug
func (s *Server) GetAuthorBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	author, err := s.authorRepo.GetBySlug(c.Context(), slug)
	if err != nil {
		return respondRepoError(c, err, "Author", slug)
	}
	return c.JSON(author)
}

// CreateAuthor handles POST /api/v1/admin/authors
func (s *Server) CreateAuthor(c *fiber.Ctx) error {
	var author models.Author
	if err := c.BodyParser(&author); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	if author.Name == "" || author.Slug == "" {
		return models.RespondWithAppError(c,
			models.NewValidationError("Name and slug are required"))
	}
	if err := s.authorRepo.Create(c.Context(), &author); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(author)
}

// UpdateAuthor handles PUT /api/v1/admin/authors/:id
func (s *Server) UpdateAuthor(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	existing, err := s.authorRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondRepoError(c, err, "Author", id)
	}

	var updated models.Author
	if err := c.BodyParser(&updated); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.authorRepo.Update(c.Context(), &updated); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(updated)
}

// DeleteAuthor handles DELETE /api/v1/admin/authors/:id
func (s *Server) DeleteAuthor(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if _, err := s.authorRepo.GetByID(c.Context(), id); err != nil {
		return respondRepoError(c, err, "Author", id)
	}
	if err := s.authorRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"message": "author deleted"})
}
