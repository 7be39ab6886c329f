package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/v1/posts, the paginated public listing. An
// optional category query parameter filters by category ID.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)

	if categoryID := c.QueryInt("category", 0); categoryID > 0 {
		posts, err := s.postRepo.ListByCategory(c.Context(), uint(categoryID), limit, offset)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
		return c.JSON(fiber.Map{"posts": posts, "limit": limit, "offset": offset})
	}

	posts, err := s.postRepo.ListPublic(c.Context(), limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"posts": posts, "limit": limit, "offset": offset})
}

// GetFeaturedPosts handles GET /api/v1/posts/featured
func (s *Server) GetFeaturedPosts(c *fiber.Ctx) error {
	posts, err := s.postRepo.Featured(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetTrendingPosts handles GET /api/v1/posts/trending
func (s *Server) GetTrendingPosts(c *fiber.Ctx) error {
	posts, err := s.postRepo.Trending(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetLatestPosts handles GET /api/v1/posts/latest
func (s *Server) GetLatestPosts(c *fiber.Ctx) error {
	posts, err := s.postRepo.Latest(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetPostBySlug handles GET /api/v1/posts/:slug. Reading a post counts a
// view; the counter update is best-effort and never fails the read.
func (s *Server) GetPostBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	post, err := s.postRepo.GetPublicBySlug(c.Context(), slug)
	if err != nil {
		return respondRepoError(c, err, "Post", slug)
	}

	if err := s.postRepo.IncrementViews(c.Context(), post.ID); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to count view",
			"post_id", post.ID, "error", err)
	}

	response := fiber.Map{"post": post}
	if userID, ok := s.optionalUserID(c); ok {
		liked, _ := s.engagementRepo.IsLiked(c.Context(), userID, models.LikeTargetPost, post.ID)
		saved, _ := s.engagementRepo.IsSaved(c.Context(), userID, post.ID)
		response["liked"] = liked
		response["saved"] = saved
	}
	return c.JSON(response)
}

// GetAdjacentPosts handles GET /api/v1/posts/:slug/adjacent, returning the
// neighboring posts on the publish timeline.
func (s *Server) GetAdjacentPosts(c *fiber.Ctx) error {
	slug := c.Params("slug")
	prev, next, err := s.postRepo.AdjacentBySlug(c.Context(), slug)
	if err != nil {
		return respondRepoError(c, err, "Post", slug)
	}
	return c.JSON(fiber.Map{"previous": prev, "next": next})
}

// AdminGetPosts handles GET /api/v1/admin/posts, listing every post
// regardless of status.
func (s *Server) AdminGetPosts(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	posts, err := s.postRepo.List(c.Context(), limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"posts": posts, "limit": limit, "offset": offset})
}

// AdminGetPost handles GET /api/v1/admin/posts/:id
func (s *Server) AdminGetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	post, err := s.postRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondRepoError(c, err, "Post", id)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/v1/admin/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var post models.Post
	if err := c.BodyParser(&post); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.postService.Create(c.Context(), &post); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/v1/admin/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	existing, err := s.postRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondRepoError(c, err, "Post", id)
	}

	var updated models.Post
	if err := c.BodyParser(&updated); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.postService.Update(c.Context(), &updated); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(updated)
}

// DeletePost handles DELETE /api/v1/admin/posts/:id. Comments and engagement
// rows owned by the post are removed with it.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if _, err := s.postRepo.GetByID(c.Context(), id); err != nil {
		return respondRepoError(c, err, "Post", id)
	}
	if err := s.postRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"message": "post deleted"})
}
