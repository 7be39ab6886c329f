package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ToggleLikePost handles POST /api/v1/posts/:id/like. Repeating the call
// flips the like back off.
func (s *Server) ToggleLikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if _, err := s.postRepo.GetByID(c.Context(), id); err != nil {
		return respondRepoError(c, err, "Post", id)
	}

	liked, err := s.engagementRepo.ToggleLike(c.Context(), currentUserID(c), models.LikeTargetPost, id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// ToggleLikeComment handles POST /api/v1/comments/:id/like
func (s *Server) ToggleLikeComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if _, err := s.commentRepo.GetByID(c.Context(), id); err != nil {
		return respondRepoError(c, err, "Comment", id)
	}

	liked, err := s.engagementRepo.ToggleLike(c.Context(), currentUserID(c), models.LikeTargetComment, id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// ToggleSavePost handles POST /api/v1/posts/:id/save
func (s *Server) ToggleSavePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if _, err := s.postRepo.GetByID(c.Context(), id); err != nil {
		return respondRepoError(c, err, "Post", id)
	}

	saved, err := s.engagementRepo.ToggleSave(c.Context(), currentUserID(c), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"saved": saved})
}

// GetSavedPosts handles GET /api/v1/me/saved-posts, listing the signed-in
// user's saved posts.
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	userID := currentUserID(c)
	ids, err := s.engagementRepo.ListSavedPostIDs(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	posts := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		post, err := s.postRepo.GetByID(c.Context(), id)
		if err != nil {
			continue
		}
		posts = append(posts, post)
	}
	return c.JSON(fiber.Map{"posts": posts})
}
