package server

import (
	"strings"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetPostComments handles GET /api/v1/posts/:slug/comments, serving approved
// top-level comments with their approved replies.
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	slug := c.Params("slug")
	post, err := s.postRepo.GetPublicBySlug(c.Context(), slug)
	if err != nil {
		return respondRepoError(c, err, "Post", slug)
	}

	limit, offset := parsePagination(c)
	comments, err := s.commentRepo.ListApprovedByPost(c.Context(), post.ID, limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"comments": comments, "limit": limit, "offset": offset})
}

// CreateComment handles POST /api/v1/posts/:slug/comments. Signed-in users
// comment under their account; anonymous visitors must supply a guest name.
// New comments enter moderation as pending.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	slug := c.Params("slug")
	post, err := s.postRepo.GetPublicBySlug(c.Context(), slug)
	if err != nil {
		return respondRepoError(c, err, "Post", slug)
	}
	if !post.AllowComments {
		return models.RespondWithAppError(c,
			models.NewForbiddenError("Comments are disabled for this post"))
	}

	var req struct {
		Content    string `json:"content"`
		ParentID   *uint  `json:"parent_id"`
		GuestName  string `json:"guest_name"`
		GuestEmail string `json:"guest_email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	if strings.TrimSpace(req.Content) == "" {
		return models.RespondWithAppError(c,
			models.NewValidationError("Content is required"))
	}

	comment := &models.Comment{
		PostID:   post.ID,
		ParentID: req.ParentID,
		Content:  strings.TrimSpace(req.Content),
		Status:   models.CommentStatusPending,
	}
	if userID, ok := s.optionalUserID(c); ok {
		comment.UserID = &userID
	} else {
		if strings.TrimSpace(req.GuestName) == "" {
			return models.RespondWithAppError(c,
				models.NewValidationError("Guest name is required for anonymous comments"))
		}
		comment.GuestName = strings.TrimSpace(req.GuestName)
		comment.GuestEmail = strings.TrimSpace(req.GuestEmail)
	}

	if comment.ParentID != nil {
		parent, err := s.commentRepo.GetByID(c.Context(), *comment.ParentID)
		if err != nil || parent.PostID != post.ID {
			return models.RespondWithAppError(c,
				models.NewValidationError("Parent comment does not belong to this post"))
		}
	}

	if err := s.commentRepo.Create(c.Context(), comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetCommentsForModeration handles GET /api/v1/admin/comments. The status
// query parameter selects the moderation queue, defaulting to pending.
func (s *Server) GetCommentsForModeration(c *fiber.Ctx) error {
	status := models.CommentStatus(c.Query("status", string(models.CommentStatusPending)))
	switch status {
	case models.CommentStatusPending, models.CommentStatusApproved, models.CommentStatusSpam:
	default:
		return models.RespondWithAppError(c,
			models.NewValidationError("status must be pending, approved, or spam"))
	}

	limit, offset := parsePagination(c)
	comments, err := s.commentRepo.ListForModeration(c.Context(), status, limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"comments": comments, "limit": limit, "offset": offset})
}

// SetCommentStatus handles PUT /api/v1/admin/comments/:id/status
func (s *Server) SetCommentStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	var req struct {
		Status models.CommentStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	switch req.Status {
	case models.CommentStatusPending, models.CommentStatusApproved, models.CommentStatusSpam:
	default:
		return models.RespondWithAppError(c,
			models.NewValidationError("status must be pending, approved, or spam"))
	}

	if err := s.commentRepo.SetStatus(c.Context(), id, req.Status); err != nil {
		return respondRepoError(c, err, "Comment", id)
	}
	return c.JSON(fiber.Map{"message": "comment status updated"})
}

// DeleteComment handles DELETE /api/v1/admin/comments/:id. Replies and likes
// on the comment are removed with it.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if _, err := s.commentRepo.GetByID(c.Context(), id); err != nil {
		return respondRepoError(c, err, "Comment", id)
	}
	if err := s.commentRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"message": "comment deleted"})
}
