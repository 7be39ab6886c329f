package server

import (
	"strconv"
	"time"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Login handles POST /api/v1/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithAppError(c,
			models.NewValidationError("Email and password are required"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithAppError(c,
			models.NewUnauthorizedError("Invalid credentials"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return models.RespondWithAppError(c,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	return s.issueTokens(c, user, fiber.StatusOK)
}

// RefreshToken handles POST /api/v1/auth/refresh. The presented refresh token
// is single-use: it is revoked and replaced.
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return models.RespondWithAppError(c,
			models.NewValidationError("refresh_token is required"))
	}

	rt, err := s.userRepo.GetRefreshToken(c.Context(), req.RefreshToken)
	if err != nil {
		return models.RespondWithAppError(c,
			models.NewUnauthorizedError("Invalid or expired refresh token"))
	}
	user, err := s.userRepo.GetByID(c.Context(), rt.UserID)
	if err != nil {
		return models.RespondWithAppError(c,
			models.NewUnauthorizedError("Invalid or expired refresh token"))
	}
	if err := s.userRepo.RevokeRefreshToken(c.Context(), req.RefreshToken); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return s.issueTokens(c, user, fiber.StatusOK)
}

// Logout handles POST /api/v1/auth/logout, revoking the presented refresh
// token.
func (s *Server) Logout(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return models.RespondWithAppError(c,
			models.NewValidationError("refresh_token is required"))
	}
	if err := s.userRepo.RevokeRefreshToken(c.Context(), req.RefreshToken); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}

// Me handles GET /api/v1/auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	userID := currentUserID(c)
	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return respondRepoError(c, err, "User", userID)
	}
	return c.JSON(user)
}

// ChangePassword handles POST /api/v1/auth/change-password. All refresh
// tokens are revoked so other sessions must sign in again.
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}
	if len(req.NewPassword) < 8 {
		return models.RespondWithAppError(c,
			models.NewValidationError("New password must be at least 8 characters"))
	}

	userID := currentUserID(c)
	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return respondRepoError(c, err, "User", userID)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return models.RespondWithAppError(c,
			models.NewUnauthorizedError("Current password is incorrect"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if err := s.userRepo.UpdatePassword(c.Context(), userID, string(hashed)); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if err := s.userRepo.RevokeAllRefreshTokens(c.Context(), userID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"message": "password changed"})
}

func (s *Server) issueTokens(c *fiber.Ctx, user *models.User, status int) error {
	access, err := s.generateAccessToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	refresh := &models.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().UTC().Add(time.Duration(s.config.RefreshTokenHours) * time.Hour),
	}
	if err := s.userRepo.CreateRefreshToken(c.Context(), refresh); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(status).JSON(fiber.Map{
		"token":         access,
		"refresh_token": refresh.Token,
		"user":          user,
	})
}

// generateAccessToken creates a short-lived JWT for the given user ID.
func (s *Server) generateAccessToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": now.Unix(),
		"exp": now.Add(time.Duration(s.config.AccessTokenMinutes) * time.Minute).Unix(),
		"jti": uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
