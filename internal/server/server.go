// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	store          cache.Store
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	categoryRepo   repository.CategoryRepository
	tagRepo        repository.TagRepository
	commentRepo    repository.CommentRepository
	engagementRepo repository.EngagementRepository
	mediaRepo      repository.MediaRepository
	authorRepo     repository.AuthorRepository
	postService    *service.PostService
	mediaService   *service.MediaService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	store := cache.Connect(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, store), nil
}

// NewServerWithDeps wires a server onto an existing database handle and cache
// store. Used by tests with sqlite and an in-memory store.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, store cache.Store) *Server {
	middleware.InitMiddleware(cfg)
	cache.SetDefaultTTL(time.Duration(cfg.CacheTTLSeconds) * time.Second)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db, store)
	categoryRepo := repository.NewCategoryRepository(db, store)
	tagRepo := repository.NewTagRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	authorRepo := repository.NewAuthorRepository(db)

	imageService := service.NewImageService(cfg.MediaUploadDir, cfg.MediaBaseURL)

	return &Server{
		config:         cfg,
		db:             db,
		store:          store,
		userRepo:       userRepo,
		postRepo:       postRepo,
		categoryRepo:   categoryRepo,
		tagRepo:        tagRepo,
		commentRepo:    commentRepo,
		engagementRepo: engagementRepo,
		mediaRepo:      mediaRepo,
		authorRepo:     authorRepo,
		postService:    service.NewPostService(postRepo),
		mediaService:   service.NewMediaService(mediaRepo, imageService, cfg.MediaMaxUploadMB),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	prom := middleware.InitMetrics("inkwell")
	prom.RegisterAt(app, "/metrics")
	app.Use(middleware.MetricsMiddleware(prom))

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware
	app.Use(middleware.StructuredLogger())

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Health checks
	api.Get("/health", s.HealthCheck)
	api.Get("/health/live", s.Liveness)
	api.Get("/health/ready", s.HealthCheck)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", s.Login)
	auth.Post("/refresh", s.RefreshToken)
	auth.Post("/logout", s.Logout)

	// Public post routes
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/featured", s.GetFeaturedPosts)
	posts.Get("/trending", s.GetTrendingPosts)
	posts.Get("/latest", s.GetLatestPosts)
	posts.Get("/:slug", s.GetPostBySlug)
	posts.Get("/:slug/adjacent", s.GetAdjacentPosts)
	posts.Get("/:slug/comments", s.GetPostComments)
	posts.Post("/:slug/comments", s.CreateComment)

	// Public category and tag routes
	categories := api.Group("/categories")
	categories.Get("/", s.GetCategories)
	categories.Get("/:id/posts", s.GetCategoryWithPosts)

	tags := api.Group("/tags")
	tags.Get("/", s.GetTags)

	// Public media listing for the editor's asset picker
	api.Get("/media", s.GetMedia)

	// Public author routes
	authors := api.Group("/authors")
	authors.Get("/", s.GetAuthors)
	authors.Get("/:slug", s.GetAuthorBySlug)

	// Routes requiring a signed-in user
	protected := api.Group("", s.AuthRequired())
	protected.Get("/auth/me", s.Me)
	protected.Post("/auth/change-password", s.ChangePassword)
	protected.Post("/posts/:id/like", s.ToggleLikePost)
	protected.Post("/posts/:id/save", s.ToggleSavePost)
	protected.Get("/me/saved-posts", s.GetSavedPosts)
	protected.Post("/comments/:id/like", s.ToggleLikeComment)

	// Admin routes
	admin := api.Group("/admin", s.AuthRequired(), s.AdminRequired())

	adminPosts := admin.Group("/posts")
	adminPosts.Get("/", s.AdminGetPosts)
	adminPosts.Post("/", s.CreatePost)
	adminPosts.Get("/:id", s.AdminGetPost)
	adminPosts.Put("/:id", s.UpdatePost)
	adminPosts.Delete("/:id", s.DeletePost)

	adminCategories := admin.Group("/categories")
	adminCategories.Post("/", s.CreateCategory)
	adminCategories.Put("/:id", s.UpdateCategory)
	adminCategories.Delete("/:id", s.DeleteCategory)

	adminTags := admin.Group("/tags")
	adminTags.Post("/", s.CreateTag)
	adminTags.Put("/:id", s.UpdateTag)
	adminTags.Delete("/:id", s.DeleteTag)

	adminComments := admin.Group("/comments")
	adminComments.Get("/", s.GetCommentsForModeration)
	adminComments.Put("/:id/status", s.SetCommentStatus)
	adminComments.Delete("/:id", s.DeleteComment)

	adminMedia := admin.Group("/media")
	adminMedia.Get("/", s.GetMedia)
	adminMedia.Post("/", s.UploadMedia)
	adminMedia.Delete("/bulk", s.BulkDeleteMedia)
	adminMedia.Delete("/:id", s.DeleteMedia)

	adminAuthors := admin.Group("/authors")
	adminAuthors.Post("/", s.CreateAuthor)
	adminAuthors.Put("/:id", s.UpdateAuthor)
	adminAuthors.Delete("/:id", s.DeleteAuthor)
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	cacheStatus := "healthy"
	if s.store == nil {
		cacheStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"cache":    cacheStatus,
		},
		"time": time.Now(),
	})
}

// Liveness answers as long as the process is serving requests.
func (s *Server) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.AuthRequired
}

// AdminRequired restricts the route to admin users. Must run after
// AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return models.RespondWithAppError(c,
				models.NewUnauthorizedError("Authorization required"))
		}
		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil || !user.IsAdmin {
			return models.RespondWithAppError(c,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// optionalUserID extracts the user ID from the Authorization header without
// enforcing it. Anonymous readers get the zero value.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	authHeader := c.Get("Authorization")
	if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
		return 0, false
	}
	return middleware.ParseBearerToken(authHeader[7:])
}

// Shutdown releases server-held resources: the database pool and the cache
// connection.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			middleware.Logger.Warn("cache close error", "error", err)
		}
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewApp builds the configured Fiber application: body limit sized for media
// uploads, error handler, middleware stack, and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Inkwell API",
		BodyLimit: (s.config.MediaMaxUploadMB + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}
