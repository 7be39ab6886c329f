package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// The Prometheus collector registers on the default registry, so the app is
// built once and shared across tests.
var (
	setupOnce sync.Once
	testApp   *fiber.App
	testDB    *gorm.DB
	testStore *cache.Memory
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	setupOnce.Do(func() {
		db, err := gorm.Open(sqlite.Open("file:serverpkg?mode=memory&cache=shared"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			panic(err)
		}
		sqlDB, _ := db.DB()
		sqlDB.SetMaxOpenConns(1)
		if err := database.Migrate(db); err != nil {
			panic(err)
		}

		uploadDir, err := os.MkdirTemp("", "inkwell-media-*")
		if err != nil {
			panic(err)
		}

		cfg := &config.Config{
			JWTSecret:          "test-secret-key-0123456789abcdef",
			Port:               "0",
			Env:                "test",
			MediaUploadDir:     uploadDir,
			MediaBaseURL:       "/media",
			MediaMaxUploadMB:   10,
			CacheTTLSeconds:    3600,
			AccessTokenMinutes: 15,
			RefreshTokenHours:  24,
		}

		testStore = cache.NewMemory()
		srv := NewServerWithDeps(cfg, db, testStore)
		app := srv.NewApp()

		seedTestUsers(db)

		testApp = app
		testDB = db
	})
	return testApp, testDB
}

func seedTestUsers(db *gorm.DB) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("admin-pass-123"), bcrypt.MinCost)
	db.Create(&models.User{Name: "Admin", Email: "admin@test.local", PasswordHash: string(hash), IsAdmin: true})
	hash, _ = bcrypt.GenerateFromPassword([]byte("reader-pass-123"), bcrypt.MinCost)
	db.Create(&models.User{Name: "Reader", Email: "reader@test.local", PasswordHash: string(hash)})
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, _ := io.ReadAll(res.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return res, decoded
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	res, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func seedFixture(t *testing.T, db *gorm.DB, slugPrefix string) (*models.Author, *models.Category) {
	t.Helper()
	author := &models.Author{Name: "Author " + slugPrefix, Slug: slugPrefix + "-author"}
	require.NoError(t, db.Create(author).Error)
	category := &models.Category{Name: "Category " + slugPrefix, Slug: slugPrefix + "-category", IsActive: true}
	require.NoError(t, db.Create(category).Error)
	return author, category
}

func TestHealthCheck(t *testing.T) {
	app, _ := setupApp(t)

	res, body := doJSON(t, app, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestAuthFlow(t *testing.T) {
	app, _ := setupApp(t)

	// Wrong password is rejected.
	res, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "admin@test.local", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	// Login issues an access and a refresh token.
	res, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "admin@test.local", "password": "admin-pass-123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	token, _ := body["token"].(string)
	refresh, _ := body["refresh_token"].(string)
	require.NotEmpty(t, token)
	require.NotEmpty(t, refresh)

	// The access token identifies the user.
	res, body = doJSON(t, app, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "admin@test.local", body["email"])

	// Refresh rotates the refresh token.
	res, body = doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, res.StatusCode)
	newRefresh, _ := body["refresh_token"].(string)
	require.NotEmpty(t, newRefresh)
	assert.NotEqual(t, refresh, newRefresh)

	// The old refresh token is dead.
	res, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": refresh,
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	// Protected routes require a token.
	res, _ = doJSON(t, app, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	app, _ := setupApp(t)
	readerToken := login(t, app, "reader@test.local", "reader-pass-123")

	res, _ := doJSON(t, app, http.MethodGet, "/api/v1/admin/posts/", readerToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestPostLifecycle(t *testing.T) {
	app, db := setupApp(t)
	token := login(t, app, "admin@test.local", "admin-pass-123")
	author, category := seedFixture(t, db, "lifecycle")

	// Create a draft: not publicly visible.
	res, body := doJSON(t, app, http.MethodPost, "/api/v1/admin/posts/", token, map[string]any{
		"title": "Hidden Draft", "slug": "lifecycle-draft", "content": "c",
		"status": "draft", "category_id": category.ID, "author_id": author.ID,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	postID := uint(body["id"].(float64))

	res, _ = doJSON(t, app, http.MethodGet, "/api/v1/posts/lifecycle-draft", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	// Publish it via update: now visible, and the reread counts a view.
	res, _ = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/v1/admin/posts/%d", postID), token, map[string]any{
		"title": "Now Live", "slug": "lifecycle-draft", "content": "c",
		"status": "published", "category_id": category.ID, "author_id": author.ID,
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, body = doJSON(t, app, http.MethodGet, "/api/v1/posts/lifecycle-draft", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	post := body["post"].(map[string]any)
	assert.Equal(t, "Now Live", post["title"])

	var stored models.Post
	require.NoError(t, db.First(&stored, postID).Error)
	assert.Equal(t, int64(1), stored.ViewsCount)

	// Duplicate slug conflicts.
	res, _ = doJSON(t, app, http.MethodPost, "/api/v1/admin/posts/", token, map[string]any{
		"title": "Dup", "slug": "lifecycle-draft", "content": "c",
		"status": "draft", "category_id": category.ID, "author_id": author.ID,
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	// Delete.
	res, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/admin/posts/%d", postID), token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = doJSON(t, app, http.MethodGet, "/api/v1/posts/lifecycle-draft", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestLikeToggleOverHTTP(t *testing.T) {
	app, db := setupApp(t)
	readerToken := login(t, app, "reader@test.local", "reader-pass-123")
	author, category := seedFixture(t, db, "likes")

	past := time.Now().UTC().Add(-time.Hour)
	post := &models.Post{
		Title: "Likeable", Slug: "likes-post", Content: "c",
		Status: models.PostStatusPublished, PublishedAt: &past,
		CategoryID: category.ID, AuthorID: author.ID, AllowComments: true,
	}
	require.NoError(t, db.Create(post).Error)

	url := fmt.Sprintf("/api/v1/posts/%d/like", post.ID)

	res, body := doJSON(t, app, http.MethodPost, url, readerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["liked"])

	res, body = doJSON(t, app, http.MethodPost, url, readerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, false, body["liked"])

	// Anonymous toggles are rejected.
	res, _ = doJSON(t, app, http.MethodPost, url, "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestCommentModerationFlow(t *testing.T) {
	app, db := setupApp(t)
	adminToken := login(t, app, "admin@test.local", "admin-pass-123")
	author, category := seedFixture(t, db, "comments")

	past := time.Now().UTC().Add(-time.Hour)
	post := &models.Post{
		Title: "Discussed", Slug: "comments-post", Content: "c",
		Status: models.PostStatusPublished, PublishedAt: &past,
		CategoryID: category.ID, AuthorID: author.ID, AllowComments: true,
	}
	require.NoError(t, db.Create(post).Error)

	// Guest comment lands in the pending queue.
	res, body := doJSON(t, app, http.MethodPost, "/api/v1/posts/comments-post/comments", "", map[string]any{
		"content": "great post", "guest_name": "Sam",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	commentID := uint(body["id"].(float64))

	// Not visible while pending.
	res, body = doJSON(t, app, http.MethodGet, "/api/v1/posts/comments-post/comments", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, body["comments"])

	// Approve, then it shows.
	res, _ = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/v1/admin/comments/%d/status", commentID), adminToken, map[string]any{
		"status": "approved",
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, body = doJSON(t, app, http.MethodGet, "/api/v1/posts/comments-post/comments", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	comments := body["comments"].([]any)
	require.Len(t, comments, 1)

	// A comment without content or guest name is rejected.
	res, _ = doJSON(t, app, http.MethodPost, "/api/v1/posts/comments-post/comments", "", map[string]any{
		"content": "anonymous and nameless",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCategoriesListingCached(t *testing.T) {
	app, db := setupApp(t)
	seedFixture(t, db, "cached")

	res, _ := doJSON(t, app, http.MethodGet, "/api/v1/categories/", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	_, found, _ := testStore.Get(context.Background(), cache.KeyCategoriesWithCounts)
	assert.True(t, found)
}

func TestMediaUploadOverHTTP(t *testing.T) {
	app, _ := setupApp(t)
	adminToken := login(t, app, "admin@test.local", "admin-pass-123")

	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for x := 0; x < 400; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "banner.png")
	require.NoError(t, err)
	_, err = part.Write(pngBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/media/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken)
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var media models.Media
	raw, _ := io.ReadAll(res.Body)
	require.NoError(t, json.Unmarshal(raw, &media))
	assert.Contains(t, media.SizesData, "original")
	assert.Contains(t, media.SizesData, "thumbnail")

	// Delete is idempotent at the HTTP level: second call is a 404, not a 500.
	res, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/admin/media/%d", media.ID), adminToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/admin/media/%d", media.ID), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
