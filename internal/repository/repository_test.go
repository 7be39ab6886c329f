package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive for the
	// duration of the test.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func createAuthor(t *testing.T, db *gorm.DB, slug string) *models.Author {
	t.Helper()
	author := &models.Author{Name: "Author " + slug, Slug: slug}
	require.NoError(t, db.Create(author).Error)
	return author
}

func createCategory(t *testing.T, db *gorm.DB, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Name: "Category " + slug, Slug: slug, IsActive: true}
	require.NoError(t, db.Create(category).Error)
	return category
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "User", Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

type postOpts struct {
	status      models.PostStatus
	publishedAt *time.Time
	featured    bool
	trending    bool
}

func createPost(t *testing.T, db *gorm.DB, slug string, categoryID, authorID uint, opts postOpts) *models.Post {
	t.Helper()
	if opts.status == "" {
		opts.status = models.PostStatusPublished
	}
	if opts.status == models.PostStatusPublished && opts.publishedAt == nil {
		past := time.Now().UTC().Add(-time.Hour)
		opts.publishedAt = &past
	}
	post := &models.Post{
		Title:         "Post " + slug,
		Slug:          slug,
		Content:       "content",
		Status:        opts.status,
		PublishedAt:   opts.publishedAt,
		CategoryID:    categoryID,
		AuthorID:      authorID,
		IsFeatured:    opts.featured,
		IsTrending:    opts.trending,
		AllowComments: true,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}
