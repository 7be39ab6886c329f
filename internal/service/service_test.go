package service

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
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedPostFixture(t *testing.T, db *gorm.DB) (*models.Author, *models.Category) {
	t.Helper()
	author := &models.Author{Name: "Jane", Slug: "jane"}
	require.NoError(t, db.Create(author).Error)
	category := &models.Category{Name: "Engineering", Slug: "engineering", IsActive: true}
	require.NoError(t, db.Create(category).Error)
	return author, category
}

func newScheduledPost(t *testing.T, db *gorm.DB, slug string, categoryID, authorID uint, at time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		Title: "Post " + slug, Slug: slug, Content: "c",
		Status: models.PostStatusScheduled, PublishedAt: &at,
		CategoryID: categoryID, AuthorID: authorID,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}
