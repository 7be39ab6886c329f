// Package seed populates the database with development data.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var categorySeeds = []models.Category{
	{Name: "Engineering", Slug: "engineering", Description: "Software design, tooling, and hard-won lessons", Color: "#2563eb", SortOrder: 1, IsActive: true},
	{Name: "Product", Slug: "product", Description: "Shipping, roadmaps, and talking to users", Color: "#16a34a", SortOrder: 2, IsActive: true},
	{Name: "Design", Slug: "design", Description: "Interfaces, typography, and taste", Color: "#d946ef", SortOrder: 3, IsActive: true},
	{Name: "Culture", Slug: "culture", Description: "How we work together", Color: "#f59e0b", SortOrder: 4, IsActive: true},
}

var tagSeeds = []models.Tag{
	{Name: "Go", Slug: "go"},
	{Name: "Databases", Slug: "databases"},
	{Name: "Caching", Slug: "caching"},
	{Name: "Performance", Slug: "performance"},
	{Name: "Tutorials", Slug: "tutorials"},
	{Name: "Opinion", Slug: "opinion"},
}

// Run populates the database with a deterministic admin account and a batch
// of fake authors, posts, and comments for local development.
func Run(db *gorm.DB, postCount int) error {
	gofakeit.Seed(42)
	rng := rand.New(rand.NewSource(42))

	admin, err := seedAdmin(db)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	categories, err := seedCategories(db)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	tags, err := seedTags(db)
	if err != nil {
		return fmt.Errorf("seed tags: %w", err)
	}
	authors, err := seedAuthors(db, 5)
	if err != nil {
		return fmt.Errorf("seed authors: %w", err)
	}

	if err := seedPosts(db, rng, postCount, categories, tags, authors, admin); err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}

	log.Printf("Seeded %d posts across %d categories", postCount, len(categories))
	return nil
}

func seedAdmin(db *gorm.DB) (*models.User, error) {
	var existing models.User
	if err := db.Where("email = ?", "admin@example.com").First(&existing).Error; err == nil {
		return &existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin12345"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := &models.User{
		Name:         "Admin",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		IsAdmin:      true,
	}
	if err := db.Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

func seedCategories(db *gorm.DB) ([]models.Category, error) {
	out := make([]models.Category, 0, len(categorySeeds))
	for _, c := range categorySeeds {
		var existing models.Category
		if err := db.Where("slug = ?", c.Slug).First(&existing).Error; err == nil {
			out = append(out, existing)
			continue
		}
		if err := db.Create(&c).Error; err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func seedTags(db *gorm.DB) ([]models.Tag, error) {
	out := make([]models.Tag, 0, len(tagSeeds))
	for _, t := range tagSeeds {
		var existing models.Tag
		if err := db.Where("slug = ?", t.Slug).First(&existing).Error; err == nil {
			out = append(out, existing)
			continue
		}
		if err := db.Create(&t).Error; err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func seedAuthors(db *gorm.DB, count int) ([]models.Author, error) {
	authors := make([]models.Author, 0, count)
	for i := 0; i < count; i++ {
		name := gofakeit.Name()
		author := models.Author{
			Name:    name,
			Slug:    slugify(name),
			Bio:     gofakeit.Sentence(12),
			Email:   gofakeit.Email(),
			Website: gofakeit.URL(),
			Twitter: "@" + gofakeit.Username(),
			GitHub:  gofakeit.Username(),
		}
		var existing models.Author
		if err := db.Where("slug = ?", author.Slug).First(&existing).Error; err == nil {
			authors = append(authors, existing)
			continue
		}
		if err := db.Create(&author).Error; err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}
	return authors, nil
}

func seedPosts(db *gorm.DB, rng *rand.Rand, count int, categories []models.Category, tags []models.Tag, authors []models.Author, commenter *models.User) error {
	now := time.Now().UTC()

	for i := 0; i < count; i++ {
		title := strings.TrimSuffix(gofakeit.HipsterSentence(5), ".")
		publishedAt := now.Add(-time.Duration(rng.Intn(90*24)) * time.Hour)

		post := models.Post{
			Title:         title,
			Slug:          fmt.Sprintf("%s-%d", slugify(title), i),
			Excerpt:       gofakeit.Sentence(20),
			Content:       gofakeit.Paragraph(4, 5, 12, "\n\n"),
			Status:        models.PostStatusPublished,
			PublishedAt:   &publishedAt,
			CategoryID:    categories[rng.Intn(len(categories))].ID,
			AuthorID:      authors[rng.Intn(len(authors))].ID,
			ViewsCount:    int64(rng.Intn(5000)),
			IsFeatured:    rng.Intn(5) == 0,
			IsTrending:    rng.Intn(4) == 0,
			AllowComments: true,
		}

		// A few posts stay scheduled so the publisher has work to do.
		if rng.Intn(10) == 0 {
			future := now.Add(time.Duration(1+rng.Intn(72)) * time.Hour)
			post.Status = models.PostStatusScheduled
			post.PublishedAt = &future
		}

		tagCount := 1 + rng.Intn(3)
		for _, idx := range rng.Perm(len(tags))[:tagCount] {
			post.Tags = append(post.Tags, tags[idx])
		}

		if err := db.Create(&post).Error; err != nil {
			return err
		}

		if post.Status == models.PostStatusPublished {
			if err := seedComments(db, rng, &post, commenter); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedComments(db *gorm.DB, rng *rand.Rand, post *models.Post, commenter *models.User) error {
	commentCount := rng.Intn(4)
	for i := 0; i < commentCount; i++ {
		comment := models.Comment{
			PostID:  post.ID,
			Content: gofakeit.Sentence(15),
			Status:  models.CommentStatusApproved,
		}
		if rng.Intn(2) == 0 {
			comment.UserID = &commenter.ID
		} else {
			comment.GuestName = gofakeit.Name()
			comment.GuestEmail = gofakeit.Email()
		}
		if err := db.Create(&comment).Error; err != nil {
			return err
		}
	}
	if commentCount > 0 {
		if err := db.Model(post).UpdateColumn("comments_count", commentCount).Error; err != nil {
			return err
		}
	}
	return nil
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
