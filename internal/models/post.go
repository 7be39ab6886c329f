// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// PostStatus is the lifecycle state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusScheduled PostStatus = "scheduled"
)

// Post represents a blog post.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"not null" json:"title"`
	Slug    string `gorm:"uniqueIndex;not null" json:"slug"`
	Excerpt string `gorm:"type:text" json:"excerpt"`
	Content string `gorm:"type:text;not null" json:"content"`

	Status      PostStatus `gorm:"type:varchar(16);not null;default:'draft';index" json:"status"`
	PublishedAt *time.Time `gorm:"index" json:"published_at,omitempty"`

	CategoryID uint     `gorm:"not null;index" json:"category_id"`
	Category   Category `gorm:"foreignKey:CategoryID" json:"category"`
	AuthorID   uint     `gorm:"not null;index" json:"author_id"`
	Author     Author   `gorm:"foreignKey:AuthorID" json:"author"`

	FeaturedMediaID *uint  `gorm:"index" json:"featured_media_id,omitempty"`
	FeaturedMedia   *Media `gorm:"foreignKey:FeaturedMediaID" json:"featured_media,omitempty"`

	// Counters are adjusted on write, not recomputed from joins on every read.
	ViewsCount    int64 `gorm:"not null;default:0" json:"views_count"`
	LikesCount    int64 `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int64 `gorm:"not null;default:0" json:"comments_count"`

	IsFeatured    bool `gorm:"not null;default:false;index" json:"is_featured"`
	IsTrending    bool `gorm:"not null;default:false;index" json:"is_trending"`
	AllowComments bool `gorm:"not null;default:true" json:"allow_comments"`

	Tags     []Tag     `gorm:"many2many:post_tags" json:"tags,omitempty"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Saves    []Save    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsPubliclyVisible reports whether the post is visible to readers at the given
// instant: status is published and the publish timestamp is not in the future.
// The boundary is inclusive.
func (p *Post) IsPubliclyVisible(now time.Time) bool {
	if p.Status != PostStatusPublished || p.PublishedAt == nil {
		return false
	}
	return !p.PublishedAt.After(now)
}
