package models

import (
	"time"

	"gorm.io/gorm"
)

// Tag labels posts; many-to-many with Post.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`

	// PostsCount is denormalized and repaired by the recount path.
	PostsCount int64 `gorm:"not null;default:0" json:"posts_count"`

	Posts []Post `gorm:"many2many:post_tags" json:"posts,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
