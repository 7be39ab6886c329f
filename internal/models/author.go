package models

import (
	"time"

	"gorm.io/gorm"
)

// Author is the content byline, distinct from the authenticated User that
// performs writes. Aggregate counters are denormalized and repaired by the
// maintenance recount path.
type Author struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Slug     string `gorm:"uniqueIndex;not null" json:"slug"`
	Bio      string `gorm:"type:text" json:"bio"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Website  string `json:"website,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	GitHub   string `json:"github,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`

	PostsCount int64 `gorm:"not null;default:0" json:"posts_count"`
	ViewsCount int64 `gorm:"not null;default:0" json:"views_count"`
	LikesCount int64 `gorm:"not null;default:0" json:"likes_count"`

	Posts []Post `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
