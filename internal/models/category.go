package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups posts under a named, ordered heading.
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Color       string `gorm:"type:varchar(16)" json:"color"`
	IsActive    bool   `gorm:"not null;default:true;index" json:"is_active"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`

	// PostsCount is a denormalized count of associated posts. It may lag the
	// true count until the next invalidation or recount.
	PostsCount int64 `gorm:"not null;default:0" json:"posts_count"`

	Posts []Post `gorm:"foreignKey:CategoryID" json:"posts,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
