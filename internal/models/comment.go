package models

import (
	"time"

	"gorm.io/gorm"
)

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusSpam     CommentStatus = "spam"
)

// Comment belongs to a post, optionally to a registered user, and optionally
// to a parent comment (one level of nesting via the parent pointer).
type Comment struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	PostID uint `gorm:"not null;index" json:"post_id"`
	UserID *uint `gorm:"index" json:"user_id,omitempty"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	// Guest commenters supply a display name and email instead of a user ID.
	GuestName  string `json:"guest_name,omitempty"`
	GuestEmail string `json:"guest_email,omitempty"`

	ParentID *uint     `gorm:"index" json:"parent_id,omitempty"`
	Replies  []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`

	Content string        `gorm:"type:text;not null" json:"content"`
	Status  CommentStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`

	LikesCount int64 `gorm:"not null;default:0" json:"likes_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
