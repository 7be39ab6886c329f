package models

import "time"

// LikeTargetKind is the kind of entity a like points at. Modeling the target
// as a typed kind (instead of a free-form type string) keeps the set of
// likeable entities closed.
type LikeTargetKind string

const (
	LikeTargetPost    LikeTargetKind = "post"
	LikeTargetComment LikeTargetKind = "comment"
)

// Valid reports whether the kind names a likeable entity.
func (k LikeTargetKind) Valid() bool {
	return k == LikeTargetPost || k == LikeTargetComment
}

// Like associates a user with a post or comment. The composite unique index is
// what makes the toggle race-safe: concurrent double-submission from the same
// user cannot create two rows.
type Like struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;uniqueIndex:idx_likes_user_target" json:"user_id"`
	TargetKind LikeTargetKind `gorm:"type:varchar(16);not null;uniqueIndex:idx_likes_user_target" json:"target_kind"`
	TargetID   uint           `gorm:"not null;uniqueIndex:idx_likes_user_target" json:"target_id"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Save bookmarks a post for a user. At most one row per (user, post) pair,
// enforced by the composite unique index.
type Save struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_saves_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_saves_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
