package repository

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// EngagementRepository handles like and save toggles. Uniqueness of the
// (user, target) pair is enforced by composite unique indexes, so concurrent
// double-submission can never produce two rows; the application only decides
// which side of the toggle it landed on.
type EngagementRepository interface {
	ToggleLike(ctx context.Context, userID uint, kind models.LikeTargetKind, targetID uint) (liked bool, err error)
	ToggleSave(ctx context.Context, userID, postID uint) (saved bool, err error)
	IsLiked(ctx context.Context, userID uint, kind models.LikeTargetKind, targetID uint) (bool, error)
	IsSaved(ctx context.Context, userID, postID uint) (bool, error)
	ListSavedPostIDs(ctx context.Context, userID uint) ([]uint, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

// ToggleLike flips like membership for the (user, target) pair and adjusts
// the target's like counter. INSERT ... ON CONFLICT DO NOTHING is atomic
// against the unique index: affected rows tell us whether this call won the
// insert or the pair already existed.
func (r *engagementRepository) ToggleLike(ctx context.Context, userID uint, kind models.LikeTargetKind, targetID uint) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("invalid like target kind %q", kind)
	}

	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(
			`INSERT INTO likes (user_id, target_kind, target_id, created_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT (user_id, target_kind, target_id) DO NOTHING`,
			userID, kind, targetID, time.Now().UTC(),
		)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			liked = true
			return r.adjustLikeCounter(tx, kind, targetID, +1)
		}

		// Pair already existed: toggle off with a hard delete.
		del := tx.Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
			Delete(&models.Like{})
		if del.Error != nil {
			return del.Error
		}
		liked = false
		if del.RowsAffected > 0 {
			return r.adjustLikeCounter(tx, kind, targetID, -1)
		}
		return nil
	})
	return liked, err
}

func (r *engagementRepository) adjustLikeCounter(tx *gorm.DB, kind models.LikeTargetKind, targetID uint, delta int) error {
	var q *gorm.DB
	switch kind {
	case models.LikeTargetPost:
		q = tx.Model(&models.Post{})
	case models.LikeTargetComment:
		q = tx.Model(&models.Comment{})
	default:
		return fmt.Errorf("invalid like target kind %q", kind)
	}
	q = q.Where("id = ?", targetID)
	if delta < 0 {
		// Counters never go negative even if a repair ran in between.
		q = q.Where("likes_count > 0")
	}
	return q.UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta)).Error
}

// ToggleSave flips save membership for the (user, post) pair.
func (r *engagementRepository) ToggleSave(ctx context.Context, userID, postID uint) (bool, error) {
	var saved bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(
			`INSERT INTO saves (user_id, post_id, created_at)
			 VALUES (?, ?, ?)
			 ON CONFLICT (user_id, post_id) DO NOTHING`,
			userID, postID, time.Now().UTC(),
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			saved = true
			return nil
		}
		saved = false
		return tx.Where("user_id = ? AND post_id = ?", userID, postID).
			Delete(&models.Save{}).Error
	})
	return saved, err
}

func (r *engagementRepository) IsLiked(ctx context.Context, userID uint, kind models.LikeTargetKind, targetID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
		Count(&count).Error
	return count > 0, err
}

func (r *engagementRepository) IsSaved(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Save{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (r *engagementRepository) ListSavedPostIDs(ctx context.Context, userID uint) ([]uint, error) {
	var postIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Save{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("post_id", &postIDs).Error
	return postIDs, err
}
