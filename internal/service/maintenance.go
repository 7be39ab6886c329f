package service

import (
	"context"
	"fmt"

	"inkwell/internal/cache"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

// MaintenanceService backs the optimize command: planner statistics refresh
// and cache rebuild.
type MaintenanceService struct {
	db         *gorm.DB
	store      cache.Store
	posts      repository.PostRepository
	categories repository.CategoryRepository
	tags       repository.TagRepository
	authors    repository.AuthorRepository
}

// NewMaintenanceService creates a maintenance service.
func NewMaintenanceService(db *gorm.DB, store cache.Store,
	posts repository.PostRepository, categories repository.CategoryRepository,
	tags repository.TagRepository, authors repository.AuthorRepository) *MaintenanceService {
	return &MaintenanceService{
		db: db, store: store,
		posts: posts, categories: categories,
		tags: tags, authors: authors,
	}
}

// Analyze refreshes planner statistics for every application table. A table
// that fails to analyze (for example one that does not exist yet) is logged
// and skipped; the run continues.
func (s *MaintenanceService) Analyze(ctx context.Context) int {
	analyzed := 0
	for _, table := range database.MaintenanceTables {
		if err := s.db.WithContext(ctx).Exec("ANALYZE " + table).Error; err != nil {
			middleware.Logger.Warn("analyze failed for table",
				"table", table, "error", err)
			continue
		}
		analyzed++
	}
	return analyzed
}

// RebuildCache repairs the denormalized counters, flushes the content cache,
// and rewarms the named listings so the next reader does not pay the
// cold-cache cost.
func (s *MaintenanceService) RebuildCache(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("cache is not available")
	}
	s.RepairCounters(ctx)
	if err := s.store.FlushAll(ctx); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	if err := s.posts.WarmListings(ctx); err != nil {
		return fmt.Errorf("warm post listings: %w", err)
	}
	if err := s.categories.WarmListing(ctx); err != nil {
		return fmt.Errorf("warm category listing: %w", err)
	}
	return nil
}

// RepairCounters recomputes the denormalized post counts and author aggregates
// from the source rows, bounding whatever drift has accumulated. Per-row
// failures are logged and skipped.
func (s *MaintenanceService) RepairCounters(ctx context.Context) {
	s.repairEach(ctx, "categories", s.categories.RecountPosts)
	s.repairEach(ctx, "tags", s.tags.RecountPosts)
	s.repairEach(ctx, "authors", s.authors.RecountAggregates)
}

func (s *MaintenanceService) repairEach(ctx context.Context, table string, recount func(context.Context, uint) error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Table(table).Pluck("id", &ids).Error; err != nil {
		middleware.Logger.Warn("counter repair listing failed",
			"table", table, "error", err)
		return
	}
	for _, id := range ids {
		if err := recount(ctx, id); err != nil {
			middleware.Logger.Warn("counter repair failed",
				"table", table, "id", id, "error", err)
		}
	}
}
