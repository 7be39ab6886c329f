// Command optimize runs database and cache maintenance: planner statistics
// refresh and cache rebuild.
package main

import (
	"context"
	"log"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/spf13/pflag"
)

func main() {
	analyze := pflag.Bool("analyze", false, "refresh planner statistics for application tables")
	rebuildCache := pflag.Bool("cache", false, "flush and rewarm the content cache")
	pflag.Parse()

	if !*analyze && !*rebuildCache {
		log.Println("nothing to do: pass --analyze and/or --cache")
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var store cache.Store
	if *rebuildCache {
		cache.SetDefaultTTL(time.Duration(cfg.CacheTTLSeconds) * time.Second)
		store = cache.Connect(cfg.RedisURL)
		if store == nil {
			log.Println("WARNING: cache rebuild requested but Redis is unreachable, skipping")
			*rebuildCache = false
		}
	}

	maintenance := service.NewMaintenanceService(db, store,
		repository.NewPostRepository(db, store),
		repository.NewCategoryRepository(db, store),
		repository.NewTagRepository(db),
		repository.NewAuthorRepository(db))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *analyze {
		n := maintenance.Analyze(ctx)
		log.Printf("Analyzed %d of %d tables", n, len(database.MaintenanceTables))
	}

	// Warm failures degrade the cache, not the command: the next reader pays
	// the cold-cache cost and the run still exits clean.
	if *rebuildCache {
		if err := maintenance.RebuildCache(ctx); err != nil {
			log.Printf("WARNING: cache rebuild failed: %v", err)
		} else {
			log.Println("Cache flushed and rewarmed")
		}
	}
}
