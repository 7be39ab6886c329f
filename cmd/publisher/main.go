// Command publisher promotes scheduled posts whose publish time has arrived.
// Intended to run on a cron cadence.
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
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	store := cache.Connect(cfg.RedisURL)
	posts := repository.NewPostRepository(db, store)
	publisher := service.NewPublisherService(posts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	published, err := publisher.PublishDue(ctx, time.Now().UTC())
	if err != nil {
		log.Fatalf("Publisher run failed: %v", err)
	}
	log.Printf("Published %d scheduled posts", published)
}
