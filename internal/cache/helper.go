package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"inkwell/internal/observability"
)

// GetJSON attempts to get the key from the store and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, store Store, key string, dest any) (bool, error) {
	if store == nil {
		return false, nil
	}
	b, found, err := store.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, store Store, key string, v any, ttl time.Duration) error {
	if store == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, b, ttl)
}

// Aside tries the store first; on miss it calls fetch (which must write into
// dest), then stores the result with ttl. A store read error is treated as a
// miss so an unreachable cache degrades rather than failing reads. Concurrent
// misses may recompute redundantly; last writer wins on the key.
func Aside(ctx context.Context, store Store, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, store, key, dest)
	if err != nil {
		slog.WarnContext(ctx, "cache read failed, falling through to source",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	if found {
		observability.CacheRequests.WithLabelValues(key, "hit").Inc()
		return nil
	}
	observability.CacheRequests.WithLabelValues(key, "miss").Inc()

	if err := fetch(); err != nil {
		return err
	}

	// Store into cache (best-effort)
	if err := SetJSON(ctx, store, key, dest, ttl); err != nil {
		slog.WarnContext(ctx, "cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	return nil
}
