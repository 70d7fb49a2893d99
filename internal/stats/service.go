// Package stats aggregates catalog figures from the Films service and caches
// them in Redis so dashboards do not fan out on every request.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheKey = "stats:catalog"

// Snapshot is one consistent view of the catalog counters.
type Snapshot struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"byCategory"`
	ByYear     map[string]int `json:"byYear"`
	FetchedAt  time.Time      `json:"fetchedAt"`
}

// Catalog is the slice of the Films service the aggregator needs.
type Catalog interface {
	CountByCategory(ctx context.Context) (map[string]int, error)
	CountByYear(ctx context.Context) (map[string]int, error)
}

// Service loads snapshots with a Redis cache in front and collapses
// concurrent misses into a single upstream fetch.
type Service struct {
	films  Catalog
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
	group  singleflight.Group
}

// NewService constructs a Service.
func NewService(films Catalog, client *redis.Client, logger *slog.Logger, ttl time.Duration) *Service {
	return &Service{films: films, client: client, logger: logger, ttl: ttl}
}

// Snapshot returns the cached snapshot, refreshing it on a miss.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	if s.client != nil {
		raw, err := s.client.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var snap Snapshot
			if jsonErr := json.Unmarshal(raw, &snap); jsonErr == nil {
				return snap, nil
			}
			if s.logger != nil {
				s.logger.Warn("stats cache entry malformed, refreshing")
			}
		} else if !errors.Is(err, redis.Nil) && s.logger != nil {
			s.logger.Warn("stats cache read failed", slog.Any("error", err))
		}
	}

	value, err, _ := s.group.Do(cacheKey, func() (any, error) {
		return s.refresh(ctx)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return value.(Snapshot), nil
}

// Warm refreshes the cache unconditionally. The background worker calls this
// on a schedule so interactive requests mostly hit warm data.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.refresh(ctx)
	return err
}

func (s *Service) refresh(ctx context.Context) (Snapshot, error) {
	byCategory, err := s.films.CountByCategory(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	byYear, err := s.films.CountByYear(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	total := 0
	for _, n := range byCategory {
		total += n
	}
	snap := Snapshot{
		Total:      total,
		ByCategory: byCategory,
		ByYear:     byYear,
		FetchedAt:  time.Now().UTC(),
	}

	if s.client != nil {
		data, err := json.Marshal(snap)
		if err == nil {
			if err := s.client.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil && s.logger != nil {
				s.logger.Warn("stats cache write failed", slog.Any("error", err))
			}
		}
	}
	return snap, nil
}
