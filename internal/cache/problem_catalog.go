// Package cache keeps the problem listing in Redis in front of a ProblemRepository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/coaching-service/internal/domain"
	"github.com/spec-kit/coaching-service/internal/repository"
)

const (
	catalogVersionKey = "coaching:problems:version"
	catalogKeyPrefix  = "coaching:problems:v"

	// fillTimeout bounds a shared fill once it is detached from the caller that started it.
	fillTimeout = 5 * time.Second
)

// ProblemCatalog caches List in Redis. Every write bumps a version counter, and listings
// are stored under the version they were read at, so a fill racing a toggle can only
// populate a key nobody reads anymore.
type ProblemCatalog struct {
	repository.ProblemRepository

	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
	fills  singleflight.Group
}

// NewProblemCatalog wraps problems. A nil client or non-positive ttl disables caching and
// every call reads through.
func NewProblemCatalog(problems repository.ProblemRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *ProblemCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		client = nil
	}
	return &ProblemCatalog{ProblemRepository: problems, client: client, ttl: ttl, logger: logger}
}

// List returns the catalog ordered by id. Redis failures are logged and fall back to the
// repository.
func (c *ProblemCatalog) List(ctx context.Context) ([]domain.Problem, error) {
	if c.client == nil {
		return c.ProblemRepository.List(ctx)
	}

	version, err := c.version(ctx)
	if err != nil {
		c.logger.Warn("catalog version read failed", zap.Error(err))
		return c.ProblemRepository.List(ctx)
	}

	key := catalogKey(version)
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var problems []domain.Problem
		if jsonErr := json.Unmarshal(data, &problems); jsonErr == nil {
			return problems, nil
		}
		c.logger.Warn("discarding unreadable cached catalog", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("catalog cache get failed", zap.String("key", key), zap.Error(err))
	}

	return c.fill(ctx, key)
}

// fill reads the repository once per key no matter how many callers miss at the same
// time. The shared read runs detached from any one caller, so a caller that gives up
// only stops waiting.
func (c *ProblemCatalog) fill(ctx context.Context, key string) ([]domain.Problem, error) {
	ch := c.fills.DoChan(key, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillTimeout)
		defer cancel()

		problems, err := c.ProblemRepository.List(shared)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(problems)
		if err == nil {
			err = c.client.Set(shared, key, payload, c.ttl).Err()
		}
		if err != nil {
			c.logger.Warn("catalog cache set failed", zap.String("key", key), zap.Error(err))
		}
		return problems, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		shared, _ := res.Val.([]domain.Problem)
		problems := make([]domain.Problem, len(shared))
		copy(problems, shared)
		return problems, nil
	}
}

// Create stores the problem and invalidates cached listings.
func (c *ProblemCatalog) Create(ctx context.Context, problem *domain.Problem) error {
	if err := c.ProblemRepository.Create(ctx, problem); err != nil {
		return err
	}
	c.invalidateAfterWrite(ctx)
	return nil
}

// Toggle flips the flag and invalidates cached listings.
func (c *ProblemCatalog) Toggle(ctx context.Context, id int64, flag repository.ProblemFlag) (*domain.Problem, error) {
	problem, err := c.ProblemRepository.Toggle(ctx, id, flag)
	if err != nil {
		return nil, err
	}
	c.invalidateAfterWrite(ctx)
	return problem, nil
}

// Invalidate retires every cached listing.
func (c *ProblemCatalog) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, catalogVersionKey).Err()
}

// invalidateAfterWrite runs once the write is committed, so it must not fail the request.
func (c *ProblemCatalog) invalidateAfterWrite(ctx context.Context) {
	if err := c.Invalidate(context.WithoutCancel(ctx)); err != nil {
		c.logger.Warn("catalog invalidation failed; listings may lag until ttl",
			zap.Duration("ttl", c.ttl), zap.Error(err))
	}
}

func (c *ProblemCatalog) version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, catalogVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func catalogKey(version int64) string {
	return fmt.Sprintf("%s%d", catalogKeyPrefix, version)
}
