package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"election-service/internal/ports/models"

	"github.com/redis/go-redis/v9"
)

// VerificationCache keeps recent election-wide verification results.
// Everything is best-effort: a miss or a failed invalidation only
// costs a fresh replay or a stale answer for at most the TTL.
type VerificationCache interface {
	Get(ctx context.Context, electionID uint) (*models.ElectionVerification, bool)
	Set(ctx context.Context, electionID uint, result *models.ElectionVerification)
	Invalidate(ctx context.Context, electionID uint)
}

type redisVerificationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisVerificationCache caches verification results in redis with
// the given TTL.
func NewRedisVerificationCache(client *redis.Client, ttl time.Duration) VerificationCache {
	return &redisVerificationCache{client: client, ttl: ttl}
}

func cacheKey(electionID uint) string {
	return fmt.Sprintf("verify:election:%d", electionID)
}

func (c *redisVerificationCache) Get(ctx context.Context, electionID uint) (*models.ElectionVerification, bool) {
	data, err := c.client.Get(ctx, cacheKey(electionID)).Bytes()
	if err != nil {
		return nil, false
	}
	var result models.ElectionVerification
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (c *redisVerificationCache) Set(ctx context.Context, electionID uint, result *models.ElectionVerification) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(electionID), data, c.ttl).Err(); err != nil {
		slog.Warn("verification cache set failed", "election_id", electionID, "error", err)
	}
}

func (c *redisVerificationCache) Invalidate(ctx context.Context, electionID uint) {
	if err := c.client.Del(ctx, cacheKey(electionID)).Err(); err != nil {
		slog.Warn("verification cache invalidate failed", "election_id", electionID, "error", err)
	}
}
