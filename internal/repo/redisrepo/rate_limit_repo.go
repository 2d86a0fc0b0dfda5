package redisrepo

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimitRepository interface {
	CheckRateLimit(ctx context.Context, key string, requests int, window time.Duration) (bool, error)
}

type rateLimitRepository struct {
	client *redis.Client
}

func NewRateLimitRepository(client *redis.Client) RateLimitRepository {
	return &rateLimitRepository{client: client}
}

// CheckRateLimit is a fixed-window counter: first hit in a window creates
// the key with a TTL, later hits increment it. Fails open on redis errors.
func (r *rateLimitRepository) CheckRateLimit(ctx context.Context, key string, requests int, window time.Duration) (bool, error) {
	// Hash the key for privacy
	hasher := sha256.New()
	hasher.Write([]byte(key))
	hashedKey := fmt.Sprintf("ratelimit:%x", hasher.Sum(nil))

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, hashedKey)
	pipe.ExpireNX(ctx, hashedKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, nil
	}

	return incr.Val() <= int64(requests), nil
}
