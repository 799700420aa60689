package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// KeySource fetches a game's answer key from a backing store (Postgres).
type KeySource interface {
	LoadKeys(ctx context.Context, gameID domain.GameID) (map[string]string, error)
}

// KeyCache caches answer keys in Redis (hash per game) and falls back to the
// source on cache miss. Keys are stored as:
// HSET game:{gameID}:answers {itemID} {answer}
type KeyCache struct {
	client *redis.Client
	source KeySource
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewKeyCache(client *redis.Client, source KeySource, ttl time.Duration) *KeyCache {
	return &KeyCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *KeyCache) LoadKeys(ctx context.Context, gameID domain.GameID) (map[string]string, error) {
	cacheKey := c.answersKey(gameID)

	cached, err := c.client.HGetAll(ctx, cacheKey).Result()
	if err == nil && len(cached) > 0 {
		return cached, nil
	}

	result, err, _ := c.sf.Do(string(gameID), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		cached, err := c.client.HGetAll(ctx, cacheKey).Result()
		if err == nil && len(cached) > 0 {
			return cached, nil
		}

		keys, err := c.source.LoadKeys(ctx, gameID)
		if err != nil {
			return nil, err
		}

		pipe := c.client.Pipeline()
		for itemID, answer := range keys {
			pipe.HSet(ctx, cacheKey, itemID, answer)
		}
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, cacheKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]string), nil
}

func (c *KeyCache) answersKey(gameID domain.GameID) string {
	return "game:" + string(gameID) + ":answers"
}

func (c *KeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
