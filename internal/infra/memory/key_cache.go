package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/aparna-hs/literally-invented/internal/domain"
	"golang.org/x/sync/singleflight"
)

// KeySource fetches a game's answer key from a backing store.
type KeySource interface {
	LoadKeys(ctx context.Context, gameID domain.GameID) (map[string]string, error)
}

// KeyCache caches answer keys with TTL to avoid repeated backing-store hits.
type KeyCache struct {
	source KeySource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[domain.GameID]cachedKeys
}

type cachedKeys struct {
	keys      map[string]string
	expiresAt time.Time
}

func NewKeyCache(source KeySource, ttl time.Duration) *KeyCache {
	return &KeyCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[domain.GameID]cachedKeys),
	}
}

func (c *KeyCache) LoadKeys(ctx context.Context, gameID domain.GameID) (map[string]string, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[gameID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.keys, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(string(gameID), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[gameID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.keys, nil
		}
		c.mu.RUnlock()

		keys, err := c.source.LoadKeys(ctx, gameID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[gameID] = cachedKeys{
			keys:      keys,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]string), nil
}

func (c *KeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticKeys is a KeySource backed by an in-memory map (tests/demo mode).
type StaticKeys struct {
	keys map[domain.GameID]map[string]string
}

func NewStaticKeys(keys map[domain.GameID]map[string]string) *StaticKeys {
	return &StaticKeys{keys: keys}
}

func (s *StaticKeys) LoadKeys(_ context.Context, gameID domain.GameID) (map[string]string, error) {
	if keys, ok := s.keys[gameID]; ok {
		return keys, nil
	}
	return nil, domain.ErrUnknownGame
}
