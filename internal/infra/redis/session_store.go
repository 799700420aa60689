package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/aparna-hs/literally-invented/internal/app"
	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/aparna-hs/literally-invented/internal/engine"
	"github.com/redis/go-redis/v9"
)

// SessionStore wraps an inner SessionRepository with Redis liveness markers.
// Notes:
//   - Sessions themselves stay in-process; authoritative progress lives in
//     the judge's storage and is reconciled on first access, so the marker
//     only tracks which player/game sessions are warm.
//   - For true distribution you'd pair this with a pub/sub projector that
//     invalidates warm sessions across instances.
type SessionStore struct {
	inner  app.SessionRepository
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(inner app.SessionRepository, client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{inner: inner, client: client, ttl: ttl}
}

func (s *SessionStore) GetOrCreate(ctx context.Context, playerID int64, v engine.Variant) (*engine.Session, error) {
	session, err := s.inner.GetOrCreate(ctx, playerID, v)
	if err != nil {
		return nil, err
	}
	// best-effort liveness marker
	_ = s.client.Set(ctx, s.key(playerID, v.Game()), "1", s.ttl).Err()
	return session, nil
}

func (s *SessionStore) Get(playerID int64, gameID domain.GameID) (*engine.Session, bool) {
	return s.inner.Get(playerID, gameID)
}

func (s *SessionStore) Drop(playerID int64, gameID domain.GameID) {
	s.inner.Drop(playerID, gameID)
	_ = s.client.Del(context.Background(), s.key(playerID, gameID)).Err()
}

func (s *SessionStore) key(playerID int64, gameID domain.GameID) string {
	return "session:" + strconv.FormatInt(playerID, 10) + ":" + string(gameID)
}
