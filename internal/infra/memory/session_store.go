package memory

import (
	"context"
	"sync"

	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/aparna-hs/literally-invented/internal/engine"
)

// SessionStore is an in-memory implementation of app.SessionRepository. A
// session is reconciled from the judge's stored progress on first access and
// then reused for the life of the process.
type SessionStore struct {
	reconciler *engine.Reconciler

	mu       sync.Mutex
	sessions map[stateKey]*engine.Session
}

func NewSessionStore(reconciler *engine.Reconciler) *SessionStore {
	return &SessionStore{
		reconciler: reconciler,
		sessions:   make(map[stateKey]*engine.Session),
	}
}

func (s *SessionStore) GetOrCreate(ctx context.Context, playerID int64, v engine.Variant) (*engine.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := stateKey{playerID, v.Game()}
	if session, ok := s.sessions[key]; ok {
		return session, nil
	}
	session, err := s.reconciler.Reconcile(ctx, playerID, v)
	if err != nil {
		return nil, err
	}
	s.sessions[key] = session
	return session, nil
}

func (s *SessionStore) Get(playerID int64, gameID domain.GameID) (*engine.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[stateKey{playerID, gameID}]
	return session, ok
}

func (s *SessionStore) Drop(playerID int64, gameID domain.GameID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, stateKey{playerID, gameID})
}
