package app

import (
	"context"
	"log"

	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/aparna-hs/literally-invented/internal/engine"
	"github.com/aparna-hs/literally-invented/internal/game"
)

// SessionRepository abstracts how reconciled sessions are held (in-memory,
// Redis-marked, etc).
type SessionRepository interface {
	GetOrCreate(ctx context.Context, playerID int64, v engine.Variant) (*engine.Session, error)
	Get(playerID int64, gameID domain.GameID) (*engine.Session, bool)
	Drop(playerID int64, gameID domain.GameID)
}

// Authenticator resolves login credentials to a player identity.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (domain.Player, error)
}

// LeaderboardSource produces the aggregated scoreboard.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context) (domain.Leaderboard, error)
}

// GameService contains the party-game use cases: resume a mini-game session,
// submit answers, persist drafts, and read the scoreboard.
type GameService struct {
	sessions    SessionRepository
	judge       engine.Judge
	auth        Authenticator
	leaderboard LeaderboardSource
}

func NewGameService(sessions SessionRepository, judge engine.Judge, auth Authenticator, leaderboard LeaderboardSource) *GameService {
	return &GameService{sessions: sessions, judge: judge, auth: auth, leaderboard: leaderboard}
}

// Login performs the thin credential lookup and returns the player identity
// used to key every game operation.
func (s *GameService) Login(ctx context.Context, username, password string) (domain.Player, error) {
	return s.auth.Authenticate(ctx, username, password)
}

// Resume reconciles (or returns) the session for a player and mini-game and
// reports the play-permission decision alongside the state snapshot.
//
// An Unknown verdict (authority unreachable) is resolved here as allow-play:
// the session has already degraded to fail-open and the server deduplicates
// scoring, so blocking the player buys nothing. The decision is logged so
// the degradation is visible.
func (s *GameService) Resume(ctx context.Context, playerID int64, gameID domain.GameID) (engine.Snapshot, engine.PlayDecision, error) {
	if playerID == 0 {
		return engine.Snapshot{}, engine.PlayDecision{}, domain.ErrNotAuthenticated
	}
	variant, err := game.VariantFor(gameID)
	if err != nil {
		return engine.Snapshot{}, engine.PlayDecision{}, err
	}

	decision := engine.CanPlay(ctx, s.judge, playerID, variant)
	if decision.Verdict == engine.VerdictUnknown {
		log.Printf("play check for player %d game %s degraded: %s", playerID, gameID, decision.Reason)
	}

	session, err := s.sessions.GetOrCreate(ctx, playerID, variant)
	if err != nil {
		return engine.Snapshot{}, decision, err
	}
	return session.Snapshot(), decision, nil
}

// Submit routes a per-item submission through the session pipeline.
func (s *GameService) Submit(ctx context.Context, playerID int64, gameID domain.GameID, itemID, value string) (domain.SubmitResult, engine.Snapshot, error) {
	session, err := s.session(ctx, playerID, gameID)
	if err != nil {
		return domain.SubmitResult{}, engine.Snapshot{}, err
	}
	res, err := session.Submit(ctx, itemID, value)
	return res, session.Snapshot(), err
}

// SubmitBatch routes the matching game's all-at-once submission.
func (s *GameService) SubmitBatch(ctx context.Context, playerID int64, gameID domain.GameID, answers map[string]string) (domain.BatchResult, engine.Snapshot, error) {
	session, err := s.session(ctx, playerID, gameID)
	if err != nil {
		return domain.BatchResult{}, engine.Snapshot{}, err
	}
	res, err := session.SubmitAll(ctx, answers)
	return res, session.Snapshot(), err
}

// SaveDraft persists in-progress unvalidated state (crossword/matching
// auto-save). Validated records are untouched.
func (s *GameService) SaveDraft(ctx context.Context, playerID int64, gameID domain.GameID, partial map[string]string) error {
	if playerID == 0 {
		return domain.ErrNotAuthenticated
	}
	if err := s.judge.SaveProgress(ctx, playerID, gameID, partial); err != nil {
		return err
	}
	if session, ok := s.sessions.Get(playerID, gameID); ok {
		session.SetDraft(partial)
	}
	return nil
}

// RetryFinalize re-fires a pending finalize for a stuck session.
func (s *GameService) RetryFinalize(ctx context.Context, playerID int64, gameID domain.GameID) (engine.Snapshot, error) {
	session, err := s.session(ctx, playerID, gameID)
	if err != nil {
		return engine.Snapshot{}, err
	}
	if err := session.RetryFinalize(ctx); err != nil {
		return session.Snapshot(), err
	}
	return session.Snapshot(), nil
}

// Leaderboard returns the aggregated scoreboard.
func (s *GameService) Leaderboard(ctx context.Context) (domain.Leaderboard, error) {
	return s.leaderboard.Leaderboard(ctx)
}

func (s *GameService) session(ctx context.Context, playerID int64, gameID domain.GameID) (*engine.Session, error) {
	if playerID == 0 {
		return nil, domain.ErrNotAuthenticated
	}
	if session, ok := s.sessions.Get(playerID, gameID); ok {
		return session, nil
	}
	variant, err := game.VariantFor(gameID)
	if err != nil {
		return nil, err
	}
	return s.sessions.GetOrCreate(ctx, playerID, variant)
}
