package engine

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/aparna-hs/literally-invented/internal/domain"
)

// Reconciler rebuilds in-memory sessions from authoritative server-side
// progress, so a reload resumes exactly where the player left off.
type Reconciler struct {
	judge Judge
	rnd   *rand.Rand
	now   func() time.Time
}

func NewReconciler(judge Judge) *Reconciler {
	return &Reconciler{
		judge: judge,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:   time.Now,
	}
}

// NewReconcilerWithClock is test-only for deterministic shuffles and
// timestamps.
func NewReconcilerWithClock(judge Judge, rnd *rand.Rand, now func() time.Time) *Reconciler {
	return &Reconciler{judge: judge, rnd: rnd, now: now}
}

// Reconcile builds the session for one player and one mini-game.
//
// A finalized score short-circuits everything: the session is terminal and no
// further play is possible. Otherwise partial progress is replayed into the
// answered/locked sets, saved drafts are restored so unvalidated state
// survives a reload, and the remaining items are shuffled into the queue.
// If every item is already answered but finalization never completed (crash
// or dropped connection), the repair path fires finalize immediately.
//
// If the judge cannot be reached the session degrades to a fresh full-pool
// run (fail-open: playing is favored over blocking; the server guards against
// duplicate scoring).
func (r *Reconciler) Reconcile(ctx context.Context, playerID int64, v Variant) (*Session, error) {
	if playerID == 0 {
		return nil, domain.ErrNotAuthenticated
	}

	final, err := r.judge.FinalizedScore(ctx, playerID, v.Game())
	if err != nil {
		log.Printf("reconcile %s for player %d: finalized lookup failed, starting fresh: %v", v.Game(), playerID, err)
		s := r.fresh(playerID, v)
		s.phase = domain.PhaseInProgress
		return s, nil
	}
	if final != nil {
		s := r.fresh(playerID, v)
		s.phase = domain.PhaseCompleted
		s.final = final
		s.score = final.Score
		s.correctCount = final.CorrectCount
		s.attempts = final.Attempts
		s.pending = nil
		return s, nil
	}

	progress, err := r.judge.PartialProgress(ctx, playerID, v.Game())
	if err != nil {
		log.Printf("reconcile %s for player %d: progress lookup failed, starting fresh: %v", v.Game(), playerID, err)
		s := r.fresh(playerID, v)
		s.phase = domain.PhaseInProgress
		return s, nil
	}

	s := r.fresh(playerID, v)
	for _, rec := range progress.Records {
		s.answered[rec.ItemID] = rec
		s.locked[rec.ItemID] = struct{}{}
	}
	s.score = progress.Score
	s.correctCount = progress.CorrectCount
	s.attempts = progress.Attempts
	s.pending = shuffled(r.rnd, remaining(v.Pool(), s.locked))
	if len(progress.Draft) > 0 {
		confirmed := make(map[string]string)
		for _, rec := range progress.Records {
			if rec.Correct {
				confirmed[rec.ItemID] = rec.Submitted
			}
		}
		s.draft = restoreDraft(v, confirmed, progress.Draft)
	}

	exhausted := v.AttemptCap() > 0 && s.attempts >= v.AttemptCap()
	if len(s.pending) == 0 || exhausted {
		// All answered (or attempts used up) but never finalized: repair by
		// finalizing now. On failure the session stays in Finalizing and a
		// retry trigger completes it later.
		s.phase = domain.PhaseFinalizing
		if err := s.finalize(ctx); err != nil {
			log.Printf("reconcile %s for player %d: repair finalize failed: %v", v.Game(), playerID, err)
		}
		return s, nil
	}

	s.phase = domain.PhaseInProgress
	return s, nil
}

// fresh builds a Loading session over the full shuffled pool; every Reconcile
// path advances the phase before returning, so callers never observe Loading.
func (r *Reconciler) fresh(playerID int64, v Variant) *Session {
	return &Session{
		playerID: playerID,
		variant:  v,
		judge:    r.judge,
		now:      r.now,
		phase:    domain.PhaseLoading,
		answered: make(map[string]domain.AnswerRecord),
		locked:   make(map[string]struct{}),
		pending:  shuffled(r.rnd, v.Pool()),
		inFlight: make(map[string]struct{}),
	}
}
