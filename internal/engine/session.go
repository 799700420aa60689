package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aparna-hs/literally-invented/internal/domain"
)

// Session is one player's attempt at one mini-game, spanning reloads until
// terminal completion. All mutation goes through the submission pipeline;
// judge round-trips happen outside the lock so different items may be in
// flight back-to-back, while a per-item guard rejects concurrent submissions
// of the same item.
type Session struct {
	playerID int64
	variant  Variant
	judge    Judge
	now      func() time.Time

	mu       sync.Mutex
	phase    domain.Phase
	answered map[string]domain.AnswerRecord
	locked   map[string]struct{}
	pending  []domain.Item
	inFlight map[string]struct{}

	// Mirrors of server-computed totals. Never summed locally.
	score        int
	correctCount int

	attempts int
	final    *domain.FinalResult
	draft    map[string]string
}

// Snapshot is a consistent read-only view of a session for transport layers.
type Snapshot struct {
	Game         domain.GameID         `json:"game"`
	Phase        domain.Phase          `json:"phase"`
	Score        int                   `json:"score"`
	CorrectCount int                   `json:"correctCount"`
	TotalCount   int                   `json:"totalCount"`
	Attempts     int                   `json:"attempts"`
	AttemptCap   int                   `json:"attemptCap,omitempty"`
	Answered     []domain.AnswerRecord `json:"answered"`
	Pending      []domain.Item         `json:"pending"`
	Draft        map[string]string     `json:"draft,omitempty"`
	Final        *domain.FinalResult   `json:"final,omitempty"`
}

// Submit runs the per-item pipeline: guard, judge round-trip, lock
// transition, completion check. On judge failure local state is left
// unchanged so the item remains resubmittable; an item is never locked
// without a confirmed verdict.
func (s *Session) Submit(ctx context.Context, itemID, value string) (domain.SubmitResult, error) {
	if s.variant.Batch() {
		return domain.SubmitResult{}, domain.ErrBatchOnly
	}

	s.mu.Lock()
	if err := s.guardLocked(itemID); err != nil {
		s.mu.Unlock()
		return domain.SubmitResult{}, err
	}
	s.inFlight[itemID] = struct{}{}
	s.mu.Unlock()

	res, err := s.judge.CheckItem(ctx, s.playerID, s.variant.Game(), itemID, value)

	s.mu.Lock()
	delete(s.inFlight, itemID)
	if err != nil {
		s.mu.Unlock()
		return domain.SubmitResult{}, fmt.Errorf("check item %s: %w", itemID, err)
	}
	if s.phase != domain.PhaseInProgress {
		// Session went terminal while the call was in flight (e.g. a
		// concurrent finalize). The server already recorded the answer;
		// do not apply it to torn-down state.
		s.mu.Unlock()
		return res, domain.ErrSessionNotInProgress
	}

	s.applyVerdictLocked(itemID, value, res)
	finalize := s.enterFinalizingLocked()
	s.mu.Unlock()

	if finalize {
		if ferr := s.finalize(ctx); ferr != nil {
			// Stay in Finalizing; the answer result itself is valid and
			// the caller may retry finalize later.
			return res, ferr
		}
	}
	return res, nil
}

// SubmitAll submits the entire answer set in one round-trip (matching game).
// The per-item lock/answered update is applied atomically across the whole
// result map.
func (s *Session) SubmitAll(ctx context.Context, answers map[string]string) (domain.BatchResult, error) {
	if !s.variant.Batch() {
		return domain.BatchResult{}, domain.ErrNotBatch
	}

	s.mu.Lock()
	if s.phase == domain.PhaseCompleted {
		s.mu.Unlock()
		return domain.BatchResult{}, domain.ErrSessionCompleted
	}
	if s.phase != domain.PhaseInProgress {
		s.mu.Unlock()
		return domain.BatchResult{}, domain.ErrSessionNotInProgress
	}
	if _, busy := s.inFlight["batch"]; busy {
		s.mu.Unlock()
		return domain.BatchResult{}, domain.ErrSubmissionInFlight
	}
	s.inFlight["batch"] = struct{}{}
	s.mu.Unlock()

	res, err := s.judge.SubmitBatch(ctx, s.playerID, s.variant.Game(), answers)

	s.mu.Lock()
	delete(s.inFlight, "batch")
	if err != nil {
		s.mu.Unlock()
		return domain.BatchResult{}, fmt.Errorf("submit batch: %w", err)
	}
	if s.phase != domain.PhaseInProgress {
		s.mu.Unlock()
		return res, domain.ErrSessionNotInProgress
	}

	now := s.now()
	s.attempts++
	for itemID, correct := range res.Results {
		if _, done := s.locked[itemID]; done {
			continue
		}
		s.answered[itemID] = domain.AnswerRecord{
			ItemID:     itemID,
			Submitted:  answers[itemID],
			Correct:    correct,
			AnsweredAt: now,
		}
		s.locked[itemID] = struct{}{}
	}
	s.pending = remaining(s.pending, s.locked)
	s.score = res.Score
	s.correctCount = res.CorrectCount
	finalize := s.enterFinalizingLocked()
	s.mu.Unlock()

	if finalize {
		if ferr := s.finalize(ctx); ferr != nil {
			return res, ferr
		}
	}
	return res, nil
}

// RetryFinalize re-fires the finalize call for a session stuck in the
// Finalizing phase after a failed attempt (e.g. on next app focus). A no-op
// in any other phase.
func (s *Session) RetryFinalize(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != domain.PhaseFinalizing {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.finalize(ctx)
}

// guardLocked enforces the submission preconditions. Callers hold s.mu.
func (s *Session) guardLocked(itemID string) error {
	switch s.phase {
	case domain.PhaseCompleted:
		return domain.ErrSessionCompleted
	case domain.PhaseInProgress:
	default:
		return domain.ErrSessionNotInProgress
	}
	if _, done := s.locked[itemID]; done {
		return domain.ErrItemLocked
	}
	if !s.inPool(itemID) {
		return domain.ErrUnknownItem
	}
	if limit := s.variant.AttemptCap(); limit > 0 && s.attempts >= limit {
		return domain.ErrAttemptsExhausted
	}
	if _, busy := s.inFlight[itemID]; busy {
		return domain.ErrSubmissionInFlight
	}
	return nil
}

func (s *Session) inPool(itemID string) bool {
	for _, item := range s.variant.Pool() {
		if item.ID == itemID {
			return true
		}
	}
	return false
}

// applyVerdictLocked records a confirmed verdict. Incorrect answers only
// resolve the item for single-shot games; retryable games keep the item in
// the queue and burn an attempt instead.
func (s *Session) applyVerdictLocked(itemID, value string, res domain.SubmitResult) {
	s.score = res.Score
	s.correctCount = res.CorrectCount
	s.attempts++

	if !res.Correct && !s.variant.LockOnIncorrect() {
		return
	}

	s.answered[itemID] = domain.AnswerRecord{
		ItemID:     itemID,
		Submitted:  value,
		Correct:    res.Correct,
		AnsweredAt: s.now(),
	}
	s.locked[itemID] = struct{}{}
	for i, item := range s.pending {
		if item.ID == itemID {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
}

// enterFinalizingLocked is the edge-triggered completion detector: it fires
// only on the transition out of InProgress, so finalize runs at most once
// per session no matter how many submissions observe an empty queue.
func (s *Session) enterFinalizingLocked() bool {
	if s.phase != domain.PhaseInProgress {
		return false
	}
	exhausted := s.variant.AttemptCap() > 0 && s.attempts >= s.variant.AttemptCap()
	if len(s.pending) > 0 && !exhausted {
		return false
	}
	s.phase = domain.PhaseFinalizing
	return true
}

// finalize performs the one-time aggregate call. On failure the session
// stays in Finalizing so the score shown is never unconfirmed.
func (s *Session) finalize(ctx context.Context) error {
	final, err := s.judge.Finalize(ctx, s.playerID, s.variant.Game())
	if err != nil {
		return fmt.Errorf("finalize %s: %w", s.variant.Game(), err)
	}

	s.mu.Lock()
	if s.phase != domain.PhaseCompleted {
		s.phase = domain.PhaseCompleted
		s.final = &final
		s.score = final.Score
		s.correctCount = final.CorrectCount
	}
	s.mu.Unlock()
	return nil
}

// SetDraft mirrors freshly saved unvalidated state into the live session so a
// resume on the same process sees it without a judge round-trip.
func (s *Session) SetDraft(partial map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	confirmed := make(map[string]string)
	for id, rec := range s.answered {
		if rec.Correct {
			confirmed[id] = rec.Submitted
		}
	}
	s.draft = restoreDraft(s.variant, confirmed, partial)
}

// restoreDraft normalizes a saved draft for resumption. Variants with a
// DraftRestorer rebuild the draft through their own model; everything else
// carries the saved entries verbatim.
func restoreDraft(v Variant, confirmed, draft map[string]string) map[string]string {
	if r, ok := v.(DraftRestorer); ok {
		return r.RestoreDraft(confirmed, draft)
	}
	if len(draft) == 0 {
		return nil
	}
	out := make(map[string]string, len(draft))
	for k, val := range draft {
		out[k] = val
	}
	return out
}

// Phase reports the current lifecycle phase.
func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Score reports the authoritative running score mirror.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Locked reports whether an item has been permanently resolved.
func (s *Session) Locked(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.locked[itemID]
	return ok
}

// Snapshot returns a consistent copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	answered := make([]domain.AnswerRecord, 0, len(s.answered))
	for _, item := range s.variant.Pool() {
		if rec, ok := s.answered[item.ID]; ok {
			answered = append(answered, rec)
		}
	}
	pending := make([]domain.Item, len(s.pending))
	copy(pending, s.pending)

	var draft map[string]string
	if len(s.draft) > 0 {
		draft = make(map[string]string, len(s.draft))
		for k, v := range s.draft {
			draft[k] = v
		}
	}

	snap := Snapshot{
		Game:         s.variant.Game(),
		Phase:        s.phase,
		Score:        s.score,
		CorrectCount: s.correctCount,
		TotalCount:   len(s.variant.Pool()),
		Attempts:     s.attempts,
		AttemptCap:   s.variant.AttemptCap(),
		Answered:     answered,
		Pending:      pending,
		Draft:        draft,
	}
	if s.final != nil {
		f := *s.final
		snap.Final = &f
	}
	return snap
}
