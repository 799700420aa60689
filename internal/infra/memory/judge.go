package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/aparna-hs/literally-invented/internal/engine"
)

// Judge is an in-memory implementation of the authoritative judge, used in
// tests and in demo mode when no Postgres is configured. It applies the same
// rules as the Postgres judge: per-item idempotency, single-shot vs retryable
// recording, timeline attempt counting, and idempotent finalize.
type Judge struct {
	source KeySource
	now    func() time.Time

	mu     sync.Mutex
	states map[stateKey]*playerState
	finals map[stateKey]domain.FinalResult
	drafts map[stateKey]map[string]string
}

type stateKey struct {
	playerID int64
	game     domain.GameID
}

type playerState struct {
	records  []domain.AnswerRecord
	byItem   map[string]int
	attempts int
}

func NewJudge(source KeySource) *Judge {
	return NewJudgeWithClock(source, time.Now)
}

// NewJudgeWithClock is test-only for deterministic timestamps.
func NewJudgeWithClock(source KeySource, now func() time.Time) *Judge {
	return &Judge{
		source: source,
		now:    now,
		states: make(map[stateKey]*playerState),
		finals: make(map[stateKey]domain.FinalResult),
		drafts: make(map[stateKey]map[string]string),
	}
}

func (j *Judge) CheckItem(ctx context.Context, playerID int64, gameID domain.GameID, itemID, value string) (domain.SubmitResult, error) {
	keys, err := j.source.LoadKeys(ctx, gameID)
	if err != nil {
		return domain.SubmitResult{}, fmt.Errorf("load keys: %w", err)
	}
	expected, ok := keys[itemID]
	if !ok {
		return domain.SubmitResult{}, domain.ErrUnknownItem
	}
	correct := answersMatch(gameID, expected, value)

	j.mu.Lock()
	defer j.mu.Unlock()

	state := j.state(playerID, gameID)
	if gameID == domain.GameTimeline {
		state.attempts++
	}
	if correct || gameID.SingleShot() {
		state.record(domain.AnswerRecord{
			ItemID:     itemID,
			Submitted:  value,
			Correct:    correct,
			AnsweredAt: j.now(),
		})
	}

	score, correctCount := state.totals(gameID)
	return domain.SubmitResult{
		ItemID:       itemID,
		Correct:      correct,
		Score:        score,
		CorrectCount: correctCount,
		TotalCount:   len(keys),
	}, nil
}

func (j *Judge) SubmitBatch(ctx context.Context, playerID int64, gameID domain.GameID, answers map[string]string) (domain.BatchResult, error) {
	keys, err := j.source.LoadKeys(ctx, gameID)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("load keys: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	state := j.state(playerID, gameID)
	state.attempts++
	now := j.now()

	results := make(map[string]bool, len(keys))
	for itemID, expected := range keys {
		correct := answersMatch(gameID, expected, answers[itemID])
		results[itemID] = correct
		state.record(domain.AnswerRecord{
			ItemID:     itemID,
			Submitted:  answers[itemID],
			Correct:    correct,
			AnsweredAt: now,
		})
	}

	score, correctCount := state.totals(gameID)
	return domain.BatchResult{
		Results:      results,
		Score:        score,
		CorrectCount: correctCount,
		TotalCount:   len(keys),
	}, nil
}

func (j *Judge) Finalize(ctx context.Context, playerID int64, gameID domain.GameID) (domain.FinalResult, error) {
	keys, err := j.source.LoadKeys(ctx, gameID)
	if err != nil {
		return domain.FinalResult{}, fmt.Errorf("load keys: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	key := stateKey{playerID, gameID}
	if final, ok := j.finals[key]; ok {
		return final, nil
	}

	state := j.state(playerID, gameID)
	score, correctCount := state.totals(gameID)
	final := domain.FinalResult{
		Score:        score,
		CorrectCount: correctCount,
		TotalCount:   len(keys),
		Perfect:      correctCount == len(keys),
		Attempts:     state.attempts,
		CompletedAt:  j.now(),
	}
	j.finals[key] = final
	return final, nil
}

func (j *Judge) FinalizedScore(_ context.Context, playerID int64, gameID domain.GameID) (*domain.FinalResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if final, ok := j.finals[stateKey{playerID, gameID}]; ok {
		f := final
		return &f, nil
	}
	return nil, nil
}

func (j *Judge) PartialProgress(_ context.Context, playerID int64, gameID domain.GameID) (engine.Progress, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	state := j.state(playerID, gameID)
	records := make([]domain.AnswerRecord, len(state.records))
	copy(records, state.records)
	score, correctCount := state.totals(gameID)

	progress := engine.Progress{
		Records:      records,
		Score:        score,
		CorrectCount: correctCount,
		Attempts:     state.attempts,
	}
	if draft, ok := j.drafts[stateKey{playerID, gameID}]; ok {
		progress.Draft = make(map[string]string, len(draft))
		for k, v := range draft {
			progress.Draft[k] = v
		}
	}
	return progress, nil
}

func (j *Judge) SaveProgress(_ context.Context, playerID int64, gameID domain.GameID, partial map[string]string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	draft := make(map[string]string, len(partial))
	for k, v := range partial {
		draft[k] = v
	}
	j.drafts[stateKey{playerID, gameID}] = draft
	return nil
}

func (j *Judge) state(playerID int64, gameID domain.GameID) *playerState {
	key := stateKey{playerID, gameID}
	if state, ok := j.states[key]; ok {
		return state
	}
	state := &playerState{byItem: make(map[string]int)}
	j.states[key] = state
	return state
}

// record stores a verdict once per item; re-submitting a resolved item is a
// server-side no-op.
func (s *playerState) record(rec domain.AnswerRecord) {
	if _, exists := s.byItem[rec.ItemID]; exists {
		return
	}
	s.byItem[rec.ItemID] = len(s.records)
	s.records = append(s.records, rec)
}

func (s *playerState) totals(gameID domain.GameID) (score, correctCount int) {
	for _, rec := range s.records {
		if rec.Correct {
			correctCount++
		}
	}
	return correctCount * gameID.PointsPerItem(), correctCount
}

// answersMatch applies the per-game comparison rule: crossword words are
// case-insensitive, everything else is exact.
func answersMatch(gameID domain.GameID, expected, submitted string) bool {
	if submitted == "" {
		return false
	}
	if gameID == domain.GameCrossword {
		return strings.EqualFold(expected, submitted)
	}
	return expected == submitted
}
