package engine

import (
	"context"

	"github.com/aparna-hs/literally-invented/internal/domain"
)

// Judge is the authoritative remote service for correctness checking, score
// computation, and progress persistence. The engine never decides correctness
// itself; it mirrors what the judge reports. CheckItem and Finalize are
// idempotent server-side, but the engine still enforces its own locks and
// fires finalize at most once per session.
type Judge interface {
	// CheckItem validates a single candidate value and returns the verdict
	// together with the updated running totals for the session.
	CheckItem(ctx context.Context, playerID int64, game domain.GameID, itemID, value string) (domain.SubmitResult, error)

	// SubmitBatch validates a full answer set in one round-trip and returns
	// per-item correctness plus the aggregate score.
	SubmitBatch(ctx context.Context, playerID int64, game domain.GameID, answers map[string]string) (domain.BatchResult, error)

	// Finalize converts per-item progress into the session's terminal score.
	Finalize(ctx context.Context, playerID int64, game domain.GameID) (domain.FinalResult, error)

	// FinalizedScore reports a previously finalized result, or nil if the
	// session has never been finalized.
	FinalizedScore(ctx context.Context, playerID int64, game domain.GameID) (*domain.FinalResult, error)

	// PartialProgress returns the validated per-item records of an
	// unfinished session together with the authoritative running totals.
	PartialProgress(ctx context.Context, playerID int64, game domain.GameID) (Progress, error)

	// SaveProgress persists in-progress, unvalidated state (crossword and
	// matching drafts). Distinct from the locked/validated record path.
	SaveProgress(ctx context.Context, playerID int64, game domain.GameID, partial map[string]string) error
}

// Progress is the judge's view of an unfinished session. Score and
// CorrectCount are server-computed; the reconciler never sums locally.
type Progress struct {
	Records      []domain.AnswerRecord
	Score        int
	CorrectCount int
	Attempts     int
	// Draft holds unvalidated saved state (SaveProgress payloads), keyed by
	// item ID. Empty for games that do not auto-persist drafts.
	Draft map[string]string
}
