package engine

import "github.com/aparna-hs/literally-invented/internal/domain"

// Variant parameterizes the generic progress engine for one mini-game:
// submit-one vs submit-batch, lock discipline, and attempt cap. The four
// mini-games are instances of this interface rather than four copies of the
// state machine.
type Variant interface {
	Game() domain.GameID

	// Pool is the immutable ordered catalog of items for this game.
	Pool() []domain.Item

	// Batch reports whether the whole answer set is submitted in one
	// round-trip (the matching game) instead of per item.
	Batch() bool

	// AttemptCap limits how many submissions are allowed before the session
	// is force-finalized regardless of correctness. Zero means unlimited.
	AttemptCap() int

	// LockOnIncorrect reports whether an incorrect verdict still resolves
	// the item. Single-shot games (matching, bluff) lock either way; the
	// crossword and timeline allow retrying until correct.
	LockOnIncorrect() bool
}

// DraftRestorer is an optional Variant extension for games whose saved draft
// must be rebuilt through a model before resuming. The crossword merges the
// draft with confirmed words on its letter grid so crossings stay consistent.
type DraftRestorer interface {
	RestoreDraft(confirmed, draft map[string]string) map[string]string
}

type variant struct {
	game            domain.GameID
	pool            []domain.Item
	batch           bool
	attemptCap      int
	lockOnIncorrect bool
}

func (v variant) Game() domain.GameID   { return v.game }
func (v variant) Pool() []domain.Item   { return v.pool }
func (v variant) Batch() bool           { return v.batch }
func (v variant) AttemptCap() int       { return v.attemptCap }
func (v variant) LockOnIncorrect() bool { return v.lockOnIncorrect }

// NewMatchingVariant: all pairs are submitted as one batch and every item is
// resolved by that single round-trip.
func NewMatchingVariant(pool []domain.Item) Variant {
	return variant{game: domain.GameMatching, pool: pool, batch: true, lockOnIncorrect: true}
}

// NewTimelineVariant: the whole ordering is a single item, retried up to
// three attempts before forced finalization.
func NewTimelineVariant(pool []domain.Item) Variant {
	return variant{game: domain.GameTimeline, pool: pool, attemptCap: 3}
}

// NewCrosswordVariant: one item per clue, resubmittable until correct.
func NewCrosswordVariant(pool []domain.Item) Variant {
	return variant{game: domain.GameCrossword, pool: pool}
}

// NewBluffVariant: one boolean verdict per statement, single-shot.
func NewBluffVariant(pool []domain.Item) Variant {
	return variant{game: domain.GameBluff, pool: pool, lockOnIncorrect: true}
}
