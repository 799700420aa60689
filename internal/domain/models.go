package domain

import "time"

// GameID identifies one of the four mini-games a player can attempt.
type GameID string

const (
	GameMatching  GameID = "matching"
	GameTimeline  GameID = "timeline"
	GameCrossword GameID = "crossword"
	GameBluff     GameID = "bluff"
)

// Level returns the numeric level used by the scores table and leaderboard.
func (g GameID) Level() int {
	switch g {
	case GameMatching:
		return 1
	case GameTimeline:
		return 2
	case GameCrossword:
		return 3
	case GameBluff:
		return 4
	}
	return 0
}

// GameForLevel is the inverse of GameID.Level.
func GameForLevel(level int) (GameID, bool) {
	switch level {
	case 1:
		return GameMatching, true
	case 2:
		return GameTimeline, true
	case 3:
		return GameCrossword, true
	case 4:
		return GameBluff, true
	}
	return "", false
}

// PointsPerItem is the server-side scoring rule: the timeline awards its
// fixed 50 points for the single ordering item, every other game awards 10
// per correct item.
func (g GameID) PointsPerItem() int {
	if g == GameTimeline {
		return 50
	}
	return 10
}

// SingleShot reports whether an item is resolved by its first verdict even
// when incorrect. Matching and bluff are single-shot; the timeline and
// crossword allow retrying until correct (or until the attempt cap).
func (g GameID) SingleShot() bool {
	return g == GameMatching || g == GameBluff
}

// AnswerShape describes what kind of value an item expects.
type AnswerShape int

const (
	ShapePairedID AnswerShape = iota // id of the matched counterpart
	ShapeOrdering                    // full proposed ordering, comma-joined
	ShapeWord                        // assembled string from grid cells
	ShapeBool                        // "true" or "false"
)

// Item is the unit of play: immutable, defined at build time.
type Item struct {
	ID     string      `json:"id"`
	Prompt string      `json:"prompt"`
	Shape  AnswerShape `json:"-"`
}

// AnswerRecord is one resolved item. Correctness is authoritative (from the
// judge), never computed locally for scoring purposes. Records are created the
// moment a submission round-trips successfully and never mutated afterward.
type AnswerRecord struct {
	ItemID     string    `json:"itemId"`
	Submitted  string    `json:"submitted"`
	Correct    bool      `json:"correct"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// Phase is the session lifecycle. Transitions only move forward.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseInProgress
	PhaseFinalizing
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseInProgress:
		return "inProgress"
	case PhaseFinalizing:
		return "finalizing"
	case PhaseCompleted:
		return "completed"
	}
	return "unknown"
}

// MarshalJSON renders the phase name rather than its ordinal.
func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// SubmitResult is the judge's verdict on a single item, carrying the updated
// authoritative running totals for the session.
type SubmitResult struct {
	ItemID       string `json:"itemId"`
	Correct      bool   `json:"correct"`
	Score        int    `json:"score"`
	CorrectCount int    `json:"correctCount"`
	TotalCount   int    `json:"totalCount"`
}

// BatchResult is the judge's verdict on a full answer set submitted at once.
type BatchResult struct {
	Results      map[string]bool `json:"results"`
	Score        int             `json:"score"`
	CorrectCount int             `json:"correctCount"`
	TotalCount   int             `json:"totalCount"`
}

// FinalResult is the terminal score of a finished session.
type FinalResult struct {
	Score        int       `json:"score"`
	CorrectCount int       `json:"correctCount"`
	TotalCount   int       `json:"totalCount"`
	Perfect      bool      `json:"perfect"`
	Attempts     int       `json:"attempts"`
	CompletedAt  time.Time `json:"completedAt"`
}

// Player is the authenticated identity all judge calls are keyed by.
type Player struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LeaderboardEntry is one row of the scoreboard: finalized scores plus any
// in-progress points for levels the player has not finished yet.
type LeaderboardEntry struct {
	UserID          int64  `json:"userId"`
	DisplayName     string `json:"displayName"`
	TotalScore      int    `json:"totalScore"`
	CompletedLevels int    `json:"completedLevels"`
}

// Leaderboard is the ordered scoreboard across all players.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
