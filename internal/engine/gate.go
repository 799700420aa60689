package engine

import (
	"context"

	"github.com/aparna-hs/literally-invented/internal/domain"
)

// Verdict is the outcome of a play-permission check. Unknown is deliberately
// distinct from Allowed: when the authority cannot be reached the caller
// decides policy rather than the check silently defaulting to permissive.
type Verdict int

const (
	VerdictAllowed Verdict = iota
	VerdictDenied
	VerdictUnknown
)

func (v Verdict) String() string {
	switch v {
	case VerdictAllowed:
		return "allowed"
	case VerdictDenied:
		return "denied"
	case VerdictUnknown:
		return "unknown"
	}
	return "invalid"
}

// PlayDecision carries the verdict, a human-readable reason for denials, and
// the existing finalized result when one exists.
type PlayDecision struct {
	Verdict  Verdict
	Reason   string
	Existing *domain.FinalResult
}

// CanPlay checks whether a player may (re)enter a mini-game. Matching locks
// after its single submission; the timeline locks once its attempt budget is
// spent; any finalized game is terminal.
func CanPlay(ctx context.Context, judge Judge, playerID int64, v Variant) PlayDecision {
	if playerID == 0 {
		return PlayDecision{Verdict: VerdictDenied, Reason: "not authenticated"}
	}

	final, err := judge.FinalizedScore(ctx, playerID, v.Game())
	if err != nil {
		return PlayDecision{Verdict: VerdictUnknown, Reason: "finalized score unavailable: " + err.Error()}
	}
	if final != nil {
		return PlayDecision{
			Verdict:  VerdictDenied,
			Reason:   "level completed - no replays allowed",
			Existing: final,
		}
	}

	if limit := v.AttemptCap(); limit > 0 {
		progress, err := judge.PartialProgress(ctx, playerID, v.Game())
		if err != nil {
			return PlayDecision{Verdict: VerdictUnknown, Reason: "progress unavailable: " + err.Error()}
		}
		if progress.Attempts >= limit {
			return PlayDecision{Verdict: VerdictDenied, Reason: "maximum attempts used"}
		}
	}

	return PlayDecision{Verdict: VerdictAllowed}
}
