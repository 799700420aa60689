package domain

import "errors"

var (
	// ErrNotAuthenticated is returned when a game operation is attempted
	// without a player identity. Callers should redirect to login rather
	// than retry.
	ErrNotAuthenticated = errors.New("player not authenticated")
	// ErrInvalidCredentials is returned on a failed username/password lookup.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnknownGame indicates an unrecognized mini-game identifier.
	ErrUnknownGame = errors.New("unknown game")
	// ErrUnknownItem indicates a submitted item ID is not part of the pool.
	ErrUnknownItem = errors.New("item not found in pool")
	// ErrItemLocked is returned when a submission targets an item that was
	// already resolved.
	ErrItemLocked = errors.New("item already locked")
	// ErrSessionCompleted is returned when a submission reaches a session
	// that is already terminal.
	ErrSessionCompleted = errors.New("session already completed")
	// ErrSessionNotInProgress covers submissions during loading or while a
	// finalize call is pending.
	ErrSessionNotInProgress = errors.New("session not in progress")
	// ErrSubmissionInFlight guards against concurrent submissions for the
	// same item.
	ErrSubmissionInFlight = errors.New("submission already in flight for item")
	// ErrAttemptsExhausted is returned when the attempt cap has been used up.
	ErrAttemptsExhausted = errors.New("no attempts remaining")
	// ErrBatchOnly / ErrNotBatch keep the two submission modes apart.
	ErrBatchOnly = errors.New("game accepts only batch submissions")
	ErrNotBatch  = errors.New("game does not accept batch submissions")
)
