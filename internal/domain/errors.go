package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrChoicePending   = errors.New("destination choice already pending")
	ErrNoPendingChoice = errors.New("no destination choice pending")
	ErrUnknownRole     = errors.New("unknown team role")
	ErrTeamUnresolved  = errors.New("team not resolved for role")
	ErrSubmitInFlight  = errors.New("submission already in flight")
	ErrTradeIncomplete = errors.New("trade not ready to submit")
	ErrGradeRejected   = errors.New("grade rejected")
	ErrLockHeld        = errors.New("lock already held")
)
