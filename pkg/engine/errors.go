package engine

import "errors"

// Rechazos de validación: se devuelven al remitente y nunca modifican el estado
var (
	ErrWrongPhase           = errors.New("action not accepted in current phase")
	ErrPrefixMismatch       = errors.New("answer does not start with the required character")
	ErrEmptyAnswer          = errors.New("answer is empty")
	ErrInvalidOption        = errors.New("invalid option")
	ErrInvalidTarget        = errors.New("invalid target")
	ErrSelfVote             = errors.New("cannot vote for yourself")
	ErrOverBudget           = errors.New("allocation exceeds budget")
	ErrIncompleteAllocation = errors.New("allocation does not use the full budget")
	ErrNotPermitted         = errors.New("participant not permitted to perform this action")
	ErrUnknownParticipant   = errors.New("unknown participant")
	ErrNotAuthority         = errors.New("caller is not the state authority")
	ErrUnsupportedAction    = errors.New("action not supported by this game")
	ErrUnknownVariant       = errors.New("unknown game variant")
	ErrNegativeDuration     = errors.New("negative duration")
)
