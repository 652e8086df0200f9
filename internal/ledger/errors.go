package ledger

import (
	"errors"
	"fmt"
)

// ErrWrongState is wrapped by every guard rejection of the session state
// machine. Callers that follow the soft-fail policy check for it with errors.Is.
var ErrWrongState = errors.New("wrong session state")

var (
	ErrNoSession         = fmt.Errorf("%w: no session today", ErrWrongState)
	ErrSessionInProgress = fmt.Errorf("%w: a session is already in progress", ErrWrongState)
	ErrSessionEnded      = fmt.Errorf("%w: the current session has ended", ErrWrongState)
	ErrAlreadyPaused     = fmt.Errorf("%w: the session is already paused", ErrWrongState)
	ErrNotPaused         = fmt.Errorf("%w: the session is not paused", ErrWrongState)
)

var (
	ErrInvalidGoal  = errors.New("goal must be positive")
	ErrDayNotFound  = errors.New("day not found")
	ErrSessionIndex = errors.New("session index out of range")
)
