package errors

import "errors"

var (
	ErrAgendaNotFound     = errors.New("agenda not found")
	ErrVoteNotFound       = errors.New("vote not found")
	ErrAgendaVoteNotFound = errors.New("agenda vote not found")
	ErrNotAgendaEditor    = errors.New("user is not an editor of this agenda")
	ErrSuperuserRequired  = errors.New("superuser privileges required")
	ErrActionRequired     = errors.New("POST must have an 'action' attribute")
	ErrInvalidAgendaInput = errors.New("invalid agenda input")
	ErrAgendaVoteConflict = errors.New("agenda vote already exists for this pair")
)
