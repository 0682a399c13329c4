package request

import "errors"

var (
	ErrNotFound     = errors.New("request not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrChatExpired  = errors.New("chat expired")
	ErrLinkExpired  = errors.New("link expired")
	// ErrConflict is returned when an optimistic update loses the race more
	// times than the retry budget allows.
	ErrConflict = errors.New("concurrent update conflict")
)
