package form

import "errors"

var (
	ErrUnknownField   = errors.New("unknown field")
	ErrLinkIndex      = errors.New("link index out of range")
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	ErrClosed         = errors.New("form is closed")
)
