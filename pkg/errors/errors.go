package livepoll_errors

import "errors"

// Common errors
var (
	ErrNotFound          = errors.New("not found")
	ErrPollNotLive       = errors.New("poll is not live")
	ErrDuplicateResponse = errors.New("response already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrStorageFailure    = errors.New("storage failure")
)
