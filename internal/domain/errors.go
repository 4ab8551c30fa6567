package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrBusy                 = errors.New("a generation is already in progress")
	ErrEmptyPrompt          = errors.New("prompt is required")
	ErrCredentialRequired   = errors.New("api key is required")
	ErrCredentialNotValid   = errors.New("api key has not been validated")
	ErrInvalidOption        = errors.New("invalid generation option")
	ErrUnknownModel         = errors.New("unknown model")
	ErrVideoURINotFound     = errors.New("video URI not found in API response")
	ErrPollAttemptsExceeded = errors.New("operation did not complete within the allowed poll attempts")
	ErrCancelled            = errors.New("generation cancelled")
	ErrNoActiveJob          = errors.New("no active generation")
)
