package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrInvalidRequest = errors.New("invalid prediction request")
	ErrUnknownChart   = errors.New("unknown chart")
)
