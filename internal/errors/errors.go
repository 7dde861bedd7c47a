package errors

import "errors"

// Coordinator errors.
var (
	ErrUnknownEntity     = errors.New("unknown entity")
	ErrRemoteNotReady    = errors.New("remote store is not connected")
	ErrInvalidMode       = errors.New("invalid storage mode")
	ErrCredentialsNeeded = errors.New("remote credentials are not configured")
)

// Remote client errors.
var (
	ErrNotAuthenticated = errors.New("remote client is not authenticated")
	ErrRemoteRequest    = errors.New("remote request failed")
	ErrRemoteResponse   = errors.New("unexpected remote response")
)
