package domain

import "errors"

var (
	// ErrNotFound is returned when a referenced user, module, resource, quiz or payload does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates a malformed request: unknown question ids, bad option indexes, blank names.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState indicates the stored data cannot serve the request (e.g. a quiz without questions).
	ErrInvalidState = errors.New("invalid state")
	// ErrUnauthorized is returned for missing or rejected access tokens.
	ErrUnauthorized = errors.New("unauthorized")
)
