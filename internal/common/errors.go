package common

import "errors"

var (
	ErrorValidation = errors.New("validation error")

	// ErrInvalidSessionRecord is returned when a persisted session cannot be
	// decoded or lacks its user or issue time.
	ErrInvalidSessionRecord = errors.New("invalid session record")
)
