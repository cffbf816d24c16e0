package client

import (
	"errors"
	"net/http"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrRateLimited  = errors.New("rate limited")
	ErrServer       = errors.New("server error")
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnexpected   = errors.New("unexpected response")
)

// Kind classifies an API failure.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindRateLimited  Kind = "rate_limited"
	KindServer       Kind = "server"
	KindNetwork      Kind = "network"
	KindUnknown      Kind = "unknown"
)

// APIError is a normalized Auth API failure. Message is always fit to show a
// user: the server's own message when it sent one, otherwise a fixed default
// for the kind. Transport detail is kept in Err only.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	switch e.Kind {
	case KindValidation:
		return ErrValidation
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindRateLimited:
		return ErrRateLimited
	case KindServer:
		return ErrServer
	case KindNetwork:
		return ErrUnavailable
	default:
		return ErrUnexpected
	}
}

var defaultMessages = map[Kind]string{
	KindValidation:   "Please check the entered data and try again.",
	KindUnauthorized: "Invalid email or password.",
	KindForbidden:    "You are not allowed to perform this action.",
	KindNotFound:     "Account not found.",
	KindConflict:     "An account with this email already exists.",
	KindRateLimited:  "Too many attempts. Please wait a moment and try again.",
	KindServer:       "Server error. Please try again later.",
	KindNetwork:      "Network error. Please check your connection and try again.",
	KindUnknown:      "Something went wrong. Please try again.",
}

// kindForStatus maps an HTTP status to a Kind.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

func newAPIError(kind Kind, status int, serverMessage string, cause error) *APIError {
	msg := serverMessage
	if msg == "" {
		msg = defaultMessages[kind]
	}
	return &APIError{Kind: kind, StatusCode: status, Message: msg, Err: cause}
}
