// Package common contains shared constants and sentinel errors used across
// authkeeper components.
package common

// SessionStoreKey is the single Session Store key that holds the serialized
// session record.
const SessionStoreKey = "user_session"

// RequestIDHeaderName is the HTTP header carrying the per-request correlation ID
// on outbound Auth API calls.
const RequestIDHeaderName = "X-Request-ID"
