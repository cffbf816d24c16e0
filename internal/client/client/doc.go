// Package client contains the client-side building blocks that talk to the
// outside world.
//
// # Overview
//
// The package provides:
//  1. The Auth API contract (see the Client interface): Register, Login,
//     RequestOTP, VerifyOTP, ForgotPassword, ResetPassword.
//  2. An HTTP/JSON implementation (see HTTPClient) against
//     <base>/v1/auth/*, stamping each request with an X-Request-ID.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring the
//     SQLite database and applying the embedded goose migrations.
//
// # Error Handling
//
// Every failed call returns an *APIError carrying a Kind, the HTTP status and
// a user-facing Message. HTTP 400/422 map to KindValidation, 401 to
// KindUnauthorized, 403 to KindForbidden, 404 to KindNotFound, 409 to
// KindConflict, 429 to KindRateLimited, 5xx to KindServer; no response at all
// maps to KindNetwork. APIError unwraps to a sentinel, so callers can match
// with errors.Is: ErrValidation, ErrUnauthorized, ErrUnavailable, and so on.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation on top of the configured timeout.
package client
