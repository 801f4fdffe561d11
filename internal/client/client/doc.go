// Package client contains client-side building blocks for gymkeeper.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) to talk
//     to the gym backend: VerifyToken, Login, Register, Profile and Ping.
//  2. A concrete REST implementation (see HTTPClient) that stamps every
//     request with a correlation id, attaches bearer credentials and maps
//     HTTP statuses to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying the embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrBadRequest,
// ErrMalformedResponse. Non-2xx answers are returned as *APIError, which
// unwraps to the matching sentinel and keeps the backend's "detail" text.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation/timeouts.
package client
