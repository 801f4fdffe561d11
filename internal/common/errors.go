// Package common defines shared constants and sentinel errors used across
// the gymkeeper client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Returned by operations that need a verified session.
	ErrNotLoggedIn = errors.New("not logged in")
)
