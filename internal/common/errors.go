// Package common defines shared constants, sentinel errors and small helpers
// used across the accountkeeper server and client. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound        = errors.New("not found")
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// Service-level errors (generic/internal flow control).
	ErrUnavailable = errors.New("service unavailable")

	// Auth errors (invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")

	// One-time token lifecycle errors.
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")

	// Entitlement errors.
	ErrUnknownPlan = errors.New("unknown plan")
)
