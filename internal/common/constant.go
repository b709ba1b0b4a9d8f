// Package common contains shared constants and sentinel errors used across
// EduBD client components.
package common

// TokenStorageKey is the metadata key under which the bearer token is
// persisted between runs.
const TokenStorageKey = "access_token"

// RequestIDHeaderName carries a per-request correlation id to the gateway.
const RequestIDHeaderName = "X-Request-ID"

// RootPath is the application root every redirect falls back to.
const RootPath = "/"
