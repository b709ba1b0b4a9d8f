// Package common defines shared constants and sentinel errors used across
// client layers of EduBD. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Validation errors raised before any request is sent.
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyField       = errors.New("required field is empty")

	// Admin-only errors.
	ErrSelfDelete = errors.New("cannot delete the current user")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
)
