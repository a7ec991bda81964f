// Package apperr holds sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")

	ErrAccountExists    = errors.New("account already set up")
	ErrAccountMissing   = errors.New("account not set up")
	ErrPasswordMismatch = errors.New("passwords do not match")
)
