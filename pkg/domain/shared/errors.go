// Package shared provides shared domain types and utilities.
package shared

import (
	"errors"
)

// Domain errors.
var (
	// ErrNotFound indicates a record does not exist. For authorization
	// purposes an absent record is equivalent to an explicit deny.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid caller-supplied input.
	ErrValidation = errors.New("validation error")

	// ErrMalformed indicates stored data that failed structural validation,
	// such as a custom role permission blob that does not match the schema.
	ErrMalformed = errors.New("malformed data")

	// ErrUnavailable indicates a backing store could not be reached.
	ErrUnavailable = errors.New("store unavailable")

	// ErrForbidden indicates an authenticated caller lacks access.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized indicates a caller could not be authenticated.
	ErrUnauthorized = errors.New("unauthorized")
)

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsMalformed checks if the error is a malformed data error.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}

// IsUnavailable checks if the error is a store availability error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
