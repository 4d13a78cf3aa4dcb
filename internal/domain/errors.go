package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("permission denied")

	// ErrOrderCollision indicates two chapters in the same project were
	// observed with the same order value outside a transaction. Callers
	// retry a bounded number of times before surfacing a 409.
	ErrOrderCollision = errors.New("concurrent order collision")

	// ErrInvalidPosition indicates an ordering operation was asked to
	// place a chapter outside [0, N].
	ErrInvalidPosition = errors.New("position out of range")

	// ErrNotInProject indicates a chapter id that exists but belongs to
	// a different project than the one being mutated.
	ErrNotInProject = errors.New("chapter not in project")

	// ErrUnsupportedFormat indicates an import or export format this
	// system does not handle.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrIO wraps filesystem and decoder failures from the parser. The
	// original error is logged; only a user-safe message is surfaced.
	ErrIO = errors.New("io failure")
)

// ConflictError represents a resource conflict with details about the
// existing resource.
type ConflictError struct {
	Message      string
	ResourceType string // chapter, character, document, project
	ResourceID   string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
