package spring

import (
	"errors"
	"fmt"
)

var (
	// ErrPathNotFound is returned when a path ID is unknown or already deleted.
	ErrPathNotFound = errors.New("path not found")

	// ErrNoLayers is returned when a manager is constructed without layers.
	ErrNoLayers = errors.New("at least one layer is required")
)

// ErrUnknownPathType indicates a request for a movement class the manager
// has no layer for.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrUnknownPathType struct {
	PathType uint8
	cause    error
}

func (e *ErrUnknownPathType) Error() string {
	return fmt.Sprintf("unknown path type: %d", e.PathType)
}

func (e *ErrUnknownPathType) Unwrap() error { return e.cause }
