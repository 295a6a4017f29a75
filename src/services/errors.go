package services

import (
	"context"
	"errors"
	"fmt"

	"inventory/src/repositories"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid lifecycle transition")
	ErrAlreadyAssigned     = errors.New("asset already has an active assignment")
	ErrNoActiveAssignment  = errors.New("asset has no active assignment")
	ErrInvalidAssignee     = errors.New("invalid assignee")
	ErrInvalidCost         = errors.New("invalid repair cost")
	ErrInvalidPrice        = errors.New("invalid purchase price")
	ErrInvalidLabel        = errors.New("asset label must not be empty")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConflict            = errors.New("already exists")
	ErrConcurrencyConflict = errors.New("concurrent modification, retry the operation")
	ErrPersistence         = errors.New("persistence failure")
	ErrForbidden           = errors.New("forbidden")
)

// Specific transition errors. errors.Is matches both the specific error and
// ErrInvalidTransition.
var (
	ErrAssetRetired        = fmt.Errorf("%w: asset is retired", ErrInvalidTransition)
	ErrAssetAlreadyRetired = fmt.Errorf("%w: asset is already retired", ErrInvalidTransition)
	ErrAlreadyInRepair     = fmt.Errorf("%w: asset is already in repair", ErrInvalidTransition)
	ErrAssetInRepair       = fmt.Errorf("%w: asset is in repair", ErrInvalidTransition)
	ErrAssetNotInRepair    = fmt.Errorf("%w: asset is not in repair", ErrInvalidTransition)
)

// storageError maps repository errors onto service errors. Errors that already
// carry a service meaning pass through unchanged.
func storageError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, repositories.ErrSerialization):
		return fmt.Errorf("%s: %w", what, ErrConcurrencyConflict)
	case errors.Is(err, repositories.ErrConflict):
		return fmt.Errorf("%s: %w", what, ErrConflict)
	case isServiceError(err):
		return err
	default:
		return fmt.Errorf("%s: %w: %v", what, ErrPersistence, err)
	}
}

func isServiceError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidTransition, ErrAlreadyAssigned, ErrNoActiveAssignment,
		ErrInvalidAssignee, ErrInvalidCost, ErrInvalidPrice, ErrInvalidLabel, ErrInvalidInput,
		ErrConflict, ErrConcurrencyConflict, ErrPersistence, ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
