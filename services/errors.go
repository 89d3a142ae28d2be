package services

import (
	"errors"
	"fmt"
)

var (
	// ErrPlanNotFound is returned when no transfer plan exists for a code
	ErrPlanNotFound = errors.New("plan not found")

	// ErrInvalidPlanCode is returned for codes that cannot be a plan code
	// (wrong length or characters), distinct from a well-formed code that
	// simply does not exist
	ErrInvalidPlanCode = errors.New("invalid plan code")
)

// ValidationError reports a missing or blank required field by name so the
// caller can correct the request.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Missing required field: %s", e.Field)
}
