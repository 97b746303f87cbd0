package domain

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidDateRange  = errors.New("end date must not be before start date")
	ErrInvalidHours      = errors.New("hours must be greater than zero")
	ErrInvalidTransition = errors.New("invalid rental status transition")
	ErrNotFound          = errors.New("rental not found")
	ErrOverflow          = errors.New("amount exceeds representable range")
	// ErrVersionConflict is returned by repositories when the stored row changed
	// between read and write.
	ErrVersionConflict = errors.New("rental was modified concurrently")
)

// IsValidationError reports whether err is a caller input problem.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidHours) ||
		errors.Is(err, ErrOverflow)
}
