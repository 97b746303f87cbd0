package repository

import (
	"context"
	"time"

	"skyrent-backend/internal/domain"
)

// RentalRepository persists rentals. Update must be an atomic compare-and-set on
// Version: it fails with domain.ErrVersionConflict when the stored version differs
// from rental.Version, and on success increments rental.Version.
// Only lifecycle fields are written by Update; pricing and dates are fixed at Create.
type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id string) (*domain.Rental, error)
	Update(ctx context.Context, rental *domain.Rental) error
	// An empty status lists every status.
	ListByOwner(ctx context.Context, ownerID string, status domain.RentalStatus) ([]domain.Rental, error)
	ListByRenter(ctx context.Context, renterID string, status domain.RentalStatus) ([]domain.Rental, error)
	ListPendingStartingBefore(ctx context.Context, date time.Time) ([]domain.Rental, error)
	ListAwaitingPayout(ctx context.Context) ([]domain.Rental, error)
}
