package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"skyrent-backend/internal/domain"
	"skyrent-backend/internal/utils"
)

type RentalService interface {
	QuoteRental(ctx context.Context, hourlyRate, estimatedHours decimal.Decimal) (utils.PricingBreakdown, error)
	RequestRental(ctx context.Context, req domain.RentalRequest) (*domain.Rental, error)
	ApproveRental(ctx context.Context, rentalID string) (*domain.Rental, error)
	DeclineRental(ctx context.Context, rentalID, reason string) (*domain.Rental, error)
	MarkRentalPaid(ctx context.Context, rentalID string) (*domain.Rental, error)
	ActivateRental(ctx context.Context, rentalID string) (*domain.Rental, error)
	CompleteRental(ctx context.Context, rentalID string, actualHours *decimal.Decimal) (*domain.Rental, error)
	UpdateRental(ctx context.Context, rentalID string, patch domain.RentalPatch) (*domain.Rental, error)
	GetRental(ctx context.Context, rentalID string) (*domain.Rental, error)
	ListOwnerRentals(ctx context.Context, ownerID string, status domain.RentalStatus) ([]domain.Rental, error)
	ListRenterRentals(ctx context.Context, renterID string, status domain.RentalStatus) ([]domain.Rental, error)
	// VerifyRentalPricing returns the first stored amount that no longer matches a
	// fresh computation, or "" when the rental is consistent.
	VerifyRentalPricing(ctx context.Context, rentalID string) (string, error)

	// Background jobs
	ExpireStaleRequests(ctx context.Context, asOf time.Time) (int, error)
	ListAwaitingPayout(ctx context.Context) ([]domain.Rental, error)
}

// Rental notification events
const (
	EventRentalRequested = "requested"
	EventRentalApproved  = "approved"
	EventRentalDeclined  = "declined"
	EventRentalPaid      = "paid"
	EventRentalActivated = "activated"
	EventRentalCompleted = "completed"
	EventPayoutCompleted = "payout_completed"
)

type EmailService interface {
	SendRentalStatusNotification(ctx context.Context, rental *domain.Rental, event string) error
	SendPayoutReport(ctx context.Context, rentals []domain.Rental) error
}
