package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusApproved  RentalStatus = "approved"
	RentalStatusActive    RentalStatus = "active"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
)

// DateLayout is the calendar date format used for rental start and end dates.
const DateLayout = "2006-01-02"

type Rental struct {
	ID         string    `json:"id"`
	AircraftID string    `json:"aircraft_id"`
	RenterID   string    `json:"renter_id"`
	OwnerID    string    `json:"owner_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	// Snapshot of the listing rate at request time, never a live reference.
	HourlyRate     decimal.Decimal `json:"hourly_rate"`
	EstimatedHours decimal.Decimal `json:"estimated_hours"`

	BaseCost          decimal.Decimal `json:"base_cost"`
	SalesTax          decimal.Decimal `json:"sales_tax"`
	PlatformFeeRenter decimal.Decimal `json:"platform_fee_renter"`
	PlatformFeeOwner  decimal.Decimal `json:"platform_fee_owner"`
	ProcessingFee     decimal.Decimal `json:"processing_fee"`
	TotalCostRenter   decimal.Decimal `json:"total_cost_renter"`
	OwnerPayout       decimal.Decimal `json:"owner_payout"`

	Status             RentalStatus     `json:"status"`
	IsPaid             bool             `json:"is_paid"`
	PayoutCompleted    bool             `json:"payout_completed"`
	ActualHours        *decimal.Decimal `json:"actual_hours,omitempty"`
	CancellationReason string           `json:"cancellation_reason,omitempty"`
	Version            int32            `json:"version"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// IsTerminal reports whether the rental reached completed or cancelled.
func (r *Rental) IsTerminal() bool {
	return r.Status == RentalStatusCompleted || r.Status == RentalStatusCancelled
}

// CanTransition reports whether moving the rental to the given status is legal
// from its current state. Payment is not a status, see CanMarkPaid.
func (r *Rental) CanTransition(to RentalStatus) bool {
	switch to {
	case RentalStatusApproved:
		return r.Status == RentalStatusPending
	case RentalStatusCancelled:
		return r.Status == RentalStatusPending
	case RentalStatusActive:
		return r.Status == RentalStatusApproved && r.IsPaid
	case RentalStatusCompleted:
		return r.Status == RentalStatusActive
	default:
		// nothing ever re-enters pending
		return false
	}
}

// CanMarkPaid reports whether payment may be recorded against the rental.
func (r *Rental) CanMarkPaid() bool {
	return r.Status == RentalStatusApproved && !r.IsPaid
}

// ParseStatus converts a wire value into a RentalStatus.
func ParseStatus(s string) (RentalStatus, bool) {
	switch st := RentalStatus(s); st {
	case RentalStatusPending, RentalStatusApproved, RentalStatusActive, RentalStatusCompleted, RentalStatusCancelled:
		return st, true
	}
	return "", false
}

// RentalRequest is a renter's booking request. HourlyRate is the listing's rate
// at the moment of the request.
type RentalRequest struct {
	AircraftID     string
	OwnerID        string
	RenterID       string
	HourlyRate     decimal.Decimal
	EstimatedHours decimal.Decimal
	StartDate      time.Time
	EndDate        time.Time
}

// RentalPatch carries the fields that may still change after booking.
// Nil members are left untouched.
type RentalPatch struct {
	ActualHours     *decimal.Decimal
	PayoutCompleted *bool
}
