package http

import (
	"time"

	"github.com/shopspring/decimal"

	"skyrent-backend/internal/domain"
	"skyrent-backend/internal/utils"
)

// Amounts, rates and hours travel as decimal strings with two fractional digits.

type QuoteRequest struct {
	HourlyRate     decimal.Decimal `json:"hourlyRate"`
	EstimatedHours decimal.Decimal `json:"estimatedHours"`
}

type CreateRentalRequest struct {
	AircraftID     string          `json:"aircraftId"`
	OwnerID        string          `json:"ownerId"`
	RenterID       string          `json:"renterId"`
	HourlyRate     decimal.Decimal `json:"hourlyRate"`
	EstimatedHours decimal.Decimal `json:"estimatedHours"`
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate"`
}

type UpdateRentalRequest struct {
	ActualHours     *decimal.Decimal `json:"actualHours"`
	PayoutCompleted *bool            `json:"payoutCompleted"`
}

type DeclineRentalRequest struct {
	Reason string `json:"reason"`
}

type CompleteRentalRequest struct {
	ActualHours *decimal.Decimal `json:"actualHours"`
}

type PricingResponse struct {
	HourlyRate        string `json:"hourlyRate"`
	EstimatedHours    string `json:"estimatedHours"`
	BaseCost          string `json:"baseCost"`
	SalesTax          string `json:"salesTax"`
	PlatformFeeRenter string `json:"platformFeeRenter"`
	PlatformFeeOwner  string `json:"platformFeeOwner"`
	Subtotal          string `json:"subtotal"`
	ProcessingFee     string `json:"processingFee"`
	TotalCostRenter   string `json:"totalCostRenter"`
	OwnerPayout       string `json:"ownerPayout"`
}

type RentalResponse struct {
	ID                 string  `json:"id"`
	AircraftID         string  `json:"aircraftId"`
	OwnerID            string  `json:"ownerId"`
	RenterID           string  `json:"renterId"`
	StartDate          string  `json:"startDate"`
	EndDate            string  `json:"endDate"`
	HourlyRate         string  `json:"hourlyRate"`
	EstimatedHours     string  `json:"estimatedHours"`
	BaseCost           string  `json:"baseCost"`
	SalesTax           string  `json:"salesTax"`
	PlatformFeeRenter  string  `json:"platformFeeRenter"`
	PlatformFeeOwner   string  `json:"platformFeeOwner"`
	ProcessingFee      string  `json:"processingFee"`
	TotalCostRenter    string  `json:"totalCostRenter"`
	OwnerPayout        string  `json:"ownerPayout"`
	Status             string  `json:"status"`
	IsPaid             bool    `json:"isPaid"`
	PayoutCompleted    bool    `json:"payoutCompleted"`
	ActualHours        *string `json:"actualHours"`
	CancellationReason string  `json:"cancellationReason,omitempty"`
	Version            int32   `json:"version"`
	CreatedAt          string  `json:"createdAt"`
	UpdatedAt          string  `json:"updatedAt"`
}

type VerifyResponse struct {
	Consistent bool   `json:"consistent"`
	Mismatch   string `json:"mismatch,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func MapBreakdownToResponse(b utils.PricingBreakdown) PricingResponse {
	return PricingResponse{
		HourlyRate:        utils.FormatMoney(b.HourlyRate),
		EstimatedHours:    utils.FormatMoney(b.EstimatedHours),
		BaseCost:          utils.FormatMoney(b.BaseCost),
		SalesTax:          utils.FormatMoney(b.SalesTax),
		PlatformFeeRenter: utils.FormatMoney(b.PlatformFeeRenter),
		PlatformFeeOwner:  utils.FormatMoney(b.PlatformFeeOwner),
		Subtotal:          utils.FormatMoney(b.Subtotal),
		ProcessingFee:     utils.FormatMoney(b.ProcessingFee),
		TotalCostRenter:   utils.FormatMoney(b.TotalCostRenter),
		OwnerPayout:       utils.FormatMoney(b.OwnerPayout),
	}
}

func MapDomainRentalToResponse(rt *domain.Rental) RentalResponse {
	res := RentalResponse{
		ID:                 rt.ID,
		AircraftID:         rt.AircraftID,
		OwnerID:            rt.OwnerID,
		RenterID:           rt.RenterID,
		StartDate:          rt.StartDate.Format(domain.DateLayout),
		EndDate:            rt.EndDate.Format(domain.DateLayout),
		HourlyRate:         utils.FormatMoney(rt.HourlyRate),
		EstimatedHours:     utils.FormatMoney(rt.EstimatedHours),
		BaseCost:           utils.FormatMoney(rt.BaseCost),
		SalesTax:           utils.FormatMoney(rt.SalesTax),
		PlatformFeeRenter:  utils.FormatMoney(rt.PlatformFeeRenter),
		PlatformFeeOwner:   utils.FormatMoney(rt.PlatformFeeOwner),
		ProcessingFee:      utils.FormatMoney(rt.ProcessingFee),
		TotalCostRenter:    utils.FormatMoney(rt.TotalCostRenter),
		OwnerPayout:        utils.FormatMoney(rt.OwnerPayout),
		Status:             string(rt.Status),
		IsPaid:             rt.IsPaid,
		PayoutCompleted:    rt.PayoutCompleted,
		CancellationReason: rt.CancellationReason,
		Version:            rt.Version,
		CreatedAt:          rt.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          rt.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if rt.ActualHours != nil {
		h := utils.FormatMoney(*rt.ActualHours)
		res.ActualHours = &h
	}
	return res
}

func MapDomainRentalsToResponse(rentals []domain.Rental) []RentalResponse {
	out := make([]RentalResponse, 0, len(rentals))
	for i := range rentals {
		out = append(out, MapDomainRentalToResponse(&rentals[i]))
	}
	return out
}
