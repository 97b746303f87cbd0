package utils

import (
	"fmt"

	"github.com/shopspring/decimal"

	"skyrent-backend/internal/domain"
)

// moneyPlaces is the number of fractional digits kept on every monetary field
const moneyPlaces = 2

// MaxAmount is the largest value a NUMERIC(12,2) column can hold
var MaxAmount = decimal.RequireFromString("9999999999.99")

// FeePolicy holds the rates applied to a rental. The two platform fee rates are
// configured independently even though they are currently equal.
type FeePolicy struct {
	SalesTaxRate          decimal.Decimal
	RenterPlatformFeeRate decimal.Decimal
	OwnerPlatformFeeRate  decimal.Decimal
	ProcessingFeeRate     decimal.Decimal
}

// DefaultFeePolicy returns the marketplace's standard rates
func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		SalesTaxRate:          decimal.RequireFromString("0.0825"),
		RenterPlatformFeeRate: decimal.RequireFromString("0.075"),
		OwnerPlatformFeeRate:  decimal.RequireFromString("0.075"),
		ProcessingFeeRate:     decimal.RequireFromString("0.03"),
	}
}

// Validate rejects negative rates
func (p FeePolicy) Validate() error {
	rates := []struct {
		name string
		rate decimal.Decimal
	}{
		{"sales tax rate", p.SalesTaxRate},
		{"renter platform fee rate", p.RenterPlatformFeeRate},
		{"owner platform fee rate", p.OwnerPlatformFeeRate},
		{"processing fee rate", p.ProcessingFeeRate},
	}
	for _, r := range rates {
		if r.rate.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, r.name)
		}
	}
	return nil
}

// PricingBreakdown is the full cost split of a rental together with the inputs
// that produced it
type PricingBreakdown struct {
	HourlyRate     decimal.Decimal
	EstimatedHours decimal.Decimal

	BaseCost          decimal.Decimal
	SalesTax          decimal.Decimal
	PlatformFeeRenter decimal.Decimal
	PlatformFeeOwner  decimal.Decimal
	Subtotal          decimal.Decimal
	ProcessingFee     decimal.Decimal
	TotalCostRenter   decimal.Decimal
	OwnerPayout       decimal.Decimal
}

// roundMoney rounds half-up to cents. decimal.Round rounds half away from zero,
// which is half-up for the non-negative amounts handled here.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// ComputeRentalPricing calculates what the renter owes and what the owner receives.
// Intermediate values keep full precision; rounding happens once at the end.
func ComputeRentalPricing(hourlyRate, estimatedHours decimal.Decimal, policy FeePolicy) (PricingBreakdown, error) {
	if !hourlyRate.IsPositive() {
		return PricingBreakdown{}, fmt.Errorf("%w: hourly rate must be greater than zero", domain.ErrInvalidInput)
	}
	if !estimatedHours.IsPositive() {
		return PricingBreakdown{}, fmt.Errorf("%w: estimated hours must be greater than zero", domain.ErrInvalidInput)
	}
	if err := policy.Validate(); err != nil {
		return PricingBreakdown{}, err
	}

	// Full precision pass
	baseCost := hourlyRate.Mul(estimatedHours)
	salesTax := baseCost.Mul(policy.SalesTaxRate)
	platformFeeRenter := baseCost.Mul(policy.RenterPlatformFeeRate)
	platformFeeOwner := baseCost.Mul(policy.OwnerPlatformFeeRate)
	subtotal := baseCost.Add(salesTax).Add(platformFeeRenter)
	processingFee := subtotal.Mul(policy.ProcessingFeeRate)

	// Rounding pass. Aggregates are derived from the rounded parts so the
	// remainder lands in the last-computed term and the sums hold to the cent.
	b := PricingBreakdown{
		HourlyRate:        hourlyRate,
		EstimatedHours:    estimatedHours,
		BaseCost:          roundMoney(baseCost),
		SalesTax:          roundMoney(salesTax),
		PlatformFeeRenter: roundMoney(platformFeeRenter),
		PlatformFeeOwner:  roundMoney(platformFeeOwner),
		ProcessingFee:     roundMoney(processingFee),
	}
	b.Subtotal = b.BaseCost.Add(b.SalesTax).Add(b.PlatformFeeRenter)
	b.TotalCostRenter = b.Subtotal.Add(b.ProcessingFee)
	b.OwnerPayout = b.BaseCost.Sub(b.PlatformFeeOwner)

	for _, amount := range b.amounts() {
		if amount.value.GreaterThan(MaxAmount) {
			return PricingBreakdown{}, fmt.Errorf("%w: %s %s", domain.ErrOverflow, amount.name, amount.value.StringFixed(moneyPlaces))
		}
	}

	return b, nil
}

type namedAmount struct {
	name  string
	value decimal.Decimal
}

func (b PricingBreakdown) amounts() []namedAmount {
	return []namedAmount{
		{"base_cost", b.BaseCost},
		{"sales_tax", b.SalesTax},
		{"platform_fee_renter", b.PlatformFeeRenter},
		{"platform_fee_owner", b.PlatformFeeOwner},
		{"subtotal", b.Subtotal},
		{"processing_fee", b.ProcessingFee},
		{"total_cost_renter", b.TotalCostRenter},
		{"owner_payout", b.OwnerPayout},
	}
}

// ApplyTo copies the breakdown's inputs and amounts onto a rental
func (b PricingBreakdown) ApplyTo(rt *domain.Rental) {
	rt.HourlyRate = b.HourlyRate
	rt.EstimatedHours = b.EstimatedHours
	rt.BaseCost = b.BaseCost
	rt.SalesTax = b.SalesTax
	rt.PlatformFeeRenter = b.PlatformFeeRenter
	rt.PlatformFeeOwner = b.PlatformFeeOwner
	rt.ProcessingFee = b.ProcessingFee
	rt.TotalCostRenter = b.TotalCostRenter
	rt.OwnerPayout = b.OwnerPayout
}

// VerifyRentalPricing recomputes a rental's breakdown from its stored inputs.
// It returns the name of the first field that differs, or "" when consistent.
func VerifyRentalPricing(rt *domain.Rental, policy FeePolicy) (string, error) {
	b, err := ComputeRentalPricing(rt.HourlyRate, rt.EstimatedHours, policy)
	if err != nil {
		return "", err
	}

	stored := []namedAmount{
		{"base_cost", rt.BaseCost},
		{"sales_tax", rt.SalesTax},
		{"platform_fee_renter", rt.PlatformFeeRenter},
		{"platform_fee_owner", rt.PlatformFeeOwner},
		{"processing_fee", rt.ProcessingFee},
		{"total_cost_renter", rt.TotalCostRenter},
		{"owner_payout", rt.OwnerPayout},
	}
	expected := map[string]decimal.Decimal{}
	for _, a := range b.amounts() {
		expected[a.name] = a.value
	}
	for _, s := range stored {
		if !s.value.Equal(expected[s.name]) {
			return s.name, nil
		}
	}
	return "", nil
}

// FormatMoney renders an amount with exactly two fractional digits
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(moneyPlaces)
}
