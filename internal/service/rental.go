package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"skyrent-backend/internal/domain"
	"skyrent-backend/internal/logger"
	"skyrent-backend/internal/metrics"
	"skyrent-backend/internal/repository"
	"skyrent-backend/internal/utils"
)

// maxUpdateAttempts bounds the read-guard-write loop on version conflicts
const maxUpdateAttempts = 3

// ExpiredReason is recorded on pending requests cancelled by the expiry job
const ExpiredReason = "expired"

type rentalService struct {
	rentalRepo repository.RentalRepository
	policy     utils.FeePolicy
	emailSvc   EmailService
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Option customises a rental service
type Option func(*rentalService)

// WithClock replaces time.Now, for tests and replays
func WithClock(now func() time.Time) Option {
	return func(s *rentalService) { s.now = now }
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	policy utils.FeePolicy,
	emailSvc EmailService,
	m *metrics.Metrics,
	opts ...Option,
) RentalService {
	s := &rentalService{
		rentalRepo: rentalRepo,
		policy:     policy,
		emailSvc:   emailSvc,
		metrics:    m,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// hasAtMostTwoPlaces guards against values the NUMERIC(x,2) columns would round
func hasAtMostTwoPlaces(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// validatePrecision is shared by quotes and bookings so a quoted breakdown
// can always be booked from its own echoed inputs.
func validatePrecision(hourlyRate, estimatedHours decimal.Decimal) error {
	if !hasAtMostTwoPlaces(estimatedHours) {
		return fmt.Errorf("%w: estimated hours allow at most two decimal places", domain.ErrInvalidHours)
	}
	if !hasAtMostTwoPlaces(hourlyRate) {
		return fmt.Errorf("%w: hourly rate allows at most two decimal places", domain.ErrInvalidInput)
	}
	return nil
}

func (s *rentalService) QuoteRental(ctx context.Context, hourlyRate, estimatedHours decimal.Decimal) (utils.PricingBreakdown, error) {
	if err := validatePrecision(hourlyRate, estimatedHours); err != nil {
		s.countError("quote")
		return utils.PricingBreakdown{}, err
	}
	b, err := utils.ComputeRentalPricing(hourlyRate, estimatedHours, s.policy)
	if err != nil {
		s.countError("quote")
		return utils.PricingBreakdown{}, err
	}
	return b, nil
}

func (s *rentalService) RequestRental(ctx context.Context, req domain.RentalRequest) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.RequestRental", "aircraftID", req.AircraftID, "renterID", req.RenterID)

	rt, err := s.buildRental(req)
	if err != nil {
		s.countError("request")
		logger.ExitMethodWithWarning("rentalService.RequestRental", err, "aircraftID", req.AircraftID)
		return nil, err
	}

	if err := s.rentalRepo.Create(ctx, rt); err != nil {
		s.countError("request")
		logger.ExitMethodWithError("rentalService.RequestRental", err, "rentalID", rt.ID)
		return nil, err
	}

	s.metrics.RentalsRequested.Inc()
	logger.ForRental(rt.ID).Info("Rental requested",
		"aircraft_id", rt.AircraftID,
		"renter_id", rt.RenterID,
		"owner_id", rt.OwnerID,
		"total_cost_renter", utils.FormatMoney(rt.TotalCostRenter),
		"owner_payout", utils.FormatMoney(rt.OwnerPayout))
	s.notify(ctx, rt, EventRentalRequested)

	logger.ExitMethod("rentalService.RequestRental", "rentalID", rt.ID)
	return rt, nil
}

// buildRental validates the request and prices it. The returned rental is
// pending and not yet persisted.
func (s *rentalService) buildRental(req domain.RentalRequest) (*domain.Rental, error) {
	aircraftID := strings.TrimSpace(req.AircraftID)
	ownerID := strings.TrimSpace(req.OwnerID)
	renterID := strings.TrimSpace(req.RenterID)
	if aircraftID == "" || ownerID == "" || renterID == "" {
		return nil, fmt.Errorf("%w: aircraft, owner and renter ids are required", domain.ErrInvalidInput)
	}
	if ownerID == renterID {
		return nil, fmt.Errorf("%w: owner cannot rent their own aircraft", domain.ErrInvalidInput)
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", domain.ErrInvalidInput)
	}
	if err := utils.ValidateDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if !req.EstimatedHours.IsPositive() {
		return nil, fmt.Errorf("%w: estimated hours %s", domain.ErrInvalidHours, req.EstimatedHours)
	}
	if err := validatePrecision(req.HourlyRate, req.EstimatedHours); err != nil {
		return nil, err
	}

	breakdown, err := utils.ComputeRentalPricing(req.HourlyRate, req.EstimatedHours, s.policy)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rt := &domain.Rental{
		ID:         uuid.NewString(),
		AircraftID: aircraftID,
		OwnerID:    ownerID,
		RenterID:   renterID,
		StartDate:  utils.TruncateToDate(req.StartDate),
		EndDate:    utils.TruncateToDate(req.EndDate),
		Status:     domain.RentalStatusPending,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	breakdown.ApplyTo(rt)
	return rt, nil
}

func (s *rentalService) ApproveRental(ctx context.Context, rentalID string) (*domain.Rental, error) {
	return s.transition(ctx, "ApproveRental", rentalID, EventRentalApproved, func(rt *domain.Rental) error {
		if !rt.CanTransition(domain.RentalStatusApproved) {
			return invalidTransition("approve", rt)
		}
		rt.Status = domain.RentalStatusApproved
		return nil
	})
}

func (s *rentalService) DeclineRental(ctx context.Context, rentalID, reason string) (*domain.Rental, error) {
	return s.transition(ctx, "DeclineRental", rentalID, EventRentalDeclined, func(rt *domain.Rental) error {
		if !rt.CanTransition(domain.RentalStatusCancelled) {
			return invalidTransition("decline", rt)
		}
		rt.Status = domain.RentalStatusCancelled
		rt.CancellationReason = strings.TrimSpace(reason)
		return nil
	})
}

func (s *rentalService) MarkRentalPaid(ctx context.Context, rentalID string) (*domain.Rental, error) {
	return s.transition(ctx, "MarkRentalPaid", rentalID, EventRentalPaid, func(rt *domain.Rental) error {
		if !rt.CanMarkPaid() {
			return invalidTransition("mark paid", rt)
		}
		rt.IsPaid = true
		return nil
	})
}

func (s *rentalService) ActivateRental(ctx context.Context, rentalID string) (*domain.Rental, error) {
	return s.transition(ctx, "ActivateRental", rentalID, EventRentalActivated, func(rt *domain.Rental) error {
		if !rt.CanTransition(domain.RentalStatusActive) {
			return invalidTransition("activate", rt)
		}
		rt.Status = domain.RentalStatusActive
		return nil
	})
}

func (s *rentalService) CompleteRental(ctx context.Context, rentalID string, actualHours *decimal.Decimal) (*domain.Rental, error) {
	if actualHours != nil {
		if err := validateActualHours(*actualHours); err != nil {
			s.countError("CompleteRental")
			return nil, err
		}
	}
	return s.transition(ctx, "CompleteRental", rentalID, EventRentalCompleted, func(rt *domain.Rental) error {
		if !rt.CanTransition(domain.RentalStatusCompleted) {
			return invalidTransition("complete", rt)
		}
		rt.Status = domain.RentalStatusCompleted
		if actualHours != nil {
			h := *actualHours
			rt.ActualHours = &h
		}
		return nil
	})
}

// UpdateRental applies a partial update. Only actual hours (active or completed)
// and the payout flag (completed) may change after booking.
func (s *rentalService) UpdateRental(ctx context.Context, rentalID string, patch domain.RentalPatch) (*domain.Rental, error) {
	if patch.ActualHours == nil && patch.PayoutCompleted == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	if patch.ActualHours != nil {
		if err := validateActualHours(*patch.ActualHours); err != nil {
			s.countError("UpdateRental")
			return nil, err
		}
	}

	event := ""
	rt, err := s.transition(ctx, "UpdateRental", rentalID, "", func(rt *domain.Rental) error {
		event = ""
		if patch.ActualHours != nil {
			if rt.Status != domain.RentalStatusActive && rt.Status != domain.RentalStatusCompleted {
				return invalidTransition("record actual hours on", rt)
			}
			h := *patch.ActualHours
			rt.ActualHours = &h
		}
		if patch.PayoutCompleted != nil {
			if rt.Status != domain.RentalStatusCompleted {
				return invalidTransition("record payout on", rt)
			}
			switch {
			case *patch.PayoutCompleted && !rt.PayoutCompleted:
				rt.PayoutCompleted = true
				event = EventPayoutCompleted
			case !*patch.PayoutCompleted && rt.PayoutCompleted:
				return fmt.Errorf("%w: payout of rental %s is already completed", domain.ErrInvalidTransition, rt.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if event != "" {
		s.metrics.Transitions.WithLabelValues(event).Inc()
		s.notify(ctx, rt, event)
	}
	return rt, nil
}

func (s *rentalService) GetRental(ctx context.Context, rentalID string) (*domain.Rental, error) {
	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) ListOwnerRentals(ctx context.Context, ownerID string, status domain.RentalStatus) ([]domain.Rental, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrInvalidInput)
	}
	return s.rentalRepo.ListByOwner(ctx, ownerID, status)
}

func (s *rentalService) ListRenterRentals(ctx context.Context, renterID string, status domain.RentalStatus) ([]domain.Rental, error) {
	if strings.TrimSpace(renterID) == "" {
		return nil, fmt.Errorf("%w: renter id is required", domain.ErrInvalidInput)
	}
	return s.rentalRepo.ListByRenter(ctx, renterID, status)
}

func (s *rentalService) VerifyRentalPricing(ctx context.Context, rentalID string) (string, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return "", err
	}
	field, err := utils.VerifyRentalPricing(rt, s.policy)
	if err != nil {
		return "", err
	}
	if field != "" {
		logger.ForRental(rt.ID).Warn("Stored pricing differs from current policy", "field", field)
	}
	return field, nil
}

func (s *rentalService) ExpireStaleRequests(ctx context.Context, asOf time.Time) (int, error) {
	cutoff := utils.TruncateToDate(asOf)
	stale, err := s.rentalRepo.ListPendingStartingBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	var errs []error
	for _, rt := range stale {
		_, err := s.DeclineRental(ctx, rt.ID, ExpiredReason)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, domain.ErrInvalidTransition):
			// approved or declined since the listing query
			logger.ForRental(rt.ID).Debug("Skipping stale request that already moved on")
		default:
			errs = append(errs, fmt.Errorf("rental %s: %w", rt.ID, err))
		}
	}
	return expired, errors.Join(errs...)
}

func (s *rentalService) ListAwaitingPayout(ctx context.Context) ([]domain.Rental, error) {
	return s.rentalRepo.ListAwaitingPayout(ctx)
}

// transition runs a guarded read-modify-write. On a version conflict the rental
// is re-read and the guard evaluated again, so a racing caller sees
// ErrInvalidTransition once the first writer moved the status.
func (s *rentalService) transition(ctx context.Context, method, rentalID, event string, apply func(rt *domain.Rental) error) (*domain.Rental, error) {
	name := "rentalService." + method
	logger.EnterMethod(name, "rentalID", rentalID)

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		rt, err := s.rentalRepo.GetByID(ctx, rentalID)
		if err != nil {
			s.countError(method)
			logger.ExitMethodWithWarning(name, err, "rentalID", rentalID)
			return nil, err
		}

		from := rt.Status
		if err := apply(rt); err != nil {
			s.countError(method)
			logger.ExitMethodWithWarning(name, err, "rentalID", rentalID, "status", from)
			return nil, err
		}
		rt.UpdatedAt = s.now().UTC()

		err = s.rentalRepo.Update(ctx, rt)
		if err == nil {
			if event != "" {
				s.metrics.Transitions.WithLabelValues(event).Inc()
				logger.ForRental(rt.ID).Info("Rental transitioned", "from", from, "to", rt.Status, "event", event)
				s.notify(ctx, rt, event)
			}
			logger.ExitMethod(name, "rentalID", rentalID, "status", rt.Status)
			return rt, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			s.countError(method)
			logger.ExitMethodWithError(name, err, "rentalID", rentalID)
			return nil, err
		}
		logger.ForRental(rentalID).Warn("Concurrent rental update, retrying", "attempt", attempt)
	}

	s.countError(method)
	err := fmt.Errorf("%w: gave up after %d attempts", domain.ErrVersionConflict, maxUpdateAttempts)
	logger.ExitMethodWithError(name, err, "rentalID", rentalID)
	return nil, err
}

func invalidTransition(action string, rt *domain.Rental) error {
	return fmt.Errorf("%w: cannot %s rental %s in status %s (paid=%t)",
		domain.ErrInvalidTransition, action, rt.ID, rt.Status, rt.IsPaid)
}

func validateActualHours(h decimal.Decimal) error {
	if !h.IsPositive() {
		return fmt.Errorf("%w: actual hours %s", domain.ErrInvalidHours, h)
	}
	if !hasAtMostTwoPlaces(h) {
		return fmt.Errorf("%w: actual hours allow at most two decimal places", domain.ErrInvalidHours)
	}
	return nil
}

// notify is best effort. Delivery failures are logged and never fail the
// transition that already committed.
func (s *rentalService) notify(ctx context.Context, rt *domain.Rental, event string) {
	if s.emailSvc == nil {
		return
	}
	if err := s.emailSvc.SendRentalStatusNotification(ctx, rt, event); err != nil {
		s.countError("notify")
		logger.ForRental(rt.ID).Error("Failed to send rental notification", "event", event, "error", err)
	}
}

func (s *rentalService) countError(operation string) {
	s.metrics.ErrorsCount.WithLabelValues(operation).Inc()
}
