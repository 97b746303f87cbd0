package jobs

import (
	"context"
	"fmt"

	"skyrent-backend/internal/logger"
)

// ExpireStaleRequests cancels pending requests whose start date has passed
// without an owner decision
func (jr *JobRunner) ExpireStaleRequests() {
	jr.runWithRecovery("ExpireStaleRequests", func() error {
		ctx := context.Background()

		count, err := jr.services.Rental.ExpireStaleRequests(ctx, jr.now())
		logger.Info("Expired stale rental requests", "count", count)
		if err != nil {
			return fmt.Errorf("failed to expire some requests: %w", err)
		}
		return nil
	})
}

// ReportPendingPayouts publishes the number of completed rentals still owed to
// their owners and mails the list to operations
func (jr *JobRunner) ReportPendingPayouts() {
	jr.runWithRecovery("ReportPendingPayouts", func() error {
		ctx := context.Background()

		rentals, err := jr.services.Rental.ListAwaitingPayout(ctx)
		if err != nil {
			return fmt.Errorf("failed to list rentals awaiting payout: %w", err)
		}

		jr.metrics.PendingPayouts.Set(float64(len(rentals)))
		logger.Info("Rentals awaiting owner payout", "count", len(rentals))

		for _, rt := range rentals {
			logger.Debug("Payout outstanding",
				"rental_id", rt.ID,
				"owner_id", rt.OwnerID,
				"owner_payout", rt.OwnerPayout.StringFixed(2))
		}

		if len(rentals) == 0 || jr.services.Email == nil {
			return nil
		}
		if err := jr.services.Email.SendPayoutReport(ctx, rentals); err != nil {
			return fmt.Errorf("failed to send payout report: %w", err)
		}
		return nil
	})
}
