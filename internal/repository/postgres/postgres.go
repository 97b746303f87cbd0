package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"skyrent-backend/internal/logger"
	"skyrent-backend/internal/repository"

	_ "github.com/lib/pq"
)

// Schema creates the rentals table. Money columns match the NUMERIC(12,2) bound
// enforced by the pricing engine.
const Schema = `
CREATE TABLE IF NOT EXISTS rentals (
	id                  UUID PRIMARY KEY,
	aircraft_id         TEXT NOT NULL,
	renter_id           TEXT NOT NULL,
	owner_id            TEXT NOT NULL,
	start_date          DATE NOT NULL,
	end_date            DATE NOT NULL,
	hourly_rate         NUMERIC(12,2) NOT NULL CHECK (hourly_rate > 0),
	estimated_hours     NUMERIC(8,2) NOT NULL CHECK (estimated_hours > 0),
	base_cost           NUMERIC(12,2) NOT NULL,
	sales_tax           NUMERIC(12,2) NOT NULL,
	platform_fee_renter NUMERIC(12,2) NOT NULL,
	platform_fee_owner  NUMERIC(12,2) NOT NULL,
	processing_fee      NUMERIC(12,2) NOT NULL,
	total_cost_renter   NUMERIC(12,2) NOT NULL,
	owner_payout        NUMERIC(12,2) NOT NULL,
	status              TEXT NOT NULL,
	is_paid             BOOLEAN NOT NULL DEFAULT FALSE,
	payout_completed    BOOLEAN NOT NULL DEFAULT FALSE,
	actual_hours        NUMERIC(8,2),
	cancellation_reason TEXT NOT NULL DEFAULT '',
	version             INTEGER NOT NULL DEFAULT 1,
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL,
	CHECK (end_date >= start_date)
);
CREATE INDEX IF NOT EXISTS rentals_owner_idx ON rentals (owner_id, created_at DESC);
CREATE INDEX IF NOT EXISTS rentals_renter_idx ON rentals (renter_id, created_at DESC);
CREATE INDEX IF NOT EXISTS rentals_status_idx ON rentals (status);
`

type Store struct {
	db *sql.DB
	repository.RentalRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:               db,
		RentalRepository: NewRentalRepository(db),
	}
}

// Migrate applies Schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	logger.DatabaseCall("MIGRATE", "rentals")
	_, err := s.db.ExecContext(ctx, Schema)
	logger.DatabaseResult("MIGRATE", 0, err)
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Ping checks connectivity, used by the health endpoint
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
