package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"skyrent-backend/internal/domain"
	"skyrent-backend/internal/logger"
	"skyrent-backend/internal/repository"
)

const rentalColumns = `id, aircraft_id, renter_id, owner_id, start_date, end_date, hourly_rate, estimated_hours,
	base_cost, sales_tax, platform_fee_renter, platform_fee_owner, processing_fee, total_cost_renter, owner_payout,
	status, is_paid, payout_completed, actual_hours, cancellation_reason, version, created_at, updated_at`

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	var actualHours decimal.NullDecimal
	err := row.Scan(
		&rt.ID, &rt.AircraftID, &rt.RenterID, &rt.OwnerID, &rt.StartDate, &rt.EndDate, &rt.HourlyRate, &rt.EstimatedHours,
		&rt.BaseCost, &rt.SalesTax, &rt.PlatformFeeRenter, &rt.PlatformFeeOwner, &rt.ProcessingFee, &rt.TotalCostRenter, &rt.OwnerPayout,
		&rt.Status, &rt.IsPaid, &rt.PayoutCompleted, &actualHours, &rt.CancellationReason, &rt.Version, &rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if actualHours.Valid {
		h := actualHours.Decimal
		rt.ActualHours = &h
	}
	return rt, nil
}

func isRentalID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func nullableHours(h *decimal.Decimal) decimal.NullDecimal {
	if h == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *h, Valid: true}
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	logger.EnterMethod("rentalRepository.Create", "rentalID", rt.ID, "ownerID", rt.OwnerID, "renterID", rt.RenterID)

	query := `INSERT INTO rentals (` + rentalColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	logger.DatabaseCall("INSERT", "rentals", "rentalID", rt.ID)
	res, err := r.db.ExecContext(ctx, query,
		rt.ID, rt.AircraftID, rt.RenterID, rt.OwnerID, rt.StartDate, rt.EndDate, rt.HourlyRate, rt.EstimatedHours,
		rt.BaseCost, rt.SalesTax, rt.PlatformFeeRenter, rt.PlatformFeeOwner, rt.ProcessingFee, rt.TotalCostRenter, rt.OwnerPayout,
		rt.Status, rt.IsPaid, rt.PayoutCompleted, nullableHours(rt.ActualHours), rt.CancellationReason, rt.Version, rt.CreatedAt, rt.UpdatedAt,
	)
	var affected int64
	if err == nil {
		affected, _ = res.RowsAffected()
	}
	logger.DatabaseResult("INSERT", affected, err, "rentalID", rt.ID)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.Create", err, "rentalID", rt.ID)
		return fmt.Errorf("failed to insert rental: %w", err)
	}

	logger.ExitMethod("rentalRepository.Create", "rentalID", rt.ID)
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	logger.EnterMethod("rentalRepository.GetByID", "rentalID", id)

	// the id column is UUID; anything else can never match a row
	if !isRentalID(id) {
		logger.ExitMethod("rentalRepository.GetByID", "rentalID", id, "found", false)
		return nil, domain.ErrNotFound
	}

	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		logger.ExitMethod("rentalRepository.GetByID", "rentalID", id, "found", false)
		return nil, domain.ErrNotFound
	}
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.GetByID", err, "rentalID", id)
		return nil, fmt.Errorf("failed to load rental: %w", err)
	}

	logger.ExitMethod("rentalRepository.GetByID", "rentalID", id)
	return rt, nil
}

// Update writes the lifecycle fields only. Monetary and date columns are never
// part of the statement.
func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	logger.EnterMethod("rentalRepository.Update", "rentalID", rt.ID, "status", rt.Status, "version", rt.Version)

	if !isRentalID(rt.ID) {
		logger.ExitMethodWithWarning("rentalRepository.Update", domain.ErrNotFound, "rentalID", rt.ID)
		return domain.ErrNotFound
	}

	query := `UPDATE rentals
	          SET status = $1, is_paid = $2, payout_completed = $3, actual_hours = $4, cancellation_reason = $5,
	              version = version + 1, updated_at = $6
	          WHERE id = $7 AND version = $8`
	logger.DatabaseCall("UPDATE", "rentals", "rentalID", rt.ID)
	res, err := r.db.ExecContext(ctx, query,
		rt.Status, rt.IsPaid, rt.PayoutCompleted, nullableHours(rt.ActualHours), rt.CancellationReason,
		rt.UpdatedAt, rt.ID, rt.Version,
	)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "rentalID", rt.ID)
		logger.ExitMethodWithError("rentalRepository.Update", err, "rentalID", rt.ID)
		return fmt.Errorf("failed to update rental: %w", err)
	}
	affected, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", affected, err, "rentalID", rt.ID)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.Update", err, "rentalID", rt.ID)
		return fmt.Errorf("failed to update rental: %w", err)
	}

	if affected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM rentals WHERE id = $1)`, rt.ID).Scan(&exists); err != nil {
			logger.ExitMethodWithError("rentalRepository.Update", err, "rentalID", rt.ID)
			return fmt.Errorf("failed to check rental: %w", err)
		}
		if !exists {
			logger.ExitMethodWithWarning("rentalRepository.Update", domain.ErrNotFound, "rentalID", rt.ID)
			return domain.ErrNotFound
		}
		logger.ExitMethod("rentalRepository.Update", "rentalID", rt.ID, "conflict", true)
		return domain.ErrVersionConflict
	}

	rt.Version++
	logger.ExitMethod("rentalRepository.Update", "rentalID", rt.ID, "version", rt.Version)
	return nil
}

func (r *rentalRepository) ListByOwner(ctx context.Context, ownerID string, status domain.RentalStatus) ([]domain.Rental, error) {
	return r.listBy(ctx, "owner_id", ownerID, status)
}

func (r *rentalRepository) ListByRenter(ctx context.Context, renterID string, status domain.RentalStatus) ([]domain.Rental, error) {
	return r.listBy(ctx, "renter_id", renterID, status)
}

// listBy is only called with fixed column names, never user input.
func (r *rentalRepository) listBy(ctx context.Context, column, id string, status domain.RentalStatus) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE ` + column + ` = $1`
	args := []any{id}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	return r.query(ctx, "SELECT "+column, query, args...)
}

func (r *rentalRepository) ListPendingStartingBefore(ctx context.Context, date time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE status = $1 AND start_date < $2 ORDER BY start_date`
	return r.query(ctx, "SELECT stale pending", query, domain.RentalStatusPending, date)
}

func (r *rentalRepository) ListAwaitingPayout(ctx context.Context) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE status = $1 AND payout_completed = FALSE ORDER BY updated_at`
	return r.query(ctx, "SELECT awaiting payout", query, domain.RentalStatusCompleted)
}

func (r *rentalRepository) query(ctx context.Context, operation, query string, args ...any) ([]domain.Rental, error) {
	logger.DatabaseCall(operation, "rentals")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult(operation, 0, err)
		return nil, fmt.Errorf("failed to list rentals: %w", err)
	}
	defer rows.Close()

	rentals := []domain.Rental{}
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rental: %w", err)
		}
		rentals = append(rentals, *rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult(operation, int64(len(rentals)), nil)
	return rentals, nil
}
