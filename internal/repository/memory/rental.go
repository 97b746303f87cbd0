// Package memory provides a process-local RentalRepository for tests and
// single-node local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"skyrent-backend/internal/domain"
	"skyrent-backend/internal/repository"
)

type rentalRepository struct {
	mu      sync.RWMutex
	rentals map[string]domain.Rental
}

func NewRentalRepository() repository.RentalRepository {
	return &rentalRepository{rentals: make(map[string]domain.Rental)}
}

// clone copies the rental including the ActualHours pointer target so callers
// never share memory with the store.
func clone(rt domain.Rental) domain.Rental {
	if rt.ActualHours != nil {
		h := *rt.ActualHours
		rt.ActualHours = &h
	}
	return rt
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rentals[rt.ID]; exists {
		return domain.ErrVersionConflict
	}
	r.rentals[rt.ID] = clone(*rt)
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.rentals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := clone(rt)
	return &out, nil
}

// Update copies only lifecycle fields, mirroring the SQL adapter.
func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rentals[rt.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != rt.Version {
		return domain.ErrVersionConflict
	}

	stored.Status = rt.Status
	stored.IsPaid = rt.IsPaid
	stored.PayoutCompleted = rt.PayoutCompleted
	stored.ActualHours = rt.ActualHours
	stored.CancellationReason = rt.CancellationReason
	stored.UpdatedAt = rt.UpdatedAt
	stored.Version++
	r.rentals[rt.ID] = clone(stored)

	rt.Version = stored.Version
	return nil
}

func (r *rentalRepository) ListByOwner(ctx context.Context, ownerID string, status domain.RentalStatus) ([]domain.Rental, error) {
	return r.filter(ctx, func(rt *domain.Rental) bool {
		return rt.OwnerID == ownerID && (status == "" || rt.Status == status)
	}, newestFirst)
}

func (r *rentalRepository) ListByRenter(ctx context.Context, renterID string, status domain.RentalStatus) ([]domain.Rental, error) {
	return r.filter(ctx, func(rt *domain.Rental) bool {
		return rt.RenterID == renterID && (status == "" || rt.Status == status)
	}, newestFirst)
}

func (r *rentalRepository) ListPendingStartingBefore(ctx context.Context, date time.Time) ([]domain.Rental, error) {
	return r.filter(ctx, func(rt *domain.Rental) bool {
		return rt.Status == domain.RentalStatusPending && rt.StartDate.Before(date)
	}, func(a, b *domain.Rental) bool { return a.StartDate.Before(b.StartDate) })
}

func (r *rentalRepository) ListAwaitingPayout(ctx context.Context) ([]domain.Rental, error) {
	return r.filter(ctx, func(rt *domain.Rental) bool {
		return rt.Status == domain.RentalStatusCompleted && !rt.PayoutCompleted
	}, func(a, b *domain.Rental) bool { return a.UpdatedAt.Before(b.UpdatedAt) })
}

func newestFirst(a, b *domain.Rental) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func (r *rentalRepository) filter(ctx context.Context, keep func(*domain.Rental) bool, less func(a, b *domain.Rental) bool) ([]domain.Rental, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []domain.Rental{}
	for _, rt := range r.rentals {
		if keep(&rt) {
			out = append(out, clone(rt))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out, nil
}
