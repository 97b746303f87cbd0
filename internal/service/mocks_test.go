package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"skyrent-backend/internal/domain"
)

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendRentalStatusNotification(ctx context.Context, rental *domain.Rental, event string) error {
	args := m.Called(ctx, rental, event)
	return args.Error(0)
}

func (m *MockEmailService) SendPayoutReport(ctx context.Context, rentals []domain.Rental) error {
	args := m.Called(ctx, rentals)
	return args.Error(0)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rt *domain.Rental) error {
	args := m.Called(ctx, rt)
	return args.Error(0)
}

func (m *MockRentalRepo) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// hand out a copy so the service cannot mutate the fixture between calls
	rt := *args.Get(0).(*domain.Rental)
	return &rt, args.Error(1)
}

func (m *MockRentalRepo) Update(ctx context.Context, rt *domain.Rental) error {
	args := m.Called(ctx, rt)
	return args.Error(0)
}

func (m *MockRentalRepo) ListByOwner(ctx context.Context, ownerID string, status domain.RentalStatus) ([]domain.Rental, error) {
	args := m.Called(ctx, ownerID, status)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) ListByRenter(ctx context.Context, renterID string, status domain.RentalStatus) ([]domain.Rental, error) {
	args := m.Called(ctx, renterID, status)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) ListPendingStartingBefore(ctx context.Context, date time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) ListAwaitingPayout(ctx context.Context) ([]domain.Rental, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
