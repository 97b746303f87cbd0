// Package bootstrap builds the dependency graph shared by the server and the
// cronjob runner.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"skyrent-backend/internal/config"
	"skyrent-backend/internal/logger"
	"skyrent-backend/internal/metrics"
	"skyrent-backend/internal/repository"
	"skyrent-backend/internal/repository/memory"
	"skyrent-backend/internal/repository/postgres"
	"skyrent-backend/internal/service"
)

// Backend is an opened rental store
type Backend struct {
	Rentals repository.RentalRepository
	Ping    func(ctx context.Context) error
	Close   func() error
}

// OpenBackend connects to the configured store, applying the schema when
// database.migrate is set.
func OpenBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("Using in-memory rental store, data is lost on exit")
		return &Backend{
			Rentals: memory.NewRentalRepository(),
			Ping:    func(context.Context) error { return nil },
			Close:   func() error { return nil },
		}, nil
	}

	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := postgres.NewStore(db)
	if err := store.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.Migrate {
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Database schema applied")
	}

	return &Backend{
		Rentals: store.RentalRepository,
		Ping:    store.Ping,
		Close:   db.Close,
	}, nil
}

// NewServices builds the email and rental services from configuration
func NewServices(cfg *config.Config, rentals repository.RentalRepository, m *metrics.Metrics) (service.RentalService, service.EmailService, error) {
	policy, err := cfg.FeePolicy()
	if err != nil {
		return nil, nil, err
	}

	if cfg.Email.SendGridAPIKey == "" {
		logger.Info("SendGrid API key not set, email delivery disabled")
	}
	emailSvc := service.NewEmailService(
		cfg.Email.SendGridAPIKey,
		cfg.Email.FromAddress,
		cfg.Email.FromName,
		cfg.Email.OpsAddress,
	)

	logger.Info("Fee policy loaded",
		"sales_tax_rate", policy.SalesTaxRate.String(),
		"renter_platform_fee_rate", policy.RenterPlatformFeeRate.String(),
		"owner_platform_fee_rate", policy.OwnerPlatformFeeRate.String(),
		"processing_fee_rate", policy.ProcessingFeeRate.String())

	return service.NewRentalService(rentals, policy, emailSvc, m), emailSvc, nil
}
