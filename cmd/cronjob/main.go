package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"skyrent-backend/internal/bootstrap"
	"skyrent-backend/internal/config"
	"skyrent-backend/internal/jobs"
	"skyrent-backend/internal/logger"
	"skyrent-backend/internal/metrics"
	"skyrent-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'expire-stale-requests', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting SkyRent Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize store
	backend, err := bootstrap.OpenBackend(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to open rental store", "error", err)
		log.Fatalf("Failed to open rental store: %v", err)
	}
	defer backend.Close()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(cfg.Metrics.Namespace, registry)

	// Initialize Services
	rentalSvc, emailSvc, err := bootstrap.NewServices(cfg, backend.Rentals, m)
	if err != nil {
		logger.Error("Failed to initialize services", "error", err)
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(&jobs.Services{Email: emailSvc, Rental: rentalSvc}, m, cfg)
	if cfg.Metrics.PushGatewayURL != "" {
		jobRunner.SetMetricsPusher(jobs.NewGatewayPusher(cfg.Metrics.PushGatewayURL, cfg.Metrics.PushJob, registry))
		logger.Info("Pushing job metrics", "gateway", cfg.Metrics.PushGatewayURL, "job", cfg.Metrics.PushJob)
	}

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "expire-stale-requests":
		jobRunner.ExpireStaleRequests()
	case "report-pending-payouts":
		jobRunner.ReportPendingPayouts()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - expire-stale-requests\n")
		fmt.Printf("  - report-pending-payouts\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
