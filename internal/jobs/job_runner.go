package jobs

import (
	"time"

	"skyrent-backend/internal/config"
	"skyrent-backend/internal/logger"
	"skyrent-backend/internal/metrics"
	"skyrent-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	metrics  *metrics.Metrics
	config   *config.Config
	pusher   MetricsPusher
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email  service.EmailService
	Rental service.RentalService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, m *metrics.Metrics, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		metrics:  m,
		config:   cfg,
		now:      time.Now,
	}
}

// Config exposes the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery. Metrics are pushed
// once the job has finished, failed or not.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func() error) {
	defer jr.pushMetrics(jobName)
	defer func() {
		if r := recover(); r != nil {
			jr.metrics.ErrorsCount.WithLabelValues(jobName).Inc()
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := jr.now()
	if err := jobFunc(); err != nil {
		jr.metrics.ErrorsCount.WithLabelValues(jobName).Inc()
		logger.Error("Job failed", "job", jobName, "error", err, "duration", jr.now().Sub(start))
		return
	}
	logger.Info("Job completed", "job", jobName, "duration", jr.now().Sub(start))
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ExpireStaleRequests()
	jr.ReportPendingPayouts()
}
