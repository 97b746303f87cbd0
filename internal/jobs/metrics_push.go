package jobs

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"skyrent-backend/internal/logger"
)

const pushTimeout = 10 * time.Second

// MetricsPusher ships gathered metrics somewhere a scraper can read them.
// *push.Pusher satisfies it.
type MetricsPusher interface {
	PushContext(ctx context.Context) error
}

// NewGatewayPusher pushes everything in g to a Prometheus pushgateway under
// the given job name. Each push replaces the previous one for that job.
func NewGatewayPusher(url, job string, g prometheus.Gatherer) *push.Pusher {
	return push.New(url, job).Gatherer(g)
}

// SetMetricsPusher makes the runner push its metrics after every job
func (jr *JobRunner) SetMetricsPusher(p MetricsPusher) {
	jr.pusher = p
}

func (jr *JobRunner) pushMetrics(jobName string) {
	if jr.pusher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	if err := jr.pusher.PushContext(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to push job metrics", "job", jobName, "error", err)
		return
	}
	logger.InfoContext(ctx, "Pushed job metrics", "job", jobName)
}
