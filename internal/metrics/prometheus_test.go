package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("skyrent", reg)

	m.RentalsRequested.Inc()
	m.Transitions.WithLabelValues("approved").Add(2)
	m.PendingPayouts.Set(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RentalsRequested))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("approved")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PendingPayouts))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["skyrent_rentals_requested_total"])
	assert.True(t, names["skyrent_rental_transitions_total"])
	assert.True(t, names["skyrent_pending_payouts"])
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics("skyrent", prometheus.NewRegistry())
		NewMetrics("skyrent", prometheus.NewRegistry())
	})
}
