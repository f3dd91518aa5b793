package app

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ayusman/repcount/internal/metrics"
)

func counterValue(t *testing.T, m *metrics.Manager, result string) float64 {
	t.Helper()
	return testutil.ToFloat64(m.CounterFlushes.WithLabelValues(result))
}
