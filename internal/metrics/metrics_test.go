package metrics_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-session-server/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.NewRecorder(reg)

	r.Observe("Login", time.Now(), "")
	r.Observe("Login", time.Now(), "unauthorized")
	r.Observe("Login", time.Now(), "unauthorized")

	count, err := testutil.GatherAndCount(reg, "session_server_operations_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(reg, "session_server_operation_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRecorder_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.NewRecorder(reg)

	r.ObserveRequest("POST", "/api/auth/login", "200")
	r.ObserveRequest("POST", "/api/auth/login", "200")

	count, err := testutil.GatherAndCount(reg, "session_server_http_requests_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *metrics.Recorder
	require.NotPanics(t, func() {
		r.Observe("Login", time.Now(), "")
		r.ObserveRequest("GET", "/healthz", "200")
	})
}
