package metrics_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/aretw0/tablewatch/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooks_RecordEvaluations(t *testing.T) {
	m := metrics.New()
	hooks := m.Hooks()
	ctx := context.Background()

	reload := &domain.Evaluation{
		Sensor:       "s",
		CurrentMtime: 100,
		Changed:      true,
		Outcome:      &domain.ReloadOutcome{Kind: domain.OutcomeTransportError},
		Duration:     50 * time.Millisecond,
	}
	hooks.OnReload(ctx, reload)
	hooks.OnEvaluate(ctx, reload)
	hooks.OnEvaluate(ctx, &domain.Evaluation{Sensor: "s", CurrentMtime: 100})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ticks.WithLabelValues("s", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ticks.WithLabelValues("s", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reloads.WithLabelValues("s", "transport_error")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.Watermark.WithLabelValues("s")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ReloadDuration))
}

func TestHandler(t *testing.T) {
	m := metrics.New()
	m.Hooks().OnEvaluate(context.Background(), &domain.Evaluation{Sensor: "s"})

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `tablewatch_sensor_ticks_total{changed="false",sensor="s"} 1`)
}
