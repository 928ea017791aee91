package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInstrumentedPoolRecordsQueryDuration(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))

	pool, err := NewInstrumentedPool(provider, nil)
	require.NoError(t, err)

	pool.record(context.Background(), "query", time.Now())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	var found bool
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name != "db.query.duration_ms" {
			continue
		}
		found = true
		hist, ok := m.Data.(metricdata.Histogram[float64])
		require.True(t, ok)
		require.Len(t, hist.DataPoints, 1)

		dp := hist.DataPoints[0]
		require.Equal(t, uint64(1), dp.Count)
		op, ok := dp.Attributes.Value(attribute.Key("operation"))
		require.True(t, ok)
		require.Equal(t, attribute.StringValue("query"), op)
	}
	require.True(t, found, "db.query.duration_ms not collected")
}
