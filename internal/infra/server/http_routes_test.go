package server

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestWithMetricsRecordsRequests(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	initHTTPMetrics(provider)

	app := fiber.New()
	app.Get("/ping", withMetrics(func(c *fiber.Ctx) error {
		return c.SendString("pong")
	}))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var counted bool
	var timed bool
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch m.Name {
			case "http_requests_total":
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				require.NotEmpty(t, sum.DataPoints)
				assert.Equal(t, int64(1), sum.DataPoints[0].Value)
				counted = true
			case "http_request_duration_ms":
				hist, ok := m.Data.(metricdata.Histogram[float64])
				require.True(t, ok)
				require.NotEmpty(t, hist.DataPoints)
				assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
				timed = true
			}
		}
	}
	assert.True(t, counted, "http_requests_total was not recorded")
	assert.True(t, timed, "http_request_duration_ms was not recorded")
}
