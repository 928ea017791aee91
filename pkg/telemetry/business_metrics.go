package telemetry

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Business metrics for application-level monitoring
var (
	// Voice pipeline metrics
	VoiceUtterancesTotal  api.Int64Counter
	IntentDetectionsTotal api.Int64Counter
	ItemsParsedTotal      api.Int64Counter
	TTSRequestsTotal      api.Int64Counter

	// Catalog metrics
	CatalogProductsLoaded api.Int64UpDownCounter

	// Error tracking
	ApplicationErrorsTotal api.Int64Counter
	DatabaseErrorsTotal    api.Int64Counter
)

// InitTelemetry wires up runtime instrumentation, business metrics and the
// pool stats gauge for the given provider.
func InitTelemetry(provider *metric.MeterProvider, pool *pgxpool.Pool) error {
	if err := runtime.Start(runtime.WithMeterProvider(provider)); err != nil {
		return err
	}

	if pool != nil {
		if err := registerPoolStats(provider, pool); err != nil {
			return err
		}
	}

	return InitBusinessMetrics(provider)
}

// InitBusinessMetrics initializes all business-level metrics
func InitBusinessMetrics(provider *metric.MeterProvider) error {
	meter := provider.Meter("business")

	var err error

	VoiceUtterancesTotal, err = meter.Int64Counter("voice.utterances.total",
		api.WithDescription("Total voice utterances processed by outcome"))
	if err != nil {
		return err
	}

	IntentDetectionsTotal, err = meter.Int64Counter("voice.intent_detections.total",
		api.WithDescription("Total intent detections by intent and source (local/cloud)"))
	if err != nil {
		return err
	}

	ItemsParsedTotal, err = meter.Int64Counter("voice.items_parsed.total",
		api.WithDescription("Total items extracted from utterances by script"))
	if err != nil {
		return err
	}

	TTSRequestsTotal, err = meter.Int64Counter("tts.requests.total",
		api.WithDescription("Total text-to-speech requests by source (cache/api/error)"))
	if err != nil {
		return err
	}

	CatalogProductsLoaded, err = meter.Int64UpDownCounter("catalog.products.loaded",
		api.WithDescription("Number of products in the active catalog index"))
	if err != nil {
		return err
	}

	ApplicationErrorsTotal, err = meter.Int64Counter("application.errors.total",
		api.WithDescription("Total application errors by component and type"))
	if err != nil {
		return err
	}

	DatabaseErrorsTotal, err = meter.Int64Counter("database.errors.total",
		api.WithDescription("Total database errors by operation and type"))
	if err != nil {
		return err
	}

	slog.Info("Business metrics initialized successfully")
	return nil
}

func registerPoolStats(provider *metric.MeterProvider, pool *pgxpool.Pool) error {
	meter := provider.Meter("db_pool")

	acquired, err := meter.Int64ObservableGauge("db.pool.acquired_connections",
		api.WithDescription("Connections currently acquired from the pool"))
	if err != nil {
		return err
	}
	idle, err := meter.Int64ObservableGauge("db.pool.idle_connections",
		api.WithDescription("Idle connections in the pool"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o api.Observer) error {
		stats := pool.Stat()
		o.ObserveInt64(acquired, int64(stats.AcquiredConns()))
		o.ObserveInt64(idle, int64(stats.IdleConns()))
		return nil
	}, acquired, idle)
	return err
}
