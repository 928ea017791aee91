package telemetry

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// InstrumentedPool wraps the pgx pool and times every statement, labeled by
// operation kind. Catalog loads and report queries go through it.
type InstrumentedPool struct {
	*pgxpool.Pool
	queryDuration api.Float64Histogram
}

func NewInstrumentedPool(provider *metric.MeterProvider, pool *pgxpool.Pool) (*InstrumentedPool, error) {
	meter := provider.Meter("db")

	queryDuration, err := meter.Float64Histogram(
		"db.query.duration_ms",
		api.WithDescription("Duration of database statements in milliseconds by operation"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedPool{
		Pool:          pool,
		queryDuration: queryDuration,
	}, nil
}

func (ip *InstrumentedPool) record(ctx context.Context, operation string, start time.Time) {
	ip.queryDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
		api.WithAttributes(attribute.String("operation", operation)))
}

func (ip *InstrumentedPool) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	defer ip.record(ctx, "exec", time.Now())
	return ip.Pool.Exec(ctx, sql, args...)
}

func (ip *InstrumentedPool) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	defer ip.record(ctx, "query", time.Now())
	return ip.Pool.Query(ctx, sql, args...)
}

func (ip *InstrumentedPool) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	defer ip.record(ctx, "query_row", time.Now())
	return ip.Pool.QueryRow(ctx, sql, args...)
}
