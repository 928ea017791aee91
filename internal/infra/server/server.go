package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KadaVoice/pos-service/config"
	"github.com/KadaVoice/pos-service/internal/core/catalog"
	"github.com/KadaVoice/pos-service/internal/core/dialogflow"
	"github.com/KadaVoice/pos-service/internal/core/nlu"
	"github.com/KadaVoice/pos-service/internal/core/tts"
	"github.com/KadaVoice/pos-service/internal/infra/postgres"
	"github.com/KadaVoice/pos-service/pkg/telemetry"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"
	"google.golang.org/grpc"
)

type Server struct {
	cfg            *config.Config
	app            *fiber.App
	db             postgres.DB
	index          *catalog.Index
	nluService     *nlu.Service
	ttsClient      *tts.Client
	traceProvider  *sdktrace.TracerProvider
	metricProvider *metric.MeterProvider
	loggerProvider interface{ Shutdown(context.Context) error } // log.LoggerProvider interface
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
}

var tracer = otel.Tracer("server")

func New(ctx context.Context, cfg *config.Config, dbConn *pgxpool.Pool, redisClient *redis.Client) *Server {
	traceExporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerEndpoint)))
	if err != nil {
		slog.Error("failed to initialize jaeger exporter", slog.String("error", err.Error()))
		return nil
	}

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OtlpEndpoint),
		otlpmetricgrpc.WithInsecure(),
		otlpmetricgrpc.WithDialOption(grpc.WithUserAgent("pos-service")),
	)
	if err != nil {
		slog.Error("failed to initialize otlp exporter", slog.String("error", err.Error()))
		return nil
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceNameKey.String("pos-service"),
			)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	provider := metric.NewMeterProvider(metric.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String("pos-service"),
	)), metric.WithReader(metric.NewPeriodicReader(metricExporter, metric.WithInterval(15*time.Second))))

	otel.SetMeterProvider(provider)

	err = telemetry.InitTelemetry(provider, dbConn)
	if err != nil {
		slog.Error("failed to initialize telemetry", slog.String("error", err.Error()))
		return nil
	}

	var db postgres.DB
	if dbConn != nil {
		instrumentedConn, err := telemetry.NewInstrumentedPool(provider, dbConn)
		if err != nil {
			slog.Error("failed to create instrumented pool", slog.String("error", err.Error()))
			return nil
		}
		db = instrumentedConn
	}

	app := fiber.New(cfg.Fiber())

	serverCtx, cancel := context.WithCancel(ctx)

	// Catalog index feeds the matcher; a missing database falls back to the
	// embedded seed inside the provider.
	catalogProvider := catalog.NewProvider(db, slog.Default())
	index, err := catalogProvider.LoadIndex(serverCtx)
	if err != nil {
		slog.Error("failed to load catalog index", slog.String("error", err.Error()))
		cancel()
		return nil
	}
	telemetry.CatalogProductsLoaded.Add(serverCtx, int64(index.Len()))

	var cloud nlu.CloudNLU
	dfCfg := cfg.GetDialogflowConfig()
	if dfCfg.Enabled() {
		cloud = dialogflow.NewClient(dfCfg.Endpoint, dfCfg.APIKey, dfCfg.Timeout, slog.Default())
	}

	nluService := nlu.NewService(index, cloud, dfCfg.MinConfidence, slog.Default())

	var ttsClient *tts.Client
	sarvamCfg := cfg.GetSarvamConfig()
	if sarvamCfg.APIKey != "" {
		ttsClient = tts.NewClient(sarvamCfg.BaseURL, sarvamCfg.APIKey, sarvamCfg.Speaker, sarvamCfg.CacheTTL, redisClient, slog.Default())
	}

	return &Server{
		cfg:            cfg,
		app:            app,
		db:             db,
		index:          index,
		nluService:     nluService,
		ttsClient:      ttsClient,
		traceProvider:  tp,
		metricProvider: provider,
		ctx:            serverCtx,
		cancel:         cancel,
	}
}

func (s *Server) Start() {
	initHTTPMetrics(s.metricProvider)
	initGlobalMiddlewares(s.app, s.cfg)
	registerHttpRoutes(s.app, s.cfg, s.index, s.nluService, s.ttsClient)

	slog.Info("Starting HTTP server", slog.String("address", s.cfg.ServerAddress))

	// Start HTTP server
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.app.Listen(s.cfg.ServerAddress); err != nil {
			slog.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()
}

func (s *Server) Shutdown() {
	slog.Info("Shutting down server")

	// Cancel context to stop all goroutines
	s.cancel()

	// Shutdown HTTP server
	if err := s.app.Shutdown(); err != nil {
		slog.Error("Error shutting down HTTP server", slog.String("error", err.Error()))
	}

	// Wait for all goroutines to finish
	s.wg.Wait()

	// Shutdown telemetry providers
	if err := s.traceProvider.Shutdown(context.Background()); err != nil {
		slog.Error("Error shutting down trace provider", slog.String("error", err.Error()))
	}

	if err := s.metricProvider.Shutdown(context.Background()); err != nil {
		slog.Error("Error shutting down metric provider", slog.String("error", err.Error()))
	}

	if s.loggerProvider != nil {
		if err := s.loggerProvider.Shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down log provider", slog.String("error", err.Error()))
		}
	}

	if s.db != nil {
		s.db.Close()
	}

	slog.Info("Server shut down successfully")
}
