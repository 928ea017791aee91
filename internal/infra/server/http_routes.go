package server

import (
	"log/slog"
	"time"

	"github.com/KadaVoice/pos-service/config"
	"github.com/KadaVoice/pos-service/internal/core/catalog"
	"github.com/KadaVoice/pos-service/internal/core/nlu"
	"github.com/KadaVoice/pos-service/internal/core/tts"
	"github.com/KadaVoice/pos-service/pkg/telemetry"
	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogfiber "github.com/samber/slog-fiber"
	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

var (
	httpRequestsCounter  api.Int64Counter
	httpRequestHistogram api.Float64Histogram
)

func initHTTPMetrics(provider *metric.MeterProvider) {
	meter := provider.Meter("http")
	httpRequestsCounter, _ = meter.Int64Counter("http_requests_total",
		api.WithDescription("Total number of HTTP requests."))
	httpRequestHistogram, _ = meter.Float64Histogram("http_request_duration_ms",
		api.WithDescription("Duration of HTTP requests in milliseconds."))
}

func initGlobalMiddlewares(app *fiber.App, cfg *config.Config) {
	app.Use(
		compress.New(compress.Config{
			Level: compress.LevelDefault,
		}),

		slogfiber.NewWithFilters(slog.Default(), slogfiber.IgnorePath("/health")),

		cors.New(cors.Config{
			AllowOrigins: "*", // TODO - add allowed origins
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
			AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
		}),

		favicon.New(),
		limiter.New(limiter.Config{
			Max:               cfg.RateLimitMax,
			Expiration:        time.Duration(cfg.RateLimitWindow) * time.Second,
			LimiterMiddleware: limiter.SlidingWindow{},
		}),
	)

	app.Use(otelfiber.Middleware())
}

type utteranceRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
}

type ttsRequest struct {
	Text string `json:"text"`
}

func registerHttpRoutes(app *fiber.App, cfg *config.Config, index *catalog.Index, nluService *nlu.Service, ttsClient *tts.Client) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "timestamp": time.Now().Unix()})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	apiRoutes := app.Group("/v1")

	// Multi-item parse: utterance text in, cart line items out.
	apiRoutes.Post("/parse", withMetrics(func(c *fiber.Ctx) error {
		var req utteranceRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Text == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text is required"})
		}

		items := nluService.ParseUtterance(c.UserContext(), req.Text)

		return c.JSON(fiber.Map{
			"items": items,
			"count": len(items),
		})
	}))

	// Full utterance handling: intent classification, entity extraction and
	// routing to a screen mode plus the Malayalam voice response.
	apiRoutes.Post("/intent", withMetrics(func(c *fiber.Ctx) error {
		var req utteranceRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Text == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text is required"})
		}
		if req.SessionID == "" {
			req.SessionID = uuid.New().String()
		}

		action, items := nluService.HandleUtterance(c.UserContext(), req.Text, req.SessionID)

		return c.JSON(fiber.Map{
			"session_id":     req.SessionID,
			"mode":           action.Mode,
			"operation":      action.Operation,
			"voice_response": action.VoiceResponse,
			"entities":       action.Entities,
			"items":          items,
		})
	}))

	apiRoutes.Get("/catalog", withMetrics(func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"products": index.Products(),
			"count":    index.Len(),
		})
	}))

	apiRoutes.Post("/tts", withMetrics(func(c *fiber.Ctx) error {
		if ttsClient == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "tts is not configured"})
		}

		var req ttsRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Text == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text is required"})
		}

		audio, err := ttsClient.Synthesize(c.UserContext(), req.Text)
		if err != nil {
			slog.Error("TTS synthesis failed",
				"component", "http_handler",
				"endpoint", "/v1/tts",
				"error", err.Error())
			telemetry.ApplicationErrorsTotal.Add(c.UserContext(), 1,
				api.WithAttributes(attribute.String("component", "tts")))
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "synthesis failed"})
		}

		c.Set("Content-Type", "audio/wav")
		return c.Send(audio)
	}))
}

func withMetrics(handler fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := handler(c)

		durationMs := float64(time.Since(start).Milliseconds())

		if httpRequestsCounter != nil {
			httpRequestsCounter.Add(c.UserContext(), 1,
				api.WithAttributes(
					attribute.String("method", c.Method()),
					attribute.String("path", c.Route().Path),
					attribute.Int("status_code", c.Response().StatusCode()),
				),
			)
		}

		if httpRequestHistogram != nil {
			httpRequestHistogram.Record(c.UserContext(), durationMs,
				api.WithAttributes(
					attribute.String("method", c.Method()),
					attribute.String("path", c.Route().Path),
					attribute.Int("status_code", c.Response().StatusCode()),
				),
			)
		}

		return err
	}
}
