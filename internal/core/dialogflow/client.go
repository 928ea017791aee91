package dialogflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/KadaVoice/pos-service/internal/core/catalog"
	"github.com/KadaVoice/pos-service/internal/core/nlu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("dialogflow-client")

// Client calls a Dialogflow-compatible detect-intent endpoint. It
// implements nlu.CloudNLU; the local classifier takes over whenever this
// client errors or the returned confidence is weak.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	requestsTotal   api.Int64Counter
	requestDuration api.Float64Histogram
	requestErrors   api.Int64Counter
}

type detectRequest struct {
	SessionID    string `json:"session_id"`
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
}

type detectResponse struct {
	Intent          string             `json:"intent"`
	Confidence      float64            `json:"confidence"`
	FulfillmentText string             `json:"fulfillment_text"`
	Entities        map[string]any     `json:"entities"`
	Parameters      map[string]float64 `json:"parameters"`
}

func NewClient(endpoint, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	meter := otel.Meter("dialogflow_client")

	requestsTotal, _ := meter.Int64Counter(
		"dialogflow_requests_total",
		api.WithDescription("Total cloud intent-detection requests"),
		api.WithUnit("1"),
	)
	requestDuration, _ := meter.Float64Histogram(
		"dialogflow_request_duration_seconds",
		api.WithDescription("Duration of cloud intent-detection requests"),
		api.WithUnit("s"),
	)
	requestErrors, _ := meter.Int64Counter(
		"dialogflow_request_errors_total",
		api.WithDescription("Total cloud intent-detection errors"),
		api.WithUnit("1"),
	)

	return &Client{
		endpoint:        endpoint,
		apiKey:          apiKey,
		httpClient:      &http.Client{Timeout: timeout},
		logger:          logger,
		requestsTotal:   requestsTotal,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
	}
}

// DetectIntent sends the utterance to the cloud NLU and converts the
// response into the shared ClassifiedIntent shape.
func (c *Client) DetectIntent(ctx context.Context, text, sessionID string) (*nlu.ClassifiedIntent, error) {
	ctx, span := tracer.Start(ctx, "dialogflow.DetectIntent")
	defer span.End()

	start := time.Now()
	attrs := []attribute.KeyValue{attribute.String("session_id", sessionID)}
	c.requestsTotal.Add(ctx, 1, api.WithAttributes(attrs...))

	body, err := json.Marshal(detectRequest{
		SessionID:    sessionID,
		Text:         text,
		LanguageCode: "ml-IN",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode detect-intent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build detect-intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		c.requestErrors.Add(ctx, 1, api.WithAttributes(attrs...))
		return nil, fmt.Errorf("detect-intent call failed: %w", err)
	}
	defer resp.Body.Close()

	c.requestDuration.Record(ctx, time.Since(start).Seconds(), api.WithAttributes(attrs...))

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("detect-intent returned status %d", resp.StatusCode)
		span.RecordError(err)
		c.requestErrors.Add(ctx, 1, api.WithAttributes(
			append(attrs, attribute.Int("status_code", resp.StatusCode))...))
		return nil, err
	}

	var decoded detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		span.RecordError(err)
		c.requestErrors.Add(ctx, 1, api.WithAttributes(attrs...))
		return nil, fmt.Errorf("failed to decode detect-intent response: %w", err)
	}

	result := &nlu.ClassifiedIntent{
		Intent:          nlu.Intent(decoded.Intent),
		Confidence:      decoded.Confidence,
		FulfillmentText: decoded.FulfillmentText,
		Entities:        convertEntities(decoded.Entities),
	}

	span.SetAttributes(
		attribute.String("intent", decoded.Intent),
		attribute.Float64("confidence", decoded.Confidence),
	)
	c.logger.Debug("Cloud intent detected",
		"session_id", sessionID,
		"intent", decoded.Intent,
		"confidence", decoded.Confidence)

	return result, nil
}

func convertEntities(raw map[string]any) nlu.Entities {
	var entities nlu.Entities
	if raw == nil {
		return entities
	}

	if v, ok := raw["product"].(string); ok {
		entities.Product = v
	}
	if v, ok := raw["product_ml"].(string); ok {
		entities.ProductMl = v
	}
	if v, ok := raw["unit"].(string); ok {
		entities.Unit = catalog.Unit(v)
	}
	if v, ok := raw["quantity"].(float64); ok {
		entities.Quantity = &v
	}
	if v, ok := raw["price"].(float64); ok {
		entities.Price = &v
	}
	return entities
}
