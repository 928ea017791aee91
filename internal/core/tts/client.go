package tts

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KadaVoice/pos-service/pkg/telemetry"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("tts-client")

// Client synthesizes Malayalam speech through the Sarvam text-to-speech
// API. Responses are cached in Redis keyed by a hash of the normalized
// text, since the router speaks from a fixed phrase library and the same
// responses repeat all day.
type Client struct {
	baseURL  string
	apiKey   string
	speaker  string
	cacheTTL time.Duration

	httpClient *http.Client
	cache      *redis.Client
	logger     *slog.Logger

	synthesizeDuration api.Float64Histogram
}

type synthesizeRequest struct {
	Inputs             []string `json:"inputs"`
	TargetLanguageCode string   `json:"target_language_code"`
	Speaker            string   `json:"speaker"`
	Model              string   `json:"model"`
}

type synthesizeResponse struct {
	Audios []string `json:"audios"`
}

func NewClient(baseURL, apiKey, speaker string, cacheTTL time.Duration, cache *redis.Client, logger *slog.Logger) *Client {
	meter := otel.Meter("sarvam_tts")

	synthesizeDuration, _ := meter.Float64Histogram(
		"tts_synthesize_duration_seconds",
		api.WithDescription("Duration of text-to-speech synthesis requests"),
		api.WithUnit("s"),
	)

	return &Client{
		baseURL:            baseURL,
		apiKey:             apiKey,
		speaker:            speaker,
		cacheTTL:           cacheTTL,
		httpClient:         &http.Client{Timeout: 15 * time.Second},
		cache:              cache,
		logger:             logger,
		synthesizeDuration: synthesizeDuration,
	}
}

// Synthesize converts a voice response into audio bytes (WAV), serving
// repeated phrases from the Redis cache.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "tts.Synthesize")
	defer span.End()

	if c.apiKey == "" {
		return nil, fmt.Errorf("tts client is not configured")
	}

	key := c.cacheKey(text)
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, key).Bytes()
		if err == nil {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			if telemetry.TTSRequestsTotal != nil {
				telemetry.TTSRequestsTotal.Add(ctx, 1,
					api.WithAttributes(attribute.String("source", "cache")))
			}
			return cached, nil
		}
		if err != redis.Nil {
			c.logger.Warn("TTS cache lookup failed, synthesizing directly", "error", err)
		}
	}

	start := time.Now()
	audio, err := c.synthesize(ctx, text)
	c.synthesizeDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		if telemetry.TTSRequestsTotal != nil {
			telemetry.TTSRequestsTotal.Add(ctx, 1,
				api.WithAttributes(attribute.String("source", "error")))
		}
		return nil, err
	}

	if telemetry.TTSRequestsTotal != nil {
		telemetry.TTSRequestsTotal.Add(ctx, 1,
			api.WithAttributes(attribute.String("source", "api")))
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, audio, c.cacheTTL).Err(); err != nil {
			c.logger.Warn("Failed to store synthesized audio in cache", "error", err)
		}
	}

	return audio, nil
}

func (c *Client) synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(synthesizeRequest{
		Inputs:             []string{text},
		TargetLanguageCode: "ml-IN",
		Speaker:            c.speaker,
		Model:              "bulbul:v2",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text-to-speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-subscription-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("synthesis returned status %d", resp.StatusCode)
	}

	var decoded synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode synthesis response: %w", err)
	}
	if len(decoded.Audios) == 0 {
		return nil, fmt.Errorf("synthesis returned no audio")
	}

	audio, err := base64.StdEncoding.DecodeString(decoded.Audios[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode synthesized audio: %w", err)
	}

	return audio, nil
}

func (c *Client) cacheKey(text string) string {
	normalized := strings.TrimSpace(strings.ToLower(text))
	hash := sha256.Sum256([]byte(normalized + "|" + c.speaker))
	return "tts:" + hex.EncodeToString(hash[:])
}
