package nlu

import (
	"context"
	"log/slog"

	"github.com/KadaVoice/pos-service/internal/core/catalog"
	"github.com/KadaVoice/pos-service/pkg/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("nlu-service")

// CloudNLU is the optional upstream intent-detection collaborator
// (Dialogflow-shaped). When configured it is queried first; the local
// classifier is the fallback when the call fails or comes back weak.
type CloudNLU interface {
	DetectIntent(ctx context.Context, text, sessionID string) (*ClassifiedIntent, error)
}

// Service wires the parsing pipeline together: segmenter for items,
// classifier for the intent, router for the UI action, with the cloud NLU
// consulted first when available.
type Service struct {
	classifier *Classifier
	segmenter  *Segmenter
	cloud      CloudNLU
	logger     *slog.Logger

	// minCloudConfidence gates cloud results: anything below it falls
	// through to the local classifier.
	minCloudConfidence float64
}

func NewService(index *catalog.Index, cloud CloudNLU, minCloudConfidence float64, logger *slog.Logger) *Service {
	matcher := NewMatcher(index)
	return &Service{
		classifier:         NewClassifier(matcher),
		segmenter:          NewSegmenter(matcher),
		cloud:              cloud,
		minCloudConfidence: minCloudConfidence,
		logger:             logger,
	}
}

// ParseUtterance extracts every recognizable item from one utterance.
func (s *Service) ParseUtterance(ctx context.Context, text string) []ParsedItem {
	ctx, span := tracer.Start(ctx, "nlu.ParseUtterance")
	defer span.End()

	items := s.segmenter.ParseItems(text)

	span.SetAttributes(
		attribute.Int("items_parsed", len(items)),
		attribute.String("script", DetectScript(text)),
	)
	if telemetry.ItemsParsedTotal != nil {
		telemetry.ItemsParsedTotal.Add(ctx, int64(len(items)),
			api.WithAttributes(attribute.String("script", DetectScript(text))))
	}

	s.logger.Debug("Parsed utterance items",
		"text", text,
		"items", len(items),
		"script", DetectScript(text))

	return items
}

// DetectIntent classifies one utterance, preferring the cloud NLU when it
// is configured and answers confidently, otherwise the local classifier.
// It never fails; the worst outcome is the fallback intent.
func (s *Service) DetectIntent(ctx context.Context, text, sessionID string) ClassifiedIntent {
	ctx, span := tracer.Start(ctx, "nlu.DetectIntent")
	defer span.End()

	result := s.detect(ctx, text, sessionID)

	span.SetAttributes(
		attribute.String("intent", string(result.Intent)),
		attribute.Float64("confidence", result.Confidence),
		attribute.String("source", result.Source),
	)
	if telemetry.IntentDetectionsTotal != nil {
		telemetry.IntentDetectionsTotal.Add(ctx, 1,
			api.WithAttributes(
				attribute.String("intent", string(result.Intent)),
				attribute.String("source", result.Source),
			))
	}

	return result
}

func (s *Service) detect(ctx context.Context, text, sessionID string) ClassifiedIntent {
	if s.cloud != nil {
		cloudResult, err := s.cloud.DetectIntent(ctx, text, sessionID)
		if err != nil {
			s.logger.Warn("Cloud NLU unavailable, using local classifier",
				"error", err,
				"session_id", sessionID)
		} else if cloudResult.Confidence >= s.minCloudConfidence {
			cloudResult.Source = "cloud"
			return *cloudResult
		} else {
			s.logger.Debug("Cloud NLU result below threshold, using local classifier",
				"cloud_intent", cloudResult.Intent,
				"cloud_confidence", cloudResult.Confidence,
				"threshold", s.minCloudConfidence)
		}
	}

	return s.classifier.DetectIntent(text)
}

// HandleUtterance is the full pipeline for one voice command: detect the
// intent, parse the items, and route everything into a UI action.
func (s *Service) HandleUtterance(ctx context.Context, text, sessionID string) (RouterAction, []ParsedItem) {
	ctx, span := tracer.Start(ctx, "nlu.HandleUtterance")
	defer span.End()

	result := s.DetectIntent(ctx, text, sessionID)

	var items []ParsedItem
	if result.Intent == IntentBillingAdd || result.Intent == IntentBillingRemove {
		items = s.ParseUtterance(ctx, text)
	}

	if err := ValidateIntent(result.Intent, result.Entities); err != nil {
		s.logger.Info("Intent failed entity validation, downgrading to fallback",
			"intent", result.Intent,
			"confidence", result.Confidence,
			"error", err)
		result = ClassifiedIntent{Intent: IntentFallback, Confidence: result.Confidence, Entities: result.Entities, Source: result.Source}
	}

	action := RouteIntent(result)

	if telemetry.VoiceUtterancesTotal != nil {
		telemetry.VoiceUtterancesTotal.Add(ctx, 1,
			api.WithAttributes(
				attribute.String("operation", string(action.Operation)),
				attribute.String("mode", string(action.Mode)),
			))
	}

	s.logger.Info("Handled utterance",
		"session_id", sessionID,
		"intent", result.Intent,
		"confidence", result.Confidence,
		"source", result.Source,
		"operation", action.Operation,
		"mode", action.Mode,
		"items", len(items))

	return action, items
}
