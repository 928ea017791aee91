package nlu

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloud struct {
	result *ClassifiedIntent
	err    error
	calls  int
}

func (f *fakeCloud) DetectIntent(ctx context.Context, text, sessionID string) (*ClassifiedIntent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, cloud CloudNLU) *Service {
	t.Helper()
	return NewService(newTestIndex(t), cloud, 0.6, discardLogger())
}

func TestServiceDetectIntentLocalOnly(t *testing.T) {
	s := newTestService(t, nil)

	result := s.DetectIntent(context.Background(), "ടോട്ടൽ എത്ര", "session-1")
	assert.Equal(t, IntentBillingTotal, result.Intent)
	assert.Equal(t, "local", result.Source)
}

func TestServiceDetectIntentPrefersConfidentCloud(t *testing.T) {
	cloud := &fakeCloud{result: &ClassifiedIntent{
		Intent:          IntentBillingTotal,
		Confidence:      0.92,
		FulfillmentText: "ആകെ 570 രൂപ",
	}}
	s := newTestService(t, cloud)

	result := s.DetectIntent(context.Background(), "എത്ര ആയി", "session-1")
	assert.Equal(t, 1, cloud.calls)
	assert.Equal(t, IntentBillingTotal, result.Intent)
	assert.Equal(t, "cloud", result.Source)
	assert.Equal(t, "ആകെ 570 രൂപ", result.FulfillmentText)
}

func TestServiceDetectIntentWeakCloudFallsBackToLocal(t *testing.T) {
	cloud := &fakeCloud{result: &ClassifiedIntent{
		Intent:     IntentHelp,
		Confidence: 0.2,
	}}
	s := newTestService(t, cloud)

	result := s.DetectIntent(context.Background(), "ടോട്ടൽ എത്ര", "session-1")
	assert.Equal(t, 1, cloud.calls)
	assert.Equal(t, IntentBillingTotal, result.Intent)
	assert.Equal(t, "local", result.Source)
}

func TestServiceDetectIntentCloudErrorFallsBackToLocal(t *testing.T) {
	cloud := &fakeCloud{err: errors.New("upstream timeout")}
	s := newTestService(t, cloud)

	result := s.DetectIntent(context.Background(), "ടോട്ടൽ എത്ര", "session-1")
	assert.Equal(t, IntentBillingTotal, result.Intent)
	assert.Equal(t, "local", result.Source)
}

func TestServiceHandleUtteranceBilling(t *testing.T) {
	s := newTestService(t, nil)

	action, items := s.HandleUtterance(context.Background(), "10 kg അരി, 2 kg പഞ്ചസാര", "session-1")
	assert.Equal(t, OpAddToCart, action.Operation)
	assert.Equal(t, ModeBilling, action.Mode)
	require.Len(t, items, 2)
	assert.Equal(t, "Rice", items[0].Product)
	assert.Equal(t, "Sugar", items[1].Product)
}

func TestServiceHandleUtteranceNonBillingSkipsParsing(t *testing.T) {
	s := newTestService(t, nil)

	action, items := s.HandleUtterance(context.Background(), "ടോട്ടൽ എത്ര", "session-1")
	assert.Equal(t, OpShowTotal, action.Operation)
	assert.Empty(t, items)
}

// An add command the classifier is sure about but with no recognizable
// product must degrade to the re-prompt path, never error out.
func TestServiceHandleUtteranceValidationDowngrade(t *testing.T) {
	cloud := &fakeCloud{result: &ClassifiedIntent{
		Intent:     IntentBillingAdd,
		Confidence: 0.9,
	}}
	s := newTestService(t, cloud)

	action, _ := s.HandleUtterance(context.Background(), "അത് വേണം", "session-1")
	assert.Equal(t, OpNone, action.Operation)
	assert.Equal(t, ModeIdle, action.Mode)
	assert.NotEmpty(t, action.VoiceResponse)
}

func TestServiceParseUtterance(t *testing.T) {
	s := newTestService(t, nil)

	items := s.ParseUtterance(context.Background(), "അര കിലോ പഞ്ചസാര")
	require.Len(t, items, 1)
	assert.Equal(t, "Sugar", items[0].Product)
	assert.Equal(t, 0.5, items[0].Quantity)
}
