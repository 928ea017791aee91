package nlu

import (
	"testing"

	"github.com/KadaVoice/pos-service/internal/core/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	return NewClassifier(NewMatcher(newTestIndex(t)))
}

func TestDetectIntentMalayalam(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name     string
		input    string
		expected Intent
	}{
		{"total query", "ടോട്ടൽ എത്ര", IntentBillingTotal},
		{"remove item", "അരി വേണ്ട", IntentBillingRemove},
		{"upi payment", "ജിപേ സ്കാൻ ചെയ്യൂ", IntentPaymentUPI},
		{"cash payment", "കാശ് തന്നു", IntentPaymentCash},
		{"low stock", "സ്റ്റോക്ക് കുറവ് ഏതൊക്കെ", IntentInventoryLow},
		{"today report", "ഇന്നത്തെ കണക്ക് പറയൂ", IntentReportToday},
		{"confirm", "ശരി", IntentConfirm},
		{"cancel", "ക്യാൻസൽ ചെയ്യൂ", IntentCancel},
		{"help", "സഹായം വേണം", IntentHelp},
		{"greeting", "നമസ്കാരം", IntentGreeting},
		{"add with verb", "അരി വേണം", IntentBillingAdd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.DetectIntent(tt.input)
			assert.Equal(t, tt.expected, result.Intent)
			assert.GreaterOrEqual(t, result.Confidence, scoredAcceptThreshold)
			assert.Equal(t, "local", result.Source)
		})
	}
}

func TestDetectIntentEnglish(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		input    string
		expected Intent
	}{
		{"what is the total", IntentBillingTotal},
		{"show qr for upi", IntentPaymentUPI},
		{"cash payment", IntentPaymentCash},
		{"low stock items", IntentInventoryLow},
		{"today's sales", IntentReportToday},
		{"cancel that", IntentCancel},
		{"help me", IntentHelp},
		{"hello", IntentGreeting},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := c.DetectIntent(tt.input)
			assert.Equal(t, tt.expected, result.Intent)
		})
	}
}

func TestDetectIntentConfidenceScores(t *testing.T) {
	c := newTestClassifier(t)

	// Pattern plus keyword: 0.5 + 0.3 at weight 1.0.
	result := c.DetectIntent("ടോട്ടൽ എത്ര")
	assert.Equal(t, IntentBillingTotal, result.Intent)
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)

	result = c.DetectIntent("അരി വേണ്ട")
	assert.Equal(t, IntentBillingRemove, result.Intent)
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)
}

func TestDetectIntentExtractsEntities(t *testing.T) {
	c := newTestClassifier(t)

	result := c.DetectIntent("അര കിലോ അരി വേണം")
	assert.Equal(t, IntentBillingAdd, result.Intent)
	assert.Equal(t, "Rice", result.Entities.Product)
	assert.Equal(t, "അരി", result.Entities.ProductMl)
	require.NotNil(t, result.Entities.Quantity)
	assert.Equal(t, 0.5, *result.Entities.Quantity)
	assert.Equal(t, catalog.UnitKg, result.Entities.Unit)
	require.NotNil(t, result.Entities.Price)
	assert.Greater(t, *result.Entities.Price, 0.0)
}

func TestDetectIntentRemoveKeepsProductEntity(t *testing.T) {
	c := newTestClassifier(t)

	result := c.DetectIntent("അരി വേണ്ട")
	assert.Equal(t, IntentBillingRemove, result.Intent)
	assert.Equal(t, "Rice", result.Entities.Product,
		"the product boost must not steal a clear remove command")
}

// A bare product name with no verb is how shopkeepers actually talk;
// the presence of a catalog product forces billing.add.
func TestProductBoost(t *testing.T) {
	c := newTestClassifier(t)

	result := c.DetectIntent("അര കിലോ അരി")
	assert.Equal(t, IntentBillingAdd, result.Intent)
	assert.GreaterOrEqual(t, result.Confidence, boostedMinConf)

	c.SetProductBoost(false)
	result = c.DetectIntent("അര കിലോ അരി")
	assert.Equal(t, IntentFallback, result.Intent)
}

func TestDetectIntentFallback(t *testing.T) {
	c := newTestClassifier(t)

	result := c.DetectIntent("xyzabc qwerty")
	assert.Equal(t, IntentFallback, result.Intent)
	assert.Less(t, result.Confidence, scoredAcceptThreshold)

	result = c.DetectIntent("")
	assert.Equal(t, IntentFallback, result.Intent)
}

func TestDetectIntentNeverExceedsCap(t *testing.T) {
	c := newTestClassifier(t)

	for _, input := range []string{
		"ടോട്ടൽ ആകെ മൊത്തം എത്ര ആയി total",
		"അരി വേണം add വേണം",
		"സ്റ്റോക്ക് ബാക്കി stock inventory",
	} {
		result := c.DetectIntent(input)
		assert.LessOrEqual(t, result.Confidence, maxConfidence, "input %q", input)
	}
}

func TestValidateIntent(t *testing.T) {
	product := Entities{Product: "Rice", ProductMl: "അരി"}
	empty := Entities{}

	assert.NoError(t, ValidateIntent(IntentBillingAdd, product))
	assert.Error(t, ValidateIntent(IntentBillingAdd, empty))
	assert.Error(t, ValidateIntent(IntentBillingRemove, empty))

	// Intents that do not reference a product need no entities.
	assert.NoError(t, ValidateIntent(IntentBillingTotal, empty))
	assert.NoError(t, ValidateIntent(IntentConfirm, empty))
	assert.NoError(t, ValidateIntent(IntentFallback, empty))
}
