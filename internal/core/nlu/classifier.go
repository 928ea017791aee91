package nlu

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	patternScore   = 0.5
	keywordScore   = 0.3
	maxConfidence  = 0.95
	boostedMinConf = 0.8

	// scoredAcceptThreshold is the confidence below which the scored tier
	// is considered weak and the legacy pattern tier gets a chance.
	scoredAcceptThreshold = 0.6
)

// intentMatcher scores one intent: patterns run against the raw text,
// keywords are substring-checked against the normalized text.
type intentMatcher struct {
	intent   Intent
	patterns []*regexp.Regexp
	keywords []string
	weight   float64
}

// legacyMatcher is the simple compat tier: any pattern hit yields a flat
// 0.7 confidence.
type legacyMatcher struct {
	intent   Intent
	patterns []*regexp.Regexp
}

const legacyConfidence = 0.7

// strategyStep is one entry of the ranked classification pipeline: run the
// strategy, accept its answer outright when confidence clears minAccept,
// otherwise keep it as a candidate and fall through.
type strategyStep struct {
	name      string
	run       func(text, normalized string) ClassifiedIntent
	minAccept float64
}

// Classifier turns one utterance into an intent plus entity bag. It is
// stateless per call; multi-turn context (a "confirm" answering a pending
// prompt) is the caller's job.
type Classifier struct {
	matchers []intentMatcher
	legacy   []legacyMatcher
	pipeline []strategyStep
	matcher  *Matcher

	// productBoost is the named heuristic that treats a detected product
	// as strong evidence of a billing action. Disable it to test the raw
	// pattern scores.
	productBoost bool
}

func NewClassifier(matcher *Matcher) *Classifier {
	c := &Classifier{
		matchers:     defaultMatchers(),
		legacy:       defaultLegacyMatchers(),
		matcher:      matcher,
		productBoost: true,
	}
	c.pipeline = []strategyStep{
		{name: "scored", run: c.runScored, minAccept: scoredAcceptThreshold},
		{name: "legacy", run: c.runLegacy, minAccept: 0},
	}
	return c
}

// SetProductBoost toggles the product-presence boost heuristic.
func (c *Classifier) SetProductBoost(enabled bool) {
	c.productBoost = enabled
}

// DetectIntent classifies an utterance. It never fails: text no matcher
// recognizes resolves to the fallback intent with near-zero confidence.
func (c *Classifier) DetectIntent(text string) ClassifiedIntent {
	normalized := Normalize(text)

	best := ClassifiedIntent{Intent: IntentFallback, Confidence: 0, Source: "local"}
	for _, step := range c.pipeline {
		result := step.run(text, normalized)
		if result.Confidence > best.Confidence {
			best = result
		}
		if result.Confidence >= step.minAccept && result.Intent != IntentFallback {
			break
		}
	}

	best.Entities = c.extractEntities(text)
	best = c.applyProductBoost(best)
	best.Source = "local"
	return best
}

// extractEntities runs quantity, unit and product extraction against the
// whole utterance, independent of which intent won.
func (c *Classifier) extractEntities(text string) Entities {
	var entities Entities

	if match := c.matcher.FindProduct(text); match != nil {
		entities.Product = match.Name
		entities.ProductMl = match.NameMl
		price := match.Price
		entities.Price = &price

		if unit, ok := FindUnit(text); ok {
			entities.Unit = unit
		} else {
			entities.Unit = match.Unit
		}
	} else if unit, ok := FindUnit(text); ok {
		entities.Unit = unit
	}

	quantity := ExtractQuantity(text)
	entities.Quantity = &quantity

	return entities
}

// applyProductBoost forces billing.add when a product was detected and the
// classification is either already billing.add or too vague to argue:
// a shopkeeper naming a product is almost always adding it to the bill.
func (c *Classifier) applyProductBoost(result ClassifiedIntent) ClassifiedIntent {
	if !c.productBoost || !result.Entities.HasProduct() {
		return result
	}
	if result.Intent != IntentBillingAdd && result.Intent != IntentFallback {
		return result
	}

	result.Intent = IntentBillingAdd
	if result.Confidence < boostedMinConf {
		result.Confidence = boostedMinConf
	}
	return result
}

func (c *Classifier) runScored(text, normalized string) ClassifiedIntent {
	best := ClassifiedIntent{Intent: IntentFallback, Confidence: 0}

	for _, m := range c.matchers {
		score := 0.0
		for _, p := range m.patterns {
			if p.MatchString(text) {
				score += patternScore
				break
			}
		}
		for _, kw := range m.keywords {
			if strings.Contains(normalized, kw) {
				score += keywordScore
			}
		}
		if score == 0 {
			continue
		}

		confidence := score * m.weight
		if confidence > maxConfidence {
			confidence = maxConfidence
		}

		// Strictly greater: ties keep the first-seen matcher, so the
		// table order is part of the contract.
		if confidence > best.Confidence {
			best = ClassifiedIntent{Intent: m.intent, Confidence: confidence}
		}
	}

	return best
}

func (c *Classifier) runLegacy(text, normalized string) ClassifiedIntent {
	for _, m := range c.legacy {
		for _, p := range m.patterns {
			if p.MatchString(text) || p.MatchString(normalized) {
				return ClassifiedIntent{Intent: m.intent, Confidence: legacyConfidence}
			}
		}
	}
	return ClassifiedIntent{Intent: IntentFallback, Confidence: 0}
}

// ValidateIntent guards intents that are meaningless without a product
// entity, regardless of how confident the classifier was. Callers should
// re-prompt when this fails.
func ValidateIntent(intent Intent, entities Entities) error {
	switch intent {
	case IntentBillingAdd, IntentBillingRemove:
		if !entities.HasProduct() {
			return fmt.Errorf("intent %s requires a product entity", intent)
		}
	}
	return nil
}

func defaultMatchers() []intentMatcher {
	return []intentMatcher{
		{
			intent: IntentBillingTotal,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`ടോട്ടൽ|ആകെ|മൊത്തം`),
				regexp.MustCompile(`(?i)\btotal\b|how much`),
			},
			keywords: []string{"എത്ര", "ആയി", "total"},
			weight:   1.0,
		},
		{
			intent: IntentBillingRemove,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`വേണ്ട|ഒഴിവാക്ക|മാറ്റിക്കോ|എടുത്തുകള`),
				regexp.MustCompile(`(?i)\bremove\b|\bdelete\b|don'?t want`),
			},
			keywords: []string{"വേണ്ട", "remove"},
			weight:   1.0,
		},
		{
			intent: IntentBillingComplete,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`ബിൽ (അടിക്ക|ചെയ്യ)|ബില്ല് ആക്ക|കഴിഞ്ഞു`),
				regexp.MustCompile(`(?i)complete|finish|done billing|checkout`),
			},
			keywords: []string{"ബിൽ", "bill"},
			weight:   0.9,
		},
		{
			intent: IntentPaymentUPI,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`ജിപേ|ഗൂഗിൾ പേ|യുപിഐ|ക്യുആർ`),
				regexp.MustCompile(`(?i)\bupi\b|\bgpay\b|google pay|\bqr\b|phonepe`),
			},
			keywords: []string{"സ്കാൻ", "scan"},
			weight:   1.0,
		},
		{
			intent: IntentPaymentCash,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`കാശ്|റൊക്കം|പണം തന്ന`),
				regexp.MustCompile(`(?i)\bcash\b`),
			},
			keywords: []string{"കാശ്", "cash"},
			weight:   1.0,
		},
		{
			intent: IntentInventoryLow,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`തീരാറായ|തീർന്ന|സ്റ്റോക്ക് കുറവ`),
				regexp.MustCompile(`(?i)low stock|running (out|low)|out of stock`),
			},
			keywords: []string{"കുറവ്", "low"},
			weight:   1.0,
		},
		{
			intent: IntentInventoryCheck,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`സ്റ്റോക്ക്|ബാക്കി എത്ര|എത്ര ഉണ്ട`),
				regexp.MustCompile(`(?i)\bstock\b|\binventory\b|how many left`),
			},
			keywords: []string{"സ്റ്റോക്ക്", "stock", "ബാക്കി"},
			weight:   0.9,
		},
		{
			intent: IntentReportToday,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`ഇന്നത്തെ (കണക്ക്|വിൽപ്പന|കച്ചവടം)`),
				regexp.MustCompile(`(?i)today'?s? (sales|report|business)`),
			},
			keywords: []string{"ഇന്നത്തെ", "ഇന്ന്", "today"},
			weight:   1.0,
		},
		{
			intent: IntentReportSales,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`കണക്ക്|വിൽപ്പന|കച്ചവടം|റിപ്പോർട്ട`),
				regexp.MustCompile(`(?i)\bsales\b|\breport\b`),
			},
			keywords: []string{"കണക്ക്", "report"},
			weight:   0.85,
		},
		{
			intent: IntentConfirm,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`ശരി|അതെ|ആയിക്കോട്ടെ|ഓക്കെ`),
				regexp.MustCompile(`(?i)^(yes|ok|okay|sure|confirm)\b`),
			},
			keywords: []string{"ശരി", "yes"},
			weight:   0.9,
		},
		{
			intent: IntentCancel,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`ക്യാൻസൽ|റദ്ദാക്ക|നിർത്ത`),
				regexp.MustCompile(`(?i)\bcancel\b|\bstop\b|never mind`),
			},
			keywords: []string{"ക്യാൻസൽ", "cancel"},
			weight:   1.0,
		},
		{
			intent: IntentHelp,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`സഹായം|സഹായിക്ക|എങ്ങനെ`),
				regexp.MustCompile(`(?i)\bhelp\b|what can you do`),
			},
			keywords: []string{"സഹായം", "help"},
			weight:   1.0,
		},
		{
			intent: IntentGreeting,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`നമസ്കാരം|ഹലോ|സുപ്രഭാതം`),
				regexp.MustCompile(`(?i)^(hello|hi|hey|good (morning|evening|afternoon))\b`),
			},
			keywords: []string{"നമസ്കാരം", "ഹലോ", "hello"},
			weight:   0.9,
		},
		{
			intent: IntentBillingAdd,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`വേണം|ചേർക്ക|എടുക്ക|തരൂ|താ$`),
				regexp.MustCompile(`(?i)\badd\b|\bgive\b|i (want|need)`),
			},
			keywords: []string{"വേണം", "add"},
			weight:   0.9,
		},
	}
}

func defaultLegacyMatchers() []legacyMatcher {
	return []legacyMatcher{
		{intent: IntentBillingTotal, patterns: []*regexp.Regexp{regexp.MustCompile(`എത്ര ആയി|(?i)\btotal\b`)}},
		{intent: IntentBillingRemove, patterns: []*regexp.Regexp{regexp.MustCompile(`വേണ്ട`)}},
		{intent: IntentPaymentUPI, patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)pay online|പേ ചെയ്യ`)}},
		{intent: IntentBillingComplete, patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)\bbill\b|ബിൽ`)}},
		{intent: IntentBillingAdd, patterns: []*regexp.Regexp{regexp.MustCompile(`വേണം|(?i)\bwant\b`)}},
		{intent: IntentHelp, patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)\bhelp\b`)}},
	}
}
