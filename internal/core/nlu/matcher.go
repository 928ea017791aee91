package nlu

import (
	"strings"

	"github.com/KadaVoice/pos-service/internal/core/catalog"
)

const (
	exactMatchConfidence = 0.95
	fuzzyThreshold       = 0.6
	minFuzzyWordLen      = 3
)

// ProductMatch is the result of resolving a text span against the catalog.
type ProductMatch struct {
	Name       string
	NameMl     string
	Unit       catalog.Unit
	Price      float64
	Confidence float64
}

// Matcher resolves free text to catalog products, first by exact alias
// containment and then by bigram similarity. It is immutable after
// construction and safe for concurrent use.
type Matcher struct {
	index *catalog.Index
}

func NewMatcher(index *catalog.Index) *Matcher {
	return &Matcher{index: index}
}

// FindProduct returns the best catalog match for a text span, or nil when
// no alias is contained in it and nothing clears the fuzzy threshold.
// Returning nil is the normal "no product here" outcome, not an error.
func (m *Matcher) FindProduct(text string) *ProductMatch {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	// Fast path: alias keys are sorted longest first, so the most specific
	// product wins when one alias contains another.
	for _, key := range m.index.AliasKeys() {
		if strings.Contains(normalized, key) {
			if p, ok := m.index.Lookup(key); ok {
				return matchFor(p, exactMatchConfidence)
			}
		}
	}

	// Fuzzy fallback: compare each reasonably long word against every
	// alias and keep the best-scoring pair.
	var best *ProductMatch
	for _, word := range strings.Fields(normalized) {
		if len([]rune(word)) < minFuzzyWordLen {
			continue
		}
		for _, key := range m.index.AliasKeys() {
			score := diceCoefficient(word, key)
			if score <= fuzzyThreshold {
				continue
			}
			if best == nil || score > best.Confidence {
				if p, ok := m.index.Lookup(key); ok {
					best = matchFor(p, score)
				}
			}
		}
	}

	return best
}

func matchFor(p *catalog.Product, confidence float64) *ProductMatch {
	return &ProductMatch{
		Name:       p.NameEn,
		NameMl:     p.NameMl,
		Unit:       p.Unit,
		Price:      p.Price,
		Confidence: confidence,
	}
}

// diceCoefficient computes bigram overlap similarity between two strings:
// 2*|A∩B| / (|A|+|B|) over rune bigrams. Strings shorter than two runes
// compare by exact equality only.
func diceCoefficient(a, b string) float64 {
	if a == b {
		return 1
	}

	ra, rb := []rune(a), []rune(b)
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	counts := make(map[string]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		counts[string(ra[i:i+2])]++
	}

	overlap := 0
	for i := 0; i < len(rb)-1; i++ {
		bg := string(rb[i : i+2])
		if counts[bg] > 0 {
			counts[bg]--
			overlap++
		}
	}

	return 2 * float64(overlap) / float64(len(ra)-1+len(rb)-1)
}
