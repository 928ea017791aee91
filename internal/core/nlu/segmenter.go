package nlu

import (
	"regexp"
	"strings"

	"github.com/KadaVoice/pos-service/internal/core/catalog"
)

// ParsedItem is one item extracted from an utterance segment. It lives for
// a single request; the caller applies it to the cart and drops it.
type ParsedItem struct {
	RawText    string       `json:"raw_text"`
	Product    string       `json:"product"`
	ProductMl  string       `json:"product_ml"`
	Quantity   float64      `json:"quantity"`
	Unit       catalog.Unit `json:"unit"`
	Confidence float64      `json:"confidence"`
}

var (
	// Explicit separators between items: comma, the Malayalam connectives
	// (standalone ഉം and the suffixed form ും), പിന്നെ, കൂടി, and the
	// English "and"/"also".
	separatorRe = regexp.MustCompile(`(?i),|\band\b|\balso\b|പിന്നെ|കൂടി|ഉം|ും`)

	digitBoundaryRe  *regexp.Regexp
	mlWordBoundaryRe *regexp.Regexp
)

func init() {
	unitAlt := quoteAlternation(unitKeys)

	var mlNumbers []string
	for _, key := range numberKeys {
		if isMalayalam(key) {
			mlNumbers = append(mlNumbers, key)
		}
	}
	mlNumAlt := quoteAlternation(mlNumbers)

	// A non-digit token followed by a fresh "<number> <unit>" expression
	// marks the start of the next item even without a comma, as in
	// "10 kg അരി 10 kg ഗോതമ്പ്".
	digitBoundaryRe = regexp.MustCompile(`([^0-9\s,])\s+([0-9]+(?:\.[0-9]+)?\s*(?:` + unitAlt + `))`)
	mlWordBoundaryRe = regexp.MustCompile(`(\S)\s+((?:` + mlNumAlt + `)\s+(?:` + unitAlt + `))`)
}

func quoteAlternation(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return strings.Join(quoted, "|")
}

func isMalayalam(s string) bool {
	for _, r := range s {
		return r >= 0x0D00 && r <= 0x0D7F
	}
	return false
}

// Segmenter splits one utterance into per-item segments and parses each of
// them with the product matcher and the quantity/unit extractor.
type Segmenter struct {
	matcher *Matcher
}

func NewSegmenter(matcher *Matcher) *Segmenter {
	return &Segmenter{matcher: matcher}
}

// ParseItems extracts every recognizable item from the utterance, in the
// order they were spoken. Segments with no product match are dropped
// silently; a connector word or trailing noise is not an error.
func (s *Segmenter) ParseItems(utterance string) []ParsedItem {
	pre := insertImplicitBoundaries(utterance)

	var items []ParsedItem
	for _, segment := range separatorRe.Split(pre, -1) {
		if item := s.parseSegment(segment); item != nil {
			items = append(items, *item)
		}
	}

	// A single-item utterance can contain a separator-looking substring;
	// if splitting produced nothing, try the whole text as one segment.
	if len(items) == 0 {
		if item := s.parseSegment(utterance); item != nil {
			items = append(items, *item)
		}
	}

	return items
}

func (s *Segmenter) parseSegment(segment string) *ParsedItem {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return nil
	}

	match := s.matcher.FindProduct(segment)
	if match == nil {
		return nil
	}

	unit, found := FindUnit(segment)
	if !found {
		// No explicit unit word: the product's natural unit is a better
		// default than piece (oils sell by the litre, rice by the kilo).
		unit = match.Unit
	}

	return &ParsedItem{
		RawText:    segment,
		Product:    match.Name,
		ProductMl:  match.NameMl,
		Quantity:   ExtractQuantity(segment),
		Unit:       unit,
		Confidence: match.Confidence,
	}
}

// insertImplicitBoundaries puts a virtual comma before every quantity
// expression that starts a new item, one pass keyed off digits and one off
// Malayalam number words.
func insertImplicitBoundaries(text string) string {
	text = digitBoundaryRe.ReplaceAllString(text, "${1}, ${2}")
	text = mlWordBoundaryRe.ReplaceAllString(text, "${1}, ${2}")
	return text
}
