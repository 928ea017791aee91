package nlu

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/KadaVoice/pos-service/internal/core/catalog"
)

var digitRe = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

// Closed vocabulary of Malayalam, transliterated and English number words.
// Fractions 0.25/0.5/0.75 and the integers shopkeepers actually say.
var numberWords = map[string]float64{
	"കാൽ":           0.25,
	"അര":            0.5,
	"മുക്കാൽ":       0.75,
	"ഒന്ന്":         1,
	"ഒരു":           1,
	"രണ്ട്":         2,
	"മൂന്ന്":        3,
	"നാല്":          4,
	"അഞ്ച്":         5,
	"ആറ്":           6,
	"ഏഴ്":           7,
	"എട്ട്":         8,
	"ഒമ്പത്":        9,
	"ഒൻപത്":         9,
	"പത്ത്":         10,
	"പതിനഞ്ച്":      15,
	"ഇരുപത്":        20,
	"ഇരുപത്തഞ്ച്":   25,
	"ഇരുപത്തിയഞ്ച്": 25,
	"മുപ്പത്":       30,
	"അമ്പത്":        50,
	"നൂറ്":          100,

	"kal":        0.25,
	"ara":        0.5,
	"mukkal":     0.75,
	"onnu":       1,
	"oru":        1,
	"randu":      2,
	"rendu":      2,
	"moonu":      3,
	"moonnu":     3,
	"nalu":       4,
	"naalu":      4,
	"anju":       5,
	"aaru":       6,
	"ezhu":       7,
	"ettu":       8,
	"onpathu":    9,
	"ombathu":    9,
	"pathu":      10,
	"pathinanju": 15,
	"irupathu":   20,
	"muppathu":   30,
	"anpathu":    50,
	"ambathu":    50,
	"nooru":      100,

	"quarter":     0.25,
	"half":        0.5,
	"one":         1,
	"two":         2,
	"three":       3,
	"four":        4,
	"five":        5,
	"six":         6,
	"seven":       7,
	"eight":       8,
	"nine":        9,
	"ten":         10,
	"fifteen":     15,
	"twenty":      20,
	"twenty five": 25,
	"thirty":      30,
	"fifty":       50,
	"hundred":     100,
}

var unitWords = map[string]catalog.Unit{
	"കിലോഗ്രാം": catalog.UnitKg,
	"കിലോ":      catalog.UnitKg,
	"kilogram":  catalog.UnitKg,
	"kilo":      catalog.UnitKg,
	"kg":        catalog.UnitKg,

	"ഗ്രാം": catalog.UnitGram,
	"grams": catalog.UnitGram,
	"gram":  catalog.UnitGram,
	"gm":    catalog.UnitGram,
	"g":     catalog.UnitGram,

	"ലിറ്റർ": catalog.UnitLitre,
	"litre":  catalog.UnitLitre,
	"liter":  catalog.UnitLitre,
	"ltr":    catalog.UnitLitre,
	"l":      catalog.UnitLitre,

	"മില്ലി": catalog.UnitMl,
	"milli":  catalog.UnitMl,
	"ml":     catalog.UnitMl,

	"എണ്ണം":  catalog.UnitPiece,
	"pieces": catalog.UnitPiece,
	"piece":  catalog.UnitPiece,
	"pcs":    catalog.UnitPiece,
	"nos":    catalog.UnitPiece,

	"പാക്കറ്റ്": catalog.UnitPack,
	"packets":   catalog.UnitPack,
	"packet":    catalog.UnitPack,
	"pack":      catalog.UnitPack,
}

// Keys sorted longest first so "കിലോഗ്രാം" is tried before "കിലോ" and
// "twenty five" before "twenty".
var (
	numberKeys = sortedKeysByLength(numberWords)
	unitKeys   = sortedUnitKeys(unitWords)
)

func sortedKeysByLength(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortLongestFirst(keys)
	return keys
}

func sortedUnitKeys(m map[string]catalog.Unit) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortLongestFirst(keys)
	return keys
}

func sortLongestFirst(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(keys[i]), utf8.RuneCountInString(keys[j])
		if li != lj {
			return li > lj
		}
		return keys[i] < keys[j]
	})
}

// isWordRune treats combining marks as word characters. Malayalam vowel
// signs are marks, so "അര" followed by the sign "ി" (as in "അരി") is not a
// word boundary and must not match the number word for 0.5.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// containsWholeWord reports whether key occurs in text bounded by
// non-word runes (or the ends of the string) on both sides.
func containsWholeWord(text, key string) bool {
	for start := 0; start <= len(text)-len(key); {
		i := strings.Index(text[start:], key)
		if i < 0 {
			return false
		}
		i += start

		boundedLeft := i == 0
		if !boundedLeft {
			r, _ := utf8.DecodeLastRuneInString(text[:i])
			boundedLeft = !isWordRune(r)
		}

		boundedRight := i+len(key) == len(text)
		if !boundedRight {
			r, _ := utf8.DecodeRuneInString(text[i+len(key):])
			boundedRight = !isWordRune(r)
		}

		if boundedLeft && boundedRight {
			return true
		}
		start = i + len(key)
	}
	return false
}

// ExtractQuantity pulls a quantity out of a text span. Explicit numerals
// always win over number words; when neither is present the quantity is 1.
func ExtractQuantity(text string) float64 {
	if m := digitRe.FindString(text); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return v
		}
	}

	lower := strings.ToLower(text)
	for _, key := range numberKeys {
		if containsWholeWord(lower, key) {
			return numberWords[key]
		}
	}

	return 1
}

// FindUnit scans the unit vocabulary, longest key first, and reports
// whether an explicit unit word is present in the span.
func FindUnit(text string) (catalog.Unit, bool) {
	lower := strings.ToLower(text)
	for _, key := range unitKeys {
		if containsWholeWord(lower, key) {
			return unitWords[key], true
		}
	}
	return "", false
}

// ExtractUnit returns the unit word found in the span, defaulting to piece.
// Callers that know the product's natural unit should prefer FindUnit and
// apply their own default.
func ExtractUnit(text string) catalog.Unit {
	if u, ok := FindUnit(text); ok {
		return u
	}
	return catalog.UnitPiece
}
