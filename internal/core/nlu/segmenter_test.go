package nlu

import (
	"testing"

	"github.com/KadaVoice/pos-service/internal/core/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSegmenter(t *testing.T) *Segmenter {
	t.Helper()
	return NewSegmenter(NewMatcher(newTestIndex(t)))
}

func TestParseItemsSingle(t *testing.T) {
	s := newTestSegmenter(t)

	items := s.ParseItems("10 kg അരി")
	require.Len(t, items, 1)
	assert.Equal(t, "Rice", items[0].Product)
	assert.Equal(t, "അരി", items[0].ProductMl)
	assert.Equal(t, 10.0, items[0].Quantity)
	assert.Equal(t, catalog.UnitKg, items[0].Unit)
}

func TestParseItemsCommaSeparated(t *testing.T) {
	s := newTestSegmenter(t)

	items := s.ParseItems("10 kg അരി, 2 kg പഞ്ചസാര, ഒരു സോപ്പ്")
	require.Len(t, items, 3)

	assert.Equal(t, "Rice", items[0].Product)
	assert.Equal(t, 10.0, items[0].Quantity)
	assert.Equal(t, catalog.UnitKg, items[0].Unit)

	assert.Equal(t, "Sugar", items[1].Product)
	assert.Equal(t, 2.0, items[1].Quantity)
	assert.Equal(t, catalog.UnitKg, items[1].Unit)

	assert.Equal(t, "Soap", items[2].Product)
	assert.Equal(t, 1.0, items[2].Quantity)
	assert.Equal(t, catalog.UnitPiece, items[2].Unit, "no unit word means the product's natural unit")
}

func TestParseItemsMalayalamConnectives(t *testing.T) {
	s := newTestSegmenter(t)

	// Suffixed ും on each item: "rice and sugar wanted".
	items := s.ParseItems("അരിയും പഞ്ചസാരയും വേണം")
	require.Len(t, items, 2)
	assert.Equal(t, "Rice", items[0].Product)
	assert.Equal(t, "Sugar", items[1].Product)

	items = s.ParseItems("അര കിലോ അരി പിന്നെ ഒരു സോപ്പ്")
	require.Len(t, items, 2)
	assert.Equal(t, "Rice", items[0].Product)
	assert.Equal(t, 0.5, items[0].Quantity)
	assert.Equal(t, "Soap", items[1].Product)
	assert.Equal(t, 1.0, items[1].Quantity)
}

func TestParseItemsEnglishConnectives(t *testing.T) {
	s := newTestSegmenter(t)

	items := s.ParseItems("2 kg rice and one soap")
	require.Len(t, items, 2)
	assert.Equal(t, "Rice", items[0].Product)
	assert.Equal(t, 2.0, items[0].Quantity)
	assert.Equal(t, "Soap", items[1].Product)
	assert.Equal(t, 1.0, items[1].Quantity)
}

// Spoken lists often have no comma at all: a fresh "<number> <unit>" run
// marks the next item.
func TestParseItemsImplicitBoundaries(t *testing.T) {
	s := newTestSegmenter(t)

	items := s.ParseItems("10 kg അരി 10 kg ഗോതമ്പ്")
	require.Len(t, items, 2)
	assert.Equal(t, "Rice", items[0].Product)
	assert.Equal(t, 10.0, items[0].Quantity)
	assert.Equal(t, "Wheat", items[1].Product)
	assert.Equal(t, 10.0, items[1].Quantity)

	items = s.ParseItems("അര കിലോ പഞ്ചസാര ഒരു കിലോ അരി")
	require.Len(t, items, 2)
	assert.Equal(t, "Sugar", items[0].Product)
	assert.Equal(t, 0.5, items[0].Quantity)
	assert.Equal(t, "Rice", items[1].Product)
	assert.Equal(t, 1.0, items[1].Quantity)
}

func TestParseItemsNaturalUnitDefaults(t *testing.T) {
	s := newTestSegmenter(t)

	// Oils default to litres, eggs to pieces, rice to kilos.
	items := s.ParseItems("വെളിച്ചെണ്ണ, രണ്ട് മുട്ട, അരി")
	require.Len(t, items, 3)
	assert.Equal(t, catalog.UnitLitre, items[0].Unit)
	assert.Equal(t, catalog.UnitPiece, items[1].Unit)
	assert.Equal(t, 2.0, items[1].Quantity)
	assert.Equal(t, catalog.UnitKg, items[2].Unit)
}

func TestParseItemsDropsUnmatchedSegments(t *testing.T) {
	s := newTestSegmenter(t)

	items := s.ParseItems("10 kg അരി, എന്തോ വേറെ")
	require.Len(t, items, 1)
	assert.Equal(t, "Rice", items[0].Product)
}

func TestParseItemsNothingRecognized(t *testing.T) {
	s := newTestSegmenter(t)

	assert.Empty(t, s.ParseItems("xyzabc qwerty"))
	assert.Empty(t, s.ParseItems(""))
	assert.Empty(t, s.ParseItems(", , ,"))
}

// Re-parsing an item's own RawText is stable: each segment parses back to
// the product, quantity and unit it produced the first time around.
func TestParseItemsRawTextRoundTrip(t *testing.T) {
	s := newTestSegmenter(t)

	for _, utterance := range []string{
		"10 kg അരി, 2 kg പഞ്ചസാര, ഒരു സോപ്പ്",
		"2.5 kg പഞ്ചസാര ഉം ഒരു സോപ്പ്",
		"അരിയും പഞ്ചസാരയും വേണം",
		"10 kg അരി 10 kg ഗോതമ്പ്",
	} {
		items := s.ParseItems(utterance)
		require.NotEmpty(t, items, "utterance %q", utterance)

		for _, item := range items {
			reparsed := s.ParseItems(item.RawText)
			require.Len(t, reparsed, 1, "raw text %q", item.RawText)
			assert.Equal(t, item.Product, reparsed[0].Product, "raw text %q", item.RawText)
			assert.Equal(t, item.Quantity, reparsed[0].Quantity, "raw text %q", item.RawText)
			assert.Equal(t, item.Unit, reparsed[0].Unit, "raw text %q", item.RawText)
		}
	}
}

func TestParseItemsDecimalQuantity(t *testing.T) {
	s := newTestSegmenter(t)

	// Quantities are read off the raw segment, before punctuation
	// normalization can eat the decimal point.
	items := s.ParseItems("2.5 kg പഞ്ചസാര")
	require.Len(t, items, 1)
	assert.Equal(t, 2.5, items[0].Quantity)
	assert.Equal(t, catalog.UnitKg, items[0].Unit)
}
