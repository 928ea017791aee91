package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProducts() []Product {
	return []Product{
		{
			NameEn:  "Rice",
			NameMl:  "അരി",
			Aliases: []string{"ari", "rice", "മട്ട അരി"},
			Unit:    UnitKg,
			Price:   52,
		},
		{
			NameEn:  "Sugar",
			NameMl:  "പഞ്ചസാര",
			Aliases: []string{"panchasara", "sugar"},
			Unit:    UnitKg,
			Price:   44,
		},
		{
			NameEn:  "Soap",
			NameMl:  "സോപ്പ്",
			Aliases: []string{"soap", "soppu"},
			Unit:    UnitPiece,
			Price:   35,
		},
	}
}

func TestNewIndex(t *testing.T) {
	idx, err := NewIndex(testProducts())
	require.NoError(t, err)

	assert.Equal(t, 3, idx.Len())

	p, ok := idx.Lookup("ari")
	require.True(t, ok)
	assert.Equal(t, "Rice", p.NameEn)

	// Canonical names and Malayalam names are aliases too, lowercased.
	p, ok = idx.Lookup("rice")
	require.True(t, ok)
	assert.Equal(t, "Rice", p.NameEn)

	p, ok = idx.Lookup("പഞ്ചസാര")
	require.True(t, ok)
	assert.Equal(t, "Sugar", p.NameEn)

	_, ok = idx.Lookup("unknown")
	assert.False(t, ok)
}

func TestNewIndexRejectsDuplicateAlias(t *testing.T) {
	products := testProducts()
	products[1].Aliases = append(products[1].Aliases, "ari")

	_, err := NewIndex(products)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ari")
}

func TestNewIndexRejectsDuplicateCanonicalName(t *testing.T) {
	products := testProducts()
	products[2].NameEn = "Rice"
	products[2].NameMl = "വേറെ"
	products[2].Aliases = nil

	_, err := NewIndex(products)
	require.Error(t, err)
}

func TestNewIndexRejectsMissingName(t *testing.T) {
	products := testProducts()
	products[0].NameEn = ""

	_, err := NewIndex(products)
	require.Error(t, err)
}

func TestNewIndexAllowsRepeatedAliasWithinProduct(t *testing.T) {
	products := testProducts()
	// The canonical name repeated as an explicit alias is not a conflict.
	products[0].Aliases = append(products[0].Aliases, "Rice")

	_, err := NewIndex(products)
	require.NoError(t, err)
}

func TestAliasKeysLongestFirst(t *testing.T) {
	idx, err := NewIndex(testProducts())
	require.NoError(t, err)

	keys := idx.AliasKeys()
	require.NotEmpty(t, keys)
	for i := 1; i < len(keys); i++ {
		assert.GreaterOrEqual(t, len(keys[i-1]), len(keys[i]),
			"alias keys must be sorted longest first: %q before %q", keys[i-1], keys[i])
	}
}

func TestProductsSorted(t *testing.T) {
	idx, err := NewIndex(testProducts())
	require.NoError(t, err)

	products := idx.Products()
	require.Len(t, products, 3)
	assert.Equal(t, "Rice", products[0].NameEn)
	assert.Equal(t, "Soap", products[1].NameEn)
	assert.Equal(t, "Sugar", products[2].NameEn)
}

func TestSeedBuildsValidIndex(t *testing.T) {
	products, err := Seed()
	require.NoError(t, err)
	require.NotEmpty(t, products)

	idx, err := NewIndex(products)
	require.NoError(t, err)
	assert.Equal(t, len(products), idx.Len())

	// The staples every kirana carries must be in the seed.
	for _, name := range []string{"Rice", "Sugar", "Soap", "Milk", "Coconut Oil"} {
		_, ok := idx.Product(name)
		assert.True(t, ok, "seed catalog is missing %s", name)
	}
}
