package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Unit is one of the six quantity units a product can be sold in.
type Unit string

const (
	UnitKg    Unit = "kg"
	UnitGram  Unit = "g"
	UnitLitre Unit = "litre"
	UnitMl    Unit = "ml"
	UnitPiece Unit = "piece"
	UnitPack  Unit = "pack"
)

// Product is a single catalog entry. NameEn is the canonical identifier,
// NameMl is what gets spoken back to the customer. Aliases are only used
// for matching and are never displayed.
type Product struct {
	ID            uuid.UUID `json:"id,omitempty" db:"id"`
	NameEn        string    `json:"name_en" db:"name_en"`
	NameMl        string    `json:"name_ml" db:"name_ml"`
	Aliases       []string  `json:"aliases" db:"aliases"`
	Unit          Unit      `json:"unit" db:"unit"`
	Price         float64   `json:"price" db:"price"`
	CostPrice     float64   `json:"cost_price" db:"cost_price"`
	Category      string    `json:"category" db:"category"`
	MinStock      float64   `json:"min_stock" db:"min_stock"`
	ShelfLocation string    `json:"shelf_location" db:"shelf_location"`
	CreatedAt     time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// Index is the read-only alias lookup built once at startup. Every alias,
// including the canonical English and Malayalam names, maps to exactly one
// canonical product.
type Index struct {
	products map[string]*Product
	aliases  map[string]string
	keys     []string
}

// NewIndex builds the alias index. An alias claimed by two different
// products is a catalog bug and is rejected here rather than resolved by
// overwrite order.
func NewIndex(products []Product) (*Index, error) {
	idx := &Index{
		products: make(map[string]*Product, len(products)),
		aliases:  make(map[string]string),
	}

	for i := range products {
		p := &products[i]
		if p.NameEn == "" {
			return nil, fmt.Errorf("catalog entry %d has no canonical name", i)
		}
		if _, exists := idx.products[p.NameEn]; exists {
			return nil, fmt.Errorf("duplicate canonical product name %q", p.NameEn)
		}
		idx.products[p.NameEn] = p

		keys := make([]string, 0, len(p.Aliases)+2)
		keys = append(keys, p.NameEn, p.NameMl)
		keys = append(keys, p.Aliases...)

		for _, alias := range keys {
			key := strings.ToLower(strings.TrimSpace(alias))
			if key == "" {
				continue
			}
			if owner, exists := idx.aliases[key]; exists {
				if owner != p.NameEn {
					return nil, fmt.Errorf("alias %q claimed by both %q and %q", key, owner, p.NameEn)
				}
				continue
			}
			idx.aliases[key] = p.NameEn
			idx.keys = append(idx.keys, key)
		}
	}

	// Longer aliases first so that a containment scan prefers the most
	// specific product; ties break lexicographically for determinism.
	sort.Slice(idx.keys, func(i, j int) bool {
		if len(idx.keys[i]) != len(idx.keys[j]) {
			return len(idx.keys[i]) > len(idx.keys[j])
		}
		return idx.keys[i] < idx.keys[j]
	})

	return idx, nil
}

// Lookup resolves an alias key (already lowercased) to its product.
func (idx *Index) Lookup(alias string) (*Product, bool) {
	name, ok := idx.aliases[alias]
	if !ok {
		return nil, false
	}
	p, ok := idx.products[name]
	return p, ok
}

// Product returns a catalog entry by canonical English name.
func (idx *Index) Product(name string) (*Product, bool) {
	p, ok := idx.products[name]
	return p, ok
}

// AliasKeys returns all alias keys, longest first. The returned slice is
// shared and must not be mutated.
func (idx *Index) AliasKeys() []string {
	return idx.keys
}

// Products returns all catalog entries sorted by canonical name.
func (idx *Index) Products() []*Product {
	out := make([]*Product, 0, len(idx.products))
	for _, p := range idx.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NameEn < out[j].NameEn })
	return out
}

// Len reports the number of products in the catalog.
func (idx *Index) Len() int {
	return len(idx.products)
}
