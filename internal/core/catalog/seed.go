package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed data/products.json
var seedData []byte

// Seed returns the built-in product catalog. It is used when no database is
// configured or the products table is empty, so a fresh deployment can
// answer voice commands out of the box.
func Seed() ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(seedData, &products); err != nil {
		return nil, fmt.Errorf("failed to parse embedded catalog: %w", err)
	}
	return products, nil
}
