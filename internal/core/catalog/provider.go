package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KadaVoice/pos-service/pkg/telemetry"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("catalog-provider")

// Querier is the subset of the pgx pool the provider needs. Both the raw
// pool and the instrumented pool wrapper satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// Provider loads the product catalog from Postgres at startup. The parser
// core never talks to the database itself; it only sees the resulting
// immutable Index.
type Provider struct {
	db     Querier
	logger *slog.Logger
}

func NewProvider(db Querier, logger *slog.Logger) *Provider {
	return &Provider{
		db:     db,
		logger: logger,
	}
}

// LoadProducts reads all catalog rows. An empty result is not an error;
// callers fall back to the embedded seed.
func (p *Provider) LoadProducts(ctx context.Context) ([]Product, error) {
	ctx, span := tracer.Start(ctx, "catalog.LoadProducts")
	defer span.End()

	query := `
		SELECT id, name_en, name_ml, aliases, unit, price, cost_price,
		       category, min_stock, shelf_location, created_at, updated_at
		FROM products
		ORDER BY category, name_en
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		if telemetry.DatabaseErrorsTotal != nil {
			telemetry.DatabaseErrorsTotal.Add(ctx, 1,
				api.WithAttributes(attribute.String("operation", "load_products")))
		}
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var product Product
		err := rows.Scan(
			&product.ID,
			&product.NameEn,
			&product.NameMl,
			&product.Aliases,
			&product.Unit,
			&product.Price,
			&product.CostPrice,
			&product.Category,
			&product.MinStock,
			&product.ShelfLocation,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			p.logger.Error("Failed to scan product row", "error", err)
			continue
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	p.logger.Debug("Loaded products from database", "count", len(products))
	return products, nil
}

// LoadIndex builds the alias index from the database, falling back to the
// embedded seed when the table is empty or the database is unavailable.
func (p *Provider) LoadIndex(ctx context.Context) (*Index, error) {
	var products []Product

	if p.db != nil {
		loaded, err := p.LoadProducts(ctx)
		if err != nil {
			p.logger.Warn("Catalog load from database failed, using embedded seed", "error", err)
		} else if len(loaded) == 0 {
			p.logger.Info("Products table is empty, using embedded seed")
		} else {
			products = loaded
		}
	}

	if products == nil {
		seed, err := Seed()
		if err != nil {
			return nil, err
		}
		products = seed
	}

	idx, err := NewIndex(products)
	if err != nil {
		return nil, fmt.Errorf("failed to build alias index: %w", err)
	}

	p.logger.Info("Catalog index ready",
		"products", idx.Len(),
		"aliases", len(idx.AliasKeys()))

	return idx, nil
}
