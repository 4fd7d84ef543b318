package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/pixelpalace/storefront-api/internal/postgres"
)

type catalogJSON struct {
	Categories []categoryJSON `json:"categories"`
	Products   []productJSON  `json:"products"`
}

type categoryJSON struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type productJSON struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  int             `json:"category_id"`
	Description string          `json:"description"`
	Subcategory string          `json:"subcategory"`
	Stock       int             `json:"stock"`
	Featured    bool            `json:"featured"`
	ImageURL    string          `json:"image_url"`
}

const upsertCategorySQL = `
INSERT INTO categories (category_id, name, description)
VALUES ($1, $2, $3)
ON CONFLICT (category_id) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description`

const upsertProductSQL = `
INSERT INTO products (product_id, name, price, category_id, description, subcategory, stock, featured, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (product_id) DO UPDATE SET
    name = EXCLUDED.name,
    price = EXCLUDED.price,
    category_id = EXCLUDED.category_id,
    description = EXCLUDED.description,
    subcategory = EXCLUDED.subcategory,
    stock = EXCLUDED.stock,
    featured = EXCLUDED.featured,
    image_url = EXCLUDED.image_url`

const bumpSequencesSQL = `
SELECT
    setval(pg_get_serial_sequence('categories', 'category_id'), (SELECT COALESCE(MAX(category_id), 1) FROM categories)),
    setval(pg_get_serial_sequence('products', 'product_id'), (SELECT COALESCE(MAX(product_id), 1) FROM products))`

func main() {
	var (
		databaseURL string
		catalogFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var catalog catalogJSON
	if err := json.Unmarshal(data, &catalog); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	slog.Info("upserting categories", slog.Int("count", len(catalog.Categories)))

	for _, c := range catalog.Categories {
		if _, err := pool.Exec(ctx, upsertCategorySQL, c.ID, c.Name, c.Description); err != nil {
			return errors.Wrapf(err, "upsert category %d", c.ID)
		}

		slog.Info("upserted category", slog.Int("id", c.ID), slog.String("name", c.Name))
	}

	slog.Info("upserting products", slog.Int("count", len(catalog.Products)))

	for _, p := range catalog.Products {
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Price, p.CategoryID, p.Description,
			p.Subcategory, p.Stock, p.Featured, p.ImageURL,
		); err != nil {
			return errors.Wrapf(err, "upsert product %d", p.ID)
		}

		slog.Info("upserted product", slog.Int("id", p.ID), slog.String("name", p.Name))
	}

	// Seeded rows carry explicit IDs, so advance the serial sequences past them.
	if _, err := pool.Exec(ctx, bumpSequencesSQL); err != nil {
		return errors.Wrap(err, "advance id sequences")
	}

	return nil
}
