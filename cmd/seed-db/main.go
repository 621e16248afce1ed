// Command seed-db loads the catalog seed file and a bootstrap admin account
// into the database. Safe to re-run: everything is upserted.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/storefront-api/internal/repository"
)

type catalogJSON struct {
	Categories []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"categories"`
	Brands []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"brands"`
	Products []struct {
		ID             string   `json:"id"`
		CategoryID     string   `json:"categoryId"`
		BrandID        string   `json:"brandId"`
		Name           string   `json:"name"`
		Description    string   `json:"description"`
		Thumbnail      string   `json:"thumbnail"`
		Photos         []string `json:"photos"`
		AvailableCount int64    `json:"availableCount"`
		Price          int64    `json:"price"`
		DiscountType   string   `json:"discountType"`
		DiscountValue  int64    `json:"discountValue"`
	} `json:"products"`
}

const (
	upsertCategorySQL = `INSERT INTO categories (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()`

	upsertBrandSQL = `INSERT INTO brands (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()`

	upsertProductSQL = `INSERT INTO products
		(id, category_id, brand_id, name, description, thumbnail, photos,
		 available_count, price, discount_type, discount_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			category_id = EXCLUDED.category_id, brand_id = EXCLUDED.brand_id,
			name = EXCLUDED.name, description = EXCLUDED.description,
			thumbnail = EXCLUDED.thumbnail, photos = EXCLUDED.photos,
			available_count = EXCLUDED.available_count, price = EXCLUDED.price,
			discount_type = EXCLUDED.discount_type, discount_value = EXCLUDED.discount_value,
			updated_at = NOW()`

	upsertAdminSQL = `INSERT INTO users (id, email, password, full_name, role, verify)
		VALUES ($1, $2, $3, 'Administrator', 'admin', 'verified')
		ON CONFLICT (email) DO NOTHING`
)

func main() {
	var (
		databaseURL   string
		catalogFile   string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.StringVar(&adminEmail, "admin-email", "", "bootstrap admin email (or STORE_SEED_ADMIN_EMAIL env)")
	flag.StringVar(&adminPassword, "admin-password", "", "bootstrap admin password (or STORE_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminEmail == "" {
		adminEmail = os.Getenv("STORE_SEED_ADMIN_EMAIL")
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("STORE_SEED_ADMIN_PASSWORD")
	}
	if adminEmail == "" || adminPassword == "" {
		slog.Error("admin credentials are required: set --admin-email/--admin-password or STORE_SEED_ADMIN_* env")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile, adminEmail, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCatalog(ctx, pool, catalogFile); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	if err := seedAdmin(ctx, pool, adminEmail, adminPassword); err != nil {
		return errors.Wrap(err, "seed admin")
	}

	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, catalogFile string) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var catalog catalogJSON
	if err := json.Unmarshal(data, &catalog); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	slog.Info("upserting catalog",
		slog.Int("categories", len(catalog.Categories)),
		slog.Int("brands", len(catalog.Brands)),
		slog.Int("products", len(catalog.Products)),
	)

	for _, c := range catalog.Categories {
		if _, err := pool.Exec(ctx, upsertCategorySQL, c.ID, c.Name); err != nil {
			return errors.Wrapf(err, "upsert category %s", c.ID)
		}
	}
	for _, b := range catalog.Brands {
		if _, err := pool.Exec(ctx, upsertBrandSQL, b.ID, b.Name); err != nil {
			return errors.Wrapf(err, "upsert brand %s", b.ID)
		}
	}
	for _, p := range catalog.Products {
		photos := p.Photos
		if photos == nil {
			photos = []string{}
		}
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.CategoryID, p.BrandID, p.Name, p.Description, p.Thumbnail, photos,
			p.AvailableCount, p.Price, p.DiscountType, p.DiscountValue,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	slog.Info("seeding admin account", slog.String("email", email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	if _, err := pool.Exec(ctx, upsertAdminSQL, uuid.New().String(), email, string(hash)); err != nil {
		return errors.Wrap(err, "upsert admin")
	}

	return nil
}
