package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/G77-BOT/aura-flow/internal/domain"
	"github.com/G77-BOT/aura-flow/internal/money"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// SQLiteRepository seeds the in-memory catalog from a SQLite products table.
// The catalog is read once at startup, so a single connection is enough.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog db %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping catalog db %s: %w", dbPath, err)
	}
	return &SQLiteRepository{db: db}, nil
}

// RunMigrations brings the products table up to date and returns the schema
// version. An empty dir uses the migrations compiled into the binary.
func (r *SQLiteRepository) RunMigrations(dir string) (uint, error) {
	var migrations fs.FS
	if dir == "" {
		sub, err := fs.Sub(embeddedMigrations, "migrations")
		if err != nil {
			return 0, err
		}
		migrations = sub
	} else {
		migrations = os.DirFS(dir)
	}

	src, err := iofs.New(migrations, ".")
	if err != nil {
		return 0, fmt.Errorf("catalog migrations source: %w", err)
	}
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("catalog migrations driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("catalog migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply catalog migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("catalog schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("catalog schema version %d is dirty", version)
	}
	return version, nil
}

// Load reads every product and builds a Memory catalog from them.
// Prices are stored as decimal text and rounded to minor units.
func (r *SQLiteRepository) Load(ctx context.Context) (*Memory, error) {
	query := `
		SELECT id, name, category, description, price, image_ref, in_stock, marketplace_url
		FROM products
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p           domain.Product
			price       string
			marketplace sql.NullString
		)
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Category,
			&p.Description,
			&price,
			&p.ImageRef,
			&p.InStock,
			&marketplace,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.UnitPriceMinorUnits, err = money.ParseMinorUnits(price)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", p.ID, err)
		}
		p.MarketplaceURL = marketplace.String
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return NewMemory(products)
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
