package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"financas/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists resolved addresses so lookups survive restarts.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// GetAddress returns the stored address for a normalized postal code.
func (r *SQLiteRepository) GetAddress(ctx context.Context, postalCode string) (core.Address, bool, error) {
	const q = `SELECT postal_code, street, district, city, region FROM addresses WHERE postal_code = ?`

	var a core.Address
	err := r.db.QueryRowContext(ctx, q, postalCode).Scan(&a.PostalCode, &a.Street, &a.District, &a.City, &a.Region)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Address{}, false, nil
	}
	if err != nil {
		return core.Address{}, false, fmt.Errorf("get address %s: %w", postalCode, err)
	}
	return a, true, nil
}

// PutAddress inserts or refreshes an address.
func (r *SQLiteRepository) PutAddress(ctx context.Context, a core.Address) error {
	const q = `
INSERT INTO addresses (postal_code, street, district, city, region, fetched_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(postal_code) DO UPDATE SET
    street = excluded.street,
    district = excluded.district,
    city = excluded.city,
    region = excluded.region,
    fetched_at = excluded.fetched_at`

	if a.PostalCode == "" {
		return errors.New("put address: empty postal code")
	}
	if _, err := r.db.ExecContext(ctx, q, a.PostalCode, a.Street, a.District, a.City, a.Region, r.now().UTC()); err != nil {
		return fmt.Errorf("put address %s: %w", a.PostalCode, err)
	}

	slog.DebugContext(ctx, "Address saved to SQLite",
		"component", "storage",
		"postal_code", a.PostalCode,
		"city", a.City)
	return nil
}

// CountAddresses returns how many addresses are stored.
func (r *SQLiteRepository) CountAddresses(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM addresses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count addresses: %w", err)
	}
	return n, nil
}
