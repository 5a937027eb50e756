package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
	"github.com/hostkit/checkin-bridge/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// reservationCache implements the reservation metadata cache on sqlite
type reservationCache struct {
	db *sql.DB
}

// NewReservationCache opens (or creates) the reservation cache
// database. Use ":memory:" in tests.
func NewReservationCache(dbPath string) (repo.ReservationCacheRepo, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reservations (
			reservation_id INTEGER PRIMARY KEY,
			guest_name TEXT NOT NULL,
			apartment_id INTEGER NOT NULL,
			property_name TEXT NOT NULL,
			arrival TEXT NOT NULL,
			departure TEXT NOT NULL,
			cached_at TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create reservations table: %w", err)
	}

	return &reservationCache{db: db}, nil
}

func (c *reservationCache) Get(ctx context.Context, reservationID int64) (*domain.Reservation, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT reservation_id, guest_name, apartment_id, property_name, arrival, departure
		FROM reservations WHERE reservation_id = ?
	`, reservationID)

	var res domain.Reservation
	err := row.Scan(&res.ReservationID, &res.GuestName, &res.ApartmentID,
		&res.PropertyName, &res.Arrival, &res.Departure)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reservation cache: %w", err)
	}
	return &res, nil
}

func (c *reservationCache) Store(ctx context.Context, res *domain.Reservation) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO reservations (reservation_id, guest_name, apartment_id, property_name, arrival, departure, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(reservation_id) DO UPDATE SET
			guest_name = excluded.guest_name,
			apartment_id = excluded.apartment_id,
			property_name = excluded.property_name,
			arrival = excluded.arrival,
			departure = excluded.departure,
			cached_at = excluded.cached_at
	`, res.ReservationID, res.GuestName, res.ApartmentID, res.PropertyName,
		res.Arrival, res.Departure, nowUTC())
	if err != nil {
		return fmt.Errorf("failed to store reservation: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *reservationCache) Close() error {
	return c.db.Close()
}
