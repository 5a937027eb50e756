package repo

import (
	"context"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
)

// ReservationCacheRepo caches reservation metadata keyed by
// reservation ID, so the poller is not refetching
// GET /reservations/{id} on every cycle.
type ReservationCacheRepo interface {
	// Get returns cached info, or nil when not stored
	Get(ctx context.Context, reservationID int64) (*domain.Reservation, error)

	// Store persists reservation metadata
	Store(ctx context.Context, res *domain.Reservation) error

	// Close releases the underlying store
	Close() error
}
