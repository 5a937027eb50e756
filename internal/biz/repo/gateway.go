package repo

import (
	"context"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
)

// GatewayRepo is the guest-messaging gateway interface.
//
// SendMessage is never called by the pipeline or the reconciler -
// only by the human-approval path after a draft is marked ok.
type GatewayRepo interface {
	// GetActiveReservations lists bookings for an apartment whose
	// arrival falls inside [from, to] (ISO dates).
	GetActiveReservations(ctx context.Context, apartmentID int64, from, to string) ([]*domain.Reservation, error)

	// GetMessages returns the conversation thread for a reservation,
	// ordered, with stable message IDs.
	GetMessages(ctx context.Context, reservationID int64) ([]*domain.GuestMessage, error)

	// GetReservation fetches booking metadata, nil when unknown
	GetReservation(ctx context.Context, reservationID int64) (*domain.Reservation, error)

	// SendMessage delivers a message to the guest on a reservation
	SendMessage(ctx context.Context, reservationID int64, subject, body string) error
}
