package data

import (
	"context"
	"strconv"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
	"github.com/hostkit/checkin-bridge/internal/biz/repo"
	"github.com/hostkit/checkin-bridge/internal/infra/smoobu"
)

// guest-authored messages carry this type in the Smoobu API
const smoobuMessageTypeIncoming = 1

// gatewayRepo implements the guest-messaging gateway on Smoobu
type gatewayRepo struct {
	client *smoobu.Client
}

// NewGatewayRepo creates a Smoobu-backed gateway
func NewGatewayRepo(client *smoobu.Client) repo.GatewayRepo {
	return &gatewayRepo{client: client}
}

func (r *gatewayRepo) GetActiveReservations(ctx context.Context, apartmentID int64, from, to string) ([]*domain.Reservation, error) {
	bookings, err := r.client.GetActiveReservations(ctx, apartmentID, from, to)
	if err != nil {
		return nil, domain.NewExternalServiceError("smoobu", err)
	}

	reservations := make([]*domain.Reservation, 0, len(bookings))
	for i := range bookings {
		reservations = append(reservations, bookingToReservation(&bookings[i]))
	}
	return reservations, nil
}

// GetMessages returns the guest-authored side of the thread, oldest
// first, with stable string IDs.
func (r *gatewayRepo) GetMessages(ctx context.Context, reservationID int64) ([]*domain.GuestMessage, error) {
	msgs, err := r.client.GetMessages(ctx, reservationID)
	if err != nil {
		return nil, domain.NewExternalServiceError("smoobu", err)
	}

	var out []*domain.GuestMessage
	for _, m := range msgs {
		if m.Type != smoobuMessageTypeIncoming {
			continue
		}
		out = append(out, &domain.GuestMessage{
			MessageID: strconv.FormatInt(m.ID, 10),
			Subject:   m.Subject,
			Body:      m.Body,
		})
	}
	return out, nil
}

func (r *gatewayRepo) GetReservation(ctx context.Context, reservationID int64) (*domain.Reservation, error) {
	booking, err := r.client.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, domain.NewExternalServiceError("smoobu", err)
	}
	if booking == nil {
		return nil, nil
	}
	return bookingToReservation(booking), nil
}

func (r *gatewayRepo) SendMessage(ctx context.Context, reservationID int64, subject, body string) error {
	if err := r.client.SendMessage(ctx, reservationID, subject, body); err != nil {
		return domain.NewExternalServiceError("smoobu", err)
	}
	return nil
}

func bookingToReservation(b *smoobu.Booking) *domain.Reservation {
	return &domain.Reservation{
		ReservationID: b.ID,
		GuestName:     b.GuestName,
		ApartmentID:   b.Apartment.ID,
		PropertyName:  b.Apartment.Name,
		Arrival:       b.Arrival,
		Departure:     b.Departure,
	}
}
