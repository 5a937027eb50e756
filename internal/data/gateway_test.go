package data

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hostkit/checkin-bridge/internal/infra/smoobu"
)

func TestGatewayGetMessages_KeepsOnlyGuestMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"messages": [
			{"id": 7, "subject": "Hi", "message": "Can we check in early?", "type": 1},
			{"id": 8, "subject": "Re: Hi", "message": "Let me check!", "type": 2},
			{"id": 9, "subject": "", "message": "Say around noon?", "type": 1}
		]}`)
	}))
	defer srv.Close()

	gateway := NewGatewayRepo(smoobu.NewClient("key", srv.URL))
	msgs, err := gateway.GetMessages(context.Background(), 1001)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 guest messages, got %d", len(msgs))
	}
	if msgs[0].MessageID != "7" || msgs[1].MessageID != "9" {
		t.Errorf("Unexpected message IDs %s, %s", msgs[0].MessageID, msgs[1].MessageID)
	}
	if msgs[1].Body != "Say around noon?" {
		t.Errorf("Unexpected body %q", msgs[1].Body)
	}
}

func TestGatewayGetActiveReservations_MapsBookingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"page_count": 1, "bookings": [
			{"id": 1001, "guest-name": "Anna Keller", "arrival": "2026-09-05", "departure": "2026-09-08",
			 "apartment": {"id": 42, "name": "Seaside Flat"}}
		]}`)
	}))
	defer srv.Close()

	gateway := NewGatewayRepo(smoobu.NewClient("key", srv.URL))
	reservations, err := gateway.GetActiveReservations(context.Background(), 42, "2026-09-01", "2026-09-30")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(reservations) != 1 {
		t.Fatalf("Expected 1 reservation, got %d", len(reservations))
	}
	res := reservations[0]
	if res.ReservationID != 1001 || res.GuestName != "Anna Keller" ||
		res.PropertyName != "Seaside Flat" || res.ApartmentID != 42 {
		t.Errorf("Unexpected reservation %+v", res)
	}
}

func TestGatewayError_WrapsServiceName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	gateway := NewGatewayRepo(smoobu.NewClient("key", srv.URL))
	_, err := gateway.GetMessages(context.Background(), 1001)
	if err == nil {
		t.Fatal("Expected error")
	}
}
