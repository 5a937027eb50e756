package data

import (
	"context"
	"testing"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
)

func TestReservationCache_RoundTrip(t *testing.T) {
	cache, err := NewReservationCache(":memory:")
	if err != nil {
		t.Fatalf("Failed to open cache: %v", err)
	}
	defer cache.Close()
	ctx := context.Background()

	got, err := cache.Get(ctx, 1001)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for uncached reservation, got %+v", got)
	}

	res := &domain.Reservation{
		ReservationID: 1001,
		GuestName:     "Anna Keller",
		ApartmentID:   42,
		PropertyName:  "Seaside Flat",
		Arrival:       "2026-09-05",
		Departure:     "2026-09-08",
	}
	if err := cache.Store(ctx, res); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, err = cache.Get(ctx, 1001)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.GuestName != "Anna Keller" || got.PropertyName != "Seaside Flat" {
		t.Errorf("Unexpected cached reservation %+v", got)
	}

	// Re-storing updates in place
	res.Departure = "2026-09-09"
	if err := cache.Store(ctx, res); err != nil {
		t.Fatalf("Second store failed: %v", err)
	}
	got, err = cache.Get(ctx, 1001)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Departure != "2026-09-09" {
		t.Errorf("Expected updated departure, got %s", got.Departure)
	}
}
