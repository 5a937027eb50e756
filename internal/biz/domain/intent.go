package domain

import "fmt"

// Intent is the classified category of a guest request
type Intent string

const (
	IntentEarlyCheckin Intent = "early_checkin"
	IntentLateCheckout Intent = "late_checkout"
	IntentOther        Intent = "other"
)

// ParseIntent converts a raw classifier value into a closed Intent.
// Unrecognized values are rejected here, at the boundary, so they
// never propagate into the pipeline.
func ParseIntent(s string) (Intent, error) {
	switch Intent(s) {
	case IntentEarlyCheckin, IntentLateCheckout, IntentOther:
		return Intent(s), nil
	}
	return "", fmt.Errorf("unknown intent %q", s)
}

// IsActionable reports whether the intent requires any handling
func (i Intent) IsActionable() bool {
	return i == IntentEarlyCheckin || i == IntentLateCheckout
}

// ConversationContext is a read-only snapshot passed into classification.
// Built fresh per invocation, never mutated.
type ConversationContext struct {
	ReservationID       int64
	GuestName           string
	PropertyName        string
	DefaultCheckinTime  string // e.g. "15:00"
	DefaultCheckoutTime string // e.g. "11:00"
	ArrivalDate         string // ISO: "2026-03-05"
	DepartureDate       string // ISO: "2026-03-07"
	PreviousMessages    []string
}

// ClassificationResult is the structured output of intent
// classification - no raw text, only data
type ClassificationResult struct {
	Intent           Intent
	Confidence       float64 // 0.0-1.0
	ExtractedTime    string  // e.g. "12:00" if the guest mentioned one, "" otherwise
	NeedsFollowup    bool
	FollowupQuestion string // non-empty iff NeedsFollowup
}

// OriginalTime returns the default time the request would change:
// check-in for early_checkin, check-out for late_checkout.
func (c *ConversationContext) OriginalTime(intent Intent) string {
	if intent == IntentEarlyCheckin {
		return c.DefaultCheckinTime
	}
	return c.DefaultCheckoutTime
}

// RelevantDate returns the date the request applies to: arrival for
// early_checkin, departure for late_checkout.
func (c *ConversationContext) RelevantDate(intent Intent) string {
	if intent == IntentEarlyCheckin {
		return c.ArrivalDate
	}
	return c.DepartureDate
}
