package domain

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a processed request.
// Progression is strictly forward: pending_acknowledgment ->
// pending_cleaner -> pending_reply -> done.
type Status string

const (
	StatusPendingAcknowledgment Status = "pending_acknowledgment"
	StatusPendingCleaner        Status = "pending_cleaner"
	StatusPendingReply          Status = "pending_reply"
	StatusDone                  Status = "done"
)

var statusRank = map[Status]int{
	StatusPendingAcknowledgment: 0,
	StatusPendingCleaner:        1,
	StatusPendingReply:          2,
	StatusDone:                  3,
}

// ParseStatus converts a stored value into a closed Status
func ParseStatus(s string) (Status, error) {
	if _, ok := statusRank[Status(s)]; !ok {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return Status(s), nil
}

// CanAdvanceTo reports whether moving to next is a forward transition
func (s Status) CanAdvanceTo(next Status) bool {
	from, ok1 := statusRank[s]
	to, ok2 := statusRank[next]
	return ok1 && ok2 && to > from
}

// Next returns the immediately following status, or the status itself
// when the request is already done.
func (s Status) Next() Status {
	switch s {
	case StatusPendingAcknowledgment:
		return StatusPendingCleaner
	case StatusPendingCleaner:
		return StatusPendingReply
	case StatusPendingReply:
		return StatusDone
	}
	return s
}

// ProcessedRequest is one actioned (reservation, intent) pair.
// Existence of a row - regardless of status - is the intent-level
// dedup signal. Created once, mutated only via status transitions,
// never deleted.
type ProcessedRequest struct {
	RequestID     string // correlation UUID
	ReservationID int64
	Intent        Intent
	Status        Status
	GuestMessage  string
	GuestName     string
	PropertyName  string
	OriginalTime  string // default check-in or check-out time
	RequestedTime string // time the guest asked for
	RelevantDate  string // arrival for early_checkin, departure for late_checkout
	CreatedAt     time.Time
}

// SeenMessage is one inbound message ID that has been classified.
// Write-once per ID; existence alone is the signal.
type SeenMessage struct {
	MessageID     string
	ReservationID int64
	SeenAt        time.Time
}
