package domain

import (
	"fmt"
	"time"
)

// Step identifies which outbound message a draft is for
type Step string

const (
	StepAcknowledgment Step = "acknowledgment"
	StepCleanerQuery   Step = "cleaner_query"
	StepFollowup       Step = "followup"
	StepGuestReply     Step = "guest_reply"
)

// ParseStep converts a stored value into a closed Step
func ParseStep(s string) (Step, error) {
	switch Step(s) {
	case StepAcknowledgment, StepCleanerQuery, StepFollowup, StepGuestReply:
		return Step(s), nil
	}
	return "", fmt.Errorf("unknown step %q", s)
}

// Verdict is the owner's disposition on a draft.
// pending -> {ok, nok} exactly once; it never reverts.
type Verdict string

const (
	VerdictPending Verdict = "pending"
	VerdictOK      Verdict = "ok"
	VerdictNOK     Verdict = "nok"
)

// ParseVerdict converts a stored value into a closed Verdict
func ParseVerdict(s string) (Verdict, error) {
	switch Verdict(s) {
	case VerdictPending, VerdictOK, VerdictNOK:
		return Verdict(s), nil
	}
	return "", fmt.Errorf("unknown verdict %q", s)
}

// IsTerminal reports whether the verdict has been set
func (v Verdict) IsTerminal() bool {
	return v == VerdictOK || v == VerdictNOK
}

// Draft is an outbound message awaiting owner approval. Drafts are
// never deleted: they are the audit trail and future training signal.
type Draft struct {
	DraftID           int64
	RequestID         string // empty for followup drafts with no request committed yet
	ReservationID     int64
	Intent            Intent
	Step              Step
	Body              string
	Verdict           Verdict
	ActualMessageSent string // set only on nok, when the owner sent an edited alternative
	OwnerComment      string
	CreatedAt         time.Time
	ReviewedAt        *time.Time // non-nil iff verdict != pending
}
