package domain

import (
	"fmt"
	"regexp"
	"time"
)

// CleanerQuery is what we ask the cleaning staff
type CleanerQuery struct {
	RequestID     string // correlation ID, echoed back in the reply
	CleanerName   string
	GuestName     string
	PropertyName  string
	RequestType   Intent
	OriginalTime  string // e.g. "15:00"
	RequestedTime string // e.g. "12:00"
	Date          string // e.g. "2026-02-20"
	GuestMessage  string
}

// CleanerResponse is what we get back from the cleaning staff
type CleanerResponse struct {
	RequestID  string
	RawText    string
	ReceivedAt time.Time
}

// Answer is the structured interpretation of a cleaner's free-text reply
type Answer string

const (
	AnswerYes         Answer = "yes"
	AnswerNo          Answer = "no"
	AnswerConditional Answer = "conditional"
	AnswerUnclear     Answer = "unclear"
)

// ParseAnswer converts a raw parser value into a closed Answer
func ParseAnswer(s string) (Answer, error) {
	switch Answer(s) {
	case AnswerYes, AnswerNo, AnswerConditional, AnswerUnclear:
		return Answer(s), nil
	}
	return "", fmt.Errorf("unknown answer %q", s)
}

// ParsedResponse is the structured form of a cleaner reply
type ParsedResponse struct {
	Answer       Answer
	Conditions   string // e.g. "only if they arrive before 13:00"
	ProposedTime string // e.g. "13:00" if the cleaner suggests a time
	Confidence   float64
}

// ComposedReply is a guest-facing message proposed by the composer
type ComposedReply struct {
	Body       string
	Confidence float64
}

// The correlation token embedded in outgoing cleaner queries and
// echoed back in replies, e.g. "[REQ-2f1c...]".
var correlationPattern = regexp.MustCompile(`\[REQ-([^\]\s]+)\]`)

// CorrelationToken formats the token for a request ID
func CorrelationToken(requestID string) string {
	return "[REQ-" + requestID + "]"
}

// ExtractCorrelationID pulls the request ID out of a cleaner reply.
// Returns "" when the text carries no token.
func ExtractCorrelationID(text string) string {
	m := correlationPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
