package repo

import (
	"context"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
)

// MemoryRepo is the durable request-memory interface: seen messages,
// processed requests, and drafts. Three independent dedup/record
// tables plus lifecycle operations on each. Safe under a single
// writer; the store provides atomicity for individual row writes.
type MemoryRepo interface {
	// HasMessageBeenSeen reports whether a message ID was ever classified
	HasMessageBeenSeen(ctx context.Context, messageID string) (bool, error)

	// MarkMessageSeen records a classified message ID. Idempotent:
	// calling twice with the same ID neither errors nor duplicates.
	MarkMessageSeen(ctx context.Context, messageID string, reservationID int64) error

	// HasBeenProcessed reports whether a (reservation, intent) pair
	// already has a request, regardless of its status.
	HasBeenProcessed(ctx context.Context, reservationID int64, intent domain.Intent) (bool, error)

	// SaveRequest creates a new request record. Returns
	// domain.ErrConflict when a row already exists for the pair -
	// a belt-and-braces guard behind HasBeenProcessed.
	SaveRequest(ctx context.Context, req *domain.ProcessedRequest) error

	// GetRequest looks up a request by its correlation ID.
	// Returns domain.ErrNotFound when unknown.
	GetRequest(ctx context.Context, requestID string) (*domain.ProcessedRequest, error)

	// UpdateStatus moves a request to a new status. Returns
	// domain.ErrNotFound for an unknown ID and domain.ErrState for a
	// backward transition.
	UpdateStatus(ctx context.Context, requestID string, status domain.Status) error

	// GetHistory returns all requests for a reservation, oldest first
	GetHistory(ctx context.Context, reservationID int64) ([]*domain.ProcessedRequest, error)

	// SaveDraft stores a draft for owner review and returns its ID.
	// draft.RequestID may be empty (followup drafts).
	SaveDraft(ctx context.Context, draft *domain.Draft) (int64, error)

	// GetDraft looks up a draft. Returns domain.ErrNotFound when unknown.
	GetDraft(ctx context.Context, draftID int64) (*domain.Draft, error)

	// GetPendingDrafts returns drafts awaiting review, oldest first
	// across all reservations.
	GetPendingDrafts(ctx context.Context) ([]*domain.Draft, error)

	// ReviewDraft records the owner's verdict exactly once. Returns
	// domain.ErrNotFound for an unknown ID, domain.ErrState when the
	// draft was already reviewed.
	ReviewDraft(ctx context.Context, draftID int64, verdict domain.Verdict, actualSent, comment string) error

	// GetCursor returns the persisted poll cursor for a channel, or ""
	GetCursor(ctx context.Context, name string) (string, error)

	// SetCursor persists a poll cursor
	SetCursor(ctx context.Context, name, value string) error

	// Close releases the underlying store
	Close() error
}

// CursorStore is the narrow cursor slice of MemoryRepo used by
// poll-based channel adapters.
type CursorStore interface {
	GetCursor(ctx context.Context, name string) (string, error)
	SetCursor(ctx context.Context, name, value string) error
}
