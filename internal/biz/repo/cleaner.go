package repo

import (
	"context"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
)

// CleanerRepo is the cleaner-notification channel interface.
//
// SendQuery is never called by the pipeline core - only by the
// human-approval path once the cleaner_query draft is marked ok.
// PollResponses is the pull side consumed by the reconciler; the
// channel aims for each-delivered-once but the reconciler is written
// for at-least-once anyway.
type CleanerRepo interface {
	// SendQuery delivers a question to the cleaning staff with the
	// correlation token embedded. Returns a channel tracking ID.
	SendQuery(ctx context.Context, query *domain.CleanerQuery, body string) (string, error)

	// PollResponses returns replies that arrived since the last call,
	// each carrying the correlation ID extracted from its text.
	PollResponses(ctx context.Context) ([]*domain.CleanerResponse, error)
}
