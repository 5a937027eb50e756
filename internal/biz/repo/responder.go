package repo

import (
	"context"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
)

// ResponderRepo is the AI parsing/composition interface. Every method
// is one model call; failures come back as *domain.ExternalServiceError.
type ResponderRepo interface {
	// Acknowledge composes the guest-facing acknowledgment for a
	// freshly classified request ("got it, checking with the team").
	Acknowledge(ctx context.Context, result *domain.ClassificationResult, convCtx *domain.ConversationContext) (*domain.ComposedReply, error)

	// ComposeQuery composes the question sent to the cleaning staff.
	// The correlation token is appended by the cleaner channel, not here.
	ComposeQuery(ctx context.Context, query *domain.CleanerQuery) (string, error)

	// Parse turns the cleaner's free-text reply into structured data
	Parse(ctx context.Context, rawText string, query *domain.CleanerQuery) (*domain.ParsedResponse, error)

	// Compose writes the final guest reply from a parsed cleaner answer
	Compose(ctx context.Context, parsed *domain.ParsedResponse, query *domain.CleanerQuery) (*domain.ComposedReply, error)
}
