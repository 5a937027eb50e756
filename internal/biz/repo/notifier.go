package repo

import (
	"context"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
)

// NotifierRepo is the owner escalation channel. Anything the pipeline
// cannot act on safely surfaces here as an open item instead of being
// sent or silently dropped.
type NotifierRepo interface {
	// NotifyLowConfidence reports a classification below the
	// confidence threshold.
	NotifyLowConfidence(ctx context.Context, convCtx *domain.ConversationContext, result *domain.ClassificationResult, message string) error

	// NotifyUnclearReply reports a cleaner reply the parser could not
	// resolve; the request stays pending_cleaner.
	NotifyUnclearReply(ctx context.Context, req *domain.ProcessedRequest, rawText string) error
}
