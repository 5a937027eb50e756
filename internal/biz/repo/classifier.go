package repo

import (
	"context"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
)

// ClassifierRepo is the AI intent-classification interface.
// One invocation means exactly one model call - the single most
// expensive operation in the pipeline. Implementations never retry.
type ClassifierRepo interface {
	// Classify reads a guest message and returns structured data.
	// Failures come back as *domain.ExternalServiceError.
	Classify(ctx context.Context, message string, convCtx *domain.ConversationContext) (*domain.ClassificationResult, error)
}
