package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
	"github.com/hostkit/checkin-bridge/internal/biz/repo"
)

// ReviewUsecase is the owner review workflow over drafts. Marking a
// draft ok does NOT advance the request status: the actual send and
// the status advancement are separate, explicit steps.
type ReviewUsecase struct {
	memory repo.MemoryRepo
	log    zerolog.Logger
}

// NewReviewUsecase creates a new review usecase
func NewReviewUsecase(memory repo.MemoryRepo, log zerolog.Logger) *ReviewUsecase {
	return &ReviewUsecase{
		memory: memory,
		log:    log.With().Str("component", "review").Logger(),
	}
}

// Pending returns all drafts awaiting review, oldest first
func (uc *ReviewUsecase) Pending(ctx context.Context) ([]*domain.Draft, error) {
	return uc.memory.GetPendingDrafts(ctx)
}

// Show returns a draft together with its originating request, which
// is nil for followup drafts.
func (uc *ReviewUsecase) Show(ctx context.Context, draftID int64) (*domain.Draft, *domain.ProcessedRequest, error) {
	draft, err := uc.memory.GetDraft(ctx, draftID)
	if err != nil {
		return nil, nil, err
	}
	if draft.RequestID == "" {
		return draft, nil, nil
	}
	req, err := uc.memory.GetRequest(ctx, draft.RequestID)
	if err != nil {
		return nil, nil, err
	}
	return draft, req, nil
}

// Review records the owner's verdict on a draft exactly once
func (uc *ReviewUsecase) Review(ctx context.Context, draftID int64, verdict domain.Verdict, actualSent, comment string) error {
	if !verdict.IsTerminal() {
		return fmt.Errorf("%w: verdict must be ok or nok", domain.ErrValidation)
	}
	if err := uc.memory.ReviewDraft(ctx, draftID, verdict, actualSent, comment); err != nil {
		return err
	}
	uc.log.Info().Int64("draft_id", draftID).Str("verdict", string(verdict)).Msg("draft reviewed")
	return nil
}

// Advance moves a request exactly one status step forward. This is
// the explicit follow-up to sending an approved draft; nothing calls
// it automatically.
func (uc *ReviewUsecase) Advance(ctx context.Context, requestID string) (domain.Status, error) {
	req, err := uc.memory.GetRequest(ctx, requestID)
	if err != nil {
		return "", err
	}
	next := req.Status.Next()
	if next == req.Status {
		return "", fmt.Errorf("%w: request %s is already done", domain.ErrState, requestID)
	}
	if err := uc.memory.UpdateStatus(ctx, requestID, next); err != nil {
		return "", err
	}
	uc.log.Info().Str("request_id", requestID).Str("status", string(next)).Msg("request advanced")
	return next, nil
}

// History returns all requests for a reservation, oldest first
func (uc *ReviewUsecase) History(ctx context.Context, reservationID int64) ([]*domain.ProcessedRequest, error) {
	return uc.memory.GetHistory(ctx, reservationID)
}
