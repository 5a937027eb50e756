package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
	"github.com/hostkit/checkin-bridge/internal/biz/repo"
)

// ReconcileUsecase matches asynchronous cleaner replies back to their
// originating request via the correlation ID, parses them, and drafts
// the guest-facing reply. Nothing is ever sent from here.
type ReconcileUsecase struct {
	memory    repo.MemoryRepo
	cleaner   repo.CleanerRepo
	responder repo.ResponderRepo
	notifier  repo.NotifierRepo
	threshold float64
	log       zerolog.Logger
}

// NewReconcileUsecase creates a new reconcile usecase
func NewReconcileUsecase(
	memory repo.MemoryRepo,
	cleaner repo.CleanerRepo,
	responder repo.ResponderRepo,
	notifier repo.NotifierRepo,
	threshold float64,
	log zerolog.Logger,
) *ReconcileUsecase {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &ReconcileUsecase{
		memory:    memory,
		cleaner:   cleaner,
		responder: responder,
		notifier:  notifier,
		threshold: threshold,
		log:       log.With().Str("component", "reconciler").Logger(),
	}
}

// ProcessCleanerReplies pulls unprocessed replies from the cleaner
// channel and handles each independently: a failure on one reply is
// logged and never aborts the batch.
func (uc *ReconcileUsecase) ProcessCleanerReplies(ctx context.Context) ([]*Result, error) {
	responses, err := uc.cleaner.PollResponses(ctx)
	if err != nil {
		return nil, fmt.Errorf("poll cleaner responses: %w", err)
	}

	results := make([]*Result, 0, len(responses))
	for _, resp := range responses {
		r, err := uc.handleReply(ctx, resp)
		if err != nil {
			uc.log.Error().Err(err).Str("request_id", resp.RequestID).Msg("cleaner reply failed")
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

// handleReply reconciles a single cleaner reply. The channel promises
// each-delivered-once but redeliveries are handled defensively: a
// request already past pending_cleaner is dropped, so re-running the
// same reply never drafts twice.
func (uc *ReconcileUsecase) handleReply(ctx context.Context, resp *domain.CleanerResponse) (*Result, error) {
	if resp.RequestID == "" {
		uc.log.Warn().Str("text", truncate(resp.RawText, 60)).Msg("reply without correlation token dropped")
		return &Result{Action: ActionDropped, Details: "no correlation token"}, nil
	}

	req, err := uc.memory.GetRequest(ctx, resp.RequestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warn().Str("request_id", resp.RequestID).Msg("stale correlation token dropped")
			return &Result{Action: ActionDropped, Details: "unknown request " + resp.RequestID}, nil
		}
		return nil, fmt.Errorf("load request %s: %w", resp.RequestID, err)
	}

	if req.Status == domain.StatusPendingReply || req.Status == domain.StatusDone {
		uc.log.Debug().Str("request_id", req.RequestID).Str("status", string(req.Status)).
			Msg("duplicate delivery dropped")
		return &Result{Action: ActionDropped, Details: "already reconciled"}, nil
	}

	query := buildCleanerQuery(req, req.GuestMessage)

	parsed, err := uc.responder.Parse(ctx, resp.RawText, query)
	if err != nil {
		return nil, fmt.Errorf("parse cleaner reply for %s: %w", req.RequestID, err)
	}

	// An unclear or low-confidence answer surfaces to the owner as an
	// open item; the request stays pending_cleaner.
	if parsed.Answer == domain.AnswerUnclear || parsed.Confidence < uc.threshold {
		if err := uc.notifier.NotifyUnclearReply(ctx, req, resp.RawText); err != nil {
			uc.log.Warn().Err(err).Str("request_id", req.RequestID).Msg("owner notification failed")
		}
		return &Result{
			Action:  ActionEscalated,
			Details: fmt.Sprintf("answer=%s confidence=%.2f", parsed.Answer, parsed.Confidence),
		}, nil
	}

	reply, err := uc.responder.Compose(ctx, parsed, query)
	if err != nil {
		return nil, fmt.Errorf("compose guest reply for %s: %w", req.RequestID, err)
	}

	draftID, err := uc.memory.SaveDraft(ctx, &domain.Draft{
		RequestID:     req.RequestID,
		ReservationID: req.ReservationID,
		Intent:        req.Intent,
		Step:          domain.StepGuestReply,
		Body:          reply.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("save guest reply draft: %w", err)
	}

	if err := uc.memory.UpdateStatus(ctx, req.RequestID, domain.StatusPendingReply); err != nil {
		return nil, fmt.Errorf("advance request %s: %w", req.RequestID, err)
	}

	uc.log.Info().
		Str("request_id", req.RequestID).
		Str("answer", string(parsed.Answer)).
		Int64("draft_id", draftID).
		Msg("guest reply drafted")

	return &Result{Action: ActionReplyDrafted, Details: fmt.Sprintf("draft=%d answer=%s", draftID, parsed.Answer)}, nil
}

// truncate shortens s to n characters, never splitting a rune
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
