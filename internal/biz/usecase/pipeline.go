package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
	"github.com/hostkit/checkin-bridge/internal/biz/repo"
)

// DefaultConfidenceThreshold is the classification confidence below
// which the pipeline escalates to the owner instead of acting.
const DefaultConfidenceThreshold = 0.6

// Action is the outcome of one pipeline invocation
type Action string

const (
	ActionAlreadyProcessed Action = "already_processed"
	ActionIgnored          Action = "ignored"
	ActionEscalated        Action = "escalated"
	ActionFollowupDrafted  Action = "followup_drafted"
	ActionDraftsCreated    Action = "drafts_created"
	ActionReplyDrafted     Action = "reply_drafted"
	ActionDropped          Action = "dropped"
)

// Result describes what the pipeline did with one message or reply
type Result struct {
	Action  Action
	Details string
}

// PipelineUsecase turns an unstructured guest message into drafts
// gated by owner approval. It enforces exactly-once semantics at both
// the message level (seen table) and the intent level (request table)
// and never sends anything itself.
type PipelineUsecase struct {
	memory     repo.MemoryRepo
	classifier repo.ClassifierRepo
	responder  repo.ResponderRepo
	notifier   repo.NotifierRepo
	threshold  float64
	log        zerolog.Logger
}

// NewPipelineUsecase creates a new pipeline usecase
func NewPipelineUsecase(
	memory repo.MemoryRepo,
	classifier repo.ClassifierRepo,
	responder repo.ResponderRepo,
	notifier repo.NotifierRepo,
	threshold float64,
	log zerolog.Logger,
) *PipelineUsecase {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &PipelineUsecase{
		memory:     memory,
		classifier: classifier,
		responder:  responder,
		notifier:   notifier,
		threshold:  threshold,
		log:        log.With().Str("component", "pipeline").Logger(),
	}
}

// ProcessMessage runs one guest message through the classification
// gate and, when warranted, the draft factory. Re-running the same
// message ID converges to already_processed: the classifier is
// invoked at most once per message ID, ever.
func (uc *PipelineUsecase) ProcessMessage(
	ctx context.Context,
	messageID string,
	message string,
	convCtx *domain.ConversationContext,
) (*Result, error) {
	if messageID == "" || strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message id and body are required", domain.ErrValidation)
	}
	if convCtx == nil || convCtx.ReservationID == 0 {
		return nil, fmt.Errorf("%w: conversation context with reservation id is required", domain.ErrValidation)
	}

	// Message-level dedup before anything else, so a redelivered
	// message never costs a second classification call.
	seen, err := uc.memory.HasMessageBeenSeen(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("check seen message: %w", err)
	}
	if seen {
		return &Result{Action: ActionAlreadyProcessed, Details: "message " + messageID}, nil
	}

	// The one classification call. On failure nothing has been
	// written; the next poll cycle retries from scratch.
	result, err := uc.classifier.Classify(ctx, message, convCtx)
	if err != nil {
		return nil, fmt.Errorf("classify message %s: %w", messageID, err)
	}

	// The message is now classified; record it no matter the outcome
	if err := uc.memory.MarkMessageSeen(ctx, messageID, convCtx.ReservationID); err != nil {
		return nil, fmt.Errorf("mark message seen: %w", err)
	}

	uc.log.Debug().
		Str("message_id", messageID).
		Str("intent", string(result.Intent)).
		Float64("confidence", result.Confidence).
		Bool("needs_followup", result.NeedsFollowup).
		Msg("message classified")

	if result.Intent == domain.IntentOther {
		return &Result{Action: ActionIgnored, Details: fmt.Sprintf("confidence=%.2f", result.Confidence)}, nil
	}

	if result.Confidence < uc.threshold {
		if err := uc.notifier.NotifyLowConfidence(ctx, convCtx, result, message); err != nil {
			uc.log.Warn().Err(err).Str("message_id", messageID).Msg("owner notification failed")
		}
		return &Result{
			Action:  ActionEscalated,
			Details: fmt.Sprintf("intent=%s confidence=%.2f below threshold", result.Intent, result.Confidence),
		}, nil
	}

	// Followup comes before intent dedup: no decision has been
	// reached yet, so ProcessedRequest must stay untouched.
	if result.NeedsFollowup {
		draftID, err := uc.memory.SaveDraft(ctx, &domain.Draft{
			ReservationID: convCtx.ReservationID,
			Intent:        result.Intent,
			Step:          domain.StepFollowup,
			Body:          result.FollowupQuestion,
		})
		if err != nil {
			return nil, fmt.Errorf("save followup draft: %w", err)
		}
		return &Result{Action: ActionFollowupDrafted, Details: fmt.Sprintf("draft=%d", draftID)}, nil
	}

	processed, err := uc.memory.HasBeenProcessed(ctx, convCtx.ReservationID, result.Intent)
	if err != nil {
		return nil, fmt.Errorf("check processed: %w", err)
	}
	if processed {
		return &Result{Action: ActionAlreadyProcessed, Details: "intent=" + string(result.Intent)}, nil
	}

	return uc.createDrafts(ctx, message, result, convCtx)
}

// createDrafts is the draft factory: one request row plus the
// acknowledgment and cleaner_query drafts. If anything after
// SaveRequest fails, the row stays; the retry finds it via
// HasBeenProcessed and never creates a second one.
func (uc *PipelineUsecase) createDrafts(
	ctx context.Context,
	message string,
	result *domain.ClassificationResult,
	convCtx *domain.ConversationContext,
) (*Result, error) {
	requestedTime := result.ExtractedTime
	if requestedTime == "" {
		requestedTime = "?"
	}

	req := &domain.ProcessedRequest{
		RequestID:     uuid.NewString(),
		ReservationID: convCtx.ReservationID,
		Intent:        result.Intent,
		Status:        domain.StatusPendingAcknowledgment,
		GuestMessage:  message,
		GuestName:     convCtx.GuestName,
		PropertyName:  convCtx.PropertyName,
		OriginalTime:  convCtx.OriginalTime(result.Intent),
		RequestedTime: requestedTime,
		RelevantDate:  convCtx.RelevantDate(result.Intent),
	}

	if err := uc.memory.SaveRequest(ctx, req); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost the belt-and-braces race: treat as already handled
			return &Result{Action: ActionAlreadyProcessed, Details: "intent=" + string(result.Intent)}, nil
		}
		return nil, fmt.Errorf("save request: %w", err)
	}

	ack, err := uc.responder.Acknowledge(ctx, result, convCtx)
	if err != nil {
		return nil, fmt.Errorf("compose acknowledgment for %s: %w", req.RequestID, err)
	}

	query := buildCleanerQuery(req, message)
	queryBody, err := uc.responder.ComposeQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("compose cleaner query for %s: %w", req.RequestID, err)
	}

	if _, err := uc.memory.SaveDraft(ctx, &domain.Draft{
		RequestID:     req.RequestID,
		ReservationID: req.ReservationID,
		Intent:        req.Intent,
		Step:          domain.StepAcknowledgment,
		Body:          ack.Body,
	}); err != nil {
		return nil, fmt.Errorf("save acknowledgment draft: %w", err)
	}

	if _, err := uc.memory.SaveDraft(ctx, &domain.Draft{
		RequestID:     req.RequestID,
		ReservationID: req.ReservationID,
		Intent:        req.Intent,
		Step:          domain.StepCleanerQuery,
		Body:          queryBody,
	}); err != nil {
		return nil, fmt.Errorf("save cleaner query draft: %w", err)
	}

	if err := uc.memory.UpdateStatus(ctx, req.RequestID, domain.StatusPendingAcknowledgment); err != nil {
		return nil, fmt.Errorf("set initial status: %w", err)
	}

	uc.log.Info().
		Str("request_id", req.RequestID).
		Int64("reservation_id", req.ReservationID).
		Str("intent", string(req.Intent)).
		Msg("drafts created")

	return &Result{Action: ActionDraftsCreated, Details: "request_id=" + req.RequestID}, nil
}

// buildCleanerQuery derives the cleaner question parameters from a
// committed request.
func buildCleanerQuery(req *domain.ProcessedRequest, guestMessage string) *domain.CleanerQuery {
	return &domain.CleanerQuery{
		RequestID:     req.RequestID,
		GuestName:     req.GuestName,
		PropertyName:  req.PropertyName,
		RequestType:   req.Intent,
		OriginalTime:  req.OriginalTime,
		RequestedTime: req.RequestedTime,
		Date:          req.RelevantDate,
		GuestMessage:  guestMessage,
	}
}
