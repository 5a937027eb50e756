package data

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
	"github.com/hostkit/checkin-bridge/internal/biz/repo"
	"github.com/hostkit/checkin-bridge/internal/infra/lark"
)

// consoleNotifier surfaces escalations in the daemon log. The default
// when no owner chat is configured.
type consoleNotifier struct {
	log zerolog.Logger
}

// NewConsoleNotifier creates a log-backed owner notifier
func NewConsoleNotifier(log zerolog.Logger) repo.NotifierRepo {
	return &consoleNotifier{log: log.With().Str("component", "notifier").Logger()}
}

func (n *consoleNotifier) NotifyLowConfidence(ctx context.Context, convCtx *domain.ConversationContext, result *domain.ClassificationResult, message string) error {
	n.log.Warn().
		Int64("reservation_id", convCtx.ReservationID).
		Str("guest", convCtx.GuestName).
		Str("intent", string(result.Intent)).
		Float64("confidence", result.Confidence).
		Str("message", message).
		Msg("low-confidence classification, needs manual review")
	return nil
}

func (n *consoleNotifier) NotifyUnclearReply(ctx context.Context, req *domain.ProcessedRequest, rawText string) error {
	n.log.Warn().
		Str("request_id", req.RequestID).
		Int64("reservation_id", req.ReservationID).
		Str("intent", string(req.Intent)).
		Str("reply", rawText).
		Msg("unclear cleaner reply, request stays pending")
	return nil
}

// larkNotifier surfaces escalations in the owner's Lark chat
type larkNotifier struct {
	client *lark.Client
	chatID string
}

// NewLarkNotifier creates a Lark-backed owner notifier
func NewLarkNotifier(client *lark.Client, chatID string) repo.NotifierRepo {
	return &larkNotifier{client: client, chatID: chatID}
}

func (n *larkNotifier) NotifyLowConfidence(ctx context.Context, convCtx *domain.ConversationContext, result *domain.ClassificationResult, message string) error {
	var b strings.Builder
	b.WriteString("Needs your review: low-confidence guest request\n")
	fmt.Fprintf(&b, "Guest: %s (%s)\n", convCtx.GuestName, convCtx.PropertyName)
	fmt.Fprintf(&b, "Reservation: %d\n", convCtx.ReservationID)
	fmt.Fprintf(&b, "Guessed intent: %s (confidence %.2f)\n", result.Intent, result.Confidence)
	fmt.Fprintf(&b, "Message: %s", message)

	if _, err := n.client.SendText(ctx, n.chatID, b.String()); err != nil {
		return domain.NewExternalServiceError("lark", err)
	}
	return nil
}

func (n *larkNotifier) NotifyUnclearReply(ctx context.Context, req *domain.ProcessedRequest, rawText string) error {
	var b strings.Builder
	b.WriteString("Needs your review: unclear cleaner reply\n")
	fmt.Fprintf(&b, "Guest: %s (%s)\n", req.GuestName, req.PropertyName)
	fmt.Fprintf(&b, "Request: %s %s on %s\n", req.Intent, req.RequestedTime, req.RelevantDate)
	fmt.Fprintf(&b, "Reply: %s", rawText)

	if _, err := n.client.SendText(ctx, n.chatID, b.String()); err != nil {
		return domain.NewExternalServiceError("lark", err)
	}
	return nil
}
