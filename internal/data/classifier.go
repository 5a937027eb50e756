package data

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
	"github.com/hostkit/checkin-bridge/internal/biz/repo"
	"github.com/hostkit/checkin-bridge/internal/conf"
	"github.com/hostkit/checkin-bridge/internal/infra/openai"
)

// classifierRepo implements intent classification on the AI service
type classifierRepo struct {
	client  *openai.Client
	prompts *conf.PromptsConfig
}

// NewClassifierRepo creates a classifier backed by the AI service
func NewClassifierRepo(client *openai.Client, prompts *conf.PromptsConfig) repo.ClassifierRepo {
	if prompts == nil {
		prompts = conf.DefaultPromptsConfig()
	}
	return &classifierRepo{client: client, prompts: prompts}
}

// classificationWire is the model's JSON reply before boundary checks
type classificationWire struct {
	Intent           string   `json:"intent"`
	Confidence       *float64 `json:"confidence"`
	ExtractedTime    string   `json:"extracted_time"`
	NeedsFollowup    bool     `json:"needs_followup"`
	FollowupQuestion string   `json:"followup_question"`
}

// Classify runs exactly one model call and converts the reply into a
// closed ClassificationResult. Unrecognized intents are rejected here.
func (r *classifierRepo) Classify(ctx context.Context, message string, convCtx *domain.ConversationContext) (*domain.ClassificationResult, error) {
	userContent := formatClassifierInput(message, convCtx)

	raw, err := r.client.Chat(ctx, r.prompts.Classifier, userContent, 256)
	if err != nil {
		return nil, domain.NewExternalServiceError("classifier", err)
	}

	var wire classificationWire
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &wire); err != nil {
		return nil, domain.NewExternalServiceError("classifier", fmt.Errorf("malformed reply: %w", err))
	}

	intent, err := domain.ParseIntent(wire.Intent)
	if err != nil {
		return nil, domain.NewExternalServiceError("classifier", err)
	}

	confidence := 0.5
	if wire.Confidence != nil {
		confidence = clampConfidence(*wire.Confidence)
	}

	if wire.NeedsFollowup && strings.TrimSpace(wire.FollowupQuestion) == "" {
		return nil, domain.NewExternalServiceError("classifier",
			fmt.Errorf("needs_followup set without a followup_question"))
	}

	return &domain.ClassificationResult{
		Intent:           intent,
		Confidence:       confidence,
		ExtractedTime:    wire.ExtractedTime,
		NeedsFollowup:    wire.NeedsFollowup,
		FollowupQuestion: wire.FollowupQuestion,
	}, nil
}

// formatClassifierInput lays out the reservation snapshot and the
// message for the model.
func formatClassifierInput(message string, convCtx *domain.ConversationContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Property: %s\n", convCtx.PropertyName)
	fmt.Fprintf(&b, "Guest: %s\n", convCtx.GuestName)
	fmt.Fprintf(&b, "Arrival: %s  Departure: %s\n", convCtx.ArrivalDate, convCtx.DepartureDate)
	fmt.Fprintf(&b, "Default check-in: %s  Default check-out: %s\n",
		convCtx.DefaultCheckinTime, convCtx.DefaultCheckoutTime)

	if len(convCtx.PreviousMessages) > 0 {
		b.WriteString("\nPrevious messages (for context):\n")
		prev := convCtx.PreviousMessages
		if len(prev) > 3 {
			prev = prev[len(prev)-3:]
		}
		for _, m := range prev {
			fmt.Fprintf(&b, "  - %s\n", m)
		}
	}

	fmt.Fprintf(&b, "\nLatest guest message:\n%s", message)
	return b.String()
}
