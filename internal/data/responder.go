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

// responderRepo implements message parsing and composition on the AI service
type responderRepo struct {
	client  *openai.Client
	prompts *conf.PromptsConfig
}

// NewResponderRepo creates a responder backed by the AI service
func NewResponderRepo(client *openai.Client, prompts *conf.PromptsConfig) repo.ResponderRepo {
	if prompts == nil {
		prompts = conf.DefaultPromptsConfig()
	}
	return &responderRepo{client: client, prompts: prompts}
}

type composedWire struct {
	Body       string   `json:"body"`
	Confidence *float64 `json:"confidence"`
}

type parsedWire struct {
	Answer       string   `json:"answer"`
	Conditions   string   `json:"conditions"`
	ProposedTime string   `json:"proposed_time"`
	Confidence   *float64 `json:"confidence"`
}

func (r *responderRepo) Acknowledge(ctx context.Context, result *domain.ClassificationResult, convCtx *domain.ConversationContext) (*domain.ComposedReply, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Guest: %s\n", convCtx.GuestName)
	fmt.Fprintf(&b, "Property: %s\n", convCtx.PropertyName)
	fmt.Fprintf(&b, "Request type: %s\n", result.Intent)
	fmt.Fprintf(&b, "Current time: %s\n", convCtx.OriginalTime(result.Intent))
	if result.ExtractedTime != "" {
		fmt.Fprintf(&b, "Requested time: %s\n", result.ExtractedTime)
	}
	fmt.Fprintf(&b, "Date: %s\n", convCtx.RelevantDate(result.Intent))

	return r.compose(ctx, "acknowledger", r.prompts.Acknowledgment, b.String())
}

func (r *responderRepo) ComposeQuery(ctx context.Context, query *domain.CleanerQuery) (string, error) {
	reply, err := r.compose(ctx, "query_composer", r.prompts.CleanerQuery, formatQueryInput(query))
	if err != nil {
		return "", err
	}
	return reply.Body, nil
}

// Parse interprets a cleaner's free-text reply against the question it
// answers. Unrecognized answer values are rejected at this boundary.
func (r *responderRepo) Parse(ctx context.Context, rawText string, query *domain.CleanerQuery) (*domain.ParsedResponse, error) {
	var b strings.Builder
	b.WriteString("Question sent to the cleaner:\n")
	b.WriteString(formatQueryInput(query))
	fmt.Fprintf(&b, "\nCleaner's reply:\n%s", rawText)

	raw, err := r.client.Chat(ctx, r.prompts.ResponseParser, b.String(), 256)
	if err != nil {
		return nil, domain.NewExternalServiceError("response_parser", err)
	}

	var wire parsedWire
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &wire); err != nil {
		return nil, domain.NewExternalServiceError("response_parser", fmt.Errorf("malformed reply: %w", err))
	}

	answer, err := domain.ParseAnswer(wire.Answer)
	if err != nil {
		return nil, domain.NewExternalServiceError("response_parser", err)
	}

	confidence := 0.5
	if wire.Confidence != nil {
		confidence = clampConfidence(*wire.Confidence)
	}

	return &domain.ParsedResponse{
		Answer:       answer,
		Conditions:   wire.Conditions,
		ProposedTime: wire.ProposedTime,
		Confidence:   confidence,
	}, nil
}

func (r *responderRepo) Compose(ctx context.Context, parsed *domain.ParsedResponse, query *domain.CleanerQuery) (*domain.ComposedReply, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Guest: %s\n", query.GuestName)
	fmt.Fprintf(&b, "Request type: %s\n", query.RequestType)
	fmt.Fprintf(&b, "Original time: %s\n", query.OriginalTime)
	if query.RequestedTime != "" {
		fmt.Fprintf(&b, "Requested time: %s\n", query.RequestedTime)
	}
	fmt.Fprintf(&b, "Cleaner's answer: %s\n", parsed.Answer)
	if parsed.Conditions != "" {
		fmt.Fprintf(&b, "Conditions: %s\n", parsed.Conditions)
	}
	if parsed.ProposedTime != "" {
		fmt.Fprintf(&b, "Time proposed by the cleaner: %s\n", parsed.ProposedTime)
	}

	return r.compose(ctx, "reply_composer", r.prompts.ReplyComposer, b.String())
}

// compose runs one model call that yields a {"message","confidence"} reply
func (r *responderRepo) compose(ctx context.Context, service, systemPrompt, userContent string) (*domain.ComposedReply, error) {
	raw, err := r.client.Chat(ctx, systemPrompt, userContent, 512)
	if err != nil {
		return nil, domain.NewExternalServiceError(service, err)
	}

	var wire composedWire
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &wire); err != nil {
		return nil, domain.NewExternalServiceError(service, fmt.Errorf("malformed reply: %w", err))
	}
	if strings.TrimSpace(wire.Body) == "" {
		return nil, domain.NewExternalServiceError(service, fmt.Errorf("empty body in reply"))
	}

	confidence := 0.5
	if wire.Confidence != nil {
		confidence = clampConfidence(*wire.Confidence)
	}
	return &domain.ComposedReply{Body: wire.Body, Confidence: confidence}, nil
}

func formatQueryInput(query *domain.CleanerQuery) string {
	var b strings.Builder
	// The drafting path has no cleaner name; only the approved-send
	// path fills it from config.
	if query.CleanerName != "" {
		fmt.Fprintf(&b, "Cleaner: %s\n", query.CleanerName)
	}
	fmt.Fprintf(&b, "Property: %s\n", query.PropertyName)
	fmt.Fprintf(&b, "Guest: %s\n", query.GuestName)
	fmt.Fprintf(&b, "Request type: %s\n", query.RequestType)
	fmt.Fprintf(&b, "Date: %s\n", query.Date)
	fmt.Fprintf(&b, "Scheduled time: %s\n", query.OriginalTime)
	if query.RequestedTime != "" {
		fmt.Fprintf(&b, "Requested time: %s\n", query.RequestedTime)
	}
	fmt.Fprintf(&b, "Guest's own words: %s\n", query.GuestMessage)
	return b.String()
}
