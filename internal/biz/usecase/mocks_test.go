package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
)

// Mock implementations

type mockMemoryRepo struct {
	mu       sync.Mutex
	seen     map[string]bool
	requests map[string]*domain.ProcessedRequest // by request ID
	drafts   []*domain.Draft
	cursors  map[string]string
	nextID   int64
}

func newMockMemoryRepo() *mockMemoryRepo {
	return &mockMemoryRepo{
		seen:     make(map[string]bool),
		requests: make(map[string]*domain.ProcessedRequest),
		cursors:  make(map[string]string),
	}
}

func (m *mockMemoryRepo) HasMessageBeenSeen(ctx context.Context, messageID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[messageID], nil
}

func (m *mockMemoryRepo) MarkMessageSeen(ctx context.Context, messageID string, reservationID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[messageID] = true
	return nil
}

func (m *mockMemoryRepo) HasBeenProcessed(ctx context.Context, reservationID int64, intent domain.Intent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.requests {
		if req.ReservationID == reservationID && req.Intent == intent {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockMemoryRepo) SaveRequest(ctx context.Context, req *domain.ProcessedRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.requests {
		if existing.ReservationID == req.ReservationID && existing.Intent == req.Intent {
			return fmt.Errorf("%w: pair exists", domain.ErrConflict)
		}
	}
	if req.Status == "" {
		req.Status = domain.StatusPendingAcknowledgment
	}
	req.CreatedAt = time.Now()
	m.requests[req.RequestID] = req
	return nil
}

func (m *mockMemoryRepo) GetRequest(ctx context.Context, requestID string) (*domain.ProcessedRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return nil, fmt.Errorf("%w: request %s", domain.ErrNotFound, requestID)
	}
	copied := *req
	return &copied, nil
}

func (m *mockMemoryRepo) UpdateStatus(ctx context.Context, requestID string, status domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return fmt.Errorf("%w: request %s", domain.ErrNotFound, requestID)
	}
	if status != req.Status && !req.Status.CanAdvanceTo(status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrState, req.Status, status)
	}
	req.Status = status
	return nil
}

func (m *mockMemoryRepo) GetHistory(ctx context.Context, reservationID int64) ([]*domain.ProcessedRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ProcessedRequest
	for _, req := range m.requests {
		if req.ReservationID == reservationID {
			copied := *req
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockMemoryRepo) SaveDraft(ctx context.Context, draft *domain.Draft) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	draft.DraftID = m.nextID
	draft.Verdict = domain.VerdictPending
	draft.CreatedAt = time.Now()
	m.drafts = append(m.drafts, draft)
	return draft.DraftID, nil
}

func (m *mockMemoryRepo) GetDraft(ctx context.Context, draftID int64) (*domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.drafts {
		if d.DraftID == draftID {
			copied := *d
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: draft %d", domain.ErrNotFound, draftID)
}

func (m *mockMemoryRepo) GetPendingDrafts(ctx context.Context) ([]*domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Draft
	for _, d := range m.drafts {
		if d.Verdict == domain.VerdictPending {
			copied := *d
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockMemoryRepo) ReviewDraft(ctx context.Context, draftID int64, verdict domain.Verdict, actualSent, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.drafts {
		if d.DraftID != draftID {
			continue
		}
		if d.Verdict != domain.VerdictPending {
			return fmt.Errorf("%w: already reviewed", domain.ErrState)
		}
		now := time.Now()
		d.Verdict = verdict
		d.ActualMessageSent = actualSent
		d.OwnerComment = comment
		d.ReviewedAt = &now
		return nil
	}
	return fmt.Errorf("%w: draft %d", domain.ErrNotFound, draftID)
}

func (m *mockMemoryRepo) GetCursor(ctx context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursors[name], nil
}

func (m *mockMemoryRepo) SetCursor(ctx context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursors[name] = value
	return nil
}

func (m *mockMemoryRepo) Close() error { return nil }

func (m *mockMemoryRepo) draftsByStep(step domain.Step) []*domain.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Draft
	for _, d := range m.drafts {
		if d.Step == step {
			out = append(out, d)
		}
	}
	return out
}

type mockClassifierRepo struct {
	mu     sync.Mutex
	result *domain.ClassificationResult
	err    error
	calls  int
}

func (m *mockClassifierRepo) Classify(ctx context.Context, message string, convCtx *domain.ConversationContext) (*domain.ClassificationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	copied := *m.result
	return &copied, nil
}

type mockResponderRepo struct {
	ackBody     string
	queryBody   string
	parsed      *domain.ParsedResponse
	replyBody   string
	parseErr    error
	parseErrFor map[string]error // per request ID
	ackErr      error
}

func (m *mockResponderRepo) Acknowledge(ctx context.Context, result *domain.ClassificationResult, convCtx *domain.ConversationContext) (*domain.ComposedReply, error) {
	if m.ackErr != nil {
		return nil, m.ackErr
	}
	return &domain.ComposedReply{Body: m.ackBody, Confidence: 0.9}, nil
}

func (m *mockResponderRepo) ComposeQuery(ctx context.Context, query *domain.CleanerQuery) (string, error) {
	return m.queryBody, nil
}

func (m *mockResponderRepo) Parse(ctx context.Context, rawText string, query *domain.CleanerQuery) (*domain.ParsedResponse, error) {
	if m.parseErr != nil {
		return nil, m.parseErr
	}
	if err, ok := m.parseErrFor[query.RequestID]; ok {
		return nil, err
	}
	copied := *m.parsed
	return &copied, nil
}

func (m *mockResponderRepo) Compose(ctx context.Context, parsed *domain.ParsedResponse, query *domain.CleanerQuery) (*domain.ComposedReply, error) {
	return &domain.ComposedReply{Body: m.replyBody, Confidence: 0.9}, nil
}

type mockNotifierRepo struct {
	mu            sync.Mutex
	lowConfidence int
	unclear       int
}

func (m *mockNotifierRepo) NotifyLowConfidence(ctx context.Context, convCtx *domain.ConversationContext, result *domain.ClassificationResult, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lowConfidence++
	return nil
}

func (m *mockNotifierRepo) NotifyUnclearReply(ctx context.Context, req *domain.ProcessedRequest, rawText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unclear++
	return nil
}

type mockCleanerRepo struct {
	mu        sync.Mutex
	responses []*domain.CleanerResponse
	sent      []string
}

func (m *mockCleanerRepo) SendQuery(ctx context.Context, query *domain.CleanerQuery, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, body)
	return "track-1", nil
}

func (m *mockCleanerRepo) PollResponses(ctx context.Context) ([]*domain.CleanerResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.responses
	m.responses = nil
	return out, nil
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testContext() *domain.ConversationContext {
	return &domain.ConversationContext{
		ReservationID:       100,
		GuestName:           "Anna Keller",
		PropertyName:        "Seaside Flat",
		DefaultCheckinTime:  "15:00",
		DefaultCheckoutTime: "11:00",
		ArrivalDate:         "2026-09-05",
		DepartureDate:       "2026-09-08",
	}
}
