package data

import (
	"context"
	"errors"
	"testing"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
	"github.com/hostkit/checkin-bridge/internal/biz/repo"
)

func newTestStore(t *testing.T) repo.MemoryRepo {
	t.Helper()
	store, err := NewMemoryRepo(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMarkMessageSeen_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seen, err := store.HasMessageBeenSeen(ctx, "msg-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if seen {
		t.Error("Expected fresh message to be unseen")
	}

	if err := store.MarkMessageSeen(ctx, "msg-1", 100); err != nil {
		t.Fatalf("First mark failed: %v", err)
	}
	if err := store.MarkMessageSeen(ctx, "msg-1", 100); err != nil {
		t.Fatalf("Second mark should be a no-op, got: %v", err)
	}

	seen, err = store.HasMessageBeenSeen(ctx, "msg-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !seen {
		t.Error("Expected message to be seen after marking")
	}
}

func TestSaveRequest_ConflictOnSamePair(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	req := &domain.ProcessedRequest{
		RequestID:     "req-1",
		ReservationID: 100,
		Intent:        domain.IntentEarlyCheckin,
		GuestMessage:  "can we come at noon?",
	}
	if err := store.SaveRequest(ctx, req); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	if req.Status != domain.StatusPendingAcknowledgment {
		t.Errorf("Expected default status, got %s", req.Status)
	}

	dup := &domain.ProcessedRequest{
		RequestID:     "req-2",
		ReservationID: 100,
		Intent:        domain.IntentEarlyCheckin,
		GuestMessage:  "noon works?",
	}
	err := store.SaveRequest(ctx, dup)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}

	// A different intent on the same reservation is independent
	other := &domain.ProcessedRequest{
		RequestID:     "req-3",
		ReservationID: 100,
		Intent:        domain.IntentLateCheckout,
		GuestMessage:  "and leave at 13:00?",
	}
	if err := store.SaveRequest(ctx, other); err != nil {
		t.Fatalf("Different intent should save: %v", err)
	}
}

func TestHasBeenProcessed_RegardlessOfStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	processed, err := store.HasBeenProcessed(ctx, 100, domain.IntentLateCheckout)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if processed {
		t.Error("Expected no request yet")
	}

	req := &domain.ProcessedRequest{
		RequestID:     "req-1",
		ReservationID: 100,
		Intent:        domain.IntentLateCheckout,
		GuestMessage:  "late checkout?",
	}
	if err := store.SaveRequest(ctx, req); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.UpdateStatus(ctx, "req-1", domain.StatusDone); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	processed, err = store.HasBeenProcessed(ctx, 100, domain.IntentLateCheckout)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !processed {
		t.Error("Expected done request to still count as processed")
	}
}

func TestUpdateStatus_ForwardOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	req := &domain.ProcessedRequest{
		RequestID:     "req-1",
		ReservationID: 100,
		Intent:        domain.IntentEarlyCheckin,
		GuestMessage:  "early?",
	}
	if err := store.SaveRequest(ctx, req); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Re-asserting the current status is a no-op
	if err := store.UpdateStatus(ctx, "req-1", domain.StatusPendingAcknowledgment); err != nil {
		t.Fatalf("Same-status update should pass: %v", err)
	}

	if err := store.UpdateStatus(ctx, "req-1", domain.StatusPendingCleaner); err != nil {
		t.Fatalf("Forward update failed: %v", err)
	}

	err := store.UpdateStatus(ctx, "req-1", domain.StatusPendingAcknowledgment)
	if !errors.Is(err, domain.ErrState) {
		t.Fatalf("Expected ErrState for backward move, got %v", err)
	}

	err = store.UpdateStatus(ctx, "missing", domain.StatusDone)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	got, err := store.GetRequest(ctx, "req-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != domain.StatusPendingCleaner {
		t.Errorf("Expected pending_cleaner, got %s", got.Status)
	}
}

func TestGetRequest_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRequest(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetPendingDrafts_OldestFirstAcrossReservations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids := make([]int64, 0, 3)
	for _, d := range []*domain.Draft{
		{ReservationID: 100, Intent: domain.IntentEarlyCheckin, Step: domain.StepAcknowledgment, Body: "first"},
		{ReservationID: 200, Intent: domain.IntentLateCheckout, Step: domain.StepCleanerQuery, Body: "second"},
		{ReservationID: 100, Intent: domain.IntentEarlyCheckin, Step: domain.StepFollowup, Body: "third"},
	} {
		id, err := store.SaveDraft(ctx, d)
		if err != nil {
			t.Fatalf("Save draft failed: %v", err)
		}
		ids = append(ids, id)
	}

	pending, err := store.GetPendingDrafts(ctx)
	if err != nil {
		t.Fatalf("Get pending failed: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("Expected 3 pending drafts, got %d", len(pending))
	}
	for i, d := range pending {
		if d.DraftID != ids[i] {
			t.Errorf("Expected draft %d at position %d, got %d", ids[i], i, d.DraftID)
		}
	}

	// Reviewing removes a draft from the pending queue
	if err := store.ReviewDraft(ctx, ids[0], domain.VerdictOK, "", ""); err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	pending, err = store.GetPendingDrafts(ctx)
	if err != nil {
		t.Fatalf("Get pending failed: %v", err)
	}
	if len(pending) != 2 || pending[0].DraftID != ids[1] {
		t.Errorf("Expected reviewed draft to leave the queue")
	}
}

func TestReviewDraft_ExactlyOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveDraft(ctx, &domain.Draft{
		ReservationID: 100,
		Intent:        domain.IntentLateCheckout,
		Step:          domain.StepGuestReply,
		Body:          "the cleaner says yes",
	})
	if err != nil {
		t.Fatalf("Save draft failed: %v", err)
	}

	if err := store.ReviewDraft(ctx, id, domain.VerdictNOK, "I sent this instead", "too formal"); err != nil {
		t.Fatalf("Review failed: %v", err)
	}

	err = store.ReviewDraft(ctx, id, domain.VerdictOK, "", "")
	if !errors.Is(err, domain.ErrState) {
		t.Fatalf("Expected ErrState on second review, got %v", err)
	}

	draft, err := store.GetDraft(ctx, id)
	if err != nil {
		t.Fatalf("Get draft failed: %v", err)
	}
	if draft.Verdict != domain.VerdictNOK {
		t.Errorf("Expected nok, got %s", draft.Verdict)
	}
	if draft.ActualMessageSent != "I sent this instead" {
		t.Errorf("Unexpected actual message %q", draft.ActualMessageSent)
	}
	if draft.OwnerComment != "too formal" {
		t.Errorf("Unexpected comment %q", draft.OwnerComment)
	}
	if draft.ReviewedAt == nil {
		t.Error("Expected reviewed_at to be set")
	}

	err = store.ReviewDraft(ctx, 9999, domain.VerdictOK, "", "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestReviewDraft_RejectsNonTerminalVerdict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveDraft(ctx, &domain.Draft{
		ReservationID: 100,
		Intent:        domain.IntentEarlyCheckin,
		Step:          domain.StepAcknowledgment,
		Body:          "Thanks, checking now",
	})
	if err != nil {
		t.Fatalf("Save draft failed: %v", err)
	}

	err = store.ReviewDraft(ctx, id, domain.VerdictPending, "", "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Expected ErrValidation for pending verdict, got %v", err)
	}

	draft, err := store.GetDraft(ctx, id)
	if err != nil {
		t.Fatalf("Get draft failed: %v", err)
	}
	if draft.Verdict != domain.VerdictPending {
		t.Errorf("Expected draft untouched, got %s", draft.Verdict)
	}
	if draft.ReviewedAt != nil {
		t.Error("Expected reviewed_at to stay unset")
	}
}

func TestSaveDraft_WithoutRequest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveDraft(ctx, &domain.Draft{
		ReservationID: 100,
		Intent:        domain.IntentEarlyCheckin,
		Step:          domain.StepFollowup,
		Body:          "what time would you like to arrive?",
	})
	if err != nil {
		t.Fatalf("Save draft failed: %v", err)
	}

	draft, err := store.GetDraft(ctx, id)
	if err != nil {
		t.Fatalf("Get draft failed: %v", err)
	}
	if draft.RequestID != "" {
		t.Errorf("Expected empty request ID, got %q", draft.RequestID)
	}
}

func TestGetHistory_OldestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, req := range []*domain.ProcessedRequest{
		{RequestID: "req-1", ReservationID: 100, Intent: domain.IntentEarlyCheckin, GuestMessage: "a"},
		{RequestID: "req-2", ReservationID: 100, Intent: domain.IntentLateCheckout, GuestMessage: "b"},
		{RequestID: "req-3", ReservationID: 200, Intent: domain.IntentEarlyCheckin, GuestMessage: "c"},
	} {
		if err := store.SaveRequest(ctx, req); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	history, err := store.GetHistory(ctx, 100)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 requests, got %d", len(history))
	}
	if history[0].RequestID != "req-1" || history[1].RequestID != "req-2" {
		t.Error("Expected history in insert order")
	}
}

func TestCursor_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	value, err := store.GetCursor(ctx, "lark_cleaner_chat")
	if err != nil {
		t.Fatalf("Get cursor failed: %v", err)
	}
	if value != "" {
		t.Errorf("Expected empty cursor, got %q", value)
	}

	if err := store.SetCursor(ctx, "lark_cleaner_chat", "1756600000000"); err != nil {
		t.Fatalf("Set cursor failed: %v", err)
	}
	if err := store.SetCursor(ctx, "lark_cleaner_chat", "1756600001000"); err != nil {
		t.Fatalf("Overwrite cursor failed: %v", err)
	}

	value, err = store.GetCursor(ctx, "lark_cleaner_chat")
	if err != nil {
		t.Fatalf("Get cursor failed: %v", err)
	}
	if value != "1756600001000" {
		t.Errorf("Expected latest cursor value, got %q", value)
	}
}
