package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
	"github.com/hostkit/checkin-bridge/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// memoryRepo implements the request-memory store on sqlite
type memoryRepo struct {
	db *sql.DB
}

// NewMemoryRepo opens (or creates) the request-memory database.
// Use ":memory:" in tests for a behaviorally identical in-memory
// variant of the same schema.
func NewMemoryRepo(dbPath string) (repo.MemoryRepo, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; a single connection keeps ":memory:" from
	// silently becoming several separate databases.
	db.SetMaxOpenConns(1)

	// Seen messages: write-once per message ID, existence is the signal
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS seen_messages (
			message_id TEXT PRIMARY KEY,
			reservation_id INTEGER NOT NULL,
			seen_at TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create seen_messages table: %w", err)
	}

	// Requests: one row per (reservation, intent), never deleted
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL UNIQUE,
			reservation_id INTEGER NOT NULL,
			intent TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending_acknowledgment',
			guest_message TEXT NOT NULL,
			guest_name TEXT NOT NULL DEFAULT '',
			property_name TEXT NOT NULL DEFAULT '',
			original_time TEXT NOT NULL DEFAULT '',
			requested_time TEXT NOT NULL DEFAULT '',
			relevant_date TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create requests table: %w", err)
	}

	_, err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_reservation_intent
		ON requests(reservation_id, intent)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create requests index: %w", err)
	}

	// Drafts: audit trail, never deleted
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS drafts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT,
			reservation_id INTEGER NOT NULL,
			intent TEXT NOT NULL,
			step TEXT NOT NULL,
			body TEXT NOT NULL,
			verdict TEXT NOT NULL DEFAULT 'pending',
			actual_message_sent TEXT,
			owner_comment TEXT,
			created_at TEXT NOT NULL,
			reviewed_at TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create drafts table: %w", err)
	}

	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_drafts_verdict ON drafts(verdict)`)

	// Poll cursors for pull-based channels
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS cursors (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cursors table: %w", err)
	}

	return &memoryRepo{db: db}, nil
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// HasMessageBeenSeen reports whether a message ID was ever classified
func (r *memoryRepo) HasMessageBeenSeen(ctx context.Context, messageID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM seen_messages WHERE message_id = ?`, messageID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query seen message: %w", err)
	}
	return true, nil
}

// MarkMessageSeen records a classified message ID, idempotently
func (r *memoryRepo) MarkMessageSeen(ctx context.Context, messageID string, reservationID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO seen_messages (message_id, reservation_id, seen_at)
		VALUES (?, ?, ?)
	`, messageID, reservationID, nowUTC())
	if err != nil {
		return fmt.Errorf("failed to mark message seen: %w", err)
	}
	return nil
}

// HasBeenProcessed reports whether the (reservation, intent) pair has a request
func (r *memoryRepo) HasBeenProcessed(ctx context.Context, reservationID int64, intent domain.Intent) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM requests WHERE reservation_id = ? AND intent = ?`,
		reservationID, string(intent)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query request: %w", err)
	}
	return true, nil
}

// SaveRequest creates a new request record
func (r *memoryRepo) SaveRequest(ctx context.Context, req *domain.ProcessedRequest) error {
	exists, err := r.HasBeenProcessed(ctx, req.ReservationID, req.Intent)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: request for reservation %d intent %s already exists",
			domain.ErrConflict, req.ReservationID, req.Intent)
	}

	status := req.Status
	if status == "" {
		status = domain.StatusPendingAcknowledgment
	}
	createdAt := nowUTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO requests
			(request_id, reservation_id, intent, status, guest_message,
			 guest_name, property_name, original_time, requested_time, relevant_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		req.RequestID, req.ReservationID, string(req.Intent), string(status), req.GuestMessage,
		req.GuestName, req.PropertyName, req.OriginalTime, req.RequestedTime, req.RelevantDate, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	req.Status = status
	req.CreatedAt = parseTime(createdAt)
	return nil
}

const requestColumns = `request_id, reservation_id, intent, status, guest_message,
	guest_name, property_name, original_time, requested_time, relevant_date, created_at`

// GetRequest looks up a request by its correlation ID
func (r *memoryRepo) GetRequest(ctx context.Context, requestID string) (*domain.ProcessedRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE request_id = ?`, requestID)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: request %s", domain.ErrNotFound, requestID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query request: %w", err)
	}
	return req, nil
}

// UpdateStatus moves a request forward. Re-asserting the current
// status is a no-op; moving backward is ErrState.
func (r *memoryRepo) UpdateStatus(ctx context.Context, requestID string, status domain.Status) error {
	var current string
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM requests WHERE request_id = ?`, requestID).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: request %s", domain.ErrNotFound, requestID)
	}
	if err != nil {
		return fmt.Errorf("failed to query request status: %w", err)
	}

	cur, err := domain.ParseStatus(current)
	if err != nil {
		return fmt.Errorf("stored status corrupt: %w", err)
	}
	if status != cur && !cur.CanAdvanceTo(status) {
		return fmt.Errorf("%w: cannot move request %s from %s to %s",
			domain.ErrState, requestID, cur, status)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE requests SET status = ? WHERE request_id = ?`, string(status), requestID)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

// GetHistory returns all requests for a reservation, oldest first
func (r *memoryRepo) GetHistory(ctx context.Context, reservationID int64) ([]*domain.ProcessedRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE reservation_id = ? ORDER BY id`,
		reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var result []*domain.ProcessedRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*domain.ProcessedRequest, error) {
	var req domain.ProcessedRequest
	var intent, status, createdAt string
	err := row.Scan(&req.RequestID, &req.ReservationID, &intent, &status, &req.GuestMessage,
		&req.GuestName, &req.PropertyName, &req.OriginalTime, &req.RequestedTime, &req.RelevantDate, &createdAt)
	if err != nil {
		return nil, err
	}
	req.Intent = domain.Intent(intent)
	req.Status = domain.Status(status)
	req.CreatedAt = parseTime(createdAt)
	return &req, nil
}

// SaveDraft stores a draft for owner review and returns its ID
func (r *memoryRepo) SaveDraft(ctx context.Context, draft *domain.Draft) (int64, error) {
	requestID := sql.NullString{String: draft.RequestID, Valid: draft.RequestID != ""}
	createdAt := nowUTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO drafts (request_id, reservation_id, intent, step, body, verdict, created_at)
		VALUES (?, ?, ?, ?, ?, 'pending', ?)
	`, requestID, draft.ReservationID, string(draft.Intent), string(draft.Step), draft.Body, createdAt)
	if err != nil {
		return 0, fmt.Errorf("failed to save draft: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get draft id: %w", err)
	}
	draft.DraftID = id
	draft.Verdict = domain.VerdictPending
	draft.CreatedAt = parseTime(createdAt)
	return id, nil
}

const draftColumns = `id, request_id, reservation_id, intent, step, body, verdict,
	actual_message_sent, owner_comment, created_at, reviewed_at`

// GetDraft looks up a draft by its ID
func (r *memoryRepo) GetDraft(ctx context.Context, draftID int64) (*domain.Draft, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+draftColumns+` FROM drafts WHERE id = ?`, draftID)
	draft, err := scanDraft(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: draft %d", domain.ErrNotFound, draftID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query draft: %w", err)
	}
	return draft, nil
}

// GetPendingDrafts returns drafts awaiting review, oldest first.
// Draft IDs are monotonically increasing, so id order is insert order
// regardless of which reservation a draft belongs to.
func (r *memoryRepo) GetPendingDrafts(ctx context.Context) ([]*domain.Draft, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+draftColumns+` FROM drafts WHERE verdict = 'pending' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending drafts: %w", err)
	}
	defer rows.Close()

	var result []*domain.Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		result = append(result, draft)
	}
	return result, rows.Err()
}

func scanDraft(row rowScanner) (*domain.Draft, error) {
	var draft domain.Draft
	var requestID, actualSent, comment, reviewedAt sql.NullString
	var intent, step, verdict, createdAt string
	err := row.Scan(&draft.DraftID, &requestID, &draft.ReservationID, &intent, &step,
		&draft.Body, &verdict, &actualSent, &comment, &createdAt, &reviewedAt)
	if err != nil {
		return nil, err
	}
	draft.RequestID = requestID.String
	draft.Intent = domain.Intent(intent)
	draft.Step = domain.Step(step)
	draft.Verdict = domain.Verdict(verdict)
	draft.ActualMessageSent = actualSent.String
	draft.OwnerComment = comment.String
	draft.CreatedAt = parseTime(createdAt)
	if reviewedAt.Valid {
		t := parseTime(reviewedAt.String)
		draft.ReviewedAt = &t
	}
	return &draft, nil
}

// ReviewDraft records the owner's verdict exactly once
func (r *memoryRepo) ReviewDraft(ctx context.Context, draftID int64, verdict domain.Verdict, actualSent, comment string) error {
	if !verdict.IsTerminal() {
		return fmt.Errorf("%w: verdict must be ok or nok", domain.ErrValidation)
	}

	var current string
	err := r.db.QueryRowContext(ctx,
		`SELECT verdict FROM drafts WHERE id = ?`, draftID).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: draft %d", domain.ErrNotFound, draftID)
	}
	if err != nil {
		return fmt.Errorf("failed to query draft verdict: %w", err)
	}
	if domain.Verdict(current) != domain.VerdictPending {
		return fmt.Errorf("%w: draft %d already reviewed (%s)", domain.ErrState, draftID, current)
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE drafts
		SET verdict = ?, actual_message_sent = NULLIF(?, ''), owner_comment = NULLIF(?, ''), reviewed_at = ?
		WHERE id = ?
	`, string(verdict), actualSent, comment, nowUTC(), draftID)
	if err != nil {
		return fmt.Errorf("failed to review draft: %w", err)
	}
	return nil
}

// GetCursor returns the persisted poll cursor for a channel, or ""
func (r *memoryRepo) GetCursor(ctx context.Context, name string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM cursors WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query cursor: %w", err)
	}
	return value, nil
}

// SetCursor persists a poll cursor
func (r *memoryRepo) SetCursor(ctx context.Context, name, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO cursors (name, value, updated_at) VALUES (?, ?, ?)
	`, name, value, nowUTC())
	if err != nil {
		return fmt.Errorf("failed to set cursor: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *memoryRepo) Close() error {
	return r.db.Close()
}
