package data

import (
	"context"
	"strconv"
	"time"

	"github.com/hostkit/checkin-bridge/internal/biz/domain"
	"github.com/hostkit/checkin-bridge/internal/biz/repo"
	"github.com/hostkit/checkin-bridge/internal/infra/lark"
)

const cleanerCursorName = "lark_cleaner_chat"

// cleanerChat is the slice of the Lark client the channel needs
type cleanerChat interface {
	SendText(ctx context.Context, chatID, text string) (string, error)
	ListMessagesSince(ctx context.Context, chatID string, sinceMs int64) ([]*lark.ChatMessage, error)
}

// cleanerRepo implements the cleaner-notification channel on a Lark
// chat. Replies are matched by the correlation token in the text, not
// by threading, so the cleaner can answer in plain free text.
type cleanerRepo struct {
	client cleanerChat
	chatID string
	cursor repo.CursorStore
}

// NewCleanerRepo creates a Lark-backed cleaner channel. The cursor
// store persists the last consumed message timestamp so restarts do
// not replay the whole chat history.
func NewCleanerRepo(client *lark.Client, chatID string, cursor repo.CursorStore) repo.CleanerRepo {
	return &cleanerRepo{client: client, chatID: chatID, cursor: cursor}
}

// SendQuery posts the composed question with the correlation token
// appended, so the reply can be matched back to the request.
func (r *cleanerRepo) SendQuery(ctx context.Context, query *domain.CleanerQuery, body string) (string, error) {
	text := body + "\n\n" + domain.CorrelationToken(query.RequestID)
	msgID, err := r.client.SendText(ctx, r.chatID, text)
	if err != nil {
		return "", domain.NewExternalServiceError("lark", err)
	}
	return msgID, nil
}

// PollResponses returns cleaner replies newer than the persisted
// cursor. The listing walks chat pages back to the cursor, so a burst
// of messages between polls is never skipped. Bot-authored messages
// (our own queries) and messages without a correlation token are
// dropped here; the cursor still advances past them.
func (r *cleanerRepo) PollResponses(ctx context.Context) ([]*domain.CleanerResponse, error) {
	since, err := r.cursor.GetCursor(ctx, cleanerCursorName)
	if err != nil {
		return nil, err
	}
	sinceMs, _ := strconv.ParseInt(since, 10, 64)

	msgs, err := r.client.ListMessagesSince(ctx, r.chatID, sinceMs)
	if err != nil {
		return nil, domain.NewExternalServiceError("lark", err)
	}

	var (
		responses []*domain.CleanerResponse
		latestMs  = sinceMs
	)
	for _, m := range msgs {
		createMs, err := strconv.ParseInt(m.CreateTime, 10, 64)
		if err != nil {
			continue
		}
		if createMs > latestMs {
			latestMs = createMs
		}
		if m.SenderType == "bot" || m.MsgType != "text" {
			continue
		}
		requestID := domain.ExtractCorrelationID(m.Content)
		if requestID == "" {
			continue
		}
		responses = append(responses, &domain.CleanerResponse{
			RequestID:  requestID,
			RawText:    m.Content,
			ReceivedAt: time.UnixMilli(createMs).UTC(),
		})
	}

	if latestMs > sinceMs {
		if err := r.cursor.SetCursor(ctx, cleanerCursorName, strconv.FormatInt(latestMs, 10)); err != nil {
			return nil, err
		}
	}
	return responses, nil
}
