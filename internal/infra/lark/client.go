package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	larksdk "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
)

// ChatMessage is one message read back from a chat
type ChatMessage struct {
	MsgID      string
	MsgType    string
	Content    string
	CreateTime string // millisecond unix timestamp as string
	SenderID   string
	SenderType string // user, bot
}

// Client is a thin Lark chat client: send text to a chat, list what
// came back. The cleaning-staff channel lives on top of it.
type Client struct {
	larkCli *larksdk.Client
}

// NewClient creates a new Lark client
func NewClient(appID, appSecret string) *Client {
	return &Client{
		larkCli: larksdk.NewClient(appID, appSecret),
	}
}

// SendText sends a text message to a chat and returns the message ID
func (c *Client) SendText(ctx context.Context, chatID, text string) (string, error) {
	content := map[string]string{"text": text}
	contentJSON, _ := json.Marshal(content)

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(larkim.MsgTypeText).
			Content(string(contentJSON)).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Create(ctx, req)
	if err != nil {
		return "", fmt.Errorf("send message failed: %w", err)
	}
	if !resp.Success() {
		return "", fmt.Errorf("send message error: %s", resp.Msg)
	}

	msgID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		msgID = *resp.Data.MessageId
	}
	return msgID, nil
}

// ListMessagesSince retrieves every message created after sinceMs
// (millisecond unix timestamp), oldest first. The API pages newest
// first, so this walks page tokens until it reaches a message at or
// before the cursor; a burst larger than one page is never skipped.
func (c *Client) ListMessagesSince(ctx context.Context, chatID string, sinceMs int64) ([]*ChatMessage, error) {
	var messages []*ChatMessage
	pageToken := ""

	for {
		// ByCreateTimeDesc so the first page holds the latest
		// messages; the API default ascends from chat creation.
		builder := larkim.NewListMessageReqBuilder().
			ContainerIdType("chat").
			ContainerId(chatID).
			SortType("ByCreateTimeDesc").
			PageSize(50)
		if pageToken != "" {
			builder.PageToken(pageToken)
		}

		resp, err := c.larkCli.Im.Message.List(ctx, builder.Build())
		if err != nil {
			return nil, fmt.Errorf("list messages failed: %w", err)
		}
		if !resp.Success() {
			return nil, fmt.Errorf("list messages error: %s", resp.Msg)
		}

		reachedCursor := false
		for _, item := range resp.Data.Items {
			msg := convertMessageItem(item)
			createMs, err := strconv.ParseInt(msg.CreateTime, 10, 64)
			if err != nil || createMs <= sinceMs {
				reachedCursor = true
				continue
			}
			messages = append(messages, msg)
		}

		if reachedCursor || resp.Data.HasMore == nil || !*resp.Data.HasMore ||
			resp.Data.PageToken == nil || *resp.Data.PageToken == "" {
			break
		}
		pageToken = *resp.Data.PageToken
	}

	// Reverse to chronological order, oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func convertMessageItem(item *larkim.Message) *ChatMessage {
	msg := &ChatMessage{}
	if item.MessageId != nil {
		msg.MsgID = *item.MessageId
	}
	if item.MsgType != nil {
		msg.MsgType = *item.MsgType
	}
	if item.CreateTime != nil {
		msg.CreateTime = *item.CreateTime
	}
	if item.Body != nil && item.Body.Content != nil {
		if msg.MsgType == "text" {
			msg.Content = parseTextContent(*item.Body.Content)
		} else {
			msg.Content = *item.Body.Content
		}
	}
	if item.Sender != nil {
		if item.Sender.Id != nil {
			msg.SenderID = *item.Sender.Id
		}
		if item.Sender.SenderType != nil {
			msg.SenderType = *item.Sender.SenderType
		}
	}
	return msg
}

// parseTextContent extracts the text field from a raw message body
func parseTextContent(raw string) string {
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return raw
	}
	return parsed.Text
}
