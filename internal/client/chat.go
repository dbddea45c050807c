package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

// ChatReply é a resposta de POST /chat/message.
type ChatReply struct {
	Response    string             `json:"response"`
	UserMessage entity.ChatMessage `json:"user_message"`
	AIMessage   entity.ChatMessage `json:"ai_message"`
}

func (c *Client) ListChats(ctx context.Context) ([]entity.ChatContact, error) {
	var contacts []entity.ChatContact
	if err := c.do(ctx, http.MethodGet, "/chat/list", nil, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (c *Client) GetMessages(ctx context.Context, chatID string) ([]entity.ChatMessage, error) {
	var msgs []entity.ChatMessage
	if err := c.do(ctx, http.MethodGet, "/chat/"+url.PathEscape(chatID)+"/messages", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID, message string) (*ChatReply, error) {
	in := map[string]string{"chat_id": chatID, "message": message}

	var out ChatReply
	if err := c.do(ctx, http.MethodPost, "/chat/message", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
