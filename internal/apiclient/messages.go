package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"petlink/pkg/domain"
)

func (c *Client) ListMessages(ctx context.Context, token string, orderID int64) ([]domain.Message, error) {
	var msgs []domain.Message
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/messages/?order_id=%d", orderID), token, nil, &msgs); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

type sendMessageRequest struct {
	OrderID  int64  `json:"order_id"`
	SenderID int64  `json:"sender_id"`
	Content  string `json:"content"`
}

func (c *Client) SendMessage(ctx context.Context, token string, orderID, senderID int64, content string) (domain.Message, error) {
	payload := sendMessageRequest{OrderID: orderID, SenderID: senderID, Content: content}
	var msg domain.Message
	if err := c.doJSON(ctx, http.MethodPost, "/messages/", token, payload, &msg); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

func (c *Client) DeleteMessage(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/messages/%d", id), token, nil, nil)
}

// DeleteMessagesByOrder removes every message of an order. It must run
// before the order itself is deleted.
func (c *Client) DeleteMessagesByOrder(ctx context.Context, token string, orderID int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/messages/?order_id=%d", orderID), token, nil, nil)
}
