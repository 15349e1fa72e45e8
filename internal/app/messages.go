package app

import (
	"context"
	"strings"

	"petlink/internal/util"
	"petlink/pkg/domain"
)

// SelectOrder makes order the selected one and loads its chat. A nil order
// clears the selection and the chat without a request.
func (a *App) SelectOrder(ctx context.Context, order *domain.Order) error {
	ctx = util.WithRequestID(ctx)
	a.mu.Lock()
	if order == nil {
		a.selected = nil
	} else {
		o := *order
		a.selected = &o
	}
	a.mu.Unlock()
	return a.dispatch(ctx, EventSelectionChanged)
}

// SelectOrderByID selects a cached order, fetching it when it is not cached.
func (a *App) SelectOrderByID(ctx context.Context, id int64) error {
	ctx = util.WithRequestID(ctx)
	a.mu.Lock()
	var found *domain.Order
	for i := range a.orders {
		if a.orders[i].ID == id {
			o := a.orders[i]
			found = &o
			break
		}
	}
	a.mu.Unlock()
	if found == nil {
		order, err := a.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		found = &order
	}
	return a.SelectOrder(ctx, found)
}

// loadMessages replaces the chat with that of the selected order. Each call
// takes a new generation; a response from an older one is dropped.
func (a *App) loadMessages(ctx context.Context) error {
	logger := util.LoggerFromContext(ctx)

	a.mu.Lock()
	a.msgGen++
	gen := a.msgGen
	if a.selected == nil || !a.session.Active() {
		a.messages = nil
		a.mu.Unlock()
		return nil
	}
	orderID := a.selected.ID
	token := a.session.Token
	a.mu.Unlock()

	msgs, err := a.api.ListMessages(ctx, token, orderID)

	a.mu.Lock()
	stale := gen != a.msgGen
	if !stale && err == nil {
		a.messages = msgs
	}
	a.mu.Unlock()

	if stale {
		logger.Debug("discarding stale messages", "order_id", orderID, "generation", gen)
		return nil
	}
	if err != nil {
		return a.reportRequest("Failed to fetch messages", newRequestError("list messages", "", err))
	}
	return nil
}

// SendMessage posts content to the selected order's chat. Without a session,
// a selection or non-blank content nothing is sent.
func (a *App) SendMessage(ctx context.Context, content string) (domain.Message, error) {
	ctx = util.WithRequestID(ctx)

	a.mu.Lock()
	a.forms.Message = content
	sess := a.session
	var orderID int64
	if a.selected != nil {
		orderID = a.selected.ID
	}
	a.mu.Unlock()

	if !sess.Active() || orderID == 0 || strings.TrimSpace(content) == "" {
		a.toasts.Warning("Check that you're logged in and message is not empty")
		return domain.Message{}, ErrMessageIncomplete
	}

	msg, err := a.api.SendMessage(ctx, sess.Token, orderID, sess.UserID, content)
	if err != nil {
		return domain.Message{}, a.reportRequest("Error sending message", newRequestError("send message", "Failed to send message", err))
	}
	if msg.Sender == nil || msg.Sender.Username == "" {
		msg.Sender = &domain.UserPublic{ID: sess.UserID, Username: sess.Username}
	}

	a.mu.Lock()
	if a.stillCurrentLocked(sess.Token) && a.selected != nil && a.selected.ID == orderID {
		a.messages = append(a.messages, msg)
		a.forms.Message = ""
	}
	a.mu.Unlock()
	return msg, nil
}

// DeleteMessage removes one of the user's own messages after confirmation.
func (a *App) DeleteMessage(ctx context.Context, id int64) error {
	ctx = util.WithRequestID(ctx)
	sess, err := a.requireSession()
	if err != nil {
		return err
	}

	a.mu.Lock()
	for _, m := range a.messages {
		if m.ID == id {
			if sender := senderID(m); sender != 0 && sender != sess.UserID {
				a.mu.Unlock()
				a.toasts.Warning("You can only delete your own messages")
				return ErrNotSender
			}
			break
		}
	}
	a.mu.Unlock()

	if !a.confirmed("Are you sure you want to delete this message?") {
		return ErrNotConfirmed
	}
	if err := a.api.DeleteMessage(ctx, sess.Token, id); err != nil {
		return a.reportRequest("Error deleting message", newRequestError("delete message", "Failed to delete message", err))
	}

	a.mu.Lock()
	kept := a.messages[:0]
	for _, m := range a.messages {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	a.messages = kept
	a.mu.Unlock()

	a.toasts.Success("Message deleted")
	return nil
}

func senderID(m domain.Message) int64 {
	if m.SenderID != 0 {
		return m.SenderID
	}
	if m.Sender != nil {
		return m.Sender.ID
	}
	return 0
}
