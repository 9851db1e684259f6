package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/placette/messaging/internal/apierr"
	"github.com/placette/messaging/internal/bus"
	"github.com/placette/messaging/internal/wire"
	"go.uber.org/zap"
)

// Composer submits messages for the open thread with optimistic local
// updates: the entry appears in the cache immediately and is reconciled with
// the server copy when the send resolves. A failed send leaves the entry
// marked failed for a manual retry, never pretending it was sent.
type Composer struct {
	thread *Thread
	gw     Gateway
	bus    *bus.Bus
	logger *zap.Logger
}

// NewComposer creates a composer bound to a thread.
func NewComposer(thread *Thread, gw Gateway, b *bus.Bus, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{thread: thread, gw: gw, bus: b, logger: logger}
}

// Send validates, optimistically appends and submits a message. On success
// it returns the canonical server copy already merged into the cache.
func (c *Composer) Send(ctx context.Context, content string) (*wire.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apierr.New(apierr.InvalidArgument, "message content must not be empty")
	}

	clientID, conversationID, err := c.thread.appendProvisional(content)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, clientID, conversationID, content)
}

// Retry re-submits a failed entry identified by its client id.
func (c *Composer) Retry(ctx context.Context, clientID string) (*wire.Message, error) {
	content, conversationID, err := c.thread.markProvisionalPending(clientID)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, clientID, conversationID, content)
}

func (c *Composer) submit(ctx context.Context, clientID string, conversationID int64, content string) (*wire.Message, error) {
	msg, err := c.gw.SendMessage(ctx, conversationID, content)
	if err != nil {
		c.thread.failProvisional(clientID)
		c.logger.Warn("send failed",
			zap.Error(err),
			zap.Int64("conversation_id", conversationID),
			zap.String("client_id", clientID))
		c.publish("message.send_failed", SendFailed{
			ConversationID: conversationID,
			ClientID:       clientID,
			Reason:         err.Error(),
		})
		return nil, apierr.Wrap(apierr.CodeOf(err), err, "send message")
	}

	c.thread.resolveProvisional(clientID, msg)
	c.publish("message.send_ack", SendAck{
		ConversationID: conversationID,
		ClientID:       clientID,
		MessageID:      msg.ID,
	})
	return msg, nil
}

func (c *Composer) publish(kind string, payload any) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}

// SendAck is the payload for message.send_ack events.
type SendAck struct {
	ConversationID int64
	ClientID       string
	MessageID      int64
}

// SendFailed is the payload for message.send_failed events.
type SendFailed struct {
	ConversationID int64
	ClientID       string
	Reason         string
}
