package messaging

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/placette/messaging/internal/apierr"
	"github.com/placette/messaging/internal/bus"
	"github.com/placette/messaging/internal/wire"
	"go.uber.org/zap"
)

// Delivery is the local delivery status of a thread entry.
type Delivery string

const (
	// DeliveryPending: provisional entry, send still in flight.
	DeliveryPending Delivery = "pending"
	// DeliverySent: confirmed by the server (or loaded from it).
	DeliverySent Delivery = "sent"
	// DeliveryFailed: send failed; kept so the UI can offer a retry.
	DeliveryFailed Delivery = "failed"
)

// Entry is one message in the local thread cache. ClientID is set only for
// locally composed entries and ties a provisional entry to its send.
type Entry struct {
	Message  wire.Message
	ClientID string
	Delivery Delivery
}

const markReadTimeout = 10 * time.Second

// Thread is the client-side view of one open conversation: an ordered local
// cache of messages plus the lifecycle state machine. The cache lives only
// while the thread is open; Close discards it.
//
// Server order is preserved: loads replace the cache wholesale and sends
// append at the tail.
type Thread struct {
	gw      Gateway
	session Session
	bus     *bus.Bus
	logger  *zap.Logger
	machine *Machine

	mu             sync.Mutex
	conversationID int64
	gen            uint64
	entries        []Entry
}

// NewThread creates a closed thread for the given session.
func NewThread(gw Gateway, session Session, b *bus.Bus, logger *zap.Logger) *Thread {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Thread{
		gw:      gw,
		session: session,
		bus:     b,
		logger:  logger,
		machine: NewMachine(b),
	}
}

// State returns the current lifecycle state.
func (t *Thread) State() State {
	return t.machine.Current()
}

// ConversationID returns the open conversation id, 0 when closed.
func (t *Thread) ConversationID() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conversationID
}

// Messages returns a snapshot of the cache in display order.
func (t *Thread) Messages() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Open selects a conversation and loads its history. Opening while a
// previous load or send is in flight supersedes it: the stale operation's
// result is discarded when it resolves. On load failure the thread returns to Closed
// and the error is reported for a soft UI failure.
//
// Entering Loaded fires the read-state reconciler in the background; its
// failure is logged, never surfaced, and repaired by the next open since
// marking is idempotent server-side.
func (t *Thread) Open(ctx context.Context, conversationID int64) error {
	if conversationID <= 0 {
		return apierr.New(apierr.InvalidArgument, "invalid conversation id %d", conversationID)
	}

	t.mu.Lock()
	if err := t.machine.Transition(Loading); err != nil {
		t.mu.Unlock()
		return err
	}
	t.gen++
	gen := t.gen
	t.conversationID = conversationID
	t.entries = nil
	t.mu.Unlock()

	msgs, err := t.gw.ListMessages(ctx, conversationID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen != gen {
		// A newer Open or Close owns the thread now; drop this result so
		// stale messages never overwrite the current cache.
		return nil
	}
	if err != nil {
		_ = t.machine.Transition(Closed)
		t.conversationID = 0
		return apierr.Wrap(apierr.CodeOf(err), err, "load conversation %d", conversationID)
	}

	t.entries = make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		t.entries = append(t.entries, Entry{Message: m, Delivery: DeliverySent})
	}
	if err := t.machine.Transition(Loaded); err != nil {
		return err
	}

	t.publish("thread.loaded", ThreadLoaded{ConversationID: conversationID, Count: len(msgs)})
	go t.markRead(conversationID, gen)
	return nil
}

// Refresh re-fetches the open conversation. There is no polling loop:
// thread contents change only on explicit load and send, so this is the
// manual-refresh path.
func (t *Thread) Refresh(ctx context.Context) error {
	t.mu.Lock()
	id := t.conversationID
	t.mu.Unlock()
	if id == 0 {
		return apierr.New(apierr.InvalidArgument, "no conversation open")
	}
	return t.Open(ctx, id)
}

// Close discards the cache and returns to Closed. Any in-flight load or
// send for the old conversation resolves into the void.
func (t *Thread) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.machine.Current() == Closed {
		return
	}
	t.gen++
	t.conversationID = 0
	t.entries = nil
	_ = t.machine.Transition(Closed)
}

// markRead is the fire-and-forget read-state reconciler: it flips the other
// participant's unread messages once the thread is on screen.
func (t *Thread) markRead(conversationID int64, gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), markReadTimeout)
	defer cancel()

	if err := t.gw.MarkConversationRead(ctx, conversationID); err != nil {
		t.logger.Warn("mark read failed",
			zap.Error(err),
			zap.Int64("conversation_id", conversationID))
		return
	}

	t.mu.Lock()
	stale := t.gen != gen
	t.mu.Unlock()
	if stale {
		return
	}
	t.publish("thread.read_marked", ReadMarked{ConversationID: conversationID})
}

// appendProvisional validates content, appends a pending entry at the tail
// and moves the machine to Sending. Returns the entry's client id and the
// conversation it belongs to.
func (t *Thread) appendProvisional(content string) (clientID string, conversationID int64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.machine.Transition(Sending); err != nil {
		return "", 0, err
	}

	clientID = uuid.NewString()
	t.entries = append(t.entries, Entry{
		Message: wire.Message{
			ConversationID: t.conversationID,
			SenderID:       t.session.UserID,
			Content:        content,
			CreatedAt:      time.Now().UTC(),
		},
		ClientID: clientID,
		Delivery: DeliveryPending,
	})
	return clientID, t.conversationID, nil
}

// resolveProvisional replaces the provisional entry with the canonical
// server copy. Exactly one entry remains for the message: the provisional
// slot is rewritten in place, never duplicated.
func (t *Thread) resolveProvisional(clientID string, msg *wire.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if t.entries[i].ClientID == clientID {
			t.entries[i].Message = *msg
			t.entries[i].Delivery = DeliverySent
			_ = t.machine.Transition(Loaded)
			return
		}
	}
	// The entry is gone: the thread was closed or reopened while the send
	// was in flight, so the machine belongs to the newer load now.
}

// failProvisional marks the provisional entry failed so the UI can show the
// failure and offer a retry. It is never silently kept as sent.
func (t *Thread) failProvisional(clientID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if t.entries[i].ClientID == clientID {
			t.entries[i].Delivery = DeliveryFailed
			_ = t.machine.Transition(Loaded)
			return
		}
	}
}

// markProvisionalPending flips a failed entry back to pending for a retry.
func (t *Thread) markProvisionalPending(clientID string) (content string, conversationID int64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if t.entries[i].ClientID == clientID && t.entries[i].Delivery == DeliveryFailed {
			if err := t.machine.Transition(Sending); err != nil {
				return "", 0, err
			}
			t.entries[i].Delivery = DeliveryPending
			return t.entries[i].Message.Content, t.conversationID, nil
		}
	}
	return "", 0, apierr.New(apierr.NotFound, "no failed entry %s", clientID)
}

func (t *Thread) publish(kind string, payload any) {
	if t.bus == nil {
		return
	}
	t.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}

// ThreadLoaded is the payload for thread.loaded events.
type ThreadLoaded struct {
	ConversationID int64
	Count          int
}

// ReadMarked is the payload for thread.read_marked events.
type ReadMarked struct {
	ConversationID int64
}
