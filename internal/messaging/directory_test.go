package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/placette/messaging/internal/apierr"
	"github.com/placette/messaging/internal/bus"
	"github.com/placette/messaging/internal/wire"
)

func TestDirectoryListPublishesRefresh(t *testing.T) {
	f := newFakeGateway()
	f.listings = []wire.ConversationListing{
		{Conversation: wire.Conversation{ID: 7, UserAID: 1, UserBID: 2}, UnreadCount: 3},
		{Conversation: wire.Conversation{ID: 8, UserAID: 1, UserBID: 3}},
	}
	b := bus.New()
	ch, unsub := b.Subscribe("directory.refreshed", 4)
	defer unsub()

	d := NewDirectory(f, b, nil)
	listings, err := d.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(listings))
	}
	if listings[0].UnreadCount != 3 {
		t.Errorf("unread = %d, want 3", listings[0].UnreadCount)
	}

	select {
	case evt := <-ch:
		if evt.Payload.(DirectoryRefreshed).Count != 2 {
			t.Errorf("payload = %+v", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no directory.refreshed event")
	}
}

// A failed refresh yields an empty, renderable list plus the error.
func TestDirectoryListFailsSoft(t *testing.T) {
	f := newFakeGateway()
	f.dirErr = apierr.New(apierr.Transient, "backend unavailable")

	d := NewDirectory(f, nil, nil)
	listings, err := d.List(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if listings == nil {
		t.Error("listings must be an empty slice, not nil")
	}
	if len(listings) != 0 {
		t.Errorf("got %d listings, want 0", len(listings))
	}
}

func TestStarterRejectsSelfAndInvalidTargets(t *testing.T) {
	f := newFakeGateway()
	s := NewStarter(f, Session{UserID: 1})

	for _, target := range []int64{0, -5, 1} {
		_, err := s.Start(context.Background(), target)
		if !apierr.IsCode(err, apierr.InvalidArgument) {
			t.Errorf("target %d: code = %v, want InvalidArgument", target, apierr.CodeOf(err))
		}
	}
	f.mu.Lock()
	calls := len(f.startCalls)
	f.mu.Unlock()
	if calls != 0 {
		t.Errorf("rejections must not reach the backend, got %d calls", calls)
	}
}

func TestStarterPreservesBackendCode(t *testing.T) {
	f := newFakeGateway()
	f.startErr = apierr.New(apierr.NotFound, "no such user")
	s := NewStarter(f, Session{UserID: 1})

	_, err := s.Start(context.Background(), 99)
	if !apierr.IsCode(err, apierr.NotFound) {
		t.Errorf("code = %v, want NotFound", apierr.CodeOf(err))
	}
}

func TestStarterReturnsConversation(t *testing.T) {
	f := newFakeGateway()
	f.startConv = &wire.Conversation{ID: 7, UserAID: 1, UserBID: 2}
	s := NewStarter(f, Session{UserID: 1})

	conv, err := s.Start(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if conv.ID != 7 {
		t.Errorf("conversation id = %d, want 7", conv.ID)
	}
}
