package messaging

import (
	"testing"
	"time"

	"github.com/placette/messaging/internal/bus"
)

func TestMachineTransitionTable(t *testing.T) {
	cases := []struct {
		from, to State
		ok       bool
	}{
		{Closed, Loading, true},
		{Closed, Loaded, false},
		{Closed, Sending, false},
		{Loading, Loaded, true},
		{Loading, Loading, true},
		{Loading, Closed, true},
		{Loading, Sending, false},
		{Loaded, Sending, true},
		{Loaded, Loading, true},
		{Loaded, Closed, true},
		{Sending, Loaded, true},
		{Sending, Closed, true},
		{Sending, Loading, true},
		{Sending, Sending, false},
	}

	for _, tc := range cases {
		m := NewMachine(nil)
		m.current = tc.from
		err := m.Transition(tc.to)
		if tc.ok && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s -> %s: expected rejection", tc.from, tc.to)
		}
		if tc.ok && m.Current() != tc.to {
			t.Errorf("%s -> %s: current = %s", tc.from, tc.to, m.Current())
		}
		if !tc.ok && m.Current() != tc.from {
			t.Errorf("%s -> %s: rejected transition moved state to %s", tc.from, tc.to, m.Current())
		}
	}
}

func TestMachinePublishesStateChanges(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("thread.state_changed", 8)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Loading); err != nil {
		t.Fatal(err)
	}
	if err := m.Transition(Loaded); err != nil {
		t.Fatal(err)
	}

	want := []StateChange{
		{From: Closed, To: Loading},
		{From: Loading, To: Loaded},
	}
	for _, w := range want {
		select {
		case evt := <-ch:
			if evt.Payload.(StateChange) != w {
				t.Errorf("got %+v, want %+v", evt.Payload, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing state change %+v", w)
		}
	}
}

func TestMachineRejectedTransitionNotPublished(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("thread.state_changed", 8)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Sending); err == nil {
		t.Fatal("expected rejection")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}
