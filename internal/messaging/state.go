package messaging

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/placette/messaging/internal/bus"
)

// State is a thread lifecycle state.
type State string

const (
	// Closed: no conversation selected, cache empty.
	Closed State = "CLOSED"
	// Loading: a conversation was selected and its history is in flight.
	Loading State = "LOADING"
	// Loaded: history is in the cache; read marking fires on entry.
	Loaded State = "LOADED"
	// Sending: a composed message is in flight with a provisional entry.
	Sending State = "SENDING"
)

// validTransitions defines allowed thread state transitions. Loading->Loading
// and Sending->Loading cover selecting another conversation before the
// previous load or send resolves.
var validTransitions = map[State][]State{
	Closed:  {Loading},
	Loading: {Loaded, Loading, Closed},
	Loaded:  {Sending, Loading, Closed},
	Sending: {Loaded, Loading, Closed},
}

// Machine tracks and enforces thread state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a machine starting in Closed.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{current: Closed, bus: b}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns an error if the
// transition is not in the table.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(validTransitions[m.current], to) {
		return fmt.Errorf("invalid thread transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      "thread.state_changed",
			Timestamp: time.Now(),
			Payload:   StateChange{From: from, To: to},
		})
	}
	return nil
}

// StateChange is the payload for thread.state_changed events.
type StateChange struct {
	From State
	To   State
}
