package notify

import (
	"sync"
	"sync/atomic"
	"time"
)

// Kind identifies a notification category at the presentation boundary.
type Kind string

const (
	GameStarted      Kind = "game_started"
	RoundChanged     Kind = "round_changed"
	MissionCompleted Kind = "mission_completed"
	BreakingNews     Kind = "breaking_news"
	GameOver         Kind = "game_over"
)

// Event is one discrete notification. The core emits these; how they
// are rendered (toasts, terminal, websocket) is not its concern.
type Event struct {
	Kind      Kind      `json:"kind"`
	At        time.Time `json:"at"`
	Round     int       `json:"round,omitempty"`
	Message   string    `json:"message,omitempty"`
	Magnitude float64   `json:"magnitude,omitempty"`
	MissionID string    `json:"mission_id,omitempty"`
	NetWorth  string    `json:"net_worth,omitempty"`
}

// Sink receives notification events. Publish must never block the game
// loop.
type Sink interface {
	Publish(Event)
}

// Dispatcher is a bounded, drop-on-full Sink backed by a channel.
// Slow consumers lose events rather than stalling the simulation; the
// drop counter makes that visible.
type Dispatcher struct {
	events  chan Event
	dropped atomic.Int64

	closed    chan struct{}
	closeOnce sync.Once
}

// NewDispatcher creates a dispatcher with the given buffer size.
func NewDispatcher(buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{
		events: make(chan Event, buffer),
		closed: make(chan struct{}),
	}
}

// Publish enqueues the event, dropping it if the buffer is full or the
// dispatcher is closed.
func (d *Dispatcher) Publish(ev Event) {
	select {
	case <-d.closed:
		return
	default:
	}
	select {
	case d.events <- ev:
	default:
		d.dropped.Add(1)
	}
}

// Events returns the consumer channel.
func (d *Dispatcher) Events() <-chan Event {
	return d.events
}

// Dropped returns how many events were discarded.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close stops the dispatcher. Pending buffered events remain readable.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.closed)
	})
}
