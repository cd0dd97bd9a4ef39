package session

import (
	"sync"
	"time"

	"github.com/lox/stonepaper/internal/history"
)

// EventType identifies a session event
type EventType string

const (
	EventTypeRound     EventType = "round"
	EventTypeCountdown EventType = "countdown"
	EventTypeComplete  EventType = "complete"
	EventTypeReset     EventType = "reset"
	EventTypeHistory   EventType = "history"
)

func (et EventType) String() string {
	return string(et)
}

// Event is anything the manager tells the presentation layer
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// RoundEvent is published after every resolved round, including timeouts
type RoundEvent struct {
	Round     Round
	State     State
	timestamp time.Time
}

func (e RoundEvent) EventType() EventType { return EventTypeRound }
func (e RoundEvent) Timestamp() time.Time { return e.timestamp }

// CountdownEvent carries the remaining countdown ticks, once when armed and
// once per tick after that
type CountdownEvent struct {
	Remaining int
	timestamp time.Time
}

func (e CountdownEvent) EventType() EventType { return EventTypeCountdown }
func (e CountdownEvent) Timestamp() time.Time { return e.timestamp }

// CompleteEvent is published once when a session reaches its final round
type CompleteEvent struct {
	Summary   Summary
	State     State
	Completed int  // lifetime finished sessions
	Celebrate bool // user won overall
	Defeat    bool // computer won overall
	timestamp time.Time
}

func (e CompleteEvent) EventType() EventType { return EventTypeComplete }
func (e CompleteEvent) Timestamp() time.Time { return e.timestamp }

// ResetEvent is published when a new session starts
type ResetEvent struct {
	State     State
	Remaining int
	timestamp time.Time
}

func (e ResetEvent) EventType() EventType { return EventTypeReset }
func (e ResetEvent) Timestamp() time.Time { return e.timestamp }

// HistoryEvent carries the stored history after it changes
type HistoryEvent struct {
	Records   []history.Record
	timestamp time.Time
}

func (e HistoryEvent) EventType() EventType { return EventTypeHistory }
func (e HistoryEvent) Timestamp() time.Time { return e.timestamp }

// Listener receives session events
type Listener interface {
	OnEvent(event Event)
}

// ListenerFunc adapts a function to the Listener interface
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(event Event) { f(event) }

// Bus fans events out to subscribers in subscription order
type Bus struct {
	mu        sync.RWMutex
	nextID    int
	listeners []subscription
}

type subscription struct {
	id       int
	listener Listener
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe adds a listener and returns a function that removes it
func (b *Bus) Subscribe(l Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, subscription{id: id, listener: l})

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.listeners {
		if sub.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Publish delivers events synchronously to every listener
func (b *Bus) Publish(events ...Event) {
	if len(events) == 0 {
		return
	}
	b.mu.RLock()
	subs := append([]subscription(nil), b.listeners...)
	b.mu.RUnlock()

	for _, event := range events {
		for _, sub := range subs {
			sub.listener.OnEvent(event)
		}
	}
}
