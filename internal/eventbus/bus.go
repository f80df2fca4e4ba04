// Package eventbus provides an in-process pub/sub bus used for
// fire-and-forget observability events. Publishing never blocks the
// caller and a failing subscriber never affects delivery to others.
package eventbus

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Event types published by the coordination engine.
const (
	// EventTaskCreated is published when the planner adds a task.
	EventTaskCreated = "task_created"
	// EventTaskCompleted is published when a task completes.
	EventTaskCompleted = "task_completed"
	// EventMessageSent is published for each delivered direct message.
	EventMessageSent = "message_sent"
)

// EventAny subscribes a handler to every event type.
const EventAny = "*"

// Event is a fire-and-forget observability record.
type Event struct {
	// Type is the event kind.
	Type string
	// Source identifies the publishing component.
	Source string
	// TaskID is the related task, if applicable.
	TaskID string
	// AgentID is the related worker, if applicable.
	AgentID string
	// Detail is free-form context for the event.
	Detail string
	// Timestamp is when the event was published.
	Timestamp time.Time
}

// Handler processes a single event. Handlers run on the bus's dispatch
// goroutine; panics are recovered per handler.
type Handler func(Event)

// Bus is a buffered-channel pub/sub bus with a single dispatch
// goroutine. Absence of any subscribers changes nothing for
// publishers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler

	queue   chan Event
	done    chan struct{}
	stopped sync.Once

	droppedCount atomic.Uint64
}

// New creates a bus with the given queue buffer size and starts its
// dispatch goroutine.
func New(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	b := &Bus{
		handlers: make(map[string][]Handler),
		queue:    make(chan Event, bufferSize),
		done:     make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Subscribe registers a handler for an event type. Use EventAny to
// receive every event.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// Publish enqueues an event without blocking. If the queue is full the
// event is dropped and counted.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.queue <- event:
	default:
		count := b.droppedCount.Add(1)
		if count%10 == 1 { // Log every 10th drop to avoid spam
			log.Printf("[eventbus] WARNING: queue full, dropped event (total dropped: %d): type=%s", count, event.Type)
		}
	}
}

// DroppedCount returns the total number of events dropped on publish.
func (b *Bus) DroppedCount() uint64 {
	return b.droppedCount.Load()
}

// Stop drains nothing further and terminates the dispatch goroutine.
func (b *Bus) Stop() {
	b.stopped.Do(func() {
		close(b.done)
	})
}

// dispatch is the single delivery loop. Each handler runs under its
// own recover so one failing handler cannot stop delivery to others.
func (b *Bus) dispatch() {
	for {
		select {
		case <-b.done:
			return
		case event := <-b.queue:
			b.mu.RLock()
			handlers := append([]Handler(nil), b.handlers[event.Type]...)
			handlers = append(handlers, b.handlers[EventAny]...)
			b.mu.RUnlock()

			for _, h := range handlers {
				b.invoke(h, event)
			}
		}
	}
}

func (b *Bus) invoke(h Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[eventbus] handler panic for %s: %v", event.Type, r)
		}
	}()
	h(event)
}
