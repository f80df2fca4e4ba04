// Package router moves messages between swarm agents: direct sends,
// role-wide broadcasts, and topic publication, with a dead-letter
// queue for anything undeliverable.
package router

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nexus-swarm/nexus/internal/eventbus"
	"github.com/nexus-swarm/nexus/pkg/models"
)

// Mailbox is the delivery surface an agent exposes to the router.
// Deliver reports false when the message cannot be accepted.
type Mailbox interface {
	Deliver(msg models.AgentMessage) bool
}

// DeadLetter records a message that could not be delivered.
type DeadLetter struct {
	Message models.AgentMessage
	Reason  string
}

// MessageRouter routes messages between registered agents. All
// methods are safe for concurrent use.
type MessageRouter struct {
	mu     sync.RWMutex
	agents map[string]Mailbox
	order  []string
	topics map[string]map[string]bool

	deadLetters []DeadLetter
	sent        int

	bus *eventbus.Bus

	debugLog func(format string, args ...any)
}

// New creates a router. bus may be nil; when set, successful direct
// sends publish a message event on it.
func New(bus *eventbus.Bus) *MessageRouter {
	return &MessageRouter{
		agents: make(map[string]Mailbox),
		topics: make(map[string]map[string]bool),
		bus:    bus,
	}
}

// SetDebugLog installs an optional debug logger.
func (r *MessageRouter) SetDebugLog(fn func(format string, args ...any)) {
	r.mu.Lock()
	r.debugLog = fn
	r.mu.Unlock()
}

func (r *MessageRouter) logf(format string, args ...any) {
	if r.debugLog != nil {
		r.debugLog(format, args...)
	}
}

// Register adds an agent under its ID. Re-registering replaces the
// previous mailbox.
func (r *MessageRouter) Register(id string, mbox Mailbox) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[id]; !exists {
		r.order = append(r.order, id)
	}
	r.agents[id] = mbox
}

// Unregister removes an agent and clears all its topic subscriptions.
func (r *MessageRouter) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.agents, id)
	for i, known := range r.order {
		if known == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	for _, subs := range r.topics {
		delete(subs, id)
	}
}

// Subscribe adds an agent to a topic. Unknown agents are ignored.
func (r *MessageRouter) Subscribe(id, topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.agents[id]; !ok {
		return
	}
	if r.topics[topic] == nil {
		r.topics[topic] = make(map[string]bool)
	}
	r.topics[topic][id] = true
}

// Unsubscribe removes an agent from a topic.
func (r *MessageRouter) Unsubscribe(id, topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if subs, ok := r.topics[topic]; ok {
		delete(subs, id)
	}
}

// Send delivers a message to its recipient. Unknown recipients and
// full mailboxes route the message to the dead-letter queue. The sent
// counter increments for every attempt, dead-lettered or not.
func (r *MessageRouter) Send(msg models.AgentMessage) bool {
	r.mu.Lock()
	r.sent++
	mbox, ok := r.agents[msg.To]
	if !ok {
		r.deadLetters = append(r.deadLetters, DeadLetter{Message: msg, Reason: "unknown recipient"})
		r.logf("[router] dead letter: unknown recipient %s", msg.To)
		r.mu.Unlock()
		return false
	}
	r.mu.Unlock()

	if !mbox.Deliver(msg) {
		r.mu.Lock()
		r.deadLetters = append(r.deadLetters, DeadLetter{Message: msg, Reason: "mailbox full"})
		r.mu.Unlock()
		r.logf("[router] dead letter: mailbox full for %s", msg.To)
		return false
	}

	if r.bus != nil {
		r.bus.Publish(eventbus.Event{
			Type:    eventbus.EventMessageSent,
			Source:  msg.From,
			AgentID: msg.To,
		})
	}
	return true
}

// Broadcast sends the message to every registered agent except the
// sender and returns the number of deliveries attempted.
func (r *MessageRouter) Broadcast(msg models.AgentMessage) int {
	r.mu.RLock()
	targets := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if id != msg.From {
			targets = append(targets, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range targets {
		m := msg
		m.To = id
		r.Send(m)
	}
	return len(targets)
}

// PublishToTopic sends the message to every subscriber of the topic
// except the sender and returns the number of deliveries attempted.
func (r *MessageRouter) PublishToTopic(topic string, msg models.AgentMessage) int {
	r.mu.RLock()
	var targets []string
	for id := range r.topics[topic] {
		if id != msg.From {
			targets = append(targets, id)
		}
	}
	r.mu.RUnlock()

	sort.Strings(targets)
	for _, id := range targets {
		m := msg
		m.To = id
		r.Send(m)
	}
	return len(targets)
}

// MessageCount returns the total number of send attempts.
func (r *MessageRouter) MessageCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sent
}

// DeadLetterCount returns the number of undeliverable messages.
func (r *MessageRouter) DeadLetterCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.deadLetters)
}

// DeadLetters returns a copy of the dead-letter queue.
func (r *MessageRouter) DeadLetters() []DeadLetter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]DeadLetter, len(r.deadLetters))
	copy(out, r.deadLetters)
	return out
}

// StatusSummary returns a human-readable routing report.
func (r *MessageRouter) StatusSummary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Messages sent: %d, dead letters: %d\n", r.sent, len(r.deadLetters))
	fmt.Fprintf(&b, "Registered agents: %d\n", len(r.agents))

	topics := make([]string, 0, len(r.topics))
	for topic := range r.topics {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	for _, topic := range topics {
		fmt.Fprintf(&b, "  topic %q: %d subscribers\n", topic, len(r.topics[topic]))
	}
	return b.String()
}
