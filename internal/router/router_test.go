package router

import (
	"testing"
	"time"

	"github.com/nexus-swarm/nexus/internal/eventbus"
	"github.com/nexus-swarm/nexus/pkg/models"
)

// recordingMailbox captures deliveries; full simulates a mailbox that
// rejects everything.
type recordingMailbox struct {
	received []models.AgentMessage
	full     bool
}

func (m *recordingMailbox) Deliver(msg models.AgentMessage) bool {
	if m.full {
		return false
	}
	m.received = append(m.received, msg)
	return true
}

func TestSendDeliversToRecipient(t *testing.T) {
	r := New(nil)
	mbox := &recordingMailbox{}
	r.Register("executor_a", mbox)

	ok := r.Send(models.AgentMessage{From: "coordinator", To: "executor_a", Content: "do it"})
	if !ok {
		t.Fatal("expected delivery to succeed")
	}
	if len(mbox.received) != 1 || mbox.received[0].Content != "do it" {
		t.Errorf("unexpected deliveries: %+v", mbox.received)
	}
	if r.MessageCount() != 1 {
		t.Errorf("expected message count 1, got %d", r.MessageCount())
	}
}

func TestSendUnknownRecipientDeadLetters(t *testing.T) {
	r := New(nil)

	ok := r.Send(models.AgentMessage{From: "a", To: "ghost", Content: "hello"})
	if ok {
		t.Fatal("expected send to an unknown recipient to fail")
	}
	if r.DeadLetterCount() != 1 {
		t.Fatalf("expected 1 dead letter, got %d", r.DeadLetterCount())
	}
	if dl := r.DeadLetters()[0]; dl.Reason != "unknown recipient" || dl.Message.To != "ghost" {
		t.Errorf("unexpected dead letter: %+v", dl)
	}
	// The counter covers dead-lettered attempts too.
	if r.MessageCount() != 1 {
		t.Errorf("expected message count 1, got %d", r.MessageCount())
	}
}

func TestSendFullMailboxDeadLetters(t *testing.T) {
	r := New(nil)
	r.Register("busy", &recordingMailbox{full: true})

	if r.Send(models.AgentMessage{From: "a", To: "busy"}) {
		t.Fatal("expected send to a full mailbox to fail")
	}
	if r.DeadLetterCount() != 1 {
		t.Fatalf("expected 1 dead letter, got %d", r.DeadLetterCount())
	}
	if reason := r.DeadLetters()[0].Reason; reason != "mailbox full" {
		t.Errorf("unexpected reason %q", reason)
	}
}

func TestBroadcastExcludesSender(t *testing.T) {
	r := New(nil)
	a := &recordingMailbox{}
	b := &recordingMailbox{}
	c := &recordingMailbox{}
	r.Register("a", a)
	r.Register("b", b)
	r.Register("c", c)

	n := r.Broadcast(models.AgentMessage{From: "a", Content: "fan out"})
	if n != 2 {
		t.Fatalf("expected 2 recipients, got %d", n)
	}
	if len(a.received) != 0 {
		t.Error("sender must not receive its own broadcast")
	}
	if len(b.received) != 1 || len(c.received) != 1 {
		t.Errorf("expected b and c to receive, got %d and %d", len(b.received), len(c.received))
	}
	if b.received[0].To != "b" {
		t.Errorf("broadcast should address each copy, got To=%q", b.received[0].To)
	}
}

func TestPublishToTopic(t *testing.T) {
	r := New(nil)
	sub := &recordingMailbox{}
	other := &recordingMailbox{}
	sender := &recordingMailbox{}
	r.Register("sub", sub)
	r.Register("other", other)
	r.Register("sender", sender)
	r.Subscribe("sub", "findings")
	r.Subscribe("sender", "findings")

	n := r.PublishToTopic("findings", models.AgentMessage{From: "sender", Content: "result"})
	if n != 1 {
		t.Fatalf("expected 1 recipient, got %d", n)
	}
	if len(sub.received) != 1 {
		t.Errorf("subscriber should receive, got %d", len(sub.received))
	}
	if len(other.received) != 0 {
		t.Error("non-subscriber must not receive topic messages")
	}
	if len(sender.received) != 0 {
		t.Error("publisher must not receive its own topic message")
	}
}

func TestPublishToUnknownTopic(t *testing.T) {
	r := New(nil)
	r.Register("a", &recordingMailbox{})

	if n := r.PublishToTopic("nothing", models.AgentMessage{From: "a"}); n != 0 {
		t.Errorf("expected 0 recipients for an unknown topic, got %d", n)
	}
}

func TestSubscribeUnknownAgentIgnored(t *testing.T) {
	r := New(nil)
	r.Subscribe("ghost", "findings")

	if n := r.PublishToTopic("findings", models.AgentMessage{From: "x"}); n != 0 {
		t.Errorf("expected no subscribers, got %d", n)
	}
}

func TestUnregisterClearsSubscriptions(t *testing.T) {
	r := New(nil)
	r.Register("a", &recordingMailbox{})
	r.Subscribe("a", "findings")
	r.Unregister("a")

	if n := r.PublishToTopic("findings", models.AgentMessage{From: "x"}); n != 0 {
		t.Errorf("unregistered agent should not receive topic messages, got %d", n)
	}
	if r.Send(models.AgentMessage{From: "x", To: "a"}) {
		t.Error("send to an unregistered agent should dead-letter")
	}
}

func TestUnsubscribeStopsTopicDelivery(t *testing.T) {
	r := New(nil)
	sub := &recordingMailbox{}
	r.Register("sub", sub)
	r.Subscribe("sub", "findings")
	r.Unsubscribe("sub", "findings")

	if n := r.PublishToTopic("findings", models.AgentMessage{From: "x"}); n != 0 {
		t.Errorf("expected 0 recipients after unsubscribe, got %d", n)
	}
}

func TestSendPublishesEvent(t *testing.T) {
	bus := eventbus.New(16)
	defer bus.Stop()

	got := make(chan eventbus.Event, 1)
	bus.Subscribe(eventbus.EventMessageSent, func(ev eventbus.Event) {
		got <- ev
	})

	r := New(bus)
	r.Register("b", &recordingMailbox{})
	r.Send(models.AgentMessage{From: "a", To: "b"})

	select {
	case ev := <-got:
		if ev.Source != "a" || ev.AgentID != "b" {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a message event")
	}
}

func TestDeadLetteredSendDoesNotPublishEvent(t *testing.T) {
	bus := eventbus.New(16)
	defer bus.Stop()

	got := make(chan eventbus.Event, 1)
	bus.Subscribe(eventbus.EventMessageSent, func(ev eventbus.Event) {
		got <- ev
	})

	r := New(bus)
	r.Send(models.AgentMessage{From: "a", To: "ghost"})

	select {
	case ev := <-got:
		t.Fatalf("unexpected event for dead-lettered send: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
