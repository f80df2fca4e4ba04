package eventbus

import (
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	b := New(16)
	defer b.Stop()

	var mu sync.Mutex
	var got []Event
	b.Subscribe(EventTaskCreated, func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})

	b.Publish(Event{Type: EventTaskCreated, TaskID: "t1"})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if got[0].TaskID != "t1" {
		t.Errorf("expected task t1, got %s", got[0].TaskID)
	}
	if got[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be stamped on publish")
	}
}

func TestWildcardSubscriberSeesAllTypes(t *testing.T) {
	b := New(16)
	defer b.Stop()

	var count sync.WaitGroup
	count.Add(2)
	var mu sync.Mutex
	seen := 0
	b.Subscribe(EventAny, func(e Event) {
		mu.Lock()
		seen++
		mu.Unlock()
		count.Done()
	})

	b.Publish(Event{Type: EventTaskCreated})
	b.Publish(Event{Type: EventMessageSent})
	count.Wait()

	mu.Lock()
	defer mu.Unlock()
	if seen != 2 {
		t.Errorf("expected wildcard subscriber to see 2 events, saw %d", seen)
	}
}

func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	b := New(16)
	defer b.Stop()

	var mu sync.Mutex
	delivered := 0
	b.Subscribe(EventTaskCompleted, func(e Event) {
		panic("handler exploded")
	})
	b.Subscribe(EventTaskCompleted, func(e Event) {
		mu.Lock()
		delivered++
		mu.Unlock()
	})

	b.Publish(Event{Type: EventTaskCompleted})
	b.Publish(Event{Type: EventTaskCompleted})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered == 2
	})
}

func TestPublishWithoutSubscribersIsHarmless(t *testing.T) {
	b := New(4)
	defer b.Stop()

	for i := 0; i < 3; i++ {
		b.Publish(Event{Type: EventMessageSent})
	}
	// Nothing to assert beyond not blocking or panicking.
}

func TestPublishDropsWhenFullAndCounts(t *testing.T) {
	b := New(1)
	b.Stop()
	time.Sleep(20 * time.Millisecond) // let the dispatch goroutine exit

	// With dispatch stopped only one event fits in the queue.
	for i := 0; i < 5; i++ {
		b.Publish(Event{Type: EventMessageSent})
	}
	if b.DroppedCount() < 4 {
		t.Errorf("expected at least 4 dropped events, got %d", b.DroppedCount())
	}
}
