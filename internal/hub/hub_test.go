package hub

import (
	"encoding/json"
	"sync"
	"testing"
)

func TestHub_BroadcastReachesSubscribers(t *testing.T) {
	t.Parallel()

	h := New(4, nil)
	a := h.Subscribe()
	b := h.Subscribe()

	delivered, err := h.Broadcast("appointment:new", map[string]int{"id": 1})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if delivered != 2 {
		t.Fatalf("expected 2 deliveries, got %d", delivered)
	}

	for _, sub := range []*Subscriber{a, b} {
		msg := <-sub.Messages()
		if msg.Event != "appointment:new" {
			t.Fatalf("expected appointment:new, got %s", msg.Event)
		}
		var body map[string]int
		if err := json.Unmarshal(msg.Data, &body); err != nil || body["id"] != 1 {
			t.Fatalf("unexpected payload %s (%v)", msg.Data, err)
		}
	}
}

func TestHub_LateSubscriberGetsNoReplay(t *testing.T) {
	t.Parallel()

	h := New(4, nil)
	early := h.Subscribe()

	if _, err := h.Broadcast("appointment:new", 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	late := h.Subscribe()
	if _, err := h.Broadcast("appointment:update", 2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := len(early.Messages()); got != 2 {
		t.Fatalf("expected early subscriber to hold 2 messages, got %d", got)
	}
	if got := len(late.Messages()); got != 1 {
		t.Fatalf("expected late subscriber to hold 1 message, got %d", got)
	}
	msg := <-late.Messages()
	if msg.Event != "appointment:update" {
		t.Fatalf("expected appointment:update, got %s", msg.Event)
	}
}

func TestHub_EvictsSlowSubscriber(t *testing.T) {
	t.Parallel()

	h := New(1, nil)
	slow := h.Subscribe()

	if n, _ := h.Broadcast("e", 1); n != 1 {
		t.Fatalf("expected first broadcast delivered, got %d", n)
	}
	if n, _ := h.Broadcast("e", 2); n != 0 {
		t.Fatalf("expected second broadcast dropped, got %d", n)
	}
	if h.Count() != 0 {
		t.Fatalf("expected slow subscriber evicted, got %d subscribers", h.Count())
	}

	<-slow.Messages()
	if _, ok := <-slow.Messages(); ok {
		t.Fatalf("expected channel closed after eviction")
	}
}

func TestHub_UnsubscribeAndClose(t *testing.T) {
	t.Parallel()

	h := New(2, nil)
	a := h.Subscribe()
	h.Unsubscribe(a)
	h.Unsubscribe(a)

	if _, ok := <-a.Messages(); ok {
		t.Fatalf("expected closed channel after unsubscribe")
	}

	b := h.Subscribe()
	h.Close()
	if _, ok := <-b.Messages(); ok {
		t.Fatalf("expected closed channel after hub close")
	}

	c := h.Subscribe()
	if _, ok := <-c.Messages(); ok {
		t.Fatalf("expected subscribe after close to return a closed subscriber")
	}
	if h.Count() != 0 {
		t.Fatalf("expected no subscribers, got %d", h.Count())
	}
}

func TestHub_ConcurrentUse(t *testing.T) {
	t.Parallel()

	h := New(256, nil)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := h.Subscribe()
			for j := 0; j < 20; j++ {
				select {
				case <-sub.Messages():
				default:
				}
			}
			h.Unsubscribe(sub)
		}()
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := h.Broadcast("e", n*100+j); err != nil {
					t.Errorf("broadcast failed: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	if h.Count() != 0 {
		t.Fatalf("expected all subscribers gone, got %d", h.Count())
	}
}

func TestHub_BroadcastEncodingError(t *testing.T) {
	t.Parallel()

	h := New(1, nil)
	sub := h.Subscribe()
	if _, err := h.Broadcast("e", make(chan int)); err == nil {
		t.Fatalf("expected encoding error")
	}
	if len(sub.Messages()) != 0 {
		t.Fatalf("expected nothing delivered")
	}
}
