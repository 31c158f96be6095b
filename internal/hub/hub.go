// Package hub keeps the set of live dashboard connections and fans appointment
// events out to them.
package hub

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const defaultBufferSize = 32

// Message is a pre-encoded event ready to be written to a subscriber.
type Message struct {
	ID    uint64
	Event string
	Data  []byte
}

// Subscriber is one live connection. Messages is closed when the subscriber is
// removed from the hub, either by Unsubscribe, eviction or Close.
type Subscriber struct {
	id uint64
	ch chan Message
}

func (s *Subscriber) ID() uint64 { return s.id }

func (s *Subscriber) Messages() <-chan Message { return s.ch }

// Hub fans events out to subscribers using per-subscriber buffered channels.
// A subscriber whose buffer is full is evicted instead of blocking the publisher.
type Hub struct {
	mu          sync.Mutex
	subscribers map[uint64]*Subscriber
	nextID      uint64
	seq         uint64
	bufferSize  int
	closed      bool
	logger      *zap.Logger
}

func New(bufferSize int, logger *zap.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subscribers: make(map[uint64]*Subscriber),
		bufferSize:  bufferSize,
		logger:      logger,
	}
}

// Subscribe registers a connection. Only events broadcast after Subscribe
// returns are delivered to it.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscriber{id: h.nextID, ch: make(chan Message, h.bufferSize)}
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subscribers[sub.id] = sub
	h.logger.Debug("subscriber connected", zap.Uint64("subscriber_id", sub.id), zap.Int("subscribers", len(h.subscribers)))
	return sub
}

// Unsubscribe removes the connection. It is safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.remove(sub.id) {
		h.logger.Debug("subscriber disconnected", zap.Uint64("subscriber_id", sub.id), zap.Int("subscribers", len(h.subscribers)))
	}
}

// Broadcast delivers payload to every connected subscriber without waiting on
// any of them and returns how many subscribers accepted it.
func (h *Hub) Broadcast(event string, payload interface{}) (int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	msg := Message{ID: h.seq, Event: event, Data: data}

	delivered := 0
	for id, sub := range h.subscribers {
		select {
		case sub.ch <- msg:
			delivered++
		default:
			h.remove(id)
			h.logger.Warn("evicting slow subscriber", zap.Uint64("subscriber_id", id), zap.String("event", event))
		}
	}
	return delivered, nil
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id := range h.subscribers {
		h.remove(id)
	}
}

// remove must be called with mu held.
func (h *Hub) remove(id uint64) bool {
	sub, ok := h.subscribers[id]
	if !ok {
		return false
	}
	delete(h.subscribers, id)
	close(sub.ch)
	return true
}
