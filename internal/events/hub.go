// Package events carries the payload-less "data changed" signal from the
// orchestrator to observers, in-process and optionally across replicas.
package events

import "sync"

// Hub fans out change signals. Each subscriber holds at most one pending
// signal; repeated changes before it drains coalesce into one.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]chan struct{}
	nextID uint64
}

type Subscription struct {
	hub  *Hub
	id   uint64
	ch   chan struct{}
	once sync.Once
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]chan struct{})}
}

// Publish never blocks.
func (h *Hub) Publish() {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan struct{}, 1)
	h.subs[id] = ch
	return &Subscription{hub: h, id: id, ch: ch}
}

func (h *Hub) Subscribers() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

func (s *Subscription) C() <-chan struct{} {
	if s == nil {
		return nil
	}
	return s.ch
}

// Close detaches the subscription. The channel is left open so a reader
// blocked on it simply stops receiving.
func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.id)
	})
}
