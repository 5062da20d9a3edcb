package auth

import (
	"sync"

	"github.com/and161185/inkwell/internal/model"
)

// Hub fans auth events out to listeners in registration order.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription
}

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers l. The returned function removes it; calling it twice is a no-op.
func (h *Hub) Subscribe(l Listener) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, fn: l})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
			return
		}
	}
}

// Publish calls every listener synchronously. Listeners run outside the lock
// and may subscribe or dispose during dispatch.
func (h *Hub) Publish(event model.AuthEvent, sess *model.Session) {
	h.mu.Lock()
	subs := make([]subscription, len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	for _, s := range subs {
		s.fn(event, sess)
	}
}

// Len reports the number of active listeners.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
