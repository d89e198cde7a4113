package sse

import (
	"sync"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	TenantID string
	UserID   string
	Event    string
	Data     interface{}
}

// Hub fans events out to the open streams of one recipient. Recipients are
// keyed by tenant and user so the same user ID in two tenants never shares
// a stream.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	bufferSize  int
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		bufferSize:  10,
	}
}

func key(tenantID, userID string) string {
	return tenantID + ":" + userID
}

// Subscribe registers a new subscriber and returns the event channel and its
// cleanup function. Cleanup closes the channel and is safe to call once.
func (h *Hub) Subscribe(tenantID, userID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	k := key(tenantID, userID)
	ch := make(chan Event, h.bufferSize)

	if h.subscribers[k] == nil {
		h.subscribers[k] = make(map[chan Event]struct{})
	}
	h.subscribers[k][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[k], ch)
			close(ch)
			if len(h.subscribers[k]) == 0 {
				delete(h.subscribers, k)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of one recipient. Full channels
// are skipped so a slow reader never blocks the publisher.
func (h *Hub) Publish(event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subscribers[key(event.TenantID, event.UserID)] {
		select {
		case ch <- event:
			delivered++
		default:
		}
	}
	return delivered
}

// SubscriberCount returns the number of active subscribers for a user
func (h *Hub) SubscriberCount(tenantID, userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[key(tenantID, userID)])
}

// TotalSubscribers returns the total number of active subscribers across all users
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
