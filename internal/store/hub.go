package store

import "sync"

// statusHub implements the pub/sub half of [Store], shared by both
// store implementations.
//
// Subscribers receive updates via buffered channels (buffer size 16).
// Updates are sent non-blocking; if a subscriber's buffer is full, the
// update is dropped for that subscriber to prevent a slow consumer from
// blocking the sync cycle.
type statusHub struct {
	mu          sync.RWMutex
	subscribers map[chan SyncStatus]struct{}
}

const subscriberBuffer = 16

// subscribe creates a new subscription channel.
func (h *statusHub) subscribe() <-chan SyncStatus {
	ch := make(chan SyncStatus, subscriberBuffer)

	h.mu.Lock()
	if h.subscribers == nil {
		h.subscribers = make(map[chan SyncStatus]struct{})
	}
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	return ch
}

// unsubscribe removes a subscription and closes its channel. Safe to
// call multiple times or with an unknown channel.
func (h *statusHub) unsubscribe(ch <-chan SyncStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for subCh := range h.subscribers {
		if subCh == ch {
			delete(h.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notify sends the status to all active subscribers without blocking.
func (h *statusHub) notify(status SyncStatus) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- status:
		default:
			// subscriber is slow, drop the update
		}
	}
}
