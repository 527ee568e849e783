package events

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/splitledger/splitledger/internal/domain"
)

const defaultBufferSize = 16

// Hub fans group change events out to subscribed listeners, keyed by
// group id. It implements usecase.EventBroadcaster. Delivery is best
// effort: a subscriber whose buffer is full misses the event, which is
// acceptable because clients re-read state on every event anyway.
type Hub struct {
	mu         sync.RWMutex
	subs       map[string]map[*subscriber]struct{}
	bufferSize int
	closed     bool
	logger     zerolog.Logger
}

type subscriber struct {
	ch chan domain.GroupEvent
}

// NewHub creates a new Hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subs:       make(map[string]map[*subscriber]struct{}),
		bufferSize: defaultBufferSize,
		logger:     logger,
	}
}

// Publish delivers the event to every subscriber of its group. It never
// blocks on slow subscribers.
func (h *Hub) Publish(event domain.GroupEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for sub := range h.subs[event.GroupID] {
		select {
		case sub.ch <- event:
		default:
			h.logger.Warn().
				Str("group_id", event.GroupID).
				Str("event_type", event.Type).
				Msg("dropping event for slow subscriber")
		}
	}
}

// Subscribe registers a listener for one group's events. The returned
// cancel func must be called when the listener goes away; it closes the
// channel.
func (h *Hub) Subscribe(groupID string) (<-chan domain.GroupEvent, func()) {
	sub := &subscriber{ch: make(chan domain.GroupEvent, h.bufferSize)}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}

	if h.subs[groupID] == nil {
		h.subs[groupID] = make(map[*subscriber]struct{})
	}
	h.subs[groupID][sub] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if h.closed {
				// Close already shut the channel down.
				return
			}
			if set, ok := h.subs[groupID]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(h.subs, groupID)
				}
			}
			close(sub.ch)
		})
	}

	return sub.ch, cancel
}

// Close shuts the hub down and closes all subscriber channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for _, set := range h.subs {
		for sub := range set {
			close(sub.ch)
		}
	}
	h.subs = nil
}
