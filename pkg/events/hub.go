package events

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

const subscriberBuffer = 16

// subscription receives the events named in filter, or every event if
// filter is empty.
type subscription struct {
	filter map[string]bool
}

func (s subscription) wants(name string) bool {
	return len(s.filter) == 0 || s.filter[name]
}

// EventHub fans out events to all subscribers. A subscriber that does not
// keep up loses events instead of blocking Publish.
type EventHub struct {
	mu      sync.RWMutex
	subs    map[chan Event]subscription
	dropped atomic.Uint64
}

func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[chan Event]subscription)}
}

// Subscribe registers a subscriber for the given event names. Without
// names it receives everything.
func (h *EventHub) Subscribe(names ...string) chan Event {
	sub := subscription{}
	for _, n := range names {
		if n == "" {
			continue
		}
		if sub.filter == nil {
			sub.filter = make(map[string]bool, len(names))
		}
		sub.filter[n] = true
	}

	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[ch] = sub
	return ch
}

// Unsubscribe removes ch and closes it. Unknown channels are ignored.
func (h *EventHub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; !ok {
		return
	}
	delete(h.subs, ch)
	close(ch)
}

// Subscribers returns the number of active subscriptions.
func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped for slow subscribers.
func (h *EventHub) Dropped() uint64 {
	return h.dropped.Load()
}

// Publish encodes payload once and delivers it to every interested
// subscriber. A nil hub discards the event.
func (h *EventHub) Publish(name string, payload any) {
	if h == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logrus.WithField("event", name).Errorf("failed to marshal event: %v", err)
		return
	}
	ev := Event{Name: name, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch, sub := range h.subs {
		if !sub.wants(name) {
			continue
		}
		select {
		case ch <- ev:
		default:
			h.dropped.Add(1)
		}
	}
}
