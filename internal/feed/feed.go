// Package feed is the realtime change feed: an in-process broker that fans
// out message inserts and read-state updates to subscribers. Delivery is
// best-effort with an explicit lag signal; consumers are expected to refetch
// on lag, and to apply inserts idempotently keyed by message id.
package feed

import (
	"sync"
	"sync/atomic"

	"github.com/andredale-lab/One-Coffee/internal/metrics"
	"github.com/andredale-lab/One-Coffee/internal/models"
)

type EventType string

const (
	MessageInserted EventType = "message_inserted"
	MessageUpdated  EventType = "message_updated"
)

// Event describes one change to the message ledger. Message is set for
// inserts; read-state flips carry only the conversation so broad
// subscribers recompute their counters.
type Event struct {
	Type           EventType       `json:"type"`
	ConversationID string          `json:"conversation_id"`
	Participants   []string        `json:"-"`
	Message        *models.Message `json:"message,omitempty"`
}

// Filter selects which events a subscription receives. ConversationID
// narrows to one conversation; UserID selects every conversation the user
// participates in. Both empty means the whole stream.
type Filter struct {
	ConversationID string
	UserID         string
}

func (f Filter) matches(ev Event) bool {
	if f.ConversationID != "" && ev.ConversationID != f.ConversationID {
		return false
	}
	if f.UserID != "" {
		found := false
		for _, p := range ev.Participants {
			if p == f.UserID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type Subscription struct {
	id     uint64
	filter Filter
	broker *Broker

	mu     sync.Mutex
	ch     chan Event
	closed bool
	lagged atomic.Bool
}

// Events is the subscription's ordered stream. The channel is closed by
// Cancel.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Lagged reports and clears whether events were dropped since the last
// call. A lagged consumer should refetch instead of trusting the stream.
func (s *Subscription) Lagged() bool { return s.lagged.Swap(false) }

// Cancel stops delivery and closes the event channel. Safe to call more
// than once.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()
	s.broker.remove(s.id)
}

func (s *Subscription) deliver(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- ev:
			return
		default:
		}
		// Buffer full: drop the oldest event and mark the lag.
		select {
		case <-s.ch:
			s.lagged.Store(true)
			metrics.FeedDropped.Inc()
		default:
		}
	}
}

// Broker fans events out to subscriptions. A single publisher's events
// reach every subscription in publish order; concurrent publishers are not
// ordered relative to each other, matching the ledger's tie rules.
type Broker struct {
	buffer int

	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
}

func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 64
	}
	return &Broker{buffer: buffer, subs: make(map[uint64]*Subscription)}
}

func (b *Broker) Subscribe(f Filter) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	s := &Subscription{
		id:     b.nextID,
		filter: f,
		broker: b,
		ch:     make(chan Event, b.buffer),
	}
	b.subs[s.id] = s
	return s
}

func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if s.filter.matches(ev) {
			s.deliver(ev)
		}
	}
}

func (b *Broker) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}
