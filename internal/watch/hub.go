// Package watch provides topic-keyed change notification for realtime
// listings. Mutating services publish a topic after every write; listing
// endpoints subscribe, re-query the store on each notification and push a
// fully materialized snapshot to their client.
package watch

import "sync"

const TopicPublicSessions = "public-sessions"

func TopicSessionCards(sessionID string) string {
	return "session-cards:" + sessionID
}

func TopicBank(userID string) string {
	return "bank:" + userID
}

type Notifier interface {
	Publish(topic string)
}

type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscription delivers coalesced change signals for one topic. Cancel must
// be called when the consumer goes away or the subscription leaks.
type Subscription struct {
	c      chan struct{}
	cancel func()
	once   sync.Once
}

func (s *Subscription) C() <-chan struct{} {
	return s.c
}

func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

func (h *Hub) Subscribe(topic string) *Subscription {
	sub := &Subscription{c: make(chan struct{}, 1)}
	sub.cancel = func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		delete(h.subs[topic], sub)
		if len(h.subs[topic]) == 0 {
			delete(h.subs, topic)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*Subscription]struct{})
	}
	h.subs[topic][sub] = struct{}{}

	return sub
}

func (h *Hub) Publish(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[topic] {
		// Non-blocking: a pending signal already covers this change.
		select {
		case sub.c <- struct{}{}:
		default:
		}
	}
}
