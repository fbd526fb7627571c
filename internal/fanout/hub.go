package fanout

import (
	"log"
	"sync"

	"github.com/PoofyPloop/chatapp/internal/common"

	"github.com/google/uuid"
)

// Event is the envelope delivered to subscribers.
type Event struct {
	Kind    string               `json:"kind"` // "roster" | "message"
	Roster  *common.RosterEvent  `json:"roster,omitempty"`
	Message *common.MessageEvent `json:"message,omitempty"`
}

// Subscriber owns a bounded delivery queue. When the queue is full the oldest
// event is dropped; a consumer that missed events reconciles through the pull
// endpoints (roster, history).
type Subscriber struct {
	ID      string
	convKey string // empty for presence subscribers
	ch      chan Event
}

// Events yields this subscriber's queue in publish order.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// Hub routes presence deltas and new messages to subscribers. Conversation
// events are filtered by pair key before enqueueing, so a subscriber never
// receives (or pays for) unrelated traffic.
type Hub struct {
	mu            sync.RWMutex
	presence      map[string]*Subscriber
	conversations map[string]map[string]*Subscriber
	buffer        int
	closed        bool
}

func NewHub(subscriberBuffer int) *Hub {
	if subscriberBuffer <= 0 {
		subscriberBuffer = 64
	}
	return &Hub{
		presence:      make(map[string]*Subscriber),
		conversations: make(map[string]map[string]*Subscriber),
		buffer:        subscriberBuffer,
	}
}

// SubscribePresence registers for every roster mutation.
func (h *Hub) SubscribePresence() *Subscriber {
	sub := &Subscriber{
		ID: uuid.NewString(),
		ch: make(chan Event, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.presence[sub.ID] = sub
	return sub
}

// SubscribeConversation registers for new messages between the pair, in
// append order.
func (h *Hub) SubscribeConversation(userA, userB uint64) *Subscriber {
	key := common.ConversationKey(userA, userB)
	sub := &Subscriber{
		ID:      uuid.NewString(),
		convKey: key,
		ch:      make(chan Event, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	if h.conversations[key] == nil {
		h.conversations[key] = make(map[string]*Subscriber)
	}
	h.conversations[key][sub.ID] = sub
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	if sub.convKey == "" {
		if _, ok := h.presence[sub.ID]; !ok {
			return
		}
		delete(h.presence, sub.ID)
	} else {
		subs, ok := h.conversations[sub.convKey]
		if !ok {
			return
		}
		if _, ok := subs[sub.ID]; !ok {
			return
		}
		delete(subs, sub.ID)
		if len(subs) == 0 {
			delete(h.conversations, sub.convKey)
		}
	}
	close(sub.ch)
}

// PublishRoster fans a presence mutation out to every roster subscriber.
// Never blocks the caller: offer is non-blocking, so holding the read lock
// through delivery is cheap and keeps Unsubscribe from closing a queue
// mid-send.
func (h *Hub) PublishRoster(event common.RosterEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ev := Event{Kind: "roster", Roster: &event}
	for _, sub := range h.presence {
		sub.offer(ev)
	}
}

// PublishMessage delivers a stored message to the subscribers of exactly that
// conversation pair. Filtering happens here, before enqueue.
func (h *Hub) PublishMessage(event common.MessageEvent) {
	key := common.ConversationKey(event.SenderID, event.ReceiverID)

	h.mu.RLock()
	defer h.mu.RUnlock()

	ev := Event{Kind: "message", Message: &event}
	for _, sub := range h.conversations[key] {
		sub.offer(ev)
	}
}

// Shutdown closes every subscriber queue. Publish calls after shutdown are
// no-ops.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true

	for id, sub := range h.presence {
		close(sub.ch)
		delete(h.presence, id)
	}
	for key, subs := range h.conversations {
		for id, sub := range subs {
			close(sub.ch)
			delete(subs, id)
		}
		delete(h.conversations, key)
	}
	log.Println("fanout hub shutdown complete")
}

// offer enqueues without blocking; a full queue sheds its oldest event first.
// A concurrent publisher can steal the freed slot, so shed-and-retry runs a
// second round before the new event itself is dropped.
func (s *Subscriber) offer(ev Event) {
	for i := 0; i < 2; i++ {
		select {
		case s.ch <- ev:
			return
		default:
		}

		select {
		case <-s.ch:
		default:
		}
	}

	select {
	case s.ch <- ev:
	default:
	}
}
