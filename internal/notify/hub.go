package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// DefaultSubscriberBuffer is how many events a slow watcher may fall behind before events are dropped.
const DefaultSubscriberBuffer = 16

// ErrInvalidRoom is returned when subscribing without a room ID.
var ErrInvalidRoom = errors.New("invalid room id")

// Hub delivers events to in-process subscribers, grouped by room.
// A subscriber that cannot keep up misses events; it still converges on the next one it receives
// because every event triggers a full re-read.
type Hub struct {
	mu               sync.RWMutex
	rooms            map[string]*room
	subscriberBuffer int
}

type room struct {
	mu     sync.Mutex
	subs   map[uint64]chan Event
	nextID uint64
}

// Subscription is one watcher of one room.
type Subscription struct {
	hub    *Hub
	roomID string
	id     uint64
	ch     chan Event
	once   sync.Once
}

var _ Publisher = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{
		rooms:            make(map[string]*room),
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

// Publish hands the event to every current subscriber of its room without blocking.
func (h *Hub) Publish(_ context.Context, event Event) error {
	if h == nil {
		return nil
	}
	id := strings.TrimSpace(event.RoomID)
	if id == "" {
		return ErrInvalidRoom
	}

	h.mu.RLock()
	r := h.rooms[id]
	h.mu.RUnlock()
	if r == nil {
		return nil
	}

	r.mu.Lock()
	subs := make([]chan Event, 0, len(r.subs))
	for _, ch := range r.subs {
		subs = append(subs, ch)
	}
	r.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe registers a watcher for roomID. Callers must Close the subscription.
func (h *Hub) Subscribe(roomID string) (*Subscription, error) {
	if h == nil {
		return nil, errors.New("hub unavailable")
	}
	id := strings.TrimSpace(roomID)
	if id == "" {
		return nil, ErrInvalidRoom
	}

	// Registration happens under h.mu so unsubscribe cannot drop the room in between.
	h.mu.Lock()
	r := h.rooms[id]
	if r == nil {
		r = &room{subs: make(map[uint64]chan Event)}
		h.rooms[id] = r
	}
	r.mu.Lock()
	subID := r.nextID
	r.nextID++
	ch := make(chan Event, h.subscriberBuffer)
	r.subs[subID] = ch
	r.mu.Unlock()
	h.mu.Unlock()

	return &Subscription{hub: h, roomID: id, id: subID, ch: ch}, nil
}

// Subscribers counts the watchers of roomID.
func (h *Hub) Subscribers(roomID string) int {
	h.mu.RLock()
	r := h.rooms[roomID]
	h.mu.RUnlock()
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

func (h *Hub) unsubscribe(roomID string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := h.rooms[roomID]
	if r == nil {
		return
	}
	r.mu.Lock()
	delete(r.subs, id)
	empty := len(r.subs) == 0
	r.mu.Unlock()
	if empty {
		delete(h.rooms, roomID)
	}
}

// Events returns the delivery channel. It is never closed; stop reading after Close.
func (s *Subscription) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.roomID, s.id)
	})
}
