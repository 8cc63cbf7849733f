package realtime

import (
	"fmt"
	"sync"
)

// Subscriber receives outbound events. Live websocket connections implement
// it; tests use in-memory fakes.
type Subscriber interface {
	Send(event string, data interface{})
}

// Hub maps room names to their current subscribers and relays broadcasts.
// It holds no durable state: membership exists only as long as the
// connections behind it.
//
// Rooms:
//   - user:<id>  joined automatically when a connection authenticates
//   - match:<id> joined/left explicitly by client request
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[Subscriber]struct{})}
}

func UserRoom(userID string) string   { return fmt.Sprintf("user:%s", userID) }
func MatchRoom(matchID string) string { return fmt.Sprintf("match:%s", matchID) }

func (h *Hub) Join(room string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[Subscriber]struct{})
	}
	h.rooms[room][s] = struct{}{}
}

func (h *Hub) Leave(room string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// LeaveAll removes the subscriber from every room it is in. Called on
// disconnect.
func (h *Hub) LeaveAll(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, members := range h.rooms {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast sends an event to every subscriber in the room except the one
// passed as except (nil means no exclusion). Delivery is at-most-once,
// best-effort: a member that is gone simply does not receive it.
func (h *Hub) Broadcast(room string, except Subscriber, event string, data interface{}) {
	h.mu.RLock()
	members := make([]Subscriber, 0, len(h.rooms[room]))
	for s := range h.rooms[room] {
		if s != except {
			members = append(members, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range members {
		s.Send(event, data)
	}
}

// EmitToUser pushes an event to the user's implicit room.
func (h *Hub) EmitToUser(userID, event string, data interface{}) {
	h.Broadcast(UserRoom(userID), nil, event, data)
}

// EmitToMatch pushes an event to every member of a match room.
func (h *Hub) EmitToMatch(matchID, event string, data interface{}) {
	h.Broadcast(MatchRoom(matchID), nil, event, data)
}

// RoomSize reports current membership. Mostly useful in tests.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
