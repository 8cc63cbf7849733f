package realtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veilapp/veil-backend/internal/realtime"
)

type received struct {
	Event string
	Data  interface{}
}

type fakeSubscriber struct {
	got []received
}

func (f *fakeSubscriber) Send(event string, data interface{}) {
	f.got = append(f.got, received{Event: event, Data: data})
}

func TestBroadcastExceptSender(t *testing.T) {
	hub := realtime.NewHub()
	sender := &fakeSubscriber{}
	other := &fakeSubscriber{}

	room := realtime.MatchRoom("m1")
	hub.Join(room, sender)
	hub.Join(room, other)

	hub.Broadcast(room, sender, realtime.EventUserTyping, "payload")

	assert.Empty(t, sender.got)
	assert.Len(t, other.got, 1)
	assert.Equal(t, realtime.EventUserTyping, other.got[0].Event)
	assert.Equal(t, "payload", other.got[0].Data)
}

func TestBroadcastScopedToRoom(t *testing.T) {
	hub := realtime.NewHub()
	inRoom := &fakeSubscriber{}
	elsewhere := &fakeSubscriber{}

	hub.Join(realtime.MatchRoom("m1"), inRoom)
	hub.Join(realtime.MatchRoom("m2"), elsewhere)

	hub.EmitToMatch("m1", realtime.EventMessageAdded, nil)

	assert.Len(t, inRoom.got, 1)
	assert.Empty(t, elsewhere.got)
}

func TestEmitToUser(t *testing.T) {
	hub := realtime.NewHub()
	u1 := &fakeSubscriber{}
	u2 := &fakeSubscriber{}

	hub.Join(realtime.UserRoom("u1"), u1)
	hub.Join(realtime.UserRoom("u2"), u2)

	hub.EmitToUser("u1", realtime.EventNewMessage, "hello")

	assert.Len(t, u1.got, 1)
	assert.Equal(t, realtime.EventNewMessage, u1.got[0].Event)
	assert.Empty(t, u2.got)
}

func TestEmitToEmptyRoomIsNoop(t *testing.T) {
	hub := realtime.NewHub()
	hub.EmitToUser("ghost", realtime.EventNewMessage, nil) // must not panic
	assert.Equal(t, 0, hub.RoomSize(realtime.UserRoom("ghost")))
}

func TestLeaveAllClearsMembership(t *testing.T) {
	hub := realtime.NewHub()
	sub := &fakeSubscriber{}
	stay := &fakeSubscriber{}

	hub.Join(realtime.UserRoom("u1"), sub)
	hub.Join(realtime.MatchRoom("m1"), sub)
	hub.Join(realtime.MatchRoom("m1"), stay)

	hub.LeaveAll(sub)

	assert.Equal(t, 0, hub.RoomSize(realtime.UserRoom("u1")))
	assert.Equal(t, 1, hub.RoomSize(realtime.MatchRoom("m1")))

	hub.EmitToMatch("m1", realtime.EventUserTyping, nil)
	assert.Empty(t, sub.got)
	assert.Len(t, stay.got, 1)
}

func TestLeaveSingleRoom(t *testing.T) {
	hub := realtime.NewHub()
	sub := &fakeSubscriber{}

	hub.Join(realtime.MatchRoom("m1"), sub)
	hub.Leave(realtime.MatchRoom("m1"), sub)
	hub.Leave(realtime.MatchRoom("m1"), sub) // idempotent

	assert.Equal(t, 0, hub.RoomSize(realtime.MatchRoom("m1")))
}
