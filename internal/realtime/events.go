package realtime

import "encoding/json"

// Wire contract: inbound event names accepted from clients.
const (
	EventTyping         = "typing"
	EventVoiceCall      = "voiceCall"
	EventVideoCall      = "videoCall"
	EventJoinMatch      = "joinMatch"
	EventLeaveMatch     = "leaveMatch"
	EventActivity       = "activity"
	EventLocationUpdate = "locationUpdate"
)

// Outbound event names emitted to clients.
const (
	EventNewMessage   = "newMessage"
	EventMessageAdded = "messageAdded"
	EventUserTyping   = "userTyping"
	EventUserActivity = "userActivity"
)

// Envelope frames every inbound socket message: an event name plus an
// opaque payload the handler decodes itself.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Outbound is the frame written back to clients.
type Outbound struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type TypingPayload struct {
	MatchID  string `json:"matchId"`
	IsTyping bool   `json:"isTyping"`
}

// CallPayload carries voice/video signaling. The router relays the payload
// verbatim; no semantic validation is performed on offer/answer/candidate
// contents.
type CallPayload struct {
	MatchID string          `json:"matchId"`
	Type    string          `json:"type"` // offer | answer | ice-candidate
	Payload json.RawMessage `json:"payload"`
}

type LocationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type UserTypingEvent struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type CallEvent struct {
	From    string          `json:"from"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type UserActivityEvent struct {
	UserID   string `json:"userId"`
	Activity string `json:"activity"`
}
