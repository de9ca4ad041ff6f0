package domain

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/pion/webrtc/v3"
)

type EventType string

// Client -> server.
const (
	EventNextUser    EventType = "next-user"
	EventChatMessage EventType = "chat-message"
)

// Server -> client.
const (
	EventLobby            EventType = "lobby"
	EventRoomReady        EventType = "room-ready"
	EventSendOffer        EventType = "send-offer"
	EventReceiveMessage   EventType = "receive-message"
	EventUserDisconnected EventType = "user-disconnected"
)

// Both directions.
const (
	EventOffer           EventType = "offer"
	EventAnswer          EventType = "answer"
	EventAddICECandidate EventType = "add-ice-candidate"
)

const maxChatMessageLength = 4000

// Event is a single signaling frame. The SDP body is relayed as an opaque
// string; candidates use the standard init shape so malformed ones are
// rejected at the gateway instead of reaching the peer.
type Event struct {
	Type      EventType                `json:"type"`
	RoomID    string                   `json:"roomId,omitempty"`
	SDP       string                   `json:"sdp,omitempty"`
	Candidate *webrtc.ICECandidateInit `json:"candidate,omitempty"`
	Message   string                   `json:"message,omitempty"`
	SenderID  string                   `json:"senderId,omitempty"`
}

// ValidateInbound checks a client frame before it reaches the core.
func (e *Event) ValidateInbound() error {
	switch e.Type {
	case EventOffer, EventAnswer:
		if e.RoomID == "" {
			return errors.New("roomId is required")
		}
		if e.SDP == "" {
			return errors.New("sdp is required")
		}
	case EventAddICECandidate:
		if e.RoomID == "" {
			return errors.New("roomId is required")
		}
		if e.Candidate == nil {
			return errors.New("candidate is required")
		}
	case EventNextUser:
		if e.RoomID == "" {
			return errors.New("roomId is required")
		}
	case EventChatMessage:
		if e.RoomID == "" {
			return errors.New("roomId is required")
		}
		if strings.TrimSpace(e.Message) == "" {
			return errors.New("message cannot be empty")
		}
		if utf8.RuneCountInString(e.Message) > maxChatMessageLength {
			return errors.New("message is too long")
		}
	default:
		return errors.New("unsupported event type: " + string(e.Type))
	}
	return nil
}
