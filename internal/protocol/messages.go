// Package protocol defines the JSON messages exchanged over the signaling
// channel. Negotiation payloads (SDP, ICE candidates) are opaque to the hub
// and relayed verbatim.
package protocol

import (
	"encoding/json"

	"github.com/openhuddle/huddle/internal/domain"
)

// Message types accepted from clients.
const (
	TypeOffer            = "offer"
	TypeAnswer           = "answer"
	TypeICECandidate     = "ice-candidate"
	TypeRecordingState   = "recording-state"
	TypeTranscriptUpdate = "transcript-update"
)

// Message types emitted by the hub only.
const (
	TypeUserJoined      = "user-joined"
	TypeRoomClients     = "room-clients"
	TypeUserLeft        = "user-left"
	TypeRecordingDenied = "recording-denied"
)

// Envelope carries just the type tag, enough to route an inbound message.
type Envelope struct {
	Type string `json:"type"`
}

// SignalIn is an inbound offer/answer/ice-candidate addressed to one peer.
// Exactly one of Offer/Answer/Candidate is set, matching Type.
type SignalIn struct {
	Type      string          `json:"type"`
	TargetID  domain.ClientID `json:"target_id"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// Payload returns the negotiation payload that matches the message type.
func (s *SignalIn) Payload() json.RawMessage {
	switch s.Type {
	case TypeOffer:
		return s.Offer
	case TypeAnswer:
		return s.Answer
	case TypeICECandidate:
		return s.Candidate
	}
	return nil
}

// RecordingStateIn is a client's request to start or stop recording.
type RecordingStateIn struct {
	Type      string `json:"type"`
	Recording bool   `json:"recording"`
}

// TranscriptUpdateIn carries a live transcription buffer from the recorder.
type TranscriptUpdateIn struct {
	Type     string `json:"type"`
	Buffer   string `json:"buffer"`
	Interim  bool   `json:"interim"`
	Language string `json:"language"`
}

// SignalOut is a relayed offer/answer/ice-candidate annotated with the sender.
type SignalOut struct {
	Type      string          `json:"type"`
	SenderID  domain.ClientID `json:"sender_id"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// NewSignalOut builds the relay message for a negotiation payload, keeping
// the payload under the field name the original message used.
func NewSignalOut(msgType string, sender domain.ClientID, payload json.RawMessage) SignalOut {
	out := SignalOut{Type: msgType, SenderID: sender}
	switch msgType {
	case TypeOffer:
		out.Offer = payload
	case TypeAnswer:
		out.Answer = payload
	case TypeICECandidate:
		out.Candidate = payload
	}
	return out
}

// UserJoined announces a new member to the rest of the room.
type UserJoined struct {
	Type     string            `json:"type"`
	ClientID domain.ClientID   `json:"client_id"`
	Clients  []domain.ClientID `json:"clients"`
}

// RoomClients is the snapshot a joining client receives: who is present and
// whether transcription is already running.
type RoomClients struct {
	Type           string            `json:"type"`
	Clients        []domain.ClientID `json:"clients"`
	ActiveRecorder *domain.ClientID  `json:"active_recorder"`
}

// UserLeft announces a departure.
type UserLeft struct {
	Type     string          `json:"type"`
	ClientID domain.ClientID `json:"client_id"`
}

// RecordingState broadcasts the room's recorder slot after a transition.
type RecordingState struct {
	Type           string           `json:"type"`
	Recording      bool             `json:"recording"`
	ActiveRecorder *domain.ClientID `json:"active_recorder"`
}

// RecordingDenied tells a losing claimant who holds the recorder role.
type RecordingDenied struct {
	Type           string          `json:"type"`
	ActiveRecorder domain.ClientID `json:"active_recorder"`
}

// TranscriptUpdate fans a recorder's buffer out to the room.
type TranscriptUpdate struct {
	Type     string          `json:"type"`
	SenderID domain.ClientID `json:"sender_id"`
	Buffer   string          `json:"buffer"`
	Interim  bool            `json:"interim"`
	Language string          `json:"language"`
}

// Encode marshals an outbound message. The message structs above cannot fail
// to marshal, so callers treat an error as a programming bug.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
