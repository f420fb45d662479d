// Package app wires inbound signaling frames to the room registry and the
// recorder arbiter.
package app

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/openhuddle/huddle/internal/core"
	"github.com/openhuddle/huddle/internal/domain"
	"github.com/openhuddle/huddle/internal/observability"
	"github.com/openhuddle/huddle/internal/protocol"
)

// SignalingRouter classifies each inbound frame by its type tag and applies
// the matching relay or arbitration behavior. It validates nothing beyond the
// fields it forwards; negotiation payloads stay opaque.
type SignalingRouter struct {
	Registry *core.Registry
	Arbiter  *core.RecorderArbiter
}

func NewSignalingRouter(reg *core.Registry, arb *core.RecorderArbiter) *SignalingRouter {
	return &SignalingRouter{Registry: reg, Arbiter: arb}
}

// Route dispatches one inbound frame from (roomID, clientID). It returns an
// error only for frames that cannot be decoded; those are session faults and
// terminate the caller's read loop. Unknown types and protocol misuse are
// swallowed per the no-negative-acknowledgement policy.
func (r *SignalingRouter) Route(roomID domain.RoomID, clientID domain.ClientID, data []byte) error {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	observability.RecordSignalMessage(env.Type)

	switch env.Type {
	case protocol.TypeOffer, protocol.TypeAnswer, protocol.TypeICECandidate:
		return r.relaySignal(roomID, clientID, data)
	case protocol.TypeRecordingState:
		var p protocol.RecordingStateIn
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode recording-state: %w", err)
		}
		r.Arbiter.RequestRecording(roomID, clientID, p.Recording)
	case protocol.TypeTranscriptUpdate:
		var p protocol.TranscriptUpdateIn
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode transcript-update: %w", err)
		}
		r.Arbiter.RelayTranscript(roomID, clientID, p.Buffer, p.Interim, p.Language)
	default:
		log.Warn().Str("module", "app.router").
			Str("room", string(roomID)).Str("client", string(clientID)).
			Str("type", env.Type).Msg("unknown signal type")
	}
	return nil
}

func (r *SignalingRouter) relaySignal(roomID domain.RoomID, clientID domain.ClientID, data []byte) error {
	var p protocol.SignalIn
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode %s: %w", p.Type, err)
	}
	out := protocol.NewSignalOut(p.Type, clientID, p.Payload())
	f, err := protocol.Encode(out)
	if err != nil {
		log.Error().Err(err).Str("module", "app.router").Msg("encode relay")
		return nil
	}
	// Unknown or missing targets are swallowed inside SendTo.
	r.Registry.SendTo(roomID, p.TargetID, core.Frame(f))
	return nil
}
