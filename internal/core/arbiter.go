package core

import (
	"github.com/rs/zerolog/log"

	"github.com/openhuddle/huddle/internal/domain"
	"github.com/openhuddle/huddle/internal/protocol"
)

// RecorderArbiter implements the single-active-recorder state machine on top
// of the registry's recorder slot. Per room the state is either idle or
// recording with exactly one holder; claims race through a compare-and-set,
// so two simultaneous claimants can never both win.
type RecorderArbiter struct {
	reg *Registry
}

func NewRecorderArbiter(reg *Registry) *RecorderArbiter {
	return &RecorderArbiter{reg: reg}
}

func (a *RecorderArbiter) encode(v any) (Frame, bool) {
	b, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "core.arbiter").Msg("encode message")
		return nil, false
	}
	return Frame(b), true
}

// RequestRecording handles a recording-state request from a client.
//
// Start requests win when the slot is idle or already theirs; the resulting
// state is broadcast to the whole room, claimant included. A losing claimant
// alone is told who holds the role. Stop requests only take effect from the
// current holder; anything else is silently ignored.
func (a *RecorderArbiter) RequestRecording(roomID domain.RoomID, clientID domain.ClientID, wantOn bool) {
	if wantOn {
		won, holder := a.reg.ClaimRecorder(roomID, clientID)
		if !won {
			log.Info().Str("module", "core.arbiter").
				Str("room", string(roomID)).Str("client", string(clientID)).
				Str("holder", string(holder)).Msg("recording claim denied")
			f, ok := a.encode(protocol.RecordingDenied{
				Type:           protocol.TypeRecordingDenied,
				ActiveRecorder: holder,
			})
			if ok {
				a.reg.SendTo(roomID, clientID, f)
			}
			return
		}
		log.Info().Str("module", "core.arbiter").
			Str("room", string(roomID)).Str("client", string(clientID)).
			Msg("recording started")
		a.broadcastState(roomID, &clientID)
		return
	}

	if !a.reg.ReleaseRecorder(roomID, clientID) {
		return
	}
	log.Info().Str("module", "core.arbiter").
		Str("room", string(roomID)).Str("client", string(clientID)).
		Msg("recording stopped")
	a.broadcastState(roomID, nil)
}

// RelayTranscript fans a transcript buffer out to the room, but only when the
// sender holds the recorder role. Updates from anyone else are dropped with
// no notification.
func (a *RecorderArbiter) RelayTranscript(roomID domain.RoomID, clientID domain.ClientID, buffer string, interim bool, language string) {
	holder, ok := a.reg.ActiveRecorder(roomID)
	if !ok || holder != clientID {
		log.Debug().Str("module", "core.arbiter").
			Str("room", string(roomID)).Str("client", string(clientID)).
			Msg("transcript from non-recorder dropped")
		return
	}
	f, ok := a.encode(protocol.TranscriptUpdate{
		Type:     protocol.TypeTranscriptUpdate,
		SenderID: clientID,
		Buffer:   buffer,
		Interim:  interim,
		Language: language,
	})
	if ok {
		a.reg.Broadcast(roomID, f, "")
	}
}

// OnDeparture forces the room back to idle after the holder's session ended,
// so the room is never left believing a disconnected client is recording.
// Callers invoke it once per departure, and only when the leaver held the
// role. The broadcast is skipped when the release no longer applies: the
// room may have been torn down and recreated with a new holder in the
// meantime, and a stale idle broadcast would contradict that holder's state.
func (a *RecorderArbiter) OnDeparture(roomID domain.RoomID, clientID domain.ClientID) {
	if !a.reg.ReleaseRecorder(roomID, clientID) {
		return
	}
	log.Info().Str("module", "core.arbiter").
		Str("room", string(roomID)).Str("client", string(clientID)).
		Msg("recorder departed, room idle")
	a.broadcastState(roomID, nil)
}

func (a *RecorderArbiter) broadcastState(roomID domain.RoomID, holder *domain.ClientID) {
	f, ok := a.encode(protocol.RecordingState{
		Type:           protocol.TypeRecordingState,
		Recording:      holder != nil,
		ActiveRecorder: holder,
	})
	if ok {
		a.reg.Broadcast(roomID, f, "")
	}
}
