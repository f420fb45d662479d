package app_test

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhuddle/huddle/internal/app"
	"github.com/openhuddle/huddle/internal/core"
	"github.com/openhuddle/huddle/internal/protocol"
)

type mockConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (m *mockConn) TrySend(f core.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, f)
	return nil
}

func (m *mockConn) Close() {}

func (m *mockConn) received() []core.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Frame, len(m.frames))
	copy(out, m.frames)
	return out
}

func newRouterFixture() (*app.SignalingRouter, *core.Registry, *mockConn, *mockConn) {
	reg := core.NewRegistry()
	arb := core.NewRecorderArbiter(reg)
	router := app.NewSignalingRouter(reg, arb)
	alice := &mockConn{}
	bob := &mockConn{}
	reg.Join("r1", "alice", alice)
	reg.Join("r1", "bob", bob)
	return router, reg, alice, bob
}

func TestSignalingRouter_RelaysNegotiationToTarget(t *testing.T) {
	tests := []struct {
		msgType string
		field   string
	}{
		{msgType: "offer", field: "offer"},
		{msgType: "answer", field: "answer"},
		{msgType: "ice-candidate", field: "candidate"},
	}

	for _, tt := range tests {
		t.Run(tt.msgType, func(t *testing.T) {
			router, _, alice, bob := newRouterFixture()
			payload := `{"sdp":"v=0...","type":"x"}`
			inbound := fmt.Sprintf(`{"type":%q,"target_id":"bob",%q:%s}`, tt.msgType, tt.field, payload)

			require.NoError(t, router.Route("r1", "alice", []byte(inbound)))

			frames := bob.received()
			require.Len(t, frames, 1)

			var out map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(frames[0], &out))
			assert.JSONEq(t, fmt.Sprintf("%q", tt.msgType), string(out["type"]))
			assert.JSONEq(t, `"alice"`, string(out["sender_id"]))
			assert.JSONEq(t, payload, string(out[tt.field]), "negotiation payload must pass through verbatim")

			assert.Empty(t, alice.received(), "relay is unicast to the target only")
		})
	}
}

func TestSignalingRouter_UnknownTargetSwallowed(t *testing.T) {
	router, _, alice, bob := newRouterFixture()

	err := router.Route("r1", "alice", []byte(`{"type":"offer","target_id":"ghost","offer":{}}`))

	assert.NoError(t, err)
	assert.Empty(t, alice.received())
	assert.Empty(t, bob.received())
}

func TestSignalingRouter_MalformedFrameIsAnError(t *testing.T) {
	router, _, _, _ := newRouterFixture()

	assert.Error(t, router.Route("r1", "alice", []byte(`{not json`)))
	assert.Error(t, router.Route("r1", "alice", []byte(`{"type":"recording-state","recording":"yes"}`)))
}

func TestSignalingRouter_UnknownTypeIgnored(t *testing.T) {
	router, _, alice, bob := newRouterFixture()

	err := router.Route("r1", "alice", []byte(`{"type":"selfie"}`))

	assert.NoError(t, err)
	assert.Empty(t, alice.received())
	assert.Empty(t, bob.received())
}

func TestSignalingRouter_RecordingStateDelegation(t *testing.T) {
	router, reg, alice, bob := newRouterFixture()

	require.NoError(t, router.Route("r1", "alice", []byte(`{"type":"recording-state","recording":true}`)))

	holder, ok := reg.ActiveRecorder("r1")
	require.True(t, ok)
	assert.Equal(t, "alice", string(holder))
	assert.Len(t, alice.received(), 1, "claimant is included in the state broadcast")
	assert.Len(t, bob.received(), 1)

	require.NoError(t, router.Route("r1", "alice", []byte(`{"type":"recording-state","recording":false}`)))
	_, ok = reg.ActiveRecorder("r1")
	assert.False(t, ok)
}

func TestSignalingRouter_TranscriptDelegation(t *testing.T) {
	router, _, _, bob := newRouterFixture()

	// Not the recorder: dropped without a reply.
	require.NoError(t, router.Route("r1", "alice", []byte(`{"type":"transcript-update","buffer":"hi","interim":true,"language":"en-US"}`)))
	assert.Empty(t, bob.received())

	require.NoError(t, router.Route("r1", "alice", []byte(`{"type":"recording-state","recording":true}`)))
	require.NoError(t, router.Route("r1", "alice", []byte(`{"type":"transcript-update","buffer":"hi","interim":true,"language":"en-US"}`)))

	var update protocol.TranscriptUpdate
	frames := bob.received()
	require.Len(t, frames, 2)
	require.NoError(t, json.Unmarshal(frames[1], &update))
	assert.Equal(t, protocol.TypeTranscriptUpdate, update.Type)
	assert.Equal(t, "hi", update.Buffer)
	assert.True(t, update.Interim)
}
