package core_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhuddle/huddle/internal/core"
	"github.com/openhuddle/huddle/internal/domain"
)

type mockConn struct {
	mu      sync.Mutex
	frames  []core.Frame
	sendErr error
	closed  bool
}

func (m *mockConn) TrySend(f core.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.frames = append(m.frames, f)
	return nil
}

func (m *mockConn) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *mockConn) received() []core.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Frame, len(m.frames))
	copy(out, m.frames)
	return out
}

func (m *mockConn) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func TestRegistry_JoinMembershipExclusivity(t *testing.T) {
	reg := core.NewRegistry()
	first := &mockConn{}
	second := &mockConn{}

	prev := reg.Join("r1", "alice", first)
	assert.Nil(t, prev)

	prev = reg.Join("r1", "alice", second)
	assert.Same(t, first, prev, "re-join must hand back the superseded connection")

	members := reg.Members("r1")
	assert.Equal(t, []domain.ClientID{"alice"}, members)
}

func TestRegistry_MembersKeepJoinOrder(t *testing.T) {
	reg := core.NewRegistry()
	for _, id := range []domain.ClientID{"alice", "bob", "carol"} {
		reg.Join("r1", id, &mockConn{})
	}
	assert.Equal(t, []domain.ClientID{"alice", "bob", "carol"}, reg.Members("r1"))

	reg.Leave("r1", "bob")
	assert.Equal(t, []domain.ClientID{"alice", "carol"}, reg.Members("r1"))
}

func TestRegistry_RoomTeardown(t *testing.T) {
	reg := core.NewRegistry()
	reg.Join("r1", "alice", &mockConn{})
	reg.Join("r1", "bob", &mockConn{})

	won, _ := reg.ClaimRecorder("r1", "alice")
	require.True(t, won)

	rooms, clients := reg.Stats()
	assert.Equal(t, 1, rooms)
	assert.Equal(t, 2, clients)

	reg.Leave("r1", "alice")
	reg.Leave("r1", "bob")

	rooms, clients = reg.Stats()
	assert.Equal(t, 0, rooms)
	assert.Equal(t, 0, clients)
	assert.Empty(t, reg.Members("r1"))

	// The room is gone, so a new claim behaves as if the room were fresh.
	won, holder := reg.ClaimRecorder("r1", "carol")
	assert.True(t, won)
	assert.Equal(t, domain.ClientID("carol"), holder)
}

func TestRegistry_JoinSurvivesConcurrentTeardown(t *testing.T) {
	reg := core.NewRegistry()

	// Churn the room through empty so joins keep racing its deletion.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			reg.Join("r1", "churn", &mockConn{})
			reg.Leave("r1", "churn")
		}
	}()

	for i := 0; i < 2000; i++ {
		reg.Join("r1", "alice", &mockConn{})
		require.Contains(t, reg.Members("r1"), domain.ClientID("alice"),
			"a joined client must be visible in its room")
		reg.Leave("r1", "alice")
	}
	<-done
}

func TestRegistry_LeaveAbsentIsNoop(t *testing.T) {
	reg := core.NewRegistry()
	assert.False(t, reg.Leave("nope", "alice"))

	reg.Join("r1", "alice", &mockConn{})
	assert.False(t, reg.Leave("r1", "bob"))
	assert.Equal(t, []domain.ClientID{"alice"}, reg.Members("r1"))
}

func TestRegistry_LeaveConnGuardsSupersededSessions(t *testing.T) {
	reg := core.NewRegistry()
	old := &mockConn{}
	replacement := &mockConn{}

	reg.Join("r1", "alice", old)
	reg.Join("r1", "alice", replacement)

	removed, _ := reg.LeaveConn("r1", "alice", old)
	assert.False(t, removed, "superseded session must not remove its successor")
	assert.Equal(t, []domain.ClientID{"alice"}, reg.Members("r1"))

	removed, _ = reg.LeaveConn("r1", "alice", replacement)
	assert.True(t, removed)
	assert.Empty(t, reg.Members("r1"))
}

func TestRegistry_LeaveReportsRecorder(t *testing.T) {
	reg := core.NewRegistry()
	reg.Join("r1", "alice", &mockConn{})
	reg.Join("r1", "bob", &mockConn{})

	won, _ := reg.ClaimRecorder("r1", "alice")
	require.True(t, won)

	assert.False(t, reg.Leave("r1", "bob"))
	assert.True(t, reg.Leave("r1", "alice"))
}

func TestRegistry_SendTo(t *testing.T) {
	tests := []struct {
		name     string
		room     domain.RoomID
		client   domain.ClientID
		wantSent bool
	}{
		{name: "delivered to member", room: "r1", client: "alice", wantSent: true},
		{name: "absent client swallowed", room: "r1", client: "ghost"},
		{name: "absent room swallowed", room: "nope", client: "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := core.NewRegistry()
			alice := &mockConn{}
			reg.Join("r1", "alice", alice)

			reg.SendTo(tt.room, tt.client, core.Frame(`{"type":"x"}`))

			if tt.wantSent {
				assert.Len(t, alice.received(), 1)
			} else {
				assert.Empty(t, alice.received())
			}
		})
	}
}

func TestRegistry_SendToFailureSwallowed(t *testing.T) {
	reg := core.NewRegistry()
	broken := &mockConn{sendErr: errors.New("channel closed")}
	reg.Join("r1", "alice", broken)

	assert.NotPanics(t, func() {
		reg.SendTo("r1", "alice", core.Frame(`{}`))
	})
}

func TestRegistry_BroadcastIsolation(t *testing.T) {
	reg := core.NewRegistry()
	alice := &mockConn{}
	broken := &mockConn{sendErr: errors.New("broken pipe")}
	carol := &mockConn{}
	reg.Join("r1", "alice", alice)
	reg.Join("r1", "bob", broken)
	reg.Join("r1", "carol", carol)

	reg.Broadcast("r1", core.Frame(`{"type":"x"}`), "")

	assert.Len(t, alice.received(), 1, "failure at one recipient must not abort the rest")
	assert.Len(t, carol.received(), 1)
}

func TestRegistry_BroadcastExclusion(t *testing.T) {
	reg := core.NewRegistry()
	alice := &mockConn{}
	bob := &mockConn{}
	reg.Join("r1", "alice", alice)
	reg.Join("r1", "bob", bob)

	reg.Broadcast("r1", core.Frame(`{"type":"x"}`), "alice")

	assert.Empty(t, alice.received())
	assert.Len(t, bob.received(), 1)
}

func TestRegistry_ClaimRecorderCAS(t *testing.T) {
	reg := core.NewRegistry()
	reg.Join("r1", "alice", &mockConn{})
	reg.Join("r1", "bob", &mockConn{})

	won, holder := reg.ClaimRecorder("r1", "alice")
	assert.True(t, won)
	assert.Equal(t, domain.ClientID("alice"), holder)

	won, holder = reg.ClaimRecorder("r1", "bob")
	assert.False(t, won)
	assert.Equal(t, domain.ClientID("alice"), holder)

	// Repeat claim by the holder is idempotent.
	won, _ = reg.ClaimRecorder("r1", "alice")
	assert.True(t, won)

	assert.False(t, reg.ReleaseRecorder("r1", "bob"))
	holder, ok := reg.ActiveRecorder("r1")
	assert.True(t, ok)
	assert.Equal(t, domain.ClientID("alice"), holder)

	assert.True(t, reg.ReleaseRecorder("r1", "alice"))
	_, ok = reg.ActiveRecorder("r1")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentClaimsSingleWinner(t *testing.T) {
	reg := core.NewRegistry()
	clients := []domain.ClientID{"c0", "c1", "c2", "c3", "c4", "c5", "c6", "c7"}
	for _, id := range clients {
		reg.Join("r1", id, &mockConn{})
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := make(map[domain.ClientID]bool)
	for _, id := range clients {
		wg.Add(1)
		go func(id domain.ClientID) {
			defer wg.Done()
			if won, _ := reg.ClaimRecorder("r1", id); won {
				mu.Lock()
				winners[id] = true
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	require.Len(t, winners, 1, "exactly one concurrent claimant may win")
	holder, ok := reg.ActiveRecorder("r1")
	require.True(t, ok)
	assert.True(t, winners[holder])
}
