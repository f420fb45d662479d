package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/openhuddle/huddle/internal/domain"
)

// room is one live room: an insertion-ordered member set plus the recorder
// slot. A room exists only while it has at least one member.
type room struct {
	mu       sync.Mutex
	members  map[domain.ClientID]Connection
	order    []domain.ClientID
	recorder domain.ClientID // "" while idle

	// gone marks an instance the last leaver has deleted from the registry.
	// A Join that looked the instance up before the deletion must not
	// resurrect it; it retries against the map instead.
	gone bool
}

// Registry owns the room -> members mapping shared by every session.
// All state transitions happen under the room's lock; network sends are
// non-blocking channel pushes, so holding the lock across them is still
// avoided by snapshotting recipients first.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomID]*room)}
}

func (r *Registry) getRoom(id domain.RoomID) (*room, bool) {
	r.mu.RLock()
	rm, ok := r.rooms[id]
	r.mu.RUnlock()
	return rm, ok
}

func (r *Registry) getOrCreateRoom(id domain.RoomID) *room {
	r.mu.RLock()
	rm, ok := r.rooms[id]
	r.mu.RUnlock()
	if ok {
		return rm
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rm, ok = r.rooms[id]; ok {
		return rm
	}
	rm = &room{members: make(map[domain.ClientID]Connection)}
	r.rooms[id] = rm
	log.Info().Str("module", "core.registry").Str("room", string(id)).Msg("room created")
	return rm
}

// Join registers conn under (roomID, clientID), creating the room if absent.
// A join with an id that is already present supersedes the old entry and
// returns the displaced connection so the caller can close it.
func (r *Registry) Join(roomID domain.RoomID, clientID domain.ClientID, conn Connection) Connection {
	var rm *room
	for {
		rm = r.getOrCreateRoom(roomID)
		rm.mu.Lock()
		if !rm.gone {
			break
		}
		// The last member left between the map lookup and the lock
		// acquisition; this instance is orphaned. Fetch a fresh one.
		rm.mu.Unlock()
	}

	prev, existed := rm.members[clientID]
	rm.members[clientID] = conn
	if !existed {
		rm.order = append(rm.order, clientID)
	}
	count := len(rm.members)
	rm.mu.Unlock()

	log.Info().Str("module", "core.registry").
		Str("room", string(roomID)).Str("client", string(clientID)).
		Int("members", count).Bool("superseded", existed).
		Msg("client joined")
	if existed {
		return prev
	}
	return nil
}

// Leave removes the member entry if present. It reports whether the removed
// client held the recorder role so the caller can run the departure cleanup.
// Leaving a room or client that does not exist is a no-op.
func (r *Registry) Leave(roomID domain.RoomID, clientID domain.ClientID) (wasRecorder bool) {
	_, wasRecorder = r.leave(roomID, clientID, nil)
	return wasRecorder
}

// LeaveConn removes the member entry only while it still belongs to conn.
// A session whose connection was superseded by a re-join must not tear down
// its successor's registry entry.
func (r *Registry) LeaveConn(roomID domain.RoomID, clientID domain.ClientID, conn Connection) (removed, wasRecorder bool) {
	return r.leave(roomID, clientID, conn)
}

func (r *Registry) leave(roomID domain.RoomID, clientID domain.ClientID, conn Connection) (removed, wasRecorder bool) {
	rm, ok := r.getRoom(roomID)
	if !ok {
		return false, false
	}

	rm.mu.Lock()
	current, ok := rm.members[clientID]
	if !ok || (conn != nil && current != conn) {
		rm.mu.Unlock()
		return false, false
	}
	delete(rm.members, clientID)
	for i, id := range rm.order {
		if id == clientID {
			rm.order = append(rm.order[:i], rm.order[i+1:]...)
			break
		}
	}
	wasRecorder = rm.recorder == clientID
	empty := len(rm.members) == 0
	rm.mu.Unlock()

	log.Info().Str("module", "core.registry").
		Str("room", string(roomID)).Str("client", string(clientID)).
		Msg("client left")

	if empty {
		r.mu.Lock()
		// Re-check under the registry lock: a concurrent Join may have
		// repopulated the room since we released its lock.
		rm.mu.Lock()
		if len(rm.members) == 0 && r.rooms[roomID] == rm {
			rm.gone = true
			delete(r.rooms, roomID)
			log.Info().Str("module", "core.registry").Str("room", string(roomID)).Msg("room removed")
		}
		rm.mu.Unlock()
		r.mu.Unlock()
	}
	return true, wasRecorder
}

// Members returns the client ids of a room in join order.
func (r *Registry) Members(roomID domain.RoomID) []domain.ClientID {
	rm, ok := r.getRoom(roomID)
	if !ok {
		return nil
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make([]domain.ClientID, len(rm.order))
	copy(out, rm.order)
	return out
}

// ActiveRecorder reports the room's current recorder, if any.
func (r *Registry) ActiveRecorder(roomID domain.RoomID) (domain.ClientID, bool) {
	rm, ok := r.getRoom(roomID)
	if !ok {
		return "", false
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.recorder == "" {
		return "", false
	}
	return rm.recorder, true
}

// ClaimRecorder is a compare-and-set on the recorder slot. It succeeds when
// the slot is idle or already held by clientID; otherwise it returns the
// current holder. Claiming in a room that does not exist behaves as a fresh
// claim: it succeeds but nothing is stored, since empty rooms are never kept.
func (r *Registry) ClaimRecorder(roomID domain.RoomID, clientID domain.ClientID) (bool, domain.ClientID) {
	rm, ok := r.getRoom(roomID)
	if !ok {
		return true, clientID
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.recorder == "" || rm.recorder == clientID {
		rm.recorder = clientID
		return true, clientID
	}
	return false, rm.recorder
}

// ReleaseRecorder clears the recorder slot only when clientID holds it.
func (r *Registry) ReleaseRecorder(roomID domain.RoomID, clientID domain.ClientID) bool {
	rm, ok := r.getRoom(roomID)
	if !ok {
		return false
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.recorder != clientID {
		return false
	}
	rm.recorder = ""
	return true
}

// SendTo delivers one frame to a single client, best effort. An absent room,
// absent client, or failed send is logged and swallowed: control messages are
// superseded by the next state broadcast, never retried.
func (r *Registry) SendTo(roomID domain.RoomID, clientID domain.ClientID, f Frame) {
	rm, ok := r.getRoom(roomID)
	if !ok {
		log.Warn().Str("module", "core.registry").
			Str("room", string(roomID)).Str("client", string(clientID)).
			Msg("send to absent room")
		return
	}
	rm.mu.Lock()
	conn, ok := rm.members[clientID]
	rm.mu.Unlock()
	if !ok {
		log.Warn().Str("module", "core.registry").
			Str("room", string(roomID)).Str("client", string(clientID)).
			Msg("send to absent client")
		return
	}
	if err := conn.TrySend(f); err != nil {
		log.Warn().Err(err).Str("module", "core.registry").
			Str("room", string(roomID)).Str("client", string(clientID)).
			Msg("unicast failed")
	}
}

// Broadcast delivers one frame to every member of a room except exclude
// ("" excludes nobody). Per-recipient failures are independent: one broken
// channel never aborts delivery to the rest.
func (r *Registry) Broadcast(roomID domain.RoomID, f Frame, exclude domain.ClientID) {
	rm, ok := r.getRoom(roomID)
	if !ok {
		return
	}

	type recipient struct {
		id   domain.ClientID
		conn Connection
	}
	rm.mu.Lock()
	recipients := make([]recipient, 0, len(rm.order))
	for _, id := range rm.order {
		if id == exclude {
			continue
		}
		recipients = append(recipients, recipient{id: id, conn: rm.members[id]})
	}
	rm.mu.Unlock()

	for _, rcpt := range recipients {
		if err := rcpt.conn.TrySend(f); err != nil {
			log.Warn().Err(err).Str("module", "core.registry").
				Str("room", string(roomID)).Str("client", string(rcpt.id)).
				Msg("broadcast recipient failed")
		}
	}
}

// Stats reports the number of live rooms and connected clients.
func (r *Registry) Stats() (rooms, clients int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms = len(r.rooms)
	for _, rm := range r.rooms {
		rm.mu.Lock()
		clients += len(rm.members)
		rm.mu.Unlock()
	}
	return rooms, clients
}
