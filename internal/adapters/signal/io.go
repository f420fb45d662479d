package signal

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/openhuddle/huddle/internal/app"
	"github.com/openhuddle/huddle/internal/core"
	"github.com/openhuddle/huddle/internal/domain"
	"github.com/openhuddle/huddle/internal/observability"
	"github.com/openhuddle/huddle/internal/protocol"
)

const writeWait = 5 * time.Second

// session drives one client's lifecycle: join has already happened by the
// time the pumps start; teardown runs exactly once no matter which side of
// the connection fails first.
type session struct {
	room   domain.RoomID
	client domain.ClientID
	conn   *wsConn

	registry *core.Registry
	arbiter  *core.RecorderArbiter
	router   *app.SignalingRouter

	pingPeriod time.Duration
	cancel     context.CancelFunc
	cleanup    sync.Once
}

func (s *session) writePump(ctx context.Context) {
	ticker := time.NewTicker(s.pingPeriod)
	defer func() {
		ticker.Stop()
		s.teardown()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-s.conn.send:
			if !ok {
				return
			}
			if err := s.conn.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := s.conn.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").
					Str("client", string(s.client)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := s.conn.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := s.conn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *session) readPump(ctx context.Context) {
	defer s.teardown()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := s.conn.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Str("module", "signal").
						Str("client", string(s.client)).Msg("readPump read error")
				}
				return
			}
			if err := s.router.Route(s.room, s.client, data); err != nil {
				// Malformed inbound data is a session fault: no reply to the
				// sender, same cleanup as a disconnect.
				log.Warn().Err(err).Str("module", "signal").
					Str("room", string(s.room)).Str("client", string(s.client)).
					Msg("undecodable frame, closing session")
				return
			}
		}
	}
}

// teardown runs the full departure sequence once: leave the registry,
// announce user-left, and release the recorder slot if this client held it.
// LeaveConn guards against unwinding a session whose registry entry was
// already superseded by a re-join.
func (s *session) teardown() {
	s.cleanup.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		s.conn.Close()

		removed, wasRecorder := s.registry.LeaveConn(s.room, s.client, s.conn)
		if !removed {
			log.Info().Str("module", "signal").
				Str("room", string(s.room)).Str("client", string(s.client)).
				Msg("superseded session closed")
			return
		}

		if f, ok := encode(protocol.UserLeft{
			Type:     protocol.TypeUserLeft,
			ClientID: s.client,
		}); ok {
			s.registry.Broadcast(s.room, f, "")
		}
		if wasRecorder {
			s.arbiter.OnDeparture(s.room, s.client)
		}
		observability.RecordHubStats(s.registry.Stats())

		log.Info().Str("module", "signal").
			Str("room", string(s.room)).Str("client", string(s.client)).
			Msg("session closed")
	})
}
