package signal

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/openhuddle/huddle/internal/app"
	"github.com/openhuddle/huddle/internal/config"
	"github.com/openhuddle/huddle/internal/core"
	"github.com/openhuddle/huddle/internal/domain"
	"github.com/openhuddle/huddle/internal/observability"
	"github.com/openhuddle/huddle/internal/protocol"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller accepts signaling WebSocket connections and runs one session per
// socket.
type Controller struct {
	Registry *core.Registry
	Arbiter  *core.RecorderArbiter
	Router   *app.SignalingRouter

	readLimit  int64
	pingPeriod time.Duration
}

func NewController(cfg *config.Config, reg *core.Registry, arb *core.RecorderArbiter, router *app.SignalingRouter) *Controller {
	pingPeriod := cfg.PingPeriod
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &Controller{
		Registry:   reg,
		Arbiter:    arb,
		Router:     router,
		readLimit:  cfg.ReadLimit,
		pingPeriod: pingPeriod,
	}
}

// HandleSignal upgrades the request and joins the client to its room. The
// room and client id come from the path; a client that omits its id falls
// back to the cookie token issued by the HTTP layer.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	roomID := domain.RoomID(c.Param("room"))
	clientID := domain.ClientID(c.Param("client_id"))
	if clientID == "" {
		clientID = domain.ClientID(c.GetString("client_token"))
	}
	if roomID == "" || clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room and client id required"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	log.Info().Str("module", "signal").
		Str("room", string(roomID)).Str("client", string(clientID)).
		Msg("new WS connection")

	conn := newWSConn(ws)
	sess := &session{
		room:       roomID,
		client:     clientID,
		conn:       conn,
		registry:   ctl.Registry,
		arbiter:    ctl.Arbiter,
		router:     ctl.Router,
		pingPeriod: ctl.pingPeriod,
	}

	// A re-join under an already-active id supersedes the old channel; the
	// displaced connection is closed so its session unwinds instead of
	// lingering half-dead.
	if prev := ctl.Registry.Join(roomID, clientID, conn); prev != nil {
		prev.Close()
	}
	observability.RecordHubStats(ctl.Registry.Stats())

	sess.announceJoin()

	ctx, cancel := context.WithCancel(ctx)
	sess.cancel = cancel
	go sess.writePump(ctx)
	go sess.readPump(ctx)
}

// announceJoin tells the room about the new member and gives the member the
// current room snapshot, recorder slot included.
func (s *session) announceJoin() {
	members := s.registry.Members(s.room)

	if f, ok := encode(protocol.UserJoined{
		Type:     protocol.TypeUserJoined,
		ClientID: s.client,
		Clients:  members,
	}); ok {
		s.registry.Broadcast(s.room, f, s.client)
	}

	var holder *domain.ClientID
	if h, ok := s.registry.ActiveRecorder(s.room); ok {
		holder = &h
	}
	if f, ok := encode(protocol.RoomClients{
		Type:           protocol.TypeRoomClients,
		Clients:        members,
		ActiveRecorder: holder,
	}); ok {
		s.registry.SendTo(s.room, s.client, f)
	}
}

func encode(v any) (core.Frame, bool) {
	b, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode message")
		return nil, false
	}
	return core.Frame(b), true
}
