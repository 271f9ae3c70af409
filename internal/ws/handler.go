package ws

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arenalight/arena-server/internal/auth"
	"github.com/arenalight/arena-server/internal/game"
	"github.com/arenalight/arena-server/internal/hub"
	"github.com/arenalight/arena-server/internal/room"
	"github.com/arenalight/arena-server/pkg/protocol"
)

const (
	joinTimeout  = 10 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 3 * time.Second
)

// Handler upgrades connections and relays between the transport and the
// room actors. The first client frame must be a join.
func Handler(h *hub.Hub, verifier auth.Verifier, sessions *Sessions, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		c := &connection{
			id:       uuid.NewString(),
			conn:     conn,
			hub:      h,
			verifier: verifier,
			sessions: sessions,
			log:      log,
		}
		c.serve(r.Context(), r.URL.Query().Get("token"))
	}
}

type connection struct {
	id       string
	conn     *websocket.Conn
	hub      *hub.Hub
	verifier auth.Verifier
	sessions *Sessions
	log      *zap.Logger
}

func (c *connection) serve(ctx context.Context, credential string) {
	join, ok := c.readJoin(ctx)
	if !ok {
		return
	}

	identity, err := c.verifier.Verify(ctx, credential)
	if err != nil {
		c.sendError(ctx, protocol.KindAuthenticationFailed, "identity could not be verified")
		return
	}
	if identity.Name == "" {
		identity.Name = join.Name
	}

	roomName := join.Room
	if roomName == "" {
		roomName = hub.DefaultRoomName
	}

	rm := c.resolveRoom(roomName)
	if rm == nil {
		c.sendError(ctx, protocol.KindRoomNotFound, "room not found")
		return
	}

	allowed := c.checkAllowlist(roomName, identity.Key())
	if err := rm.CheckAccess(join.Key, allowed); err != nil {
		c.sendError(ctx, protocol.KindInvalidKey, "wrong access key")
		return
	}

	outbox := make(chan []byte, 32)
	reply := make(chan room.JoinReply, 1)
	rm.Inbox() <- room.Join{
		ConnID:    c.id,
		Identity:  identity,
		Spectator: join.Spectator,
		Outbox:    outbox,
		Reply:     reply,
	}
	jr := <-reply
	if jr.Err != nil {
		c.sendError(ctx, errorKind(jr.Err), jr.Err.Error())
		return
	}

	role := RolePlayer
	if join.Spectator {
		role = RoleSpectator
	}
	c.sessions.Register(Session{ConnID: c.id, Room: roomName, PlayerID: jr.PlayerID, Role: role})
	defer c.sessions.Unregister(c.id)

	c.send(ctx, protocol.MsgJoined, protocol.Joined{
		PlayerID:  jr.PlayerID,
		Spectator: join.Spectator,
		TickHz:    game.TickHz,
		MapWidth:  game.MapWidth,
		MapHeight: game.MapHeight,
	})

	// Writer: drains the room's outbox; the room closes it when this
	// client is dropped or the room ends.
	writeCtx, writeCancel := context.WithCancel(ctx)
	defer writeCancel()
	go func() {
		for frame := range outbox {
			wctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
			_ = c.conn.Write(wctx, websocket.MessageText, frame)
			cancel()
		}
		_ = c.conn.Close(websocket.StatusNormalClosure, "room closed")
	}()

	c.readLoop(ctx, rm)
}

// readLoop relays client frames until the connection drops. A transport
// error becomes a Disconnect (grace period); an explicit leave is
// immediate.
func (c *connection) readLoop(ctx context.Context, rm *room.Room) {
	for {
		rctx, cancel := context.WithTimeout(ctx, readTimeout)
		_, data, err := c.conn.Read(rctx)
		cancel()
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				rm.Inbox() <- room.Leave{ConnID: c.id}
			default:
				rm.Inbox() <- room.Disconnect{ConnID: c.id}
			}
			return
		}

		env, err := protocol.DecodeEnvelope(data)
		if err != nil {
			c.log.Warn("bad frame", zap.Error(err))
			c.sendError(ctx, protocol.KindInvalidInput, "malformed frame")
			continue
		}

		switch env.T {
		case protocol.MsgInput:
			in, err := protocol.DecodePayload[protocol.Input](env)
			if err != nil || !validTarget(in) {
				c.log.Warn("invalid input payload", zap.Error(err))
				c.sendError(ctx, protocol.KindInvalidInput, "malformed coordinates")
				continue
			}
			rm.Inbox() <- room.SubmitInput{
				ConnID: c.id,
				Target: game.Vec2{X: in.TargetX, Y: in.TargetY},
			}
		case protocol.MsgLeave:
			rm.Inbox() <- room.Leave{ConnID: c.id}
			return
		default:
			c.sendError(ctx, protocol.KindInvalidInput, "unknown message type")
		}
	}
}

func (c *connection) readJoin(ctx context.Context) (protocol.Join, bool) {
	jctx, cancel := context.WithTimeout(ctx, joinTimeout)
	defer cancel()
	_, data, err := c.conn.Read(jctx)
	if err != nil {
		return protocol.Join{}, false
	}
	env, err := protocol.DecodeEnvelope(data)
	if err != nil || env.T != protocol.MsgJoin {
		c.sendError(ctx, protocol.KindInvalidInput, "expected join")
		return protocol.Join{}, false
	}
	join, err := protocol.DecodePayload[protocol.Join](env)
	if err != nil {
		c.sendError(ctx, protocol.KindInvalidInput, "malformed join")
		return protocol.Join{}, false
	}
	return join, true
}

// resolveRoom finds the active room, creating it on first join. The
// default public name always goes through the idempotent ensure path
// with the configured spec.
func (c *connection) resolveRoom(name string) *room.Room {
	spec := hub.Spec{Name: name, MaxPlayers: c.hub.DefaultSpec().MaxPlayers}
	if name == hub.DefaultRoomName {
		spec = c.hub.DefaultSpec()
	}
	reply := make(chan *room.Room, 1)
	c.hub.Inbox() <- hub.EnsureRoom{Spec: spec, Reply: reply}
	return <-reply
}

func (c *connection) checkAllowlist(roomName, identityKey string) bool {
	reply := make(chan bool, 1)
	c.hub.Inbox() <- hub.CheckAllow{Room: roomName, IdentityKey: identityKey, Reply: reply}
	return <-reply
}

func (c *connection) send(ctx context.Context, t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = c.conn.Write(wctx, websocket.MessageText, b)
}

func (c *connection) sendError(ctx context.Context, kind, message string) {
	c.send(ctx, protocol.MsgError, protocol.ErrorEvent{Kind: kind, Message: message})
}

func validTarget(in protocol.Input) bool {
	for _, v := range []float64{in.TargetX, in.TargetY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return in.TargetX >= 0 && in.TargetX <= game.MapWidth &&
		in.TargetY >= 0 && in.TargetY <= game.MapHeight
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return protocol.KindRoomNotFound
	case errors.Is(err, room.ErrRoomFull):
		return protocol.KindRoomFull
	case errors.Is(err, room.ErrRoomEnded):
		return protocol.KindRoomEnded
	case errors.Is(err, room.ErrInvalidKey):
		return protocol.KindInvalidKey
	case errors.Is(err, room.ErrNameConflict):
		return protocol.KindNameConflict
	case errors.Is(err, room.ErrAuthenticationFailed):
		return protocol.KindAuthenticationFailed
	default:
		return protocol.KindInvalidInput
	}
}
