// Package hub is the process-wide registry: active room names, their
// actors, and the private-room allowlist. A single goroutine owns every
// map, so check-and-create on a room name cannot race.
package hub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arenalight/arena-server/internal/room"
	"github.com/arenalight/arena-server/internal/store"
	"github.com/google/uuid"
)

// DefaultRoomName is the reserved public arena; joining it always
// resolves to the same room via the idempotent ensure path.
const DefaultRoomName = "public"

const DefaultAllowlistTTL = 60 * time.Second

type HubMsg interface{ isHubMsg() }

// Spec is what a caller decides about a new room; the hub supplies the
// rest of room.Options from its own configuration.
type Spec struct {
	Name          string
	MaxPlayers    int
	MaxSpectators int
	Duration      time.Duration
	Private       bool
	KeyHash       string
	HostKey       string
	MinPlayers    int
}

type CreateRoom struct {
	Spec  Spec
	Reply chan CreateReply
}

type CreateReply struct {
	Room *room.Room
	Err  error
}

type GetRoom struct {
	Name  string
	Reply chan *room.Room
}

// EnsureRoom returns the existing active room or creates it; the lookup
// and insert happen in one hub-loop step.
type EnsureRoom struct {
	Spec  Spec
	Reply chan *room.Room
}

type RemoveRoom struct {
	Name string
}

type RoomInfo struct {
	Name       string `json:"name"`
	Players    int    `json:"players"`
	Spectators int    `json:"spectators"`
}

type ListRooms struct {
	Reply chan []RoomInfo
}

// Allow grants an identity keyless entry to a private room until the TTL
// fires. Use does not consume or extend the entry.
type Allow struct {
	Room        string
	IdentityKey string
}

type CheckAllow struct {
	Room        string
	IdentityKey string
	Reply       chan bool
}

type ShutdownHub struct{}

type population struct {
	room       string
	players    int
	spectators int
}

type allowExpired struct {
	key   string
	timer *time.Timer
}

func (CreateRoom) isHubMsg()   {}
func (GetRoom) isHubMsg()      {}
func (EnsureRoom) isHubMsg()   {}
func (RemoveRoom) isHubMsg()   {}
func (ListRooms) isHubMsg()    {}
func (Allow) isHubMsg()        {}
func (CheckAllow) isHubMsg()   {}
func (ShutdownHub) isHubMsg()  {}
func (population) isHubMsg()   {}
func (allowExpired) isHubMsg() {}

// Config carries the room-independent collaborators every room shares.
type Config struct {
	Logger       *zap.Logger
	Store        store.Recorder
	TickInterval time.Duration
	GracePeriod  time.Duration
	AllowlistTTL time.Duration
	DefaultSpec  Spec
}

type Hub struct {
	inbox chan HubMsg
	cfg   Config
	log   *zap.Logger

	rooms       map[string]*room.Room
	populations map[string]population
	allowlist   map[string]*time.Timer

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, cfg Config) *Hub {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.AllowlistTTL <= 0 {
		cfg.AllowlistTTL = DefaultAllowlistTTL
	}
	if cfg.DefaultSpec.Name == "" {
		cfg.DefaultSpec = Spec{Name: DefaultRoomName, MaxPlayers: 16}
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:       make(chan HubMsg, 64),
		cfg:         cfg,
		log:         cfg.Logger.Named("hub"),
		rooms:       make(map[string]*room.Room),
		populations: make(map[string]population),
		allowlist:   make(map[string]*time.Timer),
		ctx:         ctx,
		cancel:      cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// DefaultSpec exposes the configured default-room spec for the ensure
// path used by joins to the reserved public name.
func (h *Hub) DefaultSpec() Spec { return h.cfg.DefaultSpec }

// PopulationChanged implements room.Notifier: rooms push their counts
// here so the registry can answer listings without touching room state.
// Best effort; never blocks the caller.
func (h *Hub) PopulationChanged(name string, players, spectators int) {
	select {
	case h.inbox <- population{room: name, players: players, spectators: spectators}:
	default:
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				if _, exists := h.rooms[msg.Spec.Name]; exists {
					msg.Reply <- CreateReply{Err: room.ErrNameConflict}
					break
				}
				msg.Reply <- CreateReply{Room: h.spawn(msg.Spec)}

			case GetRoom:
				msg.Reply <- h.rooms[msg.Name] // may be nil

			case EnsureRoom:
				if rm := h.rooms[msg.Spec.Name]; rm != nil {
					msg.Reply <- rm
					break
				}
				msg.Reply <- h.spawn(msg.Spec)

			case RemoveRoom:
				if rm, ok := h.rooms[msg.Name]; ok {
					delete(h.rooms, msg.Name)
					delete(h.populations, msg.Name)
					rm.Inbox() <- room.Shutdown{}
				}

			case ListRooms:
				out := make([]RoomInfo, 0, len(h.rooms))
				for name := range h.rooms {
					pop := h.populations[name]
					out = append(out, RoomInfo{
						Name:       name,
						Players:    pop.players,
						Spectators: pop.spectators,
					})
				}
				msg.Reply <- out

			case Allow:
				h.allow(msg.Room, msg.IdentityKey)

			case CheckAllow:
				_, ok := h.allowlist[allowKey(msg.Room, msg.IdentityKey)]
				msg.Reply <- ok

			case allowExpired:
				if cur, ok := h.allowlist[msg.key]; ok && cur == msg.timer {
					delete(h.allowlist, msg.key)
				}

			case population:
				h.populations[msg.room] = msg

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) spawn(spec Spec) *room.Room {
	roomID := uuid.NewString()
	opts := room.Options{
		Name:              spec.Name,
		RoomID:            roomID,
		MaxPlayers:        spec.MaxPlayers,
		MaxSpectators:     spec.MaxSpectators,
		Duration:          spec.Duration,
		Private:           spec.Private,
		KeyHash:           spec.KeyHash,
		HostKey:           spec.HostKey,
		MinPlayersToStart: spec.MinPlayers,
		TickInterval:      h.cfg.TickInterval,
		GracePeriod:       h.cfg.GracePeriod,
		Logger:            h.cfg.Logger,
		Store:             h.cfg.Store,
		Notifier:          h,
		OnEnded: func(name string) {
			select {
			case h.inbox <- RemoveRoom{Name: name}:
			case <-h.ctx.Done():
			}
		},
	}
	rm := room.New(h.ctx, opts)
	h.rooms[spec.Name] = rm
	h.log.Info("room created", zap.String("room", spec.Name), zap.Bool("private", spec.Private))

	if h.cfg.Store != nil {
		meta := store.RoomMeta{
			RoomID:      roomID,
			Name:        spec.Name,
			Private:     spec.Private,
			MaxPlayers:  spec.MaxPlayers,
			DurationMin: int(spec.Duration.Minutes()),
		}
		st, log := h.cfg.Store, h.log
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := st.CreateRoom(ctx, meta); err != nil {
				log.Error("room record create failed", zap.String("room", meta.Name), zap.Error(err))
			}
		}()
	}
	return rm
}

func (h *Hub) allow(roomName, identityKey string) {
	key := allowKey(roomName, identityKey)
	if old, ok := h.allowlist[key]; ok {
		old.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(h.cfg.AllowlistTTL, func() {
		select {
		case h.inbox <- allowExpired{key: key, timer: timer}:
		case <-h.ctx.Done():
		}
	})
	h.allowlist[key] = timer
}

func (h *Hub) shutdown() {
	for name, rm := range h.rooms {
		rm.Inbox() <- room.Shutdown{}
		delete(h.rooms, name)
	}
	for key, timer := range h.allowlist {
		timer.Stop()
		delete(h.allowlist, key)
	}
	h.cancel()
}

func allowKey(roomName, identityKey string) string {
	return roomName + "\x00" + identityKey
}
