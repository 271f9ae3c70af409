// Package room owns one arena instance end to end: membership, the
// fixed-interval simulation tick, and snapshot broadcast. All room state
// is touched by exactly one goroutine; everything else talks to it
// through the inbox.
package room

import (
	"context"
	"crypto/subtle"
	"time"

	"go.uber.org/zap"

	"github.com/arenalight/arena-server/internal/auth"
	"github.com/arenalight/arena-server/internal/game"
	"github.com/arenalight/arena-server/internal/store"
)

type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhaseStarted Phase = "started"
	PhaseEnded   Phase = "ended"
)

// Notifier receives best-effort population updates for dashboards.
type Notifier interface {
	PopulationChanged(room string, players, spectators int)
}

type Options struct {
	Name          string
	RoomID        string
	MaxPlayers    int
	MaxSpectators int // 0 means unlimited
	Duration      time.Duration
	Private       bool
	KeyHash       string
	HostKey       string // secret handed to the creator, may be empty

	// MinPlayersToStart below 1 is treated as 1: the first player in a
	// waiting room starts it.
	MinPlayersToStart int

	TickInterval time.Duration
	GracePeriod  time.Duration
	Now          func() time.Time

	Logger   *zap.Logger
	Store    store.Recorder
	Notifier Notifier

	// OnEnded runs after finalization completes, so the registry frees
	// the name only once results are durable (or retries exhausted).
	OnEnded func(name string)
}

type client struct {
	outbox    chan []byte
	playerID  string // empty for spectators
	needFull  bool   // full orb set on next snapshot
	spectator bool
}

type Room struct {
	inbox chan Msg
	opts  Options
	log   *zap.Logger

	phase     Phase
	startedAt time.Time
	elapsed   time.Duration

	state  *game.State
	inputs map[string]game.Vec2

	clients     map[string]*client          // connID -> attachment
	byPlayer    map[string]string           // playerID -> connID, "" while in grace
	identities  map[string]string           // identity key -> playerID
	idents      map[string]auth.Identity    // playerID -> identity
	activeSince map[string]time.Time        // playerID -> current active segment start
	graceTimers map[string]*time.Timer      // playerID -> pending removal
	departed    []game.Player               // stats of players gone before the end

	// orb deltas accumulated between broadcasts
	pendingAdded   []game.Orb
	pendingRemoved []uint64

	finalized bool

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, opts Options) *Room {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second / game.TickHz
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = 2 * time.Second
	}
	if opts.MinPlayersToStart < 1 {
		opts.MinPlayersToStart = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		inbox:       make(chan Msg, 256),
		opts:        opts,
		log:         opts.Logger.With(zap.String("room", opts.Name)),
		phase:       PhaseWaiting,
		state:       game.NewState(newRng()),
		inputs:      make(map[string]game.Vec2),
		clients:     make(map[string]*client),
		byPlayer:    make(map[string]string),
		identities:  make(map[string]string),
		idents:      make(map[string]auth.Identity),
		activeSince: make(map[string]time.Time),
		graceTimers: make(map[string]*time.Timer),
		ctx:         ctx,
		cancel:      cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) Name() string { return r.opts.Name }

// CheckAccess validates a private-room key. It runs on the caller's
// goroutine: bcrypt comparison has no place inside the tick loop. The
// allowed flag comes from the registry's allowlist.
func (r *Room) CheckAccess(key string, allowed bool) error {
	if !r.opts.Private || allowed {
		return nil
	}
	if !auth.CheckKey(r.opts.KeyHash, key) {
		return ErrInvalidKey
	}
	return nil
}

// AuthorizeHost checks the creator's secret for host-only actions such
// as starting the match early or inviting players. Like CheckAccess it
// runs on the caller's goroutine against immutable options.
func (r *Room) AuthorizeHost(key string) error {
	if r.opts.HostKey == "" || key == "" {
		return ErrNotHost
	}
	if subtle.ConstantTimeCompare([]byte(r.opts.HostKey), []byte(key)) != 1 {
		return ErrNotHost
	}
	return nil
}

func (r *Room) loop() {
	ticker := time.NewTicker(r.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case <-ticker.C:
			if r.phase == PhaseStarted {
				r.advance(r.opts.TickInterval)
			}

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				msg.Reply <- r.handleJoin(msg)
			case Leave:
				r.handleLeave(msg.ConnID)
			case Disconnect:
				r.handleDisconnect(msg.ConnID)
			case SubmitInput:
				r.handleInput(msg)
			case Start:
				r.start()
			case Terminate:
				r.end("terminated")
			case Advance:
				if r.phase == PhaseStarted {
					r.advance(msg.Dt)
				}
			case graceExpired:
				r.handleGraceExpired(msg)
			case GetView:
				msg.Reply <- r.view()
			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) JoinReply {
	if r.phase == PhaseEnded {
		return JoinReply{Err: ErrRoomEnded}
	}

	if msg.Spectator {
		if r.opts.MaxSpectators > 0 && r.spectatorCount() >= r.opts.MaxSpectators {
			return JoinReply{Err: ErrRoomFull}
		}
		c := &client{outbox: msg.Outbox, needFull: true, spectator: true}
		r.clients[msg.ConnID] = c
		r.sendSnapshotTo(c)
		r.notifyPopulation()
		return JoinReply{}
	}

	idKey := msg.Identity.Key()

	// Reconnect path: same identity, player slot still alive.
	if pid, ok := r.identities[idKey]; ok {
		if _, present := r.state.Players[pid]; present {
			r.cancelGrace(pid)
			if oldConn, attached := r.byPlayer[pid]; attached && oldConn != "" {
				r.dropClient(oldConn)
			}
			c := &client{outbox: msg.Outbox, playerID: pid, needFull: true}
			r.clients[msg.ConnID] = c
			r.byPlayer[pid] = msg.ConnID
			r.activeSince[pid] = r.opts.Now()
			r.sendSnapshotTo(c)
			r.log.Info("player reconnected", zap.String("player", pid))
			return JoinReply{PlayerID: pid}
		}
		delete(r.identities, idKey)
	}

	if len(r.state.Players) >= r.opts.MaxPlayers {
		return JoinReply{Err: ErrRoomFull}
	}

	now := r.opts.Now()
	p := game.NewPlayer(newPlayerID(), msg.Identity.Name, pickColor(r.state.Rng()), game.SpawnPoint(r.state.Rng()), now)
	r.state.Players[p.ID] = p
	r.identities[idKey] = p.ID
	r.idents[p.ID] = msg.Identity
	r.activeSince[p.ID] = now
	c := &client{outbox: msg.Outbox, playerID: p.ID, needFull: true}
	r.clients[msg.ConnID] = c
	r.byPlayer[p.ID] = msg.ConnID
	r.sendSnapshotTo(c)

	r.log.Info("player joined", zap.String("player", p.ID), zap.Int("players", len(r.state.Players)))
	r.notifyPopulation()

	if r.phase == PhaseWaiting && len(r.state.Players) >= r.opts.MinPlayersToStart {
		r.start()
	}
	return JoinReply{PlayerID: p.ID}
}

func (r *Room) handleLeave(connID string) {
	c, ok := r.clients[connID]
	if !ok {
		return
	}
	r.dropClient(connID)
	if c.playerID != "" {
		r.removePlayer(c.playerID)
	}
	r.notifyPopulation()
	r.endIfAbandoned()
}

func (r *Room) handleDisconnect(connID string) {
	c, ok := r.clients[connID]
	if !ok {
		return
	}
	r.dropClient(connID)
	if c.playerID == "" {
		r.notifyPopulation()
		return
	}
	r.startGrace(c.playerID)
	r.log.Info("player disconnected, grace started", zap.String("player", c.playerID))
}

// startGrace detaches a player whose connection is gone: the active
// segment is folded so far, and the removal timer is armed. A reconnect
// within the grace period restores the slot.
func (r *Room) startGrace(pid string) {
	r.byPlayer[pid] = ""
	if start, ok := r.activeSince[pid]; ok {
		if p := r.state.Players[pid]; p != nil {
			p.ActiveFor += r.opts.Now().Sub(start)
		}
		delete(r.activeSince, pid)
	}
	r.scheduleGrace(pid)
}

func (r *Room) handleInput(msg SubmitInput) {
	if r.phase == PhaseEnded {
		// Racing a room-end is expected; swallow silently.
		return
	}
	c, ok := r.clients[msg.ConnID]
	if !ok || c.playerID == "" {
		return
	}
	if p := r.state.Players[c.playerID]; p == nil || !p.Alive {
		return
	}
	r.inputs[c.playerID] = msg.Target
}

func (r *Room) scheduleGrace(pid string) {
	r.cancelGrace(pid)
	var timer *time.Timer
	timer = time.AfterFunc(r.opts.GracePeriod, func() {
		select {
		case r.inbox <- graceExpired{playerID: pid, timer: timer}:
		case <-r.ctx.Done():
		}
	})
	r.graceTimers[pid] = timer
}

func (r *Room) cancelGrace(pid string) {
	if t, ok := r.graceTimers[pid]; ok {
		t.Stop()
		delete(r.graceTimers, pid)
	}
}

func (r *Room) handleGraceExpired(msg graceExpired) {
	current, ok := r.graceTimers[msg.playerID]
	if !ok || current != msg.timer {
		return // reconnect won the race
	}
	delete(r.graceTimers, msg.playerID)
	r.removePlayer(msg.playerID)
	r.notifyPopulation()
	r.endIfAbandoned()
}

// removePlayer finalizes a player's stats and frees the slot.
func (r *Room) removePlayer(pid string) {
	p, ok := r.state.Players[pid]
	if !ok {
		return
	}
	if start, ok := r.activeSince[pid]; ok {
		p.ActiveFor += r.opts.Now().Sub(start)
		delete(r.activeSince, pid)
	}
	r.cancelGrace(pid)
	r.departed = append(r.departed, *p)
	delete(r.state.Players, pid)
	delete(r.inputs, pid)
	delete(r.byPlayer, pid)
	for idKey, mapped := range r.identities {
		if mapped == pid {
			delete(r.identities, idKey)
		}
	}
}

func (r *Room) endIfAbandoned() {
	if r.phase == PhaseStarted && len(r.state.Players) == 0 {
		r.end("empty")
	}
}

func (r *Room) start() {
	if r.phase != PhaseWaiting {
		return
	}
	r.phase = PhaseStarted
	r.startedAt = r.opts.Now()
	r.log.Info("room started", zap.Duration("duration", r.opts.Duration))
}

func (r *Room) advance(dt time.Duration) {
	res := game.Step(r.state, r.inputs, dt.Seconds())
	r.pendingAdded = append(r.pendingAdded, res.AddedOrbs...)
	r.pendingRemoved = append(r.pendingRemoved, res.RemovedOrbs...)

	now := r.opts.Now()
	for _, e := range res.Eliminated {
		r.log.Info("player eliminated",
			zap.String("victim", e.VictimID), zap.String("killer", e.KillerID))
		victim := r.state.Players[e.VictimID]
		if victim == nil {
			continue
		}
		if start, ok := r.activeSince[e.VictimID]; ok {
			victim.ActiveFor += now.Sub(start)
			delete(r.activeSince, e.VictimID)
		}
		r.cancelGrace(e.VictimID)
		r.departed = append(r.departed, *victim)
		delete(r.state.Players, e.VictimID)
		delete(r.inputs, e.VictimID)
		// The connection stays subscribed as a spectator.
		if connID := r.byPlayer[e.VictimID]; connID != "" {
			if c := r.clients[connID]; c != nil {
				c.playerID = ""
				c.spectator = true
			}
		}
		delete(r.byPlayer, e.VictimID)
	}

	r.elapsed += dt
	if r.opts.Duration > 0 && r.elapsed >= r.opts.Duration {
		r.end("duration")
		return
	}

	if r.state.Tick%game.BroadcastEvery == 0 {
		r.broadcast()
	}
}

func (r *Room) shutdown() {
	for connID := range r.clients {
		r.dropClient(connID)
	}
	for pid := range r.graceTimers {
		r.cancelGrace(pid)
	}
	r.cancel()
}

func (r *Room) dropClient(connID string) {
	if c, ok := r.clients[connID]; ok {
		close(c.outbox)
		delete(r.clients, connID)
	}
}

func (r *Room) spectatorCount() int {
	n := 0
	for _, c := range r.clients {
		if c.spectator {
			n++
		}
	}
	return n
}

func (r *Room) notifyPopulation() {
	if r.opts.Notifier == nil {
		return
	}
	players, spectators := len(r.state.Players), r.spectatorCount()
	name := r.opts.Name
	n := r.opts.Notifier
	go n.PopulationChanged(name, players, spectators)
}

func (r *Room) view() View {
	players := make(map[string]game.Player, len(r.state.Players))
	for id, p := range r.state.Players {
		players[id] = *p
	}
	return View{
		Name:       r.opts.Name,
		Phase:      r.phase,
		Players:    len(r.state.Players),
		Spectators: r.spectatorCount(),
		Elapsed:    r.elapsed,
		Finalized:  r.finalized,
		PlayerByID: players,
	}
}
