package room

import (
	"time"

	"github.com/arenalight/arena-server/internal/auth"
	"github.com/arenalight/arena-server/internal/game"
)

type Msg interface{ isRoomMsg() }

// Join attaches a connection as a player or spectator. The outbox
// carries encoded server frames; the room drops clients whose outbox
// stays full. Access-key and allowlist checks happen on the connection
// goroutine before this message is sent (see Room.CheckAccess).
type Join struct {
	ConnID    string
	Identity  auth.Identity
	Spectator bool
	Outbox    chan []byte
	Reply     chan JoinReply
}

type JoinReply struct {
	PlayerID string
	Err      error
}

// Leave is an explicit departure: immediate removal, no grace period.
type Leave struct{ ConnID string }

// Disconnect is a transport-level loss: the player slot survives for the
// grace window.
type Disconnect struct{ ConnID string }

// SubmitInput is the latest pointer target for a player, last write wins.
type SubmitInput struct {
	ConnID string
	Target game.Vec2
}

// Start forces the waiting→started transition (host action).
type Start struct{}

// Terminate forces started→ended.
type Terminate struct{}

// Advance drives the simulation by dt. The room's own ticker feeds the
// same path; tests post it directly to run against a controlled clock.
type Advance struct{ Dt time.Duration }

// GetView reflects internal state without data races; test hatch.
type GetView struct{ Reply chan View }

type Shutdown struct{}

// graceExpired is posted by a grace timer when its window runs out. The
// timer pointer lets the handler ignore a stale timer that lost a race
// with reconnect.
type graceExpired struct {
	playerID string
	timer    *time.Timer
}

func (Join) isRoomMsg()         {}
func (Leave) isRoomMsg()        {}
func (Disconnect) isRoomMsg()   {}
func (SubmitInput) isRoomMsg()  {}
func (Start) isRoomMsg()        {}
func (Terminate) isRoomMsg()    {}
func (Advance) isRoomMsg()      {}
func (GetView) isRoomMsg()      {}
func (Shutdown) isRoomMsg()     {}
func (graceExpired) isRoomMsg() {}

// View is a race-free copy of the room's observable state.
type View struct {
	Name       string
	Phase      Phase
	Players    int
	Spectators int
	Elapsed    time.Duration
	Finalized  bool
	PlayerByID map[string]game.Player
}
