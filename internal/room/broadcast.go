package room

import (
	"sort"

	"go.uber.org/zap"

	"github.com/arenalight/arena-server/internal/game"
	"github.com/arenalight/arena-server/pkg/protocol"
)

const leaderboardTopN = 10

// broadcast ships one snapshot per subscribed connection. The player and
// leaderboard sections are shared; orbs and the viewer's own rank are
// tailored per client. A client whose outbox stays full is dropped, in
// the same breath, rather than allowed to stall the room.
func (r *Room) broadcast() {
	players := make([]protocol.PlayerSnapshot, 0, len(r.state.Players))
	for _, p := range r.state.Players {
		players = append(players, protocol.PlayerSnapshot{
			ID: p.ID, Name: p.Name, Color: p.Color,
			X: p.Pos.X, Y: p.Pos.Y, Radius: p.Radius,
		})
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })

	board := r.leaderboard()
	meta := r.meta()

	added := make([]protocol.OrbSnapshot, 0, len(r.pendingAdded))
	for _, o := range r.pendingAdded {
		added = append(added, orbSnapshot(o))
	}

	var failed []string
	for connID, c := range r.clients {
		snap := protocol.State{
			Tick:        r.state.Tick,
			Players:     players,
			Leaderboard: board,
			Meta:        meta,
		}
		if c.needFull {
			snap.Orbs.Full = r.fullOrbs()
			c.needFull = false
		} else {
			snap.Orbs.Added = added
			snap.Orbs.Removed = r.pendingRemoved
		}
		if c.playerID != "" {
			snap.You = r.viewerRank(c.playerID, board)
		}
		b, err := protocol.Encode(protocol.MsgState, snap)
		if err != nil {
			r.log.Warn("snapshot encode failed", zap.Error(err))
			break
		}
		select {
		case c.outbox <- b:
		default:
			failed = append(failed, connID)
		}
	}
	for _, connID := range failed {
		r.log.Warn("dropping slow client")
		c := r.clients[connID]
		r.dropClient(connID)
		if c.playerID != "" {
			r.startGrace(c.playerID)
		}
	}

	r.pendingAdded = r.pendingAdded[:0]
	r.pendingRemoved = r.pendingRemoved[:0]
}

// sendSnapshotTo pushes one full snapshot to a single client, used right
// after a join so the client can render before the next broadcast tick.
func (r *Room) sendSnapshotTo(c *client) {
	snap := protocol.State{
		Tick:        r.state.Tick,
		Leaderboard: r.leaderboard(),
		Meta:        r.meta(),
	}
	snap.Orbs.Full = r.fullOrbs()
	for _, p := range r.state.Players {
		snap.Players = append(snap.Players, protocol.PlayerSnapshot{
			ID: p.ID, Name: p.Name, Color: p.Color,
			X: p.Pos.X, Y: p.Pos.Y, Radius: p.Radius,
		})
	}
	b, err := protocol.Encode(protocol.MsgState, snap)
	if err != nil {
		return
	}
	select {
	case c.outbox <- b:
		c.needFull = false
	default:
	}
}

func (r *Room) fullOrbs() []protocol.OrbSnapshot {
	out := make([]protocol.OrbSnapshot, 0, len(r.state.Orbs))
	for _, o := range r.state.Orbs {
		out = append(out, orbSnapshot(o))
	}
	return out
}

func orbSnapshot(o game.Orb) protocol.OrbSnapshot {
	return protocol.OrbSnapshot{ID: o.ID, X: o.Pos.X, Y: o.Pos.Y, Color: o.Color}
}

// leaderboard ranks current players by mass, largest first.
func (r *Room) leaderboard() []protocol.LeaderboardEntry {
	all := make([]*game.Player, 0, len(r.state.Players))
	for _, p := range r.state.Players {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Radius != all[j].Radius {
			return all[i].Radius > all[j].Radius
		}
		return all[i].ID < all[j].ID
	})
	n := len(all)
	if n > leaderboardTopN {
		n = leaderboardTopN
	}
	out := make([]protocol.LeaderboardEntry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, protocol.LeaderboardEntry{
			PlayerID: all[i].ID, Name: all[i].Name,
			Radius: all[i].Radius, Kills: all[i].Kills, Rank: i + 1,
		})
	}
	return out
}

// viewerRank returns the viewer's own entry when it fell off the top-N.
func (r *Room) viewerRank(pid string, board []protocol.LeaderboardEntry) *protocol.LeaderboardEntry {
	for i := range board {
		if board[i].PlayerID == pid {
			return nil
		}
	}
	p, ok := r.state.Players[pid]
	if !ok {
		return nil
	}
	rank := 1
	for _, other := range r.state.Players {
		if other.Radius > p.Radius || (other.Radius == p.Radius && other.ID < p.ID) {
			rank++
		}
	}
	return &protocol.LeaderboardEntry{
		PlayerID: p.ID, Name: p.Name, Radius: p.Radius, Kills: p.Kills, Rank: rank,
	}
}

func (r *Room) meta() protocol.RoomMeta {
	meta := protocol.RoomMeta{
		Name:       r.opts.Name,
		State:      string(r.phase),
		ElapsedMs:  r.elapsed.Milliseconds(),
		Players:    len(r.state.Players),
		Spectators: r.spectatorCount(),
	}
	if r.opts.Duration > 0 {
		remaining := r.opts.Duration - r.elapsed
		if remaining < 0 {
			remaining = 0
		}
		meta.RemainingMs = remaining.Milliseconds()
	}
	return meta
}
