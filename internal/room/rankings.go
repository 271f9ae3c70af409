package room

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/arenalight/arena-server/internal/game"
	"github.com/arenalight/arena-server/internal/store"
	"github.com/arenalight/arena-server/pkg/protocol"
)

const (
	persistAttempts = 3
	persistTimeout  = 5 * time.Second
)

// end makes the terminal transition. It runs at most once: rankings are
// computed, roomEnded goes out to every remaining connection, and
// persistence runs off the room goroutine so a stalled store cannot hold
// the inbox hostage. The registry learns about the room only after
// persistence settles, which keeps the name reserved until results are
// durable.
func (r *Room) end(reason string) {
	if r.phase == PhaseEnded {
		return
	}
	r.phase = PhaseEnded
	r.finalized = true

	now := r.opts.Now()
	for pid, p := range r.state.Players {
		if start, ok := r.activeSince[pid]; ok {
			p.ActiveFor += now.Sub(start)
			delete(r.activeSince, pid)
		}
	}
	for pid := range r.graceTimers {
		r.cancelGrace(pid)
	}

	ranked := r.rankAll()
	final := make([]protocol.FinalRank, len(ranked))
	results := make([]store.Result, len(ranked))
	for i, p := range ranked {
		final[i] = protocol.FinalRank{
			PlayerID:   p.ID,
			Name:       p.Name,
			Rank:       i + 1,
			Winner:     i == 0,
			Kills:      p.Kills,
			MaxRadius:  p.MaxRadius,
			DurationMs: p.ActiveFor.Milliseconds(),
		}
		id := r.idents[p.ID]
		results[i] = store.Result{
			PlayerName: p.Name,
			UserID:     id.UserID,
			GuestID:    id.GuestID,
			Kills:      p.Kills,
			MaxMass:    p.MaxRadius,
			DurationMs: p.ActiveFor.Milliseconds(),
			Rank:       i + 1,
			Winner:     i == 0,
			EndedAt:    now,
		}
	}

	r.log.Info("room ended", zap.String("reason", reason), zap.Int("ranked", len(final)))

	if b, err := protocol.Encode(protocol.MsgRoomEnded, protocol.RoomEnded{Final: final}); err == nil {
		for _, c := range r.clients {
			select {
			case c.outbox <- b:
			default:
			}
		}
	}
	for connID := range r.clients {
		r.dropClient(connID)
	}
	r.notifyPopulation()

	go r.persistResults(results)
}

// rankAll merges current and departed players and orders them by kills,
// then peak mass, then time in room.
func (r *Room) rankAll() []game.Player {
	all := make([]game.Player, 0, len(r.state.Players)+len(r.departed))
	for _, p := range r.state.Players {
		all = append(all, *p)
	}
	all = append(all, r.departed...)
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Kills != b.Kills {
			return a.Kills > b.Kills
		}
		if a.MaxRadius != b.MaxRadius {
			return a.MaxRadius > b.MaxRadius
		}
		if a.ActiveFor != b.ActiveFor {
			return a.ActiveFor > b.ActiveFor
		}
		return a.ID < b.ID
	})
	return all
}

// persistResults writes results with bounded retries. Failure is logged
// and dropped: the room stays ended in memory and players already saw
// the final board.
func (r *Room) persistResults(results []store.Result) {
	if r.opts.OnEnded != nil {
		defer r.opts.OnEnded(r.opts.Name)
	}
	if r.opts.Store == nil {
		return
	}
	for _, res := range results {
		if err := r.withRetry(func(ctx context.Context) error {
			return r.opts.Store.RecordPlayerResult(ctx, r.opts.RoomID, res)
		}); err != nil {
			r.log.Error("recording player result failed",
				zap.String("player", res.PlayerName), zap.Error(err))
		}
	}
	var updated int
	if err := r.withRetry(func(ctx context.Context) error {
		var err error
		updated, err = r.opts.Store.FinalizeRoom(ctx, r.opts.RoomID)
		return err
	}); err != nil {
		r.log.Error("room finalization failed", zap.Error(err))
		return
	}
	r.log.Info("room finalized", zap.Int("updated", updated))
}

func (r *Room) withRetry(op func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < persistAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		err = op(ctx)
		cancel()
		if err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
	}
	return err
}
