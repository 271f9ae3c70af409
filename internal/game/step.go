package game

import (
	"math/rand"
	"slices"
)

// State is the authoritative simulation state for one room. It is owned
// by a single goroutine; nothing here is safe for concurrent use.
type State struct {
	Tick    int
	Players map[string]*Player
	Orbs    map[uint64]Orb

	nextOrbID uint64
	rng       *rand.Rand
}

func NewState(rng *rand.Rand) *State {
	return &State{
		Players: make(map[string]*Player),
		Orbs:    make(map[uint64]Orb),
		rng:     rng,
	}
}

func (s *State) Rng() *rand.Rand { return s.rng }

// Elimination records one player absorbing another during a tick.
type Elimination struct {
	KillerID string
	VictimID string
}

// TickResult is what one Step changed, in the shape the broadcast layer
// consumes for delta snapshots.
type TickResult struct {
	AddedOrbs   []Orb
	RemovedOrbs []uint64
	Eliminated  []Elimination
}

// Step advances the simulation by dt seconds: movement from the
// last-write-wins input map, orb replenishment, orb absorption, then
// player-vs-player absorption. Players are visited in sorted-id order so
// a contested orb always resolves the same way.
func Step(s *State, inputs map[string]Vec2, dt float64) TickResult {
	s.Tick++
	var res TickResult

	ids := make([]string, 0, len(s.Players))
	for id, p := range s.Players {
		if p.Alive {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	for _, id := range ids {
		if target, ok := inputs[id]; ok {
			s.Players[id].ApplyMovementIntent(target, dt)
		}
	}

	res.AddedOrbs = s.replenishOrbs()
	res.RemovedOrbs = s.absorbOrbs(ids)
	res.Eliminated = s.resolveEliminations(ids)
	return res
}

// absorbOrbs eats every orb whose center lies inside a player's circle.
// Deletion happens inline, so an orb feeds at most one player per tick.
func (s *State) absorbOrbs(ids []string) []uint64 {
	var removed []uint64
	for _, id := range ids {
		p := s.Players[id]
		for orbID, orb := range s.Orbs {
			if Distance(p.Pos, orb.Pos) < p.Radius {
				p.AbsorbOrb()
				delete(s.Orbs, orbID)
				removed = append(removed, orbID)
			}
		}
	}
	return removed
}

func (s *State) replenishOrbs() []Orb {
	var added []Orb
	for len(s.Orbs) < OrbTargetCount {
		s.nextOrbID++
		orb := SpawnOrb(s.nextOrbID, s.rng)
		s.Orbs[orb.ID] = orb
		added = append(added, orb)
	}
	return added
}

// resolveEliminations lets a sufficiently larger player absorb a smaller
// one it deeply overlaps. Pair order follows the sorted id slice, so ties
// within a tick resolve deterministically.
func (s *State) resolveEliminations(ids []string) []Elimination {
	var out []Elimination
	for _, aID := range ids {
		a := s.Players[aID]
		if a == nil || !a.Alive {
			continue
		}
		for _, bID := range ids {
			if aID == bID {
				continue
			}
			b := s.Players[bID]
			if b == nil || !b.Alive {
				continue
			}
			if a.Radius < b.Radius+EatSizeAdvantage {
				continue
			}
			overlap := a.Radius + b.Radius - Distance(a.Pos, b.Pos)
			if overlap <= EatOverlapFrac*b.Radius {
				continue
			}
			a.grow(b.Radius * EatMassFraction)
			a.Kills++
			b.Alive = false
			out = append(out, Elimination{KillerID: aID, VictimID: bID})
		}
	}
	return out
}
