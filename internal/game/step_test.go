package game

import (
	"math/rand"
	"testing"
	"time"
)

func newTestState() *State {
	return NewState(rand.New(rand.NewSource(1)))
}

func TestStepAdvancesTickAndMovesPlayer(t *testing.T) {
	s := newTestState()
	s.Players["p1"] = NewPlayer("p1", "ann", "#fff", Vec2{X: 100, Y: 100}, time.Now())

	Step(s, map[string]Vec2{"p1": {X: 2000, Y: 100}}, 0.025)
	if s.Tick != 1 {
		t.Fatalf("tick = %d, want 1", s.Tick)
	}
	if s.Players["p1"].Pos.X <= 100 {
		t.Fatalf("expected x to increase, got %f", s.Players["p1"].Pos.X)
	}
}

func TestStepReplenishesOrbsToTarget(t *testing.T) {
	s := newTestState()
	res := Step(s, nil, 0.025)
	if len(s.Orbs) != OrbTargetCount {
		t.Fatalf("orb count = %d, want %d", len(s.Orbs), OrbTargetCount)
	}
	if len(res.AddedOrbs) != OrbTargetCount {
		t.Fatalf("added orbs = %d, want %d", len(res.AddedOrbs), OrbTargetCount)
	}

	// Second tick with no consumption adds nothing.
	res = Step(s, nil, 0.025)
	if len(res.AddedOrbs) != 0 {
		t.Fatalf("expected no replenishment on a full field, got %d", len(res.AddedOrbs))
	}
	if len(s.Orbs) > OrbTargetCount {
		t.Fatalf("orb count %d exceeds target %d", len(s.Orbs), OrbTargetCount)
	}
}

func TestOrbConsumedAtMostOncePerTick(t *testing.T) {
	s := newTestState()
	s.Players["a"] = NewPlayer("a", "a", "#fff", Vec2{X: 500, Y: 500}, time.Now())
	s.Players["b"] = NewPlayer("b", "b", "#fff", Vec2{X: 500, Y: 500}, time.Now())

	// One orb directly under both players.
	s.Orbs[999] = Orb{ID: 999, Pos: Vec2{X: 500, Y: 500}}

	removed := s.absorbOrbs([]string{"a", "b"})
	if len(removed) != 1 || removed[0] != 999 {
		t.Fatalf("removed = %v, want exactly [999]", removed)
	}
	// Sorted-id order: "a" wins the contested orb; "b" gets nothing.
	wantA := StartRadius + OrbMassIncrement
	if s.Players["a"].Radius != wantA {
		t.Fatalf("player a radius = %f, want %f", s.Players["a"].Radius, wantA)
	}
	if s.Players["b"].Radius != StartRadius {
		t.Fatalf("player b radius = %f, want untouched %f", s.Players["b"].Radius, StartRadius)
	}
}

func TestLargerPlayerAbsorbsSmallerOnDeepOverlap(t *testing.T) {
	s := newTestState()
	big := NewPlayer("big", "big", "#fff", Vec2{X: 500, Y: 500}, time.Now())
	big.Radius = 60
	small := NewPlayer("sml", "sml", "#fff", Vec2{X: 505, Y: 500}, time.Now())
	s.Players["big"] = big
	s.Players["sml"] = small

	res := Step(s, nil, 0.025)
	if len(res.Eliminated) != 1 {
		t.Fatalf("eliminations = %d, want 1", len(res.Eliminated))
	}
	e := res.Eliminated[0]
	if e.KillerID != "big" || e.VictimID != "sml" {
		t.Fatalf("unexpected elimination %+v", e)
	}
	if small.Alive {
		t.Fatalf("victim still alive")
	}
	if big.Kills != 1 {
		t.Fatalf("killer kills = %d, want 1", big.Kills)
	}
	if big.Radius <= 60 {
		t.Fatalf("killer did not gain mass: radius %f", big.Radius)
	}
}

func TestSimilarSizesDoNotEliminate(t *testing.T) {
	s := newTestState()
	a := NewPlayer("a", "a", "#fff", Vec2{X: 500, Y: 500}, time.Now())
	b := NewPlayer("b", "b", "#fff", Vec2{X: 502, Y: 500}, time.Now())
	a.Radius = 30
	b.Radius = 28 // inside EatSizeAdvantage
	s.Players["a"] = a
	s.Players["b"] = b

	res := Step(s, nil, 0.025)
	if len(res.Eliminated) != 0 {
		t.Fatalf("expected no elimination between near-equal players, got %+v", res.Eliminated)
	}
}
