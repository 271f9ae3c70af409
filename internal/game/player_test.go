package game

import (
	"math"
	"testing"
	"time"
)

func TestAbsorbOrbGrowsByFixedIncrement(t *testing.T) {
	p := NewPlayer("p1", "ann", "#fff", Vec2{X: 100, Y: 100}, time.Now())
	p.AbsorbOrb()
	if math.Abs(p.Radius-(StartRadius+OrbMassIncrement)) > 1e-9 {
		t.Fatalf("radius after one orb = %f, want %f", p.Radius, StartRadius+OrbMassIncrement)
	}
}

func TestAbsorbOrbSaturatesAtMaxRadius(t *testing.T) {
	p := NewPlayer("p1", "ann", "#fff", Vec2{X: 100, Y: 100}, time.Now())
	p.Radius = MaxRadius - 0.1
	for i := 0; i < 10; i++ {
		p.AbsorbOrb()
	}
	if p.Radius != MaxRadius {
		t.Fatalf("radius = %f, want cap at exactly %f", p.Radius, MaxRadius)
	}
	if p.MaxRadius != MaxRadius {
		t.Fatalf("max radius stat = %f, want %f", p.MaxRadius, MaxRadius)
	}
}

func TestRadiusNeverDecreasesWhileGrowing(t *testing.T) {
	p := NewPlayer("p1", "ann", "#fff", Vec2{X: 100, Y: 100}, time.Now())
	prev := p.Radius
	for i := 0; i < 1000; i++ {
		p.AbsorbOrb()
		if p.Radius < prev {
			t.Fatalf("radius decreased from %f to %f", prev, p.Radius)
		}
		prev = p.Radius
	}
}

func TestSpeedShrinksWithSizeAndStaysClamped(t *testing.T) {
	small := NewPlayer("a", "a", "#fff", Vec2{}, time.Now())
	big := NewPlayer("b", "b", "#fff", Vec2{}, time.Now())
	big.Radius = 150
	if big.Speed() >= small.Speed() {
		t.Fatalf("bigger player should be slower: big=%f small=%f", big.Speed(), small.Speed())
	}
	huge := NewPlayer("c", "c", "#fff", Vec2{}, time.Now())
	huge.Radius = MaxRadius
	if huge.Speed() < MinSpeed {
		t.Fatalf("speed %f below MinSpeed %f", huge.Speed(), MinSpeed)
	}
}

func TestMovementStopsAtTargetAndStaysInBounds(t *testing.T) {
	p := NewPlayer("p1", "ann", "#fff", Vec2{X: 100, Y: 100}, time.Now())
	target := Vec2{X: 101, Y: 100}
	p.ApplyMovementIntent(target, 1.0) // full-speed step would overshoot
	if p.Pos != target {
		t.Fatalf("pos = %+v, want to land exactly on %+v", p.Pos, target)
	}

	// Push toward a corner for a while; the clamp must hold every step.
	corner := Vec2{X: -1000, Y: -1000}
	for i := 0; i < 100; i++ {
		p.ApplyMovementIntent(corner, 0.05)
		if p.Pos.X < p.Radius || p.Pos.Y < p.Radius {
			t.Fatalf("position %+v violates bounds for radius %f", p.Pos, p.Radius)
		}
	}
}

func TestMovementAtZeroDistanceIsNoOp(t *testing.T) {
	p := NewPlayer("p1", "ann", "#fff", Vec2{X: 100, Y: 100}, time.Now())
	p.ApplyMovementIntent(p.Pos, 0.05)
	if math.IsNaN(p.Pos.X) || math.IsNaN(p.Pos.Y) {
		t.Fatalf("zero-distance intent produced NaN position")
	}
	if p.Pos != (Vec2{X: 100, Y: 100}) {
		t.Fatalf("zero-distance intent moved player to %+v", p.Pos)
	}
}
