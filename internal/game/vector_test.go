package game

import (
	"math"
	"testing"
)

func TestNormalizeZeroVectorHasNoNaN(t *testing.T) {
	v := Normalize(Vec2{})
	if math.IsNaN(v.X) || math.IsNaN(v.Y) {
		t.Fatalf("normalize of zero vector produced NaN: %+v", v)
	}
	if v.X != 0 || v.Y != 0 {
		t.Fatalf("normalize of zero vector = %+v, want zero", v)
	}
}

func TestNormalizeUnitLength(t *testing.T) {
	v := Normalize(Vec2{X: 3, Y: 4})
	mag := math.Hypot(v.X, v.Y)
	if math.Abs(mag-1) > 1e-9 {
		t.Fatalf("normalized magnitude = %f, want 1", mag)
	}
}

func TestClampToBoundsKeepsCircleInside(t *testing.T) {
	cases := []struct {
		name string
		in   Vec2
		want Vec2
	}{
		{"inside untouched", Vec2{X: 500, Y: 500}, Vec2{X: 500, Y: 500}},
		{"past left edge", Vec2{X: -50, Y: 500}, Vec2{X: 25, Y: 500}},
		{"past bottom right", Vec2{X: 5000, Y: 5000}, Vec2{X: 975, Y: 975}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClampToBounds(tc.in, 25, 1000, 1000)
			if got != tc.want {
				t.Fatalf("clamp(%+v) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestCirclesOverlap(t *testing.T) {
	if !CirclesOverlap(Vec2{X: 0, Y: 0}, 10, Vec2{X: 15, Y: 0}, 10) {
		t.Fatalf("expected overlap at distance 15 with radii 10+10")
	}
	if CirclesOverlap(Vec2{X: 0, Y: 0}, 10, Vec2{X: 20, Y: 0}, 10) {
		t.Fatalf("touching circles (distance == r1+r2) must not count as overlap")
	}
}
