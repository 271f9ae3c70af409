package game

import "math"

// Vec2 is a point or direction in map coordinates.
type Vec2 struct {
	X, Y float64
}

func Distance(a, b Vec2) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Normalize returns the unit vector of v, or the zero vector when v has
// no length (the degenerate case must not produce NaN).
func Normalize(v Vec2) Vec2 {
	mag := math.Hypot(v.X, v.Y)
	if mag == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / mag, Y: v.Y / mag}
}

// ClampToBounds keeps a circle of the given radius fully inside the map.
func ClampToBounds(p Vec2, radius, mapW, mapH float64) Vec2 {
	return Vec2{
		X: math.Min(math.Max(p.X, radius), mapW-radius),
		Y: math.Min(math.Max(p.Y, radius), mapH-radius),
	}
}

// CirclesOverlap reports whether two circles intersect.
func CirclesOverlap(c1 Vec2, r1 float64, c2 Vec2, r2 float64) bool {
	return Distance(c1, c2) < r1+r2
}
