package game

import "time"

// Player is the authoritative in-room state for one participant.
// Radius doubles as mass: absorption grows it directly, so the
// radius-from-mass mapping is the identity and trivially monotone.
type Player struct {
	ID     string
	Name   string
	Color  string
	Pos    Vec2
	Radius float64
	Alive  bool

	// Per-room transient stats, folded into the final ranking.
	Kills     int
	MaxRadius float64
	JoinedAt  time.Time
	ActiveFor time.Duration
}

func NewPlayer(id, name, color string, spawn Vec2, now time.Time) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Color:     color,
		Pos:       spawn,
		Radius:    StartRadius,
		Alive:     true,
		MaxRadius: StartRadius,
		JoinedAt:  now,
	}
}

// Speed returns units/sec for the player's current size.
func (p *Player) Speed() float64 {
	s := BaseSpeed * StartRadius / p.Radius
	if s < MinSpeed {
		s = MinSpeed
	}
	if s > MaxSpeed {
		s = MaxSpeed
	}
	return s
}

// ApplyMovementIntent moves the player toward target for dt seconds.
// Pure function of (state, target, dt): step distance is capped by the
// distance to the target so the player never oscillates around it, and
// the result is re-clamped to the map.
func (p *Player) ApplyMovementIntent(target Vec2, dt float64) {
	dist := Distance(p.Pos, target)
	if dist == 0 {
		return
	}
	step := p.Speed() * dt
	if step > dist {
		step = dist
	}
	dir := Normalize(Vec2{X: target.X - p.Pos.X, Y: target.Y - p.Pos.Y})
	p.Pos.X += dir.X * step
	p.Pos.Y += dir.Y * step
	p.Pos = ClampToBounds(p.Pos, p.Radius, MapWidth, MapHeight)
}

// AbsorbOrb grows the player by the fixed orb increment, saturating at
// MaxRadius.
func (p *Player) AbsorbOrb() {
	p.grow(OrbMassIncrement)
}

func (p *Player) grow(by float64) {
	p.Radius += by
	if p.Radius > MaxRadius {
		p.Radius = MaxRadius
	}
	if p.Radius > p.MaxRadius {
		p.MaxRadius = p.Radius
	}
}
