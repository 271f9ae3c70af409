package game

import "math/rand"

var orbColors = []string{
	"#ff5e5b", "#ffd166", "#06d6a0", "#118ab2", "#9b5de5", "#f15bb5",
}

// Orb is a static consumable. Radius is fixed; only position and color
// vary between orbs.
type Orb struct {
	ID    uint64
	Pos   Vec2
	Color string
}

// SpawnOrb places a new orb uniformly at random inside the map.
func SpawnOrb(id uint64, rng *rand.Rand) Orb {
	return Orb{
		ID: id,
		Pos: Vec2{
			X: OrbRadius + rng.Float64()*(MapWidth-2*OrbRadius),
			Y: OrbRadius + rng.Float64()*(MapHeight-2*OrbRadius),
		},
		Color: orbColors[rng.Intn(len(orbColors))],
	}
}

// SpawnPoint picks a spawn position for a new player, kept off the map
// edge by its starting radius.
func SpawnPoint(rng *rand.Rand) Vec2 {
	return Vec2{
		X: StartRadius + rng.Float64()*(MapWidth-2*StartRadius),
		Y: StartRadius + rng.Float64()*(MapHeight-2*StartRadius),
	}
}
