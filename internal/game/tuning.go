package game

const (
	MapWidth  = 4000.0
	MapHeight = 4000.0

	StartRadius = 20.0
	MaxRadius   = 200.0 // growth cap; absorbing past this is a no-op

	OrbRadius        = 6.0
	OrbMassIncrement = 0.3
	OrbTargetCount   = 250

	// Speed scales inversely with size: BaseSpeed at StartRadius, shrinking
	// as the player grows. The logarithmic falloff variant was considered
	// and rejected; inverse-linear keeps big players noticeably sluggish.
	BaseSpeed = 240.0 // units/sec at StartRadius
	MinSpeed  = 60.0
	MaxSpeed  = 420.0

	// Player-vs-player absorption: attacker must overlap more than
	// EatOverlapFrac of the victim's radius and be at least
	// EatSizeAdvantage units larger.
	EatOverlapFrac   = 0.6
	EatSizeAdvantage = 5.0
	EatMassFraction  = 0.5 // share of victim radius credited to the killer

	TickHz         = 40
	BroadcastEvery = 2 // snapshots at TickHz/BroadcastEvery
)
