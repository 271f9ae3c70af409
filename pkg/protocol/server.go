package protocol

// Server → client payloads.

type Joined struct {
	PlayerID  string  `json:"playerId"`
	Spectator bool    `json:"spectator,omitempty"`
	TickHz    int     `json:"tickHz"`
	MapWidth  float64 `json:"mapWidth"`
	MapHeight float64 `json:"mapHeight"`
}

type PlayerSnapshot struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

type OrbSnapshot struct {
	ID    uint64  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
}

// OrbDeltas carries changes since the previous snapshot. Full is set
// instead of Added/Removed on a client's first snapshot after joining.
type OrbDeltas struct {
	Added   []OrbSnapshot `json:"added,omitempty"`
	Removed []uint64      `json:"removed,omitempty"`
	Full    []OrbSnapshot `json:"full,omitempty"`
}

type LeaderboardEntry struct {
	PlayerID string  `json:"playerId"`
	Name     string  `json:"name"`
	Radius   float64 `json:"radius"`
	Kills    int     `json:"kills"`
	Rank     int     `json:"rank"`
}

type RoomMeta struct {
	Name        string `json:"name"`
	State       string `json:"state"`
	ElapsedMs   int64  `json:"elapsedMs"`
	RemainingMs int64  `json:"remainingMs,omitempty"`
	Players     int    `json:"players"`
	Spectators  int    `json:"spectators"`
}

type State struct {
	Tick        int                `json:"tick"`
	Players     []PlayerSnapshot   `json:"players"`
	Orbs        OrbDeltas          `json:"orbs"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	// You is the viewer's own rank when it falls outside the top-N.
	You  *LeaderboardEntry `json:"you,omitempty"`
	Meta RoomMeta          `json:"meta"`
}

type FinalRank struct {
	PlayerID   string  `json:"playerId"`
	Name       string  `json:"name"`
	Rank       int     `json:"rank"`
	Winner     bool    `json:"winner,omitempty"`
	Kills      int     `json:"kills"`
	MaxRadius  float64 `json:"maxRadius"`
	DurationMs int64   `json:"durationMs"`
}

type RoomEnded struct {
	Final []FinalRank `json:"final"`
}

type ErrorEvent struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
