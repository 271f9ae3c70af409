package room

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

var playerColors = []string{
	"#e63946", "#f4a261", "#2a9d8f", "#457b9d", "#8338ec", "#ff006e",
	"#fb8500", "#06d6a0", "#118ab2", "#ef476f",
}

func newRng() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func newPlayerID() string {
	return uuid.NewString()
}

func pickColor(rng *rand.Rand) string {
	return playerColors[rng.Intn(len(playerColors))]
}
