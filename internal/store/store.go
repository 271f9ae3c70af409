// Package store is the persistence collaborator: room records and final
// player results land here once, at room end. The simulation never waits
// on it mid-tick.
package store

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type RoomRecord struct {
	gorm.Model
	RoomID      string `gorm:"uniqueIndex;not null"`
	Name        string `gorm:"not null"`
	Private     bool
	MaxPlayers  int
	DurationMin int
	Finalized   bool           `gorm:"index;default:false"`
	Results     []PlayerResult `gorm:"foreignKey:RoomRecordID"`
}

type PlayerResult struct {
	gorm.Model
	RoomRecordID uint   `gorm:"index"`
	RoomID       string `gorm:"index;not null"`
	PlayerName   string
	UserID       string
	GuestID      string
	Kills        int
	MaxMass      float64
	DurationMs   int64
	Rank         int
	Winner       bool
}

type RoomMeta struct {
	RoomID      string
	Name        string
	Private     bool
	MaxPlayers  int
	DurationMin int
}

type Result struct {
	PlayerName string
	UserID     string
	GuestID    string
	Kills      int
	MaxMass    float64
	DurationMs int64
	Rank       int
	Winner     bool
	EndedAt    time.Time
}

// Recorder is the interface the room engine depends on.
// FinalizeRoom is idempotent: the second call for a room reports zero
// updated rows.
type Recorder interface {
	CreateRoom(ctx context.Context, meta RoomMeta) (RoomRecord, error)
	RecordPlayerResult(ctx context.Context, roomID string, res Result) error
	FinalizeRoom(ctx context.Context, roomID string) (updated int, err error)
}
