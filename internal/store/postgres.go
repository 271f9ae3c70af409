package store

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrRoomRecordNotFound = errors.New("room record not found")

// Postgres implements Recorder on gorm.
type Postgres struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&RoomRecord{}, &PlayerResult{}); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) CreateRoom(ctx context.Context, meta RoomMeta) (RoomRecord, error) {
	rec := RoomRecord{
		RoomID:      meta.RoomID,
		Name:        meta.Name,
		Private:     meta.Private,
		MaxPlayers:  meta.MaxPlayers,
		DurationMin: meta.DurationMin,
	}
	if err := p.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return RoomRecord{}, err
	}
	return rec, nil
}

func (p *Postgres) RecordPlayerResult(ctx context.Context, roomID string, res Result) error {
	var rec RoomRecord
	err := p.db.WithContext(ctx).Where("room_id = ?", roomID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRoomRecordNotFound
	}
	if err != nil {
		return err
	}
	row := PlayerResult{
		RoomRecordID: rec.ID,
		RoomID:       roomID,
		PlayerName:   res.PlayerName,
		UserID:       res.UserID,
		GuestID:      res.GuestID,
		Kills:        res.Kills,
		MaxMass:      res.MaxMass,
		DurationMs:   res.DurationMs,
		Rank:         res.Rank,
		Winner:       res.Winner,
	}
	return p.db.WithContext(ctx).Create(&row).Error
}

// FinalizeRoom flips the finalized flag; the guarded update makes a
// repeat call a no-op reporting zero rows.
func (p *Postgres) FinalizeRoom(ctx context.Context, roomID string) (int, error) {
	tx := p.db.WithContext(ctx).
		Model(&RoomRecord{}).
		Where("room_id = ? AND finalized = ?", roomID, false).
		Update("finalized", true)
	return int(tx.RowsAffected), tx.Error
}
