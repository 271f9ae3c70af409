package store

import (
	"context"
	"sync"
)

// Memory implements Recorder without a database. It backs tests and
// store-less dev runs.
type Memory struct {
	mu      sync.Mutex
	nextID  uint
	rooms   map[string]*RoomRecord
	results map[string][]Result
}

func NewMemory() *Memory {
	return &Memory{
		rooms:   make(map[string]*RoomRecord),
		results: make(map[string][]Result),
	}
}

func (m *Memory) CreateRoom(ctx context.Context, meta RoomMeta) (RoomRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rec := RoomRecord{
		RoomID:      meta.RoomID,
		Name:        meta.Name,
		Private:     meta.Private,
		MaxPlayers:  meta.MaxPlayers,
		DurationMin: meta.DurationMin,
	}
	rec.ID = m.nextID
	m.rooms[meta.RoomID] = &rec
	return rec, nil
}

func (m *Memory) RecordPlayerResult(ctx context.Context, roomID string, res Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[roomID]; !ok {
		return ErrRoomRecordNotFound
	}
	m.results[roomID] = append(m.results[roomID], res)
	return nil
}

func (m *Memory) FinalizeRoom(ctx context.Context, roomID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.rooms[roomID]
	if !ok || rec.Finalized {
		return 0, nil
	}
	rec.Finalized = true
	return 1, nil
}

// Results returns recorded results for a room; test hatch.
func (m *Memory) Results(roomID string) []Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Result, len(m.results[roomID]))
	copy(out, m.results[roomID])
	return out
}
