package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizeRoomIsIdempotent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.CreateRoom(ctx, RoomMeta{RoomID: "r1", Name: "arena"})
	require.NoError(t, err)

	updated, err := m.FinalizeRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	updated, err = m.FinalizeRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 0, updated, "second finalize must report zero rows")
}

func TestRecordPlayerResultRequiresRoom(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.RecordPlayerResult(ctx, "ghost", Result{PlayerName: "ann"})
	assert.ErrorIs(t, err, ErrRoomRecordNotFound)

	_, err = m.CreateRoom(ctx, RoomMeta{RoomID: "r1", Name: "arena"})
	require.NoError(t, err)
	require.NoError(t, m.RecordPlayerResult(ctx, "r1", Result{PlayerName: "ann", Kills: 2, Rank: 1, Winner: true}))

	got := m.Results("r1")
	require.Len(t, got, 1)
	assert.Equal(t, "ann", got[0].PlayerName)
	assert.True(t, got[0].Winner)
}
