package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEnvelope(t *testing.T) {
	b, err := Encode(MsgInput, Input{TargetX: 120.5, TargetY: -3})
	require.NoError(t, err)

	env, err := DecodeEnvelope(b)
	require.NoError(t, err)
	assert.Equal(t, MsgInput, env.T)

	in, err := DecodePayload[Input](env)
	require.NoError(t, err)
	assert.Equal(t, 120.5, in.TargetX)
	assert.Equal(t, -3.0, in.TargetY)
}

func TestEncodeRejectsEmptyType(t *testing.T) {
	_, err := Encode("", Input{})
	assert.Error(t, err)
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	for _, frame := range [][]byte{nil, {}, []byte("{"), []byte(`{"p":{}}`)} {
		_, err := DecodeEnvelope(frame)
		assert.Error(t, err, "frame %q", frame)
	}
}

func TestStateSnapshotRoundTrip(t *testing.T) {
	snap := State{
		Tick: 42,
		Players: []PlayerSnapshot{
			{ID: "p1", Name: "ann", Color: "#ff5e5b", X: 10.25, Y: 977, Radius: 21.4},
			{ID: "p2", Name: "bob", Color: "#06d6a0", X: 3999, Y: 0.5, Radius: 200},
		},
		Orbs: OrbDeltas{
			Added:   []OrbSnapshot{{ID: 7, X: 1, Y: 2, Color: "#ffd166"}},
			Removed: []uint64{3, 9},
		},
		Leaderboard: []LeaderboardEntry{
			{PlayerID: "p2", Name: "bob", Radius: 200, Kills: 3, Rank: 1},
		},
		You:  &LeaderboardEntry{PlayerID: "p1", Name: "ann", Radius: 21.4, Rank: 14},
		Meta: RoomMeta{Name: "arena", State: "started", ElapsedMs: 31250, Players: 2, Spectators: 1},
	}

	b, err := Encode(MsgState, snap)
	require.NoError(t, err)
	env, err := DecodeEnvelope(b)
	require.NoError(t, err)
	got, err := DecodePayload[State](env)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestLeaveCarriesNoPayload(t *testing.T) {
	b, err := Encode(MsgLeave, nil)
	require.NoError(t, err)
	env, err := DecodeEnvelope(b)
	require.NoError(t, err)
	assert.Equal(t, MsgLeave, env.T)
	assert.Empty(t, env.P)
}
