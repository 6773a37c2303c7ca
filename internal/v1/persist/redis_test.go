package persist

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store, err := NewRedisStore(mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func summary(code string, status types.RoomStatus, updatedAt int64) Summary {
	return Summary{
		Code:       types.RoomCodeType(code),
		Name:       "Room " + code,
		Mode:       types.ModeRhythm,
		HostName:   "Host",
		Status:     status,
		MaxPlayers: 4,
		Players: []SummaryPlayer{
			{ID: "player_1_a", Name: "Host", IsHost: true, JoinedAt: updatedAt},
		},
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func TestSaveAndListOpenRooms(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	require.NoError(t, store.SaveRoom(ctx, summary("AAAAA", types.StatusWaiting, now)))
	require.NoError(t, store.SaveRoom(ctx, summary("BBBBB", types.StatusPlaying, now)))

	rooms, err := store.ListOpenRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1, "only waiting rooms are listed")
	assert.Equal(t, types.RoomCodeType("AAAAA"), rooms[0].Code)
	assert.Equal(t, "Host", rooms[0].HostName)
}

func TestSaveOverwritesExistingDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	require.NoError(t, store.SaveRoom(ctx, summary("AAAAA", types.StatusWaiting, now)))

	updated := summary("AAAAA", types.StatusWaiting, now+1000)
	updated.Name = "Renamed"
	require.NoError(t, store.SaveRoom(ctx, updated))

	rooms, err := store.ListOpenRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Renamed", rooms[0].Name)
}

func TestDeleteRoom(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	require.NoError(t, store.SaveRoom(ctx, summary("AAAAA", types.StatusWaiting, now)))
	require.NoError(t, store.DeleteRoom(ctx, "AAAAA"))

	rooms, err := store.ListOpenRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	// deleting again is harmless
	require.NoError(t, store.DeleteRoom(ctx, "AAAAA"))
}

func TestCleanupStaleSweepsOldDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	stale := now.Add(-48 * time.Hour).UnixMilli()
	fresh := now.UnixMilli()
	require.NoError(t, store.SaveRoom(ctx, summary("OLDAA", types.StatusWaiting, stale)))
	require.NoError(t, store.SaveRoom(ctx, summary("NEWAA", types.StatusWaiting, fresh)))

	removed, err := store.CleanupStale(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	rooms, err := store.ListOpenRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, types.RoomCodeType("NEWAA"), rooms[0].Code)
}

func TestConnectFailureSurfacesError(t *testing.T) {
	_, err := NewRedisStore("127.0.0.1:1", "")
	assert.Error(t, err)
}
