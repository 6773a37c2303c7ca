package openworld

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/config"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/game"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/reconnect"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/world"
)

type fakeSender struct {
	mu     sync.Mutex
	frames map[types.SessionIdType][]map[string]any
}

func newFakeSender() *fakeSender {
	return &fakeSender{frames: make(map[types.SessionIdType][]map[string]any)}
}

func (f *fakeSender) Send(sid types.SessionIdType, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return f.SendRaw(sid, data)
}

func (f *fakeSender) SendRaw(sid types.SessionIdType, data []byte) bool {
	var frame map[string]any
	if json.Unmarshal(data, &frame) != nil {
		return false
	}
	f.mu.Lock()
	f.frames[sid] = append(f.frames[sid], frame)
	f.mu.Unlock()
	return true
}

func (f *fakeSender) last(sid types.SessionIdType, frameType string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.frames[sid]) - 1; i >= 0; i-- {
		if f.frames[sid][i]["type"] == frameType {
			return f.frames[sid][i]
		}
	}
	return nil
}

func testConfig() *config.OpenWorldConfig {
	cfg := config.DefaultGame().OpenWorld
	return &cfg
}

func newTestManager(t *testing.T) (*Manager, *fakeSender) {
	t.Helper()
	sender := newFakeSender()
	m := NewManager(sender, game.NewIndex(), reconnect.NewBroker(time.Minute), testConfig())
	t.Cleanup(m.Shutdown)
	return m, sender
}

func TestJoinSpawnsAtWorldSpawn(t *testing.T) {
	m, sender := newTestManager(t)
	a := types.SessionIdType("player_1_a")
	b := types.SessionIdType("player_2_b")

	m.Join(a, "A")
	joined := sender.last(a, "mw_joined")
	require.NotNil(t, joined)
	assert.NotEmpty(t, joined["reconnectToken"])

	state := joined["world"].(map[string]any)
	assert.NotNil(t, state["seed"])
	assert.NotNil(t, state["spawn"])

	m.Join(b, "B")
	announce := sender.last(a, "mw_player_joined")
	require.NotNil(t, announce)
	player := announce["player"].(map[string]any)
	assert.Equal(t, "B", player["name"])

	w := m.sharedWorld()
	w.mu.Lock()
	p := w.Players[b]
	assert.Equal(t, float64(w.SpawnX), p.X)
	assert.Equal(t, float64(w.SpawnZ), p.Z)
	w.mu.Unlock()
}

func TestDoubleJoinRejected(t *testing.T) {
	m, sender := newTestManager(t)
	a := types.SessionIdType("player_1_a")
	m.Join(a, "A")
	m.Join(a, "A")

	errFrame := sender.last(a, "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "MW_JOIN_FAILED", errFrame["code"])
}

func TestMoveRelaysWithinViewDistanceOnly(t *testing.T) {
	m, sender := newTestManager(t)
	a := types.SessionIdType("player_1_a")
	near := types.SessionIdType("player_2_near")
	far := types.SessionIdType("player_3_far")
	m.Join(a, "A")
	m.Join(near, "Near")
	m.Join(far, "Far")

	w := m.sharedWorld()
	w.mu.Lock()
	// park the far player well past the view horizon
	w.Players[far].X = float64((m.cfg.ViewChunks + 10) * world.ChunkW)
	w.Players[far].Z = float64((m.cfg.ViewChunks + 10) * world.ChunkD)
	w.mu.Unlock()

	m.handleMove(a, moveMsg{X: 1, Y: 64, Z: 1, Yaw: 45})

	relay := sender.last(near, "mw_player_moved")
	require.NotNil(t, relay)
	assert.Equal(t, float64(45), relay["yaw"])
	assert.Nil(t, sender.last(far, "mw_player_moved"), "out of view")
	assert.Nil(t, sender.last(a, "mw_player_moved"), "mover is excluded")
}

func TestSetAndBreakBlock(t *testing.T) {
	m, sender := newTestManager(t)
	a := types.SessionIdType("player_1_a")
	b := types.SessionIdType("player_2_b")
	m.Join(a, "A")
	m.Join(b, "B")

	w := m.sharedWorld()
	w.mu.Lock()
	x, z := int(w.Players[a].X), int(w.Players[a].Z)
	w.mu.Unlock()

	m.handleSetBlock(a, x, 200, z, world.NumPlanks)

	update := sender.last(b, "mw_block_update")
	require.NotNil(t, update)
	assert.Equal(t, float64(world.NumPlanks), update["blockId"])

	w.mu.Lock()
	assert.Equal(t, world.NumPlanks, w.Voxels.GetBlock(x, 200, z))
	w.mu.Unlock()

	m.handleSetBlock(a, x, 200, z, world.NumAir)
	w.mu.Lock()
	assert.Equal(t, world.NumAir, w.Voxels.GetBlock(x, 200, z))
	w.mu.Unlock()
}

func TestSetBlockRejectsUnknownID(t *testing.T) {
	m, sender := newTestManager(t)
	a := types.SessionIdType("player_1_a")
	m.Join(a, "A")

	m.handleSetBlock(a, 0, 64, 0, 9999)
	errFrame := sender.last(a, "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "INVALID_FORMAT", errFrame["code"])
}

func TestChunkRequestStreamsRuns(t *testing.T) {
	m, sender := newTestManager(t)
	a := types.SessionIdType("player_1_a")
	m.Join(a, "A")

	w := m.sharedWorld()
	w.mu.Lock()
	cx, cz := w.Players[a].chunkPos()
	w.mu.Unlock()

	m.handleChunkRequest(a, cx, cz)

	frame := sender.last(a, "mw_chunk")
	require.NotNil(t, frame)
	assert.Equal(t, float64(cx), frame["cx"])

	total := 0
	for _, run := range frame["runs"].([]any) {
		pair := run.([]any)
		total += int(pair[1].(float64))
	}
	assert.Equal(t, world.ChunkW*world.ChunkH*world.ChunkD, total, "runs cover the whole chunk")
}

func TestChunkRequestOutOfRangeRefused(t *testing.T) {
	m, sender := newTestManager(t)
	a := types.SessionIdType("player_1_a")
	m.Join(a, "A")

	w := m.sharedWorld()
	w.mu.Lock()
	cx, cz := w.Players[a].chunkPos()
	w.mu.Unlock()

	m.handleChunkRequest(a, cx+m.cfg.ViewChunks+1, cz)
	errFrame := sender.last(a, "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "INVALID_FORMAT", errFrame["code"])
}

func TestChatReachesEveryoneRegardlessOfDistance(t *testing.T) {
	m, sender := newTestManager(t)
	a := types.SessionIdType("player_1_a")
	far := types.SessionIdType("player_2_far")
	m.Join(a, "A")
	m.Join(far, "Far")

	w := m.sharedWorld()
	w.mu.Lock()
	w.Players[far].X = float64((m.cfg.ViewChunks + 10) * world.ChunkW)
	w.mu.Unlock()

	m.handleChat(a, "hello")
	frame := sender.last(far, "mw_chat_message")
	require.NotNil(t, frame)
	assert.Equal(t, "hello", frame["text"])
}

func TestLeaveAndReconnect(t *testing.T) {
	m, sender := newTestManager(t)
	a := types.SessionIdType("player_1_a")
	b := types.SessionIdType("player_2_b")
	m.Join(a, "A")
	m.Join(b, "B")

	m.HandleDisconnect(b)
	fresh := types.SessionIdType("player_3_fresh")
	require.True(t, m.TransferPlayer(b, fresh))
	require.NotNil(t, sender.last(fresh, "mw_reconnected"))

	m.Leave(fresh)
	left := sender.last(a, "player_left")
	require.NotNil(t, left)
	assert.Equal(t, string(fresh), left["sessionId"])

	w := m.sharedWorld()
	w.mu.Lock()
	assert.Len(t, w.Players, 1)
	w.mu.Unlock()
}
