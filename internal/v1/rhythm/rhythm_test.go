package rhythm

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/config"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/game"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/lobby"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/persist"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/reconnect"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
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

func testConfig() *config.RhythmConfig {
	cfg := config.DefaultGame().Rhythm
	cfg.MinPlayers = 1
	cfg.CountdownSeconds = 0
	cfg.RankedTimeout = time.Hour // no AI fallback unless a test opts in
	cfg.QueueRetry = 20 * time.Millisecond
	return &cfg
}

func newTestManager(t *testing.T, cfg *config.RhythmConfig) (*Manager, *fakeSender) {
	t.Helper()
	sender := newFakeSender()
	orch := lobby.NewOrchestrator()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = orch.Shutdown(ctx)
	})
	m := NewManager(sender, game.NewIndex(), reconnect.NewBroker(time.Minute), orch, persist.Noop{}, cfg)
	t.Cleanup(m.Shutdown)
	return m, sender
}

func createRoom(t *testing.T, m *Manager, sender *fakeSender, sid types.SessionIdType) types.RoomCodeType {
	t.Helper()
	m.CreateRoom(sid, string(sid), "room", true)
	created := sender.last(sid, "room_created")
	require.NotNil(t, created)
	return types.RoomCodeType(created["roomCode"].(string))
}

func playingRoom(t *testing.T, m *Manager, sender *fakeSender) (*Room, types.SessionIdType, types.SessionIdType) {
	t.Helper()
	host := types.SessionIdType("player_1_host")
	guest := types.SessionIdType("player_2_guest")
	code := createRoom(t, m, sender, host)
	m.JoinRoom(guest, code, "Guest")
	m.SetReady(guest, true)
	m.StartGame(host)

	r := m.room(code)
	require.NotNil(t, r)
	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.Status == types.StatusPlaying
	}, 2*time.Second, 10*time.Millisecond)
	return r, host, guest
}

func TestCreateJoinAndStart(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	r, host, guest := playingRoom(t, m, sender)

	assert.NotNil(t, sender.last(guest, "joined_room"))
	assert.NotNil(t, sender.last(host, "player_joined"))

	started := sender.last(guest, "game_started")
	require.NotNil(t, started)
	r.mu.Lock()
	assert.Equal(t, float64(r.Seed), started["seed"])
	r.mu.Unlock()
}

func TestStartGameHostOnly(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	host := types.SessionIdType("player_1_host")
	guest := types.SessionIdType("player_2_guest")
	code := createRoom(t, m, sender, host)
	m.JoinRoom(guest, code, "Guest")

	m.StartGame(guest)
	errFrame := sender.last(guest, "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "NOT_HOST", errFrame["code"])
}

func TestScoreUpdateRelaysToOthers(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	_, host, guest := playingRoom(t, m, sender)

	m.ScoreUpdate(host, 4200, 17)

	relay := sender.last(guest, "score_updated")
	require.NotNil(t, relay)
	assert.Equal(t, float64(4200), relay["score"])
	assert.Equal(t, float64(17), relay["combo"])
	assert.Nil(t, sender.last(host, "score_updated"), "sender is excluded")
}

func TestGameOverWaitsForEveryFinish(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	r, host, guest := playingRoom(t, m, sender)

	m.GameFinished(host, 9000)
	assert.Nil(t, sender.last(host, "game_over"), "one report is not enough")

	m.GameFinished(guest, 12000)
	over := sender.last(host, "game_over")
	require.NotNil(t, over)
	assert.Equal(t, string(guest), over["winner"])

	standings := over["standings"].([]any)
	require.Len(t, standings, 2)
	first := standings[0].(map[string]any)
	assert.Equal(t, float64(12000), first["score"])

	r.mu.Lock()
	assert.Equal(t, types.StatusFinished, r.Status)
	r.mu.Unlock()
}

func TestLeaveDuringPlayEndsGameWhenRestFinished(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	_, host, guest := playingRoom(t, m, sender)

	m.GameFinished(host, 5000)
	m.LeaveRoom(guest)

	over := sender.last(host, "game_over")
	require.NotNil(t, over)
	assert.Equal(t, string(host), over["winner"])
}

func TestRankedPairMatch(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	a := types.SessionIdType("player_1_a")
	b := types.SessionIdType("player_2_b")

	m.EnqueueRanked(a, "A", 1000)
	assert.NotNil(t, sender.last(a, "ranked_queued"))

	m.EnqueueRanked(b, "B", 1100)

	foundA := sender.last(a, "ranked_match_found")
	foundB := sender.last(b, "ranked_match_found")
	require.NotNil(t, foundA)
	require.NotNil(t, foundB)
	assert.Equal(t, false, foundA["isAI"])
	assert.Equal(t, foundA["gameSeed"], foundB["gameSeed"])
	assert.Equal(t, foundA["roomCode"], foundB["roomCode"])
	assert.NotEmpty(t, foundA["reconnectToken"])

	opponent := foundA["opponent"].(map[string]any)
	assert.Equal(t, "B", opponent["name"])

	// countdown of zero flips straight to playing
	code := types.RoomCodeType(foundA["roomCode"].(string))
	r := m.room(code)
	require.NotNil(t, r)
	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.Status == types.StatusPlaying
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRankedPointRangeKeepsFarApart(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	m.EnqueueRanked("player_1_a", "A", 1000)
	m.EnqueueRanked("player_2_b", "B", 2000)

	assert.Nil(t, sender.last("player_1_a", "ranked_match_found"))
	assert.Equal(t, 2, m.queue.Len())
}

func TestRankedAIFallback(t *testing.T) {
	cfg := testConfig()
	cfg.RankedTimeout = 50 * time.Millisecond
	m, sender := newTestManager(t, cfg)

	q := types.SessionIdType("player_1_q")
	m.EnqueueRanked(q, "Q", 1000)

	require.Eventually(t, func() bool {
		return sender.last(q, "ranked_match_found") != nil
	}, 2*time.Second, 10*time.Millisecond)

	found := sender.last(q, "ranked_match_found")
	assert.Equal(t, true, found["isAI"])
	assert.NotNil(t, found["gameSeed"])
	assert.NotEmpty(t, found["reconnectToken"])

	code := types.RoomCodeType(found["roomCode"].(string))
	r := m.room(code)
	require.NotNil(t, r)
	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.Status == types.StatusPlaying
	}, 2*time.Second, 10*time.Millisecond)
	r.mu.Lock()
	assert.True(t, r.VersusAI)
	r.mu.Unlock()
}

func TestCancelQueue(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	a := types.SessionIdType("player_1_a")

	m.EnqueueRanked(a, "A", 1000)
	m.CancelQueue(a)

	assert.NotNil(t, sender.last(a, "queue_cancelled"))
	assert.Equal(t, 0, m.queue.Len())

	// a later compatible player finds nobody
	m.EnqueueRanked("player_2_b", "B", 1000)
	assert.Nil(t, sender.last("player_2_b", "ranked_match_found"))
}

func TestQueueRejectsSeatedPlayer(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	host := types.SessionIdType("player_1_host")
	createRoom(t, m, sender, host)

	m.EnqueueRanked(host, "Host", 1000)
	errFrame := sender.last(host, "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "JOIN_FAILED", errFrame["code"])
	assert.Equal(t, 0, m.queue.Len())
}

func TestDisconnectDropsRankedTicket(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	a := types.SessionIdType("player_1_a")
	m.EnqueueRanked(a, "A", 1000)
	require.Equal(t, 1, m.queue.Len())

	m.HandleDisconnect(a)
	assert.Equal(t, 0, m.queue.Len())
}

func TestListRoomsShowsPublicWaitingOnly(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	createRoom(t, m, sender, "player_1_a")
	m.CreateRoom("player_2_b", "B", "hidden", false)

	rooms := m.OpenRooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, "room", rooms[0].Name)
}

func TestReconnectRestoresSeat(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	r, host, guest := playingRoom(t, m, sender)

	m.HandleDisconnect(guest)
	fresh := types.SessionIdType("player_3_fresh")
	require.True(t, m.TransferPlayer(guest, fresh))

	reply := sender.last(fresh, "reconnected")
	require.NotNil(t, reply)
	assert.NotEmpty(t, reply["reconnectToken"])

	r.mu.Lock()
	p := r.Players[fresh]
	require.NotNil(t, p)
	assert.True(t, p.Connected)
	assert.Nil(t, r.Players[guest])
	r.mu.Unlock()

	// the fresh session can keep reporting
	m.ScoreUpdate(fresh, 100, 1)
	assert.NotNil(t, sender.last(host, "score_updated"))
}

func TestJoinFullRoomLeavesNoBinding(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPlayers = 2
	m, sender := newTestManager(t, cfg)

	host := types.SessionIdType("player_1_host")
	code := createRoom(t, m, sender, host)
	m.JoinRoom("player_2_guest", code, "Guest")
	require.NotNil(t, sender.last("player_2_guest", "joined_room"))

	late := types.SessionIdType("player_3_late")
	m.JoinRoom(late, code, "Late")

	errFrame := sender.last(late, "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "ROOM_FULL", errFrame["code"])
	assert.Nil(t, sender.last(late, "joined_room"))

	_, bound := m.index.Lookup(late)
	assert.False(t, bound, "rejected joins leave no session binding")
}
