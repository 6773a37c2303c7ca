package switchmode

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

func (f *fakeSender) count(sid types.SessionIdType, frameType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, frame := range f.frames[sid] {
		if frame["type"] == frameType {
			n++
		}
	}
	return n
}

func testConfig() *config.SwitchConfig {
	cfg := config.DefaultGame().Switch
	cfg.MinPlayers = 1
	cfg.CountdownSeconds = 0
	cfg.Rounds = 2
	cfg.RoundSeconds = 1
	return &cfg
}

func newTestManager(t *testing.T, cfg *config.SwitchConfig) (*Manager, *fakeSender) {
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

// startedMatch stands up a playing room and stops its clock so tests drive
// ticks by hand.
func startedMatch(t *testing.T, m *Manager, sender *fakeSender, extras ...types.SessionIdType) (*Room, types.SessionIdType) {
	t.Helper()
	host := types.SessionIdType("player_1_host")
	m.CreateRoom(host, "Host", "Test Room", false)
	created := sender.last(host, "ms_room_created")
	require.NotNil(t, created)
	code := types.RoomCodeType(created["roomCode"].(string))

	for _, sid := range extras {
		m.JoinRoom(sid, code, string(sid))
		m.SetReady(sid, true)
	}
	m.StartGame(host)

	r := m.room(code)
	require.NotNil(t, r)
	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.Status == types.StatusPlaying
	}, time.Second, 5*time.Millisecond)

	r.mu.Lock()
	loop := r.loop
	r.loop = nil
	r.mu.Unlock()
	if loop != nil {
		loop.Stop()
	}
	return r, host
}

// advanceRound runs one full round's worth of ticks.
func advanceRound(m *Manager, r *Room) {
	ticks := m.cfg.RoundSeconds * tickRateHz
	r.mu.Lock()
	for i := 0; i < ticks; i++ {
		m.runTick(r)
	}
	r.mu.Unlock()
}

func TestCreateJoinAndStart(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	guest := types.SessionIdType("player_2_guest")
	r, host := startedMatch(t, m, sender, guest)

	started := sender.last(guest, "game_started")
	require.NotNil(t, started)
	r.mu.Lock()
	assert.Equal(t, float64(r.Seed), started["seed"])
	assert.Equal(t, 1, r.Round)
	r.mu.Unlock()

	roundStart := sender.last(host, "ms_round_start")
	require.NotNil(t, roundStart)
	assert.Equal(t, float64(1), roundStart["round"])
	assert.Equal(t, float64(m.cfg.RoundSeconds), roundStart["seconds"])
}

func TestStartGameHostOnly(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	host := types.SessionIdType("player_1_host")
	guest := types.SessionIdType("player_2_guest")
	m.CreateRoom(host, "Host", "Room", false)
	created := sender.last(host, "ms_room_created")
	code := types.RoomCodeType(created["roomCode"].(string))
	m.JoinRoom(guest, code, "Guest")

	m.StartGame(guest)
	errFrame := sender.last(guest, "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "NOT_HOST", errFrame["code"])
}

func TestScoreAccumulatesAndBroadcasts(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	guest := types.SessionIdType("player_2_guest")
	r, host := startedMatch(t, m, sender, guest)

	m.AddScore(guest, 30)
	m.AddScore(guest, 20)

	update := sender.last(host, "ms_score_update")
	require.NotNil(t, update)
	assert.Equal(t, string(guest), update["sessionId"])
	assert.Equal(t, float64(50), update["score"])
	assert.Equal(t, float64(50), update["total"])

	r.mu.Lock()
	assert.Equal(t, 50, r.Players[guest].RoundScore)
	assert.Equal(t, 50, r.Players[guest].Score)
	r.mu.Unlock()
}

func TestNegativeScoreIgnored(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	r, host := startedMatch(t, m, sender)

	m.AddScore(host, -10)
	assert.Equal(t, 0, sender.count(host, "ms_score_update"))
	r.mu.Lock()
	assert.Equal(t, 0, r.Players[host].Score)
	r.mu.Unlock()
}

func TestRoundEndResetsRoundScore(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	guest := types.SessionIdType("player_2_guest")
	r, host := startedMatch(t, m, sender, guest)

	m.AddScore(host, 100)
	m.AddScore(guest, 40)
	advanceRound(m, r)

	end := sender.last(guest, "ms_round_end")
	require.NotNil(t, end)
	assert.Equal(t, float64(1), end["round"])
	scores := end["scores"].(map[string]any)
	assert.Equal(t, float64(100), scores[string(host)])
	assert.Equal(t, float64(40), scores[string(guest)])

	r.mu.Lock()
	assert.Equal(t, 2, r.Round)
	assert.Equal(t, 0, r.Players[host].RoundScore)
	assert.Equal(t, 100, r.Players[host].Score)
	r.mu.Unlock()

	next := sender.last(host, "ms_round_start")
	require.NotNil(t, next)
	assert.Equal(t, float64(2), next["round"])
}

func TestGameOverAfterFinalRound(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	guest := types.SessionIdType("player_2_guest")
	r, host := startedMatch(t, m, sender, guest)

	m.AddScore(host, 100)
	m.AddScore(guest, 40)
	advanceRound(m, r)

	m.AddScore(guest, 200)
	advanceRound(m, r)

	over := sender.last(host, "ms_game_over")
	require.NotNil(t, over)
	assert.Equal(t, string(guest), over["winner"])
	totals := over["totals"].(map[string]any)
	assert.Equal(t, float64(100), totals[string(host)])
	assert.Equal(t, float64(240), totals[string(guest)])

	r.mu.Lock()
	assert.Equal(t, types.StatusFinished, r.Status)
	r.mu.Unlock()
}

func TestScoreIgnoredBetweenGames(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	r, host := startedMatch(t, m, sender)

	advanceRound(m, r)
	advanceRound(m, r)
	r.mu.Lock()
	require.Equal(t, types.StatusFinished, r.Status)
	r.mu.Unlock()

	before := sender.count(host, "ms_score_update")
	m.AddScore(host, 50)
	assert.Equal(t, before, sender.count(host, "ms_score_update"))
}

func TestRematchResetsRoster(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	guest := types.SessionIdType("player_2_guest")
	r, host := startedMatch(t, m, sender, guest)

	m.AddScore(host, 100)
	advanceRound(m, r)
	advanceRound(m, r)

	m.Rematch(guest) // guest is not the host
	r.mu.Lock()
	assert.Equal(t, types.StatusFinished, r.Status)
	r.mu.Unlock()

	m.Rematch(host)
	r.mu.Lock()
	assert.Equal(t, types.StatusWaiting, r.Status)
	assert.Equal(t, 0, r.Round)
	assert.Equal(t, 0, r.Players[host].Score)
	assert.False(t, r.Players[guest].Ready)
	r.mu.Unlock()

	state := sender.last(guest, "ms_room_state")
	require.NotNil(t, state)
	assert.Equal(t, "waiting", state["status"])
}

func TestLeaveTransfersHost(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	guest := types.SessionIdType("player_2_guest")
	r, host := startedMatch(t, m, sender, guest)

	m.LeaveRoom(host)

	left := sender.last(guest, "player_left")
	require.NotNil(t, left)
	assert.Equal(t, string(host), left["sessionId"])

	r.mu.Lock()
	assert.Equal(t, guest, r.HostSID)
	r.mu.Unlock()
}

func TestLastLeaveTearsDownRoom(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	_, host := startedMatch(t, m, sender)

	m.LeaveRoom(host)
	assert.Equal(t, 0, m.RoomCount())
}

func TestReconnectRestoresSeat(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	guest := types.SessionIdType("player_2_guest")
	r, _ := startedMatch(t, m, sender, guest)

	m.AddScore(guest, 70)
	m.HandleDisconnect(guest)

	fresh := types.SessionIdType("player_3_fresh")
	require.True(t, m.TransferPlayer(guest, fresh))

	frame := sender.last(fresh, "ms_reconnected")
	require.NotNil(t, frame)
	assert.NotEmpty(t, frame["reconnectToken"])

	r.mu.Lock()
	p := r.Players[fresh]
	require.NotNil(t, p)
	assert.True(t, p.Connected)
	assert.Equal(t, 70, p.Score)
	assert.Nil(t, r.Players[guest])
	r.mu.Unlock()
}

func TestListRoomsShowsPublicWaitingOnly(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	a := types.SessionIdType("player_1_a")
	b := types.SessionIdType("player_2_b")
	m.CreateRoom(a, "A", "Open Room", true)
	m.CreateRoom(b, "B", "Hidden Room", false)

	rooms := m.OpenRooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, "Open Room", rooms[0].Name)
	assert.Equal(t, "A", rooms[0].HostName)
	_ = sender
}

func TestJoinFullRoomLeavesNoBinding(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPlayers = 2
	m, sender := newTestManager(t, cfg)

	host := types.SessionIdType("player_1_host")
	m.CreateRoom(host, "Host", "Test Room", false)
	created := sender.last(host, "ms_room_created")
	require.NotNil(t, created)
	code := types.RoomCodeType(created["roomCode"].(string))

	m.JoinRoom("player_2_b", code, "B")
	require.NotNil(t, sender.last("player_2_b", "ms_joined_room"))

	late := types.SessionIdType("player_3_c")
	m.JoinRoom(late, code, "C")

	errFrame := sender.last(late, "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "ROOM_FULL", errFrame["code"])
	assert.Nil(t, sender.last(late, "ms_joined_room"))

	_, bound := m.index.Lookup(late)
	assert.False(t, bound, "rejected joins leave no session binding")
}
