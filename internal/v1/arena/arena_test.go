package arena

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

func testConfig() *config.ArenaConfig {
	cfg := config.DefaultGame().Arena
	cfg.CountdownSeconds = 0
	cfg.KillTarget = 2
	return &cfg
}

func newTestManager(t *testing.T, cfg *config.ArenaConfig) (*Manager, *fakeSender) {
	t.Helper()
	sender := newFakeSender()
	orch := lobby.NewOrchestrator()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = orch.Shutdown(ctx)
	})
	m := NewManager(sender, game.NewIndex(), reconnect.NewBroker(time.Minute), orch, cfg)
	t.Cleanup(m.Shutdown)
	return m, sender
}

func startedMatch(t *testing.T, m *Manager, sender *fakeSender) (*Room, types.SessionIdType, types.SessionIdType) {
	t.Helper()
	a := types.SessionIdType("player_1_a")
	b := types.SessionIdType("player_2_b")
	m.EnqueueFFA(a, "A")
	m.EnqueueFFA(b, "B")

	found := sender.last(a, "fps_match_found")
	require.NotNil(t, found)
	code := types.RoomCodeType(found["roomCode"].(string))

	r := m.room(code)
	require.NotNil(t, r)
	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.Status == types.StatusPlaying
	}, 2*time.Second, 10*time.Millisecond)
	return r, a, b
}

func TestAnyTwoPlayersMatch(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	_, a, b := startedMatch(t, m, sender)

	foundA := sender.last(a, "fps_match_found")
	foundB := sender.last(b, "fps_match_found")
	assert.Equal(t, foundA["gameSeed"], foundB["gameSeed"])
	assert.Equal(t, foundA["roomCode"], foundB["roomCode"])
	assert.NotEmpty(t, foundA["reconnectToken"])
	assert.NotNil(t, sender.last(a, "game_started"))
}

func TestQueueRejectsSeatedPlayer(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	_, a, _ := startedMatch(t, m, sender)

	m.EnqueueFFA(a, "A")
	errFrame := sender.last(a, "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "FPS_JOIN_FAILED", errFrame["code"])
	assert.Equal(t, 0, m.queue.Len())
}

func TestCancelQueue(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	m.EnqueueFFA("player_1_a", "A")
	m.CancelQueue("player_1_a")

	assert.NotNil(t, sender.last("player_1_a", "fps_queue_cancelled"))
	assert.Equal(t, 0, m.queue.Len())
}

func TestPositionRelayAndRespawn(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	r, a, b := startedMatch(t, m, sender)

	m.handlePosition(a, positionMsg{X: 1, Y: 2, Z: 3, Yaw: 90})

	relay := sender.last(b, "fps_position")
	require.NotNil(t, relay)
	assert.Equal(t, float64(3), relay["z"])
	assert.Nil(t, sender.last(a, "fps_position"), "mover is excluded")

	r.mu.Lock()
	p := r.Players[a]
	p.Dead = true
	p.HP = 0
	r.mu.Unlock()

	m.handlePosition(a, positionMsg{X: 5})
	r.mu.Lock()
	assert.False(t, p.Dead, "moving after death respawns")
	assert.Equal(t, maxHP, p.HP)
	r.mu.Unlock()
}

func TestShootRelaySkipsDead(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	r, a, b := startedMatch(t, m, sender)

	m.handleShoot(a, shootMsg{Origin: vec3{X: 1}, Dir: vec3{Z: -1}})
	require.NotNil(t, sender.last(b, "fps_shot"))

	r.mu.Lock()
	r.Players[a].Dead = true
	r.mu.Unlock()
	before := sender.last(b, "fps_shot")
	m.handleShoot(a, shootMsg{})
	assert.Equal(t, before, sender.last(b, "fps_shot"), "dead players do not shoot")
}

func TestHitDamageAndDeath(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	r, a, b := startedMatch(t, m, sender)

	m.handleHit(a, hitMsg{TargetID: string(b), Damage: 40})

	r.mu.Lock()
	assert.Equal(t, 60, r.Players[b].HP)
	r.mu.Unlock()
	relay := sender.last(b, "fps_hit")
	require.NotNil(t, relay)
	assert.Equal(t, float64(60), relay["hp"])

	m.handleHit(a, hitMsg{TargetID: string(b), Damage: 80})

	r.mu.Lock()
	assert.True(t, r.Players[b].Dead)
	assert.Equal(t, 1, r.Players[a].Kills)
	assert.Equal(t, 1, r.Players[b].Deaths)
	r.mu.Unlock()

	died := sender.last(a, "fps_player_died")
	require.NotNil(t, died)
	assert.Equal(t, string(b), died["sessionId"])
	assert.Equal(t, string(a), died["killerId"])
}

func TestKillTargetEndsGame(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	r, a, b := startedMatch(t, m, sender)

	for i := 0; i < testConfig().KillTarget; i++ {
		m.handleHit(a, hitMsg{TargetID: string(b), Damage: maxHP})
		// client-side respawn between kills
		m.handlePosition(b, positionMsg{})
	}

	over := sender.last(a, "fps_game_over")
	require.NotNil(t, over)
	assert.Equal(t, "kill_target", over["reason"])
	assert.Equal(t, string(a), over["winner"])

	board := over["scoreboard"].([]any)
	top := board[0].(map[string]any)
	assert.Equal(t, string(a), top["sessionId"])

	r.mu.Lock()
	assert.Equal(t, types.StatusFinished, r.Status)
	r.mu.Unlock()
}

func TestSelfHitIgnored(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	r, a, _ := startedMatch(t, m, sender)

	m.handleHit(a, hitMsg{TargetID: string(a), Damage: 50})
	r.mu.Lock()
	assert.Equal(t, maxHP, r.Players[a].HP)
	r.mu.Unlock()
	assert.Nil(t, sender.last(a, "fps_hit"))
}

func TestLeaveMidMatchForfeits(t *testing.T) {
	m, sender := newTestManager(t, testConfig())
	r, a, b := startedMatch(t, m, sender)

	m.LeaveRoom(b)

	over := sender.last(a, "fps_game_over")
	require.NotNil(t, over)
	assert.Equal(t, "forfeit", over["reason"])
	assert.Equal(t, string(a), over["winner"])

	r.mu.Lock()
	assert.Equal(t, types.StatusFinished, r.Status)
	r.mu.Unlock()
}

func TestArenaAliasTags(t *testing.T) {
	m, sender := newTestManager(t, testConfig())

	handled := m.Handle(context.Background(), "player_1_a", "arena_queue", []byte(`{"playerName":"A"}`))
	assert.True(t, handled)
	assert.NotNil(t, sender.last("player_1_a", "fps_queued"))

	assert.False(t, m.Handle(context.Background(), "player_1_a", "fps_unknown", []byte(`{}`)))
}
