package dispatch

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/game"
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

type fakeLiveness struct {
	mu    sync.Mutex
	alive []types.SessionIdType
}

func (f *fakeLiveness) MarkAlive(sid types.SessionIdType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive = append(f.alive, sid)
}

type handledFrame struct {
	sid types.SessionIdType
	tag string
}

// fakeManager records routed frames; tags in known are handled, everything
// else is refused.
type fakeManager struct {
	mu            sync.Mutex
	known         map[string]bool
	handled       []handledFrame
	disconnects   []types.SessionIdType
	transferOK    bool
	transfers     [][2]types.SessionIdType
	transferCalls int
}

func (f *fakeManager) Handle(_ context.Context, sid types.SessionIdType, tag string, _ []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.known[tag] {
		return false
	}
	f.handled = append(f.handled, handledFrame{sid: sid, tag: tag})
	return true
}

func (f *fakeManager) HandleDisconnect(sid types.SessionIdType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects = append(f.disconnects, sid)
}

func (f *fakeManager) TransferPlayer(oldSID, newSID types.SessionIdType) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transferCalls++
	if !f.transferOK {
		return false
	}
	f.transfers = append(f.transfers, [2]types.SessionIdType{oldSID, newSID})
	return true
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *fakeSender, *fakeLiveness, *game.Index, *reconnect.Broker) {
	t.Helper()
	sender := newFakeSender()
	liveness := &fakeLiveness{}
	index := game.NewIndex()
	broker := reconnect.NewBroker(time.Minute)
	d := New(index, broker, sender, liveness, nil)
	return d, sender, liveness, index, broker
}

func TestPrefixRouting(t *testing.T) {
	d, sender, _, _, _ := newTestDispatcher(t)
	boardMgr := &fakeManager{known: map[string]bool{"mc_join_room": true}}
	fallback := &fakeManager{known: map[string]bool{"create_room": true}}
	d.Register("mc_", types.ModeBoard, boardMgr)
	d.SetFallback(types.ModeRhythm, fallback)

	d.OnMessage("player_1_a", []byte(`{"type":"mc_join_room","code":"AAAAA"}`))
	d.OnMessage("player_1_a", []byte(`{"type":"create_room","playerName":"A"}`))

	assert.Len(t, boardMgr.handled, 1)
	assert.Equal(t, "mc_join_room", boardMgr.handled[0].tag)
	assert.Len(t, fallback.handled, 1)
	assert.Nil(t, sender.last("player_1_a", "error"))
}

func TestUnknownTagInsidePrefix(t *testing.T) {
	d, sender, _, _, _ := newTestDispatcher(t)
	boardMgr := &fakeManager{known: map[string]bool{}}
	d.Register("mc_", types.ModeBoard, boardMgr)

	d.OnMessage("player_1_a", []byte(`{"type":"mc_bogus"}`))

	errFrame := sender.last("player_1_a", "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "UNKNOWN_TYPE", errFrame["code"])
}

func TestUnknownTagWithoutFallback(t *testing.T) {
	d, sender, _, _, _ := newTestDispatcher(t)

	d.OnMessage("player_1_a", []byte(`{"type":"bogus"}`))

	errFrame := sender.last("player_1_a", "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "UNKNOWN_TYPE", errFrame["code"])
}

func TestMalformedFrames(t *testing.T) {
	d, sender, _, _, _ := newTestDispatcher(t)

	d.OnMessage("player_1_a", []byte(`{not json`))
	errFrame := sender.last("player_1_a", "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "INVALID_JSON", errFrame["code"])

	d.OnMessage("player_1_a", []byte(`{"payload":1}`))
	errFrame = sender.last("player_1_a", "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "INVALID_FORMAT", errFrame["code"])
}

func TestPingPongControlFrames(t *testing.T) {
	d, sender, liveness, _, _ := newTestDispatcher(t)

	d.OnMessage("player_1_a", []byte(`{"type":"ping"}`))
	require.NotNil(t, sender.last("player_1_a", "pong"))

	d.OnMessage("player_1_a", []byte(`{"type":"pong"}`))
	liveness.mu.Lock()
	assert.Contains(t, liveness.alive, types.SessionIdType("player_1_a"))
	liveness.mu.Unlock()
}

func TestOnDisconnectRoutesToSeatingManager(t *testing.T) {
	d, _, _, index, _ := newTestDispatcher(t)
	boardMgr := &fakeManager{known: map[string]bool{}}
	d.Register("mc_", types.ModeBoard, boardMgr)

	require.NoError(t, index.Bind("player_1_a", types.ModeBoard, "AAAAA"))
	d.OnDisconnect("player_1_a", "disconnect")
	assert.Equal(t, []types.SessionIdType{"player_1_a"}, boardMgr.disconnects)

	// unseated sessions reach no manager
	d.OnDisconnect("player_2_b", "disconnect")
	assert.Len(t, boardMgr.disconnects, 1)
}

func TestReconnectRequiresToken(t *testing.T) {
	d, sender, _, _, _ := newTestDispatcher(t)

	d.OnMessage("player_2_b", []byte(`{"type":"reconnect"}`))
	errFrame := sender.last("player_2_b", "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "INVALID_FORMAT", errFrame["code"])
}

func TestReconnectWithBadToken(t *testing.T) {
	d, sender, _, _, _ := newTestDispatcher(t)

	d.OnMessage("player_2_b", []byte(`{"type":"reconnect","token":"reconnect_0_nope"}`))
	errFrame := sender.last("player_2_b", "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "RECONNECT_FAILED", errFrame["code"])
}

func TestReconnectWhenRoomGone(t *testing.T) {
	d, sender, _, _, broker := newTestDispatcher(t)

	token := broker.Issue("player_1_a")
	// no index binding: the room was torn down after the token was issued
	d.OnMessage("player_2_b", []byte(`{"type":"reconnect","token":"`+token+`"}`))

	errFrame := sender.last("player_2_b", "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "ROOM_GONE", errFrame["code"])

	// the token was consumed; retrying fails differently
	d.OnMessage("player_2_b", []byte(`{"type":"reconnect","token":"`+token+`"}`))
	errFrame = sender.last("player_2_b", "error")
	assert.Equal(t, "RECONNECT_FAILED", errFrame["code"])
}

func TestReconnectTransfersSeat(t *testing.T) {
	d, sender, _, index, broker := newTestDispatcher(t)
	boardMgr := &fakeManager{known: map[string]bool{}, transferOK: true}
	d.Register("mc_", types.ModeBoard, boardMgr)

	require.NoError(t, index.Bind("player_1_a", types.ModeBoard, "AAAAA"))
	token := broker.Issue("player_1_a")

	d.OnMessage("player_2_b", []byte(`{"type":"reconnect","token":"`+token+`"}`))

	require.Len(t, boardMgr.transfers, 1)
	assert.Equal(t, [2]types.SessionIdType{"player_1_a", "player_2_b"}, boardMgr.transfers[0])
	assert.Nil(t, sender.last("player_2_b", "error"))
}

func TestReconnectWhenSeatRefused(t *testing.T) {
	d, sender, _, index, broker := newTestDispatcher(t)
	boardMgr := &fakeManager{known: map[string]bool{}, transferOK: false}
	d.Register("mc_", types.ModeBoard, boardMgr)

	require.NoError(t, index.Bind("player_1_a", types.ModeBoard, "AAAAA"))
	token := broker.Issue("player_1_a")

	d.OnMessage("player_2_b", []byte(`{"type":"reconnect","token":"`+token+`"}`))

	assert.Equal(t, 1, boardMgr.transferCalls)
	errFrame := sender.last("player_2_b", "error")
	require.NotNil(t, errFrame)
	assert.Equal(t, "RECONNECT_FAILED", errFrame["code"])
}
