package arena

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/config"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/game"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/lobby"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/logging"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/metrics"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/prng"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/protocol"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/reconnect"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

const modeLabel = "arena"

func marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Manager owns every arena room and the FFA queue.
type Manager struct {
	mu    sync.RWMutex
	rooms map[types.RoomCodeType]*Room

	sender types.Sender
	index  *game.Index
	broker *reconnect.Broker
	lobby  *lobby.Orchestrator
	cfg    *config.ArenaConfig

	queue *lobby.Queue

	seedMu  sync.Mutex
	seedSrc *prng.Source
}

// NewManager wires an arena manager and starts its FFA queue. Any two queued
// players match; there is no rating and no AI fallback.
func NewManager(sender types.Sender, index *game.Index, broker *reconnect.Broker, orch *lobby.Orchestrator, cfg *config.ArenaConfig) *Manager {
	m := &Manager{
		rooms:   make(map[types.RoomCodeType]*Room),
		sender:  sender,
		index:   index,
		broker:  broker,
		lobby:   orch,
		cfg:     cfg,
		seedSrc: prng.New(time.Now().UnixNano()),
	}
	m.queue = lobby.NewQueue(lobby.QueueOptions{
		Name:    "arena_ffa",
		OnMatch: m.ffaMatch,
	})
	return m
}

func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

func (m *Manager) room(code types.RoomCodeType) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[code]
}

func (m *Manager) roomOf(sid types.SessionIdType) *Room {
	entry, ok := m.index.Lookup(sid)
	if !ok || entry.Mode != types.ModeArena {
		return nil
	}
	return m.room(entry.Code)
}

func (m *Manager) drawSeed() int64 {
	m.seedMu.Lock()
	defer m.seedMu.Unlock()
	return int64(m.seedSrc.Seed31())
}

// broadcast serializes once and fans out to every connected player. Callers
// hold the room lock.
func (m *Manager) broadcast(r *Room, v any, exclude ...types.SessionIdType) {
	data, err := marshal(v)
	if err != nil {
		return
	}
	for _, sid := range r.order {
		if containsSID(exclude, sid) {
			continue
		}
		if p := r.Players[sid]; p != nil && p.Connected {
			m.sender.SendRaw(sid, data)
		}
	}
}

// --- matchmaking ---

// EnqueueFFA puts a session in the arena line.
func (m *Manager) EnqueueFFA(sid types.SessionIdType, playerName string) {
	if _, seated := m.index.Lookup(sid); seated {
		m.sender.Send(sid, protocol.NewError(protocol.Prefixed("fps_", protocol.CodeJoinFailed), "already in a room"))
		return
	}
	m.queue.Enqueue(lobby.Ticket{
		SID:  sid,
		Name: protocol.CleanDisplayName(playerName, "Player"),
	})
	m.sender.Send(sid, queuedMsg{Type: "fps_queued"})
}

// CancelQueue withdraws an FFA ticket.
func (m *Manager) CancelQueue(sid types.SessionIdType) {
	if m.queue.Cancel(sid) {
		m.sender.Send(sid, queueCancelledMsg{Type: "fps_queue_cancelled"})
	}
}

// ffaMatch forms a match from any queued pair. A ticket whose session was
// seated elsewhere in the meantime sends its partner back to the line.
func (m *Manager) ffaMatch(a, b lobby.Ticket) {
	seed := m.drawSeed()

	m.mu.Lock()
	code := game.UniqueCode(func(c types.RoomCodeType) bool {
		_, taken := m.rooms[c]
		return taken
	})
	r := &Room{
		Code:       code,
		HostSID:    a.SID,
		Status:     types.StatusWaiting,
		CreatedAt:  time.Now(),
		MaxPlayers: m.cfg.MaxPlayers,
		Seed:       seed,
		Players:    make(map[types.SessionIdType]*Player),
	}
	m.rooms[code] = r
	m.mu.Unlock()

	if err := m.index.Bind(a.SID, types.ModeArena, code); err != nil {
		m.discardRoom(code)
		m.queue.Enqueue(b)
		return
	}
	if err := m.index.Bind(b.SID, types.ModeArena, code); err != nil {
		m.index.Unbind(a.SID, code)
		m.discardRoom(code)
		m.queue.Enqueue(a)
		return
	}

	metrics.ActiveRooms.WithLabelValues(modeLabel).Inc()

	r.mu.Lock()
	m.seatPlayer(r, a.SID, a.Name)
	m.seatPlayer(r, b.SID, b.Name)
	r.Status = types.StatusCountdown
	state := r.stateMsg(m.cfg)
	r.mu.Unlock()

	for _, sid := range []types.SessionIdType{a.SID, b.SID} {
		token := m.broker.Issue(sid)
		m.sender.Send(sid, struct {
			protocol.RoomEntry
			GameSeed int64        `json:"gameSeed"`
			Room     roomStateMsg `json:"room"`
		}{
			RoomEntry: protocol.NewRoomEntry("fps_match_found", code, sid, token),
			GameSeed:  seed,
			Room:      state,
		})
	}

	logging.Info(context.Background(), "Arena match formed",
		zap.String("roomCode", string(code)),
		zap.String("a", string(a.SID)),
		zap.String("b", string(b.SID)))

	m.lobby.StartCountdown(code, m.cfg.CountdownSeconds,
		func(count int) {
			r.mu.Lock()
			m.broadcast(r, protocol.NewCountdown(count))
			r.mu.Unlock()
		},
		func() { m.BeginPlaying(code) },
	)
}

func (m *Manager) discardRoom(code types.RoomCodeType) {
	m.mu.Lock()
	delete(m.rooms, code)
	m.mu.Unlock()
}

func (m *Manager) seatPlayer(r *Room, sid types.SessionIdType, name string) *Player {
	p := &Player{
		SID:       sid,
		Name:      name,
		Color:     game.ColorForSlot(r.colorCursor),
		Connected: true,
		JoinedAt:  time.Now(),
		HP:        maxHP,
	}
	r.colorCursor++
	r.Players[sid] = p
	r.order = append(r.order, sid)
	metrics.RoomPlayers.WithLabelValues(modeLabel).Inc()
	return p
}

func (r *Room) stateMsg(cfg *config.ArenaConfig) roomStateMsg {
	players := make([]playerView, 0, len(r.Players))
	for _, sid := range r.order {
		if p := r.Players[sid]; p != nil {
			players = append(players, p.view())
		}
	}
	return roomStateMsg{
		Type:       "fps_room_state",
		Code:       r.Code,
		Status:     r.Status,
		HostID:     r.HostSID,
		MaxPlayers: r.MaxPlayers,
		KillTarget: cfg.KillTarget,
		Players:    players,
	}
}

// BeginPlaying resets combat state and flips to playing. Clients build the
// arena from the shared seed; the server keeps only positions and the score.
func (m *Manager) BeginPlaying(code types.RoomCodeType) {
	r := m.room(code)
	if r == nil {
		return
	}

	r.mu.Lock()
	if r.Status != types.StatusCountdown {
		r.mu.Unlock()
		return
	}
	for _, p := range r.Players {
		p.HP = maxHP
		p.Dead = false
		p.Kills, p.Deaths = 0, 0
	}
	r.Status = types.StatusPlaying
	m.broadcast(r, protocol.NewGameStarted(r.Seed, time.Now().UnixMilli()))
	r.mu.Unlock()

	logging.Info(context.Background(), "Arena game started",
		zap.String("roomCode", string(code)),
		zap.Int64("seed", r.Seed))
}

// endGame broadcasts the scoreboard sorted by kills. Caller holds the room
// lock.
func (m *Manager) endGame(r *Room, reason string, winner types.SessionIdType) {
	r.Status = types.StatusFinished

	board := make([]playerView, 0, len(r.Players))
	for _, sid := range r.order {
		if p := r.Players[sid]; p != nil {
			board = append(board, p.view())
		}
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Kills > board[j].Kills
	})

	m.broadcast(r, gameOverMsg{Type: "fps_game_over", Reason: reason, Winner: winner, Scoreboard: board})
	logging.Info(context.Background(), "Arena game over",
		zap.String("roomCode", string(r.Code)),
		zap.String("reason", reason),
		zap.String("winner", string(winner)))
}

// --- membership ---

// LeaveRoom removes a player on explicit request.
func (m *Manager) LeaveRoom(sid types.SessionIdType) {
	m.removePlayer(sid, "leave")
}

func (m *Manager) removePlayer(sid types.SessionIdType, reason string) {
	r := m.roomOf(sid)
	if r == nil {
		return
	}

	r.mu.Lock()
	p := r.Players[sid]
	if p == nil {
		r.mu.Unlock()
		return
	}
	if p.graceTimer != nil {
		p.graceTimer.Stop()
		p.graceTimer = nil
	}
	delete(r.Players, sid)
	for i, s := range r.order {
		if s == sid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	metrics.RoomPlayers.WithLabelValues(modeLabel).Dec()

	empty := len(r.Players) == 0
	if !empty && r.HostSID == sid {
		r.HostSID = r.order[0]
	}
	m.broadcast(r, protocol.NewPlayerLeft(sid, reason))

	// a duel with one side gone is a forfeit
	if !empty && r.Status == types.StatusPlaying && len(r.Players) < 2 {
		m.endGame(r, "forfeit", r.order[0])
	}
	r.mu.Unlock()

	m.index.Unbind(sid, r.Code)
	m.broker.Revoke(sid)

	if empty {
		m.teardown(r)
	}
}

func (m *Manager) teardown(r *Room) {
	r.mu.Lock()
	r.Status = types.StatusFinished
	r.mu.Unlock()

	m.mu.Lock()
	delete(m.rooms, r.Code)
	m.mu.Unlock()
	metrics.ActiveRooms.WithLabelValues(modeLabel).Dec()
	logging.Info(context.Background(), "Arena room torn down", zap.String("roomCode", string(r.Code)))
}

// HandleDisconnect arms the grace timer and drops any queue ticket.
func (m *Manager) HandleDisconnect(sid types.SessionIdType) {
	m.queue.Cancel(sid)

	r := m.roomOf(sid)
	if r == nil {
		return
	}
	r.mu.Lock()
	p := r.Players[sid]
	if p == nil {
		r.mu.Unlock()
		return
	}
	p.Connected = false
	p.graceTimer = time.AfterFunc(m.broker.Grace(), func() {
		m.removePlayer(sid, "timeout")
	})
	r.mu.Unlock()
}

// TransferPlayer moves the seat to the fresh session on reconnect.
func (m *Manager) TransferPlayer(oldSID, newSID types.SessionIdType) bool {
	r := m.roomOf(oldSID)
	if r == nil {
		return false
	}

	r.mu.Lock()
	p := r.Players[oldSID]
	if p == nil {
		r.mu.Unlock()
		return false
	}
	if p.graceTimer != nil {
		p.graceTimer.Stop()
		p.graceTimer = nil
	}
	delete(r.Players, oldSID)
	p.SID = newSID
	p.Connected = true
	r.Players[newSID] = p
	for i, s := range r.order {
		if s == oldSID {
			r.order[i] = newSID
			break
		}
	}
	if r.HostSID == oldSID {
		r.HostSID = newSID
	}
	r.mu.Unlock()

	m.index.Rekey(oldSID, newSID)
	token := m.broker.Issue(newSID)

	r.mu.Lock()
	reply := struct {
		protocol.RoomEntry
		GameSeed int64        `json:"gameSeed"`
		Room     roomStateMsg `json:"room"`
	}{
		RoomEntry: protocol.NewRoomEntry("fps_reconnected", r.Code, newSID, token),
		GameSeed:  r.Seed,
		Room:      r.stateMsg(m.cfg),
	}
	r.mu.Unlock()

	m.sender.Send(newSID, reply)
	return true
}

// Shutdown closes the FFA queue. Arena rooms have no tick loops to stop.
func (m *Manager) Shutdown() {
	m.queue.Close()
}

func containsSID(list []types.SessionIdType, sid types.SessionIdType) bool {
	for _, s := range list {
		if s == sid {
			return true
		}
	}
	return false
}
