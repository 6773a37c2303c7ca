package board

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/config"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/game"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/lobby"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/logging"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/metrics"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/persist"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/prng"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/protocol"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/reconnect"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/world"
)

const modeLabel = "board"

// Manager owns every board room. The manager lock only covers the rooms
// map; each room carries its own lock for simulation state.
type Manager struct {
	mu    sync.RWMutex
	rooms map[types.RoomCodeType]*Room

	sender types.Sender
	index  *game.Index
	broker *reconnect.Broker
	lobby  *lobby.Orchestrator
	store  persist.Store
	cfg    *config.BoardConfig

	seedMu  sync.Mutex
	seedSrc *prng.Source
}

// NewManager wires a board manager. The store may be persist.Noop.
func NewManager(sender types.Sender, index *game.Index, broker *reconnect.Broker, orch *lobby.Orchestrator, store persist.Store, cfg *config.BoardConfig) *Manager {
	return &Manager{
		rooms:   make(map[types.RoomCodeType]*Room),
		sender:  sender,
		index:   index,
		broker:  broker,
		lobby:   orch,
		store:   store,
		cfg:     cfg,
		seedSrc: prng.New(time.Now().UnixNano()),
	}
}

// RoomCount reports active rooms for the stats endpoints.
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

// roomOf resolves the room currently seating a session.
func (m *Manager) roomOf(sid types.SessionIdType) *Room {
	entry, ok := m.index.Lookup(sid)
	if !ok || entry.Mode != types.ModeBoard {
		return nil
	}
	return m.room(entry.Code)
}

func (m *Manager) drawSeed() int64 {
	m.seedMu.Lock()
	defer m.seedMu.Unlock()
	return int64(m.seedSrc.Seed31())
}

// broadcast serializes once and fans out to every connected player in the
// room. Callers hold the room lock; sends only push onto session buffers.
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

// --- lifecycle operations ---

// CreateRoom builds a fresh room with the caller as host and replies with
// the room entry envelope.
func (m *Manager) CreateRoom(sid types.SessionIdType, playerName, roomName string, public bool) {
	name := protocol.CleanDisplayName(playerName, "Player")
	rName := protocol.CleanRoomName(roomName, name+"'s world")

	m.mu.Lock()
	code := game.UniqueCode(func(c types.RoomCodeType) bool {
		_, taken := m.rooms[c]
		return taken
	})
	r := &Room{
		Code:       code,
		Name:       rName,
		Public:     public,
		HostSID:    sid,
		Status:     types.StatusWaiting,
		CreatedAt:  time.Now(),
		MaxPlayers: m.cfg.MaxPlayers,
		Players:    make(map[types.SessionIdType]*Player),
		Mobs:       make(map[int64]*Mob),
		RaidMobs:   make(map[int64]*RaidMob),
	}
	m.rooms[code] = r
	m.mu.Unlock()

	if err := m.index.Bind(sid, types.ModeBoard, code); err != nil {
		m.mu.Lock()
		delete(m.rooms, code)
		m.mu.Unlock()
		m.sender.Send(sid, protocol.NewError(protocol.Prefixed("mc_", protocol.CodeJoinFailed), "already in a room"))
		return
	}

	metrics.ActiveRooms.WithLabelValues(modeLabel).Inc()

	r.mu.Lock()
	m.seatPlayer(r, sid, name)
	token := m.broker.Issue(sid)
	reply := struct {
		protocol.RoomEntry
		Room roomStateMsg `json:"room"`
	}{
		RoomEntry: protocol.NewRoomEntry("mc_room_created", code, sid, token),
		Room:      r.stateMsg(),
	}
	r.mu.Unlock()

	m.sender.Send(sid, reply)
	logging.Info(context.Background(), "Board room created",
		zap.String("roomCode", string(code)),
		zap.String("host", string(sid)))
	m.persistRoom(r)
}

// JoinRoom seats a session in an existing waiting room.
func (m *Manager) JoinRoom(sid types.SessionIdType, code types.RoomCodeType, playerName string) {
	name := protocol.CleanDisplayName(playerName, "Player")

	r := m.room(code)
	if r == nil {
		m.sender.Send(sid, protocol.NewError(protocol.CodeRoomNotFound, "room not found"))
		return
	}

	if err := m.index.Bind(sid, types.ModeBoard, code); err != nil {
		m.sender.Send(sid, protocol.NewError(protocol.Prefixed("mc_", protocol.CodeJoinFailed), "already in a room"))
		return
	}

	// Status and capacity are checked under the same lock that seats the
	// player, so concurrent joins cannot overshoot MaxPlayers.
	r.mu.Lock()
	switch {
	case r.Status != types.StatusWaiting:
		r.mu.Unlock()
		m.index.Unbind(sid, code)
		m.sender.Send(sid, protocol.NewError(protocol.CodeGameInProgress, "game already in progress"))
		return
	case len(r.Players) >= r.MaxPlayers:
		r.mu.Unlock()
		m.index.Unbind(sid, code)
		m.sender.Send(sid, protocol.NewError(protocol.CodeRoomFull, "room is full"))
		return
	}
	p := m.seatPlayer(r, sid, name)
	token := m.broker.Issue(sid)
	reply := struct {
		protocol.RoomEntry
		Room roomStateMsg `json:"room"`
	}{
		RoomEntry: protocol.NewRoomEntry("mc_joined_room", code, sid, token),
		Room:      r.stateMsg(),
	}
	joined := struct {
		Type   string     `json:"type"`
		Player playerView `json:"player"`
	}{Type: "mc_player_joined", Player: p.view()}

	m.sender.Send(sid, reply)
	m.broadcast(r, joined, sid)
	r.mu.Unlock()

	m.persistRoom(r)
}

// seatPlayer inserts a player; the caller holds the room lock.
func (m *Manager) seatPlayer(r *Room, sid types.SessionIdType, name string) *Player {
	p := &Player{
		SID:       sid,
		Name:      name,
		Color:     game.ColorForSlot(r.colorCursor),
		Connected: true,
		JoinedAt:  time.Now(),
		SpawnSlot: r.colorCursor,
		HP:        maxHP,
		Hunger:    maxHunger,
	}
	r.colorCursor++
	r.Players[sid] = p
	r.order = append(r.order, sid)
	metrics.RoomPlayers.WithLabelValues(modeLabel).Inc()
	return p
}

func (r *Room) stateMsg() roomStateMsg {
	players := make([]playerView, 0, len(r.Players))
	for _, sid := range r.order {
		if p := r.Players[sid]; p != nil {
			players = append(players, p.view())
		}
	}
	w, h := 0, 0
	if r.Grid != nil {
		w, h = r.Grid.W, r.Grid.H
	}
	return roomStateMsg{
		Type:       "mc_room_state",
		Code:       r.Code,
		Name:       r.Name,
		Status:     r.Status,
		HostID:     r.HostSID,
		MaxPlayers: r.MaxPlayers,
		BoardW:     w,
		BoardH:     h,
		Players:    players,
	}
}

// SetReady toggles a ready flag; only meaningful while waiting.
func (m *Manager) SetReady(sid types.SessionIdType, ready bool) {
	r := m.roomOf(sid)
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Status != types.StatusWaiting {
		return
	}
	p := r.Players[sid]
	if p == nil {
		return
	}
	p.Ready = ready
	m.broadcast(r, protocol.NewPlayerReady(sid, ready))
}

// StartGame is the host-only transition into countdown. It draws the game
// seed and hands the countdown to the lobby orchestrator.
func (m *Manager) StartGame(sid types.SessionIdType) {
	r := m.roomOf(sid)
	if r == nil {
		m.sender.Send(sid, protocol.NewError(protocol.CodeRoomNotFound, "not in a room"))
		return
	}

	r.mu.Lock()
	switch {
	case r.HostSID != sid:
		r.mu.Unlock()
		m.sender.Send(sid, protocol.NewError(protocol.CodeNotHost, "only the host can start the game"))
		return
	case r.Status != types.StatusWaiting:
		r.mu.Unlock()
		m.sender.Send(sid, protocol.NewError(protocol.CodeStartFailed, "game is not in the lobby"))
		return
	case len(r.Players) < m.cfg.MinPlayers:
		r.mu.Unlock()
		m.sender.Send(sid, protocol.NewError(protocol.CodeStartFailed, "not enough players"))
		return
	}
	for _, p := range r.Players {
		if p.SID != r.HostSID && p.Connected && !p.Ready {
			r.mu.Unlock()
			m.sender.Send(sid, protocol.NewError(protocol.CodeStartFailed, "all players must be ready"))
			return
		}
	}

	r.Seed = m.drawSeed()
	r.Status = types.StatusCountdown
	code := r.Code
	r.mu.Unlock()

	m.persistRoom(r)
	m.lobby.StartCountdown(code, m.cfg.CountdownSeconds,
		func(count int) {
			r.mu.Lock()
			m.broadcast(r, protocol.NewCountdown(count))
			r.mu.Unlock()
		},
		func() { m.BeginPlaying(code) },
	)
}

// BeginPlaying generates the world from the seed, resets every player onto
// their spawn slot, and starts the tick loop.
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

	r.Grid = world.GenerateBoard(r.Seed, m.cfg.BoardW, m.cfg.BoardH)
	r.Sides[0] = newSideBoard(sideLeft, m.cfg.SideBoardW, m.cfg.SideBoardH)
	r.Sides[1] = newSideBoard(sideRight, m.cfg.SideBoardW, m.cfg.SideBoardH)
	r.rng = prng.New(r.Seed)
	r.Tick = 0
	r.TimeOfDay = 0
	r.Day = 1
	r.Phase = "day"
	r.Mobs = make(map[int64]*Mob)
	r.RaidMobs = make(map[int64]*RaidMob)
	r.Anomalies = nil

	for _, sid := range r.order {
		p := r.Players[sid]
		if p == nil {
			continue
		}
		p.X, p.Y = r.spawnPosition(p.SpawnSlot)
		p.HP = maxHP
		p.Hunger = maxHunger
		p.Dead = false
		p.Mining = nil
		p.Inventory = Inventory{}
		p.SelectedSlot = 0
		p.BlocksMined = 0
		p.Kills = 0
	}

	r.Status = types.StatusPlaying
	m.broadcast(r, protocol.NewGameStarted(r.Seed, time.Now().UnixMilli()))

	// Initial full snapshot before the first tick lands.
	for _, sid := range r.order {
		if p := r.Players[sid]; p != nil && p.Connected {
			m.sender.Send(sid, r.snapshotFor(p, m.cfg))
		}
	}
	r.mu.Unlock()

	m.persistRoom(r)

	r.loop = game.StartLoop(modeLabel, m.cfg.TickRateHz, func() bool {
		return m.tickRoom(code)
	})
	logging.Info(context.Background(), "Board game started",
		zap.String("roomCode", string(code)),
		zap.Int64("seed", r.Seed))
}

// tickRoom runs one simulation step; false stops the loop.
func (m *Manager) tickRoom(code types.RoomCodeType) bool {
	r := m.room(code)
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Status != types.StatusPlaying {
		return false
	}
	m.runTick(r)
	return r.Status == types.StatusPlaying
}

// LeaveRoom removes a player on explicit request.
func (m *Manager) LeaveRoom(sid types.SessionIdType) {
	m.removePlayer(sid, "leave")
}

// removePlayer takes a seat out of its room, moving the host crown and
// tearing the room down when it empties.
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
		// host crown moves to the oldest remaining player
		r.HostSID = r.order[0]
	}
	m.broadcast(r, protocol.NewPlayerLeft(sid, reason))
	r.mu.Unlock()

	m.index.Unbind(sid, r.Code)
	m.broker.Revoke(sid)

	if empty {
		m.teardown(r)
	} else {
		m.persistRoom(r)
	}
}

// teardown stops the loop and forgets the room.
func (m *Manager) teardown(r *Room) {
	r.mu.Lock()
	r.Status = types.StatusFinished
	loop := r.loop
	r.loop = nil
	r.mu.Unlock()

	if loop != nil {
		loop.StopAsync()
	}

	m.mu.Lock()
	delete(m.rooms, r.Code)
	m.mu.Unlock()
	metrics.ActiveRooms.WithLabelValues(modeLabel).Dec()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.store.DeleteRoom(ctx, r.Code); err != nil {
			logging.Warn(ctx, "Failed to delete room document", zap.Error(err))
		}
	}()
	logging.Info(context.Background(), "Board room torn down", zap.String("roomCode", string(r.Code)))
}

// HandleDisconnect flips the seat to disconnected and arms the grace timer.
// The simulation keeps running and simply ignores the player's inputs.
func (m *Manager) HandleDisconnect(sid types.SessionIdType) {
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
	p.Ready = false
	if p.Mining != nil {
		p.Mining = nil
		m.broadcast(r, miningCancelledMsg{Type: "mc_mining_cancelled", SessionID: sid})
	}
	p.graceTimer = time.AfterFunc(m.broker.Grace(), func() {
		m.removePlayer(sid, "timeout")
	})
	r.mu.Unlock()
}

// TransferPlayer moves the seat from the dead session to the fresh one,
// issues a rotated token, and replies with the full snapshot. Other players
// see the connected flag flip in the next broadcast rather than an event.
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
		Room  roomStateMsg `json:"room"`
		State *stateUpdate `json:"state,omitempty"`
	}{
		RoomEntry: protocol.NewRoomEntry("mc_reconnected", r.Code, newSID, token),
		Room:      r.stateMsg(),
	}
	if r.Status == types.StatusPlaying {
		s := r.snapshotFor(p, m.cfg)
		reply.State = &s
	}
	r.mu.Unlock()

	m.sender.Send(newSID, reply)
	return true
}

// Rematch returns a finished room to the lobby with its roster intact.
func (m *Manager) Rematch(sid types.SessionIdType) {
	r := m.roomOf(sid)
	if r == nil {
		return
	}
	r.mu.Lock()
	if r.Status != types.StatusFinished || r.HostSID != sid {
		r.mu.Unlock()
		return
	}
	r.Status = types.StatusWaiting
	for _, p := range r.Players {
		p.Ready = false
		p.Dead = false
		p.HP = maxHP
		p.Hunger = maxHunger
	}
	m.broadcast(r, r.stateMsg())
	r.mu.Unlock()
	m.persistRoom(r)
}

// OpenRooms lists public waiting rooms for the lobby browser.
func (m *Manager) OpenRooms() []protocol.RoomSummary {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	var out []protocol.RoomSummary
	for _, r := range rooms {
		r.mu.Lock()
		if r.Public && r.Status == types.StatusWaiting {
			host := ""
			if h := r.Players[r.HostSID]; h != nil {
				host = h.Name
			}
			out = append(out, protocol.RoomSummary{
				Code:        r.Code,
				Name:        r.Name,
				HostName:    host,
				PlayerCount: len(r.Players),
				MaxPlayers:  r.MaxPlayers,
				Status:      r.Status,
			})
		}
		r.mu.Unlock()
	}
	return out
}

// persistRoom mirrors a public room's summary into the store off the lock.
func (m *Manager) persistRoom(r *Room) {
	r.mu.Lock()
	if !r.Public {
		r.mu.Unlock()
		return
	}
	sum := persist.Summary{
		Code:       r.Code,
		Name:       r.Name,
		Mode:       types.ModeBoard,
		Status:     r.Status,
		MaxPlayers: r.MaxPlayers,
		CreatedAt:  r.CreatedAt.UnixMilli(),
		UpdatedAt:  time.Now().UnixMilli(),
	}
	if h := r.Players[r.HostSID]; h != nil {
		sum.HostName = h.Name
	}
	for _, sid := range r.order {
		if p := r.Players[sid]; p != nil {
			sum.Players = append(sum.Players, persist.SummaryPlayer{
				ID:       p.SID,
				Name:     p.Name,
				IsHost:   p.SID == r.HostSID,
				JoinedAt: p.JoinedAt.UnixMilli(),
			})
		}
	}
	r.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.store.SaveRoom(ctx, sum); err != nil {
			logging.Warn(ctx, "Failed to save room document", zap.Error(err))
		}
	}()
}

// Shutdown stops every room loop; sockets are closed by the registry.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.Unlock()

	for _, r := range rooms {
		r.mu.Lock()
		r.Status = types.StatusFinished
		loop := r.loop
		r.loop = nil
		r.mu.Unlock()
		if loop != nil {
			loop.Stop()
		}
	}
}

func containsSID(list []types.SessionIdType, sid types.SessionIdType) bool {
	for _, s := range list {
		if s == sid {
			return true
		}
	}
	return false
}
