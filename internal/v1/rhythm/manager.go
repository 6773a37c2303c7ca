package rhythm

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
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/persist"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/prng"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/protocol"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/reconnect"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

const modeLabel = "rhythm"

func marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Manager owns every rhythm room and the ranked queue.
type Manager struct {
	mu    sync.RWMutex
	rooms map[types.RoomCodeType]*Room

	sender types.Sender
	index  *game.Index
	broker *reconnect.Broker
	lobby  *lobby.Orchestrator
	store  persist.Store
	cfg    *config.RhythmConfig

	queue *lobby.Queue

	seedMu  sync.Mutex
	seedSrc *prng.Source
}

// NewManager wires a rhythm manager and starts its ranked queue.
func NewManager(sender types.Sender, index *game.Index, broker *reconnect.Broker, orch *lobby.Orchestrator, store persist.Store, cfg *config.RhythmConfig) *Manager {
	m := &Manager{
		rooms:   make(map[types.RoomCodeType]*Room),
		sender:  sender,
		index:   index,
		broker:  broker,
		lobby:   orch,
		store:   store,
		cfg:     cfg,
		seedSrc: prng.New(time.Now().UnixNano()),
	}
	m.queue = lobby.NewQueue(lobby.QueueOptions{
		Name:       "rhythm_ranked",
		PointRange: cfg.PointRange,
		Timeout:    cfg.RankedTimeout,
		Retry:      cfg.QueueRetry,
		OnMatch:    m.rankedMatch,
		OnTimeout:  m.rankedAIMatch,
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
	if !ok || entry.Mode != types.ModeRhythm {
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

// --- lifecycle ---

// CreateRoom builds a fresh room with the caller as host.
func (m *Manager) CreateRoom(sid types.SessionIdType, playerName, roomName string, public bool) {
	name := protocol.CleanDisplayName(playerName, "Player")
	rName := protocol.CleanRoomName(roomName, name+"'s room")

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
	}
	m.rooms[code] = r
	m.mu.Unlock()

	if err := m.index.Bind(sid, types.ModeRhythm, code); err != nil {
		m.mu.Lock()
		delete(m.rooms, code)
		m.mu.Unlock()
		m.sender.Send(sid, protocol.NewError(protocol.CodeJoinFailed, "already in a room"))
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
		RoomEntry: protocol.NewRoomEntry("room_created", code, sid, token),
		Room:      r.stateMsg(),
	}
	r.mu.Unlock()

	m.sender.Send(sid, reply)
	logging.Info(context.Background(), "Rhythm room created",
		zap.String("roomCode", string(code)),
		zap.String("host", string(sid)))
	m.persistRoom(r)
}

// JoinRoom seats a session in a waiting room.
func (m *Manager) JoinRoom(sid types.SessionIdType, code types.RoomCodeType, playerName string) {
	name := protocol.CleanDisplayName(playerName, "Player")

	r := m.room(code)
	if r == nil {
		m.sender.Send(sid, protocol.NewError(protocol.CodeRoomNotFound, "room not found"))
		return
	}

	if err := m.index.Bind(sid, types.ModeRhythm, code); err != nil {
		m.sender.Send(sid, protocol.NewError(protocol.CodeJoinFailed, "already in a room"))
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
		RoomEntry: protocol.NewRoomEntry("joined_room", code, sid, token),
		Room:      r.stateMsg(),
	}
	joined := struct {
		Type   string     `json:"type"`
		Player playerView `json:"player"`
	}{Type: "player_joined", Player: p.view()}

	m.sender.Send(sid, reply)
	m.broadcast(r, joined, sid)
	r.mu.Unlock()

	m.persistRoom(r)
}

// seatPlayer inserts a player. Caller holds the room lock.
func (m *Manager) seatPlayer(r *Room, sid types.SessionIdType, name string) *Player {
	p := &Player{
		SID:       sid,
		Name:      name,
		Color:     game.ColorForSlot(r.colorCursor),
		Connected: true,
		JoinedAt:  time.Now(),
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
	return roomStateMsg{
		Type:       "room_state",
		Code:       r.Code,
		Name:       r.Name,
		Status:     r.Status,
		HostID:     r.HostSID,
		MaxPlayers: r.MaxPlayers,
		Players:    players,
	}
}

// SetReady toggles readiness while waiting.
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

// StartGame is the host-only transition into countdown.
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

// BeginPlaying resets every run and flips the room to playing. Rhythm has no
// server tick loop; clients simulate against the shared seed and report back.
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
		p.resetRun()
	}
	r.Status = types.StatusPlaying
	m.broadcast(r, protocol.NewGameStarted(r.Seed, time.Now().UnixMilli()))
	r.mu.Unlock()

	m.persistRoom(r)
	logging.Info(context.Background(), "Rhythm game started",
		zap.String("roomCode", string(code)),
		zap.Int64("seed", r.Seed))
}

// --- ranked matchmaking ---

// EnqueueRanked puts a session in the ranked line. Queued players hold no
// room seat until a match forms.
func (m *Manager) EnqueueRanked(sid types.SessionIdType, playerName string, points int) {
	if _, seated := m.index.Lookup(sid); seated {
		m.sender.Send(sid, protocol.NewError(protocol.CodeJoinFailed, "already in a room"))
		return
	}
	m.queue.Enqueue(lobby.Ticket{
		SID:    sid,
		Name:   protocol.CleanDisplayName(playerName, "Player"),
		Points: points,
	})
	m.sender.Send(sid, rankedQueuedMsg{Type: "ranked_queued"})
}

// CancelQueue withdraws a ranked ticket.
func (m *Manager) CancelQueue(sid types.SessionIdType) {
	if m.queue.Cancel(sid) {
		m.sender.Send(sid, queueCancelledMsg{Type: "queue_cancelled"})
	}
}

// rankedMatch forms a two-player room from a compatible pair. A ticket whose
// session was seated elsewhere in the meantime sends its partner back to the
// line.
func (m *Manager) rankedMatch(a, b lobby.Ticket) {
	r, code := m.newRankedRoom(a.SID)

	if err := m.index.Bind(a.SID, types.ModeRhythm, code); err != nil {
		m.discardRoom(code)
		m.queue.Enqueue(b)
		return
	}
	if err := m.index.Bind(b.SID, types.ModeRhythm, code); err != nil {
		m.index.Unbind(a.SID, code)
		m.discardRoom(code)
		m.queue.Enqueue(a)
		return
	}

	metrics.ActiveRooms.WithLabelValues(modeLabel).Inc()

	r.mu.Lock()
	pa := m.seatPlayer(r, a.SID, a.Name)
	pb := m.seatPlayer(r, b.SID, b.Name)
	pa.Points, pb.Points = a.Points, b.Points
	pa.Ready, pb.Ready = true, true
	r.Status = types.StatusCountdown
	seed := r.Seed
	viewA, viewB := pa.view(), pb.view()
	state := r.stateMsg()
	r.mu.Unlock()

	m.sendMatchFound(a.SID, code, seed, false, &viewB, state)
	m.sendMatchFound(b.SID, code, seed, false, &viewA, state)

	logging.Info(context.Background(), "Ranked match formed",
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

// rankedAIMatch resolves a timed-out ticket against the seed-driven AI
// opponent. The AI plays client-side from the same seed.
func (m *Manager) rankedAIMatch(t lobby.Ticket) {
	r, code := m.newRankedRoom(t.SID)

	if err := m.index.Bind(t.SID, types.ModeRhythm, code); err != nil {
		m.discardRoom(code)
		return
	}

	metrics.ActiveRooms.WithLabelValues(modeLabel).Inc()

	r.mu.Lock()
	r.VersusAI = true
	p := m.seatPlayer(r, t.SID, t.Name)
	p.Points = t.Points
	p.Ready = true
	r.Status = types.StatusCountdown
	seed := r.Seed
	state := r.stateMsg()
	r.mu.Unlock()

	m.sendMatchFound(t.SID, code, seed, true, nil, state)

	logging.Info(context.Background(), "Ranked AI match formed",
		zap.String("roomCode", string(code)),
		zap.String("player", string(t.SID)))

	m.lobby.StartCountdown(code, m.cfg.CountdownSeconds,
		func(count int) {
			r.mu.Lock()
			m.broadcast(r, protocol.NewCountdown(count))
			r.mu.Unlock()
		},
		func() { m.BeginPlaying(code) },
	)
}

func (m *Manager) newRankedRoom(host types.SessionIdType) (*Room, types.RoomCodeType) {
	seed := m.drawSeed()

	m.mu.Lock()
	defer m.mu.Unlock()
	code := game.UniqueCode(func(c types.RoomCodeType) bool {
		_, taken := m.rooms[c]
		return taken
	})
	r := &Room{
		Code:       code,
		Name:       "Ranked Match",
		HostSID:    host,
		Status:     types.StatusWaiting,
		CreatedAt:  time.Now(),
		MaxPlayers: 2,
		Seed:       seed,
		Ranked:     true,
		Players:    make(map[types.SessionIdType]*Player),
	}
	m.rooms[code] = r
	return r, code
}

func (m *Manager) discardRoom(code types.RoomCodeType) {
	m.mu.Lock()
	delete(m.rooms, code)
	m.mu.Unlock()
}

func (m *Manager) sendMatchFound(sid types.SessionIdType, code types.RoomCodeType, seed int64, isAI bool, opponent *playerView, state roomStateMsg) {
	token := m.broker.Issue(sid)
	m.sender.Send(sid, struct {
		protocol.RoomEntry
		IsAI     bool         `json:"isAI"`
		GameSeed int64        `json:"gameSeed"`
		Opponent *playerView  `json:"opponent,omitempty"`
		Room     roomStateMsg `json:"room"`
	}{
		RoomEntry: protocol.NewRoomEntry("ranked_match_found", code, sid, token),
		IsAI:      isAI,
		GameSeed:  seed,
		Opponent:  opponent,
		Room:      state,
	})
}

// --- in-game reports ---

// ScoreUpdate relays a live score to the rest of the room.
func (m *Manager) ScoreUpdate(sid types.SessionIdType, score, combo int) {
	r := m.roomOf(sid)
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Status != types.StatusPlaying {
		return
	}
	p := r.Players[sid]
	if p == nil || !p.Connected || p.Finished {
		return
	}
	p.Score = score
	p.Combo = combo
	if combo > p.MaxCombo {
		p.MaxCombo = combo
	}
	m.broadcast(r, scoreUpdatedMsg{Type: "score_updated", SessionID: sid, Score: score, Combo: combo}, sid)
}

// GameFinished records a final score; once every connected player has
// finished, standings go out and the room finishes.
func (m *Manager) GameFinished(sid types.SessionIdType, score int) {
	r := m.roomOf(sid)
	if r == nil {
		return
	}
	r.mu.Lock()
	p := r.Players[sid]
	if p == nil || r.Status != types.StatusPlaying || p.Finished {
		r.mu.Unlock()
		return
	}
	p.Finished = true
	p.Score = score
	m.broadcast(r, playerFinishedMsg{Type: "player_finished", SessionID: sid, Score: score})

	for _, other := range r.Players {
		if other.Connected && !other.Finished {
			r.mu.Unlock()
			return
		}
	}
	m.endGame(r)
	r.mu.Unlock()

	m.persistRoom(r)
}

// endGame broadcasts standings sorted by score. Caller holds the room lock.
func (m *Manager) endGame(r *Room) {
	r.Status = types.StatusFinished

	standings := make([]standing, 0, len(r.Players))
	for _, sid := range r.order {
		if p := r.Players[sid]; p != nil {
			standings = append(standings, standing{
				SessionID: p.SID,
				Name:      p.Name,
				Score:     p.Score,
				MaxCombo:  p.MaxCombo,
			})
		}
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})

	var winner types.SessionIdType
	if len(standings) > 0 {
		winner = standings[0].SessionID
	}
	m.broadcast(r, gameOverMsg{Type: "game_over", Winner: winner, Standings: standings})
	logging.Info(context.Background(), "Rhythm game over",
		zap.String("roomCode", string(r.Code)),
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

	// a departure may leave everyone else already finished
	if !empty && r.Status == types.StatusPlaying {
		done := true
		for _, other := range r.Players {
			if other.Connected && !other.Finished {
				done = false
				break
			}
		}
		if done {
			m.endGame(r)
		}
	}
	r.mu.Unlock()

	m.index.Unbind(sid, r.Code)
	m.broker.Revoke(sid)

	if empty {
		m.teardown(r)
	} else {
		m.persistRoom(r)
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

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.store.DeleteRoom(ctx, r.Code); err != nil {
			logging.Warn(ctx, "Failed to delete room document", zap.Error(err))
		}
	}()
	logging.Info(context.Background(), "Rhythm room torn down", zap.String("roomCode", string(r.Code)))
}

// HandleDisconnect arms the grace timer and drops any ranked ticket.
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
	p.Ready = false
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
		Room roomStateMsg `json:"room"`
	}{
		RoomEntry: protocol.NewRoomEntry("reconnected", r.Code, newSID, token),
		Room:      r.stateMsg(),
	}
	r.mu.Unlock()

	m.sender.Send(newSID, reply)
	return true
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

func (m *Manager) persistRoom(r *Room) {
	r.mu.Lock()
	if !r.Public {
		r.mu.Unlock()
		return
	}
	sum := persist.Summary{
		Code:       r.Code,
		Name:       r.Name,
		Mode:       types.ModeRhythm,
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

// Shutdown closes the ranked queue. Rhythm rooms have no tick loops to stop.
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
