package openworld

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/config"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/game"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/logging"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/metrics"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/prng"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/protocol"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/reconnect"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/world"
)

const modeLabel = "openworld"

func marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Manager owns the one shared world.
type Manager struct {
	sender types.Sender
	index  *game.Index
	broker *reconnect.Broker
	cfg    *config.OpenWorldConfig

	once  sync.Once
	world *World
}

// NewManager wires an open-world manager. World generation is deferred to
// the first join so an idle process carries no chunks.
func NewManager(sender types.Sender, index *game.Index, broker *reconnect.Broker, cfg *config.OpenWorldConfig) *Manager {
	return &Manager{
		sender: sender,
		index:  index,
		broker: broker,
		cfg:    cfg,
	}
}

// sharedWorld builds the world on first touch: seed, terrain generator, and
// the spawn column.
func (m *Manager) sharedWorld() *World {
	m.once.Do(func() {
		seed := int64(prng.New(time.Now().UnixNano()).Seed31())
		w := &World{
			Seed:    seed,
			Voxels:  world.NewChunkedWorld(seed, m.cfg.WorldChunkW, m.cfg.WorldChunkD, world.TerrainChunk),
			Players: make(map[types.SessionIdType]*Player),
		}
		w.SpawnX, w.SpawnY, w.SpawnZ = w.Voxels.FindSpawnPoint()
		m.world = w
		logging.Info(context.Background(), "Open world generated",
			zap.Int64("seed", seed),
			zap.Int("spawnX", w.SpawnX),
			zap.Int("spawnZ", w.SpawnZ))
	})
	return m.world
}

// worldOf returns the world when the session inhabits it.
func (m *Manager) worldOf(sid types.SessionIdType) *World {
	entry, ok := m.index.Lookup(sid)
	if !ok || entry.Mode != types.ModeOpenWorld {
		return nil
	}
	return m.sharedWorld()
}

// broadcast serializes once and fans out to every connected inhabitant.
// Callers hold the world lock.
func (m *Manager) broadcast(w *World, v any, exclude ...types.SessionIdType) {
	data, err := marshal(v)
	if err != nil {
		return
	}
	for _, sid := range w.order {
		if containsSID(exclude, sid) {
			continue
		}
		if p := w.Players[sid]; p != nil && p.Connected {
			m.sender.SendRaw(sid, data)
		}
	}
}

// broadcastNear fans out to connected inhabitants whose chunk lies within
// view distance of (cx, cz). Callers hold the world lock.
func (m *Manager) broadcastNear(w *World, cx, cz int, v any, exclude ...types.SessionIdType) {
	data, err := marshal(v)
	if err != nil {
		return
	}
	for _, sid := range w.order {
		if containsSID(exclude, sid) {
			continue
		}
		p := w.Players[sid]
		if p == nil || !p.Connected {
			continue
		}
		px, pz := p.chunkPos()
		if chunkDist(px, pz, cx, cz) <= m.cfg.ViewChunks {
			m.sender.SendRaw(sid, data)
		}
	}
}

// Join seats a session in the shared world at the spawn column.
func (m *Manager) Join(sid types.SessionIdType, playerName string) {
	name := protocol.CleanDisplayName(playerName, "Player")

	if err := m.index.Bind(sid, types.ModeOpenWorld, worldCode); err != nil {
		m.sender.Send(sid, protocol.NewError(protocol.Prefixed("mw_", protocol.CodeJoinFailed), "already in a room"))
		return
	}

	w := m.sharedWorld()
	w.mu.Lock()
	p := &Player{
		SID:       sid,
		Name:      name,
		Color:     game.ColorForSlot(w.colorCursor),
		Connected: true,
		JoinedAt:  time.Now(),
		X:         float64(w.SpawnX),
		Y:         float64(w.SpawnY),
		Z:         float64(w.SpawnZ),
	}
	w.colorCursor++
	w.Players[sid] = p
	w.order = append(w.order, sid)
	metrics.RoomPlayers.WithLabelValues(modeLabel).Inc()

	token := m.broker.Issue(sid)
	reply := struct {
		protocol.RoomEntry
		World worldStateMsg `json:"world"`
	}{
		RoomEntry: protocol.NewRoomEntry("mw_joined", worldCode, sid, token),
		World:     w.stateMsg(m.cfg),
	}
	m.sender.Send(sid, reply)
	m.broadcast(w, playerJoinedMsg{Type: "mw_player_joined", Player: p.view()}, sid)
	w.mu.Unlock()

	logging.Info(context.Background(), "Player joined open world",
		zap.String("sessionId", string(sid)))
}

func (w *World) stateMsg(cfg *config.OpenWorldConfig) worldStateMsg {
	players := make([]playerView, 0, len(w.Players))
	for _, sid := range w.order {
		if p := w.Players[sid]; p != nil {
			players = append(players, p.view())
		}
	}
	return worldStateMsg{
		Type:       "mw_world_state",
		Seed:       w.Seed,
		Spawn:      spawnPoint{X: w.SpawnX, Y: w.SpawnY, Z: w.SpawnZ},
		ViewChunks: cfg.ViewChunks,
		Players:    players,
	}
}

// Leave removes a player on explicit request.
func (m *Manager) Leave(sid types.SessionIdType) {
	m.removePlayer(sid, "leave")
}

func (m *Manager) removePlayer(sid types.SessionIdType, reason string) {
	w := m.worldOf(sid)
	if w == nil {
		return
	}

	w.mu.Lock()
	p := w.Players[sid]
	if p == nil {
		w.mu.Unlock()
		return
	}
	if p.graceTimer != nil {
		p.graceTimer.Stop()
		p.graceTimer = nil
	}
	delete(w.Players, sid)
	for i, s := range w.order {
		if s == sid {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	metrics.RoomPlayers.WithLabelValues(modeLabel).Dec()
	m.broadcast(w, protocol.NewPlayerLeft(sid, reason))
	w.mu.Unlock()

	m.index.Unbind(sid, worldCode)
	m.broker.Revoke(sid)
}

// HandleDisconnect arms the grace timer; the world keeps running.
func (m *Manager) HandleDisconnect(sid types.SessionIdType) {
	w := m.worldOf(sid)
	if w == nil {
		return
	}
	w.mu.Lock()
	p := w.Players[sid]
	if p == nil {
		w.mu.Unlock()
		return
	}
	p.Connected = false
	p.graceTimer = time.AfterFunc(m.broker.Grace(), func() {
		m.removePlayer(sid, "timeout")
	})
	w.mu.Unlock()
}

// TransferPlayer moves the seat to the fresh session on reconnect.
func (m *Manager) TransferPlayer(oldSID, newSID types.SessionIdType) bool {
	w := m.worldOf(oldSID)
	if w == nil {
		return false
	}

	w.mu.Lock()
	p := w.Players[oldSID]
	if p == nil {
		w.mu.Unlock()
		return false
	}
	if p.graceTimer != nil {
		p.graceTimer.Stop()
		p.graceTimer = nil
	}
	delete(w.Players, oldSID)
	p.SID = newSID
	p.Connected = true
	w.Players[newSID] = p
	for i, s := range w.order {
		if s == oldSID {
			w.order[i] = newSID
			break
		}
	}
	w.mu.Unlock()

	m.index.Rekey(oldSID, newSID)
	token := m.broker.Issue(newSID)

	w.mu.Lock()
	reply := struct {
		protocol.RoomEntry
		World worldStateMsg `json:"world"`
	}{
		RoomEntry: protocol.NewRoomEntry("mw_reconnected", worldCode, newSID, token),
		World:     w.stateMsg(m.cfg),
	}
	w.mu.Unlock()

	m.sender.Send(newSID, reply)
	return true
}

// Shutdown is a no-op; the shared world has no loops or timers of its own.
func (m *Manager) Shutdown() {}

func containsSID(list []types.SessionIdType, sid types.SessionIdType) bool {
	for _, s := range list {
		if s == sid {
			return true
		}
	}
	return false
}
