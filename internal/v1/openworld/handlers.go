package openworld

import (
	"context"
	"encoding/json"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/content"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/protocol"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/world"
)

// Handle routes one mw_-prefixed frame.
func (m *Manager) Handle(ctx context.Context, sid types.SessionIdType, tag string, raw []byte) bool {
	switch tag {
	case "mw_join":
		var msg joinMsg
		if json.Unmarshal(raw, &msg) != nil {
			m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "bad join payload"))
			return true
		}
		m.Join(sid, msg.PlayerName)
	case "mw_move":
		var msg moveMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleMove(sid, msg)
	case "mw_set_block":
		var msg setBlockMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleSetBlock(sid, msg.X, msg.Y, msg.Z, msg.BlockID)
	case "mw_break_block":
		var msg breakBlockMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleSetBlock(sid, msg.X, msg.Y, msg.Z, world.NumAir)
	case "mw_chunk_request":
		var msg chunkRequestMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleChunkRequest(sid, msg.CX, msg.CZ)
	case "mw_chat":
		var msg chatMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleChat(sid, msg.Text)
	case "mw_leave":
		m.Leave(sid)
	default:
		return false
	}
	return true
}

// handleMove updates the player transform and relays it to inhabitants
// within view distance.
func (m *Manager) handleMove(sid types.SessionIdType, msg moveMsg) {
	w := m.worldOf(sid)
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	p := w.Players[sid]
	if p == nil || !p.Connected {
		return
	}
	p.X, p.Y, p.Z = msg.X, msg.Y, msg.Z
	p.Yaw, p.Pitch = msg.Yaw, msg.Pitch

	cx, cz := p.chunkPos()
	m.broadcastNear(w, cx, cz, playerMovedMsg{
		Type:      "mw_player_moved",
		SessionID: sid,
		X:         msg.X,
		Y:         msg.Y,
		Z:         msg.Z,
		Yaw:       msg.Yaw,
		Pitch:     msg.Pitch,
	}, sid)
}

// handleSetBlock writes one block (air = break) and announces the edit to
// everyone in view of its chunk, the editor included.
func (m *Manager) handleSetBlock(sid types.SessionIdType, x, y, z int, id uint16) {
	if id != world.NumAir && world.BlockName(id) == content.BlockAir {
		m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "unknown block id"))
		return
	}

	w := m.worldOf(sid)
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	p := w.Players[sid]
	if p == nil || !p.Connected {
		return
	}
	if !w.Voxels.SetBlock(x, y, z, id) {
		return
	}
	m.broadcastNear(w, x/world.ChunkW, z/world.ChunkD, blockUpdateMsg{
		Type:      "mw_block_update",
		SessionID: sid,
		X:         x,
		Y:         y,
		Z:         z,
		BlockID:   id,
	})
}

// handleChunkRequest streams one chunk as run-length pairs. Requests outside
// the world or beyond the player's view distance are refused.
func (m *Manager) handleChunkRequest(sid types.SessionIdType, cx, cz int) {
	w := m.worldOf(sid)
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	p := w.Players[sid]
	if p == nil || !p.Connected {
		return
	}
	px, pz := p.chunkPos()
	if !w.Voxels.InBounds(cx, cz) || chunkDist(px, pz, cx, cz) > m.cfg.ViewChunks {
		m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "chunk out of range"))
		return
	}
	c := w.Voxels.Chunk(cx, cz)
	m.sender.Send(sid, chunkDataMsg{Type: "mw_chunk", CX: cx, CZ: cz, Runs: c.Runs()})
}

func (m *Manager) handleChat(sid types.SessionIdType, text string) {
	text = protocol.CleanChat(text)
	if text == "" {
		return
	}
	w := m.worldOf(sid)
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	p := w.Players[sid]
	if p == nil {
		return
	}
	m.broadcast(w, chatMessageMsg{Type: "mw_chat_message", SessionID: sid, Name: p.Name, Text: text})
}
