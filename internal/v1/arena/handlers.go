package arena

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/protocol"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// Handle routes one arena frame. The mode answers to two tag namespaces:
// fps_ is canonical, arena_ is the legacy alias.
func (m *Manager) Handle(ctx context.Context, sid types.SessionIdType, tag string, raw []byte) bool {
	if rest, ok := strings.CutPrefix(tag, "arena_"); ok {
		tag = "fps_" + rest
	}

	switch tag {
	case "fps_queue":
		var msg queueMsg
		if json.Unmarshal(raw, &msg) != nil {
			m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "bad queue payload"))
			return true
		}
		m.EnqueueFFA(sid, msg.PlayerName)
	case "fps_cancel_queue":
		m.CancelQueue(sid)
	case "fps_position":
		var msg positionMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handlePosition(sid, msg)
	case "fps_shoot":
		var msg shootMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleShoot(sid, msg)
	case "fps_hit":
		var msg hitMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleHit(sid, msg)
	case "fps_leave":
		m.LeaveRoom(sid)
	default:
		return false
	}
	return true
}

// handlePosition updates and relays a combatant's transform. Moving after
// death is the client-side respawn signal.
func (m *Manager) handlePosition(sid types.SessionIdType, msg positionMsg) {
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
	if p == nil || !p.Connected {
		return
	}
	p.X, p.Y, p.Z = msg.X, msg.Y, msg.Z
	p.Yaw, p.Pitch = msg.Yaw, msg.Pitch
	if p.Dead {
		p.Dead = false
		p.HP = maxHP
	}
	m.broadcast(r, positionRelayMsg{
		Type:      "fps_position",
		SessionID: sid,
		X:         msg.X,
		Y:         msg.Y,
		Z:         msg.Z,
		Yaw:       msg.Yaw,
		Pitch:     msg.Pitch,
	}, sid)
}

// handleShoot is a pure relay; hits are reported separately.
func (m *Manager) handleShoot(sid types.SessionIdType, msg shootMsg) {
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
	if p == nil || !p.Connected || p.Dead {
		return
	}
	m.broadcast(r, shotRelayMsg{Type: "fps_shot", SessionID: sid, Origin: msg.Origin, Dir: msg.Dir}, sid)
}

// handleHit applies client-reported damage, credits kills, and ends the game
// at the kill target.
func (m *Manager) handleHit(sid types.SessionIdType, msg hitMsg) {
	if msg.Damage <= 0 {
		return
	}
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
	if p == nil || !p.Connected || p.Dead {
		return
	}
	target := r.Players[types.SessionIdType(msg.TargetID)]
	if target == nil || target == p || target.Dead {
		return
	}

	target.HP -= int(msg.Damage)
	if target.HP < 0 {
		target.HP = 0
	}
	m.broadcast(r, hitRelayMsg{
		Type:     "fps_hit",
		SourceID: sid,
		TargetID: target.SID,
		Damage:   msg.Damage,
		HP:       target.HP,
	})

	if target.HP > 0 {
		return
	}
	target.Dead = true
	p.Kills++
	target.Deaths++
	m.broadcast(r, playerDiedMsg{
		Type:      "fps_player_died",
		SessionID: target.SID,
		KillerID:  sid,
		Kills:     p.Kills,
	})
	if p.Kills >= m.cfg.KillTarget {
		m.endGame(r, "kill_target", sid)
	}
}
