package warfront

import (
	"context"
	"encoding/json"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/protocol"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// Handle routes one wf_-prefixed frame.
func (m *Manager) Handle(ctx context.Context, sid types.SessionIdType, tag string, raw []byte) bool {
	switch tag {
	case "wf_create_room":
		var msg createRoomMsg
		if json.Unmarshal(raw, &msg) != nil {
			m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "bad create_room payload"))
			return true
		}
		m.CreateRoom(sid, msg.PlayerName, msg.RoomName, msg.IsPublic)
	case "wf_join_room":
		var msg joinRoomMsg
		if json.Unmarshal(raw, &msg) != nil || msg.Code == "" {
			m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "bad join_room payload"))
			return true
		}
		m.JoinRoom(sid, types.RoomCodeType(msg.Code), msg.PlayerName)
	case "wf_select_role":
		var msg selectRoleMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.SelectRole(sid, types.RoleType(msg.Role))
	case "wf_select_team":
		var msg selectTeamMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.SelectTeam(sid, types.TeamIdType(msg.Team))
	case "wf_ready":
		var msg readyMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.SetReady(sid, msg.Ready)
	case "wf_start_game":
		m.StartGame(sid)
	case "wf_line_clear":
		var msg lineClearMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.withRolePlayer(sid, types.RoleDefender, func(r *Room, p *Player) {
			r.defenderLineClear(p, msg.Lines)
		})
	case "wf_combo":
		var msg comboMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.withRolePlayer(sid, types.RoleDefender, func(r *Room, p *Player) {
			r.defenderCombo(p, msg.Count)
		})
	case "wf_t_spin":
		m.withRolePlayer(sid, types.RoleDefender, func(r *Room, p *Player) {
			r.defenderTSpin(p)
		})
	case "wf_tetris":
		m.withRolePlayer(sid, types.RoleDefender, func(r *Room, p *Player) {
			r.defenderTetris(p)
		})
	case "wf_soldier_move":
		var msg soldierMoveMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleSoldierMove(sid, msg)
	case "wf_hit":
		var msg hitMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleHit(sid, msg)
	case "wf_died":
		var msg diedMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleDied(sid, msg.KillerID)
	case "wf_mine":
		var msg mineMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.withRolePlayer(sid, types.RoleEngineer, func(r *Room, p *Player) {
			if !r.engineerMine(p, msg.BlockType) {
				m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "unknown block type"))
			}
		})
	case "wf_place":
		var msg placeMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.withRolePlayer(sid, types.RoleEngineer, func(r *Room, p *Player) {
			r.engineerPlace(p, msg.Cell)
		})
	case "wf_craft":
		m.withRolePlayer(sid, types.RoleEngineer, func(r *Room, p *Player) {
			r.engineerCraft(p)
		})
	case "wf_command":
		var msg commandMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleCommand(sid, msg)
	case "wf_chat":
		var msg chatMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleChat(sid, msg.Text)
	case "wf_leave":
		m.LeaveRoom(sid)
	case "wf_rematch":
		m.Rematch(sid)
	default:
		return false
	}
	return true
}

// withRolePlayer runs fn under the room lock when the caller is playing the
// required role in a live match.
func (m *Manager) withRolePlayer(sid types.SessionIdType, role types.RoleType, fn func(r *Room, p *Player)) {
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
	if p == nil || !p.Connected || p.Role != role {
		return
	}
	fn(r, p)
}

// handleSoldierMove updates a 3D-view player's position and cell, relaying
// to the other battlefield occupants. Moving after death is the client-side
// respawn signal.
func (m *Manager) handleSoldierMove(sid types.SessionIdType, msg soldierMoveMsg) {
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
	if p == nil || !p.Connected || !p.Role.Occupies3DView() {
		return
	}
	if r.cell(msg.Cell) == nil {
		msg.Cell = -1
	}
	p.X, p.Y = msg.X, msg.Y
	p.Cell = msg.Cell
	if p.Dead {
		p.Dead = false
		p.HP = maxHP
	}
	m.sendTo3DViewers(r, soldierMovedMsg{
		Type:      "wf_soldier_moved",
		SessionID: sid,
		X:         msg.X,
		Y:         msg.Y,
		Cell:      msg.Cell,
	}, sid)
}

// handleHit accumulates a soldier's damage and relays the hit to the
// battlefield.
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
	if p == nil || !p.Connected || p.Role != types.RoleSoldier || p.Dead {
		return
	}
	target := r.Players[types.SessionIdType(msg.TargetID)]
	if target == nil || target.Dead || target.Team == p.Team {
		return
	}
	p.DamageDealt += int(msg.Damage)
	target.HP -= int(msg.Damage)
	if target.HP < 0 {
		target.HP = 0
	}
	m.sendTo3DViewers(r, hitRelayMsg{
		Type:     "wf_hit",
		SourceID: sid,
		TargetID: target.SID,
		Damage:   msg.Damage,
		HP:       target.HP,
	})
}

// handleDied attributes a death reported by the dying client. A credited
// kill enqueues the team score bonus and territory damage effects.
func (m *Manager) handleDied(sid types.SessionIdType, killerID string) {
	r := m.roomOf(sid)
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Status != types.StatusPlaying {
		return
	}
	victim := r.Players[sid]
	if victim == nil || victim.Dead {
		return
	}
	victim.Dead = true
	victim.HP = 0

	if killer := r.Players[types.SessionIdType(killerID)]; killer != nil && killer != victim {
		r.soldierKill(killer, victim)
	} else {
		victim.Deaths++
	}
	m.broadcast(r, playerDiedMsg{Type: "wf_player_died", SessionID: sid, KillerID: killerID})
}

// handleCommand runs a commander ability; failure never moves resources.
func (m *Manager) handleCommand(sid types.SessionIdType, msg commandMsg) {
	m.withRolePlayer(sid, types.RoleCommander, func(r *Room, p *Player) {
		if !r.commanderCommand(p, msg.Ability, msg.TargetCell, types.TeamIdType(msg.TargetTeam)) {
			m.sender.Send(sid, protocol.NewError(protocol.Prefixed("wf_", protocol.CodeInvalidFormat), "ability unavailable or unaffordable"))
		}
	})
}

func (m *Manager) handleChat(sid types.SessionIdType, text string) {
	text = protocol.CleanChat(text)
	if text == "" {
		return
	}
	r := m.roomOf(sid)
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.Players[sid]
	if p == nil {
		return
	}
	m.broadcast(r, chatMessageMsg{Type: "wf_chat_message", SessionID: sid, Name: p.Name, Text: text})
}
