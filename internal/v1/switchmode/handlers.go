package switchmode

import (
	"context"
	"encoding/json"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/protocol"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// Handle routes one ms_-prefixed frame.
func (m *Manager) Handle(ctx context.Context, sid types.SessionIdType, tag string, raw []byte) bool {
	switch tag {
	case "ms_create_room":
		var msg createRoomMsg
		if json.Unmarshal(raw, &msg) != nil {
			m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "bad create_room payload"))
			return true
		}
		m.CreateRoom(sid, msg.PlayerName, msg.RoomName, msg.IsPublic)
	case "ms_join_room":
		var msg joinRoomMsg
		if json.Unmarshal(raw, &msg) != nil {
			m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "bad join_room payload"))
			return true
		}
		m.JoinRoom(sid, types.RoomCodeType(msg.Code), msg.PlayerName)
	case "ms_ready":
		var msg readyMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.SetReady(sid, msg.Ready)
	case "ms_start_game":
		m.StartGame(sid)
	case "ms_score":
		var msg scoreMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.AddScore(sid, msg.Points)
	case "ms_rematch":
		m.Rematch(sid)
	case "ms_chat":
		var msg chatMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleChat(sid, msg.Text)
	case "ms_list_rooms":
		m.sender.Send(sid, protocol.NewRoomList(m.OpenRooms()))
	case "ms_leave":
		m.LeaveRoom(sid)
	default:
		return false
	}
	return true
}

// AddScore credits client-reported points for the current round and echoes the
// new totals to the whole room.
func (m *Manager) AddScore(sid types.SessionIdType, points int) {
	if points <= 0 {
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
	if p == nil || !p.Connected {
		return
	}
	p.RoundScore += points
	p.Score += points
	m.broadcast(r, scoreUpdateMsg{
		Type:      "ms_score_update",
		SessionID: sid,
		Round:     r.Round,
		Score:     p.RoundScore,
		Total:     p.Score,
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
	m.broadcast(r, chatMessageMsg{Type: "ms_chat_message", SessionID: sid, Name: p.Name, Text: text})
}
