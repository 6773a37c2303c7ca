package rhythm

import (
	"context"
	"encoding/json"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/protocol"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// Handle routes one unprefixed frame. Rhythm is the dispatcher's fallback
// manager, so an unrecognized tag here becomes UNKNOWN_TYPE upstream.
func (m *Manager) Handle(ctx context.Context, sid types.SessionIdType, tag string, raw []byte) bool {
	switch tag {
	case "create_room":
		var msg createRoomMsg
		if json.Unmarshal(raw, &msg) != nil {
			m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "bad create_room payload"))
			return true
		}
		m.CreateRoom(sid, msg.PlayerName, msg.RoomName, msg.IsPublic)
	case "join_room":
		var msg joinRoomMsg
		if json.Unmarshal(raw, &msg) != nil || msg.Code == "" {
			m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "bad join_room payload"))
			return true
		}
		m.JoinRoom(sid, types.RoomCodeType(msg.Code), msg.PlayerName)
	case "set_ready":
		var msg readyMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.SetReady(sid, msg.Ready)
	case "start_game":
		m.StartGame(sid)
	case "leave_room":
		m.LeaveRoom(sid)
	case "list_rooms":
		m.sender.Send(sid, protocol.NewRoomList(m.OpenRooms()))
	case "queue_ranked":
		var msg queueRankedMsg
		if json.Unmarshal(raw, &msg) != nil {
			m.sender.Send(sid, protocol.NewError(protocol.CodeInvalidFormat, "bad queue_ranked payload"))
			return true
		}
		m.EnqueueRanked(sid, msg.PlayerName, msg.Points)
	case "cancel_queue":
		m.CancelQueue(sid)
	case "score_update":
		var msg scoreUpdateMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.ScoreUpdate(sid, msg.Score, msg.Combo)
	case "game_finished":
		var msg gameFinishedMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.GameFinished(sid, msg.Score)
	case "chat":
		var msg chatMsg
		if json.Unmarshal(raw, &msg) != nil {
			return true
		}
		m.handleChat(sid, msg.Text)
	default:
		return false
	}
	return true
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
	m.broadcast(r, chatMessageMsg{Type: "chat_message", SessionID: sid, Name: p.Name, Text: text})
}
