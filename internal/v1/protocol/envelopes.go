package protocol

import "github.com/Azuretier/RhythmGame-sub002/internal/v1/types"

// Error is the universal failure reply. It goes only to the offending client
// and never alters room state.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    Code   `json:"code,omitempty"`
}

// NewError builds an error frame with the given code.
func NewError(code Code, message string) Error {
	return Error{Type: "error", Message: message, Code: code}
}

// Connected greets a freshly accepted socket with its assigned session id.
type Connected struct {
	Type       string              `json:"type"`
	SessionID  types.SessionIdType `json:"sessionId"`
	ServerTime int64               `json:"serverTime"`
}

func NewConnected(sid types.SessionIdType, serverTime int64) Connected {
	return Connected{Type: "connected", SessionID: sid, ServerTime: serverTime}
}

// Ping is the server-side heartbeat probe.
type Ping struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

func NewPing(ts int64) Ping {
	return Ping{Type: "ping", Timestamp: ts}
}

// Pong answers a client-initiated ping.
type Pong struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

func NewPong(ts int64) Pong {
	return Pong{Type: "pong", Timestamp: ts}
}

// OnlineCount reports the number of live sessions.
type OnlineCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

func NewOnlineCount(n int) OnlineCount {
	return OnlineCount{Type: "online_count", Count: n}
}

// PublicUser is the visible slice of a session profile.
type PublicUser struct {
	SessionID types.SessionIdType `json:"sessionId"`
	Name      string              `json:"name"`
	Icon      string              `json:"icon,omitempty"`
}

// OnlineUsers lists the public profiles of non-private sessions.
type OnlineUsers struct {
	Type  string       `json:"type"`
	Users []PublicUser `json:"users"`
}

func NewOnlineUsers(users []PublicUser) OnlineUsers {
	if users == nil {
		users = []PublicUser{}
	}
	return OnlineUsers{Type: "online_users", Users: users}
}

// ServerShutdown is broadcast to every session before the listener closes.
type ServerShutdown struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewServerShutdown(message string) ServerShutdown {
	return ServerShutdown{Type: "server_shutdown", Message: message}
}

// Countdown carries one beat of the pre-game countdown.
type Countdown struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

func NewCountdown(count int) Countdown {
	return Countdown{Type: "countdown", Count: count}
}

// GameStarted marks the transition to playing and carries the shared seed
// every client generates its world from.
type GameStarted struct {
	Type      string `json:"type"`
	Seed      int64  `json:"seed"`
	Timestamp int64  `json:"timestamp"`
}

func NewGameStarted(seed, ts int64) GameStarted {
	return GameStarted{Type: "game_started", Seed: seed, Timestamp: ts}
}

// RoomEntry is the shared head of every envelope that puts a session into a
// room (room_created, joined_room, reconnected, match-found). Managers embed
// it next to their mode-specific state payload so the reconnect token always
// travels with the snapshot.
type RoomEntry struct {
	Type           string              `json:"type"`
	RoomCode       types.RoomCodeType  `json:"roomCode"`
	SessionID      types.SessionIdType `json:"sessionId"`
	ReconnectToken string              `json:"reconnectToken"`
}

func NewRoomEntry(tag string, code types.RoomCodeType, sid types.SessionIdType, token string) RoomEntry {
	return RoomEntry{Type: tag, RoomCode: code, SessionID: sid, ReconnectToken: token}
}

// PlayerLeft announces a departure; reason is "leave", "timeout", or "kick".
type PlayerLeft struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	Reason    string              `json:"reason,omitempty"`
}

func NewPlayerLeft(sid types.SessionIdType, reason string) PlayerLeft {
	return PlayerLeft{Type: "player_left", SessionID: sid, Reason: reason}
}

// PlayerReady relays a ready toggle to the rest of the room.
type PlayerReady struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	Ready     bool                `json:"ready"`
}

func NewPlayerReady(sid types.SessionIdType, ready bool) PlayerReady {
	return PlayerReady{Type: "player_ready", SessionID: sid, Ready: ready}
}

// RoomSummary is one row of a lobby listing.
type RoomSummary struct {
	Code        types.RoomCodeType `json:"code"`
	Name        string             `json:"name"`
	HostName    string             `json:"hostName"`
	PlayerCount int                `json:"playerCount"`
	MaxPlayers  int                `json:"maxPlayers"`
	Status      types.RoomStatus   `json:"status"`
}

// RoomList answers a list_rooms request.
type RoomList struct {
	Type  string        `json:"type"`
	Rooms []RoomSummary `json:"rooms"`
}

func NewRoomList(rooms []RoomSummary) RoomList {
	if rooms == nil {
		rooms = []RoomSummary{}
	}
	return RoomList{Type: "room_list", Rooms: rooms}
}
