package rhythm

import "github.com/Azuretier/RhythmGame-sub002/internal/v1/types"

// Client→server payloads.

type createRoomMsg struct {
	PlayerName string `json:"playerName"`
	RoomName   string `json:"roomName"`
	IsPublic   bool   `json:"isPublic"`
}

type joinRoomMsg struct {
	Code       string `json:"code"`
	PlayerName string `json:"playerName"`
}

type readyMsg struct {
	Ready bool `json:"ready"`
}

type chatMsg struct {
	Text string `json:"text"`
}

type queueRankedMsg struct {
	PlayerName string `json:"playerName"`
	Points     int    `json:"points"`
}

type scoreUpdateMsg struct {
	Score int `json:"score"`
	Combo int `json:"combo"`
}

type gameFinishedMsg struct {
	Score int `json:"score"`
}

// Server→client payloads.

type playerView struct {
	SessionID types.SessionIdType `json:"sessionId"`
	Name      string              `json:"name"`
	Color     string              `json:"color"`
	Ready     bool                `json:"ready"`
	Connected bool                `json:"connected"`
	Score     int                 `json:"score"`
	Finished  bool                `json:"finished"`
}

func (p *Player) view() playerView {
	return playerView{
		SessionID: p.SID,
		Name:      p.Name,
		Color:     p.Color,
		Ready:     p.Ready,
		Connected: p.Connected,
		Score:     p.Score,
		Finished:  p.Finished,
	}
}

type roomStateMsg struct {
	Type       string              `json:"type"`
	Code       types.RoomCodeType  `json:"code"`
	Name       string              `json:"name"`
	Status     types.RoomStatus    `json:"status"`
	HostID     types.SessionIdType `json:"hostId"`
	MaxPlayers int                 `json:"maxPlayers"`
	Players    []playerView        `json:"players"`
}

type scoreUpdatedMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	Score     int                 `json:"score"`
	Combo     int                 `json:"combo"`
}

type playerFinishedMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	Score     int                 `json:"score"`
}

type standing struct {
	SessionID types.SessionIdType `json:"sessionId"`
	Name      string              `json:"name"`
	Score     int                 `json:"score"`
	MaxCombo  int                 `json:"maxCombo"`
}

type gameOverMsg struct {
	Type      string              `json:"type"`
	Winner    types.SessionIdType `json:"winner"`
	Standings []standing          `json:"standings"`
}

type rankedQueuedMsg struct {
	Type string `json:"type"`
}

type queueCancelledMsg struct {
	Type string `json:"type"`
}

type chatMessageMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	Name      string              `json:"name"`
	Text      string              `json:"text"`
}
