package switchmode

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

type scoreMsg struct {
	Points int `json:"points"`
}

type chatMsg struct {
	Text string `json:"text"`
}

// Server→client payloads.

type playerView struct {
	SessionID  types.SessionIdType `json:"sessionId"`
	Name       string              `json:"name"`
	Color      string              `json:"color"`
	Ready      bool                `json:"ready"`
	Connected  bool                `json:"connected"`
	Score      int                 `json:"score"`
	RoundScore int                 `json:"roundScore"`
}

func (p *Player) view() playerView {
	return playerView{
		SessionID:  p.SID,
		Name:       p.Name,
		Color:      p.Color,
		Ready:      p.Ready,
		Connected:  p.Connected,
		Score:      p.Score,
		RoundScore: p.RoundScore,
	}
}

type roomStateMsg struct {
	Type       string              `json:"type"`
	Code       types.RoomCodeType  `json:"code"`
	Name       string              `json:"name"`
	Status     types.RoomStatus    `json:"status"`
	HostID     types.SessionIdType `json:"hostId"`
	MaxPlayers int                 `json:"maxPlayers"`
	Rounds     int                 `json:"rounds"`
	Round      int                 `json:"round"`
	Players    []playerView        `json:"players"`
}

type roundStartMsg struct {
	Type    string `json:"type"`
	Round   int    `json:"round"`
	Seconds int    `json:"seconds"`
}

type scoreUpdateMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	Round     int                 `json:"round"`
	Score     int                 `json:"score"`
	Total     int                 `json:"total"`
}

type roundEndMsg struct {
	Type   string                      `json:"type"`
	Round  int                         `json:"round"`
	Scores map[types.SessionIdType]int `json:"scores"`
	Totals map[types.SessionIdType]int `json:"totals"`
}

type gameOverMsg struct {
	Type   string                      `json:"type"`
	Winner types.SessionIdType         `json:"winner"`
	Totals map[types.SessionIdType]int `json:"totals"`
}

type chatMessageMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	Name      string              `json:"name"`
	Text      string              `json:"text"`
}
