package arena

import "github.com/Azuretier/RhythmGame-sub002/internal/v1/types"

// Client→server payloads.

type queueMsg struct {
	PlayerName string `json:"playerName"`
}

type positionMsg struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

type vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type shootMsg struct {
	Origin vec3 `json:"origin"`
	Dir    vec3 `json:"dir"`
}

type hitMsg struct {
	TargetID string  `json:"targetId"`
	Damage   float64 `json:"damage"`
}

// Server→client payloads.

type playerView struct {
	SessionID types.SessionIdType `json:"sessionId"`
	Name      string              `json:"name"`
	Color     string              `json:"color"`
	Connected bool                `json:"connected"`
	HP        int                 `json:"hp"`
	Dead      bool                `json:"dead"`
	Kills     int                 `json:"kills"`
	Deaths    int                 `json:"deaths"`
}

func (p *Player) view() playerView {
	return playerView{
		SessionID: p.SID,
		Name:      p.Name,
		Color:     p.Color,
		Connected: p.Connected,
		HP:        p.HP,
		Dead:      p.Dead,
		Kills:     p.Kills,
		Deaths:    p.Deaths,
	}
}

type roomStateMsg struct {
	Type       string              `json:"type"`
	Code       types.RoomCodeType  `json:"code"`
	Status     types.RoomStatus    `json:"status"`
	HostID     types.SessionIdType `json:"hostId"`
	MaxPlayers int                 `json:"maxPlayers"`
	KillTarget int                 `json:"killTarget"`
	Players    []playerView        `json:"players"`
}

type queuedMsg struct {
	Type string `json:"type"`
}

type queueCancelledMsg struct {
	Type string `json:"type"`
}

type positionRelayMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	X         float64             `json:"x"`
	Y         float64             `json:"y"`
	Z         float64             `json:"z"`
	Yaw       float64             `json:"yaw"`
	Pitch     float64             `json:"pitch"`
}

type shotRelayMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	Origin    vec3                `json:"origin"`
	Dir       vec3                `json:"dir"`
}

type hitRelayMsg struct {
	Type     string              `json:"type"`
	SourceID types.SessionIdType `json:"sourceId"`
	TargetID types.SessionIdType `json:"targetId"`
	Damage   float64             `json:"damage"`
	HP       int                 `json:"hp"`
}

type playerDiedMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	KillerID  types.SessionIdType `json:"killerId"`
	Kills     int                 `json:"kills"`
}

type gameOverMsg struct {
	Type       string              `json:"type"`
	Reason     string              `json:"reason"`
	Winner     types.SessionIdType `json:"winner"`
	Scoreboard []playerView        `json:"scoreboard"`
}
