package openworld

import "github.com/Azuretier/RhythmGame-sub002/internal/v1/types"

// Client→server payloads.

type joinMsg struct {
	PlayerName string `json:"playerName"`
}

type moveMsg struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

type setBlockMsg struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Z       int    `json:"z"`
	BlockID uint16 `json:"blockId"`
}

type breakBlockMsg struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

type chunkRequestMsg struct {
	CX int `json:"cx"`
	CZ int `json:"cz"`
}

type chatMsg struct {
	Text string `json:"text"`
}

// Server→client payloads.

type playerView struct {
	SessionID types.SessionIdType `json:"sessionId"`
	Name      string              `json:"name"`
	Color     string              `json:"color"`
	Connected bool                `json:"connected"`
	X         float64             `json:"x"`
	Y         float64             `json:"y"`
	Z         float64             `json:"z"`
	Yaw       float64             `json:"yaw"`
	Pitch     float64             `json:"pitch"`
}

func (p *Player) view() playerView {
	return playerView{
		SessionID: p.SID,
		Name:      p.Name,
		Color:     p.Color,
		Connected: p.Connected,
		X:         p.X,
		Y:         p.Y,
		Z:         p.Z,
		Yaw:       p.Yaw,
		Pitch:     p.Pitch,
	}
}

type spawnPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

type worldStateMsg struct {
	Type       string       `json:"type"`
	Seed       int64        `json:"seed"`
	Spawn      spawnPoint   `json:"spawn"`
	ViewChunks int          `json:"viewChunks"`
	Players    []playerView `json:"players"`
}

type playerJoinedMsg struct {
	Type   string     `json:"type"`
	Player playerView `json:"player"`
}

type playerMovedMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	X         float64             `json:"x"`
	Y         float64             `json:"y"`
	Z         float64             `json:"z"`
	Yaw       float64             `json:"yaw"`
	Pitch     float64             `json:"pitch"`
}

type blockUpdateMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	X         int                 `json:"x"`
	Y         int                 `json:"y"`
	Z         int                 `json:"z"`
	BlockID   uint16              `json:"blockId"`
}

type chunkDataMsg struct {
	Type string   `json:"type"`
	CX   int      `json:"cx"`
	CZ   int      `json:"cz"`
	Runs [][2]int `json:"runs"`
}

type chatMessageMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	Name      string              `json:"name"`
	Text      string              `json:"text"`
}
