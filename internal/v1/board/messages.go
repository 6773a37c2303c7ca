package board

import (
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/content"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// Client→server payloads. Tags arrive with the mc_ prefix already stripped
// off by the handler switch.

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

type moveMsg struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

type mineMsg struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type attackMsg struct {
	TargetID string `json:"targetId"`
}

type placeBlockMsg struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Slot int `json:"slot"`
}

type slotMsg struct {
	Slot int `json:"slot"`
}

type craftMsg struct {
	RecipeID string `json:"recipeId"`
}

type chatMsg struct {
	Text string `json:"text"`
}

// Server→client payloads. Room lifecycle rides the shared protocol
// envelopes; everything below is board simulation traffic.

type tileView struct {
	X     int             `json:"x"`
	Y     int             `json:"y"`
	Block content.BlockID `json:"block"`
	Biome content.Biome   `json:"biome"`
}

type playerView struct {
	SessionID types.SessionIdType `json:"sessionId"`
	Name      string              `json:"name"`
	X         int                 `json:"x"`
	Y         int                 `json:"y"`
	HP        int                 `json:"hp"`
	Color     string              `json:"color"`
	Dead      bool                `json:"dead"`
	Connected bool                `json:"connected"`
	Mining    *miningView         `json:"mining,omitempty"`
}

type miningView struct {
	X        int `json:"x"`
	Y        int `json:"y"`
	Progress int `json:"progress"`
	Total    int `json:"total"`
}

type mobView struct {
	ID   int64         `json:"id"`
	Type content.MobID `json:"type"`
	X    int           `json:"x"`
	Y    int           `json:"y"`
	HP   int           `json:"hp"`
}

type raidMobView struct {
	ID   int64         `json:"id"`
	Type content.MobID `json:"type"`
	Side string        `json:"side"`
	X    int           `json:"x"`
	Y    int           `json:"y"`
	HP   int           `json:"hp"`
}

type slotView struct {
	Item  content.ItemID `json:"item"`
	Count int            `json:"count"`
}

type selfView struct {
	X            int        `json:"x"`
	Y            int        `json:"y"`
	HP           int        `json:"hp"`
	MaxHP        int        `json:"maxHp"`
	Hunger       int        `json:"hunger"`
	Dead         bool       `json:"dead"`
	SelectedSlot int        `json:"selectedSlot"`
	Inventory    []slotView `json:"inventory"`
	BlocksMined  int        `json:"blocksMined"`
	Kills        int        `json:"kills"`
}

type corruptionNodeView struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Level int `json:"level"`
}

type anomalyView struct {
	ID         int64  `json:"id"`
	Side       string `json:"side"`
	WavesDone  int    `json:"wavesDone"`
	WavesTotal int    `json:"wavesTotal"`
}

type stateUpdate struct {
	Type       string                 `json:"type"`
	Tick       uint64                 `json:"tick"`
	TimeOfDay  float64                `json:"timeOfDay"`
	Phase      string                 `json:"phase"`
	Day        int                    `json:"day"`
	Self       selfView               `json:"self"`
	Tiles      []tileView             `json:"tiles"`
	Players    []playerView           `json:"players"`
	Mobs       []mobView              `json:"mobs"`
	RaidMobs   []raidMobView          `json:"raidMobs"`
	Corruption [][]corruptionNodeView `json:"corruption"`
	Anomalies  []anomalyView          `json:"anomalies"`
}

type roomStateMsg struct {
	Type       string              `json:"type"`
	Code       types.RoomCodeType  `json:"code"`
	Name       string              `json:"name"`
	Status     types.RoomStatus    `json:"status"`
	HostID     types.SessionIdType `json:"hostId"`
	MaxPlayers int                 `json:"maxPlayers"`
	BoardW     int                 `json:"boardW"`
	BoardH     int                 `json:"boardH"`
	Players    []playerView        `json:"players"`
}

type playerMovedMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	X         int                 `json:"x"`
	Y         int                 `json:"y"`
}

type miningStartedMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	X         int                 `json:"x"`
	Y         int                 `json:"y"`
	Total     int                 `json:"total"`
}

type miningCancelledMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
}

type tileMinedMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	X         int                 `json:"x"`
	Y         int                 `json:"y"`
	Block     content.BlockID     `json:"block"`
	Exposed   content.BlockID     `json:"exposed"`
	Drops     []slotView          `json:"drops"`
}

type blockPlacedMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	X         int                 `json:"x"`
	Y         int                 `json:"y"`
	Block     content.BlockID     `json:"block"`
}

type damageMsg struct {
	Type     string `json:"type"`
	TargetID string `json:"targetId"`
	SourceID string `json:"sourceId"`
	Amount   int    `json:"amount"`
	HP       int    `json:"hp"`
}

type mobSpawnedMsg struct {
	Type string  `json:"type"`
	Mob  mobView `json:"mob"`
}

type mobDiedMsg struct {
	Type     string              `json:"type"`
	ID       int64               `json:"id"`
	KillerID types.SessionIdType `json:"killerId"`
	Drops    []slotView          `json:"drops"`
}

type playerDiedMsg struct {
	Type        string              `json:"type"`
	SessionID   types.SessionIdType `json:"sessionId"`
	KillerID    string              `json:"killerId"`
	RespawnTick uint64              `json:"respawnTick"`
}

type playerRespawnedMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	X         int                 `json:"x"`
	Y         int                 `json:"y"`
	HP        int                 `json:"hp"`
	Hunger    int                 `json:"hunger"`
}

type chatMessageMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	Name      string              `json:"name"`
	Text      string              `json:"text"`
}

type dayPhaseMsg struct {
	Type  string `json:"type"`
	Phase string `json:"phase"`
	Day   int    `json:"day"`
}

type anomalyStartMsg struct {
	Type    string      `json:"type"`
	Anomaly anomalyView `json:"anomaly"`
}

type anomalyEndMsg struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

type craftedMsg struct {
	Type     string         `json:"type"`
	RecipeID string         `json:"recipeId"`
	Item     content.ItemID `json:"item"`
	Count    int            `json:"count"`
}

type gameOverMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
	Days   int    `json:"days"`
}
