package warfront

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

type selectRoleMsg struct {
	Role string `json:"role"`
}

type selectTeamMsg struct {
	Team string `json:"team"`
}

type readyMsg struct {
	Ready bool `json:"ready"`
}

type lineClearMsg struct {
	Lines int `json:"lines"`
}

type comboMsg struct {
	Count int `json:"count"`
}

type soldierMoveMsg struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Cell int     `json:"cell"`
}

type hitMsg struct {
	TargetID string  `json:"targetId"`
	Damage   float64 `json:"damage"`
}

type diedMsg struct {
	KillerID string `json:"killerId"`
}

type mineMsg struct {
	BlockType string `json:"blockType"`
}

type placeMsg struct {
	Cell int `json:"cell"`
}

type commandMsg struct {
	Ability    string `json:"ability"`
	TargetCell *int   `json:"targetCell,omitempty"`
	TargetTeam string `json:"targetTeam,omitempty"`
}

type chatMsg struct {
	Text string `json:"text"`
}

// Server→client payloads.

type playerView struct {
	SessionID types.SessionIdType `json:"sessionId"`
	Name      string              `json:"name"`
	Color     string              `json:"color"`
	Team      types.TeamIdType    `json:"team"`
	Role      types.RoleType      `json:"role"`
	Ready     bool                `json:"ready"`
	Connected bool                `json:"connected"`
	HP        int                 `json:"hp"`
	Dead      bool                `json:"dead"`
	Cell      int                 `json:"cell"`
	Kills     int                 `json:"kills"`
	Deaths    int                 `json:"deaths"`
}

func (p *Player) view() playerView {
	return playerView{
		SessionID: p.SID,
		Name:      p.Name,
		Color:     p.Color,
		Team:      p.Team,
		Role:      p.Role,
		Ready:     p.Ready,
		Connected: p.Connected,
		HP:        p.HP,
		Dead:      p.Dead,
		Cell:      p.Cell,
		Kills:     p.Kills,
		Deaths:    p.Deaths,
	}
}

type cellView struct {
	Index    int                          `json:"index"`
	X        int                          `json:"x"`
	Y        int                          `json:"y"`
	Owner    types.TeamIdType             `json:"owner"`
	Health   float64                      `json:"health"`
	Fort     int                          `json:"fort"`
	Progress map[types.TeamIdType]float64 `json:"progress"`
}

func (c *Cell) view() cellView {
	return cellView{
		Index:    c.Index,
		X:        c.X,
		Y:        c.Y,
		Owner:    c.Owner,
		Health:   c.Health,
		Fort:     c.Fort,
		Progress: c.Progress,
	}
}

type roomStateMsg struct {
	Type       string              `json:"type"`
	Code       types.RoomCodeType  `json:"code"`
	Name       string              `json:"name"`
	Status     types.RoomStatus    `json:"status"`
	HostID     types.SessionIdType `json:"hostId"`
	MaxPlayers int                 `json:"maxPlayers"`
	GridW      int                 `json:"gridW"`
	GridH      int                 `json:"gridH"`
	Players    []playerView        `json:"players"`
}

type roleSelectedMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	Role      types.RoleType      `json:"role"`
}

type teamSelectedMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	Team      types.TeamIdType    `json:"team"`
}

type territoryUpdateMsg struct {
	Type   string                   `json:"type"`
	Tick   uint64                   `json:"tick"`
	Cells  []cellView               `json:"cells"`
	Counts map[types.TeamIdType]int `json:"counts"`
}

type resourcesUpdateMsg struct {
	Type  string                            `json:"type"`
	Pools map[types.TeamIdType]ResourcePool `json:"pools"`
}

type teamScoresMsg struct {
	Type      string                       `json:"type"`
	Scores    map[types.TeamIdType]float64 `json:"scores"`
	Territory map[types.TeamIdType]int     `json:"territory"`
}

type effectAppliedMsg struct {
	Type      string              `json:"type"`
	EffectID  int64               `json:"effectId"`
	Kind      string              `json:"kind"`
	Scope     string              `json:"scope"`
	Source    types.SessionIdType `json:"source"`
	Team      types.TeamIdType    `json:"team,omitempty"`
	Cell      int                 `json:"cell,omitempty"`
	Magnitude float64             `json:"magnitude"`
	DurationM int64               `json:"durationMs"`
}

type effectExpiredMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	EffectID  int64               `json:"effectId"`
	Kind      string              `json:"kind"`
}

type soldierMovedMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	X         float64             `json:"x"`
	Y         float64             `json:"y"`
	Cell      int                 `json:"cell"`
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
	KillerID  string              `json:"killerId"`
}

type scanResultMsg struct {
	Type    string       `json:"type"`
	Cell    int          `json:"cell"`
	Enemies []playerView `json:"enemies"`
}

type chatMessageMsg struct {
	Type      string              `json:"type"`
	SessionID types.SessionIdType `json:"sessionId"`
	Name      string              `json:"name"`
	Text      string              `json:"text"`
}

type gameOverMsg struct {
	Type      string                       `json:"type"`
	Reason    string                       `json:"reason"`
	Winner    types.TeamIdType             `json:"winner"`
	Scores    map[types.TeamIdType]float64 `json:"scores"`
	Territory map[types.TeamIdType]int     `json:"territory"`
}
