// Package warfront hosts the territory-control mode: four roles acting on a
// shared 4×4 territory grid through a cross-mode effect queue, with per-team
// resource pools and capture-driven win conditions.
package warfront

import (
	"sync"
	"time"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/game"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/prng"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

const (
	maxHP       = 100
	ffaWinCells = 6

	// effect target scopes
	scopeSelf      = "self"
	scopeTeam      = "team"
	scopeEnemyTeam = "enemy_team"
	scopeTerritory = "territory"
	scopeAll       = "all"
)

// Effect kinds. Instant kinds mutate room state once when dequeued; timed
// kinds attach an ActiveEffect to every scope-matched player.
const (
	kindTerritoryHeal   = "territory_heal"
	kindTerritoryDamage = "territory_damage"
	kindFortify         = "fortification_buff"
	kindResourceGrant   = "resource_grant"
	kindScoreBonus      = "score_bonus"
	kindScan            = "scan"
	kindShieldBoost     = "shield_boost"
	kindBuildSpeed      = "build_speed"
	kindAttackBoost     = "attack_boost"
	kindEnemySlow       = "enemy_slow"
	kindAmmoResupply    = "ammo_resupply"
)

// ResourcePool is one team's counters. All access happens under the room
// lock; Spend is what makes commander ability costs atomic.
type ResourcePool map[string]int

// Spend debits every cost counter, or none when any is short.
func (p ResourcePool) Spend(cost map[string]int) bool {
	for res, n := range cost {
		if p[res] < n {
			return false
		}
	}
	for res, n := range cost {
		p[res] -= n
	}
	return true
}

// Grant credits one counter.
func (p ResourcePool) Grant(resource string, n int) {
	if n > 0 {
		p[resource] += n
	}
}

// Effect is one queued cross-mode event. Enqueued by a role action handler
// during tick N, dequeued and applied at the start of tick N+1 in FIFO order.
type Effect struct {
	ID         int64
	Source     types.SessionIdType
	SourceTeam types.TeamIdType
	Role       types.RoleType
	Kind       string
	Scope      string
	TargetTeam types.TeamIdType
	TargetCell int // -1 when the effect has no cell target
	Resource   string
	Magnitude  float64
	Duration   time.Duration
	IssuedAt   time.Time
}

// ActiveEffect is a timed modifier attached to a player, swept once expired.
type ActiveEffect struct {
	ID        int64            `json:"id"`
	Kind      string           `json:"kind"`
	Magnitude float64          `json:"magnitude"`
	ExpiresAt time.Time        `json:"-"`
	Source    types.RoleType   `json:"source"`
	Team      types.TeamIdType `json:"-"`
}

// Cell is one territory square. Owner "" means neutral, and a neutral cell
// always has zero health; capture restores full health and clears progress.
type Cell struct {
	Index    int
	X, Y     int
	Owner    types.TeamIdType
	Health   float64
	Fort     int
	Progress map[types.TeamIdType]float64
}

// neutralize returns a cell to no-man's-land. Clearing progress here keeps
// ownership transitions and progress resets inside the same tick.
func (c *Cell) neutralize() {
	c.Owner = ""
	c.Health = 0
	c.Fort = 0
	c.Progress = make(map[types.TeamIdType]float64)
}

// Player is one warfront seat.
type Player struct {
	SID       types.SessionIdType
	Name      string
	Color     string
	Ready     bool
	Connected bool
	JoinedAt  time.Time

	Team types.TeamIdType
	Role types.RoleType
	Cell int // current or assigned territory cell, -1 outside
	X, Y float64
	HP   int
	Dead bool

	Kills          int
	Deaths         int
	DamageDealt    int
	LinesCleared   int
	ResourcesMined int

	Active []ActiveEffect

	graceTimer *time.Timer
}

// resetRoleStats zeroes the per-role counters; switching roles in the lobby
// starts the new role from scratch.
func (p *Player) resetRoleStats() {
	p.Kills = 0
	p.Deaths = 0
	p.DamageDealt = 0
	p.LinesCleared = 0
	p.ResourcesMined = 0
	p.Cell = -1
	p.Active = nil
}

// Room is one warfront match. All state behind mu.
type Room struct {
	mu sync.Mutex

	Code       types.RoomCodeType
	Name       string
	Public     bool
	HostSID    types.SessionIdType
	Status     types.RoomStatus
	CreatedAt  time.Time
	MaxPlayers int

	Players map[types.SessionIdType]*Player
	order   []types.SessionIdType

	Seed      int64
	Tick      uint64
	StartedAt time.Time

	Cells  []*Cell
	Pools  map[types.TeamIdType]ResourcePool
	Scores map[types.TeamIdType]float64

	queue        []Effect
	nextEffectID int64

	holdTeam  types.TeamIdType
	holdSince time.Time

	rng         *prng.Source
	loop        *game.Loop
	colorCursor int
}

func (r *Room) nextID() int64 {
	r.nextEffectID++
	return r.nextEffectID
}

// enqueue appends an effect for the next tick's drain.
func (r *Room) enqueue(e Effect) {
	e.ID = r.nextID()
	e.IssuedAt = time.Now()
	r.queue = append(r.queue, e)
}

// cell returns the territory cell by index, nil when out of range.
func (r *Room) cell(idx int) *Cell {
	if idx < 0 || idx >= len(r.Cells) {
		return nil
	}
	return r.Cells[idx]
}

// teams lists the distinct team ids currently seated, in join order.
func (r *Room) teams() []types.TeamIdType {
	seen := make(map[types.TeamIdType]bool)
	var out []types.TeamIdType
	for _, sid := range r.order {
		p := r.Players[sid]
		if p == nil || p.Team == "" || seen[p.Team] {
			continue
		}
		seen[p.Team] = true
		out = append(out, p.Team)
	}
	return out
}

// isFFA reports free-for-all: no team fields two or more players.
func (r *Room) isFFA() bool {
	count := make(map[types.TeamIdType]int)
	for _, p := range r.Players {
		if p.Team != "" {
			count[p.Team]++
			if count[p.Team] > 1 {
				return false
			}
		}
	}
	return true
}

// territoryCounts tallies owned cells per team.
func (r *Room) territoryCounts() map[types.TeamIdType]int {
	counts := make(map[types.TeamIdType]int)
	for _, c := range r.Cells {
		if c.Owner != "" {
			counts[c.Owner]++
		}
	}
	return counts
}

// teamMembers lists connected players on a team.
func (r *Room) teamMembers(team types.TeamIdType) []*Player {
	var out []*Player
	for _, sid := range r.order {
		p := r.Players[sid]
		if p != nil && p.Connected && p.Team == team {
			out = append(out, p)
		}
	}
	return out
}
