// Package board hosts the voxel survival board game: an authoritative grid
// world ticking at a fixed rate with mining, mobs, hunger, day phases, and
// the corruption/raid pressure on the two side boards.
package board

import (
	"sync"
	"time"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/config"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/content"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/game"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/prng"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/world"
)

// inventorySize is the number of slots every player carries; the first
// hotbarSize are selectable.
const (
	inventorySize = 16
	hotbarSize    = 9
)

const (
	maxHP         = 20
	maxHunger     = 20
	fistDamage    = 1
	sideLeft      = "left"
	sideRight     = "right"
	sideMain      = "main"
	raidStepTicks = 5
	raidAggro     = 20
)

// Slot is one inventory slot; a zero Count means empty.
type Slot struct {
	Item  content.ItemID
	Count int
}

// Inventory is a fixed-size slot array with stacking adds.
type Inventory [inventorySize]Slot

// Add stacks count of item into the inventory, filling existing stacks
// first. Returns how many did not fit.
func (inv *Inventory) Add(item content.ItemID, count int) int {
	props, ok := content.ItemByID(item)
	if !ok || count <= 0 {
		return count
	}
	max := props.MaxStack
	if max <= 0 {
		max = 1
	}
	for i := range inv {
		if inv[i].Count > 0 && inv[i].Item == item && inv[i].Count < max {
			take := min(count, max-inv[i].Count)
			inv[i].Count += take
			count -= take
			if count == 0 {
				return 0
			}
		}
	}
	for i := range inv {
		if inv[i].Count == 0 {
			take := min(count, max)
			inv[i] = Slot{Item: item, Count: take}
			count -= take
			if count == 0 {
				return 0
			}
		}
	}
	return count
}

// Consume removes one unit from a slot, clearing it when empty.
func (inv *Inventory) Consume(slot int) bool {
	if slot < 0 || slot >= inventorySize || inv[slot].Count == 0 {
		return false
	}
	inv[slot].Count--
	if inv[slot].Count == 0 {
		inv[slot] = Slot{}
	}
	return true
}

// Counts flattens the inventory into item→count, the shape CanCraft reads.
func (inv *Inventory) Counts() map[content.ItemID]int {
	counts := make(map[content.ItemID]int)
	for _, s := range inv {
		if s.Count > 0 {
			counts[s.Item] += s.Count
		}
	}
	return counts
}

// RemoveItems takes the given item counts out of the inventory. The caller
// must have verified availability; partial removal never happens.
func (inv *Inventory) RemoveItems(need map[content.ItemID]int) bool {
	counts := inv.Counts()
	for item, n := range need {
		if counts[item] < n {
			return false
		}
	}
	for item, n := range need {
		for i := range inv {
			if n == 0 {
				break
			}
			if inv[i].Count > 0 && inv[i].Item == item {
				take := min(n, inv[i].Count)
				inv[i].Count -= take
				if inv[i].Count == 0 {
					inv[i] = Slot{}
				}
				n -= take
			}
		}
	}
	return true
}

// ArmorDefense is the best defense value carried anywhere in the inventory;
// armor works by possession, not by an equip slot.
func (inv *Inventory) ArmorDefense() int {
	best := 0
	for _, s := range inv {
		if s.Count == 0 {
			continue
		}
		if props, ok := content.ItemByID(s.Item); ok && props.Defense > best {
			best = props.Defense
		}
	}
	return best
}

// MiningJob is one in-progress dig.
type MiningJob struct {
	X, Y     int
	Progress int
	Total    int
}

// Player is one seat in a board room.
type Player struct {
	SID       types.SessionIdType
	Name      string
	Color     string
	Ready     bool
	Connected bool
	JoinedAt  time.Time
	SpawnSlot int

	X, Y   int
	HP     int
	Hunger int
	Dead   bool

	RespawnTick    uint64
	LastMoveTick   uint64
	LastAttackTick uint64
	SelectedSlot   int
	Mining         *MiningJob
	Inventory      Inventory

	BlocksMined int
	Kills       int

	graceTimer *time.Timer
}

func (p *Player) view() playerView {
	v := playerView{
		SessionID: p.SID,
		Name:      p.Name,
		X:         p.X,
		Y:         p.Y,
		HP:        p.HP,
		Color:     p.Color,
		Dead:      p.Dead,
		Connected: p.Connected,
	}
	if p.Mining != nil {
		v.Mining = &miningView{X: p.Mining.X, Y: p.Mining.Y, Progress: p.Mining.Progress, Total: p.Mining.Total}
	}
	return v
}

func (p *Player) selfView() selfView {
	inv := make([]slotView, inventorySize)
	for i, s := range p.Inventory {
		inv[i] = slotView{Item: s.Item, Count: s.Count}
	}
	return selfView{
		X:            p.X,
		Y:            p.Y,
		HP:           p.HP,
		MaxHP:        maxHP,
		Hunger:       p.Hunger,
		Dead:         p.Dead,
		SelectedSlot: p.SelectedSlot,
		Inventory:    inv,
		BlocksMined:  p.BlocksMined,
		Kills:        p.Kills,
	}
}

// heldItem returns the selected slot's item properties; the zero Item means
// bare hands.
func (p *Player) heldItem() content.Item {
	s := p.Inventory[p.SelectedSlot]
	if s.Count == 0 {
		return content.Item{}
	}
	props, _ := content.ItemByID(s.Item)
	return props
}

// Mob is a grid-dwelling creature on the main board.
type Mob struct {
	ID           int64
	Type         content.MobID
	X, Y         int
	HP           int
	Hostile      bool
	TargetSID    types.SessionIdType
	LastMoveTick uint64
}

func (m *Mob) view() mobView {
	return mobView{ID: m.ID, Type: m.Type, X: m.X, Y: m.Y, HP: m.HP}
}

// RaidMob marches in from a side board during an anomaly.
type RaidMob struct {
	Mob
	AnomalyID  int64
	OriginSide string
	Side       string // main, left, or right
}

func (m *RaidMob) view() raidMobView {
	return raidMobView{ID: m.ID, Type: m.Type, Side: m.Side, X: m.X, Y: m.Y, HP: m.HP}
}

// SideBoard is one of the two corruption boards flanking the main grid.
type SideBoard struct {
	Name  string
	W, H  int
	Nodes map[[2]int]int // position → corruption level
}

func newSideBoard(name string, w, h int) *SideBoard {
	return &SideBoard{Name: name, W: w, H: h, Nodes: make(map[[2]int]int)}
}

func (sb *SideBoard) view() []corruptionNodeView {
	out := make([]corruptionNodeView, 0, len(sb.Nodes))
	for pos, level := range sb.Nodes {
		out = append(out, corruptionNodeView{X: pos[0], Y: pos[1], Level: level})
	}
	return out
}

// Anomaly is a wave-spawning event on a side board.
type Anomaly struct {
	ID           int64
	Side         string
	WavesSpawned int
	MaxWaves     int
	NextWaveTick uint64
}

// Room is one board game session. All state behind mu; the tick loop and the
// message handlers both lock it.
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
	order   []types.SessionIdType // join order; drives host transfer and spawn slots

	Seed      int64
	Tick      uint64
	TimeOfDay int
	Phase     string
	Day       int

	Grid      *world.Grid
	Mobs      map[int64]*Mob
	RaidMobs  map[int64]*RaidMob
	Sides     [2]*SideBoard
	Anomalies []*Anomaly

	nextEntityID int64
	rng          *prng.Source
	loop         *game.Loop
	colorCursor  int
}

func (r *Room) nextID() int64 {
	r.nextEntityID++
	return r.nextEntityID
}

// phaseAt maps a position in the day cycle to its phase name.
func phaseAt(timeOfDay int, cfg *config.BoardConfig) string {
	switch {
	case timeOfDay < cfg.DayTicks:
		return "day"
	case timeOfDay < cfg.DayTicks+cfg.DuskTicks:
		return "dusk"
	case timeOfDay < cfg.DayTicks+cfg.DuskTicks+cfg.NightTicks:
		return "night"
	default:
		return "dawn"
	}
}

func dayLength(cfg *config.BoardConfig) int {
	return cfg.DayTicks + cfg.DuskTicks + cfg.NightTicks + cfg.DawnTicks
}

// spawnPosition returns the deterministic spawn for a slot: slots ring the
// board center, stepping outward until a walkable tile appears.
func (r *Room) spawnPosition(slot int) (int, int) {
	cx, cy := r.Grid.W/2, r.Grid.H/2
	offsets := [][2]int{{0, 0}, {2, 0}, {-2, 0}, {0, 2}, {0, -2}, {2, 2}, {-2, -2}, {2, -2}, {-2, 2}}
	base := offsets[slot%len(offsets)]
	x, y := cx+base[0], cy+base[1]

	for radius := 0; radius < r.Grid.W; radius++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				tx, ty := x+dx, y+dy
				if r.Grid.Walkable(tx, ty) {
					return tx, ty
				}
			}
		}
	}
	return cx, cy
}

// playerAt returns the live player occupying (x, y), if any.
func (r *Room) playerAt(x, y int) *Player {
	for _, p := range r.Players {
		if !p.Dead && p.X == x && p.Y == y {
			return p
		}
	}
	return nil
}

// alivePlayers lists connected, living players; most AI targets draw from
// this set.
func (r *Room) alivePlayers() []*Player {
	out := make([]*Player, 0, len(r.Players))
	for _, sid := range r.order {
		p := r.Players[sid]
		if p != nil && p.Connected && !p.Dead {
			out = append(out, p)
		}
	}
	return out
}

// sideByName resolves a side board, nil for "main".
func (r *Room) sideByName(name string) *SideBoard {
	for _, sb := range r.Sides {
		if sb != nil && sb.Name == name {
			return sb
		}
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
