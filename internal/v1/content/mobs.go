package content

// Mob ids.
const (
	MobZombie   MobID = "zombie"
	MobSkeleton MobID = "skeleton"
	MobSpider   MobID = "spider"
	MobCow      MobID = "cow"
	MobPig      MobID = "pig"
	MobSheep    MobID = "sheep"
	MobHusk     MobID = "husk"
	MobRavager  MobID = "ravager"
)

// MobStats describes one mob kind.
type MobStats struct {
	Health  int
	Damage  int
	Hostile bool
	Drops   []Drop
}

// Mobs is the mob registry.
var Mobs = map[MobID]MobStats{
	MobZombie:   {Health: 20, Damage: 3, Hostile: true, Drops: []Drop{{ItemRawMeat, 1, 0.5}}},
	MobSkeleton: {Health: 16, Damage: 4, Hostile: true, Drops: []Drop{{ItemStick, 2, 0.7}}},
	MobSpider:   {Health: 14, Damage: 2, Hostile: true},
	MobCow:      {Health: 10, Drops: []Drop{{ItemRawMeat, 2, 1.0}}},
	MobPig:      {Health: 8, Drops: []Drop{{ItemRawMeat, 1, 1.0}}},
	MobSheep:    {Health: 8, Drops: []Drop{{ItemRawMeat, 1, 0.8}}},
	MobHusk:     {Health: 24, Damage: 4, Hostile: true, Drops: []Drop{{ItemRawIron, 1, 0.3}}},
	MobRavager:  {Health: 40, Damage: 6, Hostile: true, Drops: []Drop{{ItemDiamond, 1, 0.2}}},
}

// Ordered type slices. Random picks index into these so a seeded stream
// produces the same mob kind on every run; never iterate the map for that.
var (
	HostileMobTypes = []MobID{MobZombie, MobSkeleton, MobSpider}
	PassiveMobTypes = []MobID{MobCow, MobPig, MobSheep}
	RaidMobTypes    = []MobID{MobHusk, MobRavager}
)

// MobByID looks up mob stats; ok is false for unknown ids.
func MobByID(id MobID) (MobStats, bool) {
	m, ok := Mobs[id]
	return m, ok
}
