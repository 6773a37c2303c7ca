package board

import (
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/config"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/world"
)

// snapshotFor builds the periodic state update for one player, culled to
// their vision diamond. Side boards and anomalies are global intel and ship
// whole. Caller holds the room lock.
func (r *Room) snapshotFor(p *Player, cfg *config.BoardConfig) stateUpdate {
	radius := cfg.VisionRadius
	cull := radius + 2 // overscan so tiles never pop in at the edge

	tiles := make([]tileView, 0, 2*cull*cull)
	r.Grid.VisitL1(p.X, p.Y, cull, func(x, y int, t world.Tile) {
		tiles = append(tiles, tileView{X: x, Y: y, Block: t.Block, Biome: t.Biome})
	})

	players := make([]playerView, 0, len(r.Players))
	for _, sid := range r.order {
		other := r.Players[sid]
		if other == nil {
			continue
		}
		if other.SID == p.SID || world.L1Dist(p.X, p.Y, other.X, other.Y) <= radius {
			players = append(players, other.view())
		}
	}

	mobs := make([]mobView, 0, len(r.Mobs))
	for _, mob := range r.Mobs {
		if world.L1Dist(p.X, p.Y, mob.X, mob.Y) <= radius {
			mobs = append(mobs, mob.view())
		}
	}

	raidMobs := make([]raidMobView, 0, len(r.RaidMobs))
	for _, raid := range r.RaidMobs {
		if raid.Side != sideMain || world.L1Dist(p.X, p.Y, raid.X, raid.Y) <= radius {
			raidMobs = append(raidMobs, raid.view())
		}
	}

	corruption := make([][]corruptionNodeView, len(r.Sides))
	for i, sb := range r.Sides {
		if sb != nil {
			corruption[i] = sb.view()
		}
	}

	anomalies := make([]anomalyView, 0, len(r.Anomalies))
	for _, a := range r.Anomalies {
		anomalies = append(anomalies, anomalyView{
			ID:         a.ID,
			Side:       a.Side,
			WavesDone:  a.WavesSpawned,
			WavesTotal: a.MaxWaves,
		})
	}

	return stateUpdate{
		Type:       "mc_state_update",
		Tick:       r.Tick,
		TimeOfDay:  float64(r.TimeOfDay) / float64(dayLength(cfg)),
		Phase:      r.Phase,
		Day:        r.Day,
		Self:       p.selfView(),
		Tiles:      tiles,
		Players:    players,
		Mobs:       mobs,
		RaidMobs:   raidMobs,
		Corruption: corruption,
		Anomalies:  anomalies,
	}
}
