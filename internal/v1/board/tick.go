package board

import (
	"context"
	"math"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/content"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/logging"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/world"
)

// runTick advances the simulation one step. Caller holds the room lock. Order
// matters: the clock first so everything downstream sees the new tick, the
// snapshot last so clients see the tick's full outcome.
func (m *Manager) runTick(r *Room) {
	r.Tick++
	m.tickClock(r)
	if r.Status != types.StatusPlaying {
		return
	}
	m.tickMining(r)
	m.tickMobs(r)
	m.tickSpawns(r)
	m.tickHunger(r)
	m.tickRespawns(r)
	m.tickCorruption(r)
	m.tickAnomalies(r)
	m.tickRaidMobs(r)
	m.checkDefeat(r)
	if r.Status != types.StatusPlaying {
		return
	}
	if r.Tick%uint64(m.cfg.StateUpdateTicks) == 0 {
		for _, sid := range r.order {
			if p := r.Players[sid]; p != nil && p.Connected {
				m.sender.Send(sid, r.snapshotFor(p, m.cfg))
			}
		}
	}
}

// tickClock advances the day cycle, announces phase changes, despawns
// hostiles at dawn, and ends the game once the survival target is met.
func (m *Manager) tickClock(r *Room) {
	r.TimeOfDay = int(r.Tick % uint64(dayLength(m.cfg)))
	phase := phaseAt(r.TimeOfDay, m.cfg)
	if phase == r.Phase {
		return
	}
	r.Phase = phase

	if phase == "dawn" {
		for id, mob := range r.Mobs {
			if mob.Hostile {
				delete(r.Mobs, id)
			}
		}
	}
	if phase == "day" && r.TimeOfDay == 0 && r.Tick > 0 {
		r.Day++
		if r.Day > m.cfg.SurvivalDays {
			m.endGame(r, "survived")
			return
		}
	}
	m.broadcast(r, dayPhaseMsg{Type: "mc_day_phase", Phase: phase, Day: r.Day})
}

// tickMining advances every active dig by one tick of progress.
func (m *Manager) tickMining(r *Room) {
	for _, sid := range r.order {
		p := r.Players[sid]
		if p == nil || p.Mining == nil || p.Dead {
			continue
		}
		p.Mining.Progress++
		if p.Mining.Progress < p.Mining.Total {
			continue
		}
		job := p.Mining
		tile, ok := r.Grid.Get(job.X, job.Y)
		if !ok {
			p.Mining = nil
			continue
		}
		m.finishMining(r, p, job.X, job.Y, tile)
	}
}

// tickMobs runs main-board mob AI on the mob move cadence. Hostiles chase the
// nearest living player and bite when adjacent; passives drift.
func (m *Manager) tickMobs(r *Room) {
	if r.Tick%uint64(m.cfg.MobMoveTicks) != 0 {
		return
	}
	alive := r.alivePlayers()

	ids := make([]int64, 0, len(r.Mobs))
	for id := range r.Mobs {
		ids = append(ids, id)
	}
	sortInt64s(ids)

	for _, id := range ids {
		mob := r.Mobs[id]
		if mob == nil {
			continue
		}
		if !mob.Hostile {
			m.wanderMob(r, &mob.X, &mob.Y)
			continue
		}
		target := nearestPlayer(alive, mob.X, mob.Y, m.cfg.MobAggroRadius)
		if target == nil {
			// out of aggro range; hostiles hold position
			continue
		}
		if world.L1Dist(mob.X, mob.Y, target.X, target.Y) <= 1 {
			m.mobBite(r, mob.Type, mobIDString(mob.ID), target)
			continue
		}
		m.stepToward(r, &mob.X, &mob.Y, target.X, target.Y)
	}
}

// wanderMob takes one random step with 30% probability, staying on walkable
// ground.
func (m *Manager) wanderMob(r *Room, x, y *int) {
	if !r.rng.Chance(0.3) {
		return
	}
	dirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	d := dirs[r.rng.NextInt(0, 4)]
	nx, ny := *x+d[0], *y+d[1]
	if r.Grid.Walkable(nx, ny) && r.playerAt(nx, ny) == nil {
		*x, *y = nx, ny
	}
}

// stepToward takes one axis-preferring step toward the target, trying the
// longer axis first and falling back to the other.
func (m *Manager) stepToward(r *Room, x, y *int, tx, ty int) {
	dx, dy := sign(tx-*x), sign(ty-*y)
	var steps [][2]int
	if abs(tx-*x) >= abs(ty-*y) {
		steps = [][2]int{{dx, 0}, {0, dy}}
	} else {
		steps = [][2]int{{0, dy}, {dx, 0}}
	}
	for _, s := range steps {
		if s[0] == 0 && s[1] == 0 {
			continue
		}
		nx, ny := *x+s[0], *y+s[1]
		if r.Grid.Walkable(nx, ny) && r.playerAt(nx, ny) == nil {
			*x, *y = nx, ny
			return
		}
	}
}

// mobBite applies a mob attack to a player.
func (m *Manager) mobBite(r *Room, kind content.MobID, sourceID string, target *Player) {
	dmg := m.cfg.MobAttackDamage
	if dmg <= 0 {
		if stats, ok := content.MobByID(kind); ok {
			dmg = stats.Damage
		}
	}
	if dmg <= 0 {
		return
	}
	m.damagePlayer(r, target, dmg, sourceID)
}

// tickSpawns brings mobs into the world on the spawn cadence: hostiles at
// night, passives during the day, up to the population cap.
func (m *Manager) tickSpawns(r *Room) {
	if r.Tick%uint64(m.cfg.MobSpawnTicks) != 0 || len(r.Mobs) >= m.cfg.MaxMobs {
		return
	}
	switch r.Phase {
	case "night":
		kind := content.HostileMobTypes[r.rng.NextInt(0, len(content.HostileMobTypes))]
		m.spawnHostile(r, kind)
	case "day":
		if r.rng.Chance(0.5) {
			kind := content.PassiveMobTypes[r.rng.NextInt(0, len(content.PassiveMobTypes))]
			m.spawnPassive(r, kind)
		}
	}
}

// spawnHostile drops a night hostile around a random live player: a random
// angle at a distance of 6-10 tiles. An unwalkable destination skips this
// spawn interval rather than re-rolling.
func (m *Manager) spawnHostile(r *Room, kind content.MobID) {
	stats, ok := content.MobByID(kind)
	if !ok {
		return
	}
	alive := r.alivePlayers()
	if len(alive) == 0 {
		return
	}
	anchor := alive[r.rng.NextInt(0, len(alive))]
	angle := r.rng.NextFloat(0, 2*math.Pi)
	dist := r.rng.NextFloat(6, 10)
	x := anchor.X + int(math.Round(math.Cos(angle)*dist))
	y := anchor.Y + int(math.Round(math.Sin(angle)*dist))
	if !r.Grid.Walkable(x, y) || r.playerAt(x, y) != nil {
		return
	}
	m.placeMob(r, kind, stats.Health, x, y, true)
}

// spawnPassive places a passive mob on a free walkable tile away from every
// player. Gives up after a bounded number of draws.
func (m *Manager) spawnPassive(r *Room, kind content.MobID) {
	stats, ok := content.MobByID(kind)
	if !ok {
		return
	}
	for attempt := 0; attempt < 16; attempt++ {
		x := r.rng.NextInt(0, r.Grid.W)
		y := r.rng.NextInt(0, r.Grid.H)
		if !r.Grid.Walkable(x, y) || r.playerAt(x, y) != nil {
			continue
		}
		if p := nearestPlayer(r.alivePlayers(), x, y, 4); p != nil {
			continue
		}
		m.placeMob(r, kind, stats.Health, x, y, false)
		return
	}
}

func (m *Manager) placeMob(r *Room, kind content.MobID, hp, x, y int, hostile bool) {
	mob := &Mob{
		ID:      r.nextID(),
		Type:    kind,
		X:       x,
		Y:       y,
		HP:      hp,
		Hostile: hostile,
	}
	r.Mobs[mob.ID] = mob
	m.broadcast(r, mobSpawnedMsg{Type: "mc_mob_spawned", Mob: mob.view()})
}

// tickHunger drains hunger on its interval and applies starvation damage
// once the bar is empty.
func (m *Manager) tickHunger(r *Room) {
	if m.cfg.HungerIntervalTicks > 0 && r.Tick%uint64(m.cfg.HungerIntervalTicks) == 0 {
		for _, p := range r.Players {
			if !p.Dead && p.Hunger > 0 {
				p.Hunger--
			}
		}
	}
	if m.cfg.StarveDamageTicks > 0 && r.Tick%uint64(m.cfg.StarveDamageTicks) == 0 {
		for _, sid := range r.order {
			p := r.Players[sid]
			if p == nil || p.Dead || p.Hunger > 0 {
				continue
			}
			m.damagePlayer(r, p, 1, "starvation")
		}
	}
}

// tickRespawns brings dead players back once their respawn tick arrives.
// Inventory survives death; only position and vitals reset.
func (m *Manager) tickRespawns(r *Room) {
	for _, sid := range r.order {
		p := r.Players[sid]
		if p == nil || !p.Dead || r.Tick < p.RespawnTick {
			continue
		}
		p.Dead = false
		p.HP = maxHP
		// death does not refill the hunger bar, only tops it up to 10
		p.Hunger = max(10, p.Hunger)
		p.X, p.Y = r.spawnPosition(p.SpawnSlot)
		m.broadcast(r, playerRespawnedMsg{
			Type:      "mc_player_respawned",
			SessionID: p.SID,
			X:         p.X,
			Y:         p.Y,
			HP:        p.HP,
			Hunger:    p.Hunger,
		})
	}
}

// tickCorruption seeds new nodes and grows existing ones on the side boards.
// A node that tops out is removed and opens an anomaly on its side.
func (m *Manager) tickCorruption(r *Room) {
	if m.cfg.CorruptionSeed > 0 && r.Tick%uint64(m.cfg.CorruptionSeed) == 0 {
		for _, sb := range r.Sides {
			if sb == nil || len(sb.Nodes) >= m.cfg.CorruptionCap {
				continue
			}
			pos := [2]int{r.rng.NextInt(0, sb.W), r.rng.NextInt(0, sb.H)}
			if _, exists := sb.Nodes[pos]; !exists {
				sb.Nodes[pos] = 1
			}
		}
	}
	if m.cfg.CorruptionGrowth <= 0 || r.Tick%uint64(m.cfg.CorruptionGrowth) != 0 {
		return
	}
	for _, sb := range r.Sides {
		if sb == nil {
			continue
		}
		for _, pos := range sortedNodePositions(sb) {
			level := sb.Nodes[pos] + 1
			sb.Nodes[pos] = level
			if len(sb.Nodes) < m.cfg.CorruptionCap && r.rng.Chance(m.cfg.CorruptionSpreadChance) {
				dirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
				d := dirs[r.rng.NextInt(0, 4)]
				np := [2]int{pos[0] + d[0], pos[1] + d[1]}
				inBounds := np[0] >= 0 && np[0] < sb.W && np[1] >= 0 && np[1] < sb.H
				if _, exists := sb.Nodes[np]; inBounds && !exists {
					sb.Nodes[np] = 1
				}
			}
			if level >= m.cfg.CorruptionMax {
				delete(sb.Nodes, pos)
				m.openAnomaly(r, sb)
			}
		}
	}
}

// openAnomaly starts a raid event on a side board. One anomaly runs per side
// at a time; maturations during a running raid burn off without a new one.
func (m *Manager) openAnomaly(r *Room, sb *SideBoard) {
	if r.anomalyOn(sb.Name) != nil {
		return
	}
	a := &Anomaly{
		ID:           r.nextID(),
		Side:         sb.Name,
		MaxWaves:     m.cfg.RaidMaxWaves,
		NextWaveTick: r.Tick,
	}
	r.Anomalies = append(r.Anomalies, a)
	m.broadcast(r, anomalyStartMsg{Type: "mc_anomaly_start", Anomaly: anomalyView{
		ID: a.ID, Side: a.Side, WavesDone: 0, WavesTotal: a.MaxWaves,
	}})
}

// tickAnomalies spawns raid waves for the running anomalies and retires the
// ones whose waves are done and dead.
func (m *Manager) tickAnomalies(r *Room) {
	remaining := r.Anomalies[:0]
	for _, a := range r.Anomalies {
		if a.WavesSpawned >= a.MaxWaves {
			if !r.anomalyHasMobs(a.ID) {
				m.broadcast(r, anomalyEndMsg{Type: "mc_anomaly_end", ID: a.ID})
				continue
			}
			remaining = append(remaining, a)
			continue
		}
		if r.Tick >= a.NextWaveTick {
			m.spawnRaidWave(r, a)
			a.WavesSpawned++
			a.NextWaveTick = r.Tick + uint64(m.cfg.RaidIntervalTicks)
		}
		remaining = append(remaining, a)
	}
	r.Anomalies = remaining
}

// anomalyOn returns the running anomaly on a side, if any.
func (r *Room) anomalyOn(side string) *Anomaly {
	for _, a := range r.Anomalies {
		if a.Side == side {
			return a
		}
	}
	return nil
}

func (r *Room) anomalyHasMobs(anomalyID int64) bool {
	for _, raid := range r.RaidMobs {
		if raid.AnomalyID == anomalyID {
			return true
		}
	}
	return false
}

// spawnRaidWave drops one wave of raid mobs onto the anomaly's side board,
// at the edge farthest from the main grid so they have to march.
func (m *Manager) spawnRaidWave(r *Room, a *Anomaly) {
	sb := r.sideByName(a.Side)
	if sb == nil {
		return
	}
	entryX := 0
	if a.Side == sideRight {
		entryX = sb.W - 1
	}
	for i := 0; i < m.cfg.RaidWaveSize; i++ {
		kind := content.RaidMobTypes[r.rng.NextInt(0, len(content.RaidMobTypes))]
		stats, ok := content.MobByID(kind)
		if !ok {
			continue
		}
		raid := &RaidMob{
			Mob: Mob{
				ID:      r.nextID(),
				Type:    kind,
				X:       entryX,
				Y:       r.rng.NextInt(0, sb.H),
				HP:      stats.Health,
				Hostile: true,
			},
			AnomalyID:  a.ID,
			OriginSide: a.Side,
			Side:       a.Side,
		}
		r.RaidMobs[raid.ID] = raid
		m.broadcast(r, struct {
			Type string      `json:"type"`
			Mob  raidMobView `json:"mob"`
		}{Type: "mc_raid_mob_spawned", Mob: raid.view()})
	}
}

// tickRaidMobs marches side-board raiders toward the main grid and runs the
// ones that crossed over as aggressive hunters.
func (m *Manager) tickRaidMobs(r *Room) {
	if r.Tick%uint64(raidStepTicks) != 0 {
		return
	}
	alive := r.alivePlayers()

	ids := make([]int64, 0, len(r.RaidMobs))
	for id := range r.RaidMobs {
		ids = append(ids, id)
	}
	sortInt64s(ids)

	for _, id := range ids {
		raid := r.RaidMobs[id]
		if raid == nil {
			continue
		}
		if raid.Side != sideMain {
			m.marchRaidMob(r, raid)
			continue
		}
		target := nearestPlayer(alive, raid.X, raid.Y, raidAggro)
		if target == nil {
			continue
		}
		if world.L1Dist(raid.X, raid.Y, target.X, target.Y) <= 1 {
			m.mobBite(r, raid.Type, mobIDString(raid.ID), target)
			continue
		}
		m.stepToward(r, &raid.X, &raid.Y, target.X, target.Y)
	}
}

// marchRaidMob walks a raider across its side board; crossing the inner edge
// drops it onto the matching edge of the main grid at a walkable tile near
// its row. A raider with no entry tile within three rows despawns.
func (m *Manager) marchRaidMob(r *Room, raid *RaidMob) {
	sb := r.sideByName(raid.Side)
	if sb == nil {
		return
	}
	if raid.Side == sideLeft {
		raid.X++
		if raid.X < sb.W {
			return
		}
	} else {
		raid.X--
		if raid.X >= 0 {
			return
		}
	}

	entryX := 0
	if raid.OriginSide != sideLeft {
		entryX = r.Grid.W - 1
	}
	row := clamp(raid.Y*r.Grid.H/max(1, sb.H), 0, r.Grid.H-1)
	for _, dy := range []int{0, 1, -1, 2, -2, 3, -3} {
		y := row + dy
		if y < 0 || y >= r.Grid.H || !r.Grid.Walkable(entryX, y) {
			continue
		}
		raid.Side = sideMain
		raid.X = entryX
		raid.Y = y
		return
	}
	delete(r.RaidMobs, raid.ID)
}

// checkDefeat ends the game when every seated player is dead at once.
func (m *Manager) checkDefeat(r *Room) {
	if len(r.Players) == 0 {
		return
	}
	for _, p := range r.Players {
		if !p.Dead {
			return
		}
	}
	m.endGame(r, "defeat")
}

// endGame finishes the room and announces the outcome. The loop observes the
// status flip and stops on its own.
func (m *Manager) endGame(r *Room, reason string) {
	r.Status = types.StatusFinished
	m.broadcast(r, gameOverMsg{Type: "mc_game_over", Reason: reason, Days: r.Day})
	logging.Info(context.Background(), "Board game over",
		zap.String("roomCode", string(r.Code)),
		zap.String("reason", reason),
		zap.Int("days", r.Day))
}

// nearestPlayer picks the closest living player within radius, ties broken
// by seat order since the slice is already ordered.
func nearestPlayer(alive []*Player, x, y, radius int) *Player {
	var best *Player
	bestDist := radius + 1
	for _, p := range alive {
		d := world.L1Dist(x, y, p.X, p.Y)
		if d < bestDist {
			best = p
			bestDist = d
		}
	}
	return best
}

// sortedNodePositions orders node keys so growth iterates deterministically.
func sortedNodePositions(sb *SideBoard) [][2]int {
	out := make([][2]int, 0, len(sb.Nodes))
	for pos := range sb.Nodes {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][1] != out[j][1] {
			return out[i][1] < out[j][1]
		}
		return out[i][0] < out[j][0]
	})
	return out
}

func sortInt64s(v []int64) {
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mobIDString(id int64) string {
	return strconv.FormatInt(id, 10)
}
