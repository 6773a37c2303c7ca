package warfront

import (
	"time"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// Tuning constants for role-sourced effects. Magnitudes are in cell-health
// points unless the kind says otherwise.
const (
	healPerLine        = 15.0
	tetrisDamage       = 20.0
	killTerritoryHit   = 15.0
	killScoreBonus     = 10.0
	energyPerCombo     = 5
	shieldBoostFactor  = 0.5
	buildSpeedFactor   = 0.3
	shieldBoostWindow  = 10 * time.Second
	buildSpeedWindow   = 15 * time.Second
	ammoResupplyWindow = 10 * time.Second
)

// ability is one commander command: its pool cost and the effect it emits.
type ability struct {
	Cost      map[string]int
	Kind      string
	Scope     string
	Magnitude float64
	Duration  time.Duration
	NeedsCell bool
	NeedsTeam bool
}

// commanderAbilities is the static command table. Unknown abilities are
// rejected before any resources move.
var commanderAbilities = map[string]ability{
	"scan": {
		Cost: map[string]int{"energy": 20}, Kind: kindScan,
		Scope: scopeTeam, NeedsCell: true,
	},
	"shield_generator": {
		Cost: map[string]int{"iron": 50}, Kind: kindShieldBoost,
		Scope: scopeTeam, Magnitude: shieldBoostFactor, Duration: 15 * time.Second,
	},
	"attack_boost": {
		Cost: map[string]int{"energy": 30}, Kind: kindAttackBoost,
		Scope: scopeTeam, Magnitude: 0.25, Duration: 10 * time.Second,
	},
	"enemy_slow": {
		Cost: map[string]int{"energy": 35, "stone": 10}, Kind: kindEnemySlow,
		Scope: scopeEnemyTeam, Magnitude: 0.3, Duration: 8 * time.Second, NeedsTeam: true,
	},
	"artillery_strike": {
		Cost: map[string]int{"iron": 30, "stone": 20}, Kind: kindTerritoryDamage,
		Scope: scopeTerritory, Magnitude: 30, NeedsCell: true,
	},
}

// miningYield maps an engineer's mined block type to the team resource it
// grants.
type miningYield struct {
	Resource string
	Amount   int
}

var miningYields = map[string]miningYield{
	"stone":       {"stone", 2},
	"wood":        {"wood", 2},
	"coal_ore":    {"energy", 2},
	"iron_ore":    {"iron", 2},
	"gold_ore":    {"gold", 3},
	"diamond_ore": {"diamond", 1},
}

// timedKind reports whether an effect attaches to players instead of
// mutating room state once.
func timedKind(kind string) bool {
	switch kind {
	case kindShieldBoost, kindBuildSpeed, kindAttackBoost, kindEnemySlow, kindAmmoResupply:
		return true
	}
	return false
}

// drainEffects applies the queued effects in enqueue order. Effects whose
// referenced cells or teams no longer resolve are silently dropped. Caller
// holds the room lock.
func (m *Manager) drainEffects(r *Room) {
	if len(r.queue) == 0 {
		return
	}
	pending := r.queue
	r.queue = nil
	for i := range pending {
		m.applyEffect(r, &pending[i])
	}
}

// applyEffect executes one dequeued effect. Instant mutations complete in
// full before the next effect runs.
func (m *Manager) applyEffect(r *Room, e *Effect) {
	switch e.Kind {
	case kindTerritoryHeal:
		c := r.cell(e.TargetCell)
		if c == nil || c.Owner == "" {
			return
		}
		c.Health += e.Magnitude
		if c.Health > m.cfg.CellHealthMax {
			c.Health = m.cfg.CellHealthMax
		}

	case kindTerritoryDamage:
		c := r.cell(e.TargetCell)
		if c == nil || c.Owner == "" {
			return
		}
		c.Health -= e.Magnitude
		if c.Health <= 0 {
			c.neutralize()
		}

	case kindFortify:
		c := r.cell(e.TargetCell)
		if c == nil || c.Owner != e.SourceTeam {
			return
		}
		if c.Fort < m.cfg.FortMaxLevel {
			c.Fort++
		}

	case kindResourceGrant:
		pool, ok := r.Pools[e.TargetTeam]
		if !ok {
			return
		}
		pool.Grant(e.Resource, int(e.Magnitude))

	case kindScoreBonus:
		if _, ok := r.Pools[e.TargetTeam]; !ok {
			return
		}
		r.Scores[e.TargetTeam] += e.Magnitude

	case kindScan:
		m.applyScan(r, e)
		return // scan emits its own result, not the generic applied frame

	default:
		if !timedKind(e.Kind) {
			return
		}
		m.attachToScope(r, e)
	}

	m.broadcast(r, effectAppliedMsg{
		Type:      "wf_effect_applied",
		EffectID:  e.ID,
		Kind:      e.Kind,
		Scope:     e.Scope,
		Source:    e.Source,
		Team:      e.TargetTeam,
		Cell:      e.TargetCell,
		Magnitude: e.Magnitude,
		DurationM: e.Duration.Milliseconds(),
	})
}

// attachToScope pins a timed effect onto every player the scope matches.
func (m *Manager) attachToScope(r *Room, e *Effect) {
	expires := time.Now().Add(e.Duration)
	for _, sid := range r.order {
		p := r.Players[sid]
		if p == nil || !m.scopeMatches(e, p) {
			continue
		}
		p.Active = append(p.Active, ActiveEffect{
			ID:        e.ID,
			Kind:      e.Kind,
			Magnitude: e.Magnitude,
			ExpiresAt: expires,
			Source:    e.Role,
			Team:      e.SourceTeam,
		})
	}
}

func (m *Manager) scopeMatches(e *Effect, p *Player) bool {
	switch e.Scope {
	case scopeSelf:
		return p.SID == e.Source
	case scopeTeam:
		return p.Team == e.SourceTeam
	case scopeEnemyTeam:
		if e.TargetTeam != "" {
			return p.Team == e.TargetTeam
		}
		return p.Team != e.SourceTeam
	case scopeAll:
		return true
	}
	return false
}

// applyScan reveals enemy players inside the target cell to the scanning
// team.
func (m *Manager) applyScan(r *Room, e *Effect) {
	c := r.cell(e.TargetCell)
	if c == nil {
		return
	}
	var enemies []playerView
	for _, sid := range r.order {
		p := r.Players[sid]
		if p == nil || p.Team == e.SourceTeam || p.Cell != e.TargetCell || p.Dead {
			continue
		}
		enemies = append(enemies, p.view())
	}
	result := scanResultMsg{Type: "wf_scan_result", Cell: e.TargetCell, Enemies: enemies}
	for _, member := range r.teamMembers(e.SourceTeam) {
		m.sender.Send(member.SID, result)
	}
}

// sweepActiveEffects drops expired active effects and announces each expiry.
// Caller holds the room lock.
func (m *Manager) sweepActiveEffects(r *Room) {
	now := time.Now()
	for _, sid := range r.order {
		p := r.Players[sid]
		if p == nil || len(p.Active) == 0 {
			continue
		}
		kept := p.Active[:0]
		for _, ae := range p.Active {
			if now.After(ae.ExpiresAt) {
				m.broadcast(r, effectExpiredMsg{
					Type:      "wf_effect_expired",
					SessionID: p.SID,
					EffectID:  ae.ID,
					Kind:      ae.Kind,
				})
				continue
			}
			kept = append(kept, ae)
		}
		p.Active = kept
	}
}

// --- role action → effect constructors; all run under the room lock ---

// defenderLineClear heals the defender's assigned territory, with a team
// shield on multi-line clears.
func (r *Room) defenderLineClear(p *Player, lines int) {
	if lines <= 0 {
		return
	}
	p.LinesCleared += lines
	r.enqueue(Effect{
		Source: p.SID, SourceTeam: p.Team, Role: p.Role,
		Kind: kindTerritoryHeal, Scope: scopeTerritory,
		TargetCell: p.Cell, Magnitude: healPerLine * float64(lines),
	})
	if lines >= 2 {
		r.enqueue(Effect{
			Source: p.SID, SourceTeam: p.Team, Role: p.Role,
			Kind: kindShieldBoost, Scope: scopeTeam,
			TargetCell: -1, Magnitude: shieldBoostFactor, Duration: shieldBoostWindow,
		})
	}
}

// defenderCombo pulses energy to the team for combos of three or more.
func (r *Room) defenderCombo(p *Player, count int) {
	if count < 3 {
		return
	}
	r.enqueue(Effect{
		Source: p.SID, SourceTeam: p.Team, Role: p.Role,
		Kind: kindResourceGrant, Scope: scopeTeam, TargetTeam: p.Team,
		TargetCell: -1, Resource: "energy", Magnitude: float64(energyPerCombo * count),
	})
}

func (r *Room) defenderTSpin(p *Player) {
	r.enqueue(Effect{
		Source: p.SID, SourceTeam: p.Team, Role: p.Role,
		Kind: kindBuildSpeed, Scope: scopeTeam,
		TargetCell: -1, Magnitude: buildSpeedFactor, Duration: buildSpeedWindow,
	})
}

// defenderTetris damages a random enemy-owned territory; no enemy territory
// means the action fizzles.
func (r *Room) defenderTetris(p *Player) {
	var candidates []int
	for _, c := range r.Cells {
		if c.Owner != "" && c.Owner != p.Team {
			candidates = append(candidates, c.Index)
		}
	}
	if len(candidates) == 0 {
		return
	}
	target := candidates[r.rng.NextInt(0, len(candidates))]
	r.enqueue(Effect{
		Source: p.SID, SourceTeam: p.Team, Role: p.Role,
		Kind: kindTerritoryDamage, Scope: scopeTerritory,
		TargetCell: target, Magnitude: tetrisDamage,
	})
}

// soldierKill attributes a kill and turns it into a score bonus plus damage
// to the victim's current territory.
func (r *Room) soldierKill(killer *Player, victim *Player) {
	killer.Kills++
	victim.Deaths++
	r.enqueue(Effect{
		Source: killer.SID, SourceTeam: killer.Team, Role: killer.Role,
		Kind: kindScoreBonus, Scope: scopeTeam, TargetTeam: killer.Team,
		TargetCell: -1, Magnitude: killScoreBonus,
	})
	if victim.Cell >= 0 {
		r.enqueue(Effect{
			Source: killer.SID, SourceTeam: killer.Team, Role: killer.Role,
			Kind: kindTerritoryDamage, Scope: scopeTerritory,
			TargetCell: victim.Cell, Magnitude: killTerritoryHit,
		})
	}
}

// engineerMine converts a mined block into a team resource grant.
func (r *Room) engineerMine(p *Player, blockType string) bool {
	yield, ok := miningYields[blockType]
	if !ok {
		return false
	}
	p.ResourcesMined += yield.Amount
	r.enqueue(Effect{
		Source: p.SID, SourceTeam: p.Team, Role: p.Role,
		Kind: kindResourceGrant, Scope: scopeTeam, TargetTeam: p.Team,
		TargetCell: -1, Resource: yield.Resource, Magnitude: float64(yield.Amount),
	})
	return true
}

// engineerPlace fortifies an owned cell.
func (r *Room) engineerPlace(p *Player, cellIdx int) {
	r.enqueue(Effect{
		Source: p.SID, SourceTeam: p.Team, Role: p.Role,
		Kind: kindFortify, Scope: scopeTerritory,
		TargetCell: cellIdx,
	})
}

// engineerCraft hands the team an ammo window.
func (r *Room) engineerCraft(p *Player) {
	r.enqueue(Effect{
		Source: p.SID, SourceTeam: p.Team, Role: p.Role,
		Kind: kindAmmoResupply, Scope: scopeTeam,
		TargetCell: -1, Magnitude: 1, Duration: ammoResupplyWindow,
	})
}

// commanderCommand debits the pool and enqueues the ability's effect. The
// spend either fully happens or fully doesn't.
func (r *Room) commanderCommand(p *Player, name string, targetCell *int, targetTeam types.TeamIdType) bool {
	ab, ok := commanderAbilities[name]
	if !ok {
		return false
	}
	cellIdx := -1
	if ab.NeedsCell {
		if targetCell == nil || r.cell(*targetCell) == nil {
			return false
		}
		cellIdx = *targetCell
	}
	if ab.NeedsTeam && targetTeam == "" {
		return false
	}
	pool, ok := r.Pools[p.Team]
	if !ok || !pool.Spend(ab.Cost) {
		return false
	}
	r.enqueue(Effect{
		Source: p.SID, SourceTeam: p.Team, Role: p.Role,
		Kind: ab.Kind, Scope: ab.Scope, TargetTeam: targetTeam,
		TargetCell: cellIdx, Magnitude: ab.Magnitude, Duration: ab.Duration,
	})
	return true
}
