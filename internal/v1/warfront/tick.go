package warfront

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/logging"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
)

// runTick advances the match one step: effects first so role actions from
// the previous tick land before capture math, then capture, then the sweeps
// and broadcasts. Caller holds the room lock.
func (m *Manager) runTick(r *Room) {
	r.Tick++
	m.drainEffects(r)
	m.advanceCapture(r)
	m.sweepActiveEffects(r)

	if r.Tick%uint64(m.cfg.TerritoryTicks) == 0 {
		m.broadcast(r, r.territoryMsg())
	}
	if r.Tick%uint64(m.cfg.ScoreTicks) == 0 {
		m.broadcast(r, resourcesUpdateMsg{Type: "wf_resources_update", Pools: r.Pools})
		m.broadcast(r, teamScoresMsg{
			Type:      "wf_team_scores",
			Scores:    r.Scores,
			Territory: r.territoryCounts(),
		})
	}

	m.checkWin(r)
}

func (r *Room) territoryMsg() territoryUpdateMsg {
	cells := make([]cellView, 0, len(r.Cells))
	for _, c := range r.Cells {
		cells = append(cells, c.view())
	}
	return territoryUpdateMsg{
		Type:   "wf_territory_update",
		Tick:   r.Tick,
		Cells:  cells,
		Counts: r.territoryCounts(),
	}
}

// advanceCapture runs the per-cell capture math: soldiers standing in a cell
// push their team's progress, fortification slows them, and absent teams
// decay. Crossing the threshold flips the owner, restores health, and clears
// every team's progress in the same tick.
func (m *Manager) advanceCapture(r *Room) {
	// soldiers per cell per team
	presence := make(map[int]map[types.TeamIdType]int)
	for _, sid := range r.order {
		p := r.Players[sid]
		if p == nil || !p.Connected || p.Dead || p.Role != types.RoleSoldier || p.Cell < 0 {
			continue
		}
		if presence[p.Cell] == nil {
			presence[p.Cell] = make(map[types.TeamIdType]int)
		}
		presence[p.Cell][p.Team]++
	}

	teams := r.teams()
	for _, c := range r.Cells {
		byTeam := presence[c.Index]
		slow := 1 - float64(c.Fort)*m.cfg.ContestedFactor
		if slow < 0.1 {
			slow = 0.1
		}

		var winner types.TeamIdType
		best := 0.0
		for _, team := range teams {
			if team == c.Owner {
				continue
			}
			if n := byTeam[team]; n > 0 {
				c.Progress[team] += m.cfg.CaptureRate * float64(n) * slow
			} else if c.Progress[team] > 0 {
				c.Progress[team] -= m.cfg.DecayRate
				if c.Progress[team] <= 0 {
					delete(c.Progress, team)
				}
			}
			if p := c.Progress[team]; p >= m.cfg.CaptureThreshold && p > best {
				winner = team
				best = p
			}
		}

		if winner != "" {
			c.Owner = winner
			c.Health = m.cfg.CellHealthMax
			c.Fort = 0
			c.Progress = make(map[types.TeamIdType]float64)
		}
	}
}

// checkWin evaluates the three win conditions in precedence order: time
// limit, FFA conquest, then team domination by continuous hold.
func (m *Manager) checkWin(r *Room) {
	counts := r.territoryCounts()

	if time.Since(r.StartedAt) >= time.Duration(m.cfg.MatchSeconds)*time.Second {
		m.endGame(r, "time_limit", leadingTeam(counts, r.Scores))
		return
	}

	if r.isFFA() {
		for team, n := range counts {
			if n >= ffaWinCells {
				m.endGame(r, "conquest", team)
				return
			}
		}
		return
	}

	// team mode: hold 75% of the grid continuously
	var holding types.TeamIdType
	for team, n := range counts {
		if n >= m.cfg.HoldWinCells {
			holding = team
			break
		}
	}
	switch {
	case holding == "":
		r.holdTeam = ""
	case holding != r.holdTeam:
		r.holdTeam = holding
		r.holdSince = time.Now()
	case time.Since(r.holdSince) >= time.Duration(m.cfg.HoldWinSeconds)*time.Second:
		m.endGame(r, "domination", holding)
	}
}

// leadingTeam breaks the time-limit tie: most territory, then score.
func leadingTeam(counts map[types.TeamIdType]int, scores map[types.TeamIdType]float64) types.TeamIdType {
	var best types.TeamIdType
	bestCount := -1
	bestScore := -1.0
	for team := range scores {
		n := counts[team]
		s := scores[team]
		if n > bestCount || (n == bestCount && s > bestScore) {
			best = team
			bestCount = n
			bestScore = s
		}
	}
	return best
}

// endGame finishes the room; the loop observes the status flip and stops.
func (m *Manager) endGame(r *Room, reason string, winner types.TeamIdType) {
	r.Status = types.StatusFinished
	m.broadcast(r, gameOverMsg{
		Type:      "wf_game_over",
		Reason:    reason,
		Winner:    winner,
		Scores:    r.Scores,
		Territory: r.territoryCounts(),
	})
	logging.Info(context.Background(), "Warfront game over",
		zap.String("roomCode", string(r.Code)),
		zap.String("reason", reason),
		zap.String("winner", string(winner)))
}
