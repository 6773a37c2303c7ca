package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Game holds every gameplay constant the simulations read. Values ship with
// defaults and can be overridden per-deployment through a TOML file named by
// GAME_CONFIG. Ticks are simulation ticks, not wall time, unless the field is
// a time.Duration.
type Game struct {
	Session   SessionConfig   `toml:"session"`
	Board     BoardConfig     `toml:"board"`
	Warfront  WarfrontConfig  `toml:"warfront"`
	Rhythm    RhythmConfig    `toml:"rhythm"`
	Arena     ArenaConfig     `toml:"arena"`
	OpenWorld OpenWorldConfig `toml:"openworld"`
	Switch    SwitchConfig    `toml:"switch"`
}

type SessionConfig struct {
	HeartbeatInterval time.Duration `toml:"heartbeat_interval"`
	ClientTimeout     time.Duration `toml:"client_timeout"`
	ReconnectGrace    time.Duration `toml:"reconnect_grace"`
	JanitorInterval   time.Duration `toml:"janitor_interval"`
	RoomStaleAfter    time.Duration `toml:"room_stale_after"`
}

type BoardConfig struct {
	TickRateHz        int `toml:"tick_rate_hz"`
	BoardW            int `toml:"board_w"`
	BoardH            int `toml:"board_h"`
	SideBoardW        int `toml:"side_board_w"`
	SideBoardH        int `toml:"side_board_h"`
	MaxPlayers        int `toml:"max_players"`
	MinPlayers        int `toml:"min_players"`
	CountdownSeconds  int `toml:"countdown_seconds"`
	VisionRadius      int `toml:"vision_radius"`
	StateUpdateTicks  int `toml:"state_update_ticks"`
	MoveCooldownTicks int `toml:"move_cooldown_ticks"`
	AttackCooldown    int `toml:"attack_cooldown_ticks"`
	AttackRange       int `toml:"attack_range"`
	RespawnTicks      int `toml:"respawn_ticks"`

	HungerIntervalTicks int `toml:"hunger_interval_ticks"`
	StarveDamageTicks   int `toml:"starve_damage_ticks"`

	MobMoveTicks     int `toml:"mob_move_ticks"`
	MobSpawnTicks    int `toml:"mob_spawn_ticks"`
	MaxMobs          int `toml:"max_mobs"`
	MobAggroRadius   int `toml:"mob_aggro_radius"`
	MobAttackDamage  int `toml:"mob_attack_damage"`
	SurvivalDays     int `toml:"survival_days"`
	DayTicks         int `toml:"day_ticks"`
	DuskTicks        int `toml:"dusk_ticks"`
	NightTicks       int `toml:"night_ticks"`
	DawnTicks        int `toml:"dawn_ticks"`
	CorruptionSeed   int `toml:"corruption_seed_ticks"`
	CorruptionGrowth int `toml:"corruption_growth_ticks"`
	CorruptionMax    int `toml:"corruption_max_level"`
	CorruptionCap    int `toml:"corruption_node_cap"`

	CorruptionSpreadChance float64 `toml:"corruption_spread_chance"`

	RaidWaveSize      int `toml:"raid_wave_size"`
	RaidIntervalTicks int `toml:"raid_interval_ticks"`
	RaidMaxWaves      int `toml:"raid_max_waves"`
}

type WarfrontConfig struct {
	TickRateHz       int     `toml:"tick_rate_hz"`
	GridW            int     `toml:"grid_w"`
	GridH            int     `toml:"grid_h"`
	MaxPlayers       int     `toml:"max_players"`
	MinPlayers       int     `toml:"min_players"`
	CountdownSeconds int     `toml:"countdown_seconds"`
	CaptureRate      float64 `toml:"capture_rate"`
	CaptureThreshold float64 `toml:"capture_threshold"`
	ContestedFactor  float64 `toml:"contested_factor"`
	DecayRate        float64 `toml:"decay_rate"`
	CellHealthMax    float64 `toml:"cell_health_max"`
	FortMaxLevel     int     `toml:"fort_max_level"`
	TerritoryTicks   int     `toml:"territory_broadcast_ticks"`
	ScoreTicks       int     `toml:"score_broadcast_ticks"`
	MatchSeconds     int     `toml:"match_seconds"`
	HoldWinSeconds   int     `toml:"hold_win_seconds"`
	HoldWinCells     int     `toml:"hold_win_cells"`
}

type RhythmConfig struct {
	MaxPlayers       int           `toml:"max_players"`
	MinPlayers       int           `toml:"min_players"`
	CountdownSeconds int           `toml:"countdown_seconds"`
	PointRange       int           `toml:"point_range"`
	RankedTimeout    time.Duration `toml:"ranked_timeout"`
	QueueRetry       time.Duration `toml:"queue_retry"`
}

type ArenaConfig struct {
	MaxPlayers       int `toml:"max_players"`
	MinPlayers       int `toml:"min_players"`
	CountdownSeconds int `toml:"countdown_seconds"`
	KillTarget       int `toml:"kill_target"`
}

type OpenWorldConfig struct {
	ViewChunks  int `toml:"view_chunks"`
	WorldChunkW int `toml:"world_chunks_w"`
	WorldChunkD int `toml:"world_chunks_d"`
}

type SwitchConfig struct {
	Rounds           int `toml:"rounds"`
	RoundSeconds     int `toml:"round_seconds"`
	MaxPlayers       int `toml:"max_players"`
	MinPlayers       int `toml:"min_players"`
	CountdownSeconds int `toml:"countdown_seconds"`
}

// LoadGame reads gameplay constants, starting from defaults and overlaying
// the TOML file when a path is given.
func LoadGame(path string) (*Game, error) {
	g := DefaultGame()
	if path == "" {
		return g, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("parse game config %s: %w", path, err)
	}
	return g, nil
}

func DefaultGame() *Game {
	return &Game{
		Session: SessionConfig{
			HeartbeatInterval: 30 * time.Second,
			ClientTimeout:     45 * time.Second,
			ReconnectGrace:    60 * time.Second,
			JanitorInterval:   60 * time.Second,
			RoomStaleAfter:    24 * time.Hour,
		},
		Board: BoardConfig{
			TickRateHz:        10,
			BoardW:            48,
			BoardH:            48,
			SideBoardW:        8,
			SideBoardH:        48,
			MaxPlayers:        8,
			MinPlayers:        1,
			CountdownSeconds:  3,
			VisionRadius:      8,
			StateUpdateTicks:  5,
			MoveCooldownTicks: 2,
			AttackCooldown:    5,
			AttackRange:       1,
			RespawnTicks:      50,

			HungerIntervalTicks: 100,
			StarveDamageTicks:   30,

			MobMoveTicks:    3,
			MobSpawnTicks:   50,
			MaxMobs:         20,
			MobAggroRadius:  12,
			MobAttackDamage: 0, // 0 means use the mob's own stats

			SurvivalDays: 3,
			DayTicks:     600,
			DuskTicks:    100,
			NightTicks:   300,
			DawnTicks:    100,

			CorruptionSeed:         200,
			CorruptionGrowth:       100,
			CorruptionMax:          5,
			CorruptionCap:          12,
			CorruptionSpreadChance: 0.25,

			RaidWaveSize:      3,
			RaidIntervalTicks: 100,
			RaidMaxWaves:      3,
		},
		Warfront: WarfrontConfig{
			TickRateHz:       10,
			GridW:            4,
			GridH:            4,
			MaxPlayers:       16,
			MinPlayers:       2,
			CountdownSeconds: 5,
			CaptureRate:      0.5,
			CaptureThreshold: 100,
			ContestedFactor:  0.15,
			DecayRate:        0.5,
			CellHealthMax:    100,
			FortMaxLevel:     5,
			TerritoryTicks:   10,
			ScoreTicks:       20,
			MatchSeconds:     600,
			HoldWinSeconds:   30,
			HoldWinCells:     12,
		},
		Rhythm: RhythmConfig{
			MaxPlayers:       4,
			MinPlayers:       2,
			CountdownSeconds: 3,
			PointRange:       200,
			RankedTimeout:    10 * time.Second,
			QueueRetry:       2 * time.Second,
		},
		Arena: ArenaConfig{
			MaxPlayers:       6,
			MinPlayers:       2,
			CountdownSeconds: 3,
			KillTarget:       10,
		},
		OpenWorld: OpenWorldConfig{
			ViewChunks:  4,
			WorldChunkW: 32,
			WorldChunkD: 32,
		},
		Switch: SwitchConfig{
			Rounds:           5,
			RoundSeconds:     60,
			MaxPlayers:       8,
			MinPlayers:       2,
			CountdownSeconds: 3,
		},
	}
}
