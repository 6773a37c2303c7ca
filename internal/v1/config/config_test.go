package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setupTestEnv clears the config env vars and returns a cleanup that
// restores the originals.
func setupTestEnv(t *testing.T) func() {
	keys := []string{
		"HOST", "PORT", "ALLOWED_ORIGINS", "REDIS_ADDR", "REDIS_PASSWORD",
		"GAME_CONFIG", "OTEL_EXPORTER_OTLP_ENDPOINT", "LOG_LEVEL",
		"DEVELOPMENT_MODE", "RATE_LIMIT_WS_IP", "RATE_LIMIT_WS_MSG",
		"SHUTDOWN_TIMEOUT",
	}
	orig := map[string]string{}
	for _, k := range keys {
		orig[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	return func() {
		for k, v := range orig {
			if v != "" {
				os.Setenv(k, v)
			} else {
				os.Unsetenv(k)
			}
		}
	}
}

func TestValidateEnv_Defaults(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	cfg, err := ValidateEnv()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Host != "0.0.0.0" {
		t.Errorf("Expected HOST to default to '0.0.0.0', got '%s'", cfg.Host)
	}
	if cfg.Port != "3001" {
		t.Errorf("Expected PORT to default to '3001', got '%s'", cfg.Port)
	}
	if cfg.Addr() != "0.0.0.0:3001" {
		t.Errorf("Expected Addr() '0.0.0.0:3001', got '%s'", cfg.Addr())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected LOG_LEVEL to default to 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.PersistenceEnabled() {
		t.Error("Expected persistence to be disabled without REDIS_ADDR")
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected SHUTDOWN_TIMEOUT to default to 10s, got %v", cfg.ShutdownTimeout)
	}
}

func TestValidateEnv_InvalidPort(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("PORT", "notaport")

	_, err := ValidateEnv()
	if err == nil {
		t.Fatal("Expected error for invalid PORT")
	}
	if !strings.Contains(err.Error(), "PORT") {
		t.Errorf("Expected error to mention PORT, got: %v", err)
	}
}

func TestValidateEnv_InvalidRedisAddr(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("REDIS_ADDR", "nocolon")

	_, err := ValidateEnv()
	if err == nil {
		t.Fatal("Expected error for invalid REDIS_ADDR")
	}
}

func TestValidateEnv_ValidRedisEnablesPersistence(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("REDIS_ADDR", "localhost:6379")
	os.Setenv("REDIS_PASSWORD", "hunter2")

	cfg, err := ValidateEnv()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !cfg.PersistenceEnabled() {
		t.Error("Expected persistence to be enabled")
	}
	if cfg.RedisPassword != "hunter2" {
		t.Error("Expected REDIS_PASSWORD to be carried through")
	}
}

func TestValidateEnv_CollectsMultipleErrors(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("PORT", "999999")
	os.Setenv("REDIS_ADDR", "bad")
	os.Setenv("SHUTDOWN_TIMEOUT", "soon")

	_, err := ValidateEnv()
	if err == nil {
		t.Fatal("Expected error")
	}
	for _, want := range []string{"PORT", "REDIS_ADDR", "SHUTDOWN_TIMEOUT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected combined error to mention %s, got: %v", want, err)
		}
	}
}

func TestValidateEnv_MissingGameConfigFile(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("GAME_CONFIG", "/definitely/not/here.toml")

	_, err := ValidateEnv()
	if err == nil {
		t.Fatal("Expected error for unreadable GAME_CONFIG")
	}
}

func TestIsValidHostPort(t *testing.T) {
	cases := map[string]bool{
		"localhost:6379": true,
		"10.0.0.1:1":     true,
		"host:0":         false,
		"host:notnum":    false,
		"nocolon":        false,
		":6379":          false,
	}
	for addr, want := range cases {
		if got := isValidHostPort(addr); got != want {
			t.Errorf("isValidHostPort(%q) = %v, want %v", addr, got, want)
		}
	}
}

func TestLoadGameDefaults(t *testing.T) {
	g, err := LoadGame("")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if g.Board.TickRateHz != 10 {
		t.Errorf("Expected board tick rate 10, got %d", g.Board.TickRateHz)
	}
	if g.Board.BoardW != 48 || g.Board.BoardH != 48 {
		t.Errorf("Expected 48x48 board, got %dx%d", g.Board.BoardW, g.Board.BoardH)
	}
	if g.Warfront.GridW*g.Warfront.GridH != 16 {
		t.Errorf("Expected 16 territory cells, got %d", g.Warfront.GridW*g.Warfront.GridH)
	}
	if g.Session.ReconnectGrace != 60*time.Second {
		t.Errorf("Expected 60s reconnect grace, got %v", g.Session.ReconnectGrace)
	}
	if g.Rhythm.PointRange != 200 {
		t.Errorf("Expected ranked point range 200, got %d", g.Rhythm.PointRange)
	}
}

func TestLoadGameOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.toml")
	body := "[board]\ntick_rate_hz = 20\nmax_players = 4\n\n[warfront]\ncapture_rate = 1.5\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	g, err := LoadGame(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if g.Board.TickRateHz != 20 {
		t.Errorf("Expected overridden tick rate 20, got %d", g.Board.TickRateHz)
	}
	if g.Board.MaxPlayers != 4 {
		t.Errorf("Expected overridden max players 4, got %d", g.Board.MaxPlayers)
	}
	if g.Warfront.CaptureRate != 1.5 {
		t.Errorf("Expected overridden capture rate 1.5, got %f", g.Warfront.CaptureRate)
	}
	// untouched values keep their defaults
	if g.Board.VisionRadius != 8 {
		t.Errorf("Expected default vision radius 8, got %d", g.Board.VisionRadius)
	}
	if g.Arena.KillTarget != 10 {
		t.Errorf("Expected default kill target 10, got %d", g.Arena.KillTarget)
	}
}

func TestLoadGameMissingFile(t *testing.T) {
	_, err := LoadGame("/definitely/not/here.toml")
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}
