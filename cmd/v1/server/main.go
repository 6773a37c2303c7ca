package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/Azuretier/RhythmGame-sub002/internal/v1/arena"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/board"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/config"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/dispatch"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/game"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/health"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/lobby"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/logging"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/middleware"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/openworld"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/persist"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/ratelimit"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/reconnect"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/rhythm"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/session"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/switchmode"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/tracing"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/types"
	"github.com/Azuretier/RhythmGame-sub002/internal/v1/warfront"
)

// roomCounter is the slice of per-mode managers the stats endpoints sum over.
type roomCounter interface {
	RoomCount() int
}

// serverStats adapts the session registry and the mode managers to the
// health package's stats source.
type serverStats struct {
	registry *session.Registry
	counters []roomCounter
}

func (s *serverStats) ConnectionCount() int { return s.registry.Count() }

func (s *serverStats) RoomCount() int {
	total := 0
	for _, c := range s.counters {
		total += c.RoomCount()
	}
	return total
}

// shutdownExitCode reduces the shutdown step errors to a process exit code:
// 0 when everything drained inside the timeout, 1 when anything was forced.
func shutdownExitCode(errs ...error) int {
	for _, err := range errs {
		if err != nil {
			return 1
		}
	}
	return 0
}

// splitOrigins parses the comma-separated origin allow-list. A "*" entry (or
// an empty list) means every origin.
func splitOrigins(raw string) []string {
	var out []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if entry == "*" {
			return nil
		}
		out = append(out, entry)
	}
	return out
}

func main() {
	// Load .env for local development; deployed environments set real vars.
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on environment variables")
	}

	cfg, err := config.ValidateEnv()
	if err != nil {
		slog.Error("Environment validation failed", "error", err)
		os.Exit(1)
	}

	if err := logging.Initialize(cfg.DevelopmentMode); err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	ctx := context.Background()

	// Tracing stays off without an OTLP endpoint.
	tp, err := tracing.Setup(ctx, cfg.OTLPEndpoint)
	if err != nil {
		logging.Error(ctx, "Failed to initialize tracing", zap.Error(err))
		os.Exit(1)
	}

	gameCfg := config.DefaultGame()
	if cfg.GameConfigPath != "" {
		gameCfg, err = config.LoadGame(cfg.GameConfigPath)
		if err != nil {
			logging.Error(ctx, "Failed to load game config", zap.Error(err))
			os.Exit(1)
		}
		logging.Info(ctx, "Loaded game config overrides", zap.String("path", cfg.GameConfigPath))
	}

	// --- Persistence (optional) ---
	var store persist.Store = persist.Noop{}
	var redisClient *redis.Client
	if cfg.PersistenceEnabled() {
		rs, err := persist.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logging.Warn(ctx, "Redis unavailable - room persistence disabled", zap.Error(err))
		} else {
			store = rs
			redisClient = redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
			})
		}
	} else {
		logging.Info(ctx, "Room persistence disabled (REDIS_ADDR not set)")
	}

	limiter, err := ratelimit.New(cfg, redisClient)
	if err != nil {
		logging.Error(ctx, "Failed to build rate limiter", zap.Error(err))
		os.Exit(1)
	}

	// --- Shared infrastructure ---
	registry := session.NewRegistry(cfg.AllowedOrigins, gameCfg.Session.HeartbeatInterval, gameCfg.Session.ClientTimeout)
	index := game.NewIndex()
	broker := reconnect.NewBroker(gameCfg.Session.ReconnectGrace)
	orch := lobby.NewOrchestrator()

	// --- Mode managers ---
	rhythmMgr := rhythm.NewManager(registry, index, broker, orch, store, &gameCfg.Rhythm)
	boardMgr := board.NewManager(registry, index, broker, orch, store, &gameCfg.Board)
	openworldMgr := openworld.NewManager(registry, index, broker, &gameCfg.OpenWorld)
	arenaMgr := arena.NewManager(registry, index, broker, orch, &gameCfg.Arena)
	warfrontMgr := warfront.NewManager(registry, index, broker, orch, store, &gameCfg.Warfront)
	switchMgr := switchmode.NewManager(registry, index, broker, orch, store, &gameCfg.Switch)

	dispatcher := dispatch.New(index, broker, registry, registry, limiter)
	dispatcher.Register("mc_", types.ModeBoard, boardMgr)
	dispatcher.Register("mw_", types.ModeOpenWorld, openworldMgr)
	dispatcher.Register("fps_", types.ModeArena, arenaMgr)
	dispatcher.Register("arena_", types.ModeArena, arenaMgr)
	dispatcher.Register("wf_", types.ModeWarfront, warfrontMgr)
	dispatcher.Register("ms_", types.ModeSwitch, switchMgr)
	dispatcher.SetFallback(types.ModeRhythm, rhythmMgr)

	registry.SetHandlers(dispatcher.OnMessage, dispatcher.OnDisconnect)
	registry.StartHeartbeat()

	// --- HTTP surface ---
	if !cfg.DevelopmentMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	if tp != nil {
		router.Use(otelgin.Middleware(tracing.ServiceName))
	}

	corsCfg := cors.DefaultConfig()
	origins := splitOrigins(cfg.AllowedOrigins)
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	router.Use(cors.New(corsCfg))

	stats := &serverStats{
		registry: registry,
		counters: []roomCounter{rhythmMgr, boardMgr, arenaMgr, warfrontMgr, switchMgr},
	}
	healthHandler := health.NewHandler(stats)
	router.GET("/health", healthHandler.Health)
	router.GET("/stats", healthHandler.Stats)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", limiter.ConnectMiddleware(), registry.ServeWs)

	// --- Stale room janitor ---
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	if cfg.PersistenceEnabled() {
		go func() {
			ticker := time.NewTicker(gameCfg.Session.JanitorInterval)
			defer ticker.Stop()
			for {
				select {
				case <-janitorCtx.Done():
					return
				case <-ticker.C:
					n, err := store.CleanupStale(janitorCtx, gameCfg.Session.RoomStaleAfter)
					if err != nil {
						logging.Warn(janitorCtx, "Stale room cleanup failed", zap.Error(err))
					} else if n > 0 {
						logging.Info(janitorCtx, "Removed stale room documents", zap.Int("count", n))
					}
				}
			}
		}()
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		logging.Info(ctx, "Game server starting", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error(ctx, "Failed to run server", zap.Error(err))
			syscall.Kill(os.Getpid(), syscall.SIGTERM)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	stopJanitor()

	// Stop the edge first so no new frames reach the managers, then stop the
	// managers' loops and queues.
	regErr := registry.Shutdown(shutdownCtx)
	if regErr != nil {
		logging.Error(shutdownCtx, "Error during registry shutdown", zap.Error(regErr))
	}
	rhythmMgr.Shutdown()
	boardMgr.Shutdown()
	openworldMgr.Shutdown()
	arenaMgr.Shutdown()
	warfrontMgr.Shutdown()
	switchMgr.Shutdown()
	orchErr := orch.Shutdown(shutdownCtx)
	if orchErr != nil {
		logging.Error(shutdownCtx, "Error during countdown shutdown", zap.Error(orchErr))
	}

	srvErr := srv.Shutdown(shutdownCtx)
	if srvErr != nil {
		logging.Error(shutdownCtx, "Server forced to shutdown", zap.Error(srvErr))
	}

	if err := store.Close(); err != nil {
		logging.Error(shutdownCtx, "Failed to close persistence store", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logging.Error(shutdownCtx, "Failed to flush tracer", zap.Error(err))
		}
	}

	logging.Info(ctx, "Server exiting")
	os.Exit(shutdownExitCode(regErr, orchErr, srvErr))
}
