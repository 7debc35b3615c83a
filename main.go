package main

import (
	"context"
	"fmt"
	"net/rpc"
	"time"

	"github.com/joho/godotenv"

	"github.com/wfunc/slotserver/config"
	"github.com/wfunc/slotserver/coordinator"
	"github.com/wfunc/slotserver/history"
	"github.com/wfunc/slotserver/jobs"
	"github.com/wfunc/slotserver/logger"
	"github.com/wfunc/slotserver/monitor"
	"github.com/wfunc/slotserver/persistence"
	"github.com/wfunc/slotserver/registry"
	rpcserver "github.com/wfunc/slotserver/rpc"
	"github.com/wfunc/slotserver/server"
	"github.com/wfunc/slotserver/services"
	"github.com/wfunc/slotserver/session"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// .env is optional, the config defaults cover a bare checkout
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	db, err := openDatabase(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	var players *services.PlayerService
	if cfg.Database.Enabled {
		logger.Log.Info("Database connection successful.")
		players = services.NewPlayerService(db)
	}

	// Game state
	reg := registry.New(cfg.Game.StartingBalance)
	hist := history.New(cfg.Game.HistorySize)
	sessions := session.NewManager()
	mon := monitor.NewMonitor("slotserver")

	coord := coordinator.New(reg, hist, sessions, players, mon,
		cfg.Game.LeaderboardSize, cfg.Game.JoinSnapshot)
	go coord.Run(context.Background())

	// Admin RPC surface
	rpcSrv, err := rpcserver.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to start RPC server: %v", err)
	}
	if err := rpc.Register(rpcserver.NewAdminService(reg, hist)); err != nil {
		logger.Log.Fatalf("Failed to register RPC service: %v", err)
	}
	go rpcSrv.Start()
	defer rpcSrv.Stop()

	// Periodic balance flush, only meaningful with a durable store
	if players != nil {
		scheduler := jobs.NewScheduler(reg, players, cfg.Jobs.FlushSchedule)
		if err := scheduler.Start(); err != nil {
			logger.Log.Fatalf("Failed to start flush scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	// Start Server
	idleTimeout := time.Duration(cfg.Session.IdleTimeoutSeconds) * time.Second
	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, coord, sessions, idleTimeout)
	defer gameServer.Shutdown()

	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

func openDatabase(cfg *config.Config) (persistence.Database, error) {
	if !cfg.Database.Enabled {
		return persistence.NewMemory(), nil
	}

	pg := cfg.Database.Postgres
	switch cfg.Database.Driver {
	case "gorm":
		return persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case "pq":
		return persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
