package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/linkdeck/linkdeck/internal/config"
	"github.com/linkdeck/linkdeck/internal/httpserver"
	"github.com/linkdeck/linkdeck/internal/httpserver/deps"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/migrate"
	"github.com/linkdeck/linkdeck/internal/persist"
	"github.com/linkdeck/linkdeck/internal/redis"
	"github.com/linkdeck/linkdeck/internal/scheduler"
	"github.com/linkdeck/linkdeck/internal/sources/seed"
	"github.com/linkdeck/linkdeck/internal/store"
	redisstore "github.com/linkdeck/linkdeck/internal/store/redis"
	"github.com/linkdeck/linkdeck/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	board       *store.Board
	local       *persist.File
	mirror      *scheduler.Mirror
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	board := store.NewBoard(loggerClient)
	local := persist.NewFile(cfg.DataFile, loggerClient)
	engine := migrate.NewEngine(loggerClient)

	// Load the local snapshot and bring it up to the current shape.
	// A repaired payload is written back immediately so the next start
	// reads canonical data.
	if raw := local.Load(); raw != nil {
		items, changed := engine.Normalize(raw)
		board.Replace(items)
		if changed {
			loggerClient.Info("local snapshot repaired during load",
				logger.Int("items", board.Len()))
			if err := local.Save(board.Snapshot()); err != nil {
				loggerClient.Warn("failed to write repaired snapshot",
					logger.Error(err))
			}
		}
		loggerClient.Info("board loaded from local snapshot",
			logger.String("file", cfg.DataFile),
			logger.Int("items", board.Len()))
	}

	// Seed an empty board from the YAML file when one is configured.
	if cfg.SeedFile != "" && board.Len() == 0 {
		if err := seedBoard(cfg.SeedFile, board, local, loggerClient); err != nil {
			loggerClient.Warn("seed import failed, starting with empty board",
				logger.Error(err))
		}
	}

	var (
		redisClient *goredis.Client
		mirror      *scheduler.Mirror
	)
	if cfg.LocalOnly() {
		loggerClient.Info("no Redis address configured, remote mirror disabled")
	} else {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("Redis initialized successfully")

		redisClient = client
		remote := redisstore.NewStore(redisClient)
		mirror = scheduler.NewMirror(
			remote,
			board,
			local,
			engine,
			cfg.UserID,
			loggerClient,
			cfg.MirrorInterval,
		)
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		Board:        board,
		Local:        local,
		Mirror:       mirror,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		board:       board,
		local:       local,
		mirror:      mirror,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Linkdeck v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Linkdeck %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the remote mirror (initial sync down, then periodic catch-up)
	if a.mirror != nil {
		a.mirror.Start(ctx)
		a.logger.Info("remote mirror started",
			logger.Duration("interval", a.cfg.MirrorInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	// Stop the mirror before the final save so no push races the exit
	if a.mirror != nil {
		a.mirror.Stop()
	}

	// Last snapshot write, in case a persist error was swallowed earlier
	if err := a.local.Save(a.board.Snapshot()); err != nil {
		a.logger.Warnf("failed to write final snapshot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Linkdeck stopped cleanly")
	return nil
}

// seedBoard imports the YAML seed file into an empty board and persists
// the result.
func seedBoard(path string, board *store.Board, local *persist.File, log logger.Logger) error {
	cfg, err := seed.NewLoader(path).Load()
	if err != nil {
		return fmt.Errorf("load seed file: %w", err)
	}

	items, err := seed.NewMapper().MapItems(cfg)
	if err != nil {
		return fmt.Errorf("map seed entries: %w", err)
	}

	board.Replace(items)
	if err := local.Save(board.Snapshot()); err != nil {
		return fmt.Errorf("persist seeded board: %w", err)
	}

	log.Info("board seeded from file",
		logger.String("file", path),
		logger.Int("items", len(items)))
	return nil
}
