package server

import (
	"context"

	"github.com/placette/messaging/internal/config"
	"github.com/placette/messaging/internal/home"
	"github.com/placette/messaging/internal/lock"
	"github.com/placette/messaging/internal/logging"
	"github.com/placette/messaging/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved daemon settings passed to the fx module.
type Params struct {
	DataDir string
	// ListenAddr overrides the configured address; empty = use config.
	ListenAddr string
}

// Module composes the placetted daemon: config, logging, data-dir lock,
// migrated store and the REST server, with lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("placetted",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideLock,
			provideStore,
			provideServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	if err := home.EnsureDirs(p.DataDir); err != nil {
		return nil, err
	}
	cfg, err := config.Load(home.ConfigPath(p.DataDir))
	if err != nil {
		return nil, err
	}
	if err := home.ValidateInstanceName(cfg.Instance); err != nil {
		return nil, err
	}
	return cfg, nil
}

func provideLogger(p Params, cfg *config.Config) (*zap.Logger, error) {
	return logging.New(home.LogPath(p.DataDir), cfg.Instance)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring data dir lock", zap.String("dir", p.DataDir))
	l, err := lock.Acquire(p.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Info("data dir lock acquired")
	return l, nil
}

func provideStore(p Params, cfg *config.Config, logger *zap.Logger) (*store.DB, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = home.DBPath(p.DataDir)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideServer(p Params, cfg *config.Config, db *store.DB, logger *zap.Logger) *Server {
	addr := p.ListenAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}
	return New(addr, db, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, db *store.DB, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("http server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil {
				logger.Warn("error stopping server", zap.Error(err))
			}
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
