// Package app composes the migration process: config in, one engine run out.
package app

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/shouya/telegram-undelete/internal/config"
	"github.com/shouya/telegram-undelete/internal/engine"
	"github.com/shouya/telegram-undelete/internal/lock"
	"github.com/shouya/telegram-undelete/internal/logging"
	"github.com/shouya/telegram-undelete/internal/media"
	"github.com/shouya/telegram-undelete/internal/publish"
	"github.com/shouya/telegram-undelete/internal/store"
	"github.com/shouya/telegram-undelete/internal/telegram"
)

// Params holds the resolved configuration passed to the fx module.
type Params struct {
	Config *config.Config
}

// Module returns the fx module for a migration run, composing all providers
// and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("undelete",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideLock,
			provideStore,
			provideResolver,
			provideSender,
			provideAdapter,
			provideEngine,
		),
		fx.Invoke(runMigration),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(p.Config.LogFile, uuid.NewString())
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	lockPath := p.Config.Archive + ".lock"
	logger.Info("acquiring archive lock", zap.String("path", lockPath))
	l, err := lock.Acquire(lockPath)
	if err != nil {
		return nil, err
	}
	logger.Info("archive lock acquired")
	return l, nil
}

func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	db, err := store.Open(p.Config.Archive)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("ledger schema created", zap.Uint("version", result.Version))
	} else {
		logger.Info("ledger schema up to date", zap.Uint("version", result.Version))
	}
	logger.Info("archive opened", zap.String("path", p.Config.Archive))
	return db, nil
}

func provideResolver(p Params) *media.Resolver {
	return media.NewResolver(p.Config.MediaDir)
}

func provideSender(p Params, logger *zap.Logger) (*telegram.Client, error) {
	return telegram.NewClient(p.Config.ChatID, p.Config.Bots, logger)
}

func provideAdapter(p Params, sender *telegram.Client, resolver *media.Resolver) *publish.Adapter {
	return publish.NewAdapter(sender, resolver, p.Config.BotUserIDs())
}

func provideEngine(p Params, db *store.DB, adapter *publish.Adapter, logger *zap.Logger) *engine.Engine {
	return engine.New(db, adapter, p.Config.RetryCeiling, logger)
}

func runMigration(lc fx.Lifecycle, sh fx.Shutdowner, eng *engine.Engine, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				stats, err := eng.Run(runCtx)
				code := 0
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("migration aborted", zap.Error(err))
					code = 1
				}
				logger.Info("run finished",
					zap.Int("attempted", stats.Attempted),
					zap.Int("sent", stats.Sent),
					zap.Int("failed", stats.Failed),
				)
				_ = sh.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			_ = db.Close()
			_ = logger.Sync()
			return nil
		},
	})
}
