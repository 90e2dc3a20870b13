package daemon

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/wppbridge/internal/bridge"
	"github.com/matheus3301/wppbridge/internal/bus"
	"github.com/matheus3301/wppbridge/internal/config"
	"github.com/matheus3301/wppbridge/internal/hub"
	"github.com/matheus3301/wppbridge/internal/httpd"
	"github.com/matheus3301/wppbridge/internal/lock"
	"github.com/matheus3301/wppbridge/internal/logging"
	"github.com/matheus3301/wppbridge/internal/project"
	"github.com/matheus3301/wppbridge/internal/session"
	"github.com/matheus3301/wppbridge/internal/state"
	"github.com/matheus3301/wppbridge/internal/wa"
)

// Params holds the resolved session configuration passed to the fx module.
type Params struct {
	SessionName string
	Config      *config.Config
}

// Module returns the fx module for the daemon, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStore,
			provideLock,
			provideAdapter,
			provideProjector,
			provideHub,
			provideBridge,
			provideHandler,
			provideServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.SessionName), p.SessionName, p.Config.LogLevel)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStore() *state.Store {
	return state.NewStore()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	logger.Info("acquiring session lock", zap.String("session", p.SessionName))
	l, err := lock.Acquire(session.Dir(p.SessionName))
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired")
	return l, nil
}

func provideAdapter(p Params, b *bus.Bus, _ *lock.Lock, logger *zap.Logger) (*wa.Adapter, error) {
	return wa.NewAdapter(context.Background(), p.SessionName, b, logger)
}

func provideProjector(adapter *wa.Adapter, logger *zap.Logger) *project.Projector {
	return project.New(adapter, logger)
}

func provideHub(logger *zap.Logger) *hub.Hub {
	return hub.New(logger)
}

func provideBridge(adapter *wa.Adapter, st *state.Store, pr *project.Projector, h *hub.Hub, b *bus.Bus, logger *zap.Logger) *bridge.Bridge {
	return bridge.New(adapter, st, pr, h, b, logger)
}

func provideHandler(p Params, br *bridge.Bridge, h *hub.Hub, logger *zap.Logger) *httpd.Handler {
	return httpd.NewHandler(br, h, p.Config.AllowedOrigin, logger)
}

func provideServer(p Params, h *httpd.Handler, logger *zap.Logger) *httpd.Server {
	return httpd.NewServer(p.Config, h, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *httpd.Server, lk *lock.Lock, adapter *wa.Adapter, br *bridge.Bridge, h *hub.Hub, b *bus.Bus, logger *zap.Logger) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			handler := wa.NewEventHandler(adapter, logger)
			adapter.RegisterEventHandler(handler.Handle)

			// The bridge consumer must be running before the adapter
			// connects, so no lifecycle event is dropped.
			br.Start(runCtx)

			go watchRelink(runCtx, b, adapter, logger)

			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("http server error", zap.Error(err))
				}
			}()

			go func() {
				if err := adapter.StartLogin(runCtx); err != nil {
					logger.Error("login failed", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			br.Stop()
			adapter.Disconnect()
			if err := srv.Stop(ctx); err != nil {
				logger.Warn("http server shutdown", zap.Error(err))
			}
			h.Close()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
