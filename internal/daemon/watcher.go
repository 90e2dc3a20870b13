package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/wppbridge/internal/bus"
)

var relinkDelay = 2 * time.Second

// relinkBackend is the slice of the adapter the watcher needs.
type relinkBackend interface {
	IsLoggedIn() bool
	StartLogin(ctx context.Context) error
}

// watchRelink restarts the QR pairing flow after the session is unlinked,
// whether by a logout request or by the phone removing the device. Without
// it the daemon would sit disconnected until restarted.
func watchRelink(ctx context.Context, b *bus.Bus, backend relinkBackend, logger *zap.Logger) {
	ch, unsub := b.Subscribe(bus.KindDisconnected, 16)
	defer unsub()

	for {
		select {
		case <-ch:
			if backend.IsLoggedIn() {
				// Transient drop, the client reconnects on its own.
				continue
			}
			select {
			case <-time.After(relinkDelay):
			case <-ctx.Done():
				return
			}
			logger.Info("session unlinked, restarting pairing")
			if err := backend.StartLogin(ctx); err != nil {
				logger.Warn("pairing restart failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
