package daemon

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/wppbridge/internal/bus"
)

type fakeRelinker struct {
	loggedIn atomic.Bool
	logins   atomic.Int32
}

func (f *fakeRelinker) IsLoggedIn() bool { return f.loggedIn.Load() }

func (f *fakeRelinker) StartLogin(context.Context) error {
	f.logins.Add(1)
	return nil
}

func waitLogins(t *testing.T, f *fakeRelinker, want int32) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for f.logins.Load() < want {
		select {
		case <-deadline:
			t.Fatalf("logins = %d, want %d", f.logins.Load(), want)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatchRelinkRestartsPairing(t *testing.T) {
	orig := relinkDelay
	relinkDelay = 10 * time.Millisecond
	defer func() { relinkDelay = orig }()

	b := bus.New()
	f := &fakeRelinker{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watchRelink(ctx, b, f, zap.NewNop())
	time.Sleep(20 * time.Millisecond)

	b.Publish(bus.Event{Kind: bus.KindDisconnected, Timestamp: time.Now(), Payload: "logged out"})
	waitLogins(t, f, 1)
}

func TestWatchRelinkIgnoresTransientDrop(t *testing.T) {
	orig := relinkDelay
	relinkDelay = 10 * time.Millisecond
	defer func() { relinkDelay = orig }()

	b := bus.New()
	f := &fakeRelinker{}
	f.loggedIn.Store(true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watchRelink(ctx, b, f, zap.NewNop())
	time.Sleep(20 * time.Millisecond)

	b.Publish(bus.Event{Kind: bus.KindDisconnected, Timestamp: time.Now()})
	time.Sleep(100 * time.Millisecond)

	if got := f.logins.Load(); got != 0 {
		t.Errorf("logins = %d, want 0 while credentials are intact", got)
	}
}
