package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/matheus3301/wppbridge/internal/apperr"
	"github.com/matheus3301/wppbridge/internal/bus"
	"github.com/matheus3301/wppbridge/internal/hub"
	"github.com/matheus3301/wppbridge/internal/project"
	"github.com/matheus3301/wppbridge/internal/state"
	"github.com/matheus3301/wppbridge/internal/wa"
)

type statusPayload struct {
	Status string `json:"status"`
}

type qrPayload struct {
	QR string `json:"qr"`
}

// Bridge owns the session state and connects the three sides of the
// system: lifecycle events from the backend, realtime subscribers, and
// the REST control surface. All state transitions happen on its single
// consumer goroutine, so the transition table is applied to events in
// arrival order.
type Bridge struct {
	backend   wa.Backend
	store     *state.Store
	projector *project.Projector
	hub       *hub.Hub
	bus       *bus.Bus
	logger    *zap.Logger
	cancel    context.CancelFunc
}

// New creates a bridge. The store must not be mutated by anyone else.
func New(backend wa.Backend, store *state.Store, projector *project.Projector, h *hub.Hub, b *bus.Bus, logger *zap.Logger) *Bridge {
	return &Bridge{
		backend:   backend,
		store:     store,
		projector: projector,
		hub:       h,
		bus:       b,
		logger:    logger,
	}
}

// Start begins consuming backend events from the bus.
func (br *Bridge) Start(ctx context.Context) {
	ctx, br.cancel = context.WithCancel(ctx)
	ch, unsub := br.bus.Subscribe("wa.", 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				br.handleEvent(ctx, evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the consumer.
func (br *Bridge) Stop() {
	if br.cancel != nil {
		br.cancel()
	}
}

func (br *Bridge) handleEvent(ctx context.Context, evt bus.Event) {
	prev := br.store.Snapshot().Phase

	switch evt.Kind {
	case bus.KindChallenge:
		artifact, ok := evt.Payload.(string)
		if !ok {
			return
		}
		snap := br.store.Apply(state.Event{Kind: state.EvChallenge, Challenge: artifact})
		br.broadcastStatus(snap.Phase)
		br.hub.Broadcast(hub.Event{Kind: hub.EventQR, Data: qrPayload{QR: artifact}})

	case bus.KindAuthenticated:
		snap := br.store.Apply(state.Event{Kind: state.EvAuthenticated})
		if snap.Phase != prev {
			br.broadcastStatus(snap.Phase)
		}

	case bus.KindReady:
		var profile *state.Profile
		if p, ok := evt.Payload.(*wa.SessionProfile); ok && p != nil {
			profile = &state.Profile{Name: p.Name, JID: p.JID}
		}
		snap := br.store.Apply(state.Event{Kind: state.EvReady, Profile: profile})
		if snap.Phase != prev && snap.Phase == state.Ready {
			br.broadcastStatus(snap.Phase)
			// Push fresh projections so subscribers do not have to poll
			// after the session comes up.
			go br.broadcastProjections(ctx)
		}

	case bus.KindDisconnected:
		snap := br.store.Apply(state.Event{Kind: state.EvDisconnected})
		if snap.Phase != prev {
			br.broadcastStatus(snap.Phase)
		}

	case bus.KindAuthFailed:
		snap := br.store.Apply(state.Event{Kind: state.EvAuthFailure})
		if snap.Phase != prev {
			br.broadcastStatus(snap.Phase)
		}

	case bus.KindMessage:
		msg, ok := evt.Payload.(wa.InboundMessage)
		if !ok {
			return
		}
		br.hub.Broadcast(hub.Event{Kind: hub.EventMessage, Data: msg})
	}
}

func (br *Bridge) broadcastStatus(phase state.Phase) {
	br.hub.Broadcast(hub.Event{Kind: hub.EventStatus, Data: statusPayload{Status: string(phase)}})
}

func (br *Bridge) broadcastProjections(ctx context.Context) {
	if contacts, err := br.projector.Contacts(ctx); err == nil {
		br.hub.Broadcast(hub.Event{Kind: hub.EventContacts, Data: contacts})
	} else {
		br.logger.Warn("contact projection failed", zap.Error(err))
	}
	if chats, err := br.projector.Chats(ctx); err == nil {
		br.hub.Broadcast(hub.Event{Kind: hub.EventChats, Data: chats})
	} else {
		br.logger.Warn("chat projection failed", zap.Error(err))
	}
}

// OnSubscriberConnected replays cached state to a newly attached
// subscriber: current status first, then the cached challenge if one is
// pending, in that order. A client must never render a challenge while
// believing itself already connected.
func (br *Bridge) OnSubscriberConnected(sub *hub.Subscriber) {
	snap := br.store.Snapshot()
	br.hub.Send(sub, hub.Event{Kind: hub.EventStatus, Data: statusPayload{Status: string(snap.Phase)}})
	if snap.Challenge != "" {
		br.hub.Send(sub, hub.Event{Kind: hub.EventQR, Data: qrPayload{QR: snap.Challenge}})
	}
}

// RefreshFor answers a subscriber's request-data pull. Before the session
// is ready this is a silent no-op: the client may simply have raced the
// readiness transition.
func (br *Bridge) RefreshFor(ctx context.Context, sub *hub.Subscriber) {
	if br.store.Snapshot().Phase != state.Ready {
		return
	}
	if contacts, err := br.projector.Contacts(ctx); err == nil {
		br.hub.Send(sub, hub.Event{Kind: hub.EventContacts, Data: contacts})
	} else {
		br.logger.Warn("contact projection failed", zap.Error(err))
	}
	if chats, err := br.projector.Chats(ctx); err == nil {
		br.hub.Send(sub, hub.Event{Kind: hub.EventChats, Data: chats})
	} else {
		br.logger.Warn("chat projection failed", zap.Error(err))
	}
}

// Send delivers a text message through the backend.
func (br *Bridge) Send(ctx context.Context, to, body string) (string, error) {
	if to == "" {
		return "", apperr.Validation("to is required")
	}
	if body == "" {
		return "", apperr.Validation("body is required")
	}
	id, err := br.backend.SendText(ctx, to, body)
	if err != nil {
		return "", apperr.Backend("send message", err)
	}
	return id, nil
}

// Profile returns the cached identity snapshot, nil when the session has
// not been ready. Never calls the backend.
func (br *Bridge) Profile() *state.Profile {
	return br.store.Snapshot().Profile
}

// Snapshot returns the current session state.
func (br *Bridge) Snapshot() state.Snapshot {
	return br.store.Snapshot()
}

// Contacts returns the projected contact list.
func (br *Bridge) Contacts(ctx context.Context) ([]project.Contact, error) {
	contacts, err := br.projector.Contacts(ctx)
	if err != nil {
		return nil, apperr.Backend("fetch contacts", err)
	}
	return contacts, nil
}

// Chats returns the projected chat list.
func (br *Bridge) Chats(ctx context.Context) ([]project.Chat, error) {
	chats, err := br.projector.Chats(ctx)
	if err != nil {
		return nil, apperr.Backend("fetch chats", err)
	}
	return chats, nil
}

// Logout ends the backend session. The state store is cleared and the
// disconnected status broadcast unconditionally, even when the backend
// call fails: the caller observing an error must not leave subscribers
// believing the session is still linked.
func (br *Bridge) Logout(ctx context.Context) error {
	err := br.backend.Logout(ctx)

	br.store.Clear()
	snap := br.store.Apply(state.Event{Kind: state.EvDisconnected})
	br.broadcastStatus(snap.Phase)

	if err != nil {
		return apperr.Backend("logout", err)
	}
	return nil
}
