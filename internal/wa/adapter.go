package wa

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/matheus3301/wppbridge/internal/bus"
	"github.com/matheus3301/wppbridge/internal/session"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	wastore "go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	_ "github.com/mattn/go-sqlite3"
)

// ErrPresenceUnknown is returned by LastSeen when no presence information
// has been observed for a contact.
var ErrPresenceUnknown = errors.New("presence unknown")

// Adapter wraps the whatsmeow client and exposes the Backend capability set
// to the bridge. Lifecycle events are published on the bus, never handled
// here: the bridge owns all state transitions.
type Adapter struct {
	client    *whatsmeow.Client
	container *sqlstore.Container
	bus       *bus.Bus
	logger    *zap.Logger
	session   string

	chats *chatIndex

	presenceMu sync.RWMutex
	presence   map[string]int64 // bare JID -> last seen unix ms
}

// NewAdapter creates a WhatsApp adapter for the given session. Credentials
// live in the session's sqlite store; that is the only persistence the
// bridge has.
func NewAdapter(ctx context.Context, sessionName string, b *bus.Bus, logger *zap.Logger) (*Adapter, error) {
	// Device name shown on the phone's linked devices list.
	wastore.SetOSInfo("WPP-Bridge", [3]uint32{0, 1, 0})

	dbPath := session.CredentialDBPath(sessionName)

	container, err := sqlstore.New(ctx, "sqlite3",
		fmt.Sprintf("file:%s?_foreign_keys=on", dbPath),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create credential store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("get device store: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, nil)

	return &Adapter{
		client:    client,
		container: container,
		bus:       b,
		logger:    logger,
		session:   sessionName,
		chats:     newChatIndex(),
		presence:  make(map[string]int64),
	}, nil
}

// RegisterEventHandler adds a handler for whatsmeow events.
func (a *Adapter) RegisterEventHandler(handler whatsmeow.EventHandler) {
	a.client.AddEventHandler(handler)
}

// IsLoggedIn returns whether the adapter has stored credentials.
func (a *Adapter) IsLoggedIn() bool {
	return a.client.Store.ID != nil
}

// Disconnect terminates the WhatsApp connection.
func (a *Adapter) Disconnect() {
	a.logger.Info("disconnecting from WhatsApp")
	a.client.Disconnect()
}

// StartLogin connects with stored credentials when present, otherwise
// begins the QR pairing flow. Either path reports progress exclusively
// through bus events.
func (a *Adapter) StartLogin(ctx context.Context) error {
	if a.IsLoggedIn() {
		a.logger.Info("credentials found, connecting")
		return a.client.Connect()
	}
	a.logger.Info("no credentials, starting QR pairing")
	return a.startQRAuth(ctx)
}

// startQRAuth begins the QR pairing flow. Each rotated code is encoded as a
// displayable artifact and published as a challenge event.
func (a *Adapter) startQRAuth(ctx context.Context) error {
	qrChan, err := a.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("get QR channel: %w", err)
	}

	// Connect must be called after GetQRChannel.
	if err := a.client.Connect(); err != nil {
		a.publish(bus.KindAuthFailed, err.Error())
		return fmt.Errorf("connect: %w", err)
	}

	go func() {
		for item := range qrChan {
			switch item.Event {
			case "code":
				artifact, err := EncodeChallenge(item.Code)
				if err != nil {
					a.logger.Warn("challenge encoding failed", zap.Error(err))
					continue
				}
				a.publish(bus.KindChallenge, artifact)
			case "success":
				a.publish(bus.KindAuthenticated, nil)
				return
			case "timeout":
				a.publish(bus.KindAuthFailed, "QR code timeout")
				return
			default:
				if item.Error != nil {
					a.publish(bus.KindAuthFailed, item.Error.Error())
					return
				}
			}
		}
	}()

	return nil
}

// SendText sends a text message to the given JID. Returns the server
// message ID.
func (a *Adapter) SendText(ctx context.Context, to, body string) (string, error) {
	jid, err := types.ParseJID(to)
	if err != nil {
		return "", fmt.Errorf("parse JID: %w", err)
	}
	resp, err := a.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(body),
	})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return resp.ID, nil
}

// FetchContacts returns all contacts from the whatsmeow device store.
func (a *Adapter) FetchContacts(ctx context.Context) ([]RawContact, error) {
	all, err := a.client.Store.Contacts.GetAllContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("get contacts: %w", err)
	}
	contacts := make([]RawContact, 0, len(all))
	for jid, info := range all {
		contacts = append(contacts, RawContact{
			ID:         jid.ToNonAD().String(),
			Name:       info.FullName,
			PushName:   info.PushName,
			IsBusiness: info.BusinessName != "",
		})
	}
	return contacts, nil
}

// FetchChats returns the in-memory chat view built from history sync and
// live messages.
func (a *Adapter) FetchChats(_ context.Context) ([]RawChat, error) {
	return a.chats.list(), nil
}

// LastSeen returns the last observed presence timestamp for a contact.
func (a *Adapter) LastSeen(_ context.Context, id string) (int64, error) {
	a.presenceMu.RLock()
	defer a.presenceMu.RUnlock()
	ts, ok := a.presence[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrPresenceUnknown, id)
	}
	return ts, nil
}

// Logout invalidates the session and removes credentials. A disconnected
// event is published on success so the daemon can offer a fresh pairing.
func (a *Adapter) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	a.publish(bus.KindDisconnected, "logged out")
	return nil
}

// Profile returns the identity of the linked account, or nil before pairing.
func (a *Adapter) Profile() *SessionProfile {
	id := a.client.Store.ID
	if id == nil {
		return nil
	}
	return &SessionProfile{
		Name: a.client.Store.PushName,
		JID:  id.ToNonAD().String(),
	}
}

func (a *Adapter) recordPresence(id string, lastSeen time.Time) {
	if lastSeen.IsZero() {
		return
	}
	a.presenceMu.Lock()
	a.presence[id] = lastSeen.UnixMilli()
	a.presenceMu.Unlock()
}

func (a *Adapter) publish(kind string, payload any) {
	a.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}

// SessionProfile is the identity snapshot carried on ready events.
type SessionProfile struct {
	Name string
	JID  string
}
