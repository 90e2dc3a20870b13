package wa

import (
	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"

	"github.com/matheus3301/wppbridge/internal/bus"
)

// EventHandler translates whatsmeow events into the bridge's lifecycle and
// message events on the bus. It never mutates session state itself: the
// bridge consumes the queue and applies transitions in order.
type EventHandler struct {
	adapter *Adapter
	logger  *zap.Logger
}

// NewEventHandler creates a handler bound to the adapter's bus.
func NewEventHandler(a *Adapter, logger *zap.Logger) *EventHandler {
	return &EventHandler{adapter: a, logger: logger}
}

// Handle is the whatsmeow event handler function.
func (h *EventHandler) Handle(rawEvt any) {
	a := h.adapter
	switch evt := rawEvt.(type) {
	case *events.Message:
		h.handleMessage(evt)
	case *events.PairSuccess:
		h.logger.Info("QR scan accepted")
		a.publish(bus.KindAuthenticated, nil)
	case *events.Connected:
		h.logger.Info("WhatsApp connected")
		// Restored-credential logins skip the pairing flow, so make sure
		// the authenticated transition precedes ready.
		a.publish(bus.KindAuthenticated, nil)
		a.publish(bus.KindReady, a.Profile())
	case *events.Disconnected:
		h.logger.Warn("WhatsApp disconnected")
		a.publish(bus.KindDisconnected, "connection lost")
	case *events.LoggedOut:
		h.logger.Warn("WhatsApp logged out", zap.String("reason", evt.Reason.String()))
		a.publish(bus.KindDisconnected, evt.Reason.String())
	case *events.ConnectFailure:
		h.logger.Warn("WhatsApp connect failure", zap.String("reason", evt.Reason.String()))
		a.publish(bus.KindAuthFailed, evt.Reason.String())
	case *events.Presence:
		a.recordPresence(evt.From.ToNonAD().String(), evt.LastSeen)
	case *events.HistorySync:
		h.handleHistorySync(evt)
	}
}

func (h *EventHandler) handleMessage(evt *events.Message) {
	a := h.adapter
	chatJID := evt.Info.Chat.String()
	body := extractTextBody(evt.Message)
	msgType := detectMessageType(evt.Message)

	name := ""
	if !evt.Info.IsGroup && !evt.Info.IsFromMe {
		name = evt.Info.PushName
	}
	a.chats.upsert(chatJID, name, evt.Info.IsGroup, 0)
	a.chats.recordMessage(chatJID, body, msgType, evt.Info.Timestamp.UnixMilli())

	a.publish(bus.KindMessage, InboundMessage{
		ID:   evt.Info.ID,
		From: chatJID,
		Body: body,
	})
}

func (h *EventHandler) handleHistorySync(evt *events.HistorySync) {
	data := evt.Data
	if data == nil {
		return
	}

	a := h.adapter
	folded := 0
	for _, conv := range data.GetConversations() {
		chatJID := conv.GetID()
		if chatJID == "" {
			continue
		}
		a.chats.upsert(chatJID, conv.GetName(), isGroupJID(chatJID),
			int64(conv.GetConversationTimestamp())*1000)

		for _, hm := range conv.GetMessages() {
			wmsg := hm.GetMessage()
			if wmsg == nil || wmsg.GetMessage() == nil {
				continue
			}
			msg := wmsg.GetMessage()
			a.chats.recordMessage(chatJID,
				extractTextBody(msg),
				detectMessageType(msg),
				int64(wmsg.GetMessageTimestamp())*1000)
		}
		folded++
	}

	if folded > 0 {
		h.logger.Info("history batch folded into chat index", zap.Int("chats", folded))
	}
}
