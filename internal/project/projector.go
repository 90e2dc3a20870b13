package project

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/wppbridge/internal/wa"
)

// Contact is the projected contact shape pushed to subscribers. Derived
// fresh on each fetch; never cached beyond a single response.
type Contact struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Number      string `json:"number"`
	IsBusiness  bool   `json:"isBusiness"`
	// LastSeen is a unix-ms timestamp, 0 when presence is unknown.
	LastSeen int64 `json:"lastSeen,omitempty"`
}

// Chat is the projected chat shape, sorted descending by LastActivityAt.
type Chat struct {
	ID                 string `json:"id"`
	DisplayName        string `json:"displayName"`
	IsGroup            bool   `json:"isGroup"`
	LastMessagePreview string `json:"lastMessagePreview"`
	LastActivityAt     int64  `json:"lastActivityAt"`
}

// Projector builds the derived read models from backend data. Both
// projections are read-only and idempotent; neither touches session state.
type Projector struct {
	backend wa.Backend
	logger  *zap.Logger
}

// New creates a projector over the given backend.
func New(backend wa.Backend, logger *zap.Logger) *Projector {
	return &Projector{backend: backend, logger: logger}
}

// Contacts fetches and normalizes the contact list. A failed presence
// lookup for one contact leaves its LastSeen absent; it never fails the
// projection. Input order is preserved.
func (p *Projector) Contacts(ctx context.Context) ([]Contact, error) {
	raws, err := p.backend.FetchContacts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Contact, 0, len(raws))
	for _, rc := range raws {
		c := Contact{
			ID:         rc.ID,
			Number:     bareNumber(rc.ID),
			IsBusiness: rc.IsBusiness,
		}
		c.DisplayName = firstNonEmpty(rc.Name, rc.PushName, c.Number)

		if ts, err := p.backend.LastSeen(ctx, rc.ID); err == nil {
			c.LastSeen = ts
		} else {
			p.logger.Debug("presence lookup failed", zap.String("contact", rc.ID), zap.Error(err))
		}
		out = append(out, c)
	}
	return out, nil
}

// Chats fetches and normalizes the chat list, sorted descending by last
// activity. Ties keep the backend's input order.
func (p *Projector) Chats(ctx context.Context) ([]Chat, error) {
	raws, err := p.backend.FetchChats(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Chat, 0, len(raws))
	for _, rc := range raws {
		activity := rc.Timestamp
		if activity == 0 {
			activity = rc.LastAt
		}
		if activity == 0 {
			activity = time.Now().UnixMilli()
		}
		out = append(out, Chat{
			ID:                 rc.ID,
			DisplayName:        firstNonEmpty(rc.Name, bareNumber(rc.ID)),
			IsGroup:            rc.IsGroup,
			LastMessagePreview: preview(rc.LastBody, rc.LastType),
			LastActivityAt:     activity,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastActivityAt > out[j].LastActivityAt
	})
	return out, nil
}

const previewMaxLen = 100

// preview is the text body when present, else the message type as a
// fallback label. Text and unknown types without a body stay empty.
func preview(body, msgType string) string {
	if body != "" {
		return truncate(body, previewMaxLen)
	}
	if msgType == "" || msgType == "text" || msgType == "unknown" {
		return ""
	}
	return "[" + msgType + "]"
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// bareNumber strips the domain suffix from a JID, leaving the bare number.
func bareNumber(jid string) string {
	if at := strings.IndexByte(jid, '@'); at >= 0 {
		return jid[:at]
	}
	return jid
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
