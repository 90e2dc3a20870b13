package wa

import "context"

// RawContact is a contact record as pulled from the backend, before
// projection normalization.
type RawContact struct {
	ID         string // full JID, e.g. 5511999999999@s.whatsapp.net
	Name       string
	PushName   string
	IsBusiness bool
}

// RawChat is a chat record as pulled from the backend.
type RawChat struct {
	ID       string
	Name     string
	IsGroup  bool
	LastBody string // text body of the last message, "" for media
	LastType string // message type label (text, image, ...)
	LastAt   int64  // unix-ms timestamp of the last message, 0 if unknown
	// Timestamp is the chat-level activity timestamp in unix ms, 0 if the
	// backend did not report one.
	Timestamp int64
}

// InboundMessage is a live message received on the session.
type InboundMessage struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Body string `json:"body"`
}

// Backend is the capability set the bridge needs from the messaging engine.
// All calls are network-bound and may fail independently; none of them are
// given bridge-imposed timeouts.
type Backend interface {
	// SendText delivers a text message and returns the backend-assigned
	// message ID.
	SendText(ctx context.Context, to, body string) (string, error)
	FetchContacts(ctx context.Context) ([]RawContact, error)
	FetchChats(ctx context.Context) ([]RawChat, error)
	// LastSeen returns the last-seen timestamp (unix ms) for a contact.
	// Returns an error when presence for the contact is unknown.
	LastSeen(ctx context.Context, id string) (int64, error)
	Logout(ctx context.Context) error
}
