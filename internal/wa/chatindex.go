package wa

import "sync"

// chatIndex is a memory-only view of known chats, folded together from
// history-sync batches and live messages. Nothing here touches disk:
// the bridge does not persist message history, it only needs enough to
// answer a chat-list projection.
type chatIndex struct {
	mu    sync.RWMutex
	chats map[string]*chatEntry
	order []string // insertion order, used as the stable list order
}

type chatEntry struct {
	id        string
	name      string
	isGroup   bool
	lastBody  string
	lastType  string
	lastAt    int64
	timestamp int64 // chat-level timestamp from history sync, 0 if unset
}

func newChatIndex() *chatIndex {
	return &chatIndex{chats: make(map[string]*chatEntry)}
}

// upsert records chat-level metadata. Zero/empty fields leave existing
// values untouched.
func (ci *chatIndex) upsert(id, name string, isGroup bool, timestamp int64) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	e := ci.entryLocked(id)
	e.isGroup = isGroup
	if name != "" {
		e.name = name
	}
	if timestamp > e.timestamp {
		e.timestamp = timestamp
	}
}

// recordMessage folds one message into the chat's last-activity fields.
// Older messages (history replays) never overwrite newer activity.
func (ci *chatIndex) recordMessage(id string, body, msgType string, at int64) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	e := ci.entryLocked(id)
	if at < e.lastAt {
		return
	}
	e.lastBody = body
	e.lastType = msgType
	e.lastAt = at
}

func (ci *chatIndex) entryLocked(id string) *chatEntry {
	e, ok := ci.chats[id]
	if !ok {
		e = &chatEntry{id: id, isGroup: isGroupJID(id)}
		ci.chats[id] = e
		ci.order = append(ci.order, id)
	}
	return e
}

// list returns raw chat records in insertion order.
func (ci *chatIndex) list() []RawChat {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	out := make([]RawChat, 0, len(ci.order))
	for _, id := range ci.order {
		e := ci.chats[id]
		out = append(out, RawChat{
			ID:        e.id,
			Name:      e.name,
			IsGroup:   e.isGroup,
			LastBody:  e.lastBody,
			LastType:  e.lastType,
			LastAt:    e.lastAt,
			Timestamp: e.timestamp,
		})
	}
	return out
}
