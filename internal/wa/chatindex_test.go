package wa

import "testing"

func TestChatIndexRecordMessage(t *testing.T) {
	ci := newChatIndex()
	ci.recordMessage("a@s.whatsapp.net", "hi", "text", 1000)
	ci.recordMessage("a@s.whatsapp.net", "newer", "text", 2000)
	// Older history replay must not clobber live activity.
	ci.recordMessage("a@s.whatsapp.net", "stale", "text", 500)

	chats := ci.list()
	if len(chats) != 1 {
		t.Fatalf("len = %d, want 1", len(chats))
	}
	if chats[0].LastBody != "newer" || chats[0].LastAt != 2000 {
		t.Errorf("last = %q@%d, want newer@2000", chats[0].LastBody, chats[0].LastAt)
	}
}

func TestChatIndexUpsertKeepsName(t *testing.T) {
	ci := newChatIndex()
	ci.upsert("g@g.us", "Family", true, 5000)
	// An empty name or older timestamp leaves the entry untouched.
	ci.upsert("g@g.us", "", true, 1000)

	chats := ci.list()
	if chats[0].Name != "Family" {
		t.Errorf("name = %q, want Family", chats[0].Name)
	}
	if chats[0].Timestamp != 5000 {
		t.Errorf("timestamp = %d, want 5000", chats[0].Timestamp)
	}
	if !chats[0].IsGroup {
		t.Error("group flag lost")
	}
}

func TestChatIndexListOrderStable(t *testing.T) {
	ci := newChatIndex()
	ids := []string{"c@s.whatsapp.net", "a@s.whatsapp.net", "b@s.whatsapp.net"}
	for _, id := range ids {
		ci.recordMessage(id, "x", "text", 100)
	}

	chats := ci.list()
	for i, id := range ids {
		if chats[i].ID != id {
			t.Errorf("chats[%d].ID = %q, want %q (insertion order)", i, chats[i].ID, id)
		}
	}
}

func TestChatIndexGroupDetection(t *testing.T) {
	ci := newChatIndex()
	ci.recordMessage("12345@g.us", "yo", "text", 100)
	chats := ci.list()
	if !chats[0].IsGroup {
		t.Error("JID with @g.us suffix should be marked as group")
	}
}
