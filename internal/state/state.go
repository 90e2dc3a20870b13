package state

import (
	"sync"
	"time"
)

// Phase is the session lifecycle phase.
type Phase string

const (
	Uninitialized Phase = "uninitialized"
	AwaitingScan  Phase = "awaiting_scan"
	Authenticated Phase = "authenticated"
	Ready         Phase = "ready"
	Disconnected  Phase = "disconnected"
	AuthFailed    Phase = "auth_failed"
)

// Profile is the identity snapshot of the linked account.
type Profile struct {
	Name string `json:"name"`
	JID  string `json:"jid"`
}

// Snapshot is a copy of the session state at one instant.
type Snapshot struct {
	Phase Phase
	// Challenge is the last QR challenge as a PNG data URI, "" when absent.
	Challenge string
	Profile   *Profile
	ReadyAt   time.Time
}

// EventKind enumerates lifecycle events originating from the backend.
type EventKind int

const (
	EvChallenge EventKind = iota
	EvAuthenticated
	EvReady
	EvAuthFailure
	EvDisconnected
)

// Event is one lifecycle event to apply to the store.
type Event struct {
	Kind EventKind
	// Challenge carries the encoded QR artifact for EvChallenge.
	Challenge string
	// Profile carries the account identity for EvReady.
	Profile *Profile
}

// Store holds the single process-wide session state. Mutations never block
// inside the lock, so events serialize and each is fully applied before the
// next is processed. Lifecycle events are never errors: an event that does
// not apply in the current phase is ignored.
type Store struct {
	mu sync.RWMutex
	s  Snapshot
}

// NewStore creates a store in the Uninitialized phase.
func NewStore() *Store {
	return &Store{s: Snapshot{Phase: Uninitialized}}
}

// Snapshot returns a copy of the current state. Never fails.
func (st *Store) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

// Apply applies one lifecycle event and returns the resulting snapshot.
//
// A fresh challenge is accepted from any phase: the backend rotates QR codes
// while a scan is pending, and every phase can re-enter AwaitingScan after
// logout or disconnection. The authenticated event also fires without a
// preceding challenge when the backend restores stored credentials.
func (st *Store) Apply(ev Event) Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()

	switch ev.Kind {
	case EvChallenge:
		st.s.Phase = AwaitingScan
		st.s.Challenge = ev.Challenge
	case EvAuthenticated:
		switch st.s.Phase {
		case AwaitingScan, Uninitialized, Disconnected, AuthFailed:
			st.s.Phase = Authenticated
		}
	case EvReady:
		switch st.s.Phase {
		case Authenticated, AwaitingScan:
			st.s.Phase = Ready
			st.s.Challenge = ""
			st.s.Profile = ev.Profile
			st.s.ReadyAt = time.Now()
		}
	case EvAuthFailure:
		st.s.Phase = AuthFailed
		st.s.Challenge = ""
	case EvDisconnected:
		st.s.Phase = Disconnected
		st.s.Challenge = ""
		st.s.Profile = nil
	}
	return st.s
}

// Clear resets the store to Uninitialized with all cached fields emptied.
func (st *Store) Clear() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = Snapshot{Phase: Uninitialized}
	return st.s
}
