package bus

import "time"

// Event kinds published by the WhatsApp adapter. The bridge consumes the
// whole "wa." namespace through a single subscription so lifecycle
// transitions are applied in arrival order by one handler.
const (
	KindChallenge     = "wa.challenge"
	KindAuthenticated = "wa.authenticated"
	KindReady         = "wa.ready"
	KindDisconnected  = "wa.disconnected"
	KindAuthFailed    = "wa.auth_failed"
	KindMessage       = "wa.message"
)

// Event is a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
