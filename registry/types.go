package registry

import "github.com/wippyai/com-bridge/abi"

// Event types for instance lifecycle notifications.
type EventType uint8

const (
	EventExposed EventType = iota
	EventRevoked
)

// Event represents an instance lifecycle event.
type Event struct {
	Value  any
	Handle abi.Handle
	Type   EventType
}

// Observer receives notifications about instance lifecycle events.
type Observer interface {
	OnInstanceEvent(Event)
}

// Dropper is optionally implemented by instances that need cleanup when
// revoked.
type Dropper interface {
	Drop()
}
