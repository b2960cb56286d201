package log

import (
	"time"
)

// Event represents an observation log event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ProxyID uniquely identifies the proxy instance (UUID).
	ProxyID string `cbor:"2,keyasint"`

	// Proxy is the human-readable proxy name (usually the owner type).
	Proxy string `cbor:"3,keyasint,omitempty"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Key is the observed property ("Owner.name").
	Key string `cbor:"5,keyasint,omitempty"`

	// Phase is the change phase for notify events.
	Phase Phase `cbor:"6,keyasint,omitempty"`

	// SubscriptionID identifies the observer (0 for proxy-wide events).
	SubscriptionID uint64 `cbor:"7,keyasint,omitempty"`

	// Interest is the observer's interest set in letter form ("BA", "I", ...).
	Interest string `cbor:"8,keyasint,omitempty"`

	// Value is the property value delivered by a notify event.
	Value any `cbor:"9,keyasint,omitempty"`

	// Observers is the number of callbacks a notify event reached, or the
	// number of observers dropped by a close event.
	Observers int `cbor:"10,keyasint,omitempty"`

	// Implicit marks a cancel event produced by the runtime cleanup of a
	// discarded observer handle.
	Implicit bool `cbor:"11,keyasint,omitempty"`

	// Type-specific payload (at most one of these is set).
	Header *HeaderEvent    `cbor:"12,keyasint,omitempty"`
	Error  *ErrorEventData `cbor:"13,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryBind indicates the proxy was bound to its owner.
	CategoryBind Category = 0
	// CategoryRegister indicates a new observer.
	CategoryRegister Category = 1
	// CategoryNotify indicates a dispatched change notification.
	CategoryNotify Category = 2
	// CategoryCancel indicates a removed observer.
	CategoryCancel Category = 3
	// CategoryClose indicates the proxy dropped its registry.
	CategoryClose Category = 4
	// CategoryError indicates a failed operation.
	CategoryError Category = 5
	// CategoryHeader marks the log file header record.
	CategoryHeader Category = 6
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryBind:
		return "BIND"
	case CategoryRegister:
		return "REGISTER"
	case CategoryNotify:
		return "NOTIFY"
	case CategoryCancel:
		return "CANCEL"
	case CategoryClose:
		return "CLOSE"
	case CategoryError:
		return "ERROR"
	case CategoryHeader:
		return "HEADER"
	default:
		return "UNKNOWN"
	}
}

// Phase mirrors the observation change kind without importing the hub.
type Phase uint8

const (
	// PhaseNone is used by events that are not notifications.
	PhaseNone Phase = 0
	// PhaseBefore is a notification sent before a mutation.
	PhaseBefore Phase = 1
	// PhaseAfter is a notification sent after a mutation.
	PhaseAfter Phase = 2
	// PhaseInitial is the one-off notification sent on registration.
	PhaseInitial Phase = 3
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "-"
	case PhaseBefore:
		return "BEFORE"
	case PhaseAfter:
		return "AFTER"
	case PhaseInitial:
		return "INITIAL"
	default:
		return "UNKNOWN"
	}
}

// HeaderEvent is written once at the start of a log file.
type HeaderEvent struct {
	// FormatVersion is the event-log format version ("major.minor").
	FormatVersion string `cbor:"1,keyasint"`

	// Producer names the program that created the file.
	Producer string `cbor:"2,keyasint,omitempty"`
}

// ErrorEventData captures a failed hub operation.
type ErrorEventData struct {
	// Operation is what was being performed (bind, register, notify, ...).
	Operation string `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`
}
