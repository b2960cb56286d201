package log

// Logger is the interface applications implement to receive observation events.
// Pass nil or NoopLogger to disable logging.
type Logger interface {
	// Log records an observation event. Implementations must be thread-safe:
	// cancellation events may arrive from the runtime cleanup goroutine.
	Log(event Event)
}

// NoopLogger discards all events. Use when logging is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
