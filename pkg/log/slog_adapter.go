package log

import (
	"context"
	"fmt"
	"log/slog"
)

// SlogAdapter writes observation events to an slog.Logger.
// Useful for development when you want to see dispatches in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("proxy_id", event.ProxyID),
		slog.String("category", event.Category.String()),
	}

	if event.Proxy != "" {
		attrs = append(attrs, slog.String("proxy", event.Proxy))
	}
	if event.Key != "" {
		attrs = append(attrs, slog.String("key", event.Key))
	}
	if event.SubscriptionID != 0 {
		attrs = append(attrs, slog.Uint64("sub_id", event.SubscriptionID))
	}

	switch event.Category {
	case CategoryRegister:
		attrs = append(attrs, slog.String("interest", event.Interest))
	case CategoryNotify:
		attrs = append(attrs,
			slog.String("phase", event.Phase.String()),
			slog.Int("observers", event.Observers),
			slog.String("value", fmt.Sprint(event.Value)),
		)
	case CategoryCancel:
		attrs = append(attrs, slog.Bool("implicit", event.Implicit))
	case CategoryClose:
		attrs = append(attrs, slog.Int("observers", event.Observers))
	}

	switch {
	case event.Header != nil:
		attrs = append(attrs, slog.String("format_version", event.Header.FormatVersion))
		if event.Header.Producer != "" {
			attrs = append(attrs, slog.String("producer", event.Header.Producer))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_op", event.Error.Operation),
			slog.String("error_msg", event.Error.Message),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "kvo", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
