// Package commands implements the kvo-log CLI commands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kvo-hub/kvo-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Key      string
	Category *log.Category
	Phase    *log.Phase
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [proxy:id] CATEGORY key
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	proxyID := shortenProxyID(event.ProxyID)

	label := event.Category.String()
	if event.Category == log.CategoryNotify {
		label += " " + event.Phase.String()
	}

	fmt.Fprintf(w, "%s [proxy:%s] %-8s %s", ts, proxyID, event.Proxy, label)
	if event.Key != "" {
		fmt.Fprintf(w, " %s", event.Key)
	}
	fmt.Fprintln(w)

	// Category-specific details
	switch event.Category {
	case log.CategoryRegister:
		fmt.Fprintf(w, "  Observer: %d\n", event.SubscriptionID)
		fmt.Fprintf(w, "  Interest: %s\n", event.Interest)
	case log.CategoryNotify:
		if event.SubscriptionID != 0 {
			fmt.Fprintf(w, "  Observer: %d\n", event.SubscriptionID)
		}
		fmt.Fprintf(w, "  Value: %s\n", formatValue(event.Value))
		fmt.Fprintf(w, "  Observers: %d\n", event.Observers)
	case log.CategoryCancel:
		fmt.Fprintf(w, "  Observer: %d\n", event.SubscriptionID)
		if event.Implicit {
			fmt.Fprintln(w, "  Implicit: handle collected")
		}
	case log.CategoryClose:
		fmt.Fprintf(w, "  Dropped: %d\n", event.Observers)
	case log.CategoryError:
		if event.Error != nil {
			formatErrorDetails(w, event.Error)
		}
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenProxyID returns the first 8 characters of the proxy ID.
func shortenProxyID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatValue renders a decoded value as JSON where possible.
func formatValue(v any) string {
	data, err := json.Marshal(jsonSafe(v))
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// jsonSafe converts CBOR-decoded maps with non-string keys into
// JSON-encodable maps.
func jsonSafe(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = jsonSafe(val)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jsonSafe(val)
		}
		return out
	default:
		return v
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Operation: %s\n", err.Operation)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
}

// matches reports whether event passes the view filter.
func (f ViewFilter) matches(event log.Event) bool {
	if f.Key != "" && event.Key != f.Key {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.Phase != nil && event.Phase != *f.Phase {
		return false
	}
	return true
}

// filterEvents returns events matching the filter criteria.
func filterEvents(events []log.Event, filter ViewFilter) []log.Event {
	var result []log.Event
	for _, e := range events {
		if filter.matches(e) {
			result = append(result, e)
		}
	}
	return result
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "bind":
		return log.CategoryBind, nil
	case "register":
		return log.CategoryRegister, nil
	case "notify":
		return log.CategoryNotify, nil
	case "cancel":
		return log.CategoryCancel, nil
	case "close":
		return log.CategoryClose, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be bind, register, notify, cancel, close, or error)", s)
	}
}

// ParsePhaseFlag parses a phase string from command-line flag (case-insensitive).
func ParsePhaseFlag(s string) (log.Phase, error) {
	return parsePhase(s)
}

// parsePhase parses a phase string (case-insensitive).
func parsePhase(s string) (log.Phase, error) {
	switch strings.ToLower(s) {
	case "before":
		return log.PhaseBefore, nil
	case "after":
		return log.PhaseAfter, nil
	case "initial":
		return log.PhaseInitial, nil
	default:
		return 0, fmt.Errorf("invalid phase: %s (must be before, after, or initial)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	if h := reader.Header(); h != nil {
		fmt.Fprintf(output, "# format %s", h.FormatVersion)
		if h.Producer != "" {
			fmt.Fprintf(output, ", written by %s", h.Producer)
		}
		fmt.Fprintf(output, "\n\n")
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		if !filter.matches(event) {
			continue
		}

		formatEvent(output, event)
	}

	return nil
}
