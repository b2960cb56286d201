package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/kvo-hub/kvo-go/pkg/log"
)

func TestFormatRegisterEvent(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	event := log.Event{
		Timestamp:      ts,
		ProxyID:        testProxyID,
		Proxy:          "thermostat",
		Category:       log.CategoryRegister,
		Key:            "Thermostat.target",
		SubscriptionID: 7,
		Interest:       "BA",
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	// Check timestamp format
	if !strings.Contains(output, "2026-01-28T10:15:32.123456Z") {
		t.Errorf("expected microsecond timestamp, got: %s", output)
	}

	// Check proxy ID (shortened)
	if !strings.Contains(output, "[proxy:abc12345]") {
		t.Errorf("expected shortened proxy ID, got: %s", output)
	}

	if !strings.Contains(output, "REGISTER Thermostat.target") {
		t.Errorf("expected category and key, got: %s", output)
	}
	if !strings.Contains(output, "Observer: 7") {
		t.Errorf("expected observer id, got: %s", output)
	}
	if !strings.Contains(output, "Interest: BA") {
		t.Errorf("expected interest, got: %s", output)
	}
}

func TestFormatNotifyEvent(t *testing.T) {
	event := log.Event{
		Timestamp: time.Date(2026, 1, 28, 10, 15, 32, 0, time.UTC),
		ProxyID:   testProxyID,
		Category:  log.CategoryNotify,
		Key:       "Thermostat.mode",
		Phase:     log.PhaseBefore,
		Value:     map[any]any{uint64(1): "heat"},
		Observers: 3,
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "NOTIFY BEFORE Thermostat.mode") {
		t.Errorf("expected notify header with phase, got: %s", output)
	}
	if !strings.Contains(output, `Value: {"1":"heat"}`) {
		t.Errorf("expected JSON value with string keys, got: %s", output)
	}
	if !strings.Contains(output, "Observers: 3") {
		t.Errorf("expected observer count, got: %s", output)
	}
	if strings.Contains(output, "Observer: ") {
		t.Errorf("dispatch-wide notify must not show an observer id, got: %s", output)
	}
}

func TestFormatCancelEvent(t *testing.T) {
	event := log.Event{
		ProxyID:        "short",
		Category:       log.CategoryCancel,
		Key:            "Thermostat.target",
		SubscriptionID: 2,
		Implicit:       true,
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "[proxy:short]") {
		t.Errorf("expected short proxy ID unchanged, got: %s", output)
	}
	if !strings.Contains(output, "Implicit") {
		t.Errorf("expected implicit marker, got: %s", output)
	}
}

func TestFormatErrorAndCloseEvents(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, log.Event{
		Category: log.CategoryError,
		Error:    &log.ErrorEventData{Operation: "bind", Message: "proxy owner can only be bound once"},
	})
	formatEvent(&buf, log.Event{Category: log.CategoryClose, Observers: 4})
	output := buf.String()

	if !strings.Contains(output, "Operation: bind") {
		t.Errorf("expected error operation, got: %s", output)
	}
	if !strings.Contains(output, "Message: proxy owner can only be bound once") {
		t.Errorf("expected error message, got: %s", output)
	}
	if !strings.Contains(output, "Dropped: 4") {
		t.Errorf("expected dropped count, got: %s", output)
	}
}

func TestFilterEvents(t *testing.T) {
	events := sessionEvents(time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC))

	notify := log.CategoryNotify
	after := log.PhaseAfter

	tests := []struct {
		name   string
		filter ViewFilter
		want   int
	}{
		{"None", ViewFilter{}, len(events)},
		{"Category", ViewFilter{Category: &notify}, 2},
		{"Phase", ViewFilter{Phase: &after}, 1},
		{"Key", ViewFilter{Key: "Thermostat.target"}, 5},
		{"NoMatch", ViewFilter{Key: "Thermostat.mode"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(filterEvents(events, tt.filter)); got != tt.want {
				t.Errorf("expected %d events, got %d", tt.want, got)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	categories := map[string]log.Category{
		"bind":     log.CategoryBind,
		"REGISTER": log.CategoryRegister,
		"Notify":   log.CategoryNotify,
		"cancel":   log.CategoryCancel,
		"close":    log.CategoryClose,
		"error":    log.CategoryError,
	}
	for s, want := range categories {
		got, err := ParseCategoryFlag(s)
		if err != nil || got != want {
			t.Errorf("ParseCategoryFlag(%q) = %v, %v; want %v", s, got, err, want)
		}
	}
	if _, err := ParseCategoryFlag("header"); err == nil {
		t.Error("expected error for header category")
	}

	phases := map[string]log.Phase{
		"before":  log.PhaseBefore,
		"AFTER":   log.PhaseAfter,
		"initial": log.PhaseInitial,
	}
	for s, want := range phases {
		got, err := ParsePhaseFlag(s)
		if err != nil || got != want {
			t.Errorf("ParsePhaseFlag(%q) = %v, %v; want %v", s, got, err, want)
		}
	}
	if _, err := ParsePhaseFlag("during"); err == nil {
		t.Error("expected error for unknown phase")
	}
}

func TestRunView(t *testing.T) {
	path := createTestLogFile(t, sessionEvents(time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)))

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	output := buf.String()

	if !strings.HasPrefix(output, "# format 1.0, written by test") {
		t.Errorf("expected header line, got: %s", output)
	}
	for _, want := range []string{"BIND", "REGISTER", "NOTIFY INITIAL", "NOTIFY AFTER", "ERROR", "CANCEL"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if strings.Contains(output, "HEADER") {
		t.Error("header record must not be shown as an event")
	}
	if !strings.Contains(output, "Value: 21.5") {
		t.Errorf("expected decoded value, got: %s", output)
	}
}

func TestRunViewFiltered(t *testing.T) {
	path := createTestLogFile(t, sessionEvents(time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)))

	cancel := log.CategoryCancel
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Category: &cancel}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "CANCEL") {
		t.Errorf("expected cancel event, got: %s", output)
	}
	if strings.Contains(output, "NOTIFY") || strings.Contains(output, "REGISTER") {
		t.Errorf("expected only cancel events, got: %s", output)
	}
}

func TestRunViewMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := RunView("/nonexistent/file.klog", ViewFilter{}, &buf); err == nil {
		t.Error("expected error for missing file")
	}
}
