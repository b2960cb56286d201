package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func logJSON(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	if buf.Len() == 0 {
		t.Fatal("no output produced")
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestSlogAdapterLogsNotifyEvent(t *testing.T) {
	entry := logJSON(t, Event{
		Timestamp: time.Now(),
		ProxyID:   "proxy-123",
		Proxy:     "Thermostat",
		Category:  CategoryNotify,
		Key:       "Thermostat.target",
		Phase:     PhaseBefore,
		Value:     20.5,
		Observers: 2,
	})

	if entry["msg"] != "kvo" {
		t.Errorf("msg: got %v, want %q", entry["msg"], "kvo")
	}
	if entry["level"] != "DEBUG" {
		t.Errorf("level: got %v, want DEBUG", entry["level"])
	}
	if entry["proxy_id"] != "proxy-123" {
		t.Errorf("proxy_id: got %v", entry["proxy_id"])
	}
	if entry["category"] != "NOTIFY" {
		t.Errorf("category: got %v", entry["category"])
	}
	if entry["key"] != "Thermostat.target" {
		t.Errorf("key: got %v", entry["key"])
	}
	if entry["phase"] != "BEFORE" {
		t.Errorf("phase: got %v", entry["phase"])
	}
	if entry["observers"] != float64(2) {
		t.Errorf("observers: got %v", entry["observers"])
	}
	if entry["value"] != "20.5" {
		t.Errorf("value: got %v", entry["value"])
	}
}

func TestSlogAdapterLogsRegisterEvent(t *testing.T) {
	entry := logJSON(t, Event{
		ProxyID:        "p",
		Category:       CategoryRegister,
		Key:            "Counter.count",
		SubscriptionID: 3,
		Interest:       "AI",
	})

	if entry["sub_id"] != float64(3) {
		t.Errorf("sub_id: got %v", entry["sub_id"])
	}
	if entry["interest"] != "AI" {
		t.Errorf("interest: got %v", entry["interest"])
	}
	if _, ok := entry["phase"]; ok {
		t.Error("register event should not carry a phase")
	}
}

func TestSlogAdapterLogsCancelEvent(t *testing.T) {
	entry := logJSON(t, Event{
		ProxyID:        "p",
		Category:       CategoryCancel,
		SubscriptionID: 9,
		Implicit:       true,
	})

	if entry["implicit"] != true {
		t.Errorf("implicit: got %v", entry["implicit"])
	}
}

func TestSlogAdapterLogsErrorEvent(t *testing.T) {
	entry := logJSON(t, Event{
		ProxyID:  "p",
		Category: CategoryError,
		Error:    &ErrorEventData{Operation: "register", Message: "proxy owner is not bound"},
	})

	if entry["error_op"] != "register" {
		t.Errorf("error_op: got %v", entry["error_op"])
	}
	if entry["error_msg"] != "proxy owner is not bound" {
		t.Errorf("error_msg: got %v", entry["error_msg"])
	}
}

func TestSlogAdapterLogsHeaderEvent(t *testing.T) {
	entry := logJSON(t, Event{
		Category: CategoryHeader,
		Header:   &HeaderEvent{FormatVersion: "1.0", Producer: "kvo-demo"},
	})

	if entry["format_version"] != "1.0" {
		t.Errorf("format_version: got %v", entry["format_version"])
	}
	if entry["producer"] != "kvo-demo" {
		t.Errorf("producer: got %v", entry["producer"])
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	NewSlogAdapter(slog.New(handler)).Log(Event{Category: CategoryBind})

	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got %q", buf.String())
	}
}
