package commands

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/kvo-hub/kvo-go/pkg/log"
)

func readAll(t *testing.T, path string) (*log.HeaderEvent, []log.Event) {
	t.Helper()

	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	var events []log.Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		events = append(events, event)
	}
	return reader.Header(), events
}

func TestFilterByProxyID(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, ProxyID: "proxy-1", Category: log.CategoryBind},
		{Timestamp: ts, ProxyID: "proxy-2", Category: log.CategoryBind},
		{Timestamp: ts, ProxyID: "proxy-1", Category: log.CategoryClose},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.klog")

	n, err := RunFilter(path, FilterOptions{
		Output:  outPath,
		ProxyID: "proxy-1",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 filtered events, got %d", n)
	}

	header, got := readAll(t, outPath)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	for _, e := range got {
		if e.ProxyID != "proxy-1" {
			t.Errorf("expected proxy-1, got %s", e.ProxyID)
		}
	}
	if header == nil || header.Producer != "test | kvo-log filter" {
		t.Errorf("expected chained producer in header, got %+v", header)
	}
}

func TestFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: base, ProxyID: "p", Category: log.CategoryBind},
		{Timestamp: base.Add(1 * time.Minute), ProxyID: "p", Category: log.CategoryRegister},
		{Timestamp: base.Add(2 * time.Minute), ProxyID: "p", Category: log.CategoryNotify},
		{Timestamp: base.Add(3 * time.Minute), ProxyID: "p", Category: log.CategoryCancel},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.klog")

	_, err := RunFilter(path, FilterOptions{
		Output:    outPath,
		TimeStart: base.Add(1 * time.Minute).Format(time.RFC3339),
		TimeEnd:   base.Add(3 * time.Minute).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	_, got := readAll(t, outPath)
	if len(got) != 2 {
		t.Fatalf("expected 2 events in [1m, 3m), got %d", len(got))
	}
	if got[0].Category != log.CategoryRegister || got[1].Category != log.CategoryNotify {
		t.Errorf("unexpected events: %v, %v", got[0].Category, got[1].Category)
	}
}

func TestFilterByKeyPhaseAndSubscription(t *testing.T) {
	path := createTestLogFile(t, sessionEvents(time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)))

	tests := []struct {
		name string
		opts FilterOptions
		want int
	}{
		{"Key", FilterOptions{Key: "Thermostat.target"}, 5},
		{"Category", FilterOptions{Category: "notify"}, 2},
		{"Phase", FilterOptions{Phase: "initial"}, 1},
		{"SubID", FilterOptions{SubID: "1"}, 3},
		{"Combined", FilterOptions{Category: "notify", SubID: "1"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Output = filepath.Join(t.TempDir(), "out.klog")
			n, err := RunFilter(path, tt.opts)
			if err != nil {
				t.Fatalf("RunFilter failed: %v", err)
			}
			if n != tt.want {
				t.Errorf("expected %d events, got %d", tt.want, n)
			}
		})
	}
}

func TestFilterInvalidOptions(t *testing.T) {
	path := createTestLogFile(t, nil)
	out := filepath.Join(t.TempDir(), "out.klog")

	for name, opts := range map[string]FilterOptions{
		"TimeStart": {Output: out, TimeStart: "yesterday"},
		"TimeEnd":   {Output: out, TimeEnd: "tomorrow"},
		"Category":  {Output: out, Category: "frame"},
		"Phase":     {Output: out, Phase: "sideways"},
		"SubID":     {Output: out, SubID: "-1"},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := RunFilter(path, opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}
