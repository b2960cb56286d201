package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/kvo-hub/kvo-go/pkg/log"
)

func TestCollectStats(t *testing.T) {
	base := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := append(sessionEvents(base),
		log.Event{Timestamp: base.Add(time.Second), ProxyID: "second-proxy", Proxy: "heatpump", Category: log.CategoryBind},
		log.Event{Timestamp: base.Add(2 * time.Second), ProxyID: "second-proxy", Proxy: "heatpump", Category: log.CategoryRegister, SubscriptionID: 1},
		log.Event{Timestamp: base.Add(3 * time.Second), ProxyID: "second-proxy", Proxy: "heatpump", Category: log.CategoryClose, Observers: 1},
	)
	path := createTestLogFile(t, events)

	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	stats, err := collectStats(reader)
	if err != nil {
		t.Fatalf("collectStats failed: %v", err)
	}

	if stats.TotalEvents != 9 {
		t.Errorf("expected 9 events, got %d", stats.TotalEvents)
	}
	if stats.EventsByCategory[log.CategoryNotify] != 2 {
		t.Errorf("expected 2 notify events, got %d", stats.EventsByCategory[log.CategoryNotify])
	}
	if stats.EventsByPhase[log.PhaseInitial] != 1 || stats.EventsByPhase[log.PhaseAfter] != 1 {
		t.Errorf("unexpected phases: %v", stats.EventsByPhase)
	}
	if stats.Errors != 1 {
		t.Errorf("expected 1 error, got %d", stats.Errors)
	}
	if !stats.TimeRange.Start.Equal(base) || !stats.TimeRange.End.Equal(base.Add(3*time.Second)) {
		t.Errorf("unexpected time range: %v - %v", stats.TimeRange.Start, stats.TimeRange.End)
	}

	thermo := stats.Proxies[testProxyID]
	if thermo == nil {
		t.Fatal("missing thermostat proxy stats")
	}
	if thermo.Name != "thermostat" || thermo.Registered != 1 || thermo.Cancelled != 1 || thermo.Implicit != 1 {
		t.Errorf("unexpected thermostat stats: %+v", thermo)
	}
	if thermo.Live() != 0 || thermo.Deliveries != 2 || thermo.Keys["Thermostat.target"] != 2 {
		t.Errorf("unexpected thermostat delivery stats: %+v", thermo)
	}

	hp := stats.Proxies["second-proxy"]
	if hp == nil || !hp.Closed || hp.Live() != 0 || hp.Registered != 1 {
		t.Errorf("unexpected heatpump stats: %+v", hp)
	}
}

func TestRunStats(t *testing.T) {
	path := createTestLogFile(t, sessionEvents(time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)))

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 6",
		"NOTIFY:",
		"INITIAL:",
		"Proxies: 1",
		"[abc12345] thermostat: 6 events",
		"1 registered, 1 cancelled (1 implicit), 0 live",
		"Thermostat.target: 2",
		"Errors: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestRunStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("expected zero events, got:\n%s", buf.String())
	}
}
