package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kvo-hub/kvo-go/pkg/log"
)

const testProxyID = "abc12345-6789-0123-4567-890abcdef012"

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.klog")

	logger, err := log.NewFileLoggerWithProducer(path, "test")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

// sessionEvents returns the trace of one observer seeing a single change.
func sessionEvents(base time.Time) []log.Event {
	at := func(ms int) time.Time { return base.Add(time.Duration(ms) * time.Millisecond) }
	return []log.Event{
		{Timestamp: at(0), ProxyID: testProxyID, Proxy: "thermostat", Category: log.CategoryBind},
		{Timestamp: at(1), ProxyID: testProxyID, Proxy: "thermostat", Category: log.CategoryRegister,
			Key: "Thermostat.target", SubscriptionID: 1, Interest: "AI"},
		{Timestamp: at(2), ProxyID: testProxyID, Proxy: "thermostat", Category: log.CategoryNotify,
			Key: "Thermostat.target", Phase: log.PhaseInitial, SubscriptionID: 1, Value: 20.0, Observers: 1},
		{Timestamp: at(3), ProxyID: testProxyID, Proxy: "thermostat", Category: log.CategoryNotify,
			Key: "Thermostat.target", Phase: log.PhaseAfter, Value: 21.5, Observers: 1},
		{Timestamp: at(4), ProxyID: testProxyID, Proxy: "thermostat", Category: log.CategoryError,
			Key: "Thermostat.target", Error: &log.ErrorEventData{Operation: "notify", Message: "callback type mismatch"}},
		{Timestamp: at(5), ProxyID: testProxyID, Proxy: "thermostat", Category: log.CategoryCancel,
			Key: "Thermostat.target", SubscriptionID: 1, Implicit: true},
	}
}
