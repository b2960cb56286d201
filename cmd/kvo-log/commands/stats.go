package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/kvo-hub/kvo-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	EventsByPhase    map[log.Phase]int
	Proxies          map[string]*ProxyStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// ProxyStats holds statistics for a single proxy.
type ProxyStats struct {
	Name      string
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int

	Registered    int
	Cancelled     int
	Implicit      int
	Notifications int
	Deliveries    int // sum of observers reached by notifications
	Closed        bool

	// Notifications per key
	Keys map[string]int
}

// Live returns the number of observers still registered at the end of
// the log.
func (s *ProxyStats) Live() int {
	if s.Closed {
		return 0
	}
	return s.Registered - s.Cancelled
}

// collectStats reads all events from reader.
func collectStats(reader *log.Reader) (*Stats, error) {
	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		EventsByPhase:    make(map[log.Phase]int),
		Proxies:          make(map[string]*ProxyStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		// Track proxy stats
		ps, ok := stats.Proxies[event.ProxyID]
		if !ok {
			ps = &ProxyStats{
				Name:      event.Proxy,
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
				Keys:      make(map[string]int),
			}
			stats.Proxies[event.ProxyID] = ps
		}
		ps.Events++
		if event.Timestamp.After(ps.LastSeen) {
			ps.LastSeen = event.Timestamp
		}

		switch event.Category {
		case log.CategoryRegister:
			ps.Registered++
		case log.CategoryCancel:
			ps.Cancelled++
			if event.Implicit {
				ps.Implicit++
			}
		case log.CategoryNotify:
			stats.EventsByPhase[event.Phase]++
			ps.Notifications++
			ps.Deliveries += event.Observers
			ps.Keys[event.Key]++
		case log.CategoryClose:
			ps.Closed = true
		case log.CategoryError:
			stats.Errors++
		}
	}

	return stats, nil
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats, err := collectStats(reader)
	if err != nil {
		return err
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Observation Log Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	// Total events
	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	// Events by category
	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryBind, log.CategoryRegister, log.CategoryNotify, log.CategoryCancel, log.CategoryClose, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Notifications by phase
	fmt.Fprintln(w, "Notifications by Phase:")
	for _, phase := range []log.Phase{log.PhaseBefore, log.PhaseAfter, log.PhaseInitial} {
		if count := stats.EventsByPhase[phase]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", phase.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Proxies
	fmt.Fprintf(w, "Proxies: %d\n", len(stats.Proxies))
	if len(stats.Proxies) > 0 {
		// Sort by first seen time
		type proxyInfo struct {
			id    string
			stats *ProxyStats
		}
		proxies := make([]proxyInfo, 0, len(stats.Proxies))
		for id, ps := range stats.Proxies {
			proxies = append(proxies, proxyInfo{id, ps})
		}
		sort.Slice(proxies, func(i, j int) bool {
			return proxies[i].stats.FirstSeen.Before(proxies[j].stats.FirstSeen)
		})

		fmt.Fprintln(w, "")
		for _, p := range proxies {
			duration := p.stats.LastSeen.Sub(p.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %s: %d events, duration %s\n", shortenProxyID(p.id), p.stats.Name, p.stats.Events, duration)
			fmt.Fprintf(w, "           Observers: %d registered, %d cancelled (%d implicit), %d live\n",
				p.stats.Registered, p.stats.Cancelled, p.stats.Implicit, p.stats.Live())
			if p.stats.Notifications > 0 {
				fmt.Fprintf(w, "           Notifications: %d, deliveries: %d\n", p.stats.Notifications, p.stats.Deliveries)
				keys := make([]string, 0, len(p.stats.Keys))
				for k := range p.stats.Keys {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(w, "             %s: %d\n", k, p.stats.Keys[k])
				}
			}
			if p.stats.Closed {
				fmt.Fprintln(w, "           Closed")
			}
		}
	}

	// Errors
	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
