package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kvo-hub/kvo-go/pkg/log"
)

// FilterOptions specifies filtering criteria for the filter command.
type FilterOptions struct {
	Output    string
	ProxyID   string
	Key       string
	SubID     string
	TimeStart string
	TimeEnd   string
	Category  string
	Phase     string
}

// RunFilter filters the log file and writes matching events to a new file.
// It returns the number of events written.
func RunFilter(path string, opts FilterOptions) (int, error) {
	// Build filter
	filter := log.Filter{
		ProxyID: opts.ProxyID,
		Key:     opts.Key,
	}

	if opts.SubID != "" {
		id, err := strconv.ParseUint(opts.SubID, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid sub-id: %w", err)
		}
		filter.SubscriptionID = id
	}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return 0, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return 0, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	if opts.Category != "" {
		c, err := parseCategory(opts.Category)
		if err != nil {
			return 0, err
		}
		filter.Category = &c
	}

	if opts.Phase != "" {
		p, err := parsePhase(opts.Phase)
		if err != nil {
			return 0, err
		}
		filter.Phase = &p
	}

	// Open input
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	producer := "kvo-log filter"
	if h := reader.Header(); h != nil && h.Producer != "" {
		producer = h.Producer + " | " + producer
	}

	// Create file logger to write filtered events
	logger, err := log.NewFileLoggerWithProducer(opts.Output, producer)
	if err != nil {
		return 0, fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read event: %w", err)
		}

		logger.Log(event)
		count++
	}

	if n := logger.Dropped(); n > 0 {
		return count - n, fmt.Errorf("failed to write %d events", n)
	}
	return count, nil
}
