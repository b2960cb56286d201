package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/kvo-hub/kvo-go/pkg/version"
)

// ErrIncompatibleFormat is returned when a log file was written with an
// incompatible format version.
var ErrIncompatibleFormat = errors.New("incompatible log format")

// Filter specifies criteria for filtering log events.
// Empty/nil fields match all events for that criterion.
type Filter struct {
	// ProxyID filters by exact proxy ID match.
	ProxyID string

	// Key filters by observed property ("Owner.name").
	Key string

	// Category filters by event category.
	Category *Category

	// Phase filters by notification phase.
	Phase *Phase

	// SubscriptionID filters by observer ID.
	SubscriptionID uint64

	// TimeStart filters events at or after this time.
	TimeStart *time.Time

	// TimeEnd filters events before this time.
	TimeEnd *time.Time
}

// Matches returns true if the event matches all filter criteria.
func (f *Filter) Matches(event Event) bool {
	if f.ProxyID != "" && event.ProxyID != f.ProxyID {
		return false
	}
	if f.Key != "" && event.Key != f.Key {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.Phase != nil && event.Phase != *f.Phase {
		return false
	}
	if f.SubscriptionID != 0 && event.SubscriptionID != f.SubscriptionID {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	return true
}

// Reader reads observation log events from a CBOR-encoded file.
// It provides an iterator interface for streaming large files.
// Header records are consumed by the reader and never returned by Next.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter
	header  *HeaderEvent
	pending *Event
}

// NewReader creates a Reader that reads all events from the specified log file.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader creates a Reader that reads events matching the filter.
// It fails with ErrIncompatibleFormat if the file header announces a format
// major version this library cannot read.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := &Reader{
		file:    f,
		decoder: NewDecoder(f),
		filter:  filter,
	}

	var first Event
	switch err := r.decoder.Decode(&first); {
	case err == io.EOF:
		return r, nil
	case err != nil:
		f.Close()
		return nil, err
	}

	if first.Category == CategoryHeader && first.Header != nil {
		if err := version.CheckCompatible(first.Header.FormatVersion); err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", ErrIncompatibleFormat, err)
		}
		r.header = first.Header
	} else {
		r.pending = &first
	}
	return r, nil
}

// Header returns the file header, or nil for files written without one.
func (r *Reader) Header() *HeaderEvent {
	return r.header
}

// Next returns the next event that matches the filter.
// Returns io.EOF when no more events are available.
func (r *Reader) Next() (Event, error) {
	if r.pending != nil {
		event := *r.pending
		r.pending = nil
		if r.filter.Matches(event) {
			return event, nil
		}
	}

	for {
		var event Event
		if err := r.decoder.Decode(&event); err != nil {
			if err == io.EOF {
				return Event{}, io.EOF
			}
			return Event{}, err
		}

		// Appended files may carry further headers.
		if event.Category == CategoryHeader {
			continue
		}
		if r.filter.Matches(event) {
			return event, nil
		}
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
