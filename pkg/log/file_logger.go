package log

import (
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/kvo-hub/kvo-go/pkg/version"
)

// FileLogger writes observation events to a file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	file    *os.File
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewFileLogger creates a new FileLogger that writes to the specified path.
// If the file exists, new events are appended. The file is created with
// permissions 0644 if it doesn't exist, and a header event carrying the
// current format version is written to new (empty) files.
func NewFileLogger(path string) (*FileLogger, error) {
	return NewFileLoggerWithProducer(path, "")
}

// NewFileLoggerWithProducer is like NewFileLogger and records producer in the
// header of new files.
func NewFileLoggerWithProducer(path, producer string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	l := &FileLogger{
		file:    f,
		encoder: NewEncoder(f),
	}

	if info.Size() == 0 {
		header := Event{
			Timestamp: time.Now(),
			Category:  CategoryHeader,
			Header: &HeaderEvent{
				FormatVersion: version.Current,
				Producer:      producer,
			},
		}
		if err := l.encoder.Encode(header); err != nil {
			f.Close()
			return nil, err
		}
	}

	return l, nil
}

// Log writes an event to the log file.
// This method is safe for concurrent use.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	// Logging must not disrupt dispatch; unencodable events are counted.
	if err := l.encoder.Encode(event); err != nil {
		l.dropped++
	}
}

// Dropped returns how many events could not be encoded.
func (l *FileLogger) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Close closes the log file.
// It is safe to call Close multiple times.
// After Close is called, subsequent Log calls are silently ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	return l.file.Close()
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
