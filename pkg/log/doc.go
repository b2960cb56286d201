// Package log provides structured observation event logging for kvo proxies.
//
// This package defines the Logger interface and Event type for capturing the
// lifecycle of property observation: owner binding, observer registration,
// change notifications, cancellations and errors. It is separate from
// operational logging (slog) - the event trace is a complete machine-readable
// record of what a proxy dispatched, for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/var/log/kvo/thermostat.klog")
//
//	// Both: use MultiLogger
//	cfg.EventLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Categories
//
//   - Header: first record of a log file, carries the format version
//   - Bind: a proxy was bound to its owner
//   - Register: an observer was added
//   - Notify: a change notification was dispatched
//   - Cancel: an observer was removed (explicitly or by the runtime cleanup)
//   - Close: a proxy dropped its registry
//   - Error: an operation failed
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with a .klog extension. The
// kvo-log CLI tool provides viewing, filtering, and export capabilities.
package log
