// Command kvo-demo is an interactive playground for the kvo observation hub.
//
// It creates a thermostat and a heat pump that follows the thermostat's
// heating demand. The user changes properties and watches the resulting
// notifications. The command demonstrates:
//   - CLI argument parsing
//   - YAML configuration file support
//   - Localized output (English, German)
//   - Structured debug logging and CBOR event logs for kvo-log
//
// Usage:
//
//	kvo-demo [flags]
//
// Flags:
//
//	-config string      Configuration file path (YAML)
//	-lang string        Output language, e.g. de or en-US (default from LANG)
//	-event-log string   File path for observation event logging (CBOR format)
//	-log-level string   Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Start with defaults
//	kvo-demo
//
//	# German output, record every hub event
//	kvo-demo -lang de -event-log demo.klog
//
//	# Trace every hub event on stderr
//	kvo-demo -log-level debug
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kvo-hub/kvo-go/cmd/kvo-demo/interactive"
	"github.com/kvo-hub/kvo-go/pkg/examples"
	"github.com/kvo-hub/kvo-go/pkg/kvo"
	"github.com/kvo-hub/kvo-go/pkg/log"
)

var (
	configFile = flag.String("config", "", "Configuration file path (YAML)")
	lang       = flag.String("lang", "", "Output language, e.g. de or en-US (default from LANG)")
	eventLog   = flag.String("event-log", "", "File path for observation event logging (CBOR format)")
	logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
)

func main() {
	flag.Parse()

	cfg, err := resolveConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveConfig loads the config file and applies explicitly set flags.
func resolveConfig() (Config, error) {
	cfg := DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = LoadConfig(*configFile); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lang":
			cfg.Lang = *lang
		case "event-log":
			cfg.EventLog = *eventLog
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if cfg.Lang == "" {
		cfg.Lang = posixLocaleTag(os.Getenv("LANG"))
	}
	return cfg, nil
}

func run(cfg Config) error {
	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	bundle, err := loadLocales()
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}
	loc := bundle.Localizer(cfg.Lang)

	console, err := interactive.NewConsole("kvo> ")
	if err != nil {
		return err
	}

	logger := setupLogging(console.Stderr(), level)
	logger.Info("kvo-demo starting", "language", loc.Language().String())

	events, closeEvents, err := setupEventLog(cfg.EventLog, logger, level)
	if err != nil {
		return err
	}
	defer closeEvents()

	proxyCfg := kvo.Config{Logger: logger, EventLogger: events}

	tcfg, err := cfg.thermostatConfig()
	if err != nil {
		return err
	}
	tcfg.Proxy = proxyCfg
	thermostat, err := examples.NewThermostat(tcfg)
	if err != nil {
		return fmt.Errorf("failed to create thermostat: %w", err)
	}
	defer thermostat.Close()

	hcfg := cfg.heatPumpConfig()
	hcfg.Proxy = proxyCfg
	heatPump, err := examples.NewHeatPump(hcfg)
	if err != nil {
		return fmt.Errorf("failed to create heat pump: %w", err)
	}
	defer heatPump.Close()

	if cfg.HeatPump.Follow {
		if err := heatPump.Follow(thermostat); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Exit on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	shell := interactive.NewShell(thermostat, heatPump, loc, console.Stdout())
	defer shell.Close()
	console.Run(ctx, cancel, shell)
	return nil
}

// posixLocaleTag turns a POSIX locale such as de_DE.UTF-8 into a BCP 47
// tag.
func posixLocaleTag(s string) string {
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "C" || s == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(s, "_", "-")
}

func setupLogging(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// setupEventLog builds the event logger for all proxies: the CBOR file if
// path is set, plus the slog trace at debug level.
func setupEventLog(path string, logger *slog.Logger, level slog.Level) (log.Logger, func(), error) {
	var loggers []log.Logger
	closeFn := func() {}

	if path != "" {
		fl, err := log.NewFileLoggerWithProducer(path, "kvo-demo")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create event logger: %w", err)
		}
		logger.Info("event logging enabled", "path", path)
		loggers = append(loggers, fl)
		closeFn = func() {
			if n := fl.Dropped(); n > 0 {
				logger.Warn("events could not be written", "count", n)
			}
			fl.Close()
		}
	}

	if level <= slog.LevelDebug {
		loggers = append(loggers, log.NewSlogAdapter(logger))
	}

	switch len(loggers) {
	case 0:
		return log.NoopLogger{}, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return log.NewMultiLogger(loggers...), closeFn, nil
	}
}
