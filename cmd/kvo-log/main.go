// Command kvo-log is a tool for viewing and analyzing observation event logs.
//
// Log files are created by kvo-demo with the -event-log flag, or by any
// program that sets a log.FileLogger as the EventLogger of its proxies.
//
// Usage:
//
//	kvo-log <command> [flags] <file.klog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	kvo-log view demo.klog
//
//	# View only notifications sent before a change
//	kvo-log view -category notify -phase before demo.klog
//
//	# Export to JSONL
//	kvo-log export -format jsonl demo.klog
//
//	# Filter one observer and save to new file
//	kvo-log filter -proxy-id abc12345-... -sub-id 3 -o observer.klog demo.klog
//
//	# Show statistics
//	kvo-log stats demo.klog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kvo-hub/kvo-go/cmd/kvo-log/commands"
)

const usage = `kvo-log - Observation Event Log Analyzer

Usage:
  kvo-log <command> [flags] <file.klog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "kvo-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `kvo-log view - View log file in human-readable format

Usage:
  kvo-log view [flags] <file.klog>

Flags:
`)
		fs.PrintDefaults()
	}

	key := fs.String("key", "", "Filter by property key (Owner.name)")
	category := fs.String("category", "", "Filter by category (bind, register, notify, cancel, close, error)")
	phase := fs.String("phase", "", "Filter by notification phase (before, after, initial)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	// Build filter
	filter := commands.ViewFilter{Key: *key}

	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Category = &c
	}

	if *phase != "" {
		p, err := commands.ParsePhaseFlag(*phase)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Phase = &p
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `kvo-log export - Export log file to JSON or CSV format

Usage:
  kvo-log export [flags] <file.klog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `kvo-log filter - Filter log file and write to new file

Usage:
  kvo-log filter [flags] <file.klog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	proxyID := fs.String("proxy-id", "", "Filter by proxy ID")
	key := fs.String("key", "", "Filter by property key (Owner.name)")
	subID := fs.String("sub-id", "", "Filter by observer ID")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	category := fs.String("category", "", "Filter by category (bind, register, notify, cancel, close, error)")
	phase := fs.String("phase", "", "Filter by notification phase (before, after, initial)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	opts := commands.FilterOptions{
		Output:    *output,
		ProxyID:   *proxyID,
		Key:       *key,
		SubID:     *subID,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Category:  *category,
		Phase:     *phase,
	}

	n, err := commands.RunFilter(path, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `kvo-log stats - Show statistics about the log file

Usage:
  kvo-log stats <file.klog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
