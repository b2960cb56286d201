// Package interactive provides the interactive command-line interface
// for kvo-demo.
package interactive

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/kvo-hub/kvo-go/pkg/examples"
	"github.com/kvo-hub/kvo-go/pkg/kvo"
	"github.com/kvo-hub/kvo-go/pkg/localize"
)

// property is one observable property exposed by the shell.
type property struct {
	owner string
	get   func() string
	set   func(string) error // nil for read-only properties
	watch func(n int, interest kvo.Interest) (*kvo.Observer, error)
}

// watch is an active registration made with the watch command.
type watch struct {
	n        int
	prop     string
	interest kvo.Interest
	obs      *kvo.Observer
}

// Shell executes demo commands against a thermostat and a heat pump.
// It is not safe for concurrent use.
type Shell struct {
	thermostat *examples.Thermostat
	heatPump   *examples.HeatPump
	loc        *localize.Localizer
	out        io.Writer

	props     map[string]property
	watches   map[int]*watch
	nextWatch int
}

// NewShell creates a shell. Command output and watch notifications are
// written to out.
func NewShell(t *examples.Thermostat, hp *examples.HeatPump, loc *localize.Localizer, out io.Writer) *Shell {
	s := &Shell{
		thermostat: t,
		heatPump:   hp,
		loc:        loc,
		out:        out,
		watches:    make(map[int]*watch),
	}
	s.props = map[string]property{
		"target": {
			owner: "thermostat",
			get:   func() string { return formatValue(t.Target()) },
			set: func(v string) error {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return err
				}
				return t.SetTarget(f)
			},
			watch: func(n int, i kvo.Interest) (*kvo.Observer, error) {
				return watchKey(s, n, t.Proxy(), examples.TargetKey, i)
			},
		},
		"current": {
			owner: "thermostat",
			get:   func() string { return formatValue(t.Current()) },
			set: func(v string) error {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return err
				}
				return t.UpdateCurrent(f)
			},
			watch: func(n int, i kvo.Interest) (*kvo.Observer, error) {
				return watchKey(s, n, t.Proxy(), examples.CurrentKey, i)
			},
		},
		"mode": {
			owner: "thermostat",
			get:   func() string { return t.Mode().String() },
			set: func(v string) error {
				m, err := examples.ParseMode(v)
				if err != nil {
					return err
				}
				return t.SetMode(m)
			},
			watch: func(n int, i kvo.Interest) (*kvo.Observer, error) {
				return watchKey(s, n, t.Proxy(), examples.ModeKey, i)
			},
		},
		"heating": {
			owner: "thermostat",
			get:   func() string { return formatValue(t.Heating()) },
			watch: func(n int, i kvo.Interest) (*kvo.Observer, error) {
				return watchKey(s, n, t.Proxy(), examples.HeatingKey, i)
			},
		},
		"power": {
			owner: "heatpump",
			get:   func() string { return formatValue(hp.Power()) },
			watch: func(n int, i kvo.Interest) (*kvo.Observer, error) {
				return watchKey(s, n, hp.Proxy(), examples.PowerKey, i)
			},
		},
		"state": {
			owner: "heatpump",
			get:   func() string { return hp.State().String() },
			watch: func(n int, i kvo.Interest) (*kvo.Observer, error) {
				return watchKey(s, n, hp.Proxy(), examples.StateKey, i)
			},
		},
	}
	return s
}

// watchKey registers a watch that prints each notification.
func watchKey[O, T any](s *Shell, n int, p *kvo.Proxy[O], key kvo.Key[O, T], interest kvo.Interest) (*kvo.Observer, error) {
	return kvo.Observe(p, key, interest, func(kind kvo.ChangeKind, v T) {
		s.printf("[watch %s] %s %s: %s", strconv.Itoa(n), key.String(), kind.String(), formatValue(v))
	})
}

// formatValue renders values without locale grouping so that numbers
// read the same as they are typed.
func formatValue(v any) string {
	return fmt.Sprint(v)
}

// printf writes a localized line. Numbers must be passed preformatted.
func (s *Shell) printf(key string, args ...any) {
	fmt.Fprintln(s.out, s.loc.Localize(key, args...))
}

// Exec runs one command line. It returns true when the shell should exit.
func (s *Shell) Exec(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.PrintHelp()

	case "get", "g":
		s.cmdGet(args)

	case "set", "s":
		s.cmdSet(args)

	case "watch", "w":
		s.cmdWatch(args)

	case "cancel", "c":
		s.cmdCancel(args)

	case "list", "l":
		s.cmdList()

	case "quit", "exit", "q":
		s.printf("Exiting...")
		s.Close()
		return true

	default:
		s.printf("Unknown command: %s (type 'help' for commands)", cmd)
	}
	return false
}

// PrintHelp writes the command overview.
func (s *Shell) PrintHelp() {
	fmt.Fprintln(s.out, s.loc.LocalizeTable("Help", "help"))
}

// Close cancels all watches.
func (s *Shell) Close() {
	for n, w := range s.watches {
		w.obs.Cancel()
		delete(s.watches, n)
	}
}

func (s *Shell) cmdGet(args []string) {
	if len(args) == 0 {
		for _, name := range s.propertyNames() {
			s.printf("%s.%s = %s", s.props[name].owner, name, s.props[name].get())
		}
		return
	}

	for _, name := range args {
		p, ok := s.props[strings.ToLower(name)]
		if !ok {
			s.printf("Unknown property: %s", name)
			continue
		}
		s.printf("%s.%s = %s", p.owner, strings.ToLower(name), p.get())
	}
}

func (s *Shell) cmdSet(args []string) {
	if len(args) != 2 {
		s.printf("Usage: %s", "set <target|current|mode> <value>")
		return
	}

	name := strings.ToLower(args[0])
	p, ok := s.props[name]
	if !ok {
		s.printf("Unknown property: %s", args[0])
		return
	}
	if p.set == nil {
		s.printf("Property %s is read-only", name)
		return
	}
	if err := p.set(args[1]); err != nil {
		s.printf("Error: %s", err.Error())
		return
	}
	s.printf("%s set to %s", name, p.get())
}

func (s *Shell) cmdWatch(args []string) {
	if len(args) < 1 || len(args) > 2 {
		s.printf("Usage: %s", "watch <property> [before,after,initial|all|changes]")
		return
	}

	name := strings.ToLower(args[0])
	p, ok := s.props[name]
	if !ok {
		s.printf("Unknown property: %s", args[0])
		return
	}

	interest := kvo.Interested(kvo.InitialValue, kvo.AfterChange)
	if len(args) == 2 {
		i, err := ParseInterest(args[1])
		if err != nil {
			s.printf("Error: %s", err.Error())
			return
		}
		interest = i
	}

	// The number is reserved up front because an initial value is
	// printed before Observe returns.
	n := s.nextWatch + 1
	obs, err := p.watch(n, interest)
	if err != nil {
		s.printf("Error: %s", err.Error())
		return
	}
	s.nextWatch = n
	s.watches[n] = &watch{n: n, prop: name, interest: interest, obs: obs}
	s.printf("Watching %s as #%s (%s)", name, strconv.Itoa(n), interest.String())
}

func (s *Shell) cmdCancel(args []string) {
	if len(args) != 1 {
		s.printf("Usage: %s", "cancel <watch-number>")
		return
	}

	n, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
	if err != nil {
		s.printf("Error: %s", err.Error())
		return
	}
	w, ok := s.watches[n]
	if !ok {
		s.printf("No watch #%s", strconv.Itoa(n))
		return
	}
	w.obs.Cancel()
	delete(s.watches, n)
	s.printf("Cancelled watch #%s", strconv.Itoa(n))
}

func (s *Shell) cmdList() {
	if len(s.watches) == 0 {
		s.printf("No active watches")
		return
	}

	ns := make([]int, 0, len(s.watches))
	for n := range s.watches {
		ns = append(ns, n)
	}
	sort.Ints(ns)

	for _, n := range ns {
		w := s.watches[n]
		s.printf("#%s %s.%s (%s) observer %s",
			strconv.Itoa(n), s.props[w.prop].owner, w.prop, w.interest.String(),
			strconv.FormatUint(w.obs.ID(), 10))
	}
}

func (s *Shell) propertyNames() []string {
	names := make([]string, 0, len(s.props))
	for name := range s.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseInterest parses a comma separated list of change kinds
// (before, after, initial) or one of the sets "all" and "changes".
func ParseInterest(s string) (kvo.Interest, error) {
	var kinds []kvo.ChangeKind
	for _, tok := range strings.Split(strings.ToLower(s), ",") {
		switch strings.TrimSpace(tok) {
		case "before", "b":
			kinds = append(kinds, kvo.BeforeChange)
		case "after", "a":
			kinds = append(kinds, kvo.AfterChange)
		case "initial", "i":
			kinds = append(kinds, kvo.InitialValue)
		case "all":
			return kvo.InterestAll, nil
		case "changes":
			return kvo.InterestChanges, nil
		default:
			return 0, fmt.Errorf("invalid change kind %q", tok)
		}
	}
	return kvo.Interested(kinds...), nil
}
