package interactive

import (
	"context"
	"fmt"
	"io"

	"github.com/chzyer/readline"
)

// Console reads commands with line editing and history and hands them to
// a Shell.
type Console struct {
	rl *readline.Instance
}

// NewConsole creates a console with the given prompt.
func NewConsole(prompt string) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{rl: rl}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for shell and log output to avoid interfering with the prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop. It returns when the shell exits,
// input ends or ctx is cancelled, and calls cancel on the way out.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc, shell *Shell) {
	defer c.rl.Close()
	defer cancel()

	shell.PrintHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			shell.Exec("quit")
			return
		}

		if shell.Exec(line) {
			return
		}
	}
}

func completer() *readline.PrefixCompleter {
	props := func() []readline.PrefixCompleterInterface {
		return []readline.PrefixCompleterInterface{
			readline.PcItem("target"),
			readline.PcItem("current"),
			readline.PcItem("mode"),
			readline.PcItem("heating"),
			readline.PcItem("power"),
			readline.PcItem("state"),
		}
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("get", props()...),
		readline.PcItem("set",
			readline.PcItem("target"),
			readline.PcItem("current"),
			readline.PcItem("mode",
				readline.PcItem("off"),
				readline.PcItem("heat"),
				readline.PcItem("eco"),
			),
		),
		readline.PcItem("watch", props()...),
		readline.PcItem("cancel"),
		readline.PcItem("list"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}
