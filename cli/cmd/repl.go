package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/ardnew/lispy/cli/cmd/repl"
	"github.com/ardnew/lispy/lang"
	"github.com/ardnew/lispy/log"
)

// Repl reads expressions interactively, printing the value of each.
type Repl struct {
	Plain    bool `help:"Use the plain line-oriented prompt even on a terminal"`
	NoPrompt bool `help:"Do not print prompts in the line-oriented mode"`
}

// Run executes the repl command. The full-screen editor runs when standard
// input and output are terminals; otherwise lines are read one at a time.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()

	input := inputFrom(ctx)
	tty := !r.Plain && input == os.Stdin &&
		isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())

	var (
		printed     bytes.Buffer
		interpOpts  []lang.Option
		sessionOpts []repl.SessionOption
	)

	// The terminal renderer owns the screen, so print output is collected
	// and shown with the results.
	if tty {
		interpOpts = append(interpOpts, lang.WithOutput(&printed))
		sessionOpts = append(sessionOpts, repl.WithPrinted(&printed))
	}

	in := newInterpreter(ctx, interpOpts...)
	env := lang.NewRootEnvironment()

	if err := preload(ctx, in, env); err != nil {
		return err
	}

	session := repl.NewSession(in, env, logger, sessionOpts...)

	logger.DebugContext(ctx, "repl session",
		slog.Bool("terminal", tty),
		slog.Int("bindings", len(env.Names())),
	)

	if tty {
		return repl.Run(ctx, session, historyDirFrom(ctx), logger)
	}

	prompt := !r.NoPrompt && input == os.Stdin && isTerminal(os.Stdin.Fd())

	return repl.RunLines(ctx, session, input, outputFrom(ctx), prompt)
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
