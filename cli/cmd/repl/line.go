package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

const (
	linePrompt = "lispy> "
	morePrompt = "  ...> "
)

// RunLines reads lines from r and writes results to w until r is exhausted.
// It serves input that is not a terminal, such as a pipe. Errors are written
// as results and do not stop the loop. With prompt set, a prompt precedes
// every line.
//
// An expression still unclosed at the end of input is reported with
// [ErrIncomplete]. Cancelling ctx interrupts the running expression and ends
// the loop with the cancellation cause.
func RunLines(ctx context.Context, s *Session, r io.Reader, w io.Writer, prompt bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	writePrompt := func() {
		if !prompt {
			return
		}

		if s.Pending() {
			fmt.Fprint(w, morePrompt)
		} else {
			fmt.Fprint(w, linePrompt)
		}
	}

	writePrompt()

	for scanner.Scan() {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}

		results, _ := s.Submit(ctx, scanner.Text())
		for _, res := range results {
			if text := res.Text(); text != "" {
				if _, err := fmt.Fprintln(w, text); err != nil {
					return err
				}
			}
		}

		// An interrupt ends the session rather than only the expression.
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}

		writePrompt()
	}

	if prompt {
		fmt.Fprintln(w)
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	if s.Pending() {
		s.Reset()

		return ErrIncomplete
	}

	return nil
}
