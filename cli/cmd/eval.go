package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/lispy/lang"
)

// Eval evaluates source files and expressions in one root environment,
// printing the value of every form that has one.
type Eval struct {
	Files  []string `arg:"" help:"Source files to evaluate, or '-' for stdin"                   name:"file" optional:""`
	Expr   []string `help:"Evaluate expression text after the files (repeatable)"          placeholder:"EXPR" short:"e"`
	Output string   `default:"native" enum:"native,json,yaml" help:"Result encoding (${enum})" short:"o"`
	Indent int      `default:"2"                              help:"Indent width for json and yaml results" short:"i"`
	Quiet  bool     `help:"Evaluate without printing results"                                   short:"q"`
}

// Run executes the eval command. Without files or expressions it evaluates
// standard input.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	files := e.Files
	if len(files) == 0 && len(e.Expr) == 0 {
		files = []string{stdinSource}
	}

	sources, err := buildSourceFiles(ctx, files)
	if err != nil {
		return err
	}

	in := newInterpreter(ctx)
	env := lang.NewRootEnvironment()

	if err := preload(ctx, in, env); err != nil {
		return err
	}

	var results []lang.Expr

	emit := func(v lang.Expr) error {
		if e.Quiet {
			return nil
		}

		if e.Output != "native" {
			results = append(results, v)

			return nil
		}

		_, err := fmt.Fprintln(outputFrom(ctx), lang.Format(v))
		if err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	for name, r := range sources.All() {
		if err := loadSource(ctx, in, env, name, r, emit); err != nil {
			return err
		}
	}

	for i, text := range e.Expr {
		name := fmt.Sprintf("-e[%d]", i)
		if err := loadSource(ctx, in, env, name, strings.NewReader(text), emit); err != nil {
			return err
		}
	}

	return e.flush(ctx, results)
}

// flush writes results collected for the json and yaml encodings.
func (e *Eval) flush(ctx context.Context, results []lang.Expr) error {
	if e.Quiet {
		return nil
	}

	var err error

	switch e.Output {
	case "json":
		err = lang.FormatJSON(ctx, outputFrom(ctx), results, e.Indent)
	case "yaml":
		err = lang.FormatYAML(ctx, outputFrom(ctx), results, e.Indent)
	default:
		return nil
	}

	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("format", e.Output))
	}

	return nil
}
