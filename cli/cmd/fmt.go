package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/lispy/lang"
)

// Fmt parses a source and writes it back in the chosen format without
// evaluating it.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical lispy syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	AST    AST    `cmd:""                    help:"Format as an indented syntax tree."`
}

// formatter writes parsed forms to w.
type formatter func(ctx context.Context, w io.Writer, forms []lang.Expr) error

// format parses source and writes it with fn.
func format(ctx context.Context, source, name string, fn formatter) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	files, err := buildSourceFiles(ctx, []string{source})
	if err != nil {
		return err
	}

	for src, r := range files.All() {
		forms, err := lang.ParseReader(ctx, r)
		if err != nil {
			return lang.WrapError(err).With(
				slog.String("format", name),
				slog.String("source", src),
			)
		}

		if err := fn(ctx, outputFrom(ctx), forms); err != nil {
			return ErrWriteOutput.Wrap(err).With(slog.String("format", name))
		}
	}

	return nil
}

// Native formats input as canonical lispy syntax, one form per line, with
// long lists broken across lines.
type Native struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the native command.
func (f *Native) Run(ctx context.Context) error {
	return format(ctx, f.Source, "native", lang.FormatNative)
}

// JSON formats input as a JSON array of forms.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output (0 for compact)" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	return format(ctx, j.Source, "json",
		func(ctx context.Context, w io.Writer, forms []lang.Expr) error {
			return lang.FormatJSON(ctx, w, forms, j.Indent)
		})
}

// YAML formats input as a YAML sequence of forms.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output (0 for flow style)" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	return format(ctx, y.Source, "yaml",
		func(ctx context.Context, w io.Writer, forms []lang.Expr) error {
			return lang.FormatYAML(ctx, w, forms, y.Indent)
		})
}

// AST formats input as a tree of expression kinds.
type AST struct {
	Indent int `default:"2" help:"Indent width per tree level" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) error {
	return format(ctx, a.Source, "ast",
		func(ctx context.Context, w io.Writer, forms []lang.Expr) error {
			return lang.FormatAST(ctx, w, forms, a.Indent)
		})
}
