package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/lispy/lang"
	"github.com/ardnew/lispy/log"
	"github.com/ardnew/lispy/profile"
)

// configIndent is the indent width of generated JSON and YAML files.
const configIndent = 2

// Init writes a configuration file holding the current flag values.
type Init struct {
	Force  bool   `help:"Overwrite existing configuration file" short:"f"`
	Format string `default:"lispy" enum:"lispy,json,yaml" help:"Configuration file format (${enum})"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	if i.Format != "lispy" {
		confPath += "." + i.Format
	}

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := i.encode(ctx, flagValues(ktx))
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	if err := os.WriteFile(confPath, data, 0o600); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
		slog.String("format", i.Format),
	)

	return nil
}

// encode renders the configuration entries in the selected format.
func (i *Init) encode(ctx context.Context, entries lang.List) ([]byte, error) {
	switch i.Format {
	case "json", "yaml":
		m := make(map[string]any, len(entries))

		for _, e := range entries {
			entry, _ := e.(lang.List)
			key := string(entry[0].(lang.Symbol))

			switch {
			case len(entry) > 2:
				m[key] = lang.ToNativeAll(entry[1:])
			case entry[1] == lang.True:
				m[key] = true
			case lang.IsNil(entry[1]):
				m[key] = false
			default:
				m[key] = lang.ToNative(entry[1])
			}
		}

		if i.Format == "json" {
			data, err := json.MarshalIndent(m, "", strings.Repeat(" ", configIndent))

			return append(data, '\n'), err
		}

		return yaml.MarshalContext(ctx, m, yaml.Indent(configIndent))

	default:
		var sb strings.Builder

		err := lang.Pretty(&sb, append(lang.List{lang.Symbol(ConfigIdentifier)}, entries...))

		return []byte(sb.String()), err
	}
}

// ignoredFlags are prefixes of flags never written to the configuration.
var ignoredFlags = []string{"help", profile.Tag}

// flagValues returns a (name value...) entry for every global flag that has
// a value.
func flagValues(ktx *kong.Context) lang.List {
	var entries lang.List

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignoredFlags, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		values := flagExprs(ktx.FlagValue(flag))
		if len(values) == 0 {
			continue
		}

		entries = append(entries, append(lang.List{lang.Symbol(flag.Name)}, values...))
	}

	return entries
}

// flagExprs converts a flag value to config values. Empty strings and
// empty slices have no value.
func flagExprs(v any) []lang.Expr {
	switch v := v.(type) {
	case nil:
		return nil
	case bool:
		return []lang.Expr{lang.Bool(v)}
	case int:
		return []lang.Expr{lang.Integer(v)}
	case int64:
		return []lang.Expr{lang.Integer(v)}
	case uint:
		return []lang.Expr{lang.Integer(v)}
	case float64:
		return []lang.Expr{lang.Real(v)}
	case string:
		return symbols(v)
	case []string:
		return symbols(v...)
	default:
		if s, ok := v.(interface{ String() string }); ok {
			return symbols(s.String())
		}

		return nil
	}
}

func symbols(ss ...string) []lang.Expr {
	var out []lang.Expr

	for _, s := range ss {
		if s != "" {
			out = append(out, lang.Symbol(s))
		}
	}

	return out
}
