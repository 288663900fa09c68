package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/lispy/lang"
	"github.com/ardnew/lispy/log"
)

// resolve returns a [kong.ConfigurationLoader] for config files written in
// lispy syntax. The file holds a form headed by the symbol name whose
// operands are (flag value...) lists:
//
//	(config
//	  (log-level debug)
//	  (log-pretty #f)
//	  (max-depth 5000)
//	  (include lib vendor/lib))
//
// Integers and reals are passed to kong as text, #t and () as booleans, other
// symbols as strings, and several values as a list. Flag names may use
// underscores in place of hyphens. A file that does not parse, or lacks the
// form, configures nothing. Command-line flags override config file values.
func resolve(ctx context.Context, name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		forms, err := lang.ParseReader(ctx, r)
		if err != nil {
			log.WarnContext(ctx, "ignoring config file", slog.Any("error", err))

			return config{}, nil
		}

		for _, form := range forms {
			l, ok := form.(lang.List)
			if !ok || len(l) == 0 || l[0] != lang.Symbol(name) {
				continue
			}

			return alistConfig(l[1:]), nil
		}

		return config{}, nil
	}
}

// resolveYAML is a [kong.ConfigurationLoader] for a YAML mapping of flag
// names to values.
func resolveYAML(r io.Reader) (kong.Resolver, error) {
	var m map[string]any

	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return config{}, nil
		}

		return nil, err
	}

	c := make(config, len(m))
	for k, v := range m {
		c[k] = flagValue(v)
	}

	return c, nil
}

// config implements [kong.Resolver] over a flat map of flag values.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. A nil result leaves the flag to its
// default.
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	if v, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return v, nil
	}

	return nil, nil
}

// alistConfig converts (key value...) entries to a config map. Entries that
// are not headed by a symbol are skipped.
func alistConfig(entries []lang.Expr) config {
	c := make(config, len(entries))

	for _, e := range entries {
		l, ok := e.(lang.List)
		if !ok || len(l) < 2 {
			continue
		}

		key, ok := l[0].(lang.Symbol)
		if !ok {
			continue
		}

		if len(l) == 2 {
			c[string(key)] = exprValue(l[1])

			continue
		}

		values := make([]any, len(l)-1)
		for i, x := range l[1:] {
			values[i] = exprValue(x)
		}

		c[string(key)] = values
	}

	return c
}

// exprValue converts a config value to the form kong's mappers decode.
func exprValue(x lang.Expr) any {
	switch {
	case x == lang.True:
		return true
	case lang.IsNil(x):
		return false
	}

	return flagValue(lang.ToNative(x))
}

// flagValue renders numbers as text, since kong's integer mappers do not
// accept every numeric type a decoder may produce.
func flagValue(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagValue(e)
		}

		return out
	default:
		return v
	}
}
