package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by the pretty handlers. Styles are bound to
// a renderer for the handler's output, so writers that are not terminals
// receive plain text.
type palette struct {
	key, str, num, time, src lipgloss.Style
	yes, no, null            lipgloss.Style
	levels                   [4]lipgloss.Style // trace/debug, info, warn, error
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		time: fg("4"),
		src:  fg("5"),
		yes:  fg("2"),
		no:   fg("1"),
		null: fg("8"),
		levels: [4]lipgloss.Style{
			fg("4"),
			fg("2").Bold(true),
			fg("3").Bold(true),
			fg("1").Bold(true),
		},
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.levels[3]
	case l >= slog.LevelWarn:
		return p.levels[2]
	case l >= slog.LevelInfo:
		return p.levels[1]
	default:
		return p.levels[0]
	}
}

// value renders v without quotes, styled by its kind.
func (p palette) value(v slog.Value) string {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())
	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")
	case slog.KindDuration:
		return p.num.Render(v.Duration().String())
	case slog.KindTime:
		return p.time.Render(v.Time().String())
	case slog.KindAny:
		if v.Any() == nil {
			return p.null.Render("null")
		}

		return p.str.Render(fmt.Sprint(v.Any()))
	default:
		return p.str.Render(v.String())
	}
}

// shared is the state common to a pretty handler and every handler derived
// from it with WithAttrs or WithGroup.
type shared struct {
	opts       slog.HandlerOptions
	formatTime FormatTime
	style      palette
	mu         sync.Mutex
	w          io.Writer
}

func (s *shared) enabled(level slog.Level) bool {
	threshold := slog.LevelInfo
	if s.opts.Level != nil {
		threshold = s.opts.Level.Level()
	}

	return level >= threshold
}

func (s *shared) write(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.w.Write(b)

	return err
}

// header returns the time, level, source and message of r as key/value pairs.
func (s *shared) header(r slog.Record) [][2]string {
	var kv [][2]string

	if !r.Time.IsZero() {
		if t := s.formatTime(r.Time); t != "" {
			kv = append(kv, [2]string{slog.TimeKey, s.style.time.Render(t)})
		}
	}

	kv = append(kv, [2]string{
		slog.LevelKey,
		s.style.level(r.Level).Render(strings.ToUpper(Level(r.Level).String())),
	})

	if s.opts.AddSource {
		if src := r.Source(); src != nil {
			kv = append(kv, [2]string{
				slog.SourceKey,
				s.style.src.Render(fmt.Sprintf("%s:%d", src.File, src.Line)),
			})
		}
	}

	return append(kv, [2]string{slog.MessageKey, s.style.str.Render(r.Message)})
}

// flatten appends attrs to kv with keys qualified by group, expanding nested
// groups into dotted keys.
func (s *shared) flatten(kv [][2]string, group string, attrs ...slog.Attr) [][2]string {
	for _, a := range attrs {
		a.Value = a.Value.Resolve()
		if a.Equal(slog.Attr{}) {
			continue
		}

		key := a.Key
		if group != "" {
			key = group + "." + key
		}

		if a.Value.Kind() == slog.KindGroup {
			if a.Key == "" {
				key = group
			}

			kv = s.flatten(kv, key, a.Value.Group()...)

			continue
		}

		kv = append(kv, [2]string{key, s.style.value(a.Value)})
	}

	return kv
}

// prettyHandler renders records for a terminal, as key=value text on one
// line or as indented key: value lines between braces.
type prettyHandler struct {
	*shared
	multiline bool
	group     string
	attrs     [][2]string
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
	multiline bool,
) *prettyHandler {
	return &prettyHandler{
		shared: &shared{
			opts:       *opts,
			formatTime: formatTime,
			style:      newPalette(w),
			w:          w,
		},
		multiline: multiline,
	}
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyHandler {
	return newPrettyHandler(w, opts, formatTime, false)
}

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyHandler {
	return newPrettyHandler(w, opts, formatTime, true)
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	kv := append(h.header(r), h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		kv = h.flatten(kv, h.group, a)

		return true
	})

	var buf bytes.Buffer

	if h.multiline {
		buf.WriteString("{\n")

		for i, p := range kv {
			if i > 0 {
				buf.WriteString(",\n")
			}

			fmt.Fprintf(&buf, "  %s: %s", h.style.key.Render(p[0]), p[1])
		}

		buf.WriteString("\n}\n")
	} else {
		for i, p := range kv {
			if i > 0 {
				buf.WriteByte(' ')
			}

			fmt.Fprintf(&buf, "%s=%s", h.style.key.Render(p[0]), p[1])
		}

		buf.WriteByte('\n')
	}

	return h.write(buf.Bytes())
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = h.flatten(append([][2]string(nil), h.attrs...), h.group, attrs...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	if c.group != "" {
		c.group += "."
	}

	c.group += name

	return &c
}
