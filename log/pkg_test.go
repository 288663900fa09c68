package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func useDefault(t *testing.T, l Logger) {
	t.Helper()

	original := Default()

	defaultMu.Lock()
	defaultLog = l
	defaultMu.Unlock()

	t.Cleanup(func() {
		defaultMu.Lock()
		defaultLog = original
		defaultMu.Unlock()
	})
}

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	var buf bytes.Buffer

	useDefault(t, Make(&buf, WithLevel(LevelDebug), WithFormat(FormatJSON), WithPretty(false)))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
		msg   string
	}{
		{"Debug", Debug, "DEBUG", "debug message"},
		{"Info", Info, "INFO", "info message"},
		{"Warn", Warn, "WARN", "warn message"},
		{"Error", Error, "ERROR", "error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn(tt.msg, slog.String("key", "value"))

			output := buf.String()
			if !strings.Contains(output, tt.msg) {
				t.Errorf("expected message %q, got: %s", tt.msg, output)
			}

			if !strings.Contains(output, tt.level) {
				t.Errorf("expected level %q, got: %s", tt.level, output)
			}

			if !strings.Contains(output, `"key":"value"`) {
				t.Errorf("expected attribute, got: %s", output)
			}
		})
	}
}

func TestPackage_Config(t *testing.T) {
	var buf bytes.Buffer

	useDefault(t, Make(&buf, WithPretty(false)))

	TraceContext(t.Context(), "hidden")

	if buf.Len() > 0 {
		t.Fatalf("trace logged at default level: %s", buf.String())
	}

	Config(WithLevel(LevelTrace))

	if Default().Level() != LevelTrace {
		t.Fatalf("Config did not change the level: %v", Default().Level())
	}

	TraceContext(t.Context(), "shown")

	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("trace not logged after Config: %s", buf.String())
	}
}

func TestPackage_With(t *testing.T) {
	var buf bytes.Buffer

	useDefault(t, Make(&buf, WithFormat(FormatJSON), WithPretty(false)))

	With(slog.String("file", "init.scm")).InfoContext(t.Context(), "loaded")

	if !strings.Contains(buf.String(), `"file":"init.scm"`) {
		t.Errorf("expected attribute, got: %s", buf.String())
	}
}

func TestPackage_CallerIsLogSite(t *testing.T) {
	var buf bytes.Buffer

	useDefault(t, Make(&buf, WithCaller(true), WithFormat(FormatJSON), WithPretty(false)))

	Info("from package")

	if got := buf.String(); !strings.Contains(got, "pkg_test.go") || strings.Contains(got, `log/pkg.go`) {
		t.Errorf("expected caller pkg_test.go, got: %s", got)
	}
}
