package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/lispy/lang"
)

type initCLI struct {
	Name    string   `default:"demo"`
	Depth   int      `default:"5"`
	Verbose bool
	Include []string `default:"a,b"`
	Hidden  string   `default:"x"   hidden:""`

	Init Init `cmd:""`
}

// runInit parses args for a CLI whose configuration file is confPath and
// runs the init command.
func runInit(t *testing.T, confPath string, args ...string) error {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(append([]string{"init"}, args...))
	if err != nil {
		t.Fatal(err)
	}

	return cli.Init.Run(WithContext(t.Context(), ktx))
}

func TestInitRun(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", args: []string{"--force"}, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config")

			if tt.exists {
				writeFile(t, confPath, "existing content")
			}

			err := runInit(t, confPath, tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
			}

			data, rerr := os.ReadFile(confPath)
			if rerr != nil {
				t.Fatal(rerr)
			}

			if tt.wantErr != nil {
				if string(data) != "existing content" {
					t.Errorf("existing file modified: %q", data)
				}

				return
			}

			if string(data) == "existing content" {
				t.Error("config file not written")
			}
		})
	}
}

func TestInitRun_Lispy(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "config")

	if err := runInit(t, confPath); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(confPath)
	if err != nil {
		t.Fatal(err)
	}

	forms, err := lang.ParseAll(string(data))
	if err != nil {
		t.Fatalf("config does not parse: %v\n%s", err, data)
	}

	if len(forms) != 1 {
		t.Fatalf("got %d forms, want 1", len(forms))
	}

	config, ok := forms[0].(lang.List)
	if !ok || len(config) == 0 || config[0] != lang.Symbol(ConfigIdentifier) {
		t.Fatalf("config form = %s", lang.Format(forms[0]))
	}

	entries := make(map[string]string)
	for _, e := range config[1:] {
		entry := e.(lang.List)
		entries[lang.Format(entry[0])] = lang.Format(entry[1:])
	}

	want := map[string]string{
		"name":    "(demo)",
		"depth":   "(5)",
		"verbose": "(())",
		"include": "(a b)",
	}

	for k, v := range want {
		if entries[k] != v {
			t.Errorf("entry %s = %q, want %q", k, entries[k], v)
		}
	}

	for _, skip := range []string{"help", "hidden"} {
		if _, ok := entries[skip]; ok {
			t.Errorf("entry %s should not be written", skip)
		}
	}
}

func TestInitRun_Encoded(t *testing.T) {
	type config struct {
		Name    string   `json:"name"    yaml:"name"`
		Depth   int      `json:"depth"   yaml:"depth"`
		Verbose bool     `json:"verbose" yaml:"verbose"`
		Include []string `json:"include" yaml:"include"`
	}

	want := config{Name: "demo", Depth: 5, Include: []string{"a", "b"}}

	decoders := map[string]func([]byte, any) error{
		"json": json.Unmarshal,
		"yaml": func(data []byte, v any) error { return yaml.Unmarshal(data, v) },
	}

	for format, decode := range decoders {
		t.Run(format, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config")

			if err := runInit(t, confPath, "--format", format); err != nil {
				t.Fatal(err)
			}

			data, err := os.ReadFile(confPath + "." + format)
			if err != nil {
				t.Fatal(err)
			}

			var got config
			if err := decode(data, &got); err != nil {
				t.Fatalf("decode: %v\n%s", err, data)
			}

			if got.Name != want.Name || got.Depth != want.Depth ||
				got.Verbose != want.Verbose || len(got.Include) != 2 {
				t.Errorf("got %+v, want %+v", got, want)
			}
		})
	}
}
