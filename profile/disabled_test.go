//go:build !pprof

package profile

import "testing"

func TestDisabled(t *testing.T) {
	if modes := Modes(); len(modes) != 0 {
		t.Errorf("Modes() = %q, want none without the pprof tag", modes)
	}

	s := New(WithMode("cpu"), WithPath(t.TempDir())).Start()
	if _, ok := s.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op without the pprof tag", s)
	}

	s.Stop()
}
