package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		level   string
		verbose bool
		want    zerolog.Level
	}{
		{"", false, zerolog.InfoLevel},
		{"warn", false, zerolog.WarnLevel},
		{"bogus", false, zerolog.InfoLevel},
		{"error", true, zerolog.DebugLevel},
	}
	for _, c := range cases {
		l := New(&bytes.Buffer{}, c.level, c.verbose)
		if got := l.GetLevel(); got != c.want {
			t.Errorf("New(%q, %v): got level %v, want %v", c.level, c.verbose, got, c.want)
		}
	}
}

func TestNewWritesConsoleLines(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", false)
	l.Info().Str("tour_id", "tour42").Msg("tour opened")
	l.Debug().Msg("hidden")

	out := buf.String()
	if !strings.Contains(out, "tour opened") || !strings.Contains(out, "tour42") {
		t.Errorf("unexpected log output: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug line should be filtered at info level")
	}
}
