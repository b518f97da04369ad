package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLineReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &LineReporter{Out: &buf}

	r.Begin(2)
	r.Checked("tour42", nil)
	r.Checked("north/gate", errors.New("dangling hotspot"))
	tally := r.Done()

	if tally != (Tally{Checked: 2, Invalid: 1}) {
		t.Errorf("unexpected tally: %+v", tally)
	}
	out := buf.String()
	for _, want := range []string{"Validating 2 tours", "[1/2] tour42: ok", "[2/2] north/gate: invalid", "1 of 2 invalid"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBarReporterTally(t *testing.T) {
	var buf bytes.Buffer
	r := &BarReporter{Out: &buf}

	r.Begin(3)
	r.Checked("a", nil)
	r.Checked("b", errors.New("no scenes"))
	r.Checked("c", errors.New("unknown start scene"))

	if got := r.Done(); got != (Tally{Checked: 3, Invalid: 2}) {
		t.Errorf("unexpected tally: %+v", got)
	}
}

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter(&bytes.Buffer{}).(*LineReporter); !ok {
		t.Error("expected LineReporter when CI is set")
	}
}
