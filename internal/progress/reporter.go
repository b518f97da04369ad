// Package progress reports tour validation as it runs: a bar on an
// interactive terminal, one line per tour in CI logs.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tally counts checked tours.
type Tally struct {
	Checked int
	Invalid int
}

func (t *Tally) record(err error) {
	t.Checked++
	if err != nil {
		t.Invalid++
	}
}

// Reporter is fed one result per tour and returns the totals when done.
type Reporter interface {
	Begin(total int)
	Checked(tourID string, err error)
	Done() Tally
}

// ciVars mark a non-interactive build environment.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "BUILDKITE", "GITLAB_CI"}

// NewReporter picks a LineReporter in CI and a BarReporter otherwise.
// Both write to out.
func NewReporter(out io.Writer) Reporter {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return &LineReporter{Out: out}
		}
	}
	return &BarReporter{Out: out}
}

// BarReporter draws a progress bar labelled with the tour last checked.
type BarReporter struct {
	Out   io.Writer
	bar   *progressbar.ProgressBar
	tally Tally
}

func (r *BarReporter) Begin(total int) {
	r.tally = Tally{}
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.Out),
		progressbar.OptionSetDescription("Validating tours"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *BarReporter) Checked(tourID string, err error) {
	r.tally.record(err)
	if r.bar == nil {
		return
	}
	if err != nil {
		tourID += " (invalid)"
	}
	r.bar.Describe(tourID)
	_ = r.bar.Add(1)
}

func (r *BarReporter) Done() Tally {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
	return r.tally
}

// LineReporter prints a status line per tour.
type LineReporter struct {
	Out   io.Writer
	total int
	tally Tally
}

func (r *LineReporter) Begin(total int) {
	r.total = total
	r.tally = Tally{}
	fmt.Fprintf(r.Out, "Validating %d tours\n", total)
}

func (r *LineReporter) Checked(tourID string, err error) {
	r.tally.record(err)
	status := "ok"
	if err != nil {
		status = "invalid"
	}
	fmt.Fprintf(r.Out, "[%d/%d] %s: %s\n", r.tally.Checked, r.total, tourID, status)
}

func (r *LineReporter) Done() Tally {
	fmt.Fprintf(r.Out, "Validation complete: %d of %d invalid\n", r.tally.Invalid, r.tally.Checked)
	return r.tally
}
