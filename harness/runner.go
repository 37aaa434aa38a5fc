// Package harness drives a full suite run: it feeds the registry to a
// dispatch strategy, aggregates the outcome record and writes the report.
package harness

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/contendgo/contendgo/contend"
	"github.com/contendgo/contendgo/dispatch"
)

// Totals is the aggregated outcome record of one run.
type Totals struct {
	Contentions uint64 `json:"contentions"`
	Tests       int    `json:"tests"`
	Passed      int    `json:"passed"`
	Failed      int    `json:"failed"`
	Skipped     int    `json:"skipped"`
}

// ExitCode maps the totals onto the harness binary's exit code contract:
// zero when every test passed or was skipped, nonzero otherwise.
func (t Totals) ExitCode() int {
	if t.Failed > 0 {
		return 1
	}
	return 0
}

// Result is everything a run produced.
type Result struct {
	Suite    string
	Strategy string
	Outcomes []dispatch.Outcome
	Totals   Totals
	Duration time.Duration
}

// Runner executes a suite with a configured strategy.
type Runner struct {
	Suite    string
	Strategy dispatch.Strategy
	Logger   zerolog.Logger
	// Out receives the human-readable report.
	Out io.Writer
}

// Run dispatches every test in registry order, accumulates totals and
// writes the report. The returned error covers harness breakdowns only;
// test failures are expressed through Result.Totals.
func (r *Runner) Run(ctx context.Context, tests []contend.Test) (*Result, error) {
	start := time.Now()

	fmt.Fprintf(r.Out, "%s: %d test records.\n", r.Suite, len(tests))
	r.Logger.Info().
		Str("suite", r.Suite).
		Str("dispatch", r.Strategy.Name()).
		Int("tests", len(tests)).
		Msg("Starting run")

	outcomes, err := r.Strategy.Run(ctx, tests)
	if err != nil {
		return nil, fmt.Errorf("dispatch failed: %w", err)
	}

	result := &Result{
		Suite:    r.Suite,
		Strategy: r.Strategy.Name(),
		Outcomes: outcomes,
	}
	for _, out := range outcomes {
		result.Totals.accumulate(out)
		if out.Conclusion != contend.Passed {
			writeDiagnostic(r.Out, out)
		}
	}
	result.Duration = time.Since(start)

	writeTally(r.Out, result.Totals)
	r.Logger.Info().
		Int("passed", result.Totals.Passed).
		Int("failed", result.Totals.Failed).
		Int("skipped", result.Totals.Skipped).
		Dur("duration", result.Duration).
		Msg("Run finished")

	return result, nil
}

func (t *Totals) accumulate(out dispatch.Outcome) {
	t.Tests++
	t.Contentions += out.Contentions
	switch out.Conclusion {
	case contend.Passed:
		t.Passed++
	case contend.Failed:
		t.Failed++
	case contend.Skipped:
		t.Skipped++
	}
}
