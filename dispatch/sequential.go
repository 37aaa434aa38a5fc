package dispatch

import (
	"context"

	"github.com/contendgo/contendgo/contend"
)

// Sequential runs every test one at a time in the harness's own thread of
// control. It offers no isolation beyond the termination protocol itself: a
// hung test body blocks the whole run.
type Sequential struct {
	opts Options
}

// NewSequential returns the sequential strategy.
func NewSequential(opts Options) *Sequential {
	return &Sequential{opts: opts}
}

func (s *Sequential) Name() string { return "sequential" }

// Run executes tests in registry order. Cancellation is only observed
// between tests; the remaining tests are recorded as interrupted.
func (s *Sequential) Run(ctx context.Context, tests []contend.Test) ([]Outcome, error) {
	clk := s.opts.clock()
	outcomes := make([]Outcome, 0, len(tests))

	for i, tst := range tests {
		if err := ctx.Err(); err != nil {
			for _, rest := range tests[i:] {
				outcomes = append(outcomes, supervised(rest.Identity,
					contend.FailureInterrupt, "run interrupted before execution", 0))
			}
			break
		}

		s.opts.Logger.Debug().Str("test", tst.Identity.Name).Msg("Dispatching test")
		start := clk.Now()
		st := contend.Execute(tst, s.opts.Logger)
		outcomes = append(outcomes, fromState(st, clk.Since(start)))
	}

	return outcomes, nil
}
