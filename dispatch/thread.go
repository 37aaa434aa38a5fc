package dispatch

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/contendgo/contendgo/contend"
)

// Thread runs tests on independently scheduled worker goroutines of the
// same process. Tests share no mutable state: each execution gets a fresh
// contention state. The per-test deadline abandons a hung body rather than
// restoring any shared checkpoint, which would be unsafe across workers.
type Thread struct {
	opts Options
}

// NewThread returns the threaded strategy.
func NewThread(opts Options) *Thread {
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	return &Thread{opts: opts}
}

func (s *Thread) Name() string { return "thread" }

// Run executes tests concurrently, at most Jobs at a time. Outcomes are
// written into a preallocated slice by index, so the returned order is
// registration order no matter which worker finishes first.
func (s *Thread) Run(ctx context.Context, tests []contend.Test) ([]Outcome, error) {
	outcomes := make([]Outcome, len(tests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Jobs)
	for i, tst := range tests {
		g.Go(func() error {
			outcomes[i] = s.runOne(gctx, tst)
			return nil
		})
	}
	// Workers never return errors; failures are classified per outcome.
	_ = g.Wait()

	return outcomes, nil
}

// runOne supervises a single body goroutine. The body and the supervisor
// race for a token: whoever claims it owns the outcome. A body that loses
// the race (deadline or interruption already reported) is abandoned and
// cannot influence the result afterwards.
func (s *Thread) runOne(ctx context.Context, tst contend.Test) Outcome {
	clk := s.opts.clock()
	start := clk.Now()

	var token uint32
	claim := func() bool { return atomic.CompareAndSwapUint32(&token, 0, 1) }

	resCh := make(chan *contend.State, 1)
	go func() {
		st := contend.Execute(tst, s.opts.Logger)
		if claim() {
			resCh <- st
		}
		// Abandoned: the supervisor already reported this test.
	}()

	var deadline <-chan time.Time
	if s.opts.Timeout > 0 {
		tm := clk.NewTimer(s.opts.Timeout)
		defer tm.Stop()
		deadline = tm.C()
	}

	select {
	case st := <-resCh:
		return fromState(st, clk.Since(start))
	case <-deadline:
		if claim() {
			s.opts.Logger.Warn().
				Str("test", tst.Identity.Name).
				Dur("timeout", s.opts.Timeout).
				Msg("Worker did not return before deadline, abandoning")
			return supervised(tst.Identity, contend.FailureLimit,
				fmt.Sprintf("test did not return within %s", s.opts.Timeout),
				clk.Since(start))
		}
		// The body finished in the same instant; its result stands.
		return fromState(<-resCh, clk.Since(start))
	case <-ctx.Done():
		if claim() {
			return supervised(tst.Identity, contend.FailureInterrupt,
				"execution interrupted: "+ctx.Err().Error(), clk.Since(start))
		}
		return fromState(<-resCh, clk.Since(start))
	}
}
