// Package dispatch runs registered tests under one of three isolation
// strategies: sequential (same thread of control), thread (worker
// goroutines) and process (re-executed child processes).
//
// Whatever the strategy, the dispatcher is responsible for recovering the
// terminal (conclusion, failure kind) classification even when the test body
// terminated abruptly, and for classifying timeouts, interruptions and
// crashes that the body itself cannot report.
package dispatch

import (
	"context"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/rs/zerolog"

	"github.com/contendgo/contendgo/contend"
)

// Outcome is the dispatcher-recovered result of one test execution.
type Outcome struct {
	Identity    contend.Identity
	Conclusion  contend.Conclusion
	Failure     contend.FailureKind
	Contentions uint64
	Operands    [2]string
	// Source and Line locate the concluding call, when known.
	Source  string
	Line    int
	Message string

	Duration time.Duration
	// Output holds captured child stdout/stderr for process dispatch.
	Output string
}

// Strategy executes an ordered list of tests and returns one outcome per
// test, in the same order.
type Strategy interface {
	Name() string
	Run(ctx context.Context, tests []contend.Test) ([]Outcome, error)
}

// Options configures a dispatch strategy. The zero value runs with no
// deadline, a single worker and no memory bound.
type Options struct {
	Logger zerolog.Logger

	// Timeout bounds a single test's execution for the thread and process
	// strategies. Zero means no deadline. The sequential strategy has no
	// cancellation: nothing isolates the harness from a hung body there.
	Timeout time.Duration

	// Jobs is the number of concurrent workers for the thread strategy.
	Jobs int

	// MemoryLimit bounds a child process's resident set size, in bytes.
	// Zero disables the watchdog. Process strategy only.
	MemoryLimit uint64

	// ScratchRoot, when set, makes the process strategy allocate a private
	// scratch directory per child under this root.
	ScratchRoot string
	// KeepScratch leaves scratch directories behind for inspection.
	KeepScratch bool

	// Clock drives deadlines; tests substitute a fake. Nil means wall clock.
	Clock clock.Clock
}

func (o Options) clock() clock.Clock {
	if o.Clock == nil {
		return clock.NewClock()
	}
	return o.Clock
}

// fromState converts a recovered in-process state into an outcome.
func fromState(st *contend.State, d time.Duration) Outcome {
	return Outcome{
		Identity:    st.Identity,
		Conclusion:  st.Conclusion,
		Failure:     st.Failure,
		Contentions: st.Contentions,
		Operands:    st.Operands,
		Source:      st.Source,
		Line:        st.Line,
		Message:     st.Message,
		Duration:    d,
	}
}

// supervised builds an outcome for a dispatcher-detected failure.
func supervised(id contend.Identity, k contend.FailureKind, message string, d time.Duration) Outcome {
	st := &contend.State{Identity: id}
	st.Supervise(k, message)
	return fromState(st, d)
}
