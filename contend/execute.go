package contend

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Execute runs one test body to termination in the current process and
// returns its final state.
//
// The body runs on a dedicated goroutine so that concluding a contention can
// stop it with runtime.Goexit while deferred cleanup still runs. Execute
// blocks until that goroutine terminates. A body that returns without
// concluding is recorded as passed; a panic escaping the body is recovered
// here, at the execution boundary, and recorded as a fault so that it cannot
// take down the supervising dispatcher.
func Execute(tst Test, logger zerolog.Logger) *State {
	t := newT(tst.Identity, logger)
	return run(tst, t)
}

// ExecuteIn is Execute with a scratch directory exposed to the body.
func ExecuteIn(tst Test, scratchDir string, logger zerolog.Logger) *State {
	t := newT(tst.Identity, logger)
	t.ScratchDir = scratchDir
	return run(tst, t)
}

func run(tst Test, t *T) *State {
	st := t.state
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			if v := recover(); v != nil {
				st.Supervise(FailureFault, fmt.Sprintf("panic: %v", v))
			}
		}()

		tst.Func(t)

		// Reached only when the body returned normally; every concluding
		// path exits the goroutine before this line.
		st.conclude(Passed, FailureNone)
	}()

	<-done
	return st
}
