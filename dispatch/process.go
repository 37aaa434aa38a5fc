package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/contendgo/contendgo/contend"
	"github.com/contendgo/contendgo/scratch"
)

// memoryPollInterval is how often the watchdog samples a child's RSS.
const memoryPollInterval = 100 * time.Millisecond

// Process runs each test in a freshly spawned child process: the harness
// re-executes its own binary in child mode, naming a single test. This is
// the only strategy that contains fault-class failures; a crashing test
// cannot corrupt the harness.
//
// A cleanly exiting child reports its verdict through the packed exit
// status (contend.EncodeStatus) plus a state trailer on stdout. A child
// killed by a signal never wrote a status, so the parent classifies the
// signal itself.
type Process struct {
	opts       Options
	executable string
}

// NewProcess returns the process strategy, re-executing the current binary.
func NewProcess(opts Options) (*Process, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate harness executable: %w", err)
	}
	return &Process{opts: opts, executable: exe}, nil
}

func (s *Process) Name() string { return "process" }

// Run spawns one child per test, in order, blocking for each child's
// completion before dispatching the next. Cancellation between children
// marks the remaining tests interrupted without spawning them.
func (s *Process) Run(ctx context.Context, tests []contend.Test) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(tests))
	for i, tst := range tests {
		if ctx.Err() != nil {
			for _, rest := range tests[i:] {
				outcomes = append(outcomes, supervised(rest.Identity,
					contend.FailureInterrupt, "run interrupted before execution", 0))
			}
			break
		}
		outcomes = append(outcomes, s.runOne(ctx, tst))
	}
	return outcomes, nil
}

func (s *Process) runOne(ctx context.Context, tst contend.Test) Outcome {
	clk := s.opts.clock()
	start := clk.Now()
	logger := s.opts.Logger.With().Str("test", tst.Identity.Name).Logger()

	// Scratch allocation happens before the child starts; a failure here is
	// a harness-level setup error, not an assertion failure of the test.
	var scratchDir string
	if s.opts.ScratchRoot != "" {
		dir, err := scratch.Dir(s.opts.ScratchRoot)
		if err != nil {
			logger.Error().Err(err).Msg("Scratch directory allocation failed")
			return supervised(tst.Identity, contend.FailureLimit,
				"setup failed: "+err.Error(), clk.Since(start))
		}
		scratchDir = dir
		if !s.opts.KeepScratch {
			defer func() {
				if err := scratch.Remove(scratchDir); err != nil {
					logger.Warn().Err(err).Msg("Failed to clean up scratch directory")
				}
			}()
		}
	}

	cctx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	args := []string{"exec", "--test", tst.Identity.Name}
	if scratchDir != "" {
		args = append(args, "--scratch", scratchDir)
	}
	cmd := exec.CommandContext(cctx, s.executable, args...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	logger.Debug().
		Str("command", shellescape.QuoteCommand(append([]string{s.executable}, args...))).
		Msg("Spawning child process")

	if err := cmd.Start(); err != nil {
		return supervised(tst.Identity, contend.FailureLimit,
			"setup failed: could not start child: "+err.Error(), clk.Since(start))
	}

	var memExceeded bool
	watchdogDone := make(chan struct{})
	if s.opts.MemoryLimit > 0 {
		go func() {
			memExceeded = s.watchMemory(cctx, cmd.Process.Pid, logger)
			close(watchdogDone)
		}()
	} else {
		close(watchdogDone)
	}

	waitErr := cmd.Wait()
	<-watchdogDone
	elapsed := clk.Since(start)

	tr, visible := splitTrailer(output.String())
	out := s.classify(tst.Identity, waitErr, cctx, ctx, memExceeded, elapsed)
	out.Output = visible
	if tr != nil {
		out.Contentions = tr.Contentions
		out.Operands = tr.Operands
		out.Source = tr.Source
		out.Line = tr.Line
		if out.Message == "" {
			out.Message = tr.Message
		}
	}
	return out
}

// classify maps a child's external behavior onto the failure taxonomy.
func (s *Process) classify(id contend.Identity, waitErr error, cctx, ctx context.Context, memExceeded bool, elapsed time.Duration) Outcome {
	switch {
	case memExceeded:
		return supervised(id, contend.FailureLimit,
			fmt.Sprintf("memory limit of %d bytes exceeded", s.opts.MemoryLimit), elapsed)
	case errors.Is(cctx.Err(), context.DeadlineExceeded):
		return supervised(id, contend.FailureLimit,
			fmt.Sprintf("child did not exit within %s", s.opts.Timeout), elapsed)
	case errors.Is(ctx.Err(), context.Canceled):
		return supervised(id, contend.FailureInterrupt,
			"execution interrupted", elapsed)
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		return s.decoded(id, 0, elapsed)
	case errors.As(waitErr, &exitErr):
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			// No status was written; the signal is all there is to go on.
			sig := ws.Signal()
			kind := contend.FailureFault
			if sig == syscall.SIGINT || sig == syscall.SIGTERM {
				kind = contend.FailureInterrupt
			}
			return supervised(id, kind,
				fmt.Sprintf("child terminated by signal %s", sig), elapsed)
		}
		return s.decoded(id, exitErr.ExitCode(), elapsed)
	default:
		return supervised(id, contend.FailureFault,
			"child wait failed: "+waitErr.Error(), elapsed)
	}
}

// decoded recovers the verdict from a cleanly exiting child's status.
func (s *Process) decoded(id contend.Identity, status int, elapsed time.Duration) Outcome {
	c, k, err := contend.DecodeStatus(status)
	if err != nil {
		// The child exited through something other than the protocol.
		return supervised(id, contend.FailureFault,
			fmt.Sprintf("child exited with unrecognized status %d", status), elapsed)
	}
	out := Outcome{
		Identity:   id,
		Conclusion: c,
		Failure:    k,
		Duration:   elapsed,
	}
	return out
}

// watchMemory polls the child's resident set size until the process goes
// away or the limit is exceeded, in which case the child is killed and true
// is returned.
func (s *Process) watchMemory(ctx context.Context, pid int, logger zerolog.Logger) bool {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		// Already gone; nothing to watch.
		return false
	}

	ticker := time.NewTicker(memoryPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			mem, err := proc.MemoryInfo()
			if err != nil {
				// Child exited between polls.
				return false
			}
			if mem.RSS > s.opts.MemoryLimit {
				logger.Warn().
					Uint64("rss", mem.RSS).
					Uint64("limit", s.opts.MemoryLimit).
					Msg("Child exceeded memory limit, killing")
				if err := proc.Kill(); err != nil {
					logger.Warn().Err(err).Msg("Failed to kill child over memory limit")
				}
				return true
			}
		}
	}
}
