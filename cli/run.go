package cli

// This file contains the run command: strategy selection, suite
// execution and history recording.

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/contendgo/contendgo/dispatch"
	"github.com/contendgo/contendgo/harness"
	"github.com/contendgo/contendgo/model"
)

func (a *App) runSuite(ctx *cli.Context) error {
	startTime := time.Now()

	cfg, err := loadConfig(ctx.String("config"))
	if err != nil {
		return err
	}

	suite := a.suite
	if cfg.Suite != "" {
		suite = cfg.Suite
	}

	name := ctx.String("dispatch")
	if name == "" {
		name = cfg.Dispatch
	}
	if name == "" {
		name = "sequential"
	}

	timeout := ctx.Duration("timeout")
	if !ctx.IsSet("timeout") && cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	jobs := ctx.Int("jobs")
	if !ctx.IsSet("jobs") && cfg.Jobs > 0 {
		jobs = cfg.Jobs
	}

	memoryLimitMB := ctx.Int("memory-limit")
	if !ctx.IsSet("memory-limit") && cfg.MemoryLimitMB > 0 {
		memoryLimitMB = cfg.MemoryLimitMB
	}

	scratchRoot := ctx.String("scratch-root")
	if scratchRoot == "" {
		scratchRoot = cfg.ScratchRoot
	}

	opts := dispatch.Options{
		Logger:      a.logger,
		Timeout:     timeout,
		Jobs:        jobs,
		MemoryLimit: uint64(memoryLimitMB) * 1024 * 1024,
		ScratchRoot: scratchRoot,
		KeepScratch: ctx.Bool("keep-scratch"),
	}

	var strategy dispatch.Strategy
	switch name {
	case "sequential":
		strategy = dispatch.NewSequential(opts)
	case "thread":
		strategy = dispatch.NewThread(opts)
	case "process":
		strategy, err = dispatch.NewProcess(opts)
		if err != nil {
			return fmt.Errorf("failed to set up process dispatch: %w", err)
		}
	default:
		return fmt.Errorf("unknown dispatch strategy %q (want sequential, thread or process)", name)
	}

	tests, err := a.registry.Match(ctx.String("run"))
	if err != nil {
		return err
	}
	if len(tests) == 0 {
		return fmt.Errorf("no tests matched")
	}

	// Generate random 16-byte run ID
	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return fmt.Errorf("failed to generate run ID: %w", err)
	}
	runID := hex.EncodeToString(idBytes)

	record := &model.RunRecord{
		ID:        runID,
		Suite:     suite,
		Timestamp: startTime,
		Args:      os.Args,
		Dispatch:  name,
		Target: &model.Target{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	if cwd, err := os.Getwd(); err == nil {
		record.WorkDir = cwd
	}

	// Capture git info (non-fatal if it fails)
	if commit, branch, err := a.getGitInfo(); err == nil {
		record.Git = &model.Git{
			Commit: commit,
			Branch: branch,
		}
	}

	// SIGINT and SIGTERM cancel the dispatch context; in-flight tests
	// surface as interrupted outcomes.
	runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var report bytes.Buffer
	runner := &harness.Runner{
		Suite:    suite,
		Strategy: strategy,
		Logger:   a.logger,
		Out:      io.MultiWriter(a.out, &report),
	}

	result, err := runner.Run(runCtx, tests)
	if err != nil {
		return err
	}

	exitCode := result.Totals.ExitCode()

	record.Duration = time.Since(startTime)
	record.ExitCode = exitCode
	fillRecord(record, result)

	if !ctx.Bool("no-history") {
		if err := a.recordRun(record, report.Bytes()); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to record history")
		}
	}

	if exitCode != 0 {
		return cli.Exit("", exitCode)
	}
	return nil
}

// fillRecord copies totals and per-test outcomes into the history record.
func fillRecord(record *model.RunRecord, result *harness.Result) {
	record.Contentions = result.Totals.Contentions
	record.Tests = result.Totals.Tests
	record.Passed = result.Totals.Passed
	record.Failed = result.Totals.Failed
	record.Skipped = result.Totals.Skipped

	for _, out := range result.Outcomes {
		record.Results = append(record.Results, model.TestResult{
			Name:        out.Identity.Name,
			Conclusion:  out.Conclusion.String(),
			Failure:     out.Failure.String(),
			Contentions: out.Contentions,
			Duration:    out.Duration,
			Message:     out.Message,
			Source:      out.Source,
			Line:        out.Line,
		})
	}
}
