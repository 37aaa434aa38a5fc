package cli

// This file contains the view command for displaying recorded runs.

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/contendgo/contendgo/history"
)

// resolveViewArg interprets the view argument: "" and "0" mean the last
// run, negative integers count back from it, anything else is a hex ID
// prefix. Entries must already be sorted newest first.
func resolveViewArg(arg string, entries []history.Entry) (*history.Entry, error) {
	if arg == "" {
		arg = "0"
	}

	if parsed, err := strconv.ParseInt(arg, 10, 64); err == nil {
		if parsed > 0 {
			return nil, fmt.Errorf("invalid index: %s (use 0 for last, -1 for second-to-last, etc.)", arg)
		}
		index := int(-parsed)
		if index >= len(entries) {
			return nil, fmt.Errorf("index %s out of range (only %d history entries)", arg, len(entries))
		}
		return &entries[index], nil
	}

	// Treat as hex ID prefix
	hexID := strings.ToLower(arg)
	for i := range entries {
		if strings.HasPrefix(strings.ToLower(entries[i].Record.ID), hexID) {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("no history entry found matching ID: %s", arg)
}

func (a *App) view(ctx *cli.Context) error {
	root, err := history.Root()
	if err != nil {
		return err
	}

	entries, err := history.LoadEntries(a.logger, root)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(entries) == 0 {
		return fmt.Errorf("no history entries found")
	}

	// Sort by timestamp (newest first)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Record.Timestamp.After(entries[j].Record.Timestamp)
	})

	target, err := resolveViewArg(ctx.Args().First(), entries)
	if err != nil {
		return err
	}

	return a.displayEntry(target)
}

func (a *App) displayEntry(entry *history.Entry) error {
	rec := entry.Record

	fmt.Fprintf(a.out, "=== Run: %s ===\n", rec.ID[:8])
	fmt.Fprintf(a.out, "Suite: %s\n", rec.Suite)
	fmt.Fprintf(a.out, "Time: %s\n", rec.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(a.out, "Duration: %s\n", rec.Duration)
	fmt.Fprintf(a.out, "Dispatch: %s\n", rec.Dispatch)
	fmt.Fprintf(a.out, "Exit Code: %d\n", rec.ExitCode)
	if rec.WorkDir != "" {
		fmt.Fprintf(a.out, "Working Dir: %s\n", rec.WorkDir)
	}
	if rec.Git != nil && rec.Git.Commit != "" {
		shortCommit := rec.Git.Commit
		if len(shortCommit) > 8 {
			shortCommit = shortCommit[:8]
		}
		fmt.Fprintf(a.out, "Git Commit: %s", shortCommit)
		if rec.Git.Branch != "" {
			fmt.Fprintf(a.out, " (%s)", rec.Git.Branch)
		}
		fmt.Fprintln(a.out)
	}
	fmt.Fprintln(a.out)

	fmt.Fprintf(a.out, "%d contentions across %d tests, %d passed, %d failed, %d skipped.\n",
		rec.Contentions, rec.Tests, rec.Passed, rec.Failed, rec.Skipped)

	if len(rec.Results) > 0 {
		fmt.Fprintln(a.out)
		for _, res := range rec.Results {
			marker := "✓"
			if res.Conclusion == "failed" {
				marker = "✗"
			} else if res.Conclusion == "skipped" {
				marker = "-"
			}
			fmt.Fprintf(a.out, "%s %s  [%s]  %d contentions\n",
				marker, res.Name, res.Duration.Round(time.Millisecond), res.Contentions)
			if res.Message != "" {
				fmt.Fprintf(a.out, "\t%s: %s\n", res.Failure, res.Message)
			}
			if res.Source != "" {
				fmt.Fprintf(a.out, "\tLocation: line %d in %q\n", res.Line, res.Source)
			}
		}
	}

	// Surface the saved report when present
	reportPath := filepath.Join(entry.FullPath, "report.txt")
	if _, err := os.Stat(reportPath); err == nil {
		fmt.Fprintf(a.out, "\nReport: %s\n", reportPath)
	}

	return nil
}
