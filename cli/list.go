package cli

// This file contains the list command for displaying previous suite runs.

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/contendgo/contendgo/history"
)

func (a *App) list(ctx *cli.Context) error {
	filterSuite := ctx.String("suite")
	limit := ctx.Int("limit")

	root, err := history.Root()
	if err != nil {
		return err
	}

	entries, err := history.LoadEntries(a.logger, root)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	// Apply suite filter if specified
	var filtered []history.Entry
	for _, entry := range entries {
		if filterSuite == "" || entry.Record.Suite == filterSuite {
			filtered = append(filtered, entry)
		}
	}

	if len(filtered) == 0 {
		if filterSuite != "" {
			fmt.Fprintf(a.out, "No runs found for suite: %s\n", filterSuite)
		} else {
			fmt.Fprintln(a.out, "No runs found")
		}
		return nil
	}

	// Sort by timestamp (newest first)
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Record.Timestamp.After(filtered[j].Record.Timestamp)
	})

	// Apply limit
	displayRuns := filtered
	if limit > 0 && limit < len(displayRuns) {
		displayRuns = displayRuns[:limit]
	}

	fmt.Fprintf(a.out, "\n=== Runs (%d total) ===\n\n", len(filtered))

	for _, entry := range displayRuns {
		rec := entry.Record
		timestamp := rec.Timestamp.Format("2006-01-02 15:04:05")

		// Format duration
		duration := rec.Duration.Round(time.Millisecond)

		// Determine status indicator
		status := "✓"
		if rec.ExitCode != 0 {
			status = "✗"
		}

		// Format args (skip the program name)
		args := ""
		if len(rec.Args) > 1 {
			args = strings.Join(rec.Args[1:], " ")
		}

		// Show short ID (first 8 chars)
		shortID := rec.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		fmt.Fprintf(a.out, "%s  %s  [%s]  exit=%d  id=%s\n", status, timestamp, duration, rec.ExitCode, shortID)
		fmt.Fprintf(a.out, "   Suite: %s (%s dispatch)\n", rec.Suite, rec.Dispatch)
		fmt.Fprintf(a.out, "   Tests: %d passed, %d failed, %d skipped (%d contentions)\n",
			rec.Passed, rec.Failed, rec.Skipped, rec.Contentions)
		if args != "" {
			fmt.Fprintf(a.out, "   Args: %s\n", args)
		}
		if rec.WorkDir != "" {
			fmt.Fprintf(a.out, "   Path: %s\n", rec.WorkDir)
		}
		if rec.Target != nil && rec.Target.OS != "" && rec.Target.Arch != "" {
			fmt.Fprintf(a.out, "   Local: %s/%s\n", rec.Target.OS, rec.Target.Arch)
		}
		if rec.Git != nil && rec.Git.Commit != "" {
			shortCommit := rec.Git.Commit
			if len(shortCommit) > 8 {
				shortCommit = shortCommit[:8]
			}
			fmt.Fprintf(a.out, "   Commit: %s", shortCommit)
			if rec.Git.Branch != "" {
				fmt.Fprintf(a.out, " (%s)", rec.Git.Branch)
			}
			fmt.Fprintln(a.out)
		}
		fmt.Fprintf(a.out, "   %s\n", entry.FullPath)
		fmt.Fprintln(a.out)
	}

	fmt.Fprintln(a.out, "\nView a run: "+AppName+" view <ID>")

	return nil
}
