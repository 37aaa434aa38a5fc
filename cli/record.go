package cli

// This file contains run recording: saving the run record and report
// to the history directory.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/contendgo/contendgo/model"
)

func (a *App) recordRun(record *model.RunRecord, report []byte) error {
	// Get repository root
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("not in a git repository: %w", err)
	}
	repoRoot := strings.TrimSpace(string(output))

	// Get relative path from repo root
	relPath := "."
	if record.WorkDir != "" {
		if rel, err := filepath.Rel(repoRoot, record.WorkDir); err == nil {
			relPath = rel
		}
	}

	// Update WorkDir to be relative to repo root
	record.WorkDir = relPath

	// Create directory in .contendgo/history/<timestamp>-<commit>-<id>
	timestamp := record.Timestamp.Format("20060102-150405")
	shortCommit := "nogit"
	if record.Git != nil && record.Git.Commit != "" {
		shortCommit = record.Git.Commit
		if len(shortCommit) > 8 {
			shortCommit = shortCommit[:8]
		}
	}
	shortID := record.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	runName := fmt.Sprintf("%s-%s-%s", timestamp, shortCommit, shortID)
	runDir := filepath.Join(repoRoot, ".contendgo", "history", runName)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	// Write the human-readable report alongside the record
	if len(report) > 0 {
		reportPath := filepath.Join(runDir, "report.txt")
		if err := atomic.WriteFile(reportPath, bytes.NewReader(report)); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	// Write run metadata; atomic rename so list and view never see a
	// partially written history.json
	recordJSON, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	recordPath := filepath.Join(runDir, "history.json")
	if err := atomic.WriteFile(recordPath, bytes.NewReader(recordJSON)); err != nil {
		return fmt.Errorf("failed to write run record: %w", err)
	}

	a.logger.Debug().Str("dir", runDir).Str("id", record.ID).Msg("Recorded run")
	return nil
}
