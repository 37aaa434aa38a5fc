package history

// This file contains shared history utilities for loading and parsing
// suite run history.

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/contendgo/contendgo/model"
)

type Entry struct {
	Record   model.RunRecord
	FullPath string
}

// Root returns the .contendgo directory path from the git repository root.
func Root() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not in a git repository: %w", err)
	}
	repoRoot := strings.TrimSpace(string(output))
	root := filepath.Join(repoRoot, ".contendgo")

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return "", fmt.Errorf("no runs found in %s", root)
	}

	return root, nil
}

// LoadEntries loads all run records from the .contendgo directory.
func LoadEntries(logger zerolog.Logger, root string) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			recordPath := filepath.Join(path, "history.json")
			if _, err := os.Stat(recordPath); err == nil {
				record, err := parseRecordJSON(recordPath)
				if err != nil {
					logger.Warn().Err(err).Str("path", recordPath).Msg("Failed to parse history.json")
					return nil
				}

				entries = append(entries, Entry{
					Record:   record,
					FullPath: path,
				})
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk .contendgo directory: %w", err)
	}

	return entries, nil
}

// parseRecordJSON parses a history.json file.
func parseRecordJSON(recordPath string) (model.RunRecord, error) {
	data, err := os.ReadFile(recordPath)
	if err != nil {
		return model.RunRecord{}, err
	}

	var record model.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.RunRecord{}, err
	}

	return record, nil
}
