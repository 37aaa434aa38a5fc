package cli

// This file contains Git integration utilities for stamping run
// records with repository information.

import (
	"fmt"
	"os/exec"
	"strings"
)

func gitOutput(args ...string) (string, error) {
	output, err := exec.Command("git", args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// getGitInfo resolves the current commit and branch for the run record.
// On a detached HEAD the branch is empty; only a missing repository (or
// missing git) is an error.
func (a *App) getGitInfo() (commit, branch string, err error) {
	commit, err = gitOutput("rev-parse", "HEAD")
	if err != nil {
		return "", "", fmt.Errorf("failed to get git commit: %w", err)
	}

	branch, err = gitOutput("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", "", fmt.Errorf("failed to get git branch: %w", err)
	}
	// rev-parse prints the literal string HEAD when detached.
	if branch == "HEAD" {
		branch = ""
	}

	return commit, branch, nil
}
