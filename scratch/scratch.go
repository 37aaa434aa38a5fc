// Package scratch allocates ephemeral per-test directories for
// process-isolated executions.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Dir allocates a unique directory beneath root, recursively creating any
// missing parents. If any step fails, exactly the directories created by
// this call are removed again, so a partial failure leaves no orphans
// behind. The caller owns cleanup of the returned directory.
func Dir(root string) (string, error) {
	target := filepath.Join(root, uuid.NewString())

	created, err := mkdirTracked(target)
	if err != nil {
		rollback(created)
		return "", err
	}
	return target, nil
}

// mkdirTracked creates path and its missing parents, innermost last, and
// returns the directories it actually created, outermost first.
func mkdirTracked(path string) ([]string, error) {
	var missing []string
	for p := path; ; p = filepath.Dir(p) {
		info, err := os.Stat(p)
		if err == nil {
			if !info.IsDir() {
				return nil, fmt.Errorf("scratch parent %s exists and is not a directory", p)
			}
			break
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to inspect scratch parent %s: %w", p, err)
		}
		missing = append(missing, p)
		if parent := filepath.Dir(p); parent == p {
			break
		}
	}

	var created []string
	for i := len(missing) - 1; i >= 0; i-- {
		if err := os.Mkdir(missing[i], 0o755); err != nil {
			return created, fmt.Errorf("failed to create scratch directory %s: %w", missing[i], err)
		}
		created = append(created, missing[i])
	}
	return created, nil
}

// rollback removes created directories innermost first. Removal is best
// effort; a directory that gained content in the meantime is left alone.
func rollback(created []string) {
	for i := len(created) - 1; i >= 0; i-- {
		_ = os.Remove(created[i])
	}
}

// Remove deletes a scratch directory and everything beneath it.
func Remove(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove scratch directory %s: %w", dir, err)
	}
	return nil
}
