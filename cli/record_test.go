package cli

import (
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contendgo/contendgo/history"
	"github.com/contendgo/contendgo/model"
)

func TestRecordRun_WritesLoadableHistory(t *testing.T) {
	dir := t.TempDir()
	if err := exec.Command("git", "init", dir).Run(); err != nil {
		t.Skipf("git unavailable: %v", err)
	}
	t.Chdir(dir)

	app := &App{logger: zerolog.Nop()}
	record := &model.RunRecord{
		ID:        "deadbeefdeadbeefdeadbeefdeadbeef",
		Suite:     "unit",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Dispatch:  "sequential",
		WorkDir:   dir,
		Tests:     2,
		Passed:    2,
		Results: []model.TestResult{
			{Name: "adds_up", Conclusion: "passed", Failure: "none", Contentions: 2},
			{Name: "also_adds_up", Conclusion: "passed", Failure: "none", Contentions: 1},
		},
	}

	require.NoError(t, app.recordRun(record, []byte("unit: 2 test records.\n")))

	entries, err := history.LoadEntries(zerolog.Nop(), filepath.Join(dir, ".contendgo"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0].Record
	assert.Equal(t, "deadbeefdeadbeefdeadbeefdeadbeef", got.ID)
	assert.Equal(t, "unit", got.Suite)
	assert.Equal(t, ".", got.WorkDir)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "adds_up", got.Results[0].Name)

	assert.FileExists(t, filepath.Join(entries[0].FullPath, "report.txt"))
}
