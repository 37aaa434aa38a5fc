package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contendgo/contendgo/contend"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()

	reg := contend.NewRegistry()
	reg.MustRegister("adds_up", func(ct *contend.T) {
		ct.Equality(1+1, 2)
		ct.Equality(2+2, 4)
	})
	reg.MustRegister("sits_out", func(ct *contend.T) {
		ct.Skip("not on this platform")
	})

	app := New("unit", reg)
	var buf bytes.Buffer
	app.out = &buf
	return app, &buf
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunSuite_SequentialReport(t *testing.T) {
	t.Chdir(t.TempDir())
	app, buf := newTestApp(t)

	err := app.Run([]string{"unit", "run", "--no-history", "--dispatch", "sequential"})
	require.NoError(t, err)

	report := buf.String()
	assert.Contains(t, report, "unit: 2 test records.")
	assert.Contains(t, report, "sits_out skipped: not on this platform")
	assert.Contains(t, report, "2 contentions across 2 tests, 1 passed, 0 failed, 1 skipped.")
}

func TestRunSuite_RunFilterSelectsSubset(t *testing.T) {
	t.Chdir(t.TempDir())
	app, buf := newTestApp(t)

	err := app.Run([]string{"unit", "run", "--no-history", "--run", "adds.*"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "unit: 1 test records.")
}

func TestRunSuite_UnknownDispatchRejected(t *testing.T) {
	t.Chdir(t.TempDir())
	app, _ := newTestApp(t)

	err := app.Run([]string{"unit", "run", "--no-history", "--dispatch", "quantum"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dispatch strategy")
}

func TestRunSuite_NoMatchingTests(t *testing.T) {
	t.Chdir(t.TempDir())
	app, _ := newTestApp(t)

	err := app.Run([]string{"unit", "run", "--no-history", "--run", "nothing_here"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tests matched")
}

func TestRunSuite_ConfigSuppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, defaultConfigFile, "suite: configured\ndispatch: thread\njobs: 2\n")

	app, buf := newTestApp(t)

	err := app.Run([]string{"unit", "run", "--no-history"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "configured: 2 test records.")
}
