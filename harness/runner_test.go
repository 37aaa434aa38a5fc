package harness

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contendgo/contendgo/contend"
	"github.com/contendgo/contendgo/dispatch"
)

func TestRunner_AggregatesTotals(t *testing.T) {
	reg := contend.NewRegistry()
	reg.MustRegister("passes", func(ct *contend.T) {
		ct.Equality(2, 2)
		ct.Truth(true)
	})
	reg.MustRegister("fails", func(ct *contend.T) { ct.Equality(5, 6) })
	reg.MustRegister("skips", func(ct *contend.T) { ct.Skip("not today") })

	var buf bytes.Buffer
	r := &Runner{
		Suite:    "unit",
		Strategy: dispatch.NewSequential(dispatch.Options{Logger: zerolog.Nop()}),
		Logger:   zerolog.Nop(),
		Out:      &buf,
	}

	result, err := r.Run(context.Background(), reg.Tests())
	require.NoError(t, err)

	assert.Equal(t, Totals{
		Contentions: 3,
		Tests:       3,
		Passed:      1,
		Failed:      1,
		Skipped:     1,
	}, result.Totals)
	assert.Equal(t, 1, result.Totals.ExitCode())

	report := buf.String()
	assert.True(t, strings.HasPrefix(report, "unit: 3 test records.\n"))
	assert.Contains(t, report, "fails failed after 1 contentions.")
	assert.Contains(t, report, "Absurdity: equality(5, 6)")
	assert.Contains(t, report, "skips skipped: not today")
	assert.Contains(t, report, "3 contentions across 3 tests, 1 passed, 1 failed, 1 skipped.")
}

func TestRunner_ExitCodeZeroWhenNothingFails(t *testing.T) {
	reg := contend.NewRegistry()
	reg.MustRegister("passes", func(ct *contend.T) { ct.Truth(true) })
	reg.MustRegister("skips", func(ct *contend.T) { ct.Skip("elsewhere") })

	var buf bytes.Buffer
	r := &Runner{
		Suite:    "unit",
		Strategy: dispatch.NewSequential(dispatch.Options{Logger: zerolog.Nop()}),
		Logger:   zerolog.Nop(),
		Out:      &buf,
	}

	result, err := r.Run(context.Background(), reg.Tests())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Totals.ExitCode())
}
