package dispatch

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contendgo/contendgo/contend"
)

func registryOf(t *testing.T, tests map[string]contend.TestFunc, order ...string) []contend.Test {
	t.Helper()
	reg := contend.NewRegistry()
	for _, name := range order {
		reg.MustRegister(name, tests[name])
	}
	return reg.Tests()
}

func TestSequential_RunsInOrder(t *testing.T) {
	var ran []string
	tests := registryOf(t, map[string]contend.TestFunc{
		"first":  func(ct *contend.T) { ran = append(ran, "first"); ct.Equality(1, 1) },
		"second": func(ct *contend.T) { ran = append(ran, "second"); ct.Equality(1, 2) },
		"third":  func(ct *contend.T) { ran = append(ran, "third"); ct.Skip("later") },
	}, "first", "second", "third")

	s := NewSequential(Options{Logger: zerolog.Nop()})
	outcomes, err := s.Run(context.Background(), tests)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, []string{"first", "second", "third"}, ran)
	assert.Equal(t, contend.Passed, outcomes[0].Conclusion)
	assert.Equal(t, contend.Failed, outcomes[1].Conclusion)
	assert.Equal(t, contend.FailureAbsurdity, outcomes[1].Failure)
	assert.Equal(t, contend.Skipped, outcomes[2].Conclusion)
}

func TestSequential_FailureDoesNotStopRun(t *testing.T) {
	tests := registryOf(t, map[string]contend.TestFunc{
		"fails": func(ct *contend.T) { ct.Fail("boom") },
		"next":  func(ct *contend.T) { ct.Truth(true) },
	}, "fails", "next")

	s := NewSequential(Options{Logger: zerolog.Nop()})
	outcomes, err := s.Run(context.Background(), tests)
	require.NoError(t, err)

	assert.Equal(t, contend.FailureExplicit, outcomes[0].Failure)
	assert.Equal(t, contend.Passed, outcomes[1].Conclusion)
}

func TestSequential_CanceledContextInterruptsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tests := registryOf(t, map[string]contend.TestFunc{
		"one": func(ct *contend.T) { cancel(); ct.Truth(true) },
		"two": func(ct *contend.T) { ct.Truth(true) },
	}, "one", "two")

	s := NewSequential(Options{Logger: zerolog.Nop()})
	outcomes, err := s.Run(ctx, tests)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, contend.Passed, outcomes[0].Conclusion)
	assert.Equal(t, contend.Failed, outcomes[1].Conclusion)
	assert.Equal(t, contend.FailureInterrupt, outcomes[1].Failure)
}

func TestSequential_RecoversPanicAsFault(t *testing.T) {
	tests := registryOf(t, map[string]contend.TestFunc{
		"crashes": func(ct *contend.T) { panic("broken invariant") },
	}, "crashes")

	s := NewSequential(Options{Logger: zerolog.Nop()})
	outcomes, err := s.Run(context.Background(), tests)
	require.NoError(t, err)

	assert.Equal(t, contend.Failed, outcomes[0].Conclusion)
	assert.Equal(t, contend.FailureFault, outcomes[0].Failure)
}
