package dispatch

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contendgo/contendgo/contend"
)

func TestSplitTrailer_RoundTrip(t *testing.T) {
	st := &contend.State{
		Identity:    contend.Identity{Name: "x"},
		Contentions: 7,
		Operands:    [2]string{"5", "6"},
		Source:      "demo.go",
		Line:        42,
		Message:     "equality(5, 6): 5 != 6",
	}

	var buf bytes.Buffer
	buf.WriteString("child says hello\n")
	writeTrailer(&buf, st)
	buf.WriteString("and goodbye\n")

	tr, visible := splitTrailer(buf.String())
	require.NotNil(t, tr)
	assert.Equal(t, uint64(7), tr.Contentions)
	assert.Equal(t, [2]string{"5", "6"}, tr.Operands)
	assert.Equal(t, "demo.go", tr.Source)
	assert.Equal(t, 42, tr.Line)
	assert.Equal(t, "equality(5, 6): 5 != 6", tr.Message)
	assert.Equal(t, "child says hello\nand goodbye\n", visible)
}

func TestSplitTrailer_AbsentOrMalformed(t *testing.T) {
	tr, visible := splitTrailer("just output\n")
	assert.Nil(t, tr)
	assert.Equal(t, "just output\n", visible)

	tr, visible = splitTrailer(trailerPrefix + "{not json\n")
	assert.Nil(t, tr)
	assert.Empty(t, visible)
}

func TestChildMain_ReportsEncodedStatus(t *testing.T) {
	reg := contend.NewRegistry()
	reg.MustRegister("passes", func(ct *contend.T) { ct.Equality(1, 1) })
	reg.MustRegister("absurd", func(ct *contend.T) { ct.Equality(1, 2) })
	reg.MustRegister("skips", func(ct *contend.T) { ct.Skip("nope") })

	cases := []struct {
		name       string
		conclusion contend.Conclusion
		kind       contend.FailureKind
	}{
		{"passes", contend.Passed, contend.FailureNone},
		{"absurd", contend.Failed, contend.FailureAbsurdity},
		{"skips", contend.Skipped, contend.FailureNone},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		status := ChildMain(&out, reg, tc.name, "", zerolog.Nop())

		want, err := contend.EncodeStatus(tc.conclusion, tc.kind)
		require.NoError(t, err)
		assert.Equal(t, want, status, "status for %s", tc.name)
		assert.True(t, strings.Contains(out.String(), trailerPrefix),
			"trailer missing for %s", tc.name)
	}
}

func TestChildMain_UnknownTestIsFault(t *testing.T) {
	var out bytes.Buffer
	status := ChildMain(&out, contend.NewRegistry(), "ghost", "", zerolog.Nop())

	c, k, err := contend.DecodeStatus(status)
	require.NoError(t, err)
	assert.Equal(t, contend.Failed, c)
	assert.Equal(t, contend.FailureFault, k)
}

func TestChildMain_ExposesScratchDir(t *testing.T) {
	dir := t.TempDir()
	reg := contend.NewRegistry()
	reg.MustRegister("scratch", func(ct *contend.T) {
		ct.StringEq(dir, ct.ScratchDir)
	})

	var out bytes.Buffer
	status := ChildMain(&out, reg, "scratch", dir, zerolog.Nop())
	c, _, err := contend.DecodeStatus(status)
	require.NoError(t, err)
	assert.Equal(t, contend.Passed, c)
}

func TestProcessClassify_SupervisedKinds(t *testing.T) {
	s := &Process{opts: Options{Logger: zerolog.Nop(), Timeout: time.Second, MemoryLimit: 1 << 20}}
	id := contend.Identity{Name: "x"}
	bg := context.Background()

	t.Run("memory limit", func(t *testing.T) {
		out := s.classify(id, nil, bg, bg, true, 0)
		assert.Equal(t, contend.FailureLimit, out.Failure)
		assert.Contains(t, out.Message, "memory limit")
	})

	t.Run("deadline", func(t *testing.T) {
		cctx, cancel := context.WithTimeout(bg, -time.Second)
		defer cancel()
		out := s.classify(id, nil, cctx, bg, false, 0)
		assert.Equal(t, contend.FailureLimit, out.Failure)
		assert.Contains(t, out.Message, "did not exit")
	})

	t.Run("interrupt", func(t *testing.T) {
		ctx, cancel := context.WithCancel(bg)
		cancel()
		out := s.classify(id, nil, ctx, ctx, false, 0)
		assert.Equal(t, contend.FailureInterrupt, out.Failure)
	})

	t.Run("clean skip exit", func(t *testing.T) {
		out := s.classify(id, nil, bg, bg, false, 0)
		assert.Equal(t, contend.Skipped, out.Conclusion)
		assert.Equal(t, contend.FailureNone, out.Failure)
	})
}

func TestProcessDecoded_UnrecognizedStatusIsFault(t *testing.T) {
	s := &Process{opts: Options{Logger: zerolog.Nop()}}
	out := s.decoded(contend.Identity{Name: "x"}, 3<<3, 0)
	assert.Equal(t, contend.Failed, out.Conclusion)
	assert.Equal(t, contend.FailureFault, out.Failure)
}
