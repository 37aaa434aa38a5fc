package contend

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// T is the control surface handed to a test body. Every contention consults
// and mutates the per-test State; an absurd contention concludes the test
// and terminates the body without returning.
//
// T is owned by a single test goroutine and must not be shared.
type T struct {
	state  *State
	logger zerolog.Logger

	// One-shot controls, consumed by the next contention.
	modifier Modifier
	trace    bool

	// ScratchDir is the private directory allocated for this execution, if
	// the dispatcher provided one. Empty otherwise.
	ScratchDir string
}

// newT returns a control surface bound to a fresh state for id.
func newT(id Identity, logger zerolog.Logger) *T {
	return &T{
		state:  &State{Identity: id},
		logger: logger.With().Str("test", id.Name).Logger(),
	}
}

// State exposes the execution state. Dispatchers read it after the body
// goroutine terminates; test bodies have no reason to touch it.
func (t *T) State() *State {
	return t.state
}

// Invert makes the next contention absurd iff its comparison succeeds.
func (t *T) Invert() { t.modifier = InvertNext }

// AlwaysFail makes the next contention absurd regardless of its comparison.
func (t *T) AlwaysFail() { t.modifier = AlwaysAbsurd }

// NeverFail prevents the next contention from concluding the test.
func (t *T) NeverFail() { t.modifier = NeverAbsurd }

// Trace makes the next contention emit its operands even when it does not
// fail. It does not alter the pass/fail outcome.
func (t *T) Trace() { t.trace = true }

// contend evaluates one contention: bump the counter, consume the one-shot
// controls, and either conclude-and-terminate (absurd) or emit the optional
// trace diagnostic and return. skip is the caller distance for location
// capture.
func (t *T) contend(skip int, op string, ok bool, former, latter, detail string) {
	t.state.Contentions++

	m := t.modifier
	t.modifier = Reflect
	traced := t.trace
	t.trace = false

	if m.absurd(ok) {
		source, line := callerSite(skip + 1)
		st := t.state
		st.Operands = [2]string{former, latter}
		st.Source = source
		st.Line = line
		st.Message = fmt.Sprintf("%s(%s, %s): %s", op, former, latter, detail)
		st.conclude(Failed, FailureAbsurdity)
		runtime.Goexit()
	}

	if traced {
		t.logger.Info().
			Str("op", op).
			Str("solution", former).
			Str("candidate", latter).
			Bool("comparison", ok).
			Str("modifier", m.String()).
			Msg("Contention trace")
	}
}

// terminate concludes the test explicitly and transfers control back to the
// dispatcher. It never returns.
func (t *T) terminate(skip int, c Conclusion, k FailureKind, message string) {
	source, line := callerSite(skip + 1)
	st := t.state
	st.Source = source
	st.Line = line
	st.Message = message
	st.conclude(c, k)
	runtime.Goexit()
}

// Fail concludes the test as failed, independent of any comparison.
func (t *T) Fail(format string, args ...any) {
	t.terminate(1, Failed, FailureExplicit, fmt.Sprintf(format, args...))
}

// Skip concludes the test as skipped.
func (t *T) Skip(format string, args ...any) {
	t.terminate(1, Skipped, FailureNone, fmt.Sprintf(format, args...))
}

// Pass concludes the test as passed without evaluating further statements.
func (t *T) Pass() {
	t.terminate(1, Passed, FailureNone, "")
}

// Truth contends that v is true.
func (t *T) Truth(v bool) {
	t.contend(1, "truth", v, strconv.FormatBool(v), "", "not true")
}

// Equality contends that two integers are equal.
func (t *T) Equality(solution, candidate int64) {
	former := strconv.FormatInt(solution, 10)
	latter := strconv.FormatInt(candidate, 10)
	t.contend(1, "equality", solution == candidate, former, latter,
		former+" != "+latter)
}

// Inequality contends that two integers are not equal.
func (t *T) Inequality(solution, candidate int64) {
	former := strconv.FormatInt(solution, 10)
	latter := strconv.FormatInt(candidate, 10)
	t.contend(1, "inequality", solution != candidate, former, latter,
		former+" == "+latter)
}

// StringEq contends that two strings are equal.
func (t *T) StringEq(solution, candidate string) {
	t.contend(1, "strcmp", solution == candidate,
		strconv.Quote(solution), strconv.Quote(candidate),
		fmt.Sprintf("%q != %q", solution, candidate))
}

// StringEqFold contends that two strings are equal, case-insensitively.
func (t *T) StringEqFold(solution, candidate string) {
	t.contend(1, "strcasecmp", strings.EqualFold(solution, candidate),
		strconv.Quote(solution), strconv.Quote(candidate),
		fmt.Sprintf("%q != %q", solution, candidate))
}

// Stringf formats candidate and contends that the result equals solution.
func (t *T) Stringf(solution, format string, args ...any) {
	formatted := fmt.Sprintf(format, args...)
	t.contend(1, "strcmpf", solution == formatted,
		strconv.Quote(solution), strconv.Quote(formatted),
		fmt.Sprintf("%q != %q", solution, formatted))
}

// Contains contends that needle occurs in haystack and returns the index of
// the first occurrence.
func (t *T) Contains(haystack, needle string) int {
	i := strings.Index(haystack, needle)
	t.contend(1, "strstr", i >= 0,
		strconv.Quote(haystack), strconv.Quote(needle),
		fmt.Sprintf("%q not found in %q", needle, haystack))
	return i
}

// ContainsFold is Contains with case-insensitive matching. The returned
// index is a byte offset into haystack as given.
func (t *T) ContainsFold(haystack, needle string) int {
	i := indexFold(haystack, needle)
	t.contend(1, "strcasestr", i >= 0,
		strconv.Quote(haystack), strconv.Quote(needle),
		fmt.Sprintf("%q not found in %q", needle, haystack))
	return i
}

// indexFold is strings.Index under Unicode simple case folding. Matching
// rune by rune keeps the offset valid in the original string even where
// folding changes a rune's encoded length.
func indexFold(haystack, needle string) int {
	if needle == "" {
		return 0
	}
	for i := range haystack {
		if hasPrefixFold(haystack[i:], needle) {
			return i
		}
	}
	return -1
}

func hasPrefixFold(s, prefix string) bool {
	for _, pr := range prefix {
		if s == "" {
			return false
		}
		sr, size := utf8.DecodeRuneInString(s)
		if !strings.EqualFold(string(sr), string(pr)) {
			return false
		}
		s = s[size:]
	}
	return true
}

// RuneEq contends that two rune sequences are equal.
func (t *T) RuneEq(solution, candidate []rune) {
	s, c := string(solution), string(candidate)
	t.contend(1, "wcscmp", s == c,
		strconv.Quote(s), strconv.Quote(c),
		fmt.Sprintf("%q != %q", s, c))
}

// RuneEqFold contends that two rune sequences are equal, case-insensitively.
func (t *T) RuneEqFold(solution, candidate []rune) {
	s, c := string(solution), string(candidate)
	t.contend(1, "wcscasecmp", strings.EqualFold(s, c),
		strconv.Quote(s), strconv.Quote(c),
		fmt.Sprintf("%q != %q", s, c))
}

// RuneContains contends that needle occurs in haystack and returns the index
// of the first occurrence, in runes.
func (t *T) RuneContains(haystack, needle []rune) int {
	h, n := string(haystack), string(needle)
	byteIdx := strings.Index(h, n)
	i := -1
	if byteIdx >= 0 {
		i = len([]rune(h[:byteIdx]))
	}
	t.contend(1, "wcsstr", i >= 0,
		strconv.Quote(h), strconv.Quote(n),
		fmt.Sprintf("%q not found in %q", n, h))
	return i
}

// BytesEq contends that the first n bytes of two regions are equal.
func (t *T) BytesEq(solution, candidate []byte, n int) {
	s, c := bound(solution, n), bound(candidate, n)
	t.contend(1, "memcmp", bytes.Equal(s, c),
		fmt.Sprintf("%q", s), fmt.Sprintf("%q", c),
		fmt.Sprintf("%q != %q (%d bytes)", s, c, n))
}

// ByteIndex contends that b occurs in the first n bytes of region and
// returns the offset of the first occurrence.
func (t *T) ByteIndex(region []byte, b byte, n int) int {
	i := bytes.IndexByte(bound(region, n), b)
	t.contend(1, "memchr", i >= 0,
		fmt.Sprintf("%q", bound(region, n)), fmt.Sprintf("%#02x", b),
		fmt.Sprintf("%#02x not found in %d bytes", b, n))
	return i
}

// ByteLastIndex is ByteIndex searching from the end of the region.
func (t *T) ByteLastIndex(region []byte, b byte, n int) int {
	i := bytes.LastIndexByte(bound(region, n), b)
	t.contend(1, "memrchr", i >= 0,
		fmt.Sprintf("%q", bound(region, n)), fmt.Sprintf("%#02x", b),
		fmt.Sprintf("%#02x not found in %d bytes", b, n))
	return i
}

func bound(p []byte, n int) []byte {
	if n < 0 {
		return nil
	}
	if n > len(p) {
		n = len(p)
	}
	return p[:n]
}
