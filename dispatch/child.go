package dispatch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/contendgo/contendgo/contend"
)

// The exit status is the authoritative cross-process channel for the
// (conclusion, failure kind) pair, but it cannot carry the contention
// counter or operand diagnostics. A cleanly exiting child therefore also
// emits a single machine-readable trailer line on stdout; a crashed child
// never gets to write one, which is fine: there is nothing trustworthy to
// report from inside a crashed process anyway.
const trailerPrefix = "\x01contend-state\x01 "

type trailer struct {
	Contentions uint64    `json:"contentions"`
	Operands    [2]string `json:"operands"`
	Source      string    `json:"source,omitempty"`
	Line        int       `json:"line,omitempty"`
	Message     string    `json:"message,omitempty"`
}

// ChildMain executes one registered test inside a child process and returns
// the encoded exit status the process must terminate with. It is the
// counterpart of the Process strategy and is wired to a hidden CLI command
// by the harness front-end.
func ChildMain(w io.Writer, reg *contend.Registry, name, scratchDir string, logger zerolog.Logger) int {
	tst, ok := reg.Lookup(name)
	if !ok {
		// A name the parent sent but the registry lacks means the two
		// processes disagree about the suite; report it as a fault.
		logger.Error().Str("test", name).Msg("Test not registered in child")
		return mustEncode(contend.Failed, contend.FailureFault)
	}

	st := contend.ExecuteIn(tst, scratchDir, logger)
	writeTrailer(w, st)

	status, err := contend.EncodeStatus(st.Conclusion, st.Failure)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode exit status")
		return mustEncode(contend.Failed, contend.FailureFault)
	}
	return status
}

func mustEncode(c contend.Conclusion, k contend.FailureKind) int {
	status, err := contend.EncodeStatus(c, k)
	if err != nil {
		panic(fmt.Sprintf("dispatch: unencodable verdict %v/%v", c, k))
	}
	return status
}

func writeTrailer(w io.Writer, st *contend.State) {
	data, err := json.Marshal(trailer{
		Contentions: st.Contentions,
		Operands:    st.Operands,
		Source:      st.Source,
		Line:        st.Line,
		Message:     st.Message,
	})
	if err != nil {
		return
	}
	fmt.Fprintf(w, "%s%s\n", trailerPrefix, data)
}

// splitTrailer extracts the trailer from captured child output, returning
// the parsed trailer (nil if absent or malformed) and the output with the
// trailer line removed.
func splitTrailer(output string) (*trailer, string) {
	var (
		tr      *trailer
		visible strings.Builder
	)
	sc := bufio.NewScanner(strings.NewReader(output))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if rest, ok := strings.CutPrefix(line, trailerPrefix); ok {
			var parsed trailer
			if err := json.Unmarshal([]byte(rest), &parsed); err == nil {
				tr = &parsed
			}
			continue
		}
		visible.WriteString(line)
		visible.WriteByte('\n')
	}
	if sc.Err() != nil {
		return tr, output
	}
	return tr, visible.String()
}
