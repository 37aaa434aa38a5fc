package harness

import (
	"fmt"
	"io"
	"strings"

	"github.com/contendgo/contendgo/contend"
	"github.com/contendgo/contendgo/dispatch"
)

// writeDiagnostic emits the per-test block for a non-passing outcome.
func writeDiagnostic(w io.Writer, out dispatch.Outcome) {
	name := out.Identity.Name

	if out.Conclusion == contend.Skipped {
		if out.Message != "" {
			fmt.Fprintf(w, "%s skipped: %s\n", name, out.Message)
		} else {
			fmt.Fprintf(w, "%s skipped.\n", name)
		}
		return
	}

	fmt.Fprintf(w, "%s failed after %d contentions.\n", name, out.Contentions)

	switch out.Failure {
	case contend.FailureAbsurdity:
		fmt.Fprintf(w, "\tAbsurdity: %s\n", out.Message)
	case contend.FailureExplicit:
		fmt.Fprintf(w, "\tMessage: %s\n", out.Message)
	case contend.FailureLimit:
		fmt.Fprintf(w, "\tLimit: %s\n", out.Message)
	case contend.FailureInterrupt:
		fmt.Fprintf(w, "\tInterrupt: %s\n", out.Message)
	case contend.FailureFault:
		fmt.Fprintf(w, "\tFault: %s\n", out.Message)
	}

	if out.Source != "" {
		fmt.Fprintf(w, "\tLocation: line %d in %q\n", out.Line, out.Source)
	}

	if out.Output != "" {
		for _, line := range strings.Split(strings.TrimRight(out.Output, "\n"), "\n") {
			fmt.Fprintf(w, "\t> %s\n", line)
		}
	}
}

// writeTally emits the final summary line.
func writeTally(w io.Writer, t Totals) {
	fmt.Fprintf(w, "%d contentions across %d tests, %d passed, %d failed, %d skipped.\n",
		t.Contentions, t.Tests, t.Passed, t.Failed, t.Skipped)
}
