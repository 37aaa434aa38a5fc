package contend

// Conclusion is the terminal verdict of one test execution.
type Conclusion int

const (
	Failed  Conclusion = -1
	Skipped Conclusion = 0
	Passed  Conclusion = 1
)

func (c Conclusion) String() string {
	switch c {
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	case Passed:
		return "passed"
	}
	return "unknown"
}

// FailureKind classifies why a test failed. None for passed or skipped tests.
//
// Absurdity and Explicit are the only kinds produced by code running inside
// a test body. Limit, Interrupt and Fault are inferred by the supervising
// dispatcher from the execution's external behavior.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureAbsurdity: a contention's transformed comparison failed.
	FailureAbsurdity
	// FailureExplicit: the test called Fail directly.
	FailureExplicit
	// FailureLimit: a harness-enforced resource bound (time, memory) was
	// exceeded, or test setup failed.
	FailureLimit
	// FailureInterrupt: the execution was terminated by an external
	// interruption request.
	FailureInterrupt
	// FailureFault: the test body malfunctioned outside the protocol
	// (panic, uncaught signal, memory violation).
	FailureFault

	failureKindCount
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureAbsurdity:
		return "absurdity"
	case FailureExplicit:
		return "explicit"
	case FailureLimit:
		return "limit"
	case FailureInterrupt:
		return "interrupt"
	case FailureFault:
		return "fault"
	}
	return "unknown"
}

// Modifier transforms the outcome of exactly the next contention, then
// resets to Reflect.
type Modifier int

const (
	// Reflect: absurd iff the comparison fails.
	Reflect Modifier = iota
	// InvertNext: absurd iff the comparison succeeds.
	InvertNext
	// AlwaysAbsurd: absurd unconditionally.
	AlwaysAbsurd
	// NeverAbsurd: never absurd.
	NeverAbsurd
)

func (m Modifier) String() string {
	switch m {
	case Reflect:
		return "reflect"
	case InvertNext:
		return "invert"
	case AlwaysAbsurd:
		return "always-fail"
	case NeverAbsurd:
		return "never-fail"
	}
	return "unknown"
}

// absurd reports whether a contention whose comparison result is ok counts
// as absurd under m.
func (m Modifier) absurd(ok bool) bool {
	switch m {
	case InvertNext:
		return ok
	case AlwaysAbsurd:
		return true
	case NeverAbsurd:
		return false
	default:
		return !ok
	}
}

// State is the mutable per-execution record of one test. One instance exists
// per test execution and is never shared across tests.
type State struct {
	Identity Identity

	// Contentions counts every contention evaluated, regardless of outcome.
	Contentions uint64

	Conclusion Conclusion
	Failure    FailureKind

	// Operands holds the formatted operand pair of the concluding
	// contention, for diagnostics.
	Operands [2]string
	// Source and Line locate the concluding call inside the test body.
	Source string
	Line   int
	// Message carries the diagnostic of the concluding operation.
	Message string

	done bool
}

// Concluded reports whether the state reached a terminal verdict. It
// distinguishes an unset Skipped zero value from an explicit Skip.
func (s *State) Concluded() bool {
	return s.done
}

// conclude finalizes the state. It is a protocol error to conclude twice;
// the first verdict wins because the terminating control transfer prevents
// any further contentions from running.
func (s *State) conclude(c Conclusion, k FailureKind) {
	if s.done {
		return
	}
	s.done = true
	s.Conclusion = c
	s.Failure = k
}

// Supervise finalizes the state with a dispatcher-detected failure kind.
// Only Limit, Interrupt and Fault may be set this way.
func (s *State) Supervise(k FailureKind, message string) {
	switch k {
	case FailureLimit, FailureInterrupt, FailureFault:
	default:
		panic("contend: Supervise called with in-test failure kind " + k.String())
	}
	if s.done {
		return
	}
	s.Message = message
	s.conclude(Failed, k)
}
