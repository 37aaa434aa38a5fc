package contend

import "fmt"

// Exit-status codec for process-isolated dispatch. The child process cannot
// share memory with the harness, so its terminal (conclusion, failure kind)
// pair is packed into the exit status and decoded by the parent.
//
// The conclusion is recoded to a non-negative ordinal (skipped=0, failed=1,
// passed=2) and shifted past the failure kind's three bits. A child killed
// by a signal never writes an encoded status; the parent must classify that
// case itself.

const kindBits = 3

// EncodeStatus packs a terminal verdict into a process exit status.
func EncodeStatus(c Conclusion, k FailureKind) (int, error) {
	code, err := conclusionCode(c)
	if err != nil {
		return 0, err
	}
	if k < 0 || k >= failureKindCount {
		return 0, fmt.Errorf("failure kind %d out of range", int(k))
	}
	return code<<kindBits | int(k), nil
}

// DecodeStatus unpacks an exit status written by EncodeStatus.
func DecodeStatus(status int) (Conclusion, FailureKind, error) {
	k := FailureKind(status & (1<<kindBits - 1))
	if k >= failureKindCount {
		return Skipped, FailureNone, fmt.Errorf("exit status %d carries unknown failure kind %d", status, int(k))
	}
	var c Conclusion
	switch status >> kindBits {
	case 0:
		c = Skipped
	case 1:
		c = Failed
	case 2:
		c = Passed
	default:
		return Skipped, FailureNone, fmt.Errorf("exit status %d carries unknown conclusion %d", status, status>>kindBits)
	}
	return c, k, nil
}

func conclusionCode(c Conclusion) (int, error) {
	switch c {
	case Skipped:
		return 0, nil
	case Failed:
		return 1, nil
	case Passed:
		return 2, nil
	}
	return 0, fmt.Errorf("conclusion %d out of range", int(c))
}
