package contend

import (
	"path/filepath"
	"runtime"
)

// Identity describes a registered test. It is created once at registration
// time and never mutated.
type Identity struct {
	// Base name of the test, unique within a registry.
	Name string `json:"name"`
	// Source file of the registration call.
	Source string `json:"source"`
	// Line of the registration call.
	Line int `json:"line"`
	// Position in registration order, starting at 0.
	Index int `json:"index"`
}

// TestFunc is the body of a test. It concludes by calling methods on t; a
// body that returns without concluding is recorded as passed.
type TestFunc func(t *T)

// Test pairs an identity with its entry point.
type Test struct {
	Identity Identity
	Func     TestFunc
}

// callerSite returns the file base name and line of the caller, skip frames
// above the caller of callerSite itself.
func callerSite(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown", 0
	}
	return filepath.Base(file), line
}
