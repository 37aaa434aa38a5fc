package model

import "time"

// RunRecord represents a single suite execution saved to history.
type RunRecord struct {
	// Unique ID for this run (16 random bytes, hex encoded)
	ID string `json:"id"`
	// Name of the suite that was run
	Suite string `json:"suite"`
	// Timestamp when the run started
	Timestamp time.Time `json:"timestamp"`
	// Command-line arguments (including command name)
	Args []string `json:"args"`
	// Working directory where the run was started
	WorkDir string `json:"workdir"`
	// Dispatch strategy used (sequential, thread, process)
	Dispatch string `json:"dispatch"`
	// Exit code of the run
	ExitCode int `json:"exit_code"`
	// Duration of the run
	Duration time.Duration `json:"duration"`
	// Git information
	Git *Git `json:"git,omitempty"`
	// Target execution environment
	Target *Target `json:"target,omitempty"`

	// Aggregated totals
	Contentions uint64 `json:"contentions"`
	Tests       int    `json:"tests"`
	Passed      int    `json:"passed"`
	Failed      int    `json:"failed"`
	Skipped     int    `json:"skipped"`

	// Per-test results in registration order
	Results []TestResult `json:"results,omitempty"`
}

// TestResult is the recorded outcome of one test within a run.
type TestResult struct {
	// Test name as registered
	Name string `json:"name"`
	// Terminal verdict (passed, failed, skipped)
	Conclusion string `json:"conclusion"`
	// Failure classification (none, absurdity, explicit, limit, interrupt, fault)
	Failure string `json:"failure"`
	// Contentions evaluated during the test
	Contentions uint64 `json:"contentions"`
	// Duration of the test execution
	Duration time.Duration `json:"duration"`
	// Diagnostic message of the concluding operation, if any
	Message string `json:"message,omitempty"`
	// Source location of the concluding call, if known
	Source string `json:"source,omitempty"`
	Line   int    `json:"line,omitempty"`
}

// Git contains git repository information
type Git struct {
	// Git commit hash at time of execution
	Commit string `json:"commit,omitempty"`
	// Git branch at time of execution
	Branch string `json:"branch,omitempty"`
}

// Target contains information about the execution environment
type Target struct {
	// Operating system of the execution environment
	OS string `json:"os,omitempty"`
	// CPU architecture of the execution environment
	Arch string `json:"arch,omitempty"`
}
