package launcher

import "fmt"

// Category classifies a failed launch or stop so callers can branch on the
// result without string matching.
type Category string

const (
	// PrerequisiteMissing: a modded launch was requested but the loader
	// runtime is not installed.
	PrerequisiteMissing Category = "prerequisite_missing"
	// ExecutableNotFound: the installation descriptor does not resolve to
	// an existing executable.
	ExecutableNotFound Category = "executable_not_found"
	// SpawnFailed: the OS refused to create the process, or launch
	// preparation failed. Malformed descriptors (empty root or executable,
	// executable escaping the install root) are reported here too.
	SpawnFailed Category = "spawn_failed"
	// NotRunning: a stop was requested with nothing tracked for the key.
	NotRunning Category = "not_running"
	// TerminationFailed: one or more processes could not be killed.
	TerminationFailed Category = "termination_failed"
)

// Outcome is the structured result of every launch and stop call. Failures
// carry a category; they are never raised as errors or panics across the
// package boundary, so callers must branch on Success.
type Outcome struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Category Category `json:"category,omitempty"`
}

func success(format string, args ...any) Outcome {
	return Outcome{Success: true, Message: fmt.Sprintf(format, args...)}
}

func failure(cat Category, format string, args ...any) Outcome {
	return Outcome{Success: false, Message: fmt.Sprintf(format, args...), Category: cat}
}
