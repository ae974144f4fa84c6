package config

// Supervisor decides what happens when a scheduled task fails and how the
// process shuts down.
type Supervisor struct {
	FailurePolicy FailurePolicy `toml:"failure_policy" yaml:"failure_policy"`
	// MaxRestarts bounds how often one task is restarted under the restart policy.
	MaxRestarts  int          `toml:"max_restarts"  yaml:"max_restarts"`
	Shutdown     ShutdownMode `toml:"shutdown"      yaml:"shutdown"`
	DrainTimeout Duration     `toml:"drain_timeout" yaml:"drain_timeout"`
}

// FailurePolicy is applied to every task that ends with an error.
type FailurePolicy string

const (
	FailurePolicyUnspecified FailurePolicy = ""
	// FailurePolicyHalt stops the scheduler on the first failure.
	FailurePolicyHalt FailurePolicy = "halt"
	// FailurePolicyIsolate logs the failure and keeps the other tasks running.
	FailurePolicyIsolate FailurePolicy = "isolate"
	// FailurePolicyRestart resubmits the failed task, then halts once MaxRestarts is exceeded.
	FailurePolicyRestart FailurePolicy = "restart"
)

// IsValid checks if the FailurePolicy is valid
func (p FailurePolicy) IsValid() bool {
	switch p {
	case FailurePolicyUnspecified, FailurePolicyHalt, FailurePolicyIsolate, FailurePolicyRestart:
		return true
	default:
		return false
	}
}

// ShutdownMode selects whether stopping waits for in-flight tasks.
type ShutdownMode string

const (
	ShutdownUnspecified ShutdownMode = ""
	// ShutdownAbrupt releases resources without waiting for tasks.
	ShutdownAbrupt ShutdownMode = "abrupt"
	// ShutdownGraceful cancels tasks and waits up to DrainTimeout for them to return.
	ShutdownGraceful ShutdownMode = "graceful"
)

// IsValid checks if the ShutdownMode is valid
func (m ShutdownMode) IsValid() bool {
	switch m {
	case ShutdownUnspecified, ShutdownAbrupt, ShutdownGraceful:
		return true
	default:
		return false
	}
}
