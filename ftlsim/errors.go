package ftlsim

import "fmt"

// ConfigError reports a fatal, init-time configuration mistake. Callers at
// the process boundary (cmd/ftlsim) may recover a panic and type-assert on
// this to print a clean diagnostic instead of a raw stack trace.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("ftlsim: invalid config %q: %s", e.Key, e.Reason)
}

func panicConfigInvalid(key, reason string) {
	panic(&ConfigError{Key: key, Reason: reason})
}

// InvariantError reports a run-time invariant violation: erase of a
// non-empty block, a mapping collision, an exhausted free-block pool, or a
// missing current write-block. The simulator has no retry or recovery path
// for these — a corrupted engine state would invalidate the measurements
// the whole exercise exists to produce.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("ftlsim: invariant violation: %s", e.Reason)
}

func panicInvariant(format string, args ...interface{}) {
	panic(&InvariantError{Reason: fmt.Sprintf(format, args...)})
}
