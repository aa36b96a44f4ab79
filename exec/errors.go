package exec

import (
	"context"
	"errors"
	"fmt"
)

// ExecutionFailure wraps a driver-level error returned by Session, tagged
// with which phase of the pipeline it occurred in: "predicate compile",
// "order-by compile", "statement execution" or "batch load".
type ExecutionFailure struct {
	Phase string
	Cause error
}

func (e *ExecutionFailure) Error() string {
	return fmt.Sprintf("exec: %s: %v", e.Phase, e.Cause)
}

func (e *ExecutionFailure) Unwrap() error { return e.Cause }

func wrapExec(phase string, err error) error {
	if err == nil {
		return nil
	}
	return &ExecutionFailure{Phase: phase, Cause: err}
}

// IsCancelled reports whether err is (or wraps) a context cancellation or
// deadline, letting callers distinguish "the caller gave up" from a real
// execution failure without inspecting ctx directly.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
