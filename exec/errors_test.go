package exec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapExecPassesNilThrough(t *testing.T) {
	require.NoError(t, wrapExec("statement execution", nil))
}

func TestWrapExecReportsPhaseAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := wrapExec("predicate compile", cause)
	var ef *ExecutionFailure
	require.ErrorAs(t, err, &ef)
	require.Equal(t, "predicate compile", ef.Phase)
	require.ErrorIs(t, err, cause)
}

func TestIsCancelledUnwrapsThroughExecutionFailure(t *testing.T) {
	err := wrapExec("statement execution", context.Canceled)
	require.True(t, IsCancelled(err))
}

func TestIsCancelledFalseForOrdinaryError(t *testing.T) {
	require.False(t, IsCancelled(wrapExec("statement execution", errors.New("connection refused"))))
}

func TestIsCancelledDetectsDeadlineExceeded(t *testing.T) {
	require.True(t, IsCancelled(context.DeadlineExceeded))
}
