package store

import (
	"context"
	"errors"
	"testing"
)

func TestWrappersKeepBothErrors(t *testing.T) {
	err := Unavailable("acquire connection", context.DeadlineExceeded)
	if !errors.Is(err, ErrStoreUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Unavailable() = %v", err)
	}
	if errors.Is(err, ErrQueryExecutionFailed) {
		t.Fatal("Unavailable() should not match ErrQueryExecutionFailed")
	}

	cause := errors.New("syntax error")
	err = ExecutionFailed("run statement", cause)
	if !errors.Is(err, ErrQueryExecutionFailed) || !errors.Is(err, cause) {
		t.Fatalf("ExecutionFailed() = %v", err)
	}
	if err.Error() != "run statement: query execution failed: syntax error" {
		t.Fatalf("Error() = %q", err.Error())
	}
}
