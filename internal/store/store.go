// Package store holds what the relational and document executors share.
package store

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrStoreUnavailable means the store could not be reached: no connection,
	// failed ping, or a cursor that broke mid-read.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrQueryExecutionFailed means the store was reachable but rejected or
	// failed the statement or filter.
	ErrQueryExecutionFailed = errors.New("query execution failed")
)

const DefaultQueryTimeout = 30 * time.Second

func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

func ExecutionFailed(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrQueryExecutionFailed, err)
}
