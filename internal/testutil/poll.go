// Package testutil provides polling helpers for tests of asynchronous code.
package testutil

import (
	"context"
	"fmt"
	"time"
)

// Poll checks condition every interval until it holds, timeout expires, or
// ctx is done.
func Poll(ctx context.Context, condition func() bool, timeout, interval time.Duration) error {
	_, err := WaitForState(ctx, condition, func(ok bool) bool { return ok }, timeout, interval)
	return err
}

// WaitForState polls getter until predicate accepts its result, returning
// that result.
//
//	n, err := WaitForState(ctx, ticks.Load,
//		func(n int64) bool { return n >= 3 },
//		time.Second,
//		time.Millisecond)
func WaitForState[T any](ctx context.Context, getter func() T, predicate func(T) bool, timeout, interval time.Duration) (T, error) {
	deadline := time.Now().Add(timeout)
	for {
		state := getter()
		if predicate(state) {
			return state, nil
		}
		if time.Now().After(deadline) {
			var zero T
			return zero, fmt.Errorf("timeout waiting for target state (type %T, threshold: %v)", zero, timeout)
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-time.After(interval):
		}
	}
}
