// Package capability bounds waits on device capabilities such as a
// position fix, which may never answer.
package capability

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCapabilityTimeout indicates the capability did not answer in time.
	ErrCapabilityTimeout = errors.New("capability timed out")

	// ErrUnsupported indicates the capability is not available here.
	ErrUnsupported = errors.New("capability not supported")
)

// Await runs fn and waits at most timeout for its result. fn receives a
// context that ends at the deadline; if it ignores that context its result
// is discarded. A cancelled parent context is returned as is, an expired
// deadline as ErrCapabilityTimeout.
func Await[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if timeout <= 0 {
		return zero, fmt.Errorf("%w: non-positive timeout %s", ErrCapabilityTimeout, timeout)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(callCtx)
		ch <- result{v: v, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil && callCtx.Err() != nil && ctx.Err() == nil {
			return zero, fmt.Errorf("%w after %s", ErrCapabilityTimeout, timeout)
		}
		return r.v, r.err
	case <-callCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("%w after %s", ErrCapabilityTimeout, timeout)
	}
}
