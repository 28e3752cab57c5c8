// Package failover wraps one logical client operation in the retry loop
// described by spec §4.6: try the pool's current endpoint, and on a
// retryable unexpected error rotate past it and try again, bounded by the
// pool's length.
package failover

import (
	"context"

	"github.com/sclientgo/sclient/internal/endpoint"
	"github.com/sclientgo/sclient/internal/errs"
)

// Attempt is one try of the wrapped operation against ep. It returns
// whatever the operation produces (a *pipeline.Result in practice) and an
// error that, if non-nil, should already be a *errs.ClientError so Run can
// read its Kind/Retryable fields.
type Attempt func(ctx context.Context, ep endpoint.Endpoint) (any, error)

// Run executes fn against pool.Current(), retrying per spec §4.6's
// algorithm: expected errors and non-retryable unexpected errors end the
// call immediately; retryable unexpected errors rotate the pool past the
// endpoint that was current when this attempt started and try again, up to
// pool.Len() retries.
func Run(ctx context.Context, pool *endpoint.Pool, op string, fn Attempt) (any, error) {
	var retries int
	for {
		started := pool.Current()

		result, err := fn(ctx, started)
		if err == nil {
			return result, nil
		}

		if !errs.IsRetryable(err) {
			return nil, err
		}

		if retries >= pool.Len() {
			return nil, errs.New(errs.Exhausted, op, false, err)
		}

		pool.RotatePast(started)
		retries++
	}
}
