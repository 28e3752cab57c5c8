package failover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sclientgo/sclient/internal/endpoint"
	"github.com/sclientgo/sclient/internal/errs"
)

func mustPool(t *testing.T, eps ...endpoint.Endpoint) *endpoint.Pool {
	t.Helper()
	p, err := endpoint.New(eps)
	require.NoError(t, err)
	return p
}

func TestRunReturnsOnFirstSuccess(t *testing.T) {
	a := endpoint.Endpoint{Host: "a", Port: 1}
	pool := mustPool(t, a)

	calls := 0
	result, err := Run(context.Background(), pool, "get", func(ctx context.Context, ep endpoint.Endpoint) (any, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestRunDoesNotRetryExpectedError(t *testing.T) {
	a := endpoint.Endpoint{Host: "a", Port: 1}
	b := endpoint.Endpoint{Host: "b", Port: 2}
	pool := mustPool(t, a, b)

	calls := 0
	_, err := Run(context.Background(), pool, "get", func(ctx context.Context, ep endpoint.Endpoint) (any, error) {
		calls++
		return nil, errs.NewExpected("get", 404)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, a, pool.Current())
}

func TestRunFailsOverToHealthyEndpoint(t *testing.T) {
	a := endpoint.Endpoint{Host: "a", Port: 9001}
	b := endpoint.Endpoint{Host: "b", Port: 9000}
	pool := mustPool(t, a, b)

	result, err := Run(context.Background(), pool, "put", func(ctx context.Context, ep endpoint.Endpoint) (any, error) {
		if ep == a {
			return nil, errs.New(errs.Transport, "put", true, nil)
		}
		return "via-b", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "via-b", result)
	assert.Equal(t, b, pool.Current())
}

func TestRunExhaustsRetryBudgetAtPoolLength(t *testing.T) {
	a := endpoint.Endpoint{Host: "a", Port: 1}
	b := endpoint.Endpoint{Host: "b", Port: 2}
	pool := mustPool(t, a, b)

	calls := 0
	_, err := Run(context.Background(), pool, "put", func(ctx context.Context, ep endpoint.Endpoint) (any, error) {
		calls++
		return nil, errs.New(errs.Transport, "put", true, nil)
	})
	var ce *errs.ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errs.Exhausted, ce.Kind)
	assert.Equal(t, 3, calls) // initial + 2 retries, bounded by len(pool)==2
}

func TestRunDoesNotRetryMidStreamError(t *testing.T) {
	a := endpoint.Endpoint{Host: "a", Port: 1}
	b := endpoint.Endpoint{Host: "b", Port: 2}
	pool := mustPool(t, a, b)

	calls := 0
	_, err := Run(context.Background(), pool, "put", func(ctx context.Context, ep endpoint.Endpoint) (any, error) {
		calls++
		return nil, errs.New(errs.MidStream, "put", false, nil)
	})
	var ce *errs.ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errs.MidStream, ce.Kind)
	assert.Equal(t, 1, calls)
}
