// Package sclient is a client for a family of HTTP-accessible,
// key-addressed object storage endpoints. Callers hand it a byte stream
// plus routing parameters and get back an opaque 40-hex-character key;
// later they present that key to stream the payload back, probe its user
// metadata, or delete it.
package sclient

import (
	"context"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sclientgo/sclient/internal/endpoint"
	"github.com/sclientgo/sclient/internal/errs"
	"github.com/sclientgo/sclient/internal/failover"
	"github.com/sclientgo/sclient/internal/pipeline"
	"github.com/sclientgo/sclient/internal/transport"
)

const keyLength = 40

// batchDeleteMaxKeys and batchDeleteMaxInflight implement spec §4.5/§5's
// BATCH-DELETE resource policy: ≤1000 keys per sub-request, ≤5 sub-requests
// in flight at once.
const (
	batchDeleteMaxKeys     = 1000
	batchDeleteMaxInflight = 5
)

// Client is the PublicAPI surface of spec §4.7, wrapping a KeyGen, an
// EndpointPool, and the Transport/RequestPipeline/FailoverController stack
// beneath it.
//
// Grounded on the teacher's adapter.go (a thin DistributedCache facade over
// a Node): Client plays the same role here, one method per verb, with no
// business logic of its own beyond validation and wiring.
type Client struct {
	cfg       ConfigOptions
	pool      *endpoint.Pool
	transport *transport.Transport
	pipeline  *pipeline.Pipeline
}

// New constructs a Client from cfg. The bootstrap list is parsed, shuffled
// once (spec §4.1), and becomes the EndpointPool; a keep-alive Transport and
// RequestPipeline are built on top of it.
func New(cfg ConfigOptions) (*Client, error) {
	if err := cfg.FillDefaults(); err != nil {
		return nil, err
	}

	eps, err := parseBootstrap(cfg.Bootstrap)
	if err != nil {
		return nil, err
	}
	shuffled := endpoint.Shuffle(rand.New(rand.NewSource(time.Now().UnixNano())), eps)

	pool, err := endpoint.New(shuffled)
	if err != nil {
		return nil, errs.New(errs.InvalidArgument, "new", false, err)
	}

	tr := transport.New(transport.Config{})
	return &Client{
		cfg:       cfg,
		pool:      pool,
		transport: tr,
		pipeline:  pipeline.New(tr),
	}, nil
}

func parseBootstrap(bootstrap []string) ([]endpoint.Endpoint, error) {
	if len(bootstrap) == 0 {
		return nil, errs.New(errs.InvalidArgument, "new", false, nil)
	}
	out := make([]endpoint.Endpoint, 0, len(bootstrap))
	for _, hp := range bootstrap {
		host, portStr, err := net.SplitHostPort(hp)
		if err != nil {
			return nil, errs.New(errs.InvalidArgument, "new", false, err)
		}
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return nil, errs.New(errs.InvalidArgument, "new", false, err)
		}
		out = append(out, endpoint.Endpoint{Host: host, Port: uint16(port)})
	}
	return out, nil
}

func validateKey(op, key string) error {
	if len(key) != keyLength {
		return errs.New(errs.InvalidArgument, op, false, nil)
	}
	return nil
}

func (c *Client) buildParams(reqUID string) pipeline.BuildParams {
	return pipeline.BuildParams{
		BasePath:  c.cfg.basePath(),
		Immutable: c.cfg.Immutable,
		ReqUid:    reqUID,
	}
}

// run drives fn through the FailoverController and unwraps its `any` result
// into the concrete *pipeline.Result the verb methods expect. run derives
// the per-operation logger from op and reqUID and logs the outcome on it.
func (c *Client) run(ctx context.Context, op, reqUID string, fn failover.Attempt) (*pipeline.Result, error) {
	log := newRequestLogger(c.cfg.LogAPI, reqUID, op)
	out, err := failover.Run(ctx, c.pool, op, fn)
	if err != nil {
		var ce *errs.ClientError
		switch {
		case errors.As(err, &ce) && ce.Kind == errs.Expected:
			log.WithField("status", ce.StatusCode).Debug("expected non-success status")
		case errors.As(err, &ce) && (ce.Kind == errs.Transport || ce.Kind == errs.MidStream):
			log.WithFields(logrus.Fields{"fatal_transport": ce.Fatal, "retryable": ce.Retryable}).WithError(err).Error("operation failed")
		default:
			log.WithError(err).Error("operation failed")
		}
		return nil, err
	}
	log.Debug("operation succeeded")
	if out == nil {
		return nil, nil
	}
	return out.(*pipeline.Result), nil
}

// Put streams body (exactly size bytes, caller-declared, no chunked
// transfer) to a generated key and returns that key on success.
func (c *Client) Put(ctx context.Context, body io.Reader, size int64, params RoutingParams, reqUID string) (string, error) {
	if size < 0 {
		return "", errs.New(errs.InvalidArgument, "put", false, nil)
	}
	key, err := KeyGen(params, c.cfg.cos())
	if err != nil {
		return "", err
	}
	if _, err := c.PutWithKey(ctx, key, body, size, reqUID); err != nil {
		return "", err
	}
	return key, nil
}

// PutWithKey streams body to a caller-supplied key, bypassing KeyGen. This
// is the hook spec §4.7 leaves as an optional "keyScheme" override for
// callers that already have a key (e.g. re-uploading after a digest
// mismatch).
func (c *Client) PutWithKey(ctx context.Context, key string, body io.Reader, size int64, reqUID string) (string, error) {
	if err := validateKey("put", key); err != nil {
		return "", err
	}
	if size < 0 {
		return "", errs.New(errs.InvalidArgument, "put", false, nil)
	}
	params := c.buildParams(reqUID)
	_, err := c.run(ctx, "put", reqUID, func(ctx context.Context, ep endpoint.Endpoint) (any, error) {
		d := pipeline.BuildPut(params, key, size, body)
		return c.pipeline.Execute(ctx, ep, d, "put")
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// PutEmptyObject stores a bodyless object carrying only a user-metadata hex
// string, under a caller-supplied key.
func (c *Client) PutEmptyObject(ctx context.Context, key, metadataHex, reqUID string) error {
	if err := validateKey("put_empty", key); err != nil {
		return err
	}
	params := c.buildParams(reqUID)
	_, err := c.run(ctx, "put_empty", reqUID, func(ctx context.Context, ep endpoint.Endpoint) (any, error) {
		d := pipeline.BuildPutEmpty(params, key, metadataHex)
		return c.pipeline.Execute(ctx, ep, d, "put_empty")
	})
	return err
}

// Get streams an object's payload back. The caller owns the returned
// response body: the pipeline never buffers it (spec §1 Non-goals).
func (c *Client) Get(ctx context.Context, key string, rng *pipeline.ByteRange, reqUID string) (*http.Response, error) {
	if err := validateKey("get", key); err != nil {
		return nil, err
	}
	params := c.buildParams(reqUID)
	res, err := c.run(ctx, "get", reqUID, func(ctx context.Context, ep endpoint.Endpoint) (any, error) {
		d := pipeline.BuildGet(params, key, rng)
		return c.pipeline.Execute(ctx, ep, d, "get")
	})
	if err != nil {
		return nil, err
	}
	return res.Response, nil
}

// GetHEAD probes a key's user-metadata hex string without fetching the
// payload.
func (c *Client) GetHEAD(ctx context.Context, key, reqUID string) (string, error) {
	if err := validateKey("head", key); err != nil {
		return "", err
	}
	params := c.buildParams(reqUID)
	res, err := c.run(ctx, "head", reqUID, func(ctx context.Context, ep endpoint.Endpoint) (any, error) {
		d := pipeline.BuildHead(params, key)
		return c.pipeline.Execute(ctx, ep, d, "head")
	})
	if err != nil {
		return "", err
	}
	return res.UserMD, nil
}

// Delete removes a key. A 423 ("Locked") response from an immutable replica
// counts as success (spec §4.5).
func (c *Client) Delete(ctx context.Context, key, reqUID string) error {
	if err := validateKey("delete", key); err != nil {
		return err
	}
	params := c.buildParams(reqUID)
	_, err := c.run(ctx, "delete", reqUID, func(ctx context.Context, ep endpoint.Endpoint) (any, error) {
		d := pipeline.BuildDelete(params, key)
		return c.pipeline.Execute(ctx, ep, d, "delete")
	})
	return err
}

// BatchDelete splits keys into ≤1000-key sub-batches and dispatches at most
// 5 of them concurrently (spec §4.5/§5). The aggregate error, if any, is the
// first sub-batch failure observed.
func (c *Client) BatchDelete(ctx context.Context, keys []string, reqUID string) error {
	for _, k := range keys {
		if err := validateKey("batch_delete", k); err != nil {
			return err
		}
	}
	if len(keys) == 0 {
		return nil
	}

	params := c.buildParams(reqUID)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchDeleteMaxInflight)

	for start := 0; start < len(keys); start += batchDeleteMaxKeys {
		end := start + batchDeleteMaxKeys
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]
		g.Go(func() error {
			_, err := c.run(ctx, "batch_delete", reqUID, func(ctx context.Context, ep endpoint.Endpoint) (any, error) {
				d, err := pipeline.BuildBatchDelete(params, batch)
				if err != nil {
					return nil, errs.New(errs.InvalidArgument, "batch_delete", false, err)
				}
				return c.pipeline.Execute(ctx, ep, d, "batch_delete")
			})
			return err
		})
	}
	return g.Wait()
}

// Healthcheck probes the fixed .conf path and returns the full response for
// the caller to interpret.
func (c *Client) Healthcheck(ctx context.Context, reqUID string) (*http.Response, error) {
	params := c.buildParams(reqUID)
	res, err := c.run(ctx, "healthcheck", reqUID, func(ctx context.Context, ep endpoint.Endpoint) (any, error) {
		d := pipeline.BuildHealthcheck(params)
		return c.pipeline.Execute(ctx, ep, d, "healthcheck")
	})
	if err != nil {
		return nil, err
	}
	return res.Response, nil
}

// Destroy releases the connection pool. In-flight operations surface
// transport errors through their normal paths (spec §5).
func (c *Client) Destroy() {
	c.transport.Destroy()
}
