// Package transport provides the keep-alive HTTP/1.1 client used to reach a
// single storage endpoint. It is deliberately thin: connection pooling,
// idle/total timeouts, and Nagle are all it owns — request construction and
// retry policy live in the pipeline and failover packages.
package transport

import (
	"context"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Config controls the transport's connection pool and timeouts. Zero values
// are filled with spec §4.4's defaults by New.
type Config struct {
	// IdleTimeout bounds how long a free, pooled socket is kept open.
	// Default ~60s.
	IdleTimeout time.Duration
	// RequestTimeout bounds one HTTP round trip end-to-end. Default ~120s.
	RequestTimeout time.Duration
	// MaxIdleConnsPerEndpoint caps pooled idle connections per endpoint.
	MaxIdleConnsPerEndpoint int
}

func (c *Config) fillDefaults() {
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 120 * time.Second
	}
	if c.MaxIdleConnsPerEndpoint <= 0 {
		c.MaxIdleConnsPerEndpoint = 8
	}
}

// Transport is a keep-alive HTTP/1.1 client with TCP_NODELAY enabled on
// every socket it opens (spec §4.4: Nagle off trades coalescing for
// latency on small requests).
//
// Grounded on the teacher's dialPeer (cluster/transport.go): the same
// net.Dialer.Control hook that set syscall.TCP_NODELAY on a raw peer
// connection is reused here to disable Nagle on every socket
// http.Transport opens, via DialContext rather than a one-off net.Dial.
type Transport struct {
	client *http.Client
	rt     *http.Transport
}

// New builds a Transport. cfg is copied and defaulted.
func New(cfg Config) *Transport {
	cfg.fillDefaults()

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control: func(_, _ string, c syscall.RawConn) error {
			var ctrlErr error
			err := c.Control(func(fd uintptr) {
				ctrlErr = syscall.SetsockoptInt(int(fd), syscall.IPPROTO_TCP, syscall.TCP_NODELAY, 1)
			})
			if err != nil {
				return err
			}
			return ctrlErr
		},
	}

	rt := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerEndpoint,
		IdleConnTimeout:     cfg.IdleTimeout,
		// The FailoverController owns the choice of which endpoint to try
		// next, and keep-alives stay on. When a pooled socket turns out to
		// be broken, net/http itself re-sends on a fresh connection to the
		// same endpoint only where it considers the request replayable or
		// nothing was written yet; otherwise the error surfaces on Do and is
		// handled by internal/pipeline's pre-stream/mid-stream
		// classification.
		DisableKeepAlives: false,
	}
	rt.MaxIdleConns = cfg.MaxIdleConnsPerEndpoint * 4

	return &Transport{
		client: &http.Client{
			Transport: rt,
			Timeout:   cfg.RequestTimeout,
		},
		rt: rt,
	}
}

// Do sends req and returns the raw response. Callers (internal/pipeline)
// are responsible for classifying the returned error as pre-stream vs
// mid-stream using a trackingReader around the request body — Transport
// itself does not know whether any body byte was written, since net/http's
// RoundTrip only calls Read on the body after the socket (pooled or fresh)
// is already connected and writable, which is exactly spec §4.5's gate.
func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	return t.client.Do(req)
}

// Destroy drains and closes all idle sockets, for clean shutdown of
// long-lived hosts (spec §4.4).
func (t *Transport) Destroy() {
	t.rt.CloseIdleConnections()
}

// WithContext is a convenience that bounds ctx by timeout. A timeout of
// zero or less returns ctx unchanged with a no-op cancel; an earlier
// deadline already on ctx still applies.
func WithContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
