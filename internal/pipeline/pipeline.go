package pipeline

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/sclientgo/sclient/internal/endpoint"
	"github.com/sclientgo/sclient/internal/errs"
	"github.com/sclientgo/sclient/internal/transport"
)

// trackingReader wraps a caller-supplied body so the pipeline can tell,
// after a transport error, whether any byte of it had already left the
// process. net/http's RoundTrip only calls Read on a request body once the
// underlying socket (reused or freshly dialed) is confirmed writable, so
// merely observing "has Read been called" implements spec §4.5's
// body-streaming gate without any separate readiness callback.
type trackingReader struct {
	r       io.Reader
	started atomic.Bool
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		t.started.Store(true)
	}
	return n, err
}

// Result is what a successful Execute hands back to the caller
// (internal/failover, then the public client). Response is non-nil and
// unread for GET/HEALTHCHECK — the caller owns draining and closing it.
// UserMD is only populated for HEAD.
type Result struct {
	Response *http.Response
	UserMD   string
}

// Pipeline drives one HTTP attempt per Execute call. Retry policy lives
// above it, in internal/failover; Pipeline only knows how to build a
// request, gate body streaming, and classify the single outcome it sees.
type Pipeline struct {
	transport *transport.Transport
}

func New(t *transport.Transport) *Pipeline {
	return &Pipeline{transport: t}
}

// Execute sends one Descriptor to ep and classifies the result. op names
// the logical verb for error messages (e.g. "put", "get").
func (p *Pipeline) Execute(ctx context.Context, ep endpoint.Endpoint, d *Descriptor, op string) (*Result, error) {
	var tr *trackingReader
	var body io.Reader = d.Body
	if body != nil {
		tr = &trackingReader{r: body}
		body = tr
	}

	req, err := http.NewRequestWithContext(ctx, d.Method, d.URL(ep), body)
	if err != nil {
		return nil, errs.New(errs.InvalidArgument, op, false, err)
	}
	req.Header = d.Headers
	req.ContentLength = d.ContentLength
	if d.Body == nil {
		req.Header.Set("content-length", "0")
	}

	resp, err := p.transport.Do(req)
	if err != nil {
		return nil, classifyTransportErr(ctx, op, tr, err)
	}

	if isSuccessStatus(d.Verb, resp.StatusCode) {
		switch d.Verb {
		case Get, Healthcheck:
			return &Result{Response: resp}, nil
		case Head:
			usermd := resp.Header.Get("x-scal-usermd")
			drainAndClose(resp)
			return &Result{UserMD: usermd}, nil
		default:
			drainAndClose(resp)
			return &Result{Response: resp}, nil
		}
	}

	drainAndClose(resp)
	if resp.StatusCode >= 500 {
		return nil, errs.NewUnexpected(op, resp.StatusCode, nil)
	}
	return nil, errs.NewExpected(op, resp.StatusCode)
}

// classifyTransportErr implements spec §4.5's pre-stream/mid-stream/
// voluntary-abort split for a failed round trip. fatal tags a Transport or
// MidStream result with whether err itself looked like a broken socket
// (errs.IsFatalTransport) rather than a timeout, so log sinks downstream
// can tell a dead connection apart from a slow one without reparsing err.
func classifyTransportErr(ctx context.Context, op string, tr *trackingReader, err error) error {
	if ctx.Err() == context.Canceled {
		return errs.New(errs.VoluntaryAbort, op, false, err)
	}
	fatal := errs.IsFatalTransport(err)
	if tr != nil && tr.started.Load() {
		ce := errs.New(errs.MidStream, op, false, err)
		ce.Fatal = fatal
		return ce
	}
	ce := errs.New(errs.Transport, op, true, err)
	ce.Fatal = fatal
	return ce
}

// isSuccessStatus applies spec §6's per-verb status table.
func isSuccessStatus(v Verb, status int) bool {
	switch v {
	case Get:
		return status == http.StatusOK || status == http.StatusPartialContent
	case Delete:
		return status == http.StatusOK || status == http.StatusLocked
	default:
		return status == http.StatusOK
	}
}

// drainAndClose discards a response body we don't hand to the caller, so
// the connection can be returned to the keep-alive pool.
func drainAndClose(resp *http.Response) {
	buf := getDrainBuf()
	for {
		n, err := resp.Body.Read(buf)
		_ = n
		if err != nil {
			break
		}
	}
	putDrainBuf(buf)
	resp.Body.Close()
}
