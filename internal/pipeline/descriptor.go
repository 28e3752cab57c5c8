package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sclientgo/sclient/internal/endpoint"
)

// Descriptor is spec §3's RequestDescriptor: everything RequestPipeline
// needs to build one HTTP attempt against one Endpoint. It is rebuilt fresh
// on every retry, since headers like X-Scal-Request-Uids are cheap to
// reassemble and a Descriptor must never be reused across endpoints once its
// Body has been read from.
type Descriptor struct {
	Verb          Verb
	Method        string
	Path          string
	Headers       http.Header
	ContentLength int64
	Body          io.Reader // nil for bodyless verbs
}

// BuildParams collects the caller/config-derived inputs shared by every
// verb's descriptor builder. BasePath and Immutable come from ConfigOptions
// (spec §3); ReqUid is per-call.
type BuildParams struct {
	BasePath  string
	Immutable bool
	ReqUid    string
}

func (p BuildParams) baseHeaders() http.Header {
	h := make(http.Header)
	if p.ReqUid != "" {
		uid := p.ReqUid
		if idx := strings.IndexByte(uid, ':'); idx >= 0 {
			uid = uid[:idx]
		}
		h.Set("X-Scal-Request-Uids", uid)
		h.Set("X-Scal-Trace-Ids", uid)
	}
	if p.Immutable {
		h.Set("X-Scal-Replica-Policy", "immutable")
	}
	return h
}

func objectPath(basePath, key string) string {
	return basePath + key
}

// BuildPut constructs the descriptor for a streamed PUT. size is the
// caller-declared byte count; chunked transfer is never used (spec §4.5).
func BuildPut(p BuildParams, key string, size int64, body io.Reader) *Descriptor {
	h := p.baseHeaders()
	h.Set("content-type", "application/octet-stream")
	return &Descriptor{
		Verb:          Put,
		Method:        http.MethodPut,
		Path:          objectPath(p.BasePath, key),
		Headers:       h,
		ContentLength: size,
		Body:          body,
	}
}

// BuildPutEmpty constructs the bodyless PUT that stores usermd only.
func BuildPutEmpty(p BuildParams, key string, metadataHex string) *Descriptor {
	h := p.baseHeaders()
	h.Set("content-type", "application/octet-stream")
	h.Set("x-scal-usermd", metadataHex)
	return &Descriptor{
		Verb:          PutEmpty,
		Method:        http.MethodPut,
		Path:          objectPath(p.BasePath, key),
		Headers:       h,
		ContentLength: 0,
	}
}

// ByteRange is an inclusive [Start, End] range for a ranged GET.
type ByteRange struct {
	Start, End int64
}

// BuildGet constructs a GET descriptor, optionally ranged.
func BuildGet(p BuildParams, key string, rng *ByteRange) *Descriptor {
	h := p.baseHeaders()
	if rng != nil {
		h.Set("Range", fmt.Sprintf("bytes=%d-%d", rng.Start, rng.End))
	}
	return &Descriptor{
		Verb:    Get,
		Method:  http.MethodGet,
		Path:    objectPath(p.BasePath, key),
		Headers: h,
	}
}

// BuildHead constructs a HEAD descriptor.
func BuildHead(p BuildParams, key string) *Descriptor {
	return &Descriptor{
		Verb:    Head,
		Method:  http.MethodHead,
		Path:    objectPath(p.BasePath, key),
		Headers: p.baseHeaders(),
	}
}

// BuildDelete constructs a DELETE descriptor.
func BuildDelete(p BuildParams, key string) *Descriptor {
	return &Descriptor{
		Verb:    Delete,
		Method:  http.MethodDelete,
		Path:    objectPath(p.BasePath, key),
		Headers: p.baseHeaders(),
	}
}

// batchDeleteBody is the JSON document spec §4.5 requires for BATCH-DELETE.
type batchDeleteBody struct {
	Keys []string `json:"keys"`
}

// BuildBatchDelete constructs one sub-batch POST against the fixed
// .batch_delete key. Splitting callers' key lists into ≤1000-key batches and
// bounding concurrency at 5 is the public client's job, not the descriptor
// builder's.
func BuildBatchDelete(p BuildParams, keys []string) (*Descriptor, error) {
	payload, err := json.Marshal(batchDeleteBody{Keys: keys})
	if err != nil {
		return nil, err
	}
	h := p.baseHeaders()
	h.Set("content-type", "application/json")
	return &Descriptor{
		Verb:          BatchDelete,
		Method:        http.MethodPost,
		Path:          objectPath(p.BasePath, ".batch_delete"),
		Headers:       h,
		ContentLength: int64(len(payload)),
		Body:          strings.NewReader(string(payload)),
	}, nil
}

// BuildHealthcheck constructs the descriptor for the fixed .conf probe.
func BuildHealthcheck(p BuildParams) *Descriptor {
	return &Descriptor{
		Verb:    Healthcheck,
		Method:  http.MethodGet,
		Path:    objectPath(p.BasePath, ".conf"),
		Headers: p.baseHeaders(),
	}
}

// URL renders the descriptor's request URL against ep.
func (d *Descriptor) URL(ep endpoint.Endpoint) string {
	return "http://" + ep.String() + d.Path
}
