package endpoint

import (
	"sync"

	"golang.org/x/exp/slices"
)

// Pool holds the ordered endpoint list a Client fails over across. It is
// non-empty for the lifetime of the Client (spec §3 invariant); rotation
// never changes the multiset of endpoints, only their order.
//
// Grounded on the teacher's membership.go: a mutex-guarded slice with a
// snapshot-style read, simplified from a gossiped peer map down to a plain
// ordered list since spec's EndpointPool does no liveness tracking beyond
// "rotate past a failure" (spec §4.3).
type Pool struct {
	mu        sync.Mutex
	endpoints []Endpoint
}

// New builds a Pool from a non-empty, already-ordered endpoint list (callers
// typically pass the output of Shuffle).
func New(endpoints []Endpoint) (*Pool, error) {
	if len(endpoints) == 0 {
		return nil, errEmptyBootstrap
	}
	cp := make([]Endpoint, len(endpoints))
	copy(cp, endpoints)
	return &Pool{endpoints: cp}, nil
}

// Current returns the head of the pool.
func (p *Pool) Current() Endpoint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.endpoints[0]
}

// Len returns the number of endpoints in the pool, used by FailoverController
// to bound the retry budget at len(pool) (spec §4.6 step 5).
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.endpoints)
}

// Snapshot returns a copy of the full ordered list, for logging/diagnostics.
func (p *Pool) Snapshot() []Endpoint {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Endpoint, len(p.endpoints))
	copy(out, p.endpoints)
	return out
}

// RotatePast moves failed from the head to the tail, but only if it is still
// the head. Two concurrent failures against the same endpoint must
// collectively advance the head once, not twice — the guard is this
// comparison, not a separate lock scope, so a second caller observing the
// same stale head is a no-op (spec §4.3, §5).
func (p *Pool) RotatePast(failed Endpoint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.endpoints) == 0 || p.endpoints[0] != failed {
		return
	}
	head := p.endpoints[0]
	p.endpoints = append(p.endpoints[1:], head)
}

// Contains reports whether e is currently a member of the pool.
func (p *Pool) Contains(e Endpoint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.ContainsFunc(p.endpoints, func(o Endpoint) bool { return o == e })
}
