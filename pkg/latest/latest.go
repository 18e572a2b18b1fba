// Package latest implements a latest-wins discipline for racing requests:
// every issued request gets a monotonically increasing sequence number and
// only the response carrying the newest issued number is accepted.
package latest

import "sync"

type Guard struct {
	mu     sync.Mutex
	issued uint64
}

// Next issues the sequence number for a new in-flight request.
func (g *Guard) Next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return g.issued
}

// Accept reports whether a response tagged with seq is still the newest
// issued request. A stale response must be dropped by the caller.
func (g *Guard) Accept(seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return seq == g.issued
}
