package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator hands out predictable ids: prefix-0001, prefix-0002, ...
//
// Floor loading assigns UUIDv7 ids to captains that arrive without one.
// Tests and golden scenarios swap in FixedIDGenerator so the same floor file
// always produces byte-identical output.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedIDGenerator creates a generator for prefix.
// If prefix is empty, ids start with "test-id".
func NewFixedIDGenerator(prefix string) *FixedIDGenerator {
	if prefix == "" {
		prefix = "test-id"
	}
	return &FixedIDGenerator{prefix: prefix}
}

// NewID returns the next id. It never fails.
//
// Implements floorplan.IDGenerator.
func (g *FixedIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n), nil
}

// Issued returns how many ids have been handed out.
func (g *FixedIDGenerator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}

// Reset starts the numbering over. After Reset, the next id ends in 0001.
func (g *FixedIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
