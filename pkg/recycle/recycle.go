// Package recycle implements the platform recycle-bin/trash deletion policy
// (spec §4.I "Deletion policy"): availability is probed once per base folder
// and cached, with a warning when a side requested recycling but none is
// available, falling back to permanent delete. No pack example or ecosystem
// library wraps the native trash protocols this needs (the teacher's own
// deletion path is a plain os.RemoveAll); this package is necessarily
// stdlib-only — see DESIGN.md.
package recycle

import (
	"sync"
)

// Recycler moves an absolute native path into the platform trash.
type Recycler interface {
	// Available reports whether recycling is usable for items under root,
	// probing lazily and caching the result.
	Available(root string) bool
	// Recycle moves the absolute path into the trash. The caller has
	// already verified Available(root) for the containing base folder.
	Recycle(absPath string) error
}

// probeCache memoizes Available by root path, so that a multi-item sync run
// probes each base folder's recycler only once, per spec §4.I.
type probeCache struct {
	mu      sync.Mutex
	results map[string]bool
}

func newProbeCache() *probeCache {
	return &probeCache{results: make(map[string]bool)}
}

func (c *probeCache) get(root string, probe func(string) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.results[root]; ok {
		return v
	}
	v := probe(root)
	c.results[root] = v
	return v
}
