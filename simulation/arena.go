package simulation

import "github.com/oomph-ac/simregion/entity"

// Arena owns the memory of one simulation region. A region built in an arena stays valid until the arena
// is reset, and an arena holds at most one open region at a time.
type Arena struct {
	opts   Options
	region Region
	open   bool
}

// NewArena returns an arena sized for opts.Capacity entities.
func NewArena(opts Options) *Arena {
	opts = opts.withDefaults()
	a := &Arena{opts: opts}
	a.region.entities = make([]entity.Sim, 0, opts.Capacity)
	a.region.hash = make([]hashEntry, hashSizeFor(opts.Capacity))
	return a
}

// Options returns the options the arena was created with, after defaults were applied.
func (a *Arena) Options() Options {
	return a.opts
}

// Reset discards the region held by the arena so that a new one may be built. The memory is kept for
// reuse.
func (a *Arena) Reset() {
	r := &a.region
	r.entities = r.entities[:0]
	clear(r.hash)
	r.store, r.world = nil, nil
	r.committed = false
	a.open = false
}
