package simulation

import "github.com/oomph-ac/simregion/assert"

// minHashSize is the smallest entity hash a region uses. Sizes are always powers of two.
const minHashSize = 4096

// hashEntry maps a storage index to the slot of its entity in the region. A zero index marks an empty
// entry.
type hashEntry struct {
	index uint32
	slot  int32
}

// hashSizeFor returns a table size that keeps the load factor of n entities at or below one half.
func hashSizeFor(n int) int {
	size := minHashSize
	for size < 2*n {
		size <<= 1
	}
	return size
}

// entry returns the hash entry for index: either the one holding it, or the empty entry where it would be
// inserted. The table is grown before it can fill, so a full table is an invariant violation.
func (r *Region) entry(index uint32) *hashEntry {
	assert.IsTrue(index != 0, "storage index 0 cannot be hashed")

	mask := uint32(len(r.hash) - 1)
	for offset := uint32(0); offset < uint32(len(r.hash)); offset++ {
		e := &r.hash[(index+offset)&mask]
		if e.index == 0 || e.index == index {
			return e
		}
	}
	assert.IsTrue(false, "region hash has no free entry for storage index %d", index)
	return nil
}

// reserve makes sure the hash can take one more entity without exceeding half load.
func (r *Region) reserve() {
	if 2*(len(r.entities)+1) <= len(r.hash) {
		return
	}
	old := r.hash
	r.hash = make([]hashEntry, len(old)*2)
	for _, e := range old {
		if e.index != 0 {
			*r.entry(e.index) = e
		}
	}
}
