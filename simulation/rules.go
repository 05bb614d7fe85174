package simulation

import "github.com/oomph-ac/simregion/entity"

// ruleBuckets is the number of buckets in the pairwise rule hash. It must be a power of two.
const ruleBuckets = 256

// pairRule overrides whether two entities collide. Rules live in a slab and are chained by handle, where
// handle zero means none.
type pairRule struct {
	a, b       uint32
	canCollide bool
	next       uint32
}

// Rules is the set of pairwise collision overrides, keyed by the unordered pair of storage indices.
type Rules struct {
	buckets   [ruleBuckets]uint32
	slab      []pairRule
	firstFree uint32
	count     int
}

// NewRules returns an empty rule set.
func NewRules() *Rules {
	return &Rules{slab: make([]pairRule, 1, 64)}
}

func orderPair(a, b uint32) (uint32, uint32) {
	if a > b {
		return b, a
	}
	return a, b
}

// find returns the handle of the rule for the ordered pair a, b, or zero.
func (r *Rules) find(a, b uint32) uint32 {
	for h := r.buckets[a&(ruleBuckets-1)]; h != 0; h = r.slab[h].next {
		if rule := &r.slab[h]; rule.a == a && rule.b == b {
			return h
		}
	}
	return 0
}

// Add records whether the entities with storage indices a and b may collide, replacing any existing rule
// for the pair.
func (r *Rules) Add(a, b uint32, canCollide bool) {
	a, b = orderPair(a, b)
	if h := r.find(a, b); h != 0 {
		r.slab[h].canCollide = canCollide
		return
	}

	var h uint32
	if r.firstFree != 0 {
		h = r.firstFree
		r.firstFree = r.slab[h].next
	} else {
		r.slab = append(r.slab, pairRule{})
		h = uint32(len(r.slab) - 1)
	}
	bucket := a & (ruleBuckets - 1)
	r.slab[h] = pairRule{a: a, b: b, canCollide: canCollide, next: r.buckets[bucket]}
	r.buckets[bucket] = h
	r.count++
}

// Lookup returns the rule recorded for the pair a, b, if any.
func (r *Rules) Lookup(a, b uint32) (canCollide, found bool) {
	a, b = orderPair(a, b)
	if h := r.find(a, b); h != 0 {
		return r.slab[h].canCollide, true
	}
	return false, false
}

// ClearFor removes every rule that involves the entity with the storage index passed.
func (r *Rules) ClearFor(index uint32) {
	for bucket := range r.buckets {
		link := &r.buckets[bucket]
		for *link != 0 {
			h := *link
			rule := &r.slab[h]
			if rule.a != index && rule.b != index {
				link = &rule.next
				continue
			}
			*link = rule.next
			rule.next = r.firstFree
			r.firstFree = h
			r.count--
		}
	}
}

// Len returns the number of rules recorded.
func (r *Rules) Len() int {
	return r.count
}

// CanCollide reports whether a and b collide: both must be solid and spatial, and no rule may say
// otherwise.
func (r *Rules) CanCollide(a, b *entity.Sim) bool {
	if a.StorageIndex == b.StorageIndex {
		return false
	}
	if !a.IsSet(entity.FlagCollides) || !b.IsSet(entity.FlagCollides) {
		return false
	}
	if a.IsSet(entity.FlagNonspatial) || b.IsSet(entity.FlagNonspatial) {
		return false
	}
	if canCollide, ok := r.Lookup(a.StorageIndex, b.StorageIndex); ok {
		return canCollide
	}
	return true
}

// suppressed reports whether a rule explicitly stops a and b from interacting.
func (r *Rules) suppressed(a, b uint32) bool {
	canCollide, ok := r.Lookup(a, b)
	return ok && !canCollide
}
