package store

import (
	"github.com/oomph-ac/simregion/assert"
	"github.com/oomph-ac/simregion/entity"
	"github.com/oomph-ac/simregion/world"
)

// Store is the persistent table of low entities, addressed by storage index. Index zero is reserved so
// that a zero Ref or hash entry can mean "no entity". Every spatial entity in the store is listed by
// exactly one chunk of the world it was created with.
type Store struct {
	w    *world.World
	lows []entity.Low
}

// New returns an empty store that indexes its entities in w.
func New(w *world.World) *Store {
	return &Store{
		w:    w,
		lows: make([]entity.Low, 1, 1024),
	}
}

// Restore returns a store holding the entities passed, in order, from storage index one, and rebuilds
// their chunk membership in w. Simming flags left over from an interrupted tick are cleared.
func Restore(w *world.World, lows []entity.Low) *Store {
	s := &Store{w: w, lows: make([]entity.Low, 1, len(lows)+1)}
	for _, l := range lows {
		index := uint32(len(s.lows))
		l.Sim.StorageIndex = index
		l.Sim.ClearFlags(entity.FlagSimming)
		l.Sim.AddFlags(entity.FlagNonspatial)
		if l.P.Valid() {
			l.Sim.ClearFlags(entity.FlagNonspatial)
			p := l.P
			w.ChangeEntityLocationRaw(index, nil, &p)
		}
		s.lows = append(s.lows, l)
	}
	return s
}

// World returns the spatial index the store keeps its entities in.
func (s *Store) World() *world.World {
	return s.w
}

// Add appends a new entity of the type passed at position p and returns its storage index along with the
// stored record. A null p creates a non-spatial entity. The pointer is only valid until the next Add.
func (s *Store) Add(t entity.Type, p world.Position) (uint32, *entity.Low) {
	index := uint32(len(s.lows))
	s.lows = append(s.lows, entity.Low{
		P: world.NullPosition(),
		Sim: entity.Sim{
			StorageIndex: index,
			Type:         t,
			Flags:        entity.FlagNonspatial,
			P:            entity.InvalidP,
			Collision:    entity.NewNullGroup(),
		},
	})
	s.ChangeEntityLocation(index, p)
	return index, &s.lows[index]
}

// ChangeEntityLocation moves the entity to newP, updating its chunk membership. A null newP takes the
// entity out of the spatial index and flags it non-spatial; a valid one clears that flag.
func (s *Store) ChangeEntityLocation(index uint32, newP world.Position) {
	low := s.Low(index)

	var oldP, np *world.Position
	if low.P.Valid() {
		old := low.P
		oldP = &old
	}
	if newP.Valid() {
		np = &newP
	}
	s.w.ChangeEntityLocationRaw(index, oldP, np)

	if np != nil {
		low.P = newP
		low.Sim.ClearFlags(entity.FlagNonspatial)
		return
	}
	low.P = world.NullPosition()
	low.Sim.AddFlags(entity.FlagNonspatial)
}

// Low returns the stored record of the entity with the index passed.
func (s *Store) Low(index uint32) *entity.Low {
	assert.IsTrue(index > 0 && int(index) < len(s.lows), "storage index %d out of range (count %d)", index, s.Count())
	return &s.lows[index]
}

// Count returns the number of entities in the store.
func (s *Store) Count() int {
	return len(s.lows) - 1
}

// Each calls fn with every stored entity in index order.
func (s *Store) Each(fn func(index uint32, low *entity.Low)) {
	for i := 1; i < len(s.lows); i++ {
		fn(uint32(i), &s.lows[i])
	}
}

// Lows returns a copy of every stored record in index order, starting at storage index one.
func (s *Store) Lows() []entity.Low {
	out := make([]entity.Low, len(s.lows)-1)
	copy(out, s.lows[1:])
	return out
}
