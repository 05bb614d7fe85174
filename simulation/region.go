package simulation

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/assert"
	"github.com/oomph-ac/simregion/entity"
	"github.com/oomph-ac/simregion/omath"
	"github.com/oomph-ac/simregion/store"
	"github.com/oomph-ac/simregion/world"
)

// Region is a bounded, origin-relative working set of entities copied out of the store for one tick.
// Positions inside the region are plain vectors relative to Origin.
type Region struct {
	arena *Arena
	store *store.Store
	world *world.World

	// Origin is the absolute position the region's coordinates are relative to.
	Origin world.Position
	// Bounds encloses every entity loaded into the region, including those only present as colliders.
	Bounds cube.BBox
	// UpdatableBounds encloses the entities that may be updated this tick.
	UpdatableBounds cube.BBox

	MaxEntityRadius   float32
	MaxEntityVelocity float32

	entities  []entity.Sim
	hash      []hashEntry
	committed bool
}

// BeginSim builds a region around origin from the entities of st. Every spatial entity whose bounding
// volume overlaps bounds, grown by the largest entity radius and by how far any entity could move in dt,
// is loaded. Entities that overlap bounds grown by the radius alone are flagged updatable. Each loaded
// entity is marked as simming in the store until EndSim writes it back.
func BeginSim(arena *Arena, st *store.Store, origin world.Position, bounds cube.BBox, dt float32) *Region {
	assert.IsTrue(!arena.open, "arena already holds an open region")
	arena.open = true

	opts := &arena.opts
	r := &arena.region
	r.arena = arena
	r.store = st
	r.world = st.World()
	r.Origin = origin
	r.MaxEntityRadius = opts.MaxEntityRadius
	r.MaxEntityVelocity = opts.MaxEntityVelocity

	safetyMargin := r.MaxEntityRadius + dt*r.MaxEntityVelocity
	r.UpdatableBounds = bounds.GrowVec3(mgl32.Vec3{r.MaxEntityRadius, r.MaxEntityRadius, 0})
	r.Bounds = r.UpdatableBounds.GrowVec3(mgl32.Vec3{safetyMargin, safetyMargin, opts.VerticalMargin})

	minChunk := r.world.MapIntoChunkSpace(origin, r.Bounds.Min())
	maxChunk := r.world.MapIntoChunkSpace(origin, r.Bounds.Max())
	for z := minChunk.ChunkZ; z <= maxChunk.ChunkZ; z++ {
		for y := minChunk.ChunkY; y <= maxChunk.ChunkY; y++ {
			for x := minChunk.ChunkX; x <= maxChunk.ChunkX; x++ {
				r.world.ChunkEntities(x, y, z, func(index uint32) {
					low := st.Low(index)
					if low.Sim.IsSet(entity.FlagNonspatial) {
						return
					}
					p := r.simSpaceP(low)
					if entityOverlapsRect(r.Bounds, p, low.Sim.Collision) {
						r.addEntity(index, low, &p)
					}
				})
			}
		}
	}
	return r
}

// Entities returns the entities loaded into the region. Mutating an element mutates the region's copy.
func (r *Region) Entities() []entity.Sim {
	return r.entities
}

// Len returns the number of entities loaded into the region.
func (r *Region) Len() int {
	return len(r.entities)
}

// Get returns the region's copy of the entity with the storage index passed, or nil if it is not loaded.
func (r *Region) Get(index uint32) *entity.Sim {
	if index == 0 {
		return nil
	}
	if e := r.entry(index); e.index == index {
		return &r.entities[e.slot]
	}
	return nil
}

// Store returns the store the region was built from.
func (r *Region) Store() *store.Store {
	return r.store
}

// simSpaceP returns the region-local position of a stored entity.
func (r *Region) simSpaceP(low *entity.Low) mgl32.Vec3 {
	if low.Sim.IsSet(entity.FlagNonspatial) || !low.P.Valid() {
		return entity.InvalidP
	}
	return r.world.Subtract(low.P, r.Origin)
}

// addEntity loads the stored entity into the region at simP, or at its own stored position if simP is nil.
func (r *Region) addEntity(index uint32, source *entity.Low, simP *mgl32.Vec3) int32 {
	slot := r.addEntityRaw(index, source)
	e := &r.entities[slot]
	if simP != nil {
		e.P = *simP
		e.Updatable = entityOverlapsRect(r.UpdatableBounds, e.P, e.Collision)
	} else {
		e.P = r.simSpaceP(source)
	}
	return slot
}

// addEntityRaw copies the stored entity into the region unless it is already there, and returns its slot.
// Entities it references are loaded along with it.
func (r *Region) addEntityRaw(index uint32, source *entity.Low) int32 {
	assert.IsTrue(index != 0, "cannot load storage index 0")
	if e := r.entry(index); e.index == index {
		return e.slot
	}

	assert.IsTrue(!source.Sim.IsSet(entity.FlagSimming), "entity %d is already being simulated", index)
	r.reserve()
	slot := int32(len(r.entities))
	r.entities = append(r.entities, source.Sim)
	*r.entry(index) = hashEntry{index: index, slot: slot}
	source.Sim.AddFlags(entity.FlagSimming)

	e := &r.entities[slot]
	e.StorageIndex = index
	e.Updatable = false

	r.loadRef(e.Sword)
	return slot
}

// loadRef makes sure the entity ref points at is loaded. Loading may grow the entity slice, so callers
// must not hold entity pointers across it.
func (r *Region) loadRef(ref entity.Ref) {
	if ref.Index == 0 {
		return
	}
	if e := r.entry(ref.Index); e.index == ref.Index {
		return
	}
	low := r.store.Low(ref.Index)
	p := r.simSpaceP(low)
	r.addEntity(ref.Index, low, &p)
}

// entityOverlapsRect reports whether an entity with the volume group passed, placed at p, overlaps rect.
func entityOverlapsRect(rect cube.BBox, p mgl32.Vec3, group *entity.VolumeGroup) bool {
	if group == nil {
		return omath.InRect(rect, p)
	}
	grown := rect.GrowVec3(group.Total.Dim.Mul(0.5))
	return omath.InRect(grown, p.Add(group.Total.Offset))
}
