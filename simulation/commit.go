package simulation

import (
	"github.com/oomph-ac/simregion/assert"
	"github.com/oomph-ac/simregion/entity"
	"github.com/oomph-ac/simregion/world"
)

// Camera follows one entity, receiving its absolute position whenever a region that holds it is
// committed.
type Camera interface {
	// FollowIndex returns the storage index of the followed entity, or zero.
	FollowIndex() uint32
	// Follow is called with the committed position of the followed entity.
	Follow(p world.Position)
}

// EndSim writes every entity of the region back to the store: its state replaces the stored copy, its
// simming mark is cleared, and its chunk membership follows its new position. Non-spatial entities leave
// the spatial index. camera may be nil.
func EndSim(r *Region, camera Camera) {
	assert.IsTrue(!r.committed, "region has already been committed")
	r.committed = true

	var follow uint32
	if camera != nil {
		follow = camera.FollowIndex()
	}
	for i := range r.entities {
		e := &r.entities[i]
		stored := r.store.Low(e.StorageIndex)
		assert.IsTrue(stored.Sim.IsSet(entity.FlagSimming), "entity %d is not being simulated", e.StorageIndex)

		stored.Sim = *e
		stored.Sim.ClearFlags(entity.FlagSimming)

		newP := world.NullPosition()
		if !e.IsSet(entity.FlagNonspatial) {
			newP = r.world.MapIntoChunkSpace(r.Origin, e.P)
		}
		r.store.ChangeEntityLocation(e.StorageIndex, newP)

		if follow != 0 && e.StorageIndex == follow {
			camera.Follow(stored.P)
		}
	}
}
