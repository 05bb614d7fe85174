package simulation

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/entity"
	"github.com/oomph-ac/simregion/omath"
)

// entitiesOverlap reports whether any volume of a, grown by epsilon, touches any volume of b.
func entitiesOverlap(a, b *entity.Sim, epsilon mgl32.Vec3) bool {
	if a.Collision == nil || b.Collision == nil {
		return false
	}
	for _, va := range a.Collision.Volumes {
		boxA := va.Box(a.P).GrowVec3(epsilon)
		for _, vb := range b.Collision.Volumes {
			if omath.Intersects(boxA, vb.Box(b.P)) {
				return true
			}
		}
	}
	return false
}

// handleCollision applies the game rules for mover running into hit, and reports whether the mover
// stops against it. A sword passes through whatever it hits once, and wounds a monstar on the way.
func (r *Region) handleCollision(rules *Rules, mover, hit *entity.Sim) bool {
	stops := true
	if mover.Type == entity.TypeSword {
		rules.Add(mover.StorageIndex, hit.StorageIndex, false)
		stops = false
	}

	a, b := mover, hit
	if a.Type > b.Type {
		a, b = b, a
	}
	if a.Type == entity.TypeMonstar && b.Type == entity.TypeSword && a.HitPointMax > 0 {
		a.HitPointMax--
	}
	return stops
}

// canOverlap reports whether mover reacts to standing inside region.
func canOverlap(mover, region *entity.Sim) bool {
	if mover.StorageIndex == region.StorageIndex {
		return false
	}
	return region.Type == entity.TypeStairwell && (mover.Type == entity.TypeHero || mover.Type == entity.TypeFamiliar)
}

// handleOverlap returns the ground height for mover standing inside region, given the ground found so
// far.
func (r *Region) handleOverlap(mover, region *entity.Sim, ground float32) float32 {
	if region.Type == entity.TypeStairwell {
		return r.arena.opts.Terrain.StairGroundHeight(region, mover.GroundPoint())
	}
	return ground
}

// speculativeCollide reports whether mover, arriving at testP, should be stopped by region. Stairwells
// only stop movers whose ground height would change by more than a step.
func (r *Region) speculativeCollide(mover, region *entity.Sim, testP mgl32.Vec3) bool {
	if region.Type != entity.TypeStairwell {
		return true
	}
	ground := r.arena.opts.Terrain.StairGroundHeight(region, testP)
	return math32.Abs(testP.Z()-ground) > r.arena.opts.StepHeight
}
