package terrain

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/entity"
	"github.com/oomph-ac/simregion/omath"
)

// Provider answers ground height queries for entities that shape the floor, such as stairwells.
type Provider interface {
	// StairGroundHeight returns the height of the walkable surface of stair under the point at, in the
	// same space as stair.P.
	StairGroundHeight(stair *entity.Sim, at mgl32.Vec3) float32
}

// Stairs is a Provider that treats a stairwell as a ramp rising along Y across its walkable rectangle.
type Stairs struct{}

// StairGroundHeight ...
func (Stairs) StairGroundHeight(stair *entity.Sim, at mgl32.Vec3) float32 {
	rect := omath.RectCenterDim(stair.P, mgl32.Vec3{stair.WalkableDim.X(), stair.WalkableDim.Y(), 0})
	bary := omath.Clamp01Vec3(omath.Barycentric(rect, at))
	return stair.P.Z() + bary.Y()*stair.WalkableHeight
}
