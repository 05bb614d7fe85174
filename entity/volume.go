package entity

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/omath"
)

// Volume is an axis-aligned box, described by the offset of its centre from the owning entity's position
// and its full dimensions.
type Volume struct {
	Offset mgl32.Vec3
	Dim    mgl32.Vec3
}

// Box returns the volume placed at the entity position p.
func (v Volume) Box(p mgl32.Vec3) cube.BBox {
	return omath.RectCenterDim(p.Add(v.Offset), v.Dim)
}

// VolumeGroup is the collision shape of an entity: a bounding volume enclosing every sub-volume, and the
// sub-volumes the solver tests against. Groups are immutable once built and are shared between entities
// of the same kind.
type VolumeGroup struct {
	Total   Volume
	Volumes []Volume
}

// NewGroundedGroup returns a single-volume group of the dimensions passed whose base sits on the entity's
// position.
func NewGroundedGroup(dim mgl32.Vec3) *VolumeGroup {
	v := Volume{Offset: mgl32.Vec3{0, 0, 0.5 * dim.Z()}, Dim: dim}
	return &VolumeGroup{Total: v, Volumes: []Volume{v}}
}

// NewNullGroup returns a group with no extent, used by entities that never collide.
func NewNullGroup() *VolumeGroup {
	return &VolumeGroup{}
}
