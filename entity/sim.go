package entity

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/world"
)

// InvalidP is the region-local position given to non-spatial entities. It lies far outside any region.
var InvalidP = mgl32.Vec3{100000, 100000, 100000}

// HitPointSubCount is the number of sub-units a single hit point is divided into.
const HitPointSubCount = 4

// HitPoint is one unit of an entity's health.
type HitPoint struct {
	Flags        uint8
	FilledAmount uint8
}

// Ref refers to another entity by its storage index. A zero index refers to nothing.
type Ref struct {
	Index uint32
}

// MoveSpec describes how an entity turns requested acceleration into movement.
type MoveSpec struct {
	// UnitMaxAccelVector caps the requested acceleration at unit length before it is scaled by Speed.
	UnitMaxAccelVector bool
	Speed              float32
	Drag               float32
}

// DefaultMoveSpec returns a MoveSpec that applies acceleration as passed, without drag.
func DefaultMoveSpec() MoveSpec {
	return MoveSpec{Speed: 1}
}

// Sim is the working copy of an entity. It lives in the low entity store between ticks and is copied into
// a simulation region, where P is relative to the region origin, while it is simulated.
type Sim struct {
	StorageIndex uint32
	Updatable    bool

	Type  Type
	Flags Flags

	P, DP mgl32.Vec3
	// DistanceLimit is how far the entity may still travel. Zero means unlimited.
	DistanceLimit float32

	Collision *VolumeGroup

	FacingDirection float32
	TBob            float32
	DAbsTileZ       int32

	HitPointMax uint32
	HitPoints   [16]HitPoint

	Sword Ref

	WalkableDim    mgl32.Vec2
	WalkableHeight float32
}

// IsSet reports whether every flag in f is set.
func (s *Sim) IsSet(f Flags) bool {
	return s.Flags&f == f
}

// AddFlags sets the flags passed.
func (s *Sim) AddFlags(f Flags) {
	s.Flags |= f
}

// ClearFlags clears the flags passed.
func (s *Sim) ClearFlags(f Flags) {
	s.Flags &^= f
}

// MakeNonSpatial takes the entity out of space.
func (s *Sim) MakeNonSpatial() {
	s.AddFlags(FlagNonspatial)
	s.P = InvalidP
}

// MakeSpatial places the entity at p with velocity dp.
func (s *Sim) MakeSpatial(p, dp mgl32.Vec3) {
	s.ClearFlags(FlagNonspatial)
	s.P = p
	s.DP = dp
}

// Box returns the entity's bounding volume at its current position.
func (s *Sim) Box() cube.BBox {
	if s.Collision == nil {
		return cube.Box(s.P[0], s.P[1], s.P[2], s.P[0], s.P[1], s.P[2])
	}
	return s.Collision.Total.Box(s.P)
}

// GroundPoint returns the point used to sample the ground under the entity.
func (s *Sim) GroundPoint() mgl32.Vec3 {
	return s.P
}

// Low is the persistent record of an entity: its absolute position and its simulation state.
type Low struct {
	P   world.Position
	Sim Sim
}
