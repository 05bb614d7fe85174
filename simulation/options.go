package simulation

import (
	"github.com/oomph-ac/simregion/terrain"
	"go.uber.org/zap"
)

// Options tune the region builder and the movement solver. Zero fields are replaced with the values of
// DefaultOptions when an Arena is created, so a zero Gravity, StepHeight or VerticalMargin means "use the
// default" rather than "none". Restitution is the exception: zero is its default.
type Options struct {
	// MaxEntityRadius is the largest half extent any entity may have.
	MaxEntityRadius float32
	// MaxEntityVelocity is the speed no entity may exceed.
	MaxEntityVelocity float32
	// VerticalMargin is how far past the update bounds, along Z, entities are still loaded as colliders.
	VerticalMargin float32
	// Capacity is the number of entities a region is sized for up front. Regions grow past it on demand.
	Capacity int

	// Gravity is the downward acceleration applied to entities that are not supported.
	Gravity float32
	// StepHeight is the largest ground height change a mover may step over when entering a stairwell.
	StepHeight float32
	// Restitution scales the velocity reflected off a stopping contact: zero slides along the surface and
	// one reflects fully.
	Restitution float32
	// MaxIterations bounds the number of collision iterations run per move.
	MaxIterations int

	// Terrain answers stairwell ground height queries.
	Terrain terrain.Provider
	// Log receives solver debug output when DebugSolver is set.
	Log         *zap.Logger
	DebugSolver bool
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxEntityRadius:   5,
		MaxEntityVelocity: 30,
		VerticalMargin:    1,
		Capacity:          4096,
		Gravity:           9.8,
		StepHeight:        0.1,
		Restitution:       0,
		MaxIterations:     4,
		Terrain:           terrain.Stairs{},
		Log:               zap.NewNop(),
	}
}

// withDefaults fills the zero fields of o from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxEntityRadius == 0 {
		o.MaxEntityRadius = def.MaxEntityRadius
	}
	if o.MaxEntityVelocity == 0 {
		o.MaxEntityVelocity = def.MaxEntityVelocity
	}
	if o.VerticalMargin == 0 {
		o.VerticalMargin = def.VerticalMargin
	}
	if o.Capacity <= 0 {
		o.Capacity = def.Capacity
	}
	if o.Gravity == 0 {
		o.Gravity = def.Gravity
	}
	if o.StepHeight == 0 {
		o.StepHeight = def.StepHeight
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = def.MaxIterations
	}
	if o.Terrain == nil {
		o.Terrain = def.Terrain
	}
	if o.Log == nil {
		o.Log = def.Log
	}
	return o
}
