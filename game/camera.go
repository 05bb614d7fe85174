package game

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/omath"
	"github.com/oomph-ac/simregion/settings"
	"github.com/oomph-ac/simregion/world"
)

// Camera tracks the controlled hero. The region simulated each tick is centred on its position.
type Camera struct {
	follow uint32
	// P is the position of the camera.
	P world.Position
}

// FollowIndex ...
func (c *Camera) FollowIndex() uint32 {
	return c.follow
}

// Follow ...
func (c *Camera) Follow(p world.Position) {
	c.P = p
}

// cameraBounds returns the region-local bounds simulated around the camera.
func cameraBounds(s settings.Camera, cfg world.Config) cube.BBox {
	span := mgl32.Vec3{
		float32(s.TileSpanX) * s.SpanMultiplier * cfg.TileSideInMeters,
		float32(s.TileSpanY) * s.SpanMultiplier * cfg.TileSideInMeters,
		float32(s.TileSpanZ) * cfg.TileDepthInMeters,
	}
	return omath.RectCenterDim(mgl32.Vec3{}, span)
}
