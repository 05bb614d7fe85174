package game

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/entity"
	"github.com/oomph-ac/simregion/world"
)

// volumes holds the collision shapes shared by every entity of a kind.
type volumes struct {
	hero     *entity.VolumeGroup
	monstar  *entity.VolumeGroup
	familiar *entity.VolumeGroup
	sword    *entity.VolumeGroup
	wall     *entity.VolumeGroup
	stair    *entity.VolumeGroup
}

func newVolumes(cfg world.Config) volumes {
	side, depth := cfg.TileSideInMeters, cfg.TileDepthInMeters
	return volumes{
		hero:     entity.NewGroundedGroup(mgl32.Vec3{1, 0.5, 1.2}),
		monstar:  entity.NewGroundedGroup(mgl32.Vec3{1, 0.5, 0.5}),
		familiar: entity.NewGroundedGroup(mgl32.Vec3{1, 0.5, 0.5}),
		sword:    entity.NewGroundedGroup(mgl32.Vec3{1, 0.5, 0.1}),
		wall:     entity.NewGroundedGroup(mgl32.Vec3{side, side, depth}),
		stair:    entity.NewGroundedGroup(mgl32.Vec3{side, StairWalkableTiles * side, StairHeightFactor * depth}),
	}
}
