package game

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/entity"
	"github.com/oomph-ac/simregion/world"
)

// Doors selects the walls of a room that get a doorway in their middle.
type Doors struct {
	East, West, North, South bool
}

func (g *Game) tileP(x, y, z int32) world.Position {
	return g.world.ChunkPositionFromTile(x, y, z, mgl32.Vec3{})
}

func (g *Game) add(t entity.Type, p world.Position, group *entity.VolumeGroup, flags entity.Flags) (uint32, *entity.Low) {
	index, low := g.store.Add(t, p)
	low.Sim.Collision = group
	low.Sim.AddFlags(flags)
	return index, low
}

func initHitPoints(s *entity.Sim, count uint32) {
	s.HitPointMax = count
	for i := uint32(0); i < count && i < uint32(len(s.HitPoints)); i++ {
		s.HitPoints[i] = entity.HitPoint{FilledAmount: entity.HitPointSubCount}
	}
}

// AddWall adds a wall filling the tile passed.
func (g *Game) AddWall(x, y, z int32) uint32 {
	g.world.Lock()
	defer g.world.Unlock()

	index, _ := g.add(entity.TypeWall, g.tileP(x, y, z), g.volumes.wall, entity.FlagCollides)
	return index
}

// AddStair adds a stairwell rising along Y from floor z to the floor above, centred on the tile passed.
func (g *Game) AddStair(x, y, z int32) uint32 {
	g.world.Lock()
	defer g.world.Unlock()

	index, low := g.add(entity.TypeStairwell, g.tileP(x, y, z), g.volumes.stair, entity.FlagCollides)
	dim := g.volumes.stair.Total.Dim
	low.Sim.WalkableDim = mgl32.Vec2{dim.X(), dim.Y()}
	low.Sim.WalkableHeight = g.world.Config().TileDepthInMeters
	return index
}

// AddSpace adds a traversable space of width by height tiles centred on the point passed, in metres from
// the tile (x, y, z).
func (g *Game) AddSpace(x, y, z int32, centre mgl32.Vec3, width, height int32) uint32 {
	g.world.Lock()
	defer g.world.Unlock()

	cfg := g.world.Config()
	group := entity.NewGroundedGroup(mgl32.Vec3{
		float32(width) * cfg.TileSideInMeters,
		float32(height) * cfg.TileSideInMeters,
		RoomHeightFactor * cfg.TileDepthInMeters,
	})
	index, _ := g.add(entity.TypeSpace, g.world.ChunkPositionFromTile(x, y, z, centre), group, entity.FlagTraversable)
	return index
}

// AddRoom surrounds width by height tiles, starting at tile (x, y) on floor z, with walls, leaving a
// doorway in the middle of each wall selected by doors, and adds a space covering the room. It returns
// the storage index of the space.
func (g *Game) AddRoom(x, y, z, width, height int32, doors Doors) uint32 {
	for ty := int32(0); ty < height; ty++ {
		for tx := int32(0); tx < width; tx++ {
			west, east := tx == 0, tx == width-1
			south, north := ty == 0, ty == height-1
			if !west && !east && !south && !north {
				continue
			}
			if (west && doors.West || east && doors.East) && ty == height/2 {
				continue
			}
			if (south && doors.South || north && doors.North) && tx == width/2 {
				continue
			}
			g.AddWall(x+tx, y+ty, z)
		}
	}
	side := g.world.Config().TileSideInMeters
	centre := mgl32.Vec3{float32(width-1) * 0.5 * side, float32(height-1) * 0.5 * side, 0}
	return g.AddSpace(x, y, z, centre, width, height)
}

// AddHero adds a hero on the tile passed, together with the sword it throws. The first hero added is the
// one the camera follows and the input controls.
func (g *Game) AddHero(x, y, z int32) uint32 {
	g.world.Lock()
	defer g.world.Unlock()

	sword, _ := g.add(entity.TypeSword, world.NullPosition(), g.volumes.sword, entity.FlagCollides|entity.FlagMoveable)

	index, low := g.add(entity.TypeHero, g.tileP(x, y, z), g.volumes.hero, entity.FlagCollides|entity.FlagMoveable)
	initHitPoints(&low.Sim, HeroHitPoints)
	low.Sim.Sword = entity.Ref{Index: sword}

	if g.camera.follow == 0 {
		g.camera.follow = index
		g.camera.P = low.P
	}
	return index
}

// AddMonstar adds a monstar on the tile passed.
func (g *Game) AddMonstar(x, y, z int32) uint32 {
	g.world.Lock()
	defer g.world.Unlock()

	index, low := g.add(entity.TypeMonstar, g.tileP(x, y, z), g.volumes.monstar, entity.FlagCollides|entity.FlagMoveable)
	initHitPoints(&low.Sim, MonstarHitPoints)
	return index
}

// AddFamiliar adds a familiar on the tile passed.
func (g *Game) AddFamiliar(x, y, z int32) uint32 {
	g.world.Lock()
	defer g.world.Unlock()

	index, _ := g.add(entity.TypeFamiliar, g.tileP(x, y, z), g.volumes.familiar, entity.FlagCollides|entity.FlagMoveable)
	return index
}
