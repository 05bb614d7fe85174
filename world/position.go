package world

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/assert"
	"github.com/oomph-ac/simregion/omath"
)

const (
	// ChunkSafeMargin bounds the chunk coordinates the index accepts, leaving headroom so that summing a
	// coordinate with a recanonicalisation shift can never overflow an int32.
	ChunkSafeMargin = math.MaxInt32 / 64
	// chunkUninitialized marks the ChunkX of a position that refers to no location.
	chunkUninitialized = math.MaxInt32
	// canonicalEpsilon is the slack allowed past half a chunk before an offset counts as non-canonical.
	canonicalEpsilon = 0.01
)

// Position is an absolute location in the world: the chunk that holds it, and the offset from that
// chunk's centre in metres. A canonical Position has every offset component within half a chunk
// dimension of zero.
type Position struct {
	ChunkX, ChunkY, ChunkZ int32
	Offset                 mgl32.Vec3
}

// NullPosition returns the position used for entities that exist outside the spatial index.
func NullPosition() Position {
	return Position{ChunkX: chunkUninitialized}
}

// Valid reports whether p refers to an actual location.
func (p Position) Valid() bool {
	return p.ChunkX != chunkUninitialized
}

// AreInSameChunk reports whether a and b are held by the same chunk.
func AreInSameChunk(a, b Position) bool {
	return a.ChunkX == b.ChunkX && a.ChunkY == b.ChunkY && a.ChunkZ == b.ChunkZ
}

// chunkCoordSafe reports whether a chunk coordinate lies within the safe margin.
func chunkCoordSafe(v int32) bool {
	return v > -ChunkSafeMargin && v < ChunkSafeMargin
}

// IsCanonical reports whether offset lies within half a chunk of the centre on every axis.
func (w *World) IsCanonical(offset mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		half := 0.5 * w.chunkDim[i]
		if offset[i] < -(half+canonicalEpsilon) || offset[i] > half+canonicalEpsilon {
			return false
		}
	}
	return true
}

// recanonicalizeCoord folds rel back into [-dim/2, dim/2], moving chunk by however many whole chunks were
// removed.
func recanonicalizeCoord(dim float32, chunk *int32, rel *float32) {
	shift := int32(math32.Round(*rel / dim))
	*chunk += shift
	*rel -= float32(shift) * dim
}

// MapIntoChunkSpace returns the canonical position found by displacing base by delta metres. Large
// displacements are handled in a single step.
func (w *World) MapIntoChunkSpace(base Position, delta mgl32.Vec3) Position {
	p := base
	p.Offset = p.Offset.Add(delta)
	recanonicalizeCoord(w.chunkDim[0], &p.ChunkX, &p.Offset[0])
	recanonicalizeCoord(w.chunkDim[1], &p.ChunkY, &p.Offset[1])
	recanonicalizeCoord(w.chunkDim[2], &p.ChunkZ, &p.Offset[2])

	assert.IsTrue(w.IsCanonical(p.Offset), "position %v is not canonical after mapping", p)
	return p
}

// Subtract returns the displacement in metres from b to a.
func (w *World) Subtract(a, b Position) mgl32.Vec3 {
	dChunk := mgl32.Vec3{
		float32(a.ChunkX) - float32(b.ChunkX),
		float32(a.ChunkY) - float32(b.ChunkY),
		float32(a.ChunkZ) - float32(b.ChunkZ),
	}
	return omath.Hadamard(w.chunkDim, dChunk).Add(a.Offset.Sub(b.Offset))
}

// CenteredChunkPoint returns the position at the centre of the chunk passed.
func (w *World) CenteredChunkPoint(x, y, z int32) Position {
	return Position{ChunkX: x, ChunkY: y, ChunkZ: z}
}

// ChunkPositionFromTile returns the canonical position of the tile passed, displaced by extra metres.
// Tile (0, 0, 0) sits at the centre of chunk (0, 0, 0).
func (w *World) ChunkPositionFromTile(absTileX, absTileY, absTileZ int32, extra mgl32.Vec3) Position {
	tileDim := mgl32.Vec3{w.cfg.TileSideInMeters, w.cfg.TileSideInMeters, w.cfg.TileDepthInMeters}
	offset := omath.Hadamard(tileDim, mgl32.Vec3{float32(absTileX), float32(absTileY), float32(absTileZ)})
	return w.MapIntoChunkSpace(Position{}, offset.Add(extra))
}
