package world

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/assert"
	"github.com/sasha-s/go-deadlock"
)

// chunkHashSize is the number of buckets in the chunk hash. It must be a power of two.
const chunkHashSize = 4096

// Config holds the geometry of the world grid.
type Config struct {
	TileSideInMeters  float32
	TileDepthInMeters float32
	TilesPerChunk     int32
}

// DefaultConfig returns the grid geometry used when no settings override it.
func DefaultConfig() Config {
	return Config{
		TileSideInMeters:  1.4,
		TileDepthInMeters: 3.0,
		TilesPerChunk:     16,
	}
}

// Stats is a snapshot of the spatial index's allocation counters.
type Stats struct {
	Chunks     int
	Blocks     int
	FreeBlocks int
}

// World is the chunked spatial index. It maps chunk coordinates to chunks through a fixed-size hash with
// chained buckets, and every chunk lists the storage indices of the spatial entities inside it.
//
// The index performs no locking of its own. The owner of the simulation holds the write lock for the
// duration of a tick, and any other goroutine reading the index must hold the read lock.
type World struct {
	cfg      Config
	chunkDim mgl32.Vec3

	hash   [chunkHashSize]uint32
	chunks []Chunk

	blocks         []entityBlock
	firstFreeBlock uint32
	freeBlocks     int

	deadlock.RWMutex
}

// New creates an empty world with the grid geometry passed.
func New(cfg Config) *World {
	assert.IsTrue(cfg.TileSideInMeters > 0 && cfg.TileDepthInMeters > 0 && cfg.TilesPerChunk > 0, "invalid world config %+v", cfg)

	side := cfg.TileSideInMeters * float32(cfg.TilesPerChunk)
	return &World{
		cfg:      cfg,
		chunkDim: mgl32.Vec3{side, side, cfg.TileDepthInMeters},
		// Handle zero is reserved to mean "none" in both slabs.
		chunks: make([]Chunk, 1, 256),
		blocks: make([]entityBlock, 1, 256),
	}
}

// ChunkDim returns the dimensions of a chunk in metres.
func (w *World) ChunkDim() mgl32.Vec3 {
	return w.chunkDim
}

// Config returns the grid geometry of the world.
func (w *World) Config() Config {
	return w.cfg
}

// chunkHandle returns the handle of the chunk at the coordinates passed, creating it if create is true.
// Zero is returned if the chunk does not exist and create is false.
func (w *World) chunkHandle(x, y, z int32, create bool) uint32 {
	assert.IsTrue(chunkCoordSafe(x) && chunkCoordSafe(y) && chunkCoordSafe(z), "chunk (%d, %d, %d) is outside the safe margin", x, y, z)

	slot := uint32(19*x+7*y+3*z) & (chunkHashSize - 1)
	var prev uint32
	for h := w.hash[slot]; h != 0; h = w.chunks[h].nextInHash {
		c := &w.chunks[h]
		if c.X == x && c.Y == y && c.Z == z {
			return h
		}
		prev = h
	}
	if !create {
		return 0
	}

	w.chunks = append(w.chunks, Chunk{X: x, Y: y, Z: z})
	h := uint32(len(w.chunks) - 1)
	if prev == 0 {
		w.hash[slot] = h
	} else {
		w.chunks[prev].nextInHash = h
	}
	return h
}

// Chunk returns the chunk at the coordinates passed. If the chunk does not exist and create is false, nil
// and false are returned. The pointer is only valid until the next call that creates a chunk.
func (w *World) Chunk(x, y, z int32, create bool) (*Chunk, bool) {
	h := w.chunkHandle(x, y, z, create)
	if h == 0 {
		return nil, false
	}
	return &w.chunks[h], true
}

// ChunkEntities calls fn with every storage index held by the chunk at the coordinates passed. It
// returns false if no such chunk exists. fn must not relocate entities.
func (w *World) ChunkEntities(x, y, z int32, fn func(index uint32)) bool {
	c, ok := w.Chunk(x, y, z, false)
	if !ok {
		return false
	}
	for b := &c.first; b != nil; b = w.next(b) {
		for i := 0; i < b.count; i++ {
			fn(b.indices[i])
		}
	}
	return true
}

// Contains reports whether the chunk holding p lists index.
func (w *World) Contains(p Position, index uint32) bool {
	var found bool
	w.ChunkEntities(p.ChunkX, p.ChunkY, p.ChunkZ, func(i uint32) {
		found = found || i == index
	})
	return found
}

// ChangeEntityLocationRaw moves index from the chunk holding oldP to the chunk holding newP. Either
// position may be nil: a nil oldP inserts without removing and a nil newP removes without inserting.
// Nothing happens when both positions lie in the same chunk.
func (w *World) ChangeEntityLocationRaw(index uint32, oldP, newP *Position) {
	assert.IsTrue(oldP == nil || oldP.Valid(), "old position of entity %d is not valid", index)
	assert.IsTrue(newP == nil || newP.Valid(), "new position of entity %d is not valid", index)
	if oldP != nil && newP != nil && AreInSameChunk(*oldP, *newP) {
		return
	}

	if oldP != nil {
		c, ok := w.Chunk(oldP.ChunkX, oldP.ChunkY, oldP.ChunkZ, false)
		assert.IsTrue(ok, "entity %d has no chunk at %v", index, *oldP)
		assert.IsTrue(w.remove(c, index), "entity %d is not listed by chunk at %v", index, *oldP)
	}
	if newP != nil {
		c, _ := w.Chunk(newP.ChunkX, newP.ChunkY, newP.ChunkZ, true)
		w.insert(c, index)
	}
}

// Stats returns the index's allocation counters.
func (w *World) Stats() Stats {
	return Stats{
		Chunks:     len(w.chunks) - 1,
		Blocks:     len(w.blocks) - 1,
		FreeBlocks: w.freeBlocks,
	}
}
