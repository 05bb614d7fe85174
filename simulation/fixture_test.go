package simulation

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/entity"
	"github.com/oomph-ac/simregion/omath"
	"github.com/oomph-ac/simregion/store"
	"github.com/oomph-ac/simregion/world"
)

type fixture struct {
	w     *world.World
	st    *store.Store
	arena *Arena
	rules *Rules
}

func newFixture(opts Options) *fixture {
	w := world.New(world.DefaultConfig())
	return &fixture{
		w:     w,
		st:    store.New(w),
		arena: NewArena(opts),
		rules: NewRules(),
	}
}

// add places a grounded entity of the dimensions passed at the region-local point at.
func (f *fixture) add(t entity.Type, at, dim mgl32.Vec3, flags entity.Flags) uint32 {
	index, low := f.st.Add(t, f.w.MapIntoChunkSpace(world.Position{}, at))
	low.Sim.AddFlags(flags)
	low.Sim.Collision = entity.NewGroundedGroup(dim)
	return index
}

func (f *fixture) begin(halfDim mgl32.Vec3, dt float32) *Region {
	return BeginSim(f.arena, f.st, world.Position{}, omath.RectCenterHalfDim(mgl32.Vec3{}, halfDim), dt)
}

func (f *fixture) end(r *Region, camera Camera) {
	EndSim(r, camera)
	f.arena.Reset()
}

// penetration returns how deep the volumes of a and b interpenetrate on their shallowest axis, or zero if
// they are apart.
func penetration(a, b *entity.Sim) float32 {
	var deepest float32
	for _, va := range a.Collision.Volumes {
		for _, vb := range b.Collision.Volumes {
			deepest = max(deepest, boxPenetration(va.Box(a.P), vb.Box(b.P)))
		}
	}
	return deepest
}

func boxPenetration(a, b cube.BBox) float32 {
	depth := float32(1 << 20)
	for i := 0; i < 3; i++ {
		d := min(a.Max()[i], b.Max()[i]) - max(a.Min()[i], b.Min()[i])
		if d <= 0 {
			return 0
		}
		depth = min(depth, d)
	}
	return depth
}

type camera struct {
	index uint32
	p     world.Position
	calls int
}

func (c *camera) FollowIndex() uint32 { return c.index }

func (c *camera) Follow(p world.Position) {
	c.p = p
	c.calls++
}
