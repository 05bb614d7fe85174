package simulation

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/entity"
	"github.com/oomph-ac/simregion/omath"
	"github.com/oomph-ac/simregion/world"
)

func TestBeginSimContainment(t *testing.T) {
	f := newFixture(DefaultOptions())
	unit := mgl32.Vec3{1, 1, 1}
	near := f.add(entity.TypeWall, mgl32.Vec3{3, 0, 0}, unit, entity.FlagCollides)
	margin := f.add(entity.TypeWall, mgl32.Vec3{12, 0, 0}, unit, entity.FlagCollides)
	far := f.add(entity.TypeWall, mgl32.Vec3{40, 0, 0}, unit, entity.FlagCollides)
	above := f.add(entity.TypeWall, mgl32.Vec3{0, 0, 3}, unit, entity.FlagCollides)
	hidden, _ := f.st.Add(entity.TypeSword, world.NullPosition())

	r := f.begin(mgl32.Vec3{5, 5, 1.5}, 1.0/60)
	for _, e := range r.Entities() {
		if !omath.Intersects(e.Box(), r.Bounds) {
			t.Fatalf("entity %d loaded outside region bounds", e.StorageIndex)
		}
		if e.Updatable && !omath.Intersects(e.Box(), r.UpdatableBounds) {
			t.Fatalf("entity %d updatable outside updatable bounds", e.StorageIndex)
		}
	}

	if e := r.Get(near); e == nil || !e.Updatable {
		t.Fatalf("nearby entity should be loaded and updatable")
	}
	if !r.Get(near).P.ApproxEqualThreshold(mgl32.Vec3{3, 0, 0}, 1e-4) {
		t.Fatalf("unexpected region-local position %v", r.Get(near).P)
	}
	if e := r.Get(margin); e == nil || e.Updatable {
		t.Fatalf("entity in the safety margin should be loaded but not updatable")
	}
	for _, index := range []uint32{far, above, hidden} {
		if r.Get(index) != nil {
			t.Fatalf("entity %d should not be loaded", index)
		}
	}
	if !f.st.Low(near).Sim.IsSet(entity.FlagSimming) {
		t.Fatalf("stored copy of a loaded entity should be marked simming")
	}
	if f.st.Low(far).Sim.IsSet(entity.FlagSimming) {
		t.Fatalf("stored copy of an unloaded entity should not be marked simming")
	}

	f.end(r, nil)
	if f.st.Low(near).Sim.IsSet(entity.FlagSimming) {
		t.Fatalf("simming mark survived commit")
	}
}

func TestBeginSimLoadsReferences(t *testing.T) {
	f := newFixture(DefaultOptions())
	hero := f.add(entity.TypeHero, mgl32.Vec3{}, mgl32.Vec3{1, 0.5, 1.2}, entity.FlagCollides|entity.FlagMoveable)
	sword, _ := f.st.Add(entity.TypeSword, world.NullPosition())
	f.st.Low(hero).Sim.Sword = entity.Ref{Index: sword}

	r := f.begin(mgl32.Vec3{5, 5, 1.5}, 1.0/60)
	e := r.Get(sword)
	if e == nil {
		t.Fatalf("referenced sword was not loaded")
	}
	if e.P != entity.InvalidP || e.Updatable {
		t.Fatalf("non-spatial sword should sit at the invalid position and not be updatable")
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 entities, got %d", r.Len())
	}
	f.end(r, nil)
	if f.st.Low(sword).Sim.IsSet(entity.FlagSimming) {
		t.Fatalf("simming mark on sword survived commit")
	}
}

func TestDoublePromotionPanics(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.add(entity.TypeWall, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, entity.FlagCollides)
	f.begin(mgl32.Vec3{5, 5, 1.5}, 1.0/60)

	other := NewArena(DefaultOptions())
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic when an entity is promoted twice")
		}
	}()
	BeginSim(other, f.st, world.Position{}, omath.RectCenterHalfDim(mgl32.Vec3{}, mgl32.Vec3{5, 5, 1.5}), 1.0/60)
}

func TestArenaHoldsOneRegion(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.begin(mgl32.Vec3{5, 5, 1.5}, 1.0/60)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic when opening a second region in one arena")
		}
	}()
	f.begin(mgl32.Vec3{5, 5, 1.5}, 1.0/60)
}

func TestRegionHashGrows(t *testing.T) {
	f := newFixture(Options{Capacity: 16})
	const n = 3000
	indices := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		at := mgl32.Vec3{float32(i%60) * 0.3, float32(i/60) * 0.3, 0}
		indices = append(indices, f.add(entity.TypeMonstar, at, mgl32.Vec3{0.2, 0.2, 0.2}, 0))
	}

	r := f.begin(mgl32.Vec3{20, 20, 1.5}, 1.0/60)
	if r.Len() != n {
		t.Fatalf("expected %d entities, got %d", n, r.Len())
	}
	for _, index := range indices {
		if e := r.Get(index); e == nil || e.StorageIndex != index {
			t.Fatalf("entity %d not found after hash growth", index)
		}
	}
	f.end(r, nil)
}

func TestEndSimRelocates(t *testing.T) {
	f := newFixture(DefaultOptions())
	index := f.add(entity.TypeHero, mgl32.Vec3{10, 0, 0}, mgl32.Vec3{1, 0.5, 1.2}, entity.FlagMoveable)
	before := f.st.Low(index).P
	if before.ChunkX != 0 {
		t.Fatalf("fixture entity should start in chunk 0, got %d", before.ChunkX)
	}

	cam := &camera{index: index}
	r := f.begin(mgl32.Vec3{5, 5, 1.5}, 1.0/60)
	r.Get(index).P = mgl32.Vec3{13, 0, 0}
	f.end(r, cam)

	after := f.st.Low(index).P
	if after.ChunkX != 1 {
		t.Fatalf("entity should have moved to chunk 1, got %+v", after)
	}
	if f.w.Contains(before, index) || !f.w.Contains(after, index) {
		t.Fatalf("chunk membership does not follow the committed position")
	}
	if cam.calls != 1 || cam.p != after {
		t.Fatalf("camera not updated: %+v", cam)
	}
}

func TestEndSimMakesNonSpatial(t *testing.T) {
	f := newFixture(DefaultOptions())
	index := f.add(entity.TypeSword, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0.5, 0.5, 0.1}, entity.FlagMoveable)
	p := f.st.Low(index).P

	r := f.begin(mgl32.Vec3{5, 5, 1.5}, 1.0/60)
	r.Get(index).MakeNonSpatial()
	f.end(r, nil)

	low := f.st.Low(index)
	if low.P.Valid() || !low.Sim.IsSet(entity.FlagNonspatial) {
		t.Fatalf("entity should be non-spatial after commit")
	}
	if f.w.Contains(p, index) {
		t.Fatalf("non-spatial entity still listed by its old chunk")
	}
}

func TestBeginSimBoundsMargins(t *testing.T) {
	f := newFixture(DefaultOptions())
	r := f.begin(mgl32.Vec3{5, 5, 1.5}, 0.1)
	defer f.end(r, nil)

	// Updatable bounds add the largest radius on X and Y; loaded bounds add the radius and the
	// distance covered at top speed, plus the vertical margin on Z.
	if !r.UpdatableBounds.Min().ApproxEqualThreshold(mgl32.Vec3{-10, -10, -1.5}, 1e-4) ||
		!r.UpdatableBounds.Max().ApproxEqualThreshold(mgl32.Vec3{10, 10, 1.5}, 1e-4) {
		t.Fatalf("unexpected updatable bounds %v - %v", r.UpdatableBounds.Min(), r.UpdatableBounds.Max())
	}
	if !r.Bounds.Min().ApproxEqualThreshold(mgl32.Vec3{-18, -18, -2.5}, 1e-4) ||
		!r.Bounds.Max().ApproxEqualThreshold(mgl32.Vec3{18, 18, 2.5}, 1e-4) {
		t.Fatalf("unexpected region bounds %v - %v", r.Bounds.Min(), r.Bounds.Max())
	}
}
