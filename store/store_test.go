package store

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/entity"
	"github.com/oomph-ac/simregion/world"
)

func TestAddSpatial(t *testing.T) {
	w := world.New(world.DefaultConfig())
	s := New(w)
	p := w.MapIntoChunkSpace(world.Position{}, mgl32.Vec3{30, 0, 0})

	index, low := s.Add(entity.TypeWall, p)
	if index != 1 || low.Sim.StorageIndex != 1 {
		t.Fatalf("first entity should get storage index 1, got %d", index)
	}
	if low.Sim.IsSet(entity.FlagNonspatial) {
		t.Fatalf("entity with a valid position flagged non-spatial")
	}
	if !w.Contains(p, index) {
		t.Fatalf("entity not listed by its chunk")
	}
}

func TestAddNonSpatial(t *testing.T) {
	w := world.New(world.DefaultConfig())
	s := New(w)
	index, low := s.Add(entity.TypeSword, world.NullPosition())
	if !low.Sim.IsSet(entity.FlagNonspatial) {
		t.Fatalf("entity with null position should be non-spatial")
	}
	if st := w.Stats(); st.Chunks != 0 {
		t.Fatalf("non-spatial entity created a chunk: %+v", st)
	}

	p := world.Position{ChunkX: 1}
	s.ChangeEntityLocation(index, p)
	if s.Low(index).Sim.IsSet(entity.FlagNonspatial) || !w.Contains(p, index) {
		t.Fatalf("entity not made spatial")
	}

	s.ChangeEntityLocation(index, world.NullPosition())
	if !s.Low(index).Sim.IsSet(entity.FlagNonspatial) || w.Contains(p, index) {
		t.Fatalf("entity not made non-spatial")
	}
}

func TestRestore(t *testing.T) {
	w := world.New(world.DefaultConfig())
	s := New(w)
	a := world.Position{ChunkX: 2, ChunkY: 1}
	s.Add(entity.TypeHero, a)
	s.Add(entity.TypeSword, world.NullPosition())
	s.Low(1).Sim.AddFlags(entity.FlagSimming)

	w2 := world.New(world.DefaultConfig())
	r := Restore(w2, s.Lows())
	if r.Count() != 2 {
		t.Fatalf("expected 2 entities, got %d", r.Count())
	}
	if !w2.Contains(a, 1) {
		t.Fatalf("restored entity not indexed")
	}
	if r.Low(1).Sim.IsSet(entity.FlagSimming) {
		t.Fatalf("simming flag survived restore")
	}
	if !r.Low(2).Sim.IsSet(entity.FlagNonspatial) {
		t.Fatalf("non-spatial entity restored as spatial")
	}
}

func TestLowOutOfRangePanics(t *testing.T) {
	s := New(world.New(world.DefaultConfig()))
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for storage index 0")
		}
	}()
	s.Low(0)
}
