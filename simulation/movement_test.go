package simulation

import (
	"fmt"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/entity"
)

var (
	regionHalfDim = mgl32.Vec3{10, 10, 1.5}
	unitDim       = mgl32.Vec3{1, 1, 1}
	heroDim       = mgl32.Vec3{0.5, 0.5, 1.2}
	stairDim      = mgl32.Vec3{1.4, 2.8, 3.3}
)

func addStair(f *fixture, at mgl32.Vec3) uint32 {
	index := f.add(entity.TypeStairwell, at, stairDim, entity.FlagCollides)
	s := &f.st.Low(index).Sim
	s.WalkableDim = mgl32.Vec2{stairDim.X(), stairDim.Y()}
	s.WalkableHeight = 3
	return index
}

func TestMoveFreeFall(t *testing.T) {
	f := newFixture(DefaultOptions())
	index := f.add(entity.TypeHero, mgl32.Vec3{}, heroDim, entity.FlagMoveable)

	r := f.begin(regionHalfDim, 0.1)
	e := r.Get(index)
	e.DP = mgl32.Vec3{5, 0, 0}
	r.MoveEntity(f.rules, e, 0.1, entity.DefaultMoveSpec(), mgl32.Vec3{})

	want := mgl32.Vec3{0.5, 0, -0.5 * 9.8 * 0.1 * 0.1}
	if !e.P.ApproxEqualThreshold(want, 1e-4) {
		t.Fatalf("unexpected position %v, want %v", e.P, want)
	}
	if e.DP.X() != 5 || e.DP.Z() != 0 {
		t.Fatalf("unexpected velocity %v", e.DP)
	}
	if !e.IsSet(entity.FlagZSupported) {
		t.Fatalf("entity should rest on its ground after the move")
	}
	f.end(r, nil)
}

func TestMoveSupportedIgnoresGravity(t *testing.T) {
	f := newFixture(DefaultOptions())
	index := f.add(entity.TypeHero, mgl32.Vec3{}, heroDim, entity.FlagMoveable|entity.FlagZSupported)

	r := f.begin(regionHalfDim, 0.1)
	e := r.Get(index)
	r.MoveEntity(f.rules, e, 0.1, entity.MoveSpec{UnitMaxAccelVector: true, Speed: 50, Drag: 8}, mgl32.Vec3{3, 4, 0})

	// The request is capped to unit length before scaling.
	wantDP := mgl32.Vec3{0.6, 0.8, 0}.Mul(50 * 0.1)
	if !e.DP.ApproxEqualThreshold(wantDP, 1e-4) {
		t.Fatalf("unexpected velocity %v, want %v", e.DP, wantDP)
	}
	if e.P.Z() != 0 {
		t.Fatalf("supported entity should not fall, z=%v", e.P.Z())
	}
	if want := math32.Atan2(0.8, 0.6); math32.Abs(e.FacingDirection-want) > 1e-5 {
		t.Fatalf("facing %v, want %v", e.FacingDirection, want)
	}
	f.end(r, nil)
}

func TestMoveHeadOnStopsAtContact(t *testing.T) {
	f := newFixture(DefaultOptions())
	a := f.add(entity.TypeWall, mgl32.Vec3{}, unitDim, entity.FlagCollides)
	b := f.add(entity.TypeHero, mgl32.Vec3{-1.3, 0, 0}, unitDim, entity.FlagCollides|entity.FlagMoveable|entity.FlagZSupported)

	r := f.begin(regionHalfDim, 0.1)
	e := r.Get(b)
	e.DP = mgl32.Vec3{5, 0, 0}
	r.MoveEntity(f.rules, e, 0.1, entity.DefaultMoveSpec(), mgl32.Vec3{})

	if math32.Abs(e.P.X()-(-1)) > 0.01 {
		t.Fatalf("mover should stop at the time of impact, x=%v", e.P.X())
	}
	if e.P.X() > -1 {
		t.Fatalf("mover passed the contact plane, x=%v", e.P.X())
	}
	if math32.Abs(e.DP.X()) > 1e-5 {
		t.Fatalf("normal velocity should be removed, dp=%v", e.DP)
	}
	if p := penetration(e, r.Get(a)); p > 0 {
		t.Fatalf("mover penetrates obstacle by %v", p)
	}
	f.end(r, nil)
}

func TestMoveRestitutionReflects(t *testing.T) {
	opts := DefaultOptions()
	opts.Restitution = 1
	f := newFixture(opts)
	f.add(entity.TypeWall, mgl32.Vec3{}, unitDim, entity.FlagCollides)
	b := f.add(entity.TypeHero, mgl32.Vec3{-1.3, 0, 0}, unitDim, entity.FlagCollides|entity.FlagMoveable|entity.FlagZSupported)

	r := f.begin(regionHalfDim, 0.1)
	e := r.Get(b)
	e.DP = mgl32.Vec3{5, 0, 0}
	r.MoveEntity(f.rules, e, 0.1, entity.DefaultMoveSpec(), mgl32.Vec3{})

	if math32.Abs(e.DP.X()+5) > 1e-4 {
		t.Fatalf("full restitution should reflect the velocity, dp=%v", e.DP)
	}
	if e.P.X() >= -1 {
		t.Fatalf("reflected mover should move back from the contact, x=%v", e.P.X())
	}
	f.end(r, nil)
}

func TestMoveSlidesAlongWall(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.add(entity.TypeWall, mgl32.Vec3{}, unitDim, entity.FlagCollides)
	b := f.add(entity.TypeHero, mgl32.Vec3{-1.2, -0.2, 0}, unitDim, entity.FlagCollides|entity.FlagMoveable|entity.FlagZSupported)

	r := f.begin(regionHalfDim, 0.1)
	e := r.Get(b)
	e.DP = mgl32.Vec3{4, 4, 0}
	r.MoveEntity(f.rules, e, 0.1, entity.DefaultMoveSpec(), mgl32.Vec3{})

	if e.P.X() > -1 {
		t.Fatalf("mover passed the wall, x=%v", e.P.X())
	}
	if math32.Abs(e.P.Y()-0.2) > 1e-3 {
		t.Fatalf("mover should keep its tangential displacement, y=%v", e.P.Y())
	}
	if math32.Abs(e.DP.X()) > 1e-5 || e.DP.Y() != 4 {
		t.Fatalf("unexpected velocity after sliding %v", e.DP)
	}
	f.end(r, nil)
}

func TestMoveNeverInterpenetrates(t *testing.T) {
	starts := []mgl32.Vec3{
		{-1.4, 0, 0}, {1.4, 0.3, 0}, {0, -1.45, 0}, {0.2, 1.3, 0},
		{-1.2, -1.2, 0}, {1.1, 1.3, 0}, {-1.05, 0.9, 0},
	}
	speeds := []float32{0.5, 2, 4.9}
	for _, start := range starts {
		for _, speed := range speeds {
			t.Run(fmt.Sprintf("%v@%v", start, speed), func(t *testing.T) {
				f := newFixture(DefaultOptions())
				a := f.add(entity.TypeWall, mgl32.Vec3{}, unitDim, entity.FlagCollides)
				b := f.add(entity.TypeHero, start, unitDim, entity.FlagCollides|entity.FlagMoveable|entity.FlagZSupported)

				r := f.begin(regionHalfDim, 0.1)
				e := r.Get(b)
				// Head straight for the obstacle with a step below half the mover's extent.
				e.DP = start.Mul(-1).Normalize().Mul(speed)
				for tick := 0; tick < 10; tick++ {
					r.MoveEntity(f.rules, e, 0.1, entity.DefaultMoveSpec(), mgl32.Vec3{})
					if p := penetration(e, r.Get(a)); p > 1e-4 {
						t.Fatalf("tick %d: mover at %v penetrates obstacle by %v", tick, e.P, p)
					}
				}
				f.end(r, nil)
			})
		}
	}
}

func TestMoveDistanceLimit(t *testing.T) {
	f := newFixture(DefaultOptions())
	index := f.add(entity.TypeSword, mgl32.Vec3{}, mgl32.Vec3{0.5, 0.5, 0.1}, entity.FlagCollides|entity.FlagMoveable|entity.FlagZSupported)
	f.st.Low(index).Sim.DistanceLimit = 1

	r := f.begin(regionHalfDim, 0.5)
	e := r.Get(index)
	e.DP = mgl32.Vec3{5, 0, 0}
	r.MoveEntity(f.rules, e, 0.5, entity.MoveSpec{}, mgl32.Vec3{})

	if math32.Abs(e.P.X()-1) > 1e-4 {
		t.Fatalf("limited mover should stop after its remaining distance, x=%v", e.P.X())
	}
	if e.DistanceLimit != 0 {
		t.Fatalf("distance limit should be spent, got %v", e.DistanceLimit)
	}
	f.end(r, nil)
}

func TestSwordPassesThroughOnce(t *testing.T) {
	f := newFixture(DefaultOptions())
	monstar := f.add(entity.TypeMonstar, mgl32.Vec3{2, 0, 0}, unitDim, entity.FlagCollides)
	f.st.Low(monstar).Sim.HitPointMax = 3
	sword := f.add(entity.TypeSword, mgl32.Vec3{}, mgl32.Vec3{0.5, 0.5, 0.1}, entity.FlagCollides|entity.FlagMoveable|entity.FlagZSupported)
	f.st.Low(sword).Sim.DistanceLimit = 5

	r := f.begin(regionHalfDim, 0.5)
	e := r.Get(sword)
	e.DP = mgl32.Vec3{5, 0, 0}
	r.MoveEntity(f.rules, e, 0.5, entity.MoveSpec{}, mgl32.Vec3{})

	if math32.Abs(e.P.X()-2.5) > 1e-3 {
		t.Fatalf("sword should pass through the monstar, x=%v", e.P.X())
	}
	if got := r.Get(monstar).HitPointMax; got != 2 {
		t.Fatalf("monstar should lose one hit point, has %d", got)
	}
	if can, ok := f.rules.Lookup(sword, monstar); !ok || can {
		t.Fatalf("sword and monstar should no longer collide")
	}
	if math32.Abs(e.DistanceLimit-2.5) > 1e-3 {
		t.Fatalf("unexpected remaining distance %v", e.DistanceLimit)
	}

	// Flying back through the monstar must not hit it a second time.
	e.DP = mgl32.Vec3{-5, 0, 0}
	r.MoveEntity(f.rules, e, 0.5, entity.MoveSpec{}, mgl32.Vec3{})
	if got := r.Get(monstar).HitPointMax; got != 2 {
		t.Fatalf("monstar hit twice by the same sword, has %d", got)
	}
	if e.DistanceLimit != 0 || math32.Abs(e.P.X()) > 1e-3 {
		t.Fatalf("sword should spend its distance on the way back, x=%v limit=%v", e.P.X(), e.DistanceLimit)
	}

	f.rules.ClearFor(sword)
	if _, ok := f.rules.Lookup(sword, monstar); ok {
		t.Fatalf("rules for the sword should be cleared")
	}
	f.end(r, nil)
}

func TestMoveOntoStairsFromBelow(t *testing.T) {
	f := newFixture(DefaultOptions())
	addStair(f, mgl32.Vec3{})
	hero := f.add(entity.TypeHero, mgl32.Vec3{0, -2, 0}, heroDim, entity.FlagCollides|entity.FlagMoveable|entity.FlagZSupported)

	r := f.begin(regionHalfDim, 0.1)
	e := r.Get(hero)
	e.DP = mgl32.Vec3{0, 5, 0}
	r.MoveEntity(f.rules, e, 0.1, entity.DefaultMoveSpec(), mgl32.Vec3{})

	if math32.Abs(e.P.Y()-(-1.5)) > 1e-3 {
		t.Fatalf("stairs should not block a mover at their foot, y=%v", e.P.Y())
	}
	if e.DP.Y() != 5 {
		t.Fatalf("velocity should be untouched, dp=%v", e.DP)
	}
	f.end(r, nil)
}

func TestMoveIntoStairsFromSideBlocked(t *testing.T) {
	f := newFixture(DefaultOptions())
	addStair(f, mgl32.Vec3{})
	hero := f.add(entity.TypeHero, mgl32.Vec3{-1.3, 0, 0}, heroDim, entity.FlagCollides|entity.FlagMoveable|entity.FlagZSupported)

	r := f.begin(regionHalfDim, 0.1)
	e := r.Get(hero)
	e.DP = mgl32.Vec3{5, 0, 0}
	r.MoveEntity(f.rules, e, 0.1, entity.DefaultMoveSpec(), mgl32.Vec3{})

	if e.P.X() > -0.95 || e.P.X() < -0.96 {
		t.Fatalf("side of the stairs should block the mover, x=%v", e.P.X())
	}
	if math32.Abs(e.DP.X()) > 1e-5 {
		t.Fatalf("normal velocity should be removed, dp=%v", e.DP)
	}
	f.end(r, nil)
}

func TestMoveClimbsStairs(t *testing.T) {
	f := newFixture(DefaultOptions())
	addStair(f, mgl32.Vec3{})
	hero := f.add(entity.TypeHero, mgl32.Vec3{0, 0, 1.5}, heroDim, entity.FlagCollides|entity.FlagMoveable|entity.FlagZSupported)

	r := f.begin(regionHalfDim, 0.1)
	e := r.Get(hero)
	e.DP = mgl32.Vec3{0, 1, 0}
	r.MoveEntity(f.rules, e, 0.1, entity.DefaultMoveSpec(), mgl32.Vec3{})

	want := 1.5 + 0.1/2.8*3
	if math32.Abs(e.P.Z()-float32(want)) > 1e-3 {
		t.Fatalf("mover should follow the stair surface, z=%v want %v", e.P.Z(), want)
	}
	if !e.IsSet(entity.FlagZSupported) {
		t.Fatalf("mover on stairs should be supported")
	}
	f.end(r, nil)
}

func TestMoveConfinedToTraversable(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.add(entity.TypeSpace, mgl32.Vec3{}, mgl32.Vec3{10, 10, 3}, entity.FlagTraversable)
	hero := f.add(entity.TypeHero, mgl32.Vec3{5, 0, 0}, unitDim, entity.FlagCollides|entity.FlagMoveable|entity.FlagZSupported)

	r := f.begin(regionHalfDim, 0.1)
	e := r.Get(hero)
	e.DP = mgl32.Vec3{10, 2, 0}
	r.MoveEntity(f.rules, e, 0.1, entity.DefaultMoveSpec(), mgl32.Vec3{})

	if e.P.X() >= 5.5 || e.P.X() < 5.49 {
		t.Fatalf("mover should stop at the edge of its space, x=%v", e.P.X())
	}
	if math32.Abs(e.P.Y()-0.2) > 1e-3 {
		t.Fatalf("mover should slide along the edge of its space, y=%v", e.P.Y())
	}
	f.end(r, nil)
}

func TestMoveBetweenAdjacentTraversables(t *testing.T) {
	f := newFixture(DefaultOptions())
	f.add(entity.TypeSpace, mgl32.Vec3{}, mgl32.Vec3{10, 10, 3}, entity.FlagTraversable)
	f.add(entity.TypeSpace, mgl32.Vec3{10, 0, 0}, mgl32.Vec3{10, 10, 3}, entity.FlagTraversable)
	hero := f.add(entity.TypeHero, mgl32.Vec3{5, 0, 0}, unitDim, entity.FlagCollides|entity.FlagMoveable|entity.FlagZSupported)

	r := f.begin(regionHalfDim, 0.1)
	e := r.Get(hero)
	e.DP = mgl32.Vec3{10, 0, 0}
	r.MoveEntity(f.rules, e, 0.1, entity.DefaultMoveSpec(), mgl32.Vec3{})

	if math32.Abs(e.P.X()-6) > 1e-3 {
		t.Fatalf("mover should cross into the neighbouring space, x=%v", e.P.X())
	}
	f.end(r, nil)
}

func TestMoveNonSpatialPanics(t *testing.T) {
	f := newFixture(DefaultOptions())
	index := f.add(entity.TypeHero, mgl32.Vec3{}, heroDim, entity.FlagMoveable)
	r := f.begin(regionHalfDim, 0.1)
	e := r.Get(index)
	e.MakeNonSpatial()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic when moving a non-spatial entity")
		}
	}()
	r.MoveEntity(f.rules, e, 0.1, entity.DefaultMoveSpec(), mgl32.Vec3{})
}
