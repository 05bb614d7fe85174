package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/entity"
	"github.com/oomph-ac/simregion/omath"
	"github.com/oomph-ac/simregion/simulation"
)

// Input is the player's request for one tick.
type Input struct {
	// Move is the direction the controlled hero accelerates in. Lengths above one are capped.
	Move mgl32.Vec2
	// Sword is the direction to throw the hero's sword in, or zero to keep it.
	Sword mgl32.Vec2
}

// updateEntity runs the behaviour of e for one tick and moves it. It reports whether e was moved.
func (g *Game) updateEntity(r *simulation.Region, e *entity.Sim, in Input, dt float32) bool {
	spec := entity.DefaultMoveSpec()
	var ddP mgl32.Vec3

	switch e.Type {
	case entity.TypeHero:
		spec = entity.MoveSpec{UnitMaxAccelVector: true, Speed: HeroSpeed, Drag: HeroDrag}
		if e.StorageIndex == g.camera.follow {
			ddP = mgl32.Vec3{in.Move.X(), in.Move.Y(), 0}
			if in.Sword.X() != 0 || in.Sword.Y() != 0 {
				g.throwSword(r, e, in.Sword)
			}
		}
	case entity.TypeSword:
		spec = entity.MoveSpec{}
		if e.DistanceLimit == 0 {
			g.rules.ClearFor(e.StorageIndex)
			e.MakeNonSpatial()
		}
	case entity.TypeFamiliar:
		ddP, spec = seekHero(r, e)
		e.TBob += dt
		if e.TBob > omath.Tau {
			e.TBob -= omath.Tau
		}
	case entity.TypeMonstar:
		spec = entity.MoveSpec{Speed: 0, Drag: HeroDrag}
	}

	if e.IsSet(entity.FlagNonspatial) || !e.IsSet(entity.FlagMoveable) {
		return false
	}
	r.MoveEntity(g.rules, e, dt, spec, ddP)
	return true
}

// throwSword launches the hero's sword from its position if the hero is still holding it. The sword
// ignores its thrower for the rest of its flight.
func (g *Game) throwSword(r *simulation.Region, hero *entity.Sim, dir mgl32.Vec2) {
	sword := r.Get(hero.Sword.Index)
	if sword == nil || !sword.IsSet(entity.FlagNonspatial) {
		return
	}
	d := mgl32.Vec3{dir.X(), dir.Y(), 0}
	if d.LenSqr() > 1 {
		d = d.Normalize()
	}
	sword.DistanceLimit = SwordRange
	sword.MakeSpatial(hero.P, hero.DP.Add(d.Mul(SwordThrowSpeed)))
	g.rules.Add(sword.StorageIndex, hero.StorageIndex, false)
}

// seekHero returns the acceleration that takes a familiar towards the closest hero within its seek
// radius. Familiars stop accelerating once they are close enough.
func seekHero(r *simulation.Region, e *entity.Sim) (mgl32.Vec3, entity.MoveSpec) {
	spec := entity.MoveSpec{UnitMaxAccelVector: true, Speed: FamiliarSpeed, Drag: FamiliarDrag}

	var closest *entity.Sim
	best := omath.Square(FamiliarSeekRadius)
	entities := r.Entities()
	for i := range entities {
		test := &entities[i]
		if test.Type != entity.TypeHero || test.IsSet(entity.FlagNonspatial) {
			continue
		}
		if d := test.P.Sub(e.P).LenSqr(); d < best {
			best = d
			closest = test
		}
	}
	if closest == nil || best <= omath.Square(FamiliarStopRadius) {
		return mgl32.Vec3{}, spec
	}
	return closest.P.Sub(e.P).Mul(FamiliarAcceleration / math32.Sqrt(best)), spec
}
