package simulation

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/assert"
	"github.com/oomph-ac/simregion/entity"
	"github.com/oomph-ac/simregion/omath"
	"go.uber.org/zap"
)

const (
	// tEpsilon is how far, as a fraction of the step, movers are held back from a contact.
	tEpsilon = 0.001
	// overlapEpsilon is the slack used when deciding whether a mover is inside a traversable volume.
	overlapEpsilon = 0.001
	// exitProbe is how far past a traversable boundary the solver looks for a neighbouring traversable.
	exitProbe = 0.01
	// unlimitedDistance is the travel budget of entities without a distance limit.
	unlimitedDistance = 10000
	// distanceSnap is the remaining distance below which a limited entity counts as spent.
	distanceSnap = 1e-4
)

// testWall is one face of a Minkowski box, expressed along the axis it is perpendicular to (x) and the
// axis it spans (y).
type testWall struct {
	x, relX, relY, deltaX, deltaY, minY, maxY float32
	normal                                    mgl32.Vec3
}

// walls returns the four vertical faces of the Minkowski box spanning minC to maxC, for a mover at rel
// moving by delta.
func walls(minC, maxC, rel, delta mgl32.Vec3) [4]testWall {
	return [4]testWall{
		{minC[0], rel[0], rel[1], delta[0], delta[1], minC[1], maxC[1], mgl32.Vec3{-1, 0, 0}},
		{maxC[0], rel[0], rel[1], delta[0], delta[1], minC[1], maxC[1], mgl32.Vec3{1, 0, 0}},
		{minC[1], rel[1], rel[0], delta[1], delta[0], minC[0], maxC[0], mgl32.Vec3{0, -1, 0}},
		{maxC[1], rel[1], rel[0], delta[1], delta[0], minC[0], maxC[0], mgl32.Vec3{0, 1, 0}},
	}
}

// minkowski returns the box swept out by vol around testVol, and the position of vol's centre relative to
// testVol's centre. ok is false if the two volumes do not share any height.
func minkowski(mover *entity.Sim, vol entity.Volume, test *entity.Sim, testVol entity.Volume) (minC, maxC, rel mgl32.Vec3, ok bool) {
	diameter := testVol.Dim.Add(vol.Dim)
	minC, maxC = diameter.Mul(-0.5), diameter.Mul(0.5)
	rel = mover.P.Add(vol.Offset).Sub(test.P.Add(testVol.Offset))
	return minC, maxC, rel, rel[2] >= minC[2] && rel[2] < maxC[2]
}

// moveContext is the per-iteration search state of the solver: the earliest solid contact (tMin) and the
// earliest exit from a confining traversable (tMax), as fractions of the step.
type moveContext struct {
	region *Region
	rules  *Rules
	mover  *entity.Sim

	tMin, tMax           float32
	normalMin, normalMax mgl32.Vec3
	hitMin, hitMax       *entity.Sim
}

var ctxPool = sync.Pool{
	New: func() any {
		return &moveContext{}
	},
}

func newCtx(r *Region, rules *Rules, mover *entity.Sim) *moveContext {
	ctx := ctxPool.Get().(*moveContext)
	ctx.region = r
	ctx.rules = rules
	ctx.mover = mover
	return ctx
}

func putCtx(ctx *moveContext) {
	ctx.region, ctx.rules, ctx.mover = nil, nil, nil
	ctx.hitMin, ctx.hitMax = nil, nil
	ctxPool.Put(ctx)
}

// begin resets the search for a new iteration.
func (ctx *moveContext) begin(tMin float32) {
	ctx.tMin, ctx.tMax = tMin, 1
	ctx.normalMin, ctx.normalMax = mgl32.Vec3{}, mgl32.Vec3{}
	ctx.hitMin, ctx.hitMax = nil, nil
}

// testSolid finds the earliest time the mover touches test, and records it if it is earlier than any
// contact found so far and test does not let the mover step onto it.
func (ctx *moveContext) testSolid(test *entity.Sim, delta mgl32.Vec3) {
	mover := ctx.mover
	for _, vol := range mover.Collision.Volumes {
		for _, testVol := range test.Collision.Volumes {
			minC, maxC, rel, ok := minkowski(mover, vol, test, testVol)
			if !ok {
				continue
			}

			tMinTest := ctx.tMin
			var normal mgl32.Vec3
			var hit bool
			for _, w := range walls(minC, maxC, rel, delta) {
				if w.deltaX == 0 {
					continue
				}
				tResult := (w.x - w.relX) / w.deltaX
				y := w.relY + tResult*w.deltaY
				if tResult >= 0 && tMinTest > tResult && y >= w.minY && y <= w.maxY {
					tMinTest = math32.Max(0, tResult-tEpsilon)
					normal = w.normal
					hit = true
				}
			}
			if hit && ctx.region.speculativeCollide(mover, test, mover.P.Add(delta.Mul(tMinTest))) {
				ctx.tMin = tMinTest
				ctx.normalMin = normal
				ctx.hitMin = test
			}
		}
	}
}

// testTraversable finds the earliest time the mover would leave test, which it currently stands in, and
// records it if it is earlier than any exit found so far. Exits into a neighbouring traversable are free.
func (ctx *moveContext) testTraversable(test *entity.Sim, delta mgl32.Vec3) {
	mover := ctx.mover
	for _, vol := range mover.Collision.Volumes {
		for _, testVol := range test.Collision.Volumes {
			minC, maxC, rel, ok := minkowski(mover, vol, test, testVol)
			if !ok {
				continue
			}

			tExit := float32(math32.MaxFloat32)
			var normal mgl32.Vec3
			var hit bool
			for _, w := range walls(minC, maxC, rel, delta) {
				if w.deltaX == 0 || w.normal.Dot(delta) <= 0 {
					continue
				}
				tResult := (w.x - w.relX) / w.deltaX
				y := w.relY + tResult*w.deltaY
				if tResult >= 0 && tResult < tExit && y >= w.minY && y <= w.maxY {
					tExit = tResult
					normal = w.normal
					hit = true
				}
			}
			if !hit {
				continue
			}
			tMaxTest := math32.Max(0, tExit-tEpsilon)
			if tMaxTest >= ctx.tMax {
				continue
			}
			probe := mover.P.Add(vol.Offset).Add(delta.Mul(tExit)).Add(normal.Mul(exitProbe))
			if ctx.insideOtherTraversable(vol, probe, test) {
				continue
			}
			ctx.tMax = tMaxTest
			ctx.normalMax = normal
			ctx.hitMax = test
		}
	}
}

// insideOtherTraversable reports whether a mover volume centred at p would lie inside a traversable
// other than except.
func (ctx *moveContext) insideOtherTraversable(vol entity.Volume, p mgl32.Vec3, except *entity.Sim) bool {
	entities := ctx.region.entities
	for i := range entities {
		t := &entities[i]
		if t.StorageIndex == except.StorageIndex || t.StorageIndex == ctx.mover.StorageIndex {
			continue
		}
		if !t.IsSet(entity.FlagTraversable) || t.IsSet(entity.FlagNonspatial) || t.Collision == nil {
			continue
		}
		for _, testVol := range t.Collision.Volumes {
			box := omath.RectCenterDim(t.P.Add(testVol.Offset), testVol.Dim.Add(vol.Dim))
			min, max := box.Min(), box.Max()
			if p[0] >= min[0] && p[0] <= max[0] && p[1] >= min[1] && p[1] <= max[1] && p[2] >= min[2] && p[2] < max[2] {
				return true
			}
		}
	}
	return false
}

// MoveEntity advances e through the region for dt seconds under the acceleration ddP, shaped by spec. The
// move is split into at most Options.MaxIterations straight segments: each ends at the first contact,
// after which the remaining displacement and the velocity lose their component along the contact normal.
// Movers are never advanced into a solid entity they can collide with, may step onto stairwells whose
// ground is within a step of their own, and stay inside traversables they stand in. Once movement ends,
// e is snapped to the ground if it reached it, and its facing direction follows its velocity.
func (r *Region) MoveEntity(rules *Rules, e *entity.Sim, dt float32, spec entity.MoveSpec, ddP mgl32.Vec3) {
	assert.IsTrue(!e.IsSet(entity.FlagNonspatial), "cannot move non-spatial entity %d", e.StorageIndex)
	opts := &r.arena.opts

	if spec.UnitMaxAccelVector {
		if l := ddP.LenSqr(); l > 1 {
			ddP = ddP.Mul(1 / math32.Sqrt(l))
		}
	}
	ddP = ddP.Mul(spec.Speed)

	drag := e.DP.Mul(-spec.Drag)
	drag[2] = 0
	ddP = ddP.Add(drag)
	if !e.IsSet(entity.FlagZSupported) {
		ddP = ddP.Add(mgl32.Vec3{0, 0, -opts.Gravity})
	}

	delta := ddP.Mul(0.5 * dt * dt).Add(e.DP.Mul(dt))
	e.DP = ddP.Mul(dt).Add(e.DP)
	if l := e.DP.LenSqr(); l > omath.Square(r.MaxEntityVelocity) {
		e.DP = e.DP.Mul(r.MaxEntityVelocity / math32.Sqrt(l))
	}
	if maxStep := r.MaxEntityVelocity * dt; delta.LenSqr() > omath.Square(maxStep) {
		delta = delta.Normalize().Mul(maxStep)
	}

	distanceRemaining := e.DistanceLimit
	if distanceRemaining == 0 {
		distanceRemaining = unlimitedDistance
	}

	ctx := newCtx(r, rules, e)
	defer putCtx(ctx)

	var iterations int
	for iterations = 0; iterations < opts.MaxIterations; iterations++ {
		deltaLen := delta.Len()
		if deltaLen <= 0 {
			break
		}

		tMin := float32(1)
		if deltaLen > distanceRemaining {
			tMin = distanceRemaining / deltaLen
		}
		ctx.begin(tMin)
		desired := e.P.Add(delta)

		if e.Collision != nil {
			for i := range r.entities {
				test := &r.entities[i]
				if test.StorageIndex == e.StorageIndex || test.Collision == nil {
					continue
				}
				if test.IsSet(entity.FlagTraversable) && entitiesOverlap(e, test, mgl32.Vec3{overlapEpsilon, overlapEpsilon, overlapEpsilon}) {
					if !rules.suppressed(e.StorageIndex, test.StorageIndex) {
						ctx.testTraversable(test, delta)
					}
					continue
				}
				if rules.CanCollide(e, test) {
					ctx.testSolid(test, delta)
				}
			}
		}

		tStop, hit, normal := ctx.tMin, ctx.hitMin, ctx.normalMin
		if ctx.tMax < tStop {
			tStop, hit, normal = ctx.tMax, ctx.hitMax, ctx.normalMax
		}

		e.P = e.P.Add(delta.Mul(tStop))
		distanceRemaining -= tStop * deltaLen
		if hit == nil {
			break
		}

		delta = desired.Sub(e.P)
		if r.handleCollision(rules, e, hit) {
			k := 1 + opts.Restitution
			delta = delta.Sub(normal.Mul(k * delta.Dot(normal)))
			e.DP = e.DP.Sub(normal.Mul(k * e.DP.Dot(normal)))
		}
	}

	ground := e.P.Z()
	for i := range r.entities {
		test := &r.entities[i]
		if canOverlap(e, test) && entitiesOverlap(e, test, mgl32.Vec3{}) {
			ground = r.handleOverlap(e, test, ground)
		}
	}

	if e.P.Z() <= ground || (e.IsSet(entity.FlagZSupported) && e.DP.Z() == 0) {
		e.P[2] = ground
		e.DP[2] = 0
		e.AddFlags(entity.FlagZSupported)
	} else {
		e.ClearFlags(entity.FlagZSupported)
	}

	if e.DistanceLimit != 0 {
		if distanceRemaining < distanceSnap {
			distanceRemaining = 0
		}
		e.DistanceLimit = distanceRemaining
	}

	if e.DP.X() != 0 || e.DP.Y() != 0 {
		e.FacingDirection = omath.NormalizeAngle(math32.Atan2(e.DP.Y(), e.DP.X()))
	}

	if opts.DebugSolver {
		opts.Log.Debug("moved entity",
			zap.Uint32("index", e.StorageIndex),
			zap.Stringer("type", e.Type),
			zap.Int("iterations", iterations),
			zap.Float32s("p", e.P[:]),
			zap.Float32s("dp", e.DP[:]),
			zap.Bool("supported", e.IsSet(entity.FlagZSupported)),
		)
	}
}
