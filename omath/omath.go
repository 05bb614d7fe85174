package omath

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// Tau is a full turn in radians.
const Tau = 2 * math32.Pi

// Hadamard returns the component-wise product of a and b.
func Hadamard(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Square returns v*v.
func Square(v float32) float32 {
	return v * v
}

// Clamp01 clamps v to the [0, 1] range.
func Clamp01(v float32) float32 {
	return math32.Min(math32.Max(v, 0), 1)
}

// Clamp01Vec3 clamps every component of v to the [0, 1] range.
func Clamp01Vec3(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{Clamp01(v[0]), Clamp01(v[1]), Clamp01(v[2])}
}

// SafeRatio0 divides num by div, returning zero when div is zero.
func SafeRatio0(num, div float32) float32 {
	if div == 0 {
		return 0
	}
	return num / div
}

// RectCenterDim returns a box of the given full dimensions centred on center.
func RectCenterDim(center, dim mgl32.Vec3) cube.BBox {
	return RectCenterHalfDim(center, dim.Mul(0.5))
}

// RectCenterHalfDim returns a box of the given half dimensions centred on center.
func RectCenterHalfDim(center, halfDim mgl32.Vec3) cube.BBox {
	min, max := center.Sub(halfDim), center.Add(halfDim)
	return cube.Box(min[0], min[1], min[2], max[0], max[1], max[2])
}

// Intersects reports whether a and b overlap, treating touching faces as overlapping.
func Intersects(a, b cube.BBox) bool {
	aMin, aMax := a.Min(), a.Max()
	bMin, bMax := b.Min(), b.Max()
	return !(bMax[0] < aMin[0] || bMin[0] > aMax[0] ||
		bMax[1] < aMin[1] || bMin[1] > aMax[1] ||
		bMax[2] < aMin[2] || bMin[2] > aMax[2])
}

// InRect reports whether p lies in r. The minimum faces are inclusive and the maximum faces exclusive, so
// that space tiled by adjacent boxes assigns every point to exactly one of them.
func InRect(r cube.BBox, p mgl32.Vec3) bool {
	min, max := r.Min(), r.Max()
	return p[0] >= min[0] && p[0] < max[0] &&
		p[1] >= min[1] && p[1] < max[1] &&
		p[2] >= min[2] && p[2] < max[2]
}

// Barycentric returns where p lies within r on each axis, as a fraction of r's extent on that axis. A
// degenerate axis yields zero.
func Barycentric(r cube.BBox, p mgl32.Vec3) mgl32.Vec3 {
	min, max := r.Min(), r.Max()
	return mgl32.Vec3{
		SafeRatio0(p[0]-min[0], max[0]-min[0]),
		SafeRatio0(p[1]-min[1], max[1]-min[1]),
		SafeRatio0(p[2]-min[2], max[2]-min[2]),
	}
}

// NormalizeAngle wraps rad into [0, 2π).
func NormalizeAngle(rad float32) float32 {
	rad = math32.Mod(rad, Tau)
	if rad < 0 {
		rad += Tau
	}
	if rad >= Tau {
		rad = 0
	}
	return rad
}
