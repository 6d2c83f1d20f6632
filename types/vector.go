package types

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// Components with a magnitude below this value are treated as zero by NearZero.
const nearZeroEpsilon = 1e-8

// A 3 component vector. It doubles as a linear, unclamped RGB accumulator
// when used for color.
type Vec3 f64.Vec3

// Define a 3 component vector.
func XYZ(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Define a color from its linear components.
func RGB(r, g, b float64) Vec3 {
	return Vec3{r, g, b}
}

// Component accessors.
func (v Vec3) X() float64 { return v[0] }
func (v Vec3) Y() float64 { return v[1] }
func (v Vec3) Z() float64 { return v[2] }

// Add a vector.
func (v Vec3) Add(v2 Vec3) Vec3 {
	return Vec3{v[0] + v2[0], v[1] + v2[1], v[2] + v2[2]}
}

// Subtract a vector.
func (v Vec3) Sub(v2 Vec3) Vec3 {
	return Vec3{v[0] - v2[0], v[1] - v2[1], v[2] - v2[2]}
}

// Negate all components.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

// Multiply a 3 component vector with a scalar.
func (v Vec3) Mul(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Multiply two vectors component-wise.
func (v Vec3) MulVec(v2 Vec3) Vec3 {
	return Vec3{v[0] * v2[0], v[1] * v2[1], v[2] * v2[2]}
}

// Divide all components by a scalar.
func (v Vec3) Div(s float64) Vec3 {
	return v.Mul(1.0 / s)
}

// Calculate dot product of 2 vectors
func (v Vec3) Dot(v2 Vec3) float64 {
	return v[0]*v2[0] + v[1]*v2[1] + v[2]*v2[2]
}

// Calculate cross product of 2 vectors.
func (v Vec3) Cross(v2 Vec3) Vec3 {
	return Vec3{v[1]*v2[2] - v[2]*v2[1], v[2]*v2[0] - v[0]*v2[2], v[0]*v2[1] - v[1]*v2[0]}
}

// Get squared vector length.
func (v Vec3) LenSq() float64 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

// Get 3 component vector length.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.LenSq())
}

// Normalize 3 component vector. A zero length vector yields the zero vector;
// callers are expected to never normalize one.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Mul(1.0 / l)
}

// Returns true if all components are close to zero.
func (v Vec3) NearZero() bool {
	return math.Abs(v[0]) < nearZeroEpsilon &&
		math.Abs(v[1]) < nearZeroEpsilon &&
		math.Abs(v[2]) < nearZeroEpsilon
}

// Reflect v around normal n.
func (v Vec3) Reflect(n Vec3) Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

// Refract the unit vector v through a surface with unit normal n using Snell's
// law. The etaRatio argument is the ratio of the incident to the transmitted
// refractive index.
func (v Vec3) Refract(n Vec3, etaRatio float64) Vec3 {
	cosTheta := math.Min(v.Neg().Dot(n), 1.0)
	outPerp := v.Add(n.Mul(cosTheta)).Mul(etaRatio)
	outParallel := n.Mul(-math.Sqrt(math.Abs(1.0 - outPerp.LenSq())))
	return outPerp.Add(outParallel)
}

// Linear interpolation between v and v2.
func (v Vec3) Lerp(v2 Vec3, t float64) Vec3 {
	return v.Mul(1 - t).Add(v2.Mul(t))
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%3.3f, %3.3f, %3.3f)", v[0], v[1], v[2])
}
