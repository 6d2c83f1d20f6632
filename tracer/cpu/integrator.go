package cpu

import (
	"math"
	"math/rand"

	"github.com/achilleasa/cpupath/scene"
	"github.com/achilleasa/cpupath/types"
)

// Minimum parametric distance for secondary hits. Suppresses self
// intersections caused by floating point error at the ray origin.
const shadowAcneEpsilon = 0.001

var (
	black   = types.RGB(0, 0, 0)
	white   = types.RGB(1, 1, 1)
	skyBlue = types.RGB(0.5, 0.7, 1.0)
)

// Anything that can report its closest ray intersection.
type Hittable interface {
	Hit(r types.Ray, tMin, tMax float64) (scene.HitRecord, bool)
}

// Estimate the radiance arriving along r. Every scatter event multiplies the
// path throughput by the material attenuation; the path ends when it escapes
// to the background, is absorbed, or the bounce budget is exhausted.
//
// A depth below zero yields black. A depth of N permits N+1 scatter events.
func RayColor(rng *rand.Rand, r types.Ray, world Hittable, depth int) types.Vec3 {
	throughput := white
	for ; depth >= 0; depth-- {
		rec, hit := world.Hit(r, shadowAcneEpsilon, math.Inf(1))
		if !hit {
			return throughput.MulVec(Background(r))
		}

		attenuation, scattered, ok := rec.Material.Scatter(rng, r, &rec)
		if !ok {
			return black
		}
		throughput = throughput.MulVec(attenuation)
		r = scattered
	}

	return black
}

// The background is a vertical white to sky blue gradient.
func Background(r types.Ray) types.Vec3 {
	t := 0.5 * (r.Dir.Normalize().Y() + 1.0)
	return white.Lerp(skyBlue, t)
}
