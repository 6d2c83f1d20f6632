package scene

import "github.com/achilleasa/cpupath/types"

// A Surface is implemented by anything a ray can intersect.
type Surface interface {
	// Report the nearest intersection with r whose parametric distance lies
	// in the open interval (tMin, tMax).
	Hit(r types.Ray, tMin, tMax float64) (HitRecord, bool)
}

// Describes a ray/surface intersection.
type HitRecord struct {
	Point types.Vec3

	// The surface normal; always oriented against the incoming ray.
	Normal types.Vec3

	// The parametric distance along the ray.
	T float64

	// True if the ray struck the outside of the surface.
	FrontFace bool

	// A copy of the struck surface's material.
	Material Material
}

// Orient the record normal so it faces against the ray direction.
func (rec *HitRecord) SetFaceNormal(r types.Ray, outwardNormal types.Vec3) {
	rec.FrontFace = r.Dir.Dot(outwardNormal) < 0
	if rec.FrontFace {
		rec.Normal = outwardNormal
	} else {
		rec.Normal = outwardNormal.Neg()
	}
}
