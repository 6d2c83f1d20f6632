package scene

import (
	"math"

	"github.com/achilleasa/cpupath/types"
)

// A sphere surface. A negative radius flips the outward normal so the sphere
// acts as an inward facing shell; this is how hollow dielectrics are modeled.
type Sphere struct {
	Center   types.Vec3
	Radius   float64
	Material Material
}

// Create new sphere.
func NewSphere(center types.Vec3, radius float64, material Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: material,
	}
}

// Intersect the sphere by solving |O + tD - C|^2 = r^2 for t.
func (s *Sphere) Hit(r types.Ray, tMin, tMax float64) (HitRecord, bool) {
	oc := r.Origin.Sub(s.Center)
	a := r.Dir.LenSq()
	if a == 0 {
		return HitRecord{}, false
	}
	halfB := oc.Dot(r.Dir)
	c := oc.LenSq() - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return HitRecord{}, false
	}
	sqrtd := math.Sqrt(discriminant)

	// Try the nearest root first
	root := (-halfB - sqrtd) / a
	if !(tMin < root && root < tMax) {
		root = (-halfB + sqrtd) / a
		if !(tMin < root && root < tMax) {
			return HitRecord{}, false
		}
	}

	rec := HitRecord{
		T:        root,
		Point:    r.At(root),
		Material: s.Material,
	}
	rec.SetFaceNormal(r, rec.Point.Sub(s.Center).Div(s.Radius))
	return rec, true
}

// Get the sphere bounding box.
func (s *Sphere) BBox() [2]types.Vec3 {
	extent := math.Abs(s.Radius) + bboxPadding
	offset := types.XYZ(extent, extent, extent)
	return [2]types.Vec3{s.Center.Sub(offset), s.Center.Add(offset)}
}

// Get the point used for partitioning the sphere.
func (s *Sphere) Centroid() types.Vec3 {
	return s.Center
}
