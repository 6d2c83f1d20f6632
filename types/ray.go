package types

// A parametric ray. The direction is not normalized; its length scales the
// parametric distance t.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// Create a new ray.
func NewRay(origin, dir Vec3) Ray {
	return Ray{Origin: origin, Dir: dir}
}

// Get the point at parametric distance t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}
