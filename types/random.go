package types

import "math/rand"

// Generate a vector whose components are uniformly distributed in [min, max).
func RandomVec3(rng *rand.Rand, min, max float64) Vec3 {
	span := max - min
	return Vec3{
		min + span*rng.Float64(),
		min + span*rng.Float64(),
		min + span*rng.Float64(),
	}
}

// Generate a uniformly distributed point inside the unit ball using rejection sampling.
func RandomInUnitSphere(rng *rand.Rand) Vec3 {
	for {
		v := RandomVec3(rng, -1, 1)
		if v.LenSq() < 1 {
			return v
		}
	}
}

// Generate a uniformly distributed point inside the unit disk on the XY plane.
func RandomInUnitDisk(rng *rand.Rand) Vec3 {
	for {
		v := Vec3{-1 + 2*rng.Float64(), -1 + 2*rng.Float64(), 0}
		if v.LenSq() < 1 {
			return v
		}
	}
}
