package scene

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/achilleasa/cpupath/types"
)

type MaterialType uint8

const (
	DiffuseMaterial MaterialType = iota
	ReflectiveMaterial
	DielectricMaterial
)

func (mt MaterialType) String() string {
	switch mt {
	case DiffuseMaterial:
		return "diffuse"
	case ReflectiveMaterial:
		return "reflective"
	case DielectricMaterial:
		return "dielectric"
	}
	return fmt.Sprintf("MaterialType(%d)", uint8(mt))
}

// Defines a scene material. Materials are plain values; a surface owns a copy
// of its material.
type Material struct {
	// The type of the material.
	Type MaterialType

	// Albedo color (diffuse and reflective materials).
	Albedo types.Vec3

	// Perturbation applied to reflected rays (reflective materials only).
	Roughness float64

	// Index of refraction (dielectric materials only).
	IOR float64
}

// Create a lambertian material.
func Diffuse(albedo types.Vec3) Material {
	return Material{Type: DiffuseMaterial, Albedo: albedo}
}

// Create a reflective material. A roughness of 0 yields a perfect mirror.
func Reflective(albedo types.Vec3, roughness float64) Material {
	return Material{Type: ReflectiveMaterial, Albedo: albedo, Roughness: roughness}
}

// Create a dielectric material with the given index of refraction.
func Dielectric(ior float64) Material {
	return Material{Type: DielectricMaterial, IOR: ior}
}

// Scatter an incoming ray off the hit point described by rec. It returns the
// attenuation, the scattered ray and false if the ray was absorbed.
func (m Material) Scatter(rng *rand.Rand, in types.Ray, rec *HitRecord) (types.Vec3, types.Ray, bool) {
	switch m.Type {
	case ReflectiveMaterial:
		dir := in.Dir.Reflect(rec.Normal)
		if m.Roughness != 0 {
			dir = dir.Add(types.RandomInUnitSphere(rng).Mul(m.Roughness))
		}
		return m.Albedo, types.NewRay(rec.Point, dir), dir.Dot(rec.Normal) > 0
	case DielectricMaterial:
		return m.scatterDielectric(rng, in, rec)
	default:
		dir := rec.Normal.Add(types.RandomInUnitSphere(rng).Normalize())
		if dir.NearZero() {
			dir = rec.Normal
		}
		return m.Albedo, types.NewRay(rec.Point, dir), true
	}
}

func (m Material) scatterDielectric(rng *rand.Rand, in types.Ray, rec *HitRecord) (types.Vec3, types.Ray, bool) {
	ratio := m.IOR
	if rec.FrontFace {
		ratio = 1.0 / m.IOR
	}

	unitDir := in.Dir.Normalize()
	cosTheta := math.Min(unitDir.Neg().Dot(rec.Normal), 1.0)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)

	var dir types.Vec3
	if ratio*sinTheta > 1.0 || rng.Float64() < reflectance(cosTheta, ratio) {
		dir = unitDir.Reflect(rec.Normal)
	} else {
		dir = unitDir.Refract(rec.Normal, ratio)
	}

	return types.RGB(1, 1, 1), types.NewRay(rec.Point, dir), true
}

// Schlick's approximation for the reflectance at a dielectric boundary. An
// index matched boundary does not reflect.
func reflectance(cosine, ratio float64) float64 {
	if ratio == 1.0 {
		return 0
	}
	r0 := (1 - ratio) / (1 + ratio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
