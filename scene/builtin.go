package scene

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/achilleasa/cpupath/types"
)

// Parameters shared by all built-in scene builders.
type BuiltinOptions struct {
	// Frame aspect ratio.
	Aspect float64

	// Vertical field of view in degrees. If zero, the builder default is used.
	VFov float64

	// Seed for scenes with randomly placed surfaces.
	Seed int64
}

// A function that populates a scene and its camera.
type Builder func(opts BuiltinOptions) (*Scene, error)

type builtin struct {
	description string
	build       Builder
}

var builtins = map[string]builtin{
	"default": {"three spheres (diffuse, hollow glass, rough metal) on a ground sphere", buildDefault},
	"random":  {"a grid of small random spheres around three large ones", buildRandom},
	"sphere":  {"a single diffuse sphere in front of the camera", buildSingleSphere},
}

// Get the sorted list of built-in scene names.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get the description of a built-in scene.
func BuiltinDescription(name string) string {
	return builtins[name].description
}

// Build a built-in scene by name.
func Builtin(name string, opts BuiltinOptions) (*Scene, error) {
	b, exists := builtins[name]
	if !exists {
		return nil, fmt.Errorf("scene: unknown built-in scene %q", name)
	}
	return b.build(opts)
}

func vfovOrDefault(opts BuiltinOptions, def float64) float64 {
	if opts.VFov == 0 {
		return def
	}
	return opts.VFov
}

func populate(sc *Scene, camOpts CameraOptions, surfaces ...Surface) (*Scene, error) {
	camera, err := NewCamera(camOpts)
	if err != nil {
		return nil, err
	}
	sc.SetCamera(camera)

	for _, surface := range surfaces {
		if err = sc.AddSurface(surface); err != nil {
			return nil, err
		}
	}
	return sc, nil
}

func buildDefault(opts BuiltinOptions) (*Scene, error) {
	lookFrom := types.XYZ(3, 3, 2)
	lookAt := types.XYZ(0, 0, -1)

	return populate(NewScene(),
		CameraOptions{
			LookFrom:  lookFrom,
			LookAt:    lookAt,
			Up:        types.XYZ(0, 1, 0),
			VFov:      vfovOrDefault(opts, 20),
			Aspect:    opts.Aspect,
			Aperture:  2.0,
			FocusDist: lookFrom.Sub(lookAt).Len(),
		},
		NewSphere(types.XYZ(0, -100.5, -1), 100, Diffuse(types.RGB(0.8, 0.8, 0))),
		NewSphere(types.XYZ(0, 0, -1), 0.5, Diffuse(types.RGB(0.7, 0.3, 0.3))),
		NewSphere(types.XYZ(-1, 0, -1), 0.5, Dielectric(1.5)),
		NewSphere(types.XYZ(-1, 0, -1), -0.4, Dielectric(1.5)),
		NewSphere(types.XYZ(1, 0, -1), 0.5, Reflective(types.RGB(0.8, 0.6, 0.2), 1.0)),
	)
}

func buildRandom(opts BuiltinOptions) (*Scene, error) {
	rng := rand.New(rand.NewSource(opts.Seed))
	surfaces := []Surface{
		NewSphere(types.XYZ(0, -1000, 0), 1000, Diffuse(types.RGB(0.5, 0.5, 0.5))),
	}

	clearing := types.XYZ(4, 0.2, 0)
	for i := -11; i < 11; i++ {
		for j := -11; j < 11; j++ {
			chooseMat := rng.Float64()
			center := types.XYZ(float64(i)+0.9*rng.Float64(), 0.2, float64(j)+0.9*rng.Float64())
			if center.Sub(clearing).Len() <= 0.9 {
				continue
			}

			var mat Material
			switch {
			case chooseMat < 0.8:
				mat = Diffuse(types.RandomVec3(rng, 0, 1).MulVec(types.RandomVec3(rng, 0, 1)))
			case chooseMat < 0.95:
				mat = Reflective(types.RandomVec3(rng, 0.5, 1), 0.5*rng.Float64())
			default:
				mat = Dielectric(1.5)
			}
			surfaces = append(surfaces, NewSphere(center, 0.2, mat))
		}
	}

	surfaces = append(surfaces,
		NewSphere(types.XYZ(0, 1, 0), 1, Dielectric(1.5)),
		NewSphere(types.XYZ(-4, 1, 0), 1, Diffuse(types.RGB(0.4, 0.2, 0.1))),
		NewSphere(types.XYZ(4, 1, 0), 1, Reflective(types.RGB(0.7, 0.6, 0.5), 0)),
	)

	return populate(NewScene(),
		CameraOptions{
			LookFrom:  types.XYZ(13, 2, 3),
			LookAt:    types.XYZ(0, 0, 0),
			Up:        types.XYZ(0, 1, 0),
			VFov:      vfovOrDefault(opts, 20),
			Aspect:    opts.Aspect,
			Aperture:  0.1,
			FocusDist: 10,
		},
		surfaces...,
	)
}

func buildSingleSphere(opts BuiltinOptions) (*Scene, error) {
	return populate(NewScene(),
		CameraOptions{
			LookFrom:  types.XYZ(0, 0, 0),
			LookAt:    types.XYZ(0, 0, -1),
			Up:        types.XYZ(0, 1, 0),
			VFov:      vfovOrDefault(opts, 90),
			Aspect:    opts.Aspect,
			FocusDist: 1,
		},
		NewSphere(types.XYZ(0, 0, -1), 0.5, Diffuse(types.RGB(0.7, 0.3, 0.3))),
	)
}
