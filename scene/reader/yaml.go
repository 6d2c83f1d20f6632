package reader

import (
	"fmt"
	"strings"

	"github.com/achilleasa/cpupath/asset"
	"github.com/achilleasa/cpupath/scene"
	"github.com/achilleasa/cpupath/types"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// Field of view used when neither the scene nor the caller specify one.
const defaultVFov = 40.0

// A 3 component vector written as a [x, y, z] sequence.
type vec3 types.Vec3

func (v *vec3) UnmarshalYAML(node *yaml.Node) error {
	var components []float64
	if err := node.Decode(&components); err != nil {
		return fmt.Errorf("line %d: expected a [x, y, z] sequence", node.Line)
	}
	if len(components) != 3 {
		return fmt.Errorf("line %d: expected 3 components; got %d", node.Line, len(components))
	}
	copy(v[:], components)
	return nil
}

// A linear color written either as a [r, g, b] sequence in [0, 1] or as a
// CSS color name.
type color types.Vec3

func (c *color) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		rgba, exists := colornames.Map[strings.ToLower(strings.TrimSpace(node.Value))]
		if !exists {
			return fmt.Errorf("line %d: unknown color name %q", node.Line, node.Value)
		}
		*c = color{float64(rgba.R) / 255, float64(rgba.G) / 255, float64(rgba.B) / 255}
		return nil
	}

	var v vec3
	if err := v.UnmarshalYAML(node); err != nil {
		return err
	}
	*c = color(v)
	return nil
}

type yamlCamera struct {
	LookFrom  vec3     `yaml:"look_from"`
	LookAt    vec3     `yaml:"look_at"`
	Up        *vec3    `yaml:"up"`
	VFov      float64  `yaml:"vfov"`
	Aperture  float64  `yaml:"aperture"`
	FocusDist *float64 `yaml:"focus_dist"`
}

type yamlMaterial struct {
	Type      string  `yaml:"type"`
	Albedo    color   `yaml:"albedo"`
	Roughness float64 `yaml:"roughness"`
	IOR       float64 `yaml:"ior"`
}

type yamlSphere struct {
	Center   vec3         `yaml:"center"`
	Radius   float64      `yaml:"radius"`
	Material yamlMaterial `yaml:"material"`
}

type yamlScene struct {
	Camera  yamlCamera   `yaml:"camera"`
	Spheres []yamlSphere `yaml:"spheres"`
}

type yamlReader struct{}

func newYAMLReader() *yamlReader {
	return &yamlReader{}
}

// Parse a YAML scene description.
func (r *yamlReader) Read(res *asset.Resource, opts Options) (*scene.Scene, error) {
	var doc yamlScene
	dec := yaml.NewDecoder(res)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("scene reader [%s]: %w", res.Path(), err)
	}

	camera, err := scene.NewCamera(cameraOptions(doc.Camera, opts))
	if err != nil {
		return nil, fmt.Errorf("scene reader [%s]: %w", res.Path(), err)
	}

	sc := scene.NewScene()
	sc.SetCamera(camera)
	for index, sp := range doc.Spheres {
		mat, err := parseMaterial(sp.Material)
		if err != nil {
			return nil, fmt.Errorf("scene reader [%s]: sphere %d: %w", res.Path(), index, err)
		}
		if sp.Radius == 0 {
			return nil, fmt.Errorf("scene reader [%s]: sphere %d: radius must be non-zero", res.Path(), index)
		}
		if err = sc.AddSurface(scene.NewSphere(types.Vec3(sp.Center), sp.Radius, mat)); err != nil {
			return nil, err
		}
	}

	return sc, nil
}

func cameraOptions(cam yamlCamera, opts Options) scene.CameraOptions {
	camOpts := scene.CameraOptions{
		LookFrom: types.Vec3(cam.LookFrom),
		LookAt:   types.Vec3(cam.LookAt),
		Up:       types.XYZ(0, 1, 0),
		VFov:     cam.VFov,
		Aspect:   opts.Aspect,
		Aperture: cam.Aperture,
	}

	if cam.Up != nil {
		camOpts.Up = types.Vec3(*cam.Up)
	}
	if opts.VFov != 0 {
		camOpts.VFov = opts.VFov
	} else if camOpts.VFov == 0 {
		camOpts.VFov = defaultVFov
	}

	// Focus on the look-at point unless told otherwise
	if cam.FocusDist != nil {
		camOpts.FocusDist = *cam.FocusDist
	} else {
		camOpts.FocusDist = camOpts.LookFrom.Sub(camOpts.LookAt).Len()
	}

	return camOpts
}

// Albedo components must lie in [0, 1] so a bounce never amplifies radiance.
func checkAlbedo(albedo color) error {
	for _, c := range albedo {
		if !(c >= 0 && c <= 1) {
			return fmt.Errorf("albedo components must be in [0, 1]; got %v", [3]float64(albedo))
		}
	}
	return nil
}

func parseMaterial(m yamlMaterial) (scene.Material, error) {
	switch strings.ToLower(m.Type) {
	case "diffuse", "lambertian":
		if err := checkAlbedo(m.Albedo); err != nil {
			return scene.Material{}, err
		}
		return scene.Diffuse(types.Vec3(m.Albedo)), nil
	case "reflective", "metal":
		if err := checkAlbedo(m.Albedo); err != nil {
			return scene.Material{}, err
		}
		if m.Roughness < 0 {
			return scene.Material{}, fmt.Errorf("roughness must not be negative")
		}
		return scene.Reflective(types.Vec3(m.Albedo), m.Roughness), nil
	case "dielectric", "glass":
		if m.IOR <= 0 {
			return scene.Material{}, fmt.Errorf("dielectric index of refraction must be positive")
		}
		return scene.Dielectric(m.IOR), nil
	}
	return scene.Material{}, fmt.Errorf("unsupported material type %q", m.Type)
}
