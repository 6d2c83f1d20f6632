package reader

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/cpupath/asset"
	"github.com/achilleasa/cpupath/scene"
	"github.com/achilleasa/cpupath/types"
)

const testScene = `
camera:
  look_from: [3, 3, 2]
  look_at: [0, 0, -1]
  vfov: 20
  aperture: 2
spheres:
  - center: [0, -100.5, -1]
    radius: 100
    material: {type: diffuse, albedo: [0.8, 0.8, 0.0]}
  - center: [-1, 0, -1]
    radius: -0.4
    material: {type: dielectric, ior: 1.5}
  - center: [1, 0, -1]
    radius: 0.5
    material: {type: reflective, albedo: white, roughness: 0.3}
`

func readString(t *testing.T, payload string, opts Options) (*scene.Scene, error) {
	t.Helper()
	res := asset.NewResourceFromStream("embedded.yaml", strings.NewReader(payload))
	defer res.Close()
	return newYAMLReader().Read(res, opts)
}

func TestReadYAMLScene(t *testing.T) {
	sc, err := readString(t, testScene, Options{Aspect: 1.5})
	if err != nil {
		t.Fatal(err)
	}

	if sc.Camera == nil {
		t.Fatal("expected scene camera to be defined")
	}
	if len(sc.Surfaces) != 3 {
		t.Fatalf("expected 3 surfaces; got %d", len(sc.Surfaces))
	}

	type spec struct {
		center types.Vec3
		radius float64
		mat    scene.Material
	}
	specs := []spec{
		{types.XYZ(0, -100.5, -1), 100, scene.Diffuse(types.RGB(0.8, 0.8, 0))},
		{types.XYZ(-1, 0, -1), -0.4, scene.Dielectric(1.5)},
		{types.XYZ(1, 0, -1), 0.5, scene.Reflective(types.RGB(1, 1, 1), 0.3)},
	}
	for index, s := range specs {
		sphere := sc.Surfaces[index].(*scene.Sphere)
		if sphere.Center != s.center || sphere.Radius != s.radius || sphere.Material != s.mat {
			t.Fatalf("[spec %d] expected sphere %v; got %v", index, s, *sphere)
		}
	}
}

func TestCameraDefaults(t *testing.T) {
	opts := cameraOptions(yamlCamera{LookFrom: vec3{0, 0, 4}}, Options{Aspect: 2})
	if opts.Up != types.XYZ(0, 1, 0) {
		t.Fatalf("expected default up vector; got %v", opts.Up)
	}
	if opts.VFov != defaultVFov {
		t.Fatalf("expected default vfov %f; got %f", defaultVFov, opts.VFov)
	}
	if math.Abs(opts.FocusDist-4) > 1e-12 {
		t.Fatalf("expected focus distance to default to the look-at distance; got %f", opts.FocusDist)
	}

	opts = cameraOptions(yamlCamera{LookFrom: vec3{0, 0, 4}, VFov: 30}, Options{Aspect: 2, VFov: 70})
	if opts.VFov != 70 {
		t.Fatalf("expected vfov override 70; got %f", opts.VFov)
	}
}

func TestReadYAMLSceneErrors(t *testing.T) {
	type spec struct {
		payload  string
		expError string
	}
	specs := []spec{
		{"camera: {look_from: [0, 0], look_at: [0, 0, -1]}", "expected 3 components; got 2"},
		{"camera: {look_from: [0, 0, 1], look_at: [0, 0, -1]}\nspheres:\n  - {center: [0, 0, 0], radius: 1, material: {type: plasma}}", `unsupported material type "plasma"`},
		{"camera: {look_from: [0, 0, 1], look_at: [0, 0, -1]}\nspheres:\n  - {center: [0, 0, 0], radius: 1, material: {type: diffuse, albedo: notacolor}}", `unknown color name "notacolor"`},
		{"camera: {look_from: [0, 0, 1], look_at: [0, 0, -1]}\nspheres:\n  - {center: [0, 0, 0], radius: 0, material: {type: glass, ior: 1.5}}", "radius must be non-zero"},
		{"camera: {look_from: [0, 0, 1], look_at: [0, 0, -1]}\nspheres:\n  - {center: [0, 0, 0], radius: 1, material: {type: glass}}", "index of refraction must be positive"},
		{"camera: {look_from: [0, 0, 1], look_at: [0, 0, -1]}\nspheres:\n  - {center: [0, 0, 0], radius: 1, material: {type: diffuse, albedo: [2, 2, 2]}}", "albedo components must be in [0, 1]"},
		{"camera: {look_from: [0, 0, 1], look_at: [0, 0, -1]}\nspheres:\n  - {center: [0, 0, 0], radius: 1, material: {type: metal, albedo: [0.5, -0.1, 0.5]}}", "albedo components must be in [0, 1]"},
		{"camera: {look_from: [0, 0, 1], look_at: [0, 0, -1]}\nlights: []", "field lights not found"},
	}

	for index, s := range specs {
		_, err := readString(t, s.payload, Options{Aspect: 1})
		if err == nil || !strings.Contains(err.Error(), s.expError) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", index, s.expError, err)
		}
	}

	// Degenerate cameras are reported at setup time
	_, err := readString(t, "camera: {look_from: [0, 0, 0], look_at: [0, 0, 0]}", Options{Aspect: 1})
	if !errors.Is(err, scene.ErrDegenerateView) {
		t.Fatalf("expected to get %v; got %v", scene.ErrDegenerateView, err)
	}
}

func TestReadSceneFromFileAndURL(t *testing.T) {
	dir := t.TempDir()
	scenePath := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(scenePath, []byte(testScene), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := ReadScene(scenePath, Options{Aspect: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Surfaces) != 3 {
		t.Fatalf("expected 3 surfaces; got %d", len(sc.Surfaces))
	}

	server := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer server.Close()

	sc, err = ReadScene(server.URL+"/scene.yaml", Options{Aspect: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Surfaces) != 3 {
		t.Fatalf("expected 3 surfaces; got %d", len(sc.Surfaces))
	}

	expError := `readScene: unsupported file format ".obj"`
	objPath := filepath.Join(dir, "scene.obj")
	os.WriteFile(objPath, []byte("v 0 0 0"), 0644)
	if _, err = ReadScene(objPath, Options{Aspect: 1}); err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}
}
