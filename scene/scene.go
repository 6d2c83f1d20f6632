package scene

import (
	"errors"
	"math"

	"github.com/achilleasa/cpupath/types"
)

type Scene struct {
	Camera *Camera

	// The scene surfaces. The order only affects which surface wins when two
	// hits are at exactly the same distance.
	Surfaces []Surface

	// An optional acceleration structure over Surfaces.
	bvh *Bvh
}

func NewScene() *Scene {
	return &Scene{
		Surfaces: make([]Surface, 0),
	}
}

// Attach a camera to the scene.
func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

// Add a surface to the scene.
func (s *Scene) AddSurface(surface Surface) error {
	if surface == nil {
		return errors.New("scene: cannot add a nil surface")
	}
	for _, existing := range s.Surfaces {
		if existing == surface {
			return errors.New("scene: surface already added")
		}
	}
	s.Surfaces = append(s.Surfaces, surface)
	s.bvh = nil
	return nil
}

// Find the closest hit among all scene surfaces within (tMin, tMax). Each hit
// narrows the interval searched for the remaining surfaces.
func (s *Scene) Hit(r types.Ray, tMin, tMax float64) (HitRecord, bool) {
	var (
		closest     HitRecord
		hitAnything bool
	)

	if s.bvh != nil {
		return s.bvh.Hit(r, tMin, tMax)
	}

	for _, surface := range s.Surfaces {
		if rec, ok := surface.Hit(r, tMin, tMax); ok {
			tMax = rec.T
			closest = rec
			hitAnything = true
		}
	}

	return closest, hitAnything
}

// Build a bvh tree over the scene surfaces. Hit queries use the tree until
// the next surface is added. Must not be called while the scene is being
// rendered.
func (s *Scene) BuildBvh(minLeafItems int) BvhStats {
	s.bvh = BuildBvh(s.Surfaces, minLeafItems)
	return s.bvh.Stats()
}

// Scene information.
type Stats struct {
	Surfaces int

	// Number of surfaces per material type.
	Materials map[MaterialType]int

	// Number of spheres with a negative radius.
	InvertedShells int

	// Bvh node count; zero if no bvh was built.
	BvhNodes int
}

// Collect scene statistics.
func (s *Scene) Stats() Stats {
	stats := Stats{
		Surfaces:  len(s.Surfaces),
		Materials: make(map[MaterialType]int),
	}
	for _, surface := range s.Surfaces {
		if sphere, ok := surface.(*Sphere); ok {
			stats.Materials[sphere.Material.Type]++
			if math.Signbit(sphere.Radius) {
				stats.InvertedShells++
			}
		}
	}
	if s.bvh != nil {
		stats.BvhNodes = s.bvh.Stats().Nodes
	}
	return stats
}
