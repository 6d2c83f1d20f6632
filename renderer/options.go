package renderer

import "math"

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of emitted rays per pixel.
	SamplesPerPixel uint32

	// Max bounce depth. A depth of N permits N+1 scatter events while a
	// negative depth renders a black frame.
	MaxDepth int

	// Number of cpu tracers to attach.
	Workers int

	// Seed for the per-column random number generators. Rendering the same
	// scene with the same seed always yields the same frame.
	Seed int64
}

// Derive the frame height from its width and aspect ratio. The returned
// height is clamped to [1, MaxUint32].
func FrameHeight(frameW uint32, aspect float64) uint32 {
	if !(aspect > 0) {
		return 1
	}
	h := float64(frameW) / aspect
	switch {
	case h < 1:
		return 1
	case h >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(h)
}
