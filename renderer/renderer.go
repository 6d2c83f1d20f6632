package renderer

import (
	"context"

	"github.com/achilleasa/cpupath/tracer"
)

type Renderer interface {
	// Render frame. If ctx is cancelled while rendering, ErrInterrupted is
	// returned and the framebuffer contents are undefined.
	Render(ctx context.Context) error

	// Get the framebuffer with the last rendered frame.
	Frame() *tracer.FrameBuffer

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
