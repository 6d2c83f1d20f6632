package tracer

import (
	"context"
	"time"

	"github.com/achilleasa/cpupath/scene"
)

// A unit of work that is processed by a tracer: a contiguous range of frame
// columns spanning the full frame height.
type BlockRequest struct {
	// Frame dimensions.
	FrameW uint32
	FrameH uint32

	// Block start column and width.
	BlockX uint32
	BlockW uint32

	// The number of emitted rays per traced pixel.
	SamplesPerPixel uint32

	// The maximum bounce depth. A depth of N allows N+1 scatter events.
	MaxDepth int

	// A seed value for the tracer's random number generators.
	Seed int64

	// An optional context that is checked once per column. If it is
	// cancelled the tracer aborts the block and reports the context error.
	Ctx context.Context

	// A channel to signal on block completion with the number of completed columns.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block width.
	BlockW uint32

	// The time for rendering this block.
	RenderTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Get the tracer's relative speed estimate.
	Speed() uint32

	// Attach the scene to be traced and the framebuffer that receives
	// rendered blocks and start processing requests.
	Init(sc *scene.Scene, frameBuffer *FrameBuffer) error

	// Shutdown and cleanup tracer.
	Close()

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Retrieve last frame statistics.
	Stats() *Stats
}
