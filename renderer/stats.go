package renderer

import "time"

type TracerStat struct {
	// The tracer id.
	Id string

	// The first column of the assigned block, the block width and the
	// percentage of total frame area it represents.
	BlockX       uint32
	BlockW       uint32
	FramePercent float32

	// Render time for assigned block
	RenderTime time.Duration
}

type FrameStats struct {
	// Individual tracer stats.
	Tracers []TracerStat

	// Total render time for entire frame.
	RenderTime time.Duration
}
