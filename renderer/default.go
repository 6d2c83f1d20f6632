package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/achilleasa/cpupath/log"
	"github.com/achilleasa/cpupath/scene"
	"github.com/achilleasa/cpupath/tracer"
	"github.com/achilleasa/cpupath/tracer/cpu"
)

// A renderer that splits each frame into column blocks and renders them in
// parallel using a pool of cpu tracers.
type defaultRenderer struct {
	logger log.Logger

	// The block scheduler and the tracers attached to this renderer.
	scheduler tracer.BlockScheduler
	tracers   []tracer.Tracer

	// Block assignments for last frame.
	blockAssignments []uint32

	frameBuffer *tracer.FrameBuffer

	options Options

	stats FrameStats
}

// Create a new default renderer using the specified block scheduler.
func NewDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, opts Options) (Renderer, error) {
	switch {
	case sc == nil:
		return nil, ErrSceneNotDefined
	case sc.Camera == nil:
		return nil, ErrCameraNotDefined
	case opts.FrameW == 0 || opts.FrameH == 0:
		return nil, ErrInvalidFrameDims
	case opts.SamplesPerPixel == 0:
		return nil, ErrInvalidSampleCount
	case opts.Workers <= 0:
		return nil, ErrNoTracers
	}

	r := &defaultRenderer{
		logger:      log.New("renderer"),
		scheduler:   scheduler,
		tracers:     make([]tracer.Tracer, 0, opts.Workers),
		frameBuffer: tracer.NewFrameBuffer(opts.FrameW, opts.FrameH),
		options:     opts,
	}

	for i := 0; i < opts.Workers; i++ {
		tr := cpu.NewTracer(fmt.Sprintf("cpu-%d", i))
		if err := tr.Init(sc, r.frameBuffer); err != nil {
			tr.Close()
			r.Close()
			return nil, fmt.Errorf("renderer: could not init tracer %s: %w", tr.Id(), err)
		}
		r.tracers = append(r.tracers, tr)
	}
	r.logger.Infof("attached %d tracers", len(r.tracers))

	return r, nil
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}

// Get the framebuffer with the last rendered frame.
func (r *defaultRenderer) Frame() *tracer.FrameBuffer {
	return r.frameBuffer
}

// Get render statistics.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

// Render frame.
func (r *defaultRenderer) Render(ctx context.Context) error {
	if len(r.tracers) == 0 {
		return ErrNoTracers
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameW)

	doneChan := make(chan uint32, len(r.tracers))
	errChan := make(chan error, len(r.tracers))

	var blockX uint32
	var pending int
	for idx, blockW := range r.blockAssignments {
		if blockW == 0 {
			// Idle tracers must not carry over stats from an older frame.
			*r.tracers[idx].Stats() = tracer.Stats{}
			continue
		}

		r.tracers[idx].Enqueue(tracer.BlockRequest{
			FrameW:          r.options.FrameW,
			FrameH:          r.options.FrameH,
			BlockX:          blockX,
			BlockW:          blockW,
			SamplesPerPixel: r.options.SamplesPerPixel,
			MaxDepth:        r.options.MaxDepth,
			Seed:            r.options.Seed,
			Ctx:             ctx,
			DoneChan:        doneChan,
			ErrChan:         errChan,
		})
		blockX += blockW
		pending++
	}

	// Wait for all tracers to finish so no block is copied into the
	// framebuffer after we return.
	var err error
	for ; pending > 0; pending-- {
		select {
		case <-doneChan:
		case blockErr := <-errChan:
			if err == nil {
				err = blockErr
			}
		}
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			r.logger.Notice("frame render interrupted")
			return ErrInterrupted
		}
		return err
	}

	r.updateStats(time.Since(start))
	r.logger.Debugf("rendered %dx%d frame in %s", r.options.FrameW, r.options.FrameH, r.stats.RenderTime)
	return nil
}

// Collect per tracer statistics for the last rendered frame.
func (r *defaultRenderer) updateStats(renderTime time.Duration) {
	r.stats.RenderTime = renderTime
	r.stats.Tracers = make([]TracerStat, len(r.tracers))

	var blockX uint32
	for idx, tr := range r.tracers {
		blockW := r.blockAssignments[idx]
		stat := TracerStat{
			Id:           tr.Id(),
			BlockX:       blockX,
			BlockW:       blockW,
			FramePercent: 100.0 * float32(blockW) / float32(r.options.FrameW),
		}
		if blockW != 0 {
			stat.RenderTime = tr.Stats().RenderTime
		}
		r.stats.Tracers[idx] = stat
		blockX += blockW
	}
}
