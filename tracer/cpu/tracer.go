package cpu

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/achilleasa/cpupath/log"
	"github.com/achilleasa/cpupath/scene"
	"github.com/achilleasa/cpupath/tracer"
	"github.com/achilleasa/cpupath/types"
)

var (
	ErrNotInitialized = errors.New("cpu tracer: tracer not initialized")
	ErrNoSceneData    = errors.New("cpu tracer: no scene data attached")
	ErrNoCamera       = errors.New("cpu tracer: scene has no camera")
)

// All cpu tracers share the same relative speed.
const baselineSpeed = 1

type cpuTracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The tracer id.
	id string

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered block.
	stats *tracer.Stats

	// The traced scene; read-only while rendering.
	sceneData *scene.Scene

	// The framebuffer receiving rendered blocks.
	frameBuffer *tracer.FrameBuffer
}

// Create a new cpu tracer.
func NewTracer(id string) tracer.Tracer {
	return &cpuTracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		id:           id,
		blockReqChan: make(chan tracer.BlockRequest, 1),
		stats:        &tracer.Stats{},
	}
}

// Get tracer id.
func (tr *cpuTracer) Id() string {
	return tr.id
}

// Get the relative speed estimate.
func (tr *cpuTracer) Speed() uint32 {
	return baselineSpeed
}

// Attach scene and framebuffer and start the block worker.
func (tr *cpuTracer) Init(sc *scene.Scene, frameBuffer *tracer.FrameBuffer) error {
	tr.Lock()
	defer tr.Unlock()

	if sc == nil {
		return ErrNoSceneData
	}
	if sc.Camera == nil {
		return ErrNoCamera
	}

	tr.sceneData = sc
	tr.frameBuffer = frameBuffer

	// Start worker
	if tr.closeChan == nil {
		tr.startWorker()
	}

	return nil
}

// Shutdown and cleanup tracer.
func (tr *cpuTracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	// If the worker is running shut it down
	if tr.closeChan != nil {
		tr.closeChan <- struct{}{}

		// wait for worker to ack close and shutdown channel
		<-tr.closeChan
		close(tr.closeChan)
		tr.closeChan = nil
		tr.wg.Wait()
	}

	tr.sceneData = nil
	tr.frameBuffer = nil
}

// Enqueue block request.
func (tr *cpuTracer) Enqueue(blockReq tracer.BlockRequest) {
	tr.Lock()
	running := tr.closeChan != nil
	tr.Unlock()

	if !running {
		blockReq.ErrChan <- ErrNotInitialized
		return
	}
	tr.blockReqChan <- blockReq
}

// Retrieve last frame statistics.
func (tr *cpuTracer) Stats() *tracer.Stats {
	return tr.stats
}

// Spawn a go-routine to process block render requests.
func (tr *cpuTracer) startWorker() {
	closeChan := make(chan struct{})
	tr.closeChan = closeChan
	readyChan := make(chan struct{})
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		var blockReq tracer.BlockRequest
		var startTime time.Time
		close(readyChan)
		for {
			select {
			case blockReq = <-tr.blockReqChan:
				startTime = time.Now()
				tr.logger.Debugf("rendering columns [%d, %d)", blockReq.BlockX, blockReq.BlockX+blockReq.BlockW)

				err := tr.renderBlock(&blockReq)
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}

				// Update stats
				tr.stats.BlockW = blockReq.BlockW
				tr.stats.RenderTime = time.Since(startTime)
				tr.logger.Debugf("rendered %d columns in %s", blockReq.BlockW, tr.stats.RenderTime)

				blockReq.DoneChan <- blockReq.BlockW
			case <-closeChan:
				// Ack close
				closeChan <- struct{}{}
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}

// Render the requested column block into a private buffer and then copy it
// into the shared framebuffer.
func (tr *cpuTracer) renderBlock(blockReq *tracer.BlockRequest) error {
	if tr.sceneData == nil {
		return ErrNoSceneData
	}

	sc := tr.sceneData
	camera := sc.Camera
	frameH := blockReq.FrameH
	rowBytes := 3 * int(blockReq.BlockW)
	block := make([]uint8, rowBytes*int(frameH))

	// Normalized coordinate denominators; single pixel dimensions only
	// keep the jitter.
	uDenom := float64(maxUint32(blockReq.FrameW, 2) - 1)
	vDenom := float64(maxUint32(frameH, 2) - 1)

	for col := uint32(0); col < blockReq.BlockW; col++ {
		if blockReq.Ctx != nil {
			if err := blockReq.Ctx.Err(); err != nil {
				return err
			}
		}

		x := blockReq.BlockX + col
		rng := rand.New(rand.NewSource(ColumnSeed(blockReq.Seed, x)))
		for y := uint32(0); y < frameH; y++ {
			var sum types.Vec3
			for s := uint32(0); s < blockReq.SamplesPerPixel; s++ {
				u := (float64(x) + rng.Float64()) / uDenom
				v := (float64(y) + rng.Float64()) / vDenom
				sum = sum.Add(RayColor(rng, camera.GetRay(rng, u, v), sc, blockReq.MaxDepth))
			}

			rgb := ToneMap(sum, blockReq.SamplesPerPixel)
			copy(block[int(y)*rowBytes+3*int(col):], rgb[:])
		}
	}

	return tr.frameBuffer.CopyBlock(blockReq.BlockX, blockReq.BlockW, block)
}

// Derive the random seed for a frame column. Every column owns an independent
// generator so rendered output does not depend on how columns are assigned to
// tracers.
func ColumnSeed(seed int64, column uint32) int64 {
	// splitmix64 finalizer
	z := uint64(seed) + uint64(column+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

func maxUint32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
