package renderer

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/achilleasa/cpupath/scene"
	"github.com/achilleasa/cpupath/tracer"
)

func builtinScene(t *testing.T, name string, aspect float64) *scene.Scene {
	sc, err := scene.Builtin(name, scene.BuiltinOptions{Aspect: aspect, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	return sc
}

func TestNewDefaultErrors(t *testing.T) {
	sc := builtinScene(t, "sphere", 1)
	valid := Options{FrameW: 4, FrameH: 4, SamplesPerPixel: 1, Workers: 1}

	type spec struct {
		sc     *scene.Scene
		opts   func(Options) Options
		expErr error
	}
	specs := []spec{
		{nil, func(o Options) Options { return o }, ErrSceneNotDefined},
		{scene.NewScene(), func(o Options) Options { return o }, ErrCameraNotDefined},
		{sc, func(o Options) Options { o.FrameW = 0; return o }, ErrInvalidFrameDims},
		{sc, func(o Options) Options { o.FrameH = 0; return o }, ErrInvalidFrameDims},
		{sc, func(o Options) Options { o.SamplesPerPixel = 0; return o }, ErrInvalidSampleCount},
		{sc, func(o Options) Options { o.Workers = 0; return o }, ErrNoTracers},
	}

	for index, s := range specs {
		r, err := NewDefault(s.sc, tracer.NaiveScheduler(), s.opts(valid))
		if err != s.expErr {
			if r != nil {
				r.Close()
			}
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
	}
}

func renderFrame(t *testing.T, sc *scene.Scene, scheduler tracer.BlockScheduler, opts Options) *tracer.FrameBuffer {
	r, err := NewDefault(sc, scheduler, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err = r.Render(context.Background()); err != nil {
		t.Fatal(err)
	}
	return r.Frame()
}

func TestWorkerCountDoesNotAffectOutput(t *testing.T) {
	sc := builtinScene(t, "default", 2)
	opts := Options{FrameW: 23, FrameH: 11, SamplesPerPixel: 4, MaxDepth: 8, Seed: 1234}

	opts.Workers = 1
	exp := renderFrame(t, sc, tracer.NaiveScheduler(), opts)

	for _, workers := range []int{2, 3, 7, 30} {
		opts.Workers = workers
		got := renderFrame(t, sc, tracer.NaiveScheduler(), opts)
		if !bytes.Equal(exp.Pix, got.Pix) {
			t.Fatalf("expected render with %d workers to match the single worker render", workers)
		}
	}
}

func TestSeedChangesOutput(t *testing.T) {
	sc := builtinScene(t, "default", 2)
	opts := Options{FrameW: 16, FrameH: 8, SamplesPerPixel: 2, MaxDepth: 8, Workers: 2, Seed: 1}

	a := renderFrame(t, sc, tracer.NaiveScheduler(), opts)
	opts.Seed = 2
	b := renderFrame(t, sc, tracer.NaiveScheduler(), opts)
	if bytes.Equal(a.Pix, b.Pix) {
		t.Fatal("expected different seeds to produce different frames")
	}
}

func TestSingleSphereDepthZeroCenterPixelIsBlack(t *testing.T) {
	sc := builtinScene(t, "sphere", 41.0/21.0)
	fb := renderFrame(t, sc, tracer.NaiveScheduler(), Options{
		FrameW:          41,
		FrameH:          21,
		SamplesPerPixel: 1,
		MaxDepth:        0,
		Workers:         2,
		Seed:            99,
	})

	// The primary ray hits the diffuse sphere and its single permitted
	// bounce ends at depth -1.
	if px := fb.At(20, 10); px != [3]uint8{0, 0, 0} {
		t.Fatalf("expected center pixel to be black; got %v", px)
	}

	// Corners see the background
	if px := fb.At(0, 0); px[2] != 255 {
		t.Fatalf("expected top-left pixel to show the sky; got %v", px)
	}
}

func TestRenderStats(t *testing.T) {
	sc := builtinScene(t, "sphere", 1)
	r, err := NewDefault(sc, tracer.NaiveScheduler(), Options{FrameW: 10, FrameH: 4, SamplesPerPixel: 1, MaxDepth: 2, Workers: 3})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err = r.Render(context.Background()); err != nil {
		t.Fatal(err)
	}

	stats := r.Stats()
	if len(stats.Tracers) != 3 {
		t.Fatalf("expected stats for 3 tracers; got %d", len(stats.Tracers))
	}

	expBlocks := [][2]uint32{{0, 3}, {3, 3}, {6, 4}}
	var totalPercent float32
	for idx, stat := range stats.Tracers {
		if stat.BlockX != expBlocks[idx][0] || stat.BlockW != expBlocks[idx][1] {
			t.Fatalf("[tracer %d] expected block [%d, +%d); got [%d, +%d)", idx, expBlocks[idx][0], expBlocks[idx][1], stat.BlockX, stat.BlockW)
		}
		totalPercent += stat.FramePercent
	}
	if totalPercent < 99.9 || totalPercent > 100.1 {
		t.Fatalf("expected frame percentages to add up to 100; got %f", totalPercent)
	}
	if stats.RenderTime <= 0 {
		t.Fatal("expected a positive frame render time")
	}
}

// Replays a fixed list of block assignments; one per frame.
type replayScheduler struct {
	frames [][]uint32
	next   int
}

func (sch *replayScheduler) Schedule(_ []tracer.Tracer, _ uint32) []uint32 {
	blocks := sch.frames[sch.next]
	sch.next++
	return blocks
}

func TestIdleTracerStatsAreReset(t *testing.T) {
	sc := builtinScene(t, "sphere", 1)
	sch := &replayScheduler{frames: [][]uint32{{4, 4}, {8, 0}}}
	r, err := NewDefault(sc, sch, Options{FrameW: 8, FrameH: 8, SamplesPerPixel: 1, MaxDepth: 2, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err = r.Render(context.Background()); err != nil {
		t.Fatal(err)
	}
	tracers := r.(*defaultRenderer).tracers
	if stats := tracers[1].Stats(); stats.BlockW != 4 || stats.RenderTime <= 0 {
		t.Fatalf("expected tracer 1 to report its first frame block; got %+v", *stats)
	}

	if err = r.Render(context.Background()); err != nil {
		t.Fatal(err)
	}
	if stats := tracers[1].Stats(); stats.BlockW != 0 || stats.RenderTime != 0 {
		t.Fatalf("expected idle tracer stats to be reset; got %+v", *stats)
	}
	if stat := r.Stats().Tracers[1]; stat.BlockW != 0 || stat.RenderTime != 0 {
		t.Fatalf("expected idle tracer frame stats to be zero; got %+v", stat)
	}
	if stats := tracers[0].Stats(); stats.BlockW != 8 {
		t.Fatalf("expected tracer 0 to report an 8 column block; got %d", stats.BlockW)
	}}

func TestPerfectSchedulerKeepsOutputStable(t *testing.T) {
	sc := builtinScene(t, "default", 2)
	opts := Options{FrameW: 20, FrameH: 10, SamplesPerPixel: 2, MaxDepth: 5, Workers: 3, Seed: 5}

	exp := renderFrame(t, sc, tracer.NaiveScheduler(), opts)

	r, err := NewDefault(sc, tracer.PerfectScheduler(), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	for frame := 0; frame < 3; frame++ {
		if err = r.Render(context.Background()); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(exp.Pix, r.Frame().Pix) {
			t.Fatalf("[frame %d] expected output to match the naive scheduler render", frame)
		}
	}
}

func TestCancelledRender(t *testing.T) {
	sc := builtinScene(t, "sphere", 1)
	r, err := NewDefault(sc, tracer.NaiveScheduler(), Options{FrameW: 8, FrameH: 8, SamplesPerPixel: 1, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err = r.Render(ctx); err != ErrInterrupted {
		t.Fatalf("expected ErrInterrupted; got %v", err)
	}

	// The renderer remains usable after an interrupted frame
	if err = r.Render(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestRenderAfterClose(t *testing.T) {
	sc := builtinScene(t, "sphere", 1)
	r, err := NewDefault(sc, tracer.NaiveScheduler(), Options{FrameW: 2, FrameH: 2, SamplesPerPixel: 1, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	r.Close()

	if err = r.Render(context.Background()); err != ErrNoTracers {
		t.Fatalf("expected ErrNoTracers; got %v", err)
	}
}

func TestFrameHeight(t *testing.T) {
	type spec struct {
		frameW uint32
		aspect float64
		expH   uint32
	}
	specs := []spec{
		{400, 16.0 / 9.0, 225},
		{1200, 3.0 / 2.0, 800},
		{10, 1, 10},
		{1, 16.0 / 9.0, 1},
		{5, 100, 1},
		{5, 0, 1},
		{5, -2, 1},
		{4000, 1e-9, math.MaxUint32},
		{math.MaxUint32, 0.5, math.MaxUint32},
	}

	for index, s := range specs {
		if got := FrameHeight(s.frameW, s.aspect); got != s.expH {
			t.Fatalf("[spec %d] expected height %d; got %d", index, s.expH, got)
		}
	}
}

func TestBvhDoesNotAffectOutput(t *testing.T) {
	opts := Options{FrameW: 24, FrameH: 16, SamplesPerPixel: 2, MaxDepth: 6, Workers: 4, Seed: 8}

	exp := renderFrame(t, builtinScene(t, "random", 1.5), tracer.NaiveScheduler(), opts)

	sc := builtinScene(t, "random", 1.5)
	sc.BuildBvh(4)
	got := renderFrame(t, sc, tracer.NaiveScheduler(), opts)
	if !bytes.Equal(exp.Pix, got.Pix) {
		t.Fatal("expected bvh accelerated render to match the linear render")
	}
}
