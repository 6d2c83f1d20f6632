package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/achilleasa/cpupath/renderer"
	"github.com/achilleasa/cpupath/scene"
	"github.com/achilleasa/cpupath/scene/reader"
	"github.com/achilleasa/cpupath/tracer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	cfg, err := renderConfig(ctx)
	if err != nil {
		return err
	}

	r, err := setupRenderer(cfg, tracer.NaiveScheduler())
	if err != nil {
		return err
	}
	defer r.Close()

	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := cfg.rendererOptions()
	logger.Noticef("rendering %dx%d frame with %d spp (depth %d, seed %d)", opts.FrameW, opts.FrameH, opts.SamplesPerPixel, opts.MaxDepth, opts.Seed)
	if err = r.Render(renderCtx); err != nil {
		return err
	}

	// Display stats
	displayFrameStats(r.Stats())

	start := time.Now()
	if err = renderer.SaveFrame(r.Frame(), cfg.Out); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s in %s", cfg.Out, time.Since(start))

	return nil
}

// Render a sequence of frames using the perfect scheduler and report how the
// column assignment converges.
func RenderBench(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	cfg, err := renderConfig(ctx)
	if err != nil {
		return err
	}

	numFrames := ctx.Int("frames")
	if numFrames <= 0 {
		return fmt.Errorf("bench: frame count must be positive; got %d", numFrames)
	}

	r, err := setupRenderer(cfg, tracer.PerfectScheduler())
	if err != nil {
		return err
	}
	defer r.Close()

	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	frameTimes := make([]time.Duration, 0, numFrames)
	for frame := 0; frame < numFrames; frame++ {
		if err = r.Render(renderCtx); err != nil {
			return err
		}

		stats := r.Stats()
		logger.Infof("frame %d rendered in %s", frame, stats.RenderTime)
		displayFrameStats(stats)
		frameTimes = append(frameTimes, stats.RenderTime)
	}

	displayBenchStats(frameTimes)
	return nil
}

// Build the render config from the optional config file, the flags and the
// positional scene argument.
func renderConfig(ctx *cli.Context) (*RenderConfig, error) {
	cfg := defaultRenderConfig()
	if cfgFile := ctx.String("config"); cfgFile != "" {
		if err := loadRenderConfigFile(cfgFile, cfg); err != nil {
			return nil, err
		}
	}
	overrideRenderConfig(cfg, ctx)
	if ctx.NArg() > 0 {
		cfg.Scene = ctx.Args().First()
	}

	if err := cfg.resolve(time.Now); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load scene and setup renderer.
func setupRenderer(cfg *RenderConfig, scheduler tracer.BlockScheduler) (renderer.Renderer, error) {
	sc, err := loadScene(cfg.Scene, cfg.Aspect, cfg.VFov, cfg.Seed)
	if err != nil {
		return nil, err
	}

	if cfg.BVH {
		stats := sc.BuildBvh(bvhLeafItems)
		logger.Infof("built bvh with %d nodes (%d leafs, depth %d) in %s", stats.Nodes, stats.Leafs, stats.MaxDepth, stats.BuildTime)
	}

	logger.Infof("attaching %d cpu tracers", cfg.Workers)
	return renderer.NewDefault(sc, scheduler, cfg.rendererOptions())
}

// Load a built-in scene by name or read a scene description file.
func loadScene(nameOrPath string, aspect, vfov float64, seed int64) (*scene.Scene, error) {
	start := time.Now()
	var sc *scene.Scene
	var err error
	if scene.BuiltinDescription(nameOrPath) != "" {
		sc, err = scene.Builtin(nameOrPath, scene.BuiltinOptions{Aspect: aspect, VFov: vfov, Seed: seed})
	} else {
		sc, err = reader.ReadScene(nameOrPath, reader.Options{Aspect: aspect, VFov: vfov})
	}
	if err != nil {
		return nil, err
	}

	logger.Infof("loaded scene %q with %d surfaces in %s", nameOrPath, len(sc.Surfaces), time.Since(start))
	return sc, nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Block start", "Block width", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%d", stat.BlockX),
			fmt.Sprintf("%d", stat.BlockW),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%s", stat.RenderTime),
		})
	}
	table.SetFooter([]string{"", "", "", "TOTAL", fmt.Sprintf("%s", stats.RenderTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}

func displayBenchStats(frameTimes []time.Duration) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Frame", "Render time"})

	var total time.Duration
	for frame, frameTime := range frameTimes {
		table.Append([]string{fmt.Sprintf("%d", frame), frameTime.String()})
		total += frameTime
	}
	table.SetFooter([]string{"AVG", (total / time.Duration(len(frameTimes))).String()})

	table.Render()
	logger.Noticef("benchmark statistics\n%s", buf.String())
}
