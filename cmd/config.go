package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/achilleasa/cpupath/asset"
	"github.com/achilleasa/cpupath/renderer"
	"gopkg.in/yaml.v3"
)

// Render defaults.
const (
	DefaultWidth           = 400
	DefaultAspect          = 16.0 / 9.0
	DefaultSamplesPerPixel = 100
	DefaultMaxDepth        = 50
	DefaultScene           = "random"
	DefaultOut             = "frame.png"

	// Max number of surfaces per bvh leaf.
	bvhLeafItems = 4
)

// Render configuration. Values are loaded from an optional YAML file and
// then overridden by any explicitly set command line flag.
type RenderConfig struct {
	Width           int     `yaml:"width"`
	Aspect          float64 `yaml:"aspect"`
	SamplesPerPixel int     `yaml:"spp"`
	MaxDepth        int     `yaml:"depth"`

	// Number of cpu tracers. Zero selects the number of logical cores.
	Workers int `yaml:"workers"`

	// Seed for scene generation and sampling. Zero derives a seed from the
	// current time.
	Seed int64 `yaml:"seed"`

	// A built-in scene name or a path/URL to a scene description file.
	Scene string `yaml:"scene"`

	// Vertical field of view override; zero keeps the scene's fov.
	VFov float64 `yaml:"vfov"`

	// Output image file.
	Out string `yaml:"out"`

	// Accelerate ray queries with a bvh tree.
	BVH bool `yaml:"bvh"`
}

// The subset of *cli.Context used for applying flag overrides.
type flagSource interface {
	IsSet(name string) bool
	Bool(name string) bool
	Int(name string) int
	Int64(name string) int64
	Float64(name string) float64
	String(name string) string
}

// Get a render config populated with the default values.
func defaultRenderConfig() *RenderConfig {
	return &RenderConfig{
		Width:           DefaultWidth,
		Aspect:          DefaultAspect,
		SamplesPerPixel: DefaultSamplesPerPixel,
		MaxDepth:        DefaultMaxDepth,
		Scene:           DefaultScene,
		Out:             DefaultOut,
		BVH:             true,
	}
}

// Load render config from a local file or http(s) URL on top of the defaults.
func loadRenderConfigFile(pathToConfig string, cfg *RenderConfig) error {
	res, err := asset.NewResource(pathToConfig)
	if err != nil {
		return err
	}
	defer res.Close()

	return decodeRenderConfig(res, cfg)
}

// Decode a YAML render config on top of cfg. Unknown keys are rejected.
func decodeRenderConfig(r io.Reader, cfg *RenderConfig) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Apply explicitly set flags on top of cfg.
func overrideRenderConfig(cfg *RenderConfig, flags flagSource) {
	if flags.IsSet("width") {
		cfg.Width = flags.Int("width")
	}
	if flags.IsSet("aspect") {
		cfg.Aspect = flags.Float64("aspect")
	}
	if flags.IsSet("spp") {
		cfg.SamplesPerPixel = flags.Int("spp")
	}
	if flags.IsSet("depth") {
		cfg.MaxDepth = flags.Int("depth")
	}
	if flags.IsSet("workers") {
		cfg.Workers = flags.Int("workers")
	}
	if flags.IsSet("seed") {
		cfg.Seed = flags.Int64("seed")
	}
	if flags.IsSet("scene") {
		cfg.Scene = flags.String("scene")
	}
	if flags.IsSet("vfov") {
		cfg.VFov = flags.Float64("vfov")
	}
	if flags.IsSet("out") {
		cfg.Out = flags.String("out")
	}
	if flags.IsSet("no-bvh") {
		cfg.BVH = !flags.Bool("no-bvh")
	}
}

// Check the config for values that cannot be converted into renderer
// options and fill in the worker count and seed if left unspecified.
func (cfg *RenderConfig) resolve(now func() time.Time) error {
	switch {
	case cfg.Width <= 0:
		return fmt.Errorf("config: width must be positive; got %d", cfg.Width)
	case !(cfg.Aspect > 0):
		return fmt.Errorf("config: aspect ratio must be positive; got %g", cfg.Aspect)
	case cfg.SamplesPerPixel <= 0:
		return fmt.Errorf("config: samples per pixel must be positive; got %d", cfg.SamplesPerPixel)
	case cfg.Workers < 0:
		return fmt.Errorf("config: worker count must not be negative; got %d", cfg.Workers)
	case cfg.Scene == "":
		return errors.New("config: no scene specified")
	}

	if cfg.Workers == 0 {
		cfg.Workers = defaultWorkers()
	}
	if cfg.Seed == 0 {
		cfg.Seed = now().UnixNano()
	}
	return nil
}

// Get the renderer options for this config.
func (cfg *RenderConfig) rendererOptions() renderer.Options {
	frameW := uint32(cfg.Width)
	return renderer.Options{
		FrameW:          frameW,
		FrameH:          renderer.FrameHeight(frameW, cfg.Aspect),
		SamplesPerPixel: uint32(cfg.SamplesPerPixel),
		MaxDepth:        cfg.MaxDepth,
		Workers:         cfg.Workers,
		Seed:            cfg.Seed,
	}
}
