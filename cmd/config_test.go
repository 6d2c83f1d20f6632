package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// A flagSource backed by a map of explicitly set flags.
type mockFlags map[string]interface{}

func (f mockFlags) IsSet(name string) bool { _, ok := f[name]; return ok }
func (f mockFlags) Bool(name string) bool { v, _ := f[name].(bool); return v }
func (f mockFlags) Int(name string) int { v, _ := f[name].(int); return v }
func (f mockFlags) Int64(name string) int64 { v, _ := f[name].(int64); return v }
func (f mockFlags) Float64(name string) float64 { v, _ := f[name].(float64); return v }
func (f mockFlags) String(name string) string { v, _ := f[name].(string); return v }

func TestDecodeRenderConfig(t *testing.T) {
	payload := `
width: 800
aspect: 1.5
spp: 10
depth: 5
workers: 3
seed: 42
scene: scenes/glass.yaml
vfov: 35
out: out.ppm
bvh: false
`
	cfg := defaultRenderConfig()
	if err := decodeRenderConfig(strings.NewReader(payload), cfg); err != nil {
		t.Fatal(err)
	}

	exp := RenderConfig{
		Width:           800,
		Aspect:          1.5,
		SamplesPerPixel: 10,
		MaxDepth:        5,
		Workers:         3,
		Seed:            42,
		Scene:           "scenes/glass.yaml",
		VFov:            35,
		Out:             "out.ppm",
	}
	if *cfg != exp {
		t.Fatalf("expected config %+v; got %+v", exp, *cfg)
	}
}

func TestDecodeRenderConfigKeepsDefaults(t *testing.T) {
	type spec struct {
		payload string
		expErr  bool
	}
	specs := []spec{
		{"", false},
		{"spp: 4\n", false},
		{"samples: 4\n", true},
		{"width: [1, 2]\n", true},
	}

	for index, s := range specs {
		cfg := defaultRenderConfig()
		err := decodeRenderConfig(strings.NewReader(s.payload), cfg)
		if s.expErr {
			if err == nil {
				t.Fatalf("[spec %d] expected an error", index)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
		if cfg.Width != DefaultWidth || cfg.MaxDepth != DefaultMaxDepth || cfg.Out != DefaultOut || !cfg.BVH {
			t.Fatalf("[spec %d] expected unspecified values to keep their defaults; got %+v", index, *cfg)
		}
	}
}

func TestLoadRenderConfigFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "render.yaml")
	if err := os.WriteFile(cfgFile, []byte("width: 64\nscene: default\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultRenderConfig()
	if err := loadRenderConfigFile(cfgFile, cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 64 || cfg.Scene != "default" {
		t.Fatalf("expected width 64 and scene 'default'; got %+v", *cfg)
	}

	if err := loadRenderConfigFile(filepath.Join(t.TempDir(), "missing.yaml"), cfg); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := defaultRenderConfig()
	if err := decodeRenderConfig(strings.NewReader("width: 800\nspp: 10\nout: a.png\n"), cfg); err != nil {
		t.Fatal(err)
	}

	overrideRenderConfig(cfg, mockFlags{
		"spp":    20,
		"seed":   int64(7),
		"vfov":   50.0,
		"scene":  "sphere",
		"no-bvh": true,
	})

	if cfg.Width != 800 || cfg.Out != "a.png" {
		t.Fatalf("expected unset flags to keep config file values; got %+v", *cfg)
	}
	if cfg.SamplesPerPixel != 20 || cfg.Seed != 7 || cfg.VFov != 50 || cfg.Scene != "sphere" || cfg.BVH {
		t.Fatalf("expected set flags to override config values; got %+v", *cfg)
	}
}

func TestResolveRenderConfig(t *testing.T) {
	now := func() time.Time { return time.Unix(0, 12345) }

	type spec struct {
		mutate func(*RenderConfig)
		expErr bool
	}
	specs := []spec{
		{func(c *RenderConfig) {}, false},
		{func(c *RenderConfig) { c.Width = 0 }, true},
		{func(c *RenderConfig) { c.Width = -1 }, true},
		{func(c *RenderConfig) { c.Aspect = 0 }, true},
		{func(c *RenderConfig) { c.SamplesPerPixel = 0 }, true},
		{func(c *RenderConfig) { c.Workers = -2 }, true},
		{func(c *RenderConfig) { c.Scene = "" }, true},
		// Negative depths are allowed and render black frames
		{func(c *RenderConfig) { c.MaxDepth = -1 }, false},
	}

	for index, s := range specs {
		cfg := defaultRenderConfig()
		s.mutate(cfg)
		err := cfg.resolve(now)
		if s.expErr {
			if err == nil {
				t.Fatalf("[spec %d] expected an error", index)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
		if cfg.Workers <= 0 {
			t.Fatalf("[spec %d] expected a positive default worker count; got %d", index, cfg.Workers)
		}
		if cfg.Seed != 12345 {
			t.Fatalf("[spec %d] expected seed to be derived from the clock; got %d", index, cfg.Seed)
		}
	}

	// Explicit values are kept
	cfg := defaultRenderConfig()
	cfg.Workers, cfg.Seed = 3, 9
	if err := cfg.resolve(now); err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 3 || cfg.Seed != 9 {
		t.Fatalf("expected explicit workers and seed to be kept; got %d and %d", cfg.Workers, cfg.Seed)
	}
}

func TestRendererOptions(t *testing.T) {
	cfg := defaultRenderConfig()
	cfg.Workers, cfg.Seed = 4, 1
	opts := cfg.rendererOptions()

	if opts.FrameW != 400 || opts.FrameH != 225 {
		t.Fatalf("expected a 400x225 frame; got %dx%d", opts.FrameW, opts.FrameH)
	}
	if opts.SamplesPerPixel != DefaultSamplesPerPixel || opts.MaxDepth != DefaultMaxDepth || opts.Workers != 4 || opts.Seed != 1 {
		t.Fatalf("unexpected renderer options %+v", opts)
	}
}

func TestDefaultWorkers(t *testing.T) {
	if got := defaultWorkers(); got <= 0 {
		t.Fatalf("expected a positive worker count; got %d", got)
	}
}
