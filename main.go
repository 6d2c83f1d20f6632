package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/cpupath/cmd"
	"github.com/urfave/cli"
)

// Flags shared by the render commands.
func renderFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "load render settings from a YAML file or URL; explicitly set flags take precedence",
			EnvVar: "CPUPATH_CONFIG",
		},
		cli.IntFlag{
			Name:   "width",
			Value:  cmd.DefaultWidth,
			Usage:  "frame width",
			EnvVar: "CPUPATH_WIDTH",
		},
		cli.Float64Flag{
			Name:   "aspect",
			Value:  cmd.DefaultAspect,
			Usage:  "frame aspect ratio; the frame height is derived from the width",
			EnvVar: "CPUPATH_ASPECT",
		},
		cli.IntFlag{
			Name:   "spp",
			Value:  cmd.DefaultSamplesPerPixel,
			Usage:  "samples per pixel",
			EnvVar: "CPUPATH_SPP",
		},
		cli.IntFlag{
			Name:   "depth",
			Value:  cmd.DefaultMaxDepth,
			Usage:  "max ray bounce depth",
			EnvVar: "CPUPATH_DEPTH",
		},
		cli.IntFlag{
			Name:   "workers, w",
			Usage:  "number of cpu tracers (default: number of logical cores)",
			EnvVar: "CPUPATH_WORKERS",
		},
		cli.Int64Flag{
			Name:   "seed",
			Usage:  "random seed (default: derived from the current time)",
			EnvVar: "CPUPATH_SEED",
		},
		cli.StringFlag{
			Name:   "scene, s",
			Value:  cmd.DefaultScene,
			Usage:  "built-in scene name or scene file; a positional argument takes precedence",
			EnvVar: "CPUPATH_SCENE",
		},
		cli.Float64Flag{
			Name:   "vfov",
			Usage:  "override the scene's vertical field of view (degrees)",
			EnvVar: "CPUPATH_VFOV",
		},
		cli.BoolFlag{
			Name:   "no-bvh",
			Usage:  "test rays against every surface instead of using a bvh tree",
			EnvVar: "CPUPATH_NO_BVH",
		},
	}
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "cpupath"
	app.Usage = "render sphere scenes using cpu path tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "set log level (debug, info, notice, warning, error)",
			EnvVar: "CPUPATH_LOG_LEVEL",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "list-devices",
			Usage:  "list the cpus available for tracing",
			Action: cmd.ListDevices,
		},
		{
			Name:  "render",
			Usage: "render scene",
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render single frame",
					Description: `
Render a single frame of a built-in scene or a YAML scene description and
write it to a PNG or PPM image. The image format is selected by the output
file extension. Press Ctrl+C to abort the render.`,
					ArgsUsage: "[scene]",
					Flags: append(renderFlags(),
						cli.StringFlag{
							Name:   "out, o",
							Value:  cmd.DefaultOut,
							Usage:  "image filename for the rendered frame (.png or .ppm, optionally suffixed with .zst)",
							EnvVar: "CPUPATH_OUT",
						},
					),
					Action: cmd.RenderFrame,
				},
				{
					Name:  "bench",
					Usage: "render a sequence of frames and report timings",
					Description: `
Render a number of frames using a scheduler that rebalances the column blocks
assigned to each tracer based on the throughput measured in the previous frame.`,
					ArgsUsage: "[scene]",
					Flags: append(renderFlags(),
						cli.IntFlag{
							Name:  "frames, n",
							Value: 10,
							Usage: "number of frames to render",
						},
					),
					Action: cmd.RenderBench,
				},
			},
		},
		{
			Name:  "scene",
			Usage: "inspect scenes",
			Subcommands: []cli.Command{
				{
					Name:   "list",
					Usage:  "list built-in scenes",
					Action: cmd.ListScenes,
				},
				{
					Name:      "info",
					Usage:     "display scene information",
					ArgsUsage: "scene",
					Flags: []cli.Flag{
						cli.Float64Flag{
							Name:  "aspect",
							Value: cmd.DefaultAspect,
							Usage: "frame aspect ratio used for the scene camera",
						},
						cli.Int64Flag{
							Name:  "seed",
							Value: 1,
							Usage: "seed for randomly generated scenes",
						},
					},
					Action: cmd.ShowSceneInfo,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
