package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/lumenray/lumen/cmd"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "lumen"
	app.Usage = "progressive path tracer"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a built-in scene to a PNG file",
			Description: `
Render a scene progressively: sample batches accumulate into shared buffers
and periodically resolve through the combine, denoise and finalize stages.
The last finalized frame is written to the output file.`,
			ArgsUsage: "[scene]",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 640,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 360,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "spp",
					Value: 256,
					Usage: "target samples per pixel",
				},
				cli.IntFlag{
					Name:  "depth",
					Value: 8,
					Usage: "maximum trace depth",
				},
				cli.IntFlag{
					Name:  "batch-min",
					Value: 1,
					Usage: "samples per pixel in the first batch",
				},
				cli.IntFlag{
					Name:  "batch-max",
					Value: 16,
					Usage: "samples per pixel cap for later batches",
				},
				cli.IntFlag{
					Name:  "interlace",
					Value: 1,
					Usage: "render every Nth scanline per batch",
				},
				cli.StringFlag{
					Name:  "denoise",
					Value: "none",
					Usage: "denoise mode: none, guided or firefly",
				},
				cli.Float64Flag{
					Name:  "scale",
					Value: 1.0,
					Usage: "display resolution scale",
				},
				cli.DurationFlag{
					Name:  "max-duration",
					Usage: "stop rendering after this much wall time",
				},
				cli.BoolFlag{
					Name:  "no-jitter",
					Usage: "disable sub-pixel jitter",
				},
				cli.BoolFlag{
					Name:  "debug",
					Usage: "sentinel colors for bad pixels and aux plane output",
				},
				cli.BoolFlag{
					Name:  "no-save",
					Usage: "skip writing the output image (timing runs)",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "worker goroutines (default: all CPUs)",
				},
				cli.IntFlag{
					Name:  "seed",
					Value: 1,
					Usage: "deterministic sampling seed",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			},
			Action: cmd.RenderScene,
		},
		{
			Name:   "scenes",
			Usage:  "list built-in scenes",
			Action: cmd.ListScenes,
		},
	}

	app.Run(os.Args)
}
