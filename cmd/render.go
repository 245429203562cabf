package cmd

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/lumenray/lumen/pkg/renderer"
	"github.com/lumenray/lumen/pkg/scene"
)

// RenderScene renders a built-in scene to a PNG file
func RenderScene(ctx *cli.Context) error {
	setupLogging(ctx)

	sceneName := "default"
	if ctx.NArg() > 0 {
		sceneName = ctx.Args().First()
	}
	sc, err := scene.ByName(sceneName)
	if err != nil {
		return err
	}

	world, err := sc.Build()
	if err != nil {
		return err
	}
	stats := world.BVH.Stats()
	logger.Noticef("scene %q: %d entities, %d bvh nodes (%d leaves)",
		sceneName, stats.Entities, stats.TotalNodes, stats.LeafNodes)

	opts := renderer.DefaultOptions()
	opts.Width = ctx.Int("width")
	opts.Height = ctx.Int("height")
	opts.TargetSamples = ctx.Int("spp")
	opts.TraceDepth = ctx.Int("depth")
	opts.BatchSamplesMin = ctx.Int("batch-min")
	opts.BatchSamplesMax = ctx.Int("batch-max")
	opts.Interlacing = ctx.Int("interlace")
	opts.Denoise = renderer.DenoiseMode(ctx.String("denoise"))
	opts.ResolutionScale = ctx.Float64("scale")
	opts.MaxDuration = ctx.Duration("max-duration")
	opts.Jitter = !ctx.Bool("no-jitter")
	opts.Debug = ctx.Bool("debug")
	opts.Seed = int64(ctx.Int("seed"))
	if workers := ctx.Int("workers"); workers > 0 {
		opts.Workers = workers
	}

	camera := renderer.NewCamera(sc.Camera, opts.Width, opts.Height, opts.Jitter,
		sc.ShutterOpen, sc.ShutterClose)

	display := &lastFrameDisplay{}
	r, err := renderer.NewRenderer(world, camera, opts, display)
	if err != nil {
		return err
	}

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	start := time.Now()
	r.Run(runCtx)
	logger.Noticef("render finished in %s", time.Since(start).Round(time.Millisecond))

	frame, ok := display.Last()
	if !ok {
		return fmt.Errorf("no frame was produced")
	}

	if !ctx.Bool("no-save") {
		out := ctx.String("out")
		if err := savePNG(out, frame.Color); err != nil {
			return err
		}
		logger.Noticef("wrote %s (%d samples per pixel)", out, frame.Samples)

		if opts.Debug {
			if err := savePNG(auxPath(out, "normal"), frame.Normal); err != nil {
				return err
			}
			if err := savePNG(auxPath(out, "albedo"), frame.Albedo); err != nil {
				return err
			}
		}
	}

	printStats(r.Stats())
	return nil
}

// lastFrameDisplay retains the most recent finalized frame
type lastFrameDisplay struct {
	mu    sync.Mutex
	frame renderer.Frame
	have  bool
}

func (d *lastFrameDisplay) Present(frame renderer.Frame) {
	d.mu.Lock()
	d.frame = frame
	d.have = true
	d.mu.Unlock()
	logger.Infof("frame %d presented at %d samples per pixel", frame.Batch, frame.Samples)
}

func (d *lastFrameDisplay) Last() (renderer.Frame, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame, d.have
}

func savePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func auxPath(out, suffix string) string {
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + "-" + suffix + ext
}

func printStats(stats *renderer.Stats) {
	batches, frames, samples, invalid := stats.Snapshot()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Stage", "Runs", "Total", "Mean"})
	for _, row := range stats.StageRows() {
		table.Append([]string{
			row.Stage.String(),
			strconv.Itoa(row.Runs),
			row.Total.Round(time.Microsecond).String(),
			row.Mean.Round(time.Microsecond).String(),
		})
	}
	table.Render()

	logger.Noticef("%d batches, %d frames, %d samples traced (%d invalidated)",
		batches, frames, samples, invalid)
}
