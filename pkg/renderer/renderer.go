// Package renderer drives the asynchronous render pipeline: accumulate
// batches fan out across a worker pool, then flow through combine, denoise
// and finalize stages as polled jobs drawing buffers from a bounded pool.
package renderer

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/lumenray/lumen/log"
	"github.com/lumenray/lumen/pkg/core"
	"github.com/lumenray/lumen/pkg/integrator"
)

var logger = log.New("renderer")

// Renderer owns the accumulation buffers and schedules batch chains through
// the pipeline. All exported methods must be called from a single goroutine;
// only job bodies run concurrently.
type Renderer struct {
	opts   Options
	world  *integrator.World
	camera *Camera
	integ  *integrator.PathIntegrator

	sched    *Scheduler
	pool     *BufferPool
	accum    *Planes
	diag     *Diagnostics
	denoiser Denoiser
	display  Display
	stats    *Stats

	batchIndex    int
	pendingFrames int
	token         *CancelToken
	complete      bool
	stopped       bool
	deadline      time.Time
}

// NewRenderer validates the options and builds a renderer targeting the
// given display. A denoiser that fails to initialize is logged and replaced
// with the pass-through mode.
func NewRenderer(world *integrator.World, camera *Camera, opts Options, display Display) (*Renderer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	denoiser, err := NewDenoiser(opts.Denoise)
	if err != nil {
		logger.Warningf("denoiser unavailable: %v; falling back to %s", err, DenoiseNone)
		denoiser = noopDenoiser{}
	}

	r := &Renderer{
		opts:     opts,
		world:    world,
		camera:   camera,
		integ:    integrator.NewPathIntegrator(integrator.Config{TraceDepth: opts.TraceDepth}),
		sched:    NewScheduler(),
		pool:     NewBufferPool(opts.Width, opts.Height, opts.MaxPendingFrames+1),
		accum:    NewPlanes(opts.Width, opts.Height),
		diag:     NewDiagnostics(opts.Width, opts.Height),
		denoiser: denoiser,
		display:  display,
		stats:    NewStats(),
		token:    NewCancelToken(),
	}
	if opts.MaxDuration > 0 {
		r.deadline = time.Now().Add(opts.MaxDuration)
	}
	return r, nil
}

// Stats returns the run's live counters
func (r *Renderer) Stats() *Stats {
	return r.stats
}

// Complete reports whether the sample target has been reached
func (r *Renderer) Complete() bool {
	return r.complete
}

// Finished reports whether no further work will be produced or is in flight
func (r *Renderer) Finished() bool {
	return (r.complete || r.stopped) && r.pendingFrames == 0 && r.sched.Idle()
}

// Stop cancels the current batch chains. In-flight jobs observe the token
// and finish early; their buffers are still released through the normal
// completion path.
func (r *Renderer) Stop() {
	if r.stopped {
		return
	}
	r.stopped = true
	r.token.Cancel()
}

// Tick advances the pipeline one step without blocking: reaps finished
// jobs, starts queued ones and schedules the next batch when capacity
// allows. Call it from the driving loop at whatever cadence suits the host.
func (r *Renderer) Tick() {
	if !r.stopped && !r.deadline.IsZero() && time.Now().After(r.deadline) {
		logger.Noticef("max duration reached after %d batches, stopping", r.batchIndex)
		r.Stop()
	}
	r.sched.Tick()
	r.maybeScheduleBatch()
	r.sched.Tick()
}

// Run ticks the pipeline until the target is reached or the context is
// cancelled, then drains. It is a convenience loop for hosts without their
// own tick source.
func (r *Renderer) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for !r.runDone() {
		select {
		case <-ctx.Done():
			r.Stop()
		case <-ticker.C:
		}
		r.Tick()
	}
	r.Drain()
}

// runDone gates the Run loop: a stopped run always ends once drained, while
// a completed run ends only when StopOnComplete is set
func (r *Renderer) runDone() bool {
	if !r.Finished() {
		return false
	}
	return r.stopped || r.opts.StopOnComplete
}

// Drain cancels outstanding work and force-completes every job, blocking
// until the pipeline is empty and all buffers are back in the pool
func (r *Renderer) Drain() {
	r.token.Cancel()
	r.sched.Drain()
	r.token = NewCancelToken()
}

// SwapWorld drains the pipeline, replaces the scene and resets accumulation
// so the next batch starts a fresh trace run
func (r *Renderer) SwapWorld(world *integrator.World) {
	r.Drain()
	r.world = world
	r.ResetAccumulation()
}

// ResetAccumulation clears the trace run: buffers, batch counter and
// completion state. Outstanding batches must be drained first.
func (r *Renderer) ResetAccumulation() {
	r.accum.Reset()
	r.diag.Reset()
	r.batchIndex = 0
	r.complete = false
	r.stopped = false
	if r.opts.MaxDuration > 0 {
		r.deadline = time.Now().Add(r.opts.MaxDuration)
	}
}

func (r *Renderer) maybeScheduleBatch() {
	if r.complete || r.stopped {
		return
	}
	if r.sched.Outstanding(StageAccumulate) > 0 {
		return
	}
	if r.pendingFrames >= r.opts.MaxPendingFrames {
		return
	}

	batch := r.batchIndex
	phase := 0
	if r.opts.Interlacing > 1 {
		phase = batch % r.opts.Interlacing
	}

	// Clamp against the phase about to be traced, not the global minimum,
	// which lags a full interlace cycle behind
	samples := r.opts.samplesForBatch(batch, r.accum.MinSamplesRows(phase, r.opts.Interlacing))
	if samples == 0 {
		if r.accum.MinSamples() >= uint32(r.opts.TargetSamples) {
			r.complete = true
			logger.Noticef("target of %d samples per pixel reached in %d batches",
				r.opts.TargetSamples, r.batchIndex)
		} else {
			// This phase is done; skip to the next one
			r.batchIndex++
		}
		return
	}

	r.batchIndex++
	r.pendingFrames++
	r.diag.Reset()

	token := r.token
	job := NewJob("accumulate", token,
		func() {
			start := time.Now()
			r.runAccumulate(samples, phase, batch, token)
			r.stats.RecordStage(StageAccumulate, time.Since(start))
		},
		func() { r.onAccumulateDone(batch, token) })
	r.sched.Enqueue(StageAccumulate, job)
	logger.Debugf("scheduled batch %d: %d samples, interlace phase %d", batch, samples, phase)
}

// onAccumulateDone runs on the scheduler goroutine with no accumulate job
// active, so it is the one safe point to read the accumulation buffers. It
// snapshots them into a pooled buffer and sends that downstream; the next
// accumulate batch can then run concurrently with the rest of the chain.
func (r *Renderer) onAccumulateDone(batch int, token *CancelToken) {
	r.stats.RecordBatch(r.diag.Reduce())

	resolve, ok := r.pool.Take()
	if !ok {
		logger.Warningf("buffer pool exhausted, dropping frame for batch %d", batch)
		r.pendingFrames--
		return
	}
	resolve.CopyFrom(r.accum)

	job := NewJob("combine", token,
		func() {
			start := time.Now()
			combinePlanes(resolve, r.opts.Debug)
			r.stats.RecordStage(StageCombine, time.Since(start))
		},
		func() { r.onCombineDone(batch, token, resolve) })
	r.sched.Enqueue(StageCombine, job)
}

func (r *Renderer) onCombineDone(batch int, token *CancelToken, resolve *Planes) {
	job := NewJob("denoise", token,
		func() {
			start := time.Now()
			out, err := r.denoiser.Denoise(resolve.Color, resolve.Normal, resolve.Albedo,
				resolve.Width, resolve.Height)
			if err != nil {
				logger.Errorf("denoiser %s failed: %v; falling back to %s",
					r.denoiser.Name(), err, DenoiseNone)
				r.denoiser = noopDenoiser{}
			} else {
				copy(resolve.Color, out)
			}
			r.stats.RecordStage(StageDenoise, time.Since(start))
		},
		func() { r.onDenoiseDone(batch, token, resolve) })
	r.sched.Enqueue(StageDenoise, job)
}

func (r *Renderer) onDenoiseDone(batch int, token *CancelToken, resolve *Planes) {
	frame := &Frame{Batch: batch, Samples: resolve.MinSamples()}
	job := NewJob("finalize", token,
		func() {
			start := time.Now()
			frame.Color, frame.Normal, frame.Albedo = finalizePlanes(resolve, r.opts.ResolutionScale)
			r.stats.RecordStage(StageFinalize, time.Since(start))
		},
		func() {
			r.pool.Return(resolve)
			r.pendingFrames--
			if !token.Cancelled() && frame.Color != nil {
				r.display.Present(*frame)
				r.stats.RecordFrame()
			}
		})
	r.sched.Enqueue(StageFinalize, job)
}

// runAccumulate fans pixels out across the worker pool, one scanline at a
// time. Each worker owns its integrator scratch; each pixel publishes its
// batch contribution to the shared planes only after its sample loop ends.
func (r *Renderer) runAccumulate(samples, phase, batch int, token *CancelToken) {
	rows := make(chan int, r.opts.Height)
	for y := phase; y < r.opts.Height; y += r.opts.Interlacing {
		rows <- y
	}
	close(rows)

	var wg sync.WaitGroup
	for w := 0; w < r.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scratch := integrator.NewScratch()
			for y := range rows {
				if token.Cancelled() {
					return
				}
				r.accumulateRow(y, samples, batch, token, scratch)
			}
		}()
	}
	wg.Wait()
}

func (r *Renderer) accumulateRow(y, samples, batch int, token *CancelToken, scratch *integrator.Scratch) {
	for x := 0; x < r.opts.Width; x++ {
		if token.Cancelled() {
			return
		}
		i := r.accum.Index(x, y)
		random := rand.New(rand.NewSource(r.pixelSeed(x, y, batch)))
		var sampler core.Sampler = core.NewRandomSampler(random)
		if r.opts.Jitter {
			sampler = core.NewDitheredSampler(sampler, x, y)
		}

		var colorSum, normalSum, albedoSum core.Vec3
		var accepted uint32
		for s := 0; s < samples; s++ {
			ray := r.camera.GetRay(x, y, sampler)
			result, ok := r.integ.TraceSample(ray, r.world, sampler, scratch)
			r.diag.PrimaryRays[i]++
			if !ok {
				r.diag.Invalidated[i]++
				continue
			}
			colorSum = colorSum.Add(result.Color)
			normalSum = normalSum.Add(result.Normal)
			albedoSum = albedoSum.Add(result.Albedo)
			accepted++
		}

		r.accum.Color[i] = r.accum.Color[i].Add(colorSum)
		r.accum.Normal[i] = r.accum.Normal[i].Add(normalSum)
		r.accum.Albedo[i] = r.accum.Albedo[i].Add(albedoSum)
		r.accum.Samples[i] += accepted
	}
}

// pixelSeed derives a deterministic per-pixel, per-batch seed so a fixed
// option seed reproduces the run bit for bit
func (r *Renderer) pixelSeed(x, y, batch int) int64 {
	return r.opts.Seed + int64(batch)<<40 + int64(y*r.opts.Width+x)
}

// Magenta stands in for pixels with no usable value when debugging
var sentinelColor = core.NewVec3(1, 0, 1)

// combinePlanes resolves accumulated sums to averages in place. Pixels with
// no samples or a non-finite average become the debug sentinel, or black
// when debugging is off.
func combinePlanes(p *Planes, debug bool) {
	for i := range p.Color {
		n := p.Samples[i]
		if n == 0 {
			p.Color[i] = sentinel(debug)
			p.Normal[i] = core.Vec3{}
			p.Albedo[i] = core.Vec3{}
			continue
		}
		inv := 1 / float64(n)
		avg := p.Color[i].Multiply(inv)
		if !avg.IsFinite() {
			avg = sentinel(debug)
		}
		p.Color[i] = avg

		normal := p.Normal[i].Multiply(inv)
		if normal.LengthSquared() > 0 {
			normal = normal.Normalize()
		}
		p.Normal[i] = normal
		p.Albedo[i] = p.Albedo[i].Multiply(inv)
	}
}

func sentinel(debug bool) core.Vec3 {
	if debug {
		return sentinelColor
	}
	return core.Vec3{}
}
