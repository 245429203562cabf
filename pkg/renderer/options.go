package renderer

import (
	"fmt"
	"runtime"
	"time"
)

// Options configures a render run
type Options struct {
	Width  int // Render resolution before scaling
	Height int

	// ResolutionScale multiplies the render resolution to get the display
	// resolution. Values above 1 upscale the finalized image.
	ResolutionScale float64

	// TargetSamples is the per-pixel sample count at which the trace run is
	// complete. Zero means render until cancelled.
	TargetSamples int

	// Batch sample counts ramp geometrically from min to max so early
	// frames appear quickly and later frames amortize scheduling overhead
	BatchSamplesMin int
	BatchSamplesMax int

	TraceDepth int

	// Interlacing renders every Nth scanline per batch, cycling phases
	// across batches. 1 disables interlacing.
	Interlacing int

	Jitter  bool
	Denoise DenoiseMode

	// MaxDuration cancels the run after this much wall time. Zero means no
	// limit.
	MaxDuration time.Duration

	// StopOnComplete makes Run return once the sample target is reached.
	// When false, Run keeps ticking so an interactive host can swap worlds
	// or reset accumulation without restarting the loop.
	StopOnComplete bool

	// MaxPendingFrames caps the batch chains allowed past accumulation at
	// once. Small values keep latency low; the pipeline schedules no new
	// batch while the cap is reached.
	MaxPendingFrames int

	Workers int
	Seed    int64

	// Debug substitutes sentinel colors for non-finite or zero-sample
	// pixels instead of black
	Debug bool
}

// DefaultOptions returns a conservative configuration for interactive use
func DefaultOptions() Options {
	return Options{
		Width:            640,
		Height:           360,
		ResolutionScale:  1,
		TargetSamples:    256,
		BatchSamplesMin:  1,
		BatchSamplesMax:  16,
		TraceDepth:       8,
		Interlacing:      1,
		Jitter:           true,
		Denoise:          DenoiseNone,
		StopOnComplete:   true,
		MaxPendingFrames: 2,
		Workers:          runtime.NumCPU(),
		Seed:             1,
	}
}

// Validate rejects configurations the pipeline cannot run
func (o *Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", o.Width, o.Height)
	}
	if o.ResolutionScale <= 0 {
		return fmt.Errorf("resolution scale must be positive, got %g", o.ResolutionScale)
	}
	if o.BatchSamplesMin <= 0 || o.BatchSamplesMax < o.BatchSamplesMin {
		return fmt.Errorf("invalid batch sample range [%d, %d]", o.BatchSamplesMin, o.BatchSamplesMax)
	}
	if o.TraceDepth <= 0 {
		return fmt.Errorf("trace depth must be positive, got %d", o.TraceDepth)
	}
	if o.Interlacing < 1 {
		return fmt.Errorf("interlacing must be at least 1, got %d", o.Interlacing)
	}
	if o.MaxPendingFrames < 1 {
		return fmt.Errorf("max pending frames must be at least 1, got %d", o.MaxPendingFrames)
	}
	if o.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", o.Workers)
	}
	return nil
}

// samplesForBatch ramps the batch size geometrically within the configured
// range, clamped so the accumulated count never overshoots the target
func (o *Options) samplesForBatch(batch int, accumulated uint32) int {
	n := o.BatchSamplesMin
	for i := 0; i < batch && n < o.BatchSamplesMax; i++ {
		n *= 2
	}
	if n > o.BatchSamplesMax {
		n = o.BatchSamplesMax
	}
	if o.TargetSamples > 0 {
		remaining := o.TargetSamples - int(accumulated)
		if remaining < n {
			n = remaining
		}
	}
	if n < 0 {
		n = 0
	}
	return n
}
