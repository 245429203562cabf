package renderer

import (
	"github.com/lumenray/lumen/pkg/core"
)

// Planes holds parallel per-pixel float buffers: color with a running sample
// count, plus the normal and albedo auxiliary outputs used for denoising.
// During accumulation the color plane carries running sums; after combine it
// carries resolved averages.
type Planes struct {
	Width, Height int
	Color         []core.Vec3
	Samples       []uint32
	Normal        []core.Vec3
	Albedo        []core.Vec3
}

// NewPlanes allocates zeroed planes for the given dimensions
func NewPlanes(width, height int) *Planes {
	n := width * height
	return &Planes{
		Width:   width,
		Height:  height,
		Color:   make([]core.Vec3, n),
		Samples: make([]uint32, n),
		Normal:  make([]core.Vec3, n),
		Albedo:  make([]core.Vec3, n),
	}
}

// Index returns the flat buffer index for pixel (x, y)
func (p *Planes) Index(x, y int) int {
	return y*p.Width + x
}

// Reset zeroes all planes for a fresh trace run
func (p *Planes) Reset() {
	for i := range p.Color {
		p.Color[i] = core.Vec3{}
		p.Samples[i] = 0
		p.Normal[i] = core.Vec3{}
		p.Albedo[i] = core.Vec3{}
	}
}

// MinSamples returns the smallest per-pixel sample count, the measure of
// trace-run completion under interlacing
func (p *Planes) MinSamples() uint32 {
	if len(p.Samples) == 0 {
		return 0
	}
	lowest := p.Samples[0]
	for _, s := range p.Samples[1:] {
		if s < lowest {
			lowest = s
		}
	}
	return lowest
}

// MinSamplesRows returns the smallest sample count over the rows of one
// interlace phase (y congruent to phase modulo step). Batch scheduling clamps
// against the phase it is about to trace; the global minimum lags a full
// phase cycle behind and would let scheduled rows overshoot the target. A
// phase with no rows reports the maximum count so it is treated as done.
func (p *Planes) MinSamplesRows(phase, step int) uint32 {
	lowest := ^uint32(0)
	for y := phase; y < p.Height; y += step {
		row := p.Samples[y*p.Width : (y+1)*p.Width]
		for _, s := range row {
			if s < lowest {
				lowest = s
			}
		}
	}
	return lowest
}

// CopyFrom copies all planes from another buffer of identical dimensions
func (p *Planes) CopyFrom(src *Planes) {
	copy(p.Color, src.Color)
	copy(p.Samples, src.Samples)
	copy(p.Normal, src.Normal)
	copy(p.Albedo, src.Albedo)
}

// Diagnostics holds per-pixel counters, write-only during a batch and
// reduced once after batch completion
type Diagnostics struct {
	Width, Height int
	PrimaryRays   []uint32 // Samples traced per pixel
	Invalidated   []uint32 // Samples discarded per pixel
}

// NewDiagnostics allocates zeroed diagnostics counters
func NewDiagnostics(width, height int) *Diagnostics {
	n := width * height
	return &Diagnostics{
		Width:       width,
		Height:      height,
		PrimaryRays: make([]uint32, n),
		Invalidated: make([]uint32, n),
	}
}

// Reset zeroes the counters for the next batch
func (d *Diagnostics) Reset() {
	for i := range d.PrimaryRays {
		d.PrimaryRays[i] = 0
		d.Invalidated[i] = 0
	}
}

// DiagSummary is the single-threaded reduction of a batch's counters
type DiagSummary struct {
	PrimaryRays uint64
	Invalidated uint64
}

// Reduce sums the per-pixel counters into a batch summary
func (d *Diagnostics) Reduce() DiagSummary {
	var s DiagSummary
	for i := range d.PrimaryRays {
		s.PrimaryRays += uint64(d.PrimaryRays[i])
		s.Invalidated += uint64(d.Invalidated[i])
	}
	return s
}
