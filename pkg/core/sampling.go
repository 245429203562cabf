package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms.
// Can be swapped out for deterministic testing or different sampling patterns.
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// ditherTable is a small tiled offset pattern used to decorrelate per-pixel
// sample sequences (Cranley-Patterson rotation). The values approximate a
// blue-noise distribution over a 4x4 tile.
var ditherTable = [16]float64{
	0.0625, 0.5625, 0.1875, 0.6875,
	0.8125, 0.3125, 0.9375, 0.4375,
	0.2500, 0.7500, 0.1250, 0.6250,
	1.0000, 0.5000, 0.8750, 0.3750,
}

// DitheredSampler wraps another sampler and rotates its output by a fixed
// per-pixel offset, trading random noise structure for a more even
// distribution across neighboring pixels.
type DitheredSampler struct {
	inner  Sampler
	offset float64
}

// NewDitheredSampler creates a dithered sampler for the given pixel coordinates
func NewDitheredSampler(inner Sampler, pixelX, pixelY int) *DitheredSampler {
	idx := (pixelY&3)<<2 | (pixelX & 3)
	return &DitheredSampler{inner: inner, offset: ditherTable[idx]}
}

// Get1D returns a rotated random float64 in [0, 1)
func (d *DitheredSampler) Get1D() float64 {
	v := d.inner.Get1D() + d.offset
	if v >= 1.0 {
		v -= 1.0
	}
	return v
}

// Get2D returns a rotated random sample pair in [0, 1)
func (d *DitheredSampler) Get2D() Vec2 {
	return NewVec2(d.Get1D(), d.Get1D())
}

// SampleCosineHemisphere generates a cosine-weighted random direction in the
// hemisphere around normal
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	a := 2.0 * math.Pi * sample.X
	z := sample.Y
	r := math.Sqrt(z)

	x := r * math.Cos(a)
	y := r * math.Sin(a)
	zCoord := math.Sqrt(1.0 - z)

	// Build an orthonormal basis around the normal
	var nt Vec3
	if math.Abs(normal.X) > 0.1 {
		nt = NewVec3(0, 1, 0)
	} else {
		nt = NewVec3(1, 0, 0)
	}
	tangent := nt.Cross(normal).Normalize()
	bitangent := normal.Cross(tangent)

	return tangent.Multiply(x).Add(bitangent.Multiply(y)).Add(normal.Multiply(zCoord))
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// BalanceHeuristic combines the densities of two sampling strategies chosen
// with probabilities pf and pg into the one-sample balance-heuristic mixture
// density. Dividing a sample's contribution by this mixture is equivalent to
// applying the balance-heuristic weight to the chosen strategy.
func BalanceHeuristic(pf, fPdf, pg, gPdf float64) float64 {
	return pf*fPdf + pg*gPdf
}
