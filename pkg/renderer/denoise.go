package renderer

import (
	"fmt"
	"math"

	"github.com/lumenray/lumen/pkg/core"
)

// DenoiseMode selects the post-combine filter applied to resolved color
type DenoiseMode string

const (
	DenoiseNone    DenoiseMode = "none"
	DenoiseGuided  DenoiseMode = "guided"
	DenoiseFirefly DenoiseMode = "firefly"
)

// Denoiser filters a resolved color plane using the normal and albedo
// auxiliary planes as edge guides. Implementations must not modify their
// inputs; they return a fresh color slice.
type Denoiser interface {
	Name() string
	Denoise(color, normal, albedo []core.Vec3, width, height int) ([]core.Vec3, error)
}

// NewDenoiser resolves a mode string to a denoiser
func NewDenoiser(mode DenoiseMode) (Denoiser, error) {
	switch mode {
	case DenoiseNone, "":
		return noopDenoiser{}, nil
	case DenoiseGuided:
		return &guidedDenoiser{radius: 1, sigmaNormal: 0.25, sigmaAlbedo: 0.2}, nil
	case DenoiseFirefly:
		return &fireflyDenoiser{threshold: 4}, nil
	}
	return nil, fmt.Errorf("unknown denoise mode %q", mode)
}

type noopDenoiser struct{}

func (noopDenoiser) Name() string { return string(DenoiseNone) }

func (noopDenoiser) Denoise(color, normal, albedo []core.Vec3, width, height int) ([]core.Vec3, error) {
	out := make([]core.Vec3, len(color))
	copy(out, color)
	return out, nil
}

// guidedDenoiser is a small cross-bilateral box filter. Neighbor weights
// fall off with normal and albedo dissimilarity so geometric and texture
// edges survive the blur.
type guidedDenoiser struct {
	radius      int
	sigmaNormal float64
	sigmaAlbedo float64
}

func (d *guidedDenoiser) Name() string { return string(DenoiseGuided) }

func (d *guidedDenoiser) Denoise(color, normal, albedo []core.Vec3, width, height int) ([]core.Vec3, error) {
	if len(color) != width*height {
		return nil, fmt.Errorf("color plane length %d does not match %dx%d", len(color), width, height)
	}
	out := make([]core.Vec3, len(color))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			var sum core.Vec3
			var total float64
			for dy := -d.radius; dy <= d.radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= height {
					continue
				}
				for dx := -d.radius; dx <= d.radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= width {
						continue
					}
					j := ny*width + nx
					w := d.weight(normal[i], normal[j], albedo[i], albedo[j])
					sum = sum.Add(color[j].Multiply(w))
					total += w
				}
			}
			if total > 0 {
				out[i] = sum.Multiply(1 / total)
			} else {
				out[i] = color[i]
			}
		}
	}
	return out, nil
}

func (d *guidedDenoiser) weight(n0, n1, a0, a1 core.Vec3) float64 {
	dn := n0.Subtract(n1).LengthSquared()
	da := a0.Subtract(a1).LengthSquared()
	return math.Exp(-dn/(2*d.sigmaNormal*d.sigmaNormal) - da/(2*d.sigmaAlbedo*d.sigmaAlbedo))
}

// fireflyDenoiser clamps isolated high-energy pixels to the luminance of
// their brightest 3x3 neighbor, suppressing the fireflies that low-sample
// light transport produces
type fireflyDenoiser struct {
	threshold float64
}

func (d *fireflyDenoiser) Name() string { return string(DenoiseFirefly) }

func (d *fireflyDenoiser) Denoise(color, normal, albedo []core.Vec3, width, height int) ([]core.Vec3, error) {
	if len(color) != width*height {
		return nil, fmt.Errorf("color plane length %d does not match %dx%d", len(color), width, height)
	}
	out := make([]core.Vec3, len(color))
	copy(out, color)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			lum := color[i].Luminance()
			if lum <= 0 {
				continue
			}
			maxNeighbor := 0.0
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= height {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= width || (dx == 0 && dy == 0) {
						continue
					}
					if l := color[ny*width+nx].Luminance(); l > maxNeighbor {
						maxNeighbor = l
					}
				}
			}
			if maxNeighbor > 0 && lum > maxNeighbor*d.threshold {
				out[i] = color[i].Multiply(maxNeighbor * d.threshold / lum)
			}
		}
	}
	return out, nil
}
