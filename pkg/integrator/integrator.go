package integrator

import (
	"github.com/lumenray/lumen/pkg/core"
	"github.com/lumenray/lumen/pkg/geometry"
)

const (
	// Minimum hit distance; the origin offset below keeps secondary rays
	// from re-hitting the surface they left
	tMinEps       = 1e-4
	tMaxInf       = 1e9
	originEpsilon = 1e-4
)

// Config controls the path integrator
type Config struct {
	TraceDepth int // Maximum number of bounces per sample
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{TraceDepth: 8}
}

// SampleResult carries one sample's radiance plus the auxiliary outputs the
// denoiser consumes
type SampleResult struct {
	Color  core.Vec3
	Normal core.Vec3 // Geometric normal at the first non-specular hit
	Albedo core.Vec3 // Surface color at the first non-specular hit
}

// Scratch holds per-worker reusable state: the BVH traversal stacks and the
// per-bounce emission/weight stacks. Not safe for concurrent use.
type Scratch struct {
	traverse *geometry.TraverseScratch
	emission []core.Vec3
	weight   []core.Vec3
}

// NewScratch creates an empty integrator scratch
func NewScratch() *Scratch {
	return &Scratch{
		traverse: geometry.NewTraverseScratch(),
		emission: make([]core.Vec3, 0, 16),
		weight:   make([]core.Vec3, 0, 16),
	}
}

// PathIntegrator implements unidirectional path tracing with importance
// sampling of emissive surfaces and probabilistic participating media
type PathIntegrator struct {
	config     Config
	importance *ImportanceSampler
}

// NewPathIntegrator creates a new path integrator
func NewPathIntegrator(config Config) *PathIntegrator {
	return &PathIntegrator{
		config:     config,
		importance: NewImportanceSampler(),
	}
}

// TraceSample traces one sample path and returns its radiance and auxiliary
// outputs. The second return value is false when the sample was invalidated
// (near-zero density or a missed explicit light target) and must be excluded
// from the pixel average. Depth exhaustion without reaching emission is a
// valid sample that contributes exactly zero.
func (pt *PathIntegrator) TraceSample(ray core.Ray, world *World, sampler core.Sampler, scratch *Scratch) (SampleResult, bool) {
	scratch.emission = scratch.emission[:0]
	scratch.weight = scratch.weight[:0]

	var result SampleResult
	auxCaptured := false

	var target *geometry.Entity
	var terminal core.Vec3
	terminated := false

	for depth := 0; depth < pt.config.TraceDepth; depth++ {
		hits := world.BVH.IntersectAll(ray, tMinEps, tMaxInf, scratch.traverse)

		hit, found := resolveVolumes(ray, hits, sampler)
		if !found {
			// Escaped the scene: the environment is the terminal emission
			sky := world.Env.Sample(ray.Direction)
			if depth == 0 && !auxCaptured {
				result.Albedo = sky
				auxCaptured = true
			}
			terminal = sky
			terminated = true
			break
		}

		// Shadow-ray semantics without a separate occlusion trace: an
		// explicit light sample that reaches anything but its target was
		// occluded, so the whole sample is discarded
		if target != nil && hit.Entity != target {
			return SampleResult{}, false
		}
		target = nil

		mat := hit.Entity.Mat
		if mat.IsEmissive() {
			if !auxCaptured {
				result.Normal = hit.Normal
				result.Albedo = mat.Emission
				auxCaptured = true
			}
			terminal = mat.Emit()
			terminated = true
			break
		}

		scatter, didScatter := mat.Scatter(ray, hit.Point, hit.Normal, hit.FrontFace, sampler)
		if !didScatter {
			// Absorbed: silent failure, contributes nothing
			break
		}

		var next core.Ray
		var bounceWeight core.Vec3
		if scatter.IsSpecular() {
			next = scatter.Scattered
			bounceWeight = scatter.Attenuation
		} else {
			sample, ok := pt.importance.Sample(scatter, hit, world, sampler)
			if !ok {
				return SampleResult{}, false
			}
			next = sample.Ray
			target = sample.Target

			// Monte Carlo weight: BSDF * cos / pdf. The isotropic phase
			// function of a medium has no cosine term.
			cosine := 1.0
			if !mat.IsVolume() {
				cosine = next.Direction.Normalize().Dot(hit.Normal)
				if cosine <= 0 {
					return SampleResult{}, false
				}
			}
			bounceWeight = scatter.Attenuation.Multiply(cosine / sample.PDF)

			if !auxCaptured {
				result.Normal = hit.Normal
				result.Albedo = mat.Albedo
				auxCaptured = true
			}
		}

		scratch.emission = append(scratch.emission, mat.Emit())
		scratch.weight = append(scratch.weight, bounceWeight)

		// Offset the next origin along the geometric normal, signed toward
		// the outgoing direction, to avoid self-intersection
		normal := hit.Normal
		if next.Direction.Dot(normal) < 0 {
			normal = normal.Negate()
		}
		origin := hit.Point.Add(normal.Multiply(originEpsilon))
		ray = core.NewRayAt(origin, next.Direction, ray.Time)
	}

	if !terminated {
		// Depth exhausted without reaching emission
		return result, true
	}

	// Unwind the per-bounce stacks from the deepest bounce toward the
	// camera: an iterative evaluation of the recursive rendering equation
	color := terminal
	for i := len(scratch.weight) - 1; i >= 0; i-- {
		color = color.MultiplyVec(scratch.weight[i]).Add(scratch.emission[i])
	}
	result.Color = color
	return result, true
}

// resolveVolumes scans the ordered hit list for the definite scattering
// surface, resolving probabilistic-volume entry/exit pairs on the way. It
// returns false when the ray escapes without a resolved hit.
//
// Overlapping volumes of different materials along one ray are resolved
// nearest-boundary-first; interleavings of different media are not modeled
// beyond that (a known limitation).
func resolveVolumes(ray core.Ray, hits []geometry.EntityHit, sampler core.Sampler) (geometry.EntityHit, bool) {
	i := 0
	for i < len(hits) {
		hit := hits[i]
		mat := hit.Entity.Mat
		if mat == nil {
			i++
			continue
		}
		if !mat.IsVolume() {
			// A definite scattering surface
			return hit, true
		}

		if !hit.FrontFace {
			// Back face first: the ray began inside this medium
			if dist, scattered := mat.SampleFreePath(hit.T, sampler.Get1D()); scattered {
				return synthesizeMediumHit(ray, hit, dist), true
			}
			// Passed through; continue beyond the exit boundary
			i++
			continue
		}

		// Entering the medium at hit.T: find what bounds the in-medium
		// segment, tracking nesting for back-to-back same-material shells
		entryT := hit.T
		limitT := tMaxInf
		limitIdx := -1
		nesting := 1
		for j := i + 1; j < len(hits); j++ {
			other := hits[j]
			otherMat := other.Entity.Mat
			if otherMat == mat {
				if other.FrontFace {
					nesting++
				} else {
					nesting--
					if nesting == 0 {
						limitT = other.T
						limitIdx = j
						break
					}
				}
				continue
			}
			// Any other boundary, surface or different medium, caps the
			// segment at its distance
			limitT = other.T
			limitIdx = j
			break
		}

		if dist, scattered := mat.SampleFreePath(limitT-entryT, sampler.Get1D()); scattered {
			return synthesizeMediumHit(ray, hit, entryT+dist), true
		}

		if limitIdx < 0 {
			// Unbounded medium and the free path escaped it
			return geometry.EntityHit{}, false
		}
		if hits[limitIdx].Entity.Mat == mat {
			// Crossed the matched exit; resume after it
			i = limitIdx + 1
		} else {
			// A surface or a different medium bounds the segment; process
			// it as the next nearest boundary
			i = limitIdx
		}
	}
	return geometry.EntityHit{}, false
}

// synthesizeMediumHit builds a hit record for a scattering event inside a
// medium at distance t along the ray. The normal is geometrically undefined
// there but must be set; the phase function ignores it.
func synthesizeMediumHit(ray core.Ray, boundary geometry.EntityHit, t float64) geometry.EntityHit {
	return geometry.EntityHit{
		Hit: geometry.Hit{
			T:         t,
			Point:     ray.At(t),
			Normal:    core.NewVec3(1, 0, 0),
			FrontFace: true,
		},
		Entity: boundary.Entity,
		Index:  boundary.Index,
	}
}
