package integrator

import (
	"github.com/lumenray/lumen/pkg/core"
	"github.com/lumenray/lumen/pkg/geometry"
	"github.com/lumenray/lumen/pkg/material"
)

// Below this density a sample cannot be reweighted without amplifying noise;
// the caller must invalidate it rather than divide.
const minPDF = 1e-6

// ImportanceSample is the continuation chosen for the next bounce
type ImportanceSample struct {
	Ray    core.Ray
	PDF    float64
	Target *geometry.Entity // Set when an explicit light sample was chosen
}

// ImportanceSampler chooses between BSDF sampling and explicit sampling of
// emissive entity surfaces, combining the two strategies with the one-sample
// multiple-importance-sampling balance heuristic: the sample's density is the
// selection-probability-weighted mixture of both strategies' densities.
type ImportanceSampler struct {
	// LightProbability is the chance of picking explicit light sampling at
	// a diffuse bounce when emissive entities exist
	LightProbability float64
}

// NewImportanceSampler creates a sampler with an even strategy split
func NewImportanceSampler() *ImportanceSampler {
	return &ImportanceSampler{LightProbability: 0.5}
}

// Sample picks the continuation ray for a diffuse bounce. Returns false when
// the resulting density is numerically zero and the sample must be discarded.
func (is *ImportanceSampler) Sample(scatter material.ScatterResult, hit geometry.EntityHit, world *World, sampler core.Sampler) (ImportanceSample, bool) {
	// No emissive surfaces to target: pure BSDF sampling with weight 1
	if len(world.Emissive) == 0 || is.LightProbability <= 0 {
		if scatter.PDF < minPDF {
			return ImportanceSample{}, false
		}
		return ImportanceSample{Ray: scatter.Scattered, PDF: scatter.PDF}, true
	}

	pLight := is.LightProbability
	pBSDF := 1.0 - pLight

	if sampler.Get1D() < pLight {
		return is.sampleLight(scatter, hit, world, sampler, pLight, pBSDF)
	}

	// BSDF strategy: keep the scattered direction, mix in the density the
	// light strategy would have assigned to it
	direction := scatter.Scattered.Direction.Normalize()
	lightPDF := is.lightDirectionPDF(world, hit.Point, direction, scatter.Scattered.Time)
	pdf := core.BalanceHeuristic(pBSDF, scatter.PDF, pLight, lightPDF)
	if pdf < minPDF {
		return ImportanceSample{}, false
	}
	return ImportanceSample{Ray: scatter.Scattered, PDF: pdf}, true
}

// sampleLight targets a uniformly selected emissive entity's surface
func (is *ImportanceSampler) sampleLight(scatter material.ScatterResult, hit geometry.EntityHit, world *World, sampler core.Sampler, pLight, pBSDF float64) (ImportanceSample, bool) {
	idx := int(sampler.Get1D() * float64(len(world.Emissive)))
	if idx == len(world.Emissive) {
		idx--
	}
	light := world.Emissive[idx]
	selectionPDF := 1.0 / float64(len(world.Emissive))

	point, lightNormal, area, ok := light.SampleSurface(sampler.Get2D(), scatter.Scattered.Time)
	if !ok || area <= 0 {
		return ImportanceSample{}, false
	}

	toLight := point.Subtract(hit.Point)
	distSq := toLight.LengthSquared()
	if distSq < minPDF {
		return ImportanceSample{}, false
	}
	direction := toLight.Normalize()

	// The light must face the shading point and, for surface scattering,
	// the direction must lie in the shading hemisphere. In-medium scattering
	// has no hemisphere; its hit normal is synthetic.
	cosLight := lightNormal.Dot(direction.Negate())
	if cosLight < 0 {
		cosLight = -cosLight // Rects emit from both faces
	}
	if cosLight < minPDF {
		return ImportanceSample{}, false
	}
	if !hit.Entity.Mat.IsVolume() && direction.Dot(hit.Normal) <= 0 {
		return ImportanceSample{}, false
	}

	// Convert the area density to a solid-angle density
	lightPDF := selectionPDF * distSq / (cosLight * area)
	bsdfPDF := hit.Entity.Mat.PDF(direction, hit.Normal)

	pdf := core.BalanceHeuristic(pLight, lightPDF, pBSDF, bsdfPDF)
	if pdf < minPDF {
		return ImportanceSample{}, false
	}

	return ImportanceSample{
		Ray:    core.NewRayAt(hit.Point, direction, scatter.Scattered.Time),
		PDF:    pdf,
		Target: light,
	}, true
}

// lightDirectionPDF returns the density the light strategy assigns to an
// arbitrary direction: the selection-weighted sum over emissive entities the
// direction actually reaches
func (is *ImportanceSampler) lightDirectionPDF(world *World, origin, direction core.Vec3, time float64) float64 {
	selectionPDF := 1.0 / float64(len(world.Emissive))
	ray := core.NewRayAt(origin, direction, time)

	total := 0.0
	for _, light := range world.Emissive {
		sampler, can := light.Prim.(geometry.AreaSampler)
		if !can {
			continue
		}
		hit, ok := light.Intersect(ray, 1e-4, 1e9)
		if !ok {
			continue
		}
		cosLight := hit.Normal.Dot(direction.Negate())
		if cosLight < 0 {
			cosLight = -cosLight
		}
		if cosLight < minPDF {
			continue
		}
		total += selectionPDF * (hit.T * hit.T) / (cosLight * sampler.Area())
	}
	return total
}
