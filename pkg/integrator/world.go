package integrator

import (
	"github.com/lumenray/lumen/pkg/core"
	"github.com/lumenray/lumen/pkg/geometry"
)

// Environment supplies radiance for rays that escape the scene
type Environment interface {
	// Sample returns the environment color for a ray direction
	Sample(direction core.Vec3) core.Vec3
}

// GradientSky is a vertical gradient environment
type GradientSky struct {
	Top    core.Vec3
	Bottom core.Vec3
}

// NewGradientSky creates a gradient sky environment
func NewGradientSky(top, bottom core.Vec3) *GradientSky {
	return &GradientSky{Top: top, Bottom: bottom}
}

// Sample maps direction.y from [-1,1] to [0,1] and interpolates bottom to top
func (g *GradientSky) Sample(direction core.Vec3) core.Vec3 {
	unit := direction.Normalize()
	t := 0.5 * (unit.Y + 1.0)
	return g.Bottom.Lerp(g.Top, t)
}

// CubemapSky wraps a direction-to-color sampling function supplied by the
// scene provider, typically backed by a cubemap texture
type CubemapSky struct {
	SampleFunc func(direction core.Vec3) core.Vec3
}

// NewCubemapSky creates an environment from a sampling function
func NewCubemapSky(sampleFunc func(core.Vec3) core.Vec3) *CubemapSky {
	return &CubemapSky{SampleFunc: sampleFunc}
}

// Sample evaluates the cubemap function
func (c *CubemapSky) Sample(direction core.Vec3) core.Vec3 {
	return c.SampleFunc(direction)
}

// World is the read-only trace view of a built scene: the entity buffer, its
// acceleration structure, the emissive entity set, and the environment.
// A world must not be mutated while any batch is in flight; rebuilds swap in
// a whole new World after draining the pipeline.
type World struct {
	BVH      *geometry.BVH
	Entities []*geometry.Entity
	Emissive []*geometry.Entity
	Env      Environment
}

// NewWorld compiles the entity buffer into a traceable world
func NewWorld(entities []*geometry.Entity, env Environment, cfg geometry.BuildConfig) *World {
	var emissive []*geometry.Entity
	for _, e := range entities {
		if e.Mat != nil && e.Mat.IsEmissive() {
			emissive = append(emissive, e)
		}
	}
	return &World{
		BVH:      geometry.BuildBVH(entities, cfg),
		Entities: entities,
		Emissive: emissive,
		Env:      env,
	}
}
