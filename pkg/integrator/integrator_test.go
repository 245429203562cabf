package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lumenray/lumen/pkg/core"
	"github.com/lumenray/lumen/pkg/geometry"
	"github.com/lumenray/lumen/pkg/material"
)

func buildWorld(entities []*geometry.Entity, env Environment) *World {
	return NewWorld(entities, env, geometry.DefaultBuildConfig())
}

func TestGradientSky_Sample(t *testing.T) {
	sky := NewGradientSky(core.NewVec3(0.5, 0.7, 1.0), core.NewVec3(1, 1, 1))

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Vec3
	}{
		{"Straight up", core.NewVec3(0, 1, 0), core.NewVec3(0.5, 0.7, 1.0)},
		{"Straight down", core.NewVec3(0, -1, 0), core.NewVec3(1, 1, 1)},
		{"Horizon", core.NewVec3(1, 0, 0), core.NewVec3(0.75, 0.85, 1.0)},
		{"Unnormalized input", core.NewVec3(7, 0, 0), core.NewVec3(0.75, 0.85, 1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sky.Sample(tt.direction)
			if got.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTraceSample_MissReturnsSky(t *testing.T) {
	top := core.NewVec3(0.5, 0.7, 1.0)
	bottom := core.NewVec3(1, 1, 1)
	mat := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	world := buildWorld([]*geometry.Entity{
		geometry.NewEntity(geometry.NewSphere(core.NewVec3(0, 0, -100), 1), mat),
	}, NewGradientSky(top, bottom))

	pt := NewPathIntegrator(DefaultConfig())
	scratch := NewScratch()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(1)))

	// A ray that misses everything returns the sky color exactly
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))
	result, ok := pt.TraceSample(ray, world, sampler, scratch)
	if !ok {
		t.Fatal("Sky sample must be valid")
	}
	expected := bottom.Lerp(top, 0.5)
	if result.Color.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected horizon color %v, got %v", expected, result.Color)
	}
	if result.Albedo != expected {
		t.Errorf("First-bounce sky should set albedo fallback, got %v", result.Albedo)
	}
}

func TestTraceSample_DirectLightHit(t *testing.T) {
	emission := core.NewVec3(5, 4, 3)
	lamp := material.NewDiffuseLight(emission)
	world := buildWorld([]*geometry.Entity{
		geometry.NewEntity(geometry.NewSphere(core.NewVec3(0, 0, 10), 2), lamp),
	}, NewGradientSky(core.Vec3{}, core.Vec3{}))

	pt := NewPathIntegrator(DefaultConfig())
	scratch := NewScratch()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(2)))

	// A camera ray that hits the light directly returns its emission with
	// no attenuation
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	result, ok := pt.TraceSample(ray, world, sampler, scratch)
	if !ok {
		t.Fatal("Direct light hit must be valid")
	}
	if result.Color != emission {
		t.Errorf("Expected exact emission %v, got %v", emission, result.Color)
	}
	if result.Albedo != emission {
		t.Errorf("Expected emissive albedo, got %v", result.Albedo)
	}
}

func TestTraceSample_DepthExhaustionContributesZero(t *testing.T) {
	// The camera sits inside a diffuse enclosure with no lights: every
	// path exhausts its depth and contributes exactly zero, but remains a
	// valid sample
	mat := material.NewLambertian(core.NewVec3(0.9, 0.9, 0.9))
	world := buildWorld([]*geometry.Entity{
		geometry.NewEntity(geometry.NewSphere(core.NewVec3(0, 0, 0), 50), mat),
	}, NewGradientSky(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1)))

	pt := NewPathIntegrator(Config{TraceDepth: 3})
	scratch := NewScratch()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(3)))

	for i := 0; i < 50; i++ {
		ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
		result, ok := pt.TraceSample(ray, world, sampler, scratch)
		if !ok {
			t.Fatal("Depth exhaustion is a valid zero sample, not an invalidation")
		}
		if result.Color != (core.Vec3{}) {
			t.Fatalf("Expected zero contribution, got %v", result.Color)
		}
	}
}

func TestTraceSample_OneBounceUnwind(t *testing.T) {
	// Camera -> diffuse floor -> light. With importance sampling forced to
	// the single light, the unwind multiplies the bounce weight into the
	// light's emission. The result must be finite and positive.
	floor := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.8))
	lamp := material.NewDiffuseLight(core.NewVec3(10, 10, 10))
	world := buildWorld([]*geometry.Entity{
		geometry.NewEntity(geometry.NewRect(
			core.NewVec3(-5, 0, -5), core.NewVec3(10, 0, 0), core.NewVec3(0, 0, 10)), floor),
		geometry.NewEntity(geometry.NewRect(
			core.NewVec3(-1, 4, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2)), lamp),
	}, NewGradientSky(core.Vec3{}, core.Vec3{}))

	pt := NewPathIntegrator(DefaultConfig())
	pt.importance.LightProbability = 1.0 // Always target the light
	scratch := NewScratch()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(4)))

	ray := core.NewRay(core.NewVec3(0, 2, -3), core.NewVec3(0, -0.5, 1).Normalize())

	lit := 0
	for i := 0; i < 200; i++ {
		result, ok := pt.TraceSample(ray, world, sampler, scratch)
		if !ok {
			// Occluded or degenerate light sample; excluded from the average
			continue
		}
		if !result.Color.IsFinite() {
			t.Fatalf("Non-finite radiance %v", result.Color)
		}
		if result.Color.Luminance() > 0 {
			lit++
		}
	}
	if lit == 0 {
		t.Error("Expected some paths to reach the light")
	}
}

func TestTraceSample_ShadowedTargetInvalidates(t *testing.T) {
	// A blocker sits between the floor and the light; explicit light
	// samples hit the blocker instead of their target and the whole sample
	// is discarded
	floor := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.8))
	blocker := material.NewLambertian(core.NewVec3(0.1, 0.1, 0.1))
	lamp := material.NewDiffuseLight(core.NewVec3(10, 10, 10))
	world := buildWorld([]*geometry.Entity{
		geometry.NewEntity(geometry.NewRect(
			core.NewVec3(-5, 0, -5), core.NewVec3(10, 0, 0), core.NewVec3(0, 0, 10)), floor),
		geometry.NewEntity(geometry.NewRect(
			core.NewVec3(-3, 2, -3), core.NewVec3(6, 0, 0), core.NewVec3(0, 0, 6)), blocker),
		geometry.NewEntity(geometry.NewRect(
			core.NewVec3(-1, 4, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2)), lamp),
	}, NewGradientSky(core.Vec3{}, core.Vec3{}))

	pt := NewPathIntegrator(Config{TraceDepth: 2})
	pt.importance.LightProbability = 1.0
	scratch := NewScratch()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(5)))

	ray := core.NewRay(core.NewVec3(0, 1, -3), core.NewVec3(0, -0.3, 1).Normalize())

	invalidated := 0
	for i := 0; i < 100; i++ {
		if _, ok := pt.TraceSample(ray, world, sampler, scratch); !ok {
			invalidated++
		}
	}
	if invalidated == 0 {
		t.Error("Expected occluded light samples to invalidate")
	}
}

func TestTraceSample_VolumeScattersOrPassesThrough(t *testing.T) {
	// A thin medium in front of a light: free paths either scatter inside
	// the medium or pass through to the light. Both outcomes must be
	// finite; passing through at depth 1 yields the exact emission.
	smoke := material.NewVolume(core.NewVec3(0.9, 0.9, 0.9), 0.05)
	lamp := material.NewDiffuseLight(core.NewVec3(6, 6, 6))
	world := buildWorld([]*geometry.Entity{
		geometry.NewEntity(geometry.NewBox(
			core.NewVec3(-2, -2, 2), core.NewVec3(2, 2, 4)), smoke),
		geometry.NewEntity(geometry.NewRect(
			core.NewVec3(-3, -3, 8), core.NewVec3(6, 0, 0), core.NewVec3(0, 6, 0)), lamp),
	}, NewGradientSky(core.Vec3{}, core.Vec3{}))

	pt := NewPathIntegrator(DefaultConfig())
	scratch := NewScratch()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(6)))

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	passedThrough := 0
	for i := 0; i < 200; i++ {
		result, ok := pt.TraceSample(ray, world, sampler, scratch)
		if !ok {
			continue
		}
		if !result.Color.IsFinite() {
			t.Fatalf("Non-finite radiance %v", result.Color)
		}
		if result.Color == core.NewVec3(6, 6, 6) {
			passedThrough++
		}
	}
	if passedThrough == 0 {
		t.Error("Expected some free paths to pass through the thin medium")
	}
}

func TestResolveVolumes_SurfacePassthrough(t *testing.T) {
	// Without any volumes the resolver returns the nearest hit unchanged
	mat := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	entity := geometry.NewEntity(geometry.NewSphere(core.NewVec3(0, 0, 5), 1), mat)
	hits := []geometry.EntityHit{
		{Hit: geometry.Hit{T: 4}, Entity: entity, Index: 0},
		{Hit: geometry.Hit{T: 6}, Entity: entity, Index: 0},
	}

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(7)))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))
	hit, ok := resolveVolumes(ray, hits, sampler)
	if !ok {
		t.Fatal("Expected the surface hit")
	}
	if hit.T != 4 {
		t.Errorf("Expected nearest hit at t=4, got %v", hit.T)
	}
}

func TestResolveVolumes_EscapeReturnsNoHit(t *testing.T) {
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(8)))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))
	if _, ok := resolveVolumes(ray, nil, sampler); ok {
		t.Error("Empty hit list must resolve to no hit")
	}
}

func TestResolveVolumes_DenseMediumAlwaysScatters(t *testing.T) {
	// With extreme density the free path is effectively zero: every sample
	// scatters inside the medium, between entry and exit
	smoke := material.NewVolume(core.NewVec3(0.5, 0.5, 0.5), 1e6)
	entity := geometry.NewEntity(geometry.NewBox(
		core.NewVec3(-1, -1, 2), core.NewVec3(1, 1, 4)), smoke)

	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))
	hits := []geometry.EntityHit{
		{Hit: geometry.Hit{T: 2, FrontFace: true}, Entity: entity, Index: 0},
		{Hit: geometry.Hit{T: 4, FrontFace: false}, Entity: entity, Index: 0},
	}

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(9)))
	for i := 0; i < 100; i++ {
		hit, ok := resolveVolumes(ray, hits, sampler)
		if !ok {
			t.Fatal("Dense medium must always scatter")
		}
		if hit.T < 2 || hit.T > 4 {
			t.Fatalf("Scatter distance %v outside the medium segment", hit.T)
		}
		if hit.Entity != entity {
			t.Fatal("Synthesized hit must reference the medium entity")
		}
		expected := ray.At(hit.T)
		if hit.Point.Subtract(expected).Length() > 1e-12 {
			t.Fatalf("Synthesized point %v not on the ray at t=%v", hit.Point, hit.T)
		}
	}
}

func TestResolveVolumes_NestedSameMaterialShells(t *testing.T) {
	// Two nested shells of the same medium: the inner pair must not
	// terminate the outer segment. With negligible density the resolver
	// walks through all four boundaries to the surface behind them.
	smoke := material.NewVolume(core.NewVec3(0.5, 0.5, 0.5), 1e-9)
	outer := geometry.NewEntity(geometry.NewBox(
		core.NewVec3(-4, -4, 1), core.NewVec3(4, 4, 9)), smoke)
	inner := geometry.NewEntity(geometry.NewBox(
		core.NewVec3(-1, -1, 4), core.NewVec3(1, 1, 6)), smoke)
	wall := geometry.NewEntity(geometry.NewSphere(core.NewVec3(0, 0, 20), 1),
		material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))
	hits := []geometry.EntityHit{
		{Hit: geometry.Hit{T: 1, FrontFace: true}, Entity: outer, Index: 0},
		{Hit: geometry.Hit{T: 4, FrontFace: true}, Entity: inner, Index: 1},
		{Hit: geometry.Hit{T: 6, FrontFace: false}, Entity: inner, Index: 1},
		{Hit: geometry.Hit{T: 9, FrontFace: false}, Entity: outer, Index: 0},
		{Hit: geometry.Hit{T: 19, FrontFace: true}, Entity: wall, Index: 2},
	}

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(10)))
	hit, ok := resolveVolumes(ray, hits, sampler)
	if !ok {
		t.Fatal("Expected the wall behind the shells")
	}
	if math.Abs(hit.T-19) > 1e-12 {
		t.Errorf("Expected the surface at t=19, got %v", hit.T)
	}
}

func TestResolveVolumes_RayStartsInsideMedium(t *testing.T) {
	// The first boundary is a back face: the ray began inside the medium
	// and the free path is measured from the ray origin
	smoke := material.NewVolume(core.NewVec3(0.5, 0.5, 0.5), 1e6)
	entity := geometry.NewEntity(geometry.NewBox(
		core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1)), smoke)

	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))
	hits := []geometry.EntityHit{
		{Hit: geometry.Hit{T: 1, FrontFace: false}, Entity: entity, Index: 0},
	}

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(11)))
	hit, ok := resolveVolumes(ray, hits, sampler)
	if !ok {
		t.Fatal("Dense medium must scatter before the exit")
	}
	if hit.T <= 0 || hit.T >= 1 {
		t.Errorf("Scatter distance %v outside [0, 1]", hit.T)
	}
}
