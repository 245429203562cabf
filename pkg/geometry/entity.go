package geometry

import (
	"errors"
	"fmt"

	"github.com/lumenray/lumen/pkg/core"
	"github.com/lumenray/lumen/pkg/material"
)

// ErrEmptyTimeRange is returned when a moving entity declares a zero-length
// shutter interval. This is fatal at scene-build time.
var ErrEmptyTimeRange = errors.New("geometry: moving entity has empty time range")

// Transform positions an entity in the world. Static entities carry a fixed
// offset; moving entities interpolate between Offset and Offset+Motion over
// the time range [T0, T1].
type Transform struct {
	Offset core.Vec3
	Motion core.Vec3 // Destination offset relative to Offset
	T0, T1 float64
	Moving bool
}

// StaticTransform creates a transform with a fixed offset
func StaticTransform(offset core.Vec3) Transform {
	return Transform{Offset: offset}
}

// MovingTransform creates a transform that sweeps from offset to
// offset+motion over [t0, t1]
func MovingTransform(offset, motion core.Vec3, t0, t1 float64) Transform {
	return Transform{Offset: offset, Motion: motion, T0: t0, T1: t1, Moving: true}
}

// Validate checks the transform invariants
func (tr Transform) Validate() error {
	if tr.Moving && tr.T0 >= tr.T1 {
		return fmt.Errorf("%w: [%g, %g]", ErrEmptyTimeRange, tr.T0, tr.T1)
	}
	return nil
}

// OffsetAt returns the world offset at the given shutter time
func (tr Transform) OffsetAt(time float64) core.Vec3 {
	if !tr.Moving {
		return tr.Offset
	}
	t := (time - tr.T0) / (tr.T1 - tr.T0)
	t = max(0, min(1, t))
	return tr.Offset.Add(tr.Motion.Multiply(t))
}

// Entity is a primitive placed in the world with a transform and a material.
// Entities are owned by a per-scene buffer, rebuilt wholesale on scene change,
// and read-only while any trace is in flight.
type Entity struct {
	Prim      Primitive
	Transform Transform
	Mat       *material.Material
}

// NewEntity creates a static entity at the origin
func NewEntity(prim Primitive, mat *material.Material) *Entity {
	return &Entity{Prim: prim, Mat: mat}
}

// NewTransformedEntity creates an entity with an explicit transform
func NewTransformedEntity(prim Primitive, tr Transform, mat *material.Material) *Entity {
	return &Entity{Prim: prim, Transform: tr, Mat: mat}
}

// Intersect tests the entity's primitive in local space by offsetting the ray
func (e *Entity) Intersect(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	offset := e.Transform.OffsetAt(ray.Time)
	local := core.Ray{
		Origin:    ray.Origin.Subtract(offset),
		Direction: ray.Direction,
		Time:      ray.Time,
	}
	hit, ok := e.Prim.Intersect(local, tMin, tMax)
	if !ok {
		return Hit{}, false
	}
	hit.Point = hit.Point.Add(offset)
	return hit, true
}

// Bounds returns the bounding box swept over the entity's full motion
func (e *Entity) Bounds() core.AABB {
	local := e.Prim.Bounds()
	start := core.NewAABB(
		local.Min.Add(e.Transform.Offset),
		local.Max.Add(e.Transform.Offset),
	)
	if !e.Transform.Moving {
		return start
	}
	end := core.NewAABB(
		start.Min.Add(e.Transform.Motion),
		start.Max.Add(e.Transform.Motion),
	)
	return start.Union(end)
}

// SampleSurface samples a point on the entity's surface in world space at the
// given shutter time. Returns false when the primitive cannot be sampled.
func (e *Entity) SampleSurface(sample core.Vec2, time float64) (point, normal core.Vec3, area float64, ok bool) {
	sampler, can := e.Prim.(AreaSampler)
	if !can {
		return core.Vec3{}, core.Vec3{}, 0, false
	}
	p, n := sampler.SamplePoint(sample)
	return p.Add(e.Transform.OffsetAt(time)), n, sampler.Area(), true
}

// EntityHit couples a primitive hit with the entity that produced it
type EntityHit struct {
	Hit
	Entity *Entity
	Index  int // Position in the global entity buffer, used as sort tie-break
}
