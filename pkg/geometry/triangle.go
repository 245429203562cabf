package geometry

import (
	"github.com/lumenray/lumen/pkg/core"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3
	normal     core.Vec3 // Cached geometric normal
	bounds     core.AABB // Cached bounding box
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3) *Triangle {
	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)
	return &Triangle{
		V0:     v0,
		V1:     v1,
		V2:     v2,
		normal: edge1.Cross(edge2).Normalize(),
		bounds: core.NewAABBFromPoints(v0, v1, v2).Expand(1e-4),
	}
}

// Intersect tests if a ray intersects the triangle using Möller-Trumbore
func (tr *Triangle) Intersect(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	const epsilon = 1e-8

	edge1 := tr.V1.Subtract(tr.V0)
	edge2 := tr.V2.Subtract(tr.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray lies in the plane of the triangle
	if a > -epsilon && a < epsilon {
		return Hit{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(tr.V0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return Hit{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return Hit{}, false
	}

	t := f * edge2.Dot(q)
	if t < tMin || t > tMax {
		return Hit{}, false
	}

	hit := Hit{
		T:     t,
		Point: ray.At(t),
		UV:    core.NewVec2(u, v),
		HasUV: true,
	}
	hit.SetFaceNormal(ray, tr.normal)

	return hit, true
}

// Bounds returns the axis-aligned bounding box for this triangle
func (tr *Triangle) Bounds() core.AABB {
	return tr.bounds
}

// SamplePoint returns a uniform point on the triangle with its normal
func (tr *Triangle) SamplePoint(sample core.Vec2) (core.Vec3, core.Vec3) {
	// Fold the unit square onto the triangle
	u, v := sample.X, sample.Y
	if u+v > 1 {
		u, v = 1-u, 1-v
	}
	edge1 := tr.V1.Subtract(tr.V0)
	edge2 := tr.V2.Subtract(tr.V0)
	point := tr.V0.Add(edge1.Multiply(u)).Add(edge2.Multiply(v))
	return point, tr.normal
}

// Area returns the surface area of the triangle
func (tr *Triangle) Area() float64 {
	edge1 := tr.V1.Subtract(tr.V0)
	edge2 := tr.V2.Subtract(tr.V0)
	return edge1.Cross(edge2).Length() * 0.5
}
