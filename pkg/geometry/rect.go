package geometry

import (
	"math"

	"github.com/lumenray/lumen/pkg/core"
)

// Rect represents a rectangular surface defined by a corner and two edge vectors
type Rect struct {
	Corner core.Vec3 // One corner of the rect
	U      core.Vec3 // First edge vector
	V      core.Vec3 // Second edge vector
	normal core.Vec3 // Cached unit normal (U × V)
	d      float64   // Plane equation constant: normal · corner
	w      core.Vec3 // Cached vector for barycentric coordinates
}

// NewRect creates a new rect from a corner point and two edge vectors
func NewRect(corner, u, v core.Vec3) *Rect {
	normal := u.Cross(v).Normalize()
	cross := u.Cross(v)
	return &Rect{
		Corner: corner,
		U:      u,
		V:      v,
		normal: normal,
		d:      normal.Dot(corner),
		w:      normal.Multiply(1.0 / normal.Dot(cross)),
	}
}

// Intersect tests if a ray intersects with the rect
func (r *Rect) Intersect(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	denominator := ray.Direction.Dot(r.normal)

	// Ray parallel to the plane
	if math.Abs(denominator) < 1e-8 {
		return Hit{}, false
	}

	t := (r.d - ray.Origin.Dot(r.normal)) / denominator
	if t < tMin || t > tMax {
		return Hit{}, false
	}

	hitPoint := ray.At(t)
	hitVector := hitPoint.Subtract(r.Corner)

	// Barycentric coordinates within the rect
	alpha := r.w.Dot(hitVector.Cross(r.V))
	beta := r.w.Dot(r.U.Cross(hitVector))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return Hit{}, false
	}

	hit := Hit{
		T:     t,
		Point: hitPoint,
		UV:    core.NewVec2(alpha, beta),
		HasUV: true,
	}
	hit.SetFaceNormal(ray, r.normal)

	return hit, true
}

// Bounds returns the axis-aligned bounding box for this rect, padded so
// axis-aligned rects do not degenerate to zero thickness
func (r *Rect) Bounds() core.AABB {
	p0 := r.Corner
	p1 := r.Corner.Add(r.U)
	p2 := r.Corner.Add(r.V)
	p3 := r.Corner.Add(r.U).Add(r.V)
	return core.NewAABBFromPoints(p0, p1, p2, p3).Expand(1e-4)
}

// SamplePoint returns a uniform point on the rect surface with its normal
func (r *Rect) SamplePoint(sample core.Vec2) (core.Vec3, core.Vec3) {
	point := r.Corner.Add(r.U.Multiply(sample.X)).Add(r.V.Multiply(sample.Y))
	return point, r.normal
}

// Area returns the surface area of the rect
func (r *Rect) Area() float64 {
	return r.U.Cross(r.V).Length()
}

// Normal returns the unit normal of the rect plane
func (r *Rect) Normal() core.Vec3 {
	return r.normal
}
