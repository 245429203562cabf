package geometry

import (
	"github.com/lumenray/lumen/pkg/core"
)

// Hit contains information about a ray-primitive intersection
type Hit struct {
	T         float64   // Parameter t along the ray
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Surface normal at intersection (faces the ray)
	FrontFace bool      // Whether the ray hit the front face
	UV        core.Vec2 // Texture coordinate, valid when HasUV is set
	HasUV     bool
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *Hit) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Multiply(-1)
	}
}

// Primitive is implemented by shapes that can be hit by rays
type Primitive interface {
	Intersect(ray core.Ray, tMin, tMax float64) (Hit, bool)
	Bounds() core.AABB
}

// AreaSampler is implemented by primitives whose surface can be sampled
// for explicit light sampling
type AreaSampler interface {
	// SamplePoint returns a uniformly distributed point on the surface
	// and the outward normal at that point
	SamplePoint(sample core.Vec2) (point, normal core.Vec3)

	// Area returns the total surface area
	Area() float64
}
