package geometry

import (
	"math"

	"github.com/lumenray/lumen/pkg/core"
)

// Box represents an axis-aligned box primitive
type Box struct {
	BoxMin core.Vec3
	BoxMax core.Vec3
}

// NewBox creates a new box from min and max corners
func NewBox(boxMin, boxMax core.Vec3) *Box {
	return &Box{BoxMin: boxMin, BoxMax: boxMax}
}

// Intersect tests if a ray intersects with the box using the slab method.
// Both the entry and exit crossings are reported (whichever falls inside
// [tMin, tMax] first), so repeated calls with an advanced tMin walk the
// ray through the box boundary by boundary.
func (b *Box) Intersect(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	tEntry := math.Inf(-1)
	tExit := math.Inf(1)
	entryAxis, exitAxis := 0, 0

	for axis := 0; axis < 3; axis++ {
		origin := ray.Origin.Axis(axis)
		direction := ray.Direction.Axis(axis)
		minB := b.BoxMin.Axis(axis)
		maxB := b.BoxMax.Axis(axis)

		if math.Abs(direction) < 1e-12 {
			if origin < minB || origin > maxB {
				return Hit{}, false
			}
			continue
		}

		inv := 1.0 / direction
		t1 := (minB - origin) * inv
		t2 := (maxB - origin) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tEntry {
			tEntry = t1
			entryAxis = axis
		}
		if t2 < tExit {
			tExit = t2
			exitAxis = axis
		}
		if tEntry > tExit {
			return Hit{}, false
		}
	}

	// Pick the first crossing inside the valid range
	var t float64
	var axis int
	switch {
	case tEntry >= tMin && tEntry <= tMax:
		t, axis = tEntry, entryAxis
	case tExit >= tMin && tExit <= tMax:
		t, axis = tExit, exitAxis
	default:
		return Hit{}, false
	}

	hit := Hit{
		T:     t,
		Point: ray.At(t),
	}

	// Outward normal along the crossed slab axis
	center := b.BoxMin.Add(b.BoxMax).Multiply(0.5)
	var outwardNormal core.Vec3
	sign := 1.0
	if hit.Point.Axis(axis) < center.Axis(axis) {
		sign = -1.0
	}
	switch axis {
	case 0:
		outwardNormal = core.NewVec3(sign, 0, 0)
	case 1:
		outwardNormal = core.NewVec3(0, sign, 0)
	default:
		outwardNormal = core.NewVec3(0, 0, sign)
	}
	hit.SetFaceNormal(ray, outwardNormal)

	return hit, true
}

// Bounds returns the axis-aligned bounding box for this box
func (b *Box) Bounds() core.AABB {
	return core.NewAABB(b.BoxMin, b.BoxMax)
}
