package renderer

import (
	"math"

	"github.com/lumenray/lumen/pkg/core"
)

// CameraConfig is the authored camera pose and field of view
type CameraConfig struct {
	LookFrom core.Vec3
	LookAt   core.Vec3
	Up       core.Vec3
	VFov     float64 // Vertical field of view in degrees
}

// Camera generates primary rays for a pixel grid. When jitter is enabled
// each ray is offset by a sub-pixel amount from the sampler; otherwise rays
// pass through pixel centers, which keeps repeated batches bit-identical.
type Camera struct {
	origin     core.Vec3
	lowerLeft  core.Vec3
	horizontal core.Vec3
	vertical   core.Vec3
	width      float64
	height     float64
	jitter     bool
	time0      float64
	time1      float64
}

// NewCamera builds a camera for the given image dimensions. Shutter times
// bound the ray times generated for motion blur; pass 0, 0 for a static
// shutter.
func NewCamera(cfg CameraConfig, width, height int, jitter bool, time0, time1 float64) *Camera {
	aspect := float64(width) / float64(height)
	theta := cfg.VFov * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	halfWidth := aspect * halfHeight

	w := cfg.LookFrom.Subtract(cfg.LookAt).Normalize()
	u := cfg.Up.Cross(w).Normalize()
	v := w.Cross(u)

	origin := cfg.LookFrom
	lowerLeft := origin.
		Subtract(u.Multiply(halfWidth)).
		Subtract(v.Multiply(halfHeight)).
		Subtract(w)

	return &Camera{
		origin:     origin,
		lowerLeft:  lowerLeft,
		horizontal: u.Multiply(2 * halfWidth),
		vertical:   v.Multiply(2 * halfHeight),
		width:      float64(width),
		height:     float64(height),
		jitter:     jitter,
		time0:      time0,
		time1:      time1,
	}
}

// GetRay returns the primary ray for pixel (px, py), with py = 0 at the top
// of the image
func (c *Camera) GetRay(px, py int, sampler core.Sampler) core.Ray {
	jx, jy := 0.5, 0.5
	if c.jitter {
		j := sampler.Get2D()
		jx, jy = j.X, j.Y
	}
	s := (float64(px) + jx) / c.width
	t := 1 - (float64(py)+jy)/c.height

	dir := c.lowerLeft.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin)

	time := c.time0
	if c.time1 > c.time0 {
		time = c.time0 + sampler.Get1D()*(c.time1-c.time0)
	}
	return core.NewRayAt(c.origin, dir, time)
}
