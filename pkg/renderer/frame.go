package renderer

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/lumenray/lumen/pkg/core"
)

const displayGamma = 2.2

// Frame is one finalized output set: the tonemapped color image plus the
// normal and albedo auxiliary images, all at display resolution
type Frame struct {
	Batch   int
	Samples uint32 // Minimum per-pixel sample count at finalize time
	Color   *image.RGBA
	Normal  *image.RGBA
	Albedo  *image.RGBA
}

// Display receives finalized frames in batch order
type Display interface {
	Present(frame Frame)
}

// finalizePlanes converts resolved planes to 8-bit images, applying gamma
// to color and remapping normals from [-1, 1] to channel range, then
// upscales to display resolution when scale is not 1
func finalizePlanes(p *Planes, scale float64) (colorImg, normalImg, albedoImg *image.RGBA) {
	bounds := image.Rect(0, 0, p.Width, p.Height)
	colorImg = image.NewRGBA(bounds)
	normalImg = image.NewRGBA(bounds)
	albedoImg = image.NewRGBA(bounds)

	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			i := p.Index(x, y)
			colorImg.SetRGBA(x, y, quantize(p.Color[i].GammaCorrect(displayGamma)))
			n := p.Normal[i].Multiply(0.5).Add(core.NewVec3(0.5, 0.5, 0.5))
			normalImg.SetRGBA(x, y, quantize(n))
			albedoImg.SetRGBA(x, y, quantize(p.Albedo[i]))
		}
	}

	if scale != 1 {
		colorImg = upscale(colorImg, scale)
		normalImg = upscale(normalImg, scale)
		albedoImg = upscale(albedoImg, scale)
	}
	return colorImg, normalImg, albedoImg
}

func quantize(v core.Vec3) color.RGBA {
	c := v.Clamp(0, 1)
	return color.RGBA{
		R: uint8(c.X*255 + 0.5),
		G: uint8(c.Y*255 + 0.5),
		B: uint8(c.Z*255 + 0.5),
		A: 255,
	}
}

func upscale(src *image.RGBA, scale float64) *image.RGBA {
	w := int(float64(src.Bounds().Dx())*scale + 0.5)
	h := int(float64(src.Bounds().Dy())*scale + 0.5)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
