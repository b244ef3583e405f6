/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package vision locates colored marker tips in camera frames.
//
// Colors are compared in hue-saturation-value space using the 8-bit
// convention most camera tooling uses: hue in [0,180), saturation and
// value in [0,255].
package vision

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// HSV is a color in 8-bit hue-saturation-value space.
type HSV struct {
	H, S, V int
}

func (c HSV) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.H, c.S, c.V)
}

// ToHSV converts an 8-bit RGB triple.
func ToHSV(r, g, b uint8) HSV {
	rf, gf, bf := float64(r), float64(g), float64(b)

	v := math.Max(rf, math.Max(gf, bf))
	lo := math.Min(rf, math.Min(gf, bf))
	diff := v - lo

	var s float64
	if v > 0 {
		s = diff * 255 / v
	}

	var h float64
	if diff > 0 {
		switch v {
		case rf:
			h = 60 * (gf - bf) / diff
		case gf:
			h = 120 + 60*(bf-rf)/diff
		default:
			h = 240 + 60*(rf-gf)/diff
		}
		if h < 0 {
			h += 360
		}
	}

	hue := int(math.Round(h / 2))
	if hue >= 180 {
		hue -= 180
	}

	return HSV{
		H: hue,
		S: int(math.Round(s)),
		V: int(v),
	}
}

// toRGBA returns img as an *image.RGBA, copying only when needed.
// The returned image keeps the bounds of img.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}

	b := img.Bounds()
	rgba := image.NewRGBA(b)
	xdraw.Draw(rgba, b, img, b.Min, draw.Src)

	return rgba
}

// Mirror returns a horizontally flipped copy of img with its origin at (0,0).
func Mirror(img image.Image) *image.RGBA {
	src := toRGBA(img)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			di := dst.PixOffset(w-1-x, y)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}

	return dst
}
