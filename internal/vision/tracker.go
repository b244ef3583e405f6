/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package vision

import (
	"image"
	"math"
)

// DefaultMinArea rejects specks of noise during play.
const DefaultMinArea = 20

// Tip is the tracked position of a marker tip. OK is false when no marker
// was found, which is a normal outcome rather than an error.
type Tip struct {
	X, Y int
	OK   bool
}

// At returns a present tip at (x, y).
func At(x, y int) Tip {
	return Tip{X: x, Y: y, OK: true}
}

// Point returns the tip position. It is meaningless when OK is false.
func (t Tip) Point() image.Point {
	return image.Point{t.X, t.Y}
}

// Tracker finds the tip of a single colored marker in a frame.
type Tracker struct {
	// MinArea is the smallest blob area, in square pixels, that may count
	// as a marker. Zero keeps every blob, which suits calibration.
	MinArea float64
}

// Locate returns the centroid of the largest blob of pixels matching p,
// relative to the origin of img's bounds. Blobs of equal area are resolved
// in favour of the first one found; that order is not part of the contract.
func (t Tracker) Locate(img image.Image, p ColorProfile) Tip {
	if img == nil {
		return Tip{}
	}

	var best *region
	for _, r := range regions(threshold(img, p)) {
		if r.area() < t.MinArea {
			continue
		}
		if best == nil || r.area() > best.area() {
			best = &r
		}
	}

	if best == nil || best.m00 == 0 {
		return Tip{}
	}

	return At(
		int(math.Round(best.m10/best.m00)),
		int(math.Round(best.m01/best.m00)),
	)
}

// Mask renders the pixels of img that match p as a binary image, for
// previewing a calibration.
func (t Tracker) Mask(img image.Image, p ColorProfile) *image.Gray {
	m := threshold(img, p)

	out := image.NewGray(image.Rect(0, 0, m.w, m.h))
	for i, on := range m.on {
		if on {
			out.Pix[i] = 0xff
		}
	}

	return out
}

func threshold(img image.Image, p ColorProfile) *binaryMask {
	src := toRGBA(img)
	b := src.Bounds()

	m := &binaryMask{
		w:  b.Dx(),
		h:  b.Dy(),
		on: make([]bool, b.Dx()*b.Dy()),
	}

	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			i := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			if p.Contains(ToHSV(src.Pix[i], src.Pix[i+1], src.Pix[i+2])) {
				m.on[y*m.w+x] = true
			}
		}
	}

	return m
}
