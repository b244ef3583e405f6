/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package stroke

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"golang.org/x/image/vector"
)

const (
	// DefaultWidth is the stroke thickness in pixels.
	DefaultWidth = 20

	smoothWindow    = 3
	minStepDistance = 10
	discSegments    = 24
)

var ErrUnknownFilter = errors.New("unknown stroke filter")

// Filter selects how a run of points is cleaned up before it is drawn.
type Filter int

const (
	// FilterSmooth averages each point with up to two before it.
	FilterSmooth Filter = iota

	// FilterMinStep drops points closer than 10 pixels to the last kept one.
	FilterMinStep

	// FilterNone draws the points as tracked.
	FilterNone
)

func (f Filter) String() string {
	switch f {
	case FilterSmooth:
		return "smooth"
	case FilterMinStep:
		return "min-step"
	case FilterNone:
		return "none"
	default:
		return fmt.Sprintf("Filter(%d)", int(f))
	}
}

// ParseFilter accepts the names printed by Filter.String.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "smooth":
		return FilterSmooth, nil
	case "min-step", "minstep":
		return FilterMinStep, nil
	case "none":
		return FilterNone, nil
	default:
		return 0, fmt.Errorf("%w: %q (must be one of smooth, min-step, none)", ErrUnknownFilter, s)
	}
}

type fpoint struct {
	x, y float64
}

// Rasterizer draws paths as thick polylines with round joins.
type Rasterizer struct {
	Width  float64
	Filter Filter
}

// Draw renders p in color c on a transparent w x h canvas.
func (r Rasterizer) Draw(p Path, w, h int, c color.Color) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	if w <= 0 || h <= 0 {
		return canvas
	}

	mask := r.coverage(r.filtered(p), false, w, h)
	draw.DrawMask(canvas, canvas.Bounds(), image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)

	return canvas
}

// DrawBinary renders p into a single-channel mask: 255 on the stroke and 0
// elsewhere.
func (r Rasterizer) DrawBinary(p Path, w, h int) *image.Gray {
	if w <= 0 || h <= 0 {
		return image.NewGray(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}

	return binarize(r.coverage(r.filtered(p), false, w, h))
}

// outline renders the polyline through pts, unfiltered, as a binary mask.
// A closed outline joins the last point back to the first.
func (r Rasterizer) outline(pts []fpoint, closed bool, w, h int) *image.Gray {
	if w <= 0 || h <= 0 {
		return image.NewGray(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}

	return binarize(r.coverage([][]fpoint{pts}, closed, w, h))
}

// Polygon renders the outline of a shape given in floating point pixel
// coordinates.
func (r Rasterizer) Polygon(xs, ys []float64, closed bool, w, h int) *image.Gray {
	n := min(len(xs), len(ys))
	pts := make([]fpoint, n)
	for i := range n {
		pts[i] = fpoint{xs[i], ys[i]}
	}

	return r.outline(pts, closed, w, h)
}

func (r Rasterizer) width() float64 {
	if r.Width <= 0 {
		return DefaultWidth
	}

	return r.Width
}

func (r Rasterizer) filtered(p Path) [][]fpoint {
	runs := p.Runs()

	out := make([][]fpoint, 0, len(runs))
	for _, run := range runs {
		switch r.Filter {
		case FilterSmooth:
			out = append(out, smooth(run))
		case FilterMinStep:
			out = append(out, minStep(run))
		default:
			out = append(out, plain(run))
		}
	}

	return out
}

func plain(run []image.Point) []fpoint {
	out := make([]fpoint, len(run))
	for i, p := range run {
		out[i] = fpoint{float64(p.X), float64(p.Y)}
	}

	return out
}

// smooth applies a trailing moving average over the last smoothWindow
// points, per axis.
func smooth(run []image.Point) []fpoint {
	out := make([]fpoint, len(run))
	for i := range run {
		lo := max(0, i-smoothWindow+1)

		var sx, sy float64
		for _, p := range run[lo : i+1] {
			sx += float64(p.X)
			sy += float64(p.Y)
		}

		n := float64(i + 1 - lo)
		out[i] = fpoint{sx / n, sy / n}
	}

	return out
}

func minStep(run []image.Point) []fpoint {
	if len(run) == 0 {
		return nil
	}

	out := []fpoint{{float64(run[0].X), float64(run[0].Y)}}
	last := run[0]
	for _, p := range run[1:] {
		dx, dy := float64(p.X-last.X), float64(p.Y-last.Y)
		if math.Hypot(dx, dy) < minStepDistance {
			continue
		}

		out = append(out, fpoint{float64(p.X), float64(p.Y)})
		last = p
	}

	return out
}

// coverage rasterizes the thick polylines into an anti-aliased alpha mask.
// Every sub-path is wound the same way so overlaps add up instead of
// cancelling.
func (r Rasterizer) coverage(runs [][]fpoint, closed bool, w, h int) *image.Alpha {
	z := vector.NewRasterizer(w, h)
	half := r.width() / 2

	for _, run := range runs {
		for i, p := range run {
			disc(z, p, half)
			if i > 0 {
				segment(z, run[i-1], p, half)
			}
		}
		if closed && len(run) > 2 {
			segment(z, run[len(run)-1], run[0], half)
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return mask
}

// Points sit on pixel centres.
func pt(x, y float64) (float32, float32) {
	return float32(x + 0.5), float32(y + 0.5)
}

func segment(z *vector.Rasterizer, p, q fpoint, half float64) {
	dx, dy := q.x-p.x, q.y-p.y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}

	nx, ny := -dy/length*half, dx/length*half

	z.MoveTo(pt(p.x+nx, p.y+ny))
	z.LineTo(pt(q.x+nx, q.y+ny))
	z.LineTo(pt(q.x-nx, q.y-ny))
	z.LineTo(pt(p.x-nx, p.y-ny))
	z.ClosePath()
}

func disc(z *vector.Rasterizer, c fpoint, radius float64) {
	for k := range discSegments {
		theta := -2 * math.Pi * float64(k) / discSegments
		x, y := pt(c.x+radius*math.Cos(theta), c.y+radius*math.Sin(theta))
		if k == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
}

func binarize(mask *image.Alpha) *image.Gray {
	out := image.NewGray(mask.Bounds())
	for i, a := range mask.Pix {
		if a >= 0x80 {
			out.Pix[i] = 0xff
		}
	}

	return out
}
