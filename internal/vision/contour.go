/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package vision

import "image"

// Neighbour offsets, clockwise on screen (y grows downward) starting east.
var compass = [8]image.Point{
	{1, 0},   // E
	{1, 1},   // SE
	{0, 1},   // S
	{-1, 1},  // SW
	{-1, 0},  // W
	{-1, -1}, // NW
	{0, -1},  // N
	{1, -1},  // NE
}

const west = 4

func direction(d image.Point) int {
	for i, c := range compass {
		if c == d {
			return i
		}
	}

	return -1
}

// binaryMask is a thresholded frame, row-major.
type binaryMask struct {
	w, h int
	on   []bool
}

func (m *binaryMask) at(p image.Point) bool {
	if p.X < 0 || p.Y < 0 || p.X >= m.w || p.Y >= m.h {
		return false
	}

	return m.on[p.Y*m.w+p.X]
}

// region is one 8-connected blob, described by its external boundary.
type region struct {
	boundary []image.Point
	m00      float64
	m10      float64
	m01      float64
}

// area is the area enclosed by the external boundary.
func (r region) area() float64 {
	if r.m00 < 0 {
		return -r.m00
	}

	return r.m00
}

// regions finds every 8-connected blob of m in raster order and traces its
// external boundary.
func regions(m *binaryMask) []region {
	labelled := make([]bool, len(m.on))
	stack := make([]int, 0, 64)

	var found []region
	for i, on := range m.on {
		if !on || labelled[i] {
			continue
		}

		size := 0
		labelled[i] = true
		stack = append(stack[:0], i)
		for len(stack) > 0 {
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++

			p := image.Point{j % m.w, j / m.w}
			for _, d := range compass {
				q := p.Add(d)
				if !m.at(q) {
					continue
				}
				k := q.Y*m.w + q.X
				if !labelled[k] {
					labelled[k] = true
					stack = append(stack, k)
				}
			}
		}

		// The first pixel met in raster order is always on the outer boundary.
		boundary := trace(m, image.Point{i % m.w, i / m.w}, 4*size+8)
		r := region{boundary: boundary}
		r.m00, r.m10, r.m01 = moments(boundary)
		found = append(found, r)
	}

	return found
}

// trace follows the outer boundary of the blob containing start with
// Moore-neighbour tracing. start must be the blob's first pixel in raster
// order, so its west and northern neighbours are background.
func trace(m *binaryMask, start image.Point, limit int) []image.Point {
	boundary := []image.Point{start}

	c, back := start, west
	var second image.Point
	haveSecond := false

	for steps := 0; steps < limit; steps++ {
		next, nextBack, ok := step(m, c, back)
		if !ok {
			break
		}
		if haveSecond && c == start && next == second {
			break
		}
		if !haveSecond {
			second, haveSecond = next, true
		}

		boundary = append(boundary, next)
		c, back = next, nextBack
	}

	if n := len(boundary); n > 1 && boundary[n-1] == start {
		boundary = boundary[:n-1]
	}

	return boundary
}

// step searches the neighbours of c clockwise, starting just past the
// background neighbour in direction back. It returns the next boundary
// pixel and the direction from it to the background pixel examined last.
func step(m *binaryMask, c image.Point, back int) (image.Point, int, bool) {
	for i := 1; i <= 8; i++ {
		d := (back + i) % 8
		next := c.Add(compass[d])
		if !m.at(next) {
			continue
		}

		prev := c.Add(compass[(d+7)%8])

		return next, direction(prev.Sub(next)), true
	}

	return c, back, false
}

// moments returns the zeroth and first spatial moments of the closed
// polygon through pts, by Green's theorem. The sign of m00 follows the
// winding of pts; the centroid m10/m00, m01/m00 does not depend on it.
func moments(pts []image.Point) (m00, m10, m01 float64) {
	n := len(pts)
	if n < 3 {
		return 0, 0, 0
	}

	for i := range n {
		x0, y0 := float64(pts[i].X), float64(pts[i].Y)
		x1, y1 := float64(pts[(i+1)%n].X), float64(pts[(i+1)%n].Y)

		cross := x0*y1 - x1*y0
		m00 += cross
		m10 += (x0 + x1) * cross
		m01 += (y0 + y1) * cross
	}

	return m00 / 2, m10 / 6, m01 / 6
}
