/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package stroke turns a stream of tracked marker tips into strokes and
// renders them.
package stroke

import "image"

// Node is one entry of a Path: either a point, or a gap that breaks the
// polyline where the marker was lifted.
type Node struct {
	Point image.Point
	Gap   bool
}

// Path is an ordered stroke.
type Path []Node

// Len returns the number of points in p, not counting gaps.
func (p Path) Len() int {
	n := 0
	for _, node := range p {
		if !node.Gap {
			n++
		}
	}

	return n
}

// Runs splits p at its gaps into unbroken runs of points.
func (p Path) Runs() [][]image.Point {
	var runs [][]image.Point

	var run []image.Point
	for _, node := range p {
		if node.Gap {
			if len(run) > 0 {
				runs = append(runs, run)
			}
			run = nil

			continue
		}

		run = append(run, node.Point)
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}

	return runs
}

// Clone returns a copy of p that shares no storage with it.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}

	c := make(Path, len(p))
	copy(c, p)

	return c
}
