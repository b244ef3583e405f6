/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package vision

import "image"

// PlayspaceBuffer is the horizontal gap kept around the two playspaces.
const PlayspaceBuffer = 10

// Playspace splits a frame into two equal squares, one per player, side by
// side and vertically centred.
//
//	+-------------+
//	| +--+   +--+ |
//	| |P1|   |P2| |
//	| +--+   +--+ |
//	+-------------+
type Playspace struct {
	Left  image.Rectangle
	Right image.Rectangle
	Side  int
}

// SplitPlayspace computes the playspaces of a frame with bounds b.
// Side is zero when the frame is too small to hold any.
func SplitPlayspace(b image.Rectangle) Playspace {
	w, h := b.Dx(), b.Dy()

	side := min(w/2-PlayspaceBuffer, h)
	if side <= 0 {
		return Playspace{}
	}

	hOffset := (w - 2*side) / 4
	vOffset := (h - side) / 2
	mid := w / 2

	left := image.Rect(hOffset, vOffset, hOffset+side, vOffset+side)
	right := image.Rect(mid+hOffset, vOffset, mid+hOffset+side, vOffset+side)

	return Playspace{
		Left:  left.Add(b.Min),
		Right: right.Add(b.Min),
		Side:  side,
	}
}

// Region returns the playspace of player 0 or 1.
func (p Playspace) Region(player int) image.Rectangle {
	if player == 0 {
		return p.Left
	}

	return p.Right
}
