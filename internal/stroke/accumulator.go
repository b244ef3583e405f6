/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package stroke

import (
	"time"

	"github.com/Seednode/drawduel/internal/vision"
)

const (
	// DefaultGrace is how long a marker may go missing before the stroke ends.
	DefaultGrace = time.Second

	// DefaultGapAfter is how long a marker may go missing before the stroke
	// is broken where it reappears.
	DefaultGapAfter = 500 * time.Millisecond
)

// Accumulator collects one player's tips into a Path. A player is either
// drawing or not; short dropouts of the tracker do not end a stroke.
type Accumulator struct {
	// Grace is the continuous absence that ends a stroke.
	Grace time.Duration

	// GapAfter is the absence after which a reappearing marker starts a new
	// segment instead of joining the previous point. It has no effect when
	// it is not shorter than Grace.
	GapAfter time.Duration

	path         Path
	drawing      bool
	lastSeen     time.Time
	drawDuration time.Duration
}

// NewAccumulator returns an accumulator with the given debounce windows.
func NewAccumulator(grace, gapAfter time.Duration) *Accumulator {
	return &Accumulator{
		Grace:    grace,
		GapAfter: gapAfter,
	}
}

// Update feeds the tip observed at now into the stroke.
func (a *Accumulator) Update(tip vision.Tip, now, roundStart time.Time) {
	if !tip.OK {
		if a.drawing && now.Sub(a.lastSeen) >= a.Grace {
			a.drawing = false
			a.drawDuration = now.Sub(roundStart)
		}

		return
	}

	if !a.drawing {
		a.drawing = true
		a.path = nil
	} else if a.GapAfter < a.Grace && now.Sub(a.lastSeen) >= a.GapAfter && len(a.path) > 0 {
		a.path = append(a.path, Node{Gap: true})
	}

	a.path = append(a.path, Node{Point: tip.Point()})
	a.lastSeen = now
}

// Finish ends the stroke when the round is over, whatever the grace window
// says. A player still drawing is charged the elapsed time, at most limit.
func (a *Accumulator) Finish(now, roundStart time.Time, limit time.Duration) {
	if !a.drawing {
		return
	}

	a.drawing = false
	a.drawDuration = min(now.Sub(roundStart), limit)
}

// Reset clears the stroke for a new round.
func (a *Accumulator) Reset() {
	a.path = nil
	a.drawing = false
	a.lastSeen = time.Time{}
	a.drawDuration = 0
}

func (a *Accumulator) Drawing() bool { return a.drawing }

// Path returns the stroke so far. Callers must not modify it.
func (a *Accumulator) Path() Path { return a.path }

// DrawDuration is the time from the round start to the end of the last
// stroke.
func (a *Accumulator) DrawDuration() time.Duration { return a.drawDuration }
