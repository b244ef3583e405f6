/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"image"
	"image/color"
	"time"

	"github.com/Seednode/drawduel/internal/stroke"
)

// RoundResult records how a finished round went, for the scorecard.
type RoundResult struct {
	Round       int
	Shape       string
	Target      *image.Gray
	MaxDuration time.Duration

	// Side is the size of the square the paths were drawn in.
	Side int

	Players [2]PlayerResult
}

type PlayerResult struct {
	Name         string
	Ink          color.RGBA
	Score        float64
	Accuracy     float64
	DrawDuration time.Duration
	Path         stroke.Path
}

func resultOf(p *Player) PlayerResult {
	r := PlayerResult{
		Name:         p.Name,
		Ink:          p.Ink,
		DrawDuration: p.Stroke.DrawDuration(),
		Path:         p.Stroke.Path().Clone(),
	}
	if p.Score != nil {
		r.Score = *p.Score
	}
	if p.Accuracy != nil {
		r.Accuracy = *p.Accuracy
	}

	return r
}
