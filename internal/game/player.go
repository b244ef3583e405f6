/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"image/color"

	"github.com/Seednode/drawduel/internal/stroke"
)

// Player is one side of the duel.
type Player struct {
	Name   string
	Ink    color.RGBA
	Stroke *stroke.Accumulator

	// Score and Accuracy stay nil until the round has been scored.
	Score    *float64
	Accuracy *float64

	Total float64
}

func newPlayer(name string, ink color.RGBA, cfg Config) *Player {
	return &Player{
		Name:   name,
		Ink:    ink,
		Stroke: stroke.NewAccumulator(cfg.DrawTimeout, cfg.GapAfter),
	}
}

func (p *Player) scored() bool {
	return p.Score != nil
}

// saveRound adds the round's score to the total and clears the round.
func (p *Player) saveRound() {
	if p.Score != nil {
		p.Total += *p.Score
	}

	p.Score = nil
	p.Accuracy = nil
	p.Stroke.Reset()
}
