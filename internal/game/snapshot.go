/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"math"
	"time"

	"github.com/Seednode/drawduel/internal/vision"
)

// Snapshot is what clients are told about the game after every tick.
type Snapshot struct {
	Type      string           `json:"type"`
	Session   string           `json:"session"`
	State     State            `json:"state"`
	Round     int              `json:"round"`
	Rounds    int              `json:"rounds"`
	Shape     string           `json:"shape,omitempty"`
	Remaining float64          `json:"remaining"`
	Players   []PlayerSnapshot `json:"players"`
	Done      bool             `json:"done,omitempty"`
}

type PlayerSnapshot struct {
	Name     string              `json:"name"`
	Drawing  bool                `json:"drawing"`
	Points   int                 `json:"points"`
	Score    *float64            `json:"score"`
	Accuracy *float64            `json:"accuracy"`
	Total    float64             `json:"total"`
	Profile  vision.ColorProfile `json:"profile"`
}

func (s *Sequencer) snapshot(remaining time.Duration) Snapshot {
	snap := Snapshot{
		Type:      "snapshot",
		Session:   s.ID,
		State:     s.state,
		Round:     s.round,
		Rounds:    s.cfg.Rounds,
		Shape:     s.spec.Name,
		Remaining: math.Max(remaining.Seconds(), 0),
		Done:      s.done,
	}

	for i, p := range s.players {
		snap.Players = append(snap.Players, PlayerSnapshot{
			Name:     p.Name,
			Drawing:  p.Stroke.Drawing(),
			Points:   p.Stroke.Path().Len(),
			Score:    copyOf(p.Score),
			Accuracy: copyOf(p.Accuracy),
			Total:    p.Total,
			Profile:  s.profiles.Profile(i),
		})
	}

	return snap
}

func copyOf(v *float64) *float64 {
	if v == nil {
		return nil
	}

	c := *v

	return &c
}
