/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/Seednode/drawduel/internal/score"
	"github.com/Seednode/drawduel/internal/stroke"
	"github.com/Seednode/drawduel/internal/vision"
)

var ErrInvalidConfig = errors.New("invalid game configuration")

// Config holds the tunables of a game.
type Config struct {
	// FlipImage mirrors every frame so that players see themselves as in a
	// mirror.
	FlipImage bool

	Countdown time.Duration

	// RoundDuration replaces each shape's own time limit when positive.
	RoundDuration time.Duration

	PostRound time.Duration

	// Rounds is the number of rounds in a game.
	Rounds int

	// DrawTimeout is how long a marker may go missing before its stroke
	// ends.
	DrawTimeout time.Duration

	// GapAfter is how long a marker may go missing before the stroke is
	// broken where it reappears.
	GapAfter time.Duration

	Harshness float64

	// MinArea is the smallest blob, in square pixels, taken for a marker.
	MinArea float64

	ScoreMode    score.Mode
	StrokeFilter stroke.Filter
	StrokeWidth  float64
}

// DefaultConfig returns the settings a game uses unless told otherwise.
func DefaultConfig() Config {
	return Config{
		FlipImage:     true,
		Countdown:     3 * time.Second,
		RoundDuration: 0,
		PostRound:     5 * time.Second,
		Rounds:        3,
		DrawTimeout:   stroke.DefaultGrace,
		GapAfter:      stroke.DefaultGapAfter,
		Harshness:     score.DefaultHarshness,
		MinArea:       vision.DefaultMinArea,
		ScoreMode:     score.ModeAccuracy,
		StrokeFilter:  stroke.FilterSmooth,
		StrokeWidth:   stroke.DefaultWidth,
	}
}

// Validate reports the first setting that cannot be played with.
func (c Config) Validate() error {
	switch {
	case c.Countdown < 0:
		return fmt.Errorf("%w: countdown must not be negative", ErrInvalidConfig)
	case c.RoundDuration < 0:
		return fmt.Errorf("%w: round duration must not be negative", ErrInvalidConfig)
	case c.PostRound < 0:
		return fmt.Errorf("%w: post-round duration must not be negative", ErrInvalidConfig)
	case c.Rounds < 1:
		return fmt.Errorf("%w: at least one round is required", ErrInvalidConfig)
	case c.DrawTimeout <= 0:
		return fmt.Errorf("%w: draw timeout must be positive", ErrInvalidConfig)
	case c.GapAfter < 0:
		return fmt.Errorf("%w: gap-after must not be negative", ErrInvalidConfig)
	case c.Harshness < 0:
		return fmt.Errorf("%w: harshness must be at least 0", ErrInvalidConfig)
	case c.MinArea < 0:
		return fmt.Errorf("%w: minimum area must not be negative", ErrInvalidConfig)
	case c.StrokeWidth <= 0:
		return fmt.Errorf("%w: stroke width must be positive", ErrInvalidConfig)
	}

	return nil
}
