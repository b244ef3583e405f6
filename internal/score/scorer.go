/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package score rates how closely a drawing follows a target shape.
package score

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	xdraw "golang.org/x/image/draw"
)

const (
	// ScoreMax is the score awarded for a perfect drawing.
	ScoreMax = 50

	// DefaultHarshness neither rewards nor penalizes beyond raw accuracy.
	DefaultHarshness = 1.0

	workSize  = 64
	finalSize = 16
	onLevel   = 30
)

var (
	ErrInvalidHarshness = errors.New("invalid harshness")
	ErrUnknownMode      = errors.New("unknown score mode")
)

// Mode selects whether drawing speed contributes to the score.
type Mode int

const (
	// ModeAccuracy scores accuracy alone.
	ModeAccuracy Mode = iota

	// ModeTimed scales the score down the longer the player took to draw.
	ModeTimed
)

func (m Mode) String() string {
	switch m {
	case ModeAccuracy:
		return "accuracy"
	case ModeTimed:
		return "timed"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts the names printed by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accuracy":
		return ModeAccuracy, nil
	case "timed":
		return ModeTimed, nil
	default:
		return 0, fmt.Errorf("%w: %q (must be one of accuracy, timed)", ErrUnknownMode, s)
	}
}

// Result is the outcome of one evaluation. Accuracy is in [0, 1] and Score
// in [0, ScoreMax].
type Result struct {
	Accuracy float64 `json:"accuracy"`
	Score    float64 `json:"score"`
}

// Scorer compares drawings against targets.
type Scorer struct {
	// Harshness above 1 penalizes imperfect drawings further; below 1
	// forgives them.
	Harshness float64

	Mode Mode
}

// New returns a scorer, rejecting a negative harshness.
func New(harshness float64, mode Mode) (*Scorer, error) {
	if harshness < 0 {
		return nil, fmt.Errorf("%w: %v (must be at least 0)", ErrInvalidHarshness, harshness)
	}

	return &Scorer{Harshness: harshness, Mode: mode}, nil
}

// Evaluate rates drawing against target. Any non-black pixel counts as ink
// in either image; the two may have different sizes.
func (s *Scorer) Evaluate(target, drawing image.Image, maxTime, drawTime time.Duration) Result {
	t := Preprocess(target)
	d := Preprocess(drawing)

	var targetSum, missingSum, extraSum float64
	for i := range t.Pix {
		inTarget := t.Pix[i] != 0
		inDrawing := d.Pix[i] != 0

		switch {
		case inTarget && !inDrawing:
			targetSum++
			missingSum++
		case inTarget:
			targetSum++
		case inDrawing:
			extraSum++
		}
	}

	correct := targetSum - missingSum
	drawingAccuracy := correct / max(correct+extraSum, 1)
	completeness := correct / max(targetSum, 1)

	accuracy := completeness * drawingAccuracy
	accuracy = clamp(accuracy-(s.Harshness-1)*accuracy, 0, 1)

	score := ScoreMax * accuracy
	if s.Mode == ModeTimed && maxTime > 0 {
		score *= clamp(1-drawTime.Seconds()/maxTime.Seconds(), 0, 1)
	}

	return Result{Accuracy: accuracy, Score: score}
}

// Preprocess reduces img to a coarse binary grid so that strokes which
// narrowly miss the target still overlap it: scale down, thicken with a 3x3
// dilation, scale down again and threshold.
func Preprocess(img image.Image) *image.Gray {
	work := image.NewGray(image.Rect(0, 0, workSize, workSize))
	if img != nil && !img.Bounds().Empty() {
		xdraw.BiLinear.Scale(work, work.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	}

	small := image.NewGray(image.Rect(0, 0, finalSize, finalSize))
	xdraw.BiLinear.Scale(small, small.Bounds(), dilate(work), work.Bounds(), xdraw.Src, nil)

	for i, v := range small.Pix {
		if v > onLevel {
			small.Pix[i] = 0xff
		} else {
			small.Pix[i] = 0
		}
	}

	return small
}

// dilate replaces every pixel with the brightest pixel of its 3x3
// neighbourhood.
func dilate(src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var m uint8
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					p := image.Pt(x+dx, y+dy)
					if !p.In(b) {
						continue
					}
					m = max(m, src.GrayAt(p.X, p.Y).Y)
				}
			}
			dst.Pix[dst.PixOffset(x, y)] = m
		}
	}

	return dst
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
