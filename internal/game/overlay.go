/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Seednode/drawduel/internal/vision"
)

var ErrInvalidPosition = errors.New("invalid text position")

var (
	white  = color.RGBA{255, 255, 255, 255}
	silver = color.RGBA{200, 200, 200, 255}
	shade  = color.RGBA{0, 0, 0, 128}
)

const dashLength = 20

// text draws s onto img. x and y are fractions of the space left around the
// text, so 0.5 centres it; y places the baseline. size scales the 7x13
// glyphs up by a whole factor.
func text(img *image.RGBA, s string, x, y float64, size int, c color.Color) error {
	if x < 0 || x > 1 {
		return fmt.Errorf("%w: x must be between 0 and 1, got %v", ErrInvalidPosition, x)
	}
	if y < 0 || y > 1 {
		return fmt.Errorf("%w: y must be between 0 and 1, got %v", ErrInvalidPosition, y)
	}

	face := basicfont.Face7x13
	w := font.MeasureString(face, s).Ceil()
	h := face.Height
	if w == 0 {
		return nil
	}

	glyphs := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(s)

	size = max(size, 1)
	b := img.Bounds()

	tx := int(float64(b.Dx()-w*size) * x)
	baseline := int(float64(b.Dy()+h*size) * y)
	ty := baseline - face.Ascent*size

	dst := image.Rect(tx, ty, tx+w*size, ty+h*size).Add(b.Min)
	xdraw.NearestNeighbor.Scale(img, dst, glyphs, glyphs.Bounds(), xdraw.Over, nil)

	return nil
}

// texts draws lines in order and stops at the first bad position.
func texts(img *image.RGBA, lines ...label) error {
	for _, l := range lines {
		if err := text(img, l.s, l.x, l.y, l.size, l.c); err != nil {
			return err
		}
	}

	return nil
}

type label struct {
	s    string
	x, y float64
	size int
	c    color.Color
}

// dashed draws a vertical dashed line down the middle of img.
func dashed(img *image.RGBA, c color.Color) {
	b := img.Bounds()
	mid := b.Min.X + b.Dx()/2

	u := image.NewUniform(c)
	for y := b.Min.Y; y < b.Max.Y; y += 2 * dashLength {
		r := image.Rect(mid-1, y, mid+1, min(y+dashLength, b.Max.Y))
		xdraw.Draw(img, r, u, image.Point{}, xdraw.Over)
	}
}

// annotate draws the screen for the current state over img.
func (s *Sequencer) annotate(img *image.RGBA, ps vision.Playspace, remaining time.Duration) error {
	p1, p2 := s.players[0], s.players[1]

	switch s.state {
	case PreRound:
		dashed(img, silver)

		return texts(img,
			label{"Get Ready!", 0.5, 0.2, 3, white},
			label{fmt.Sprintf("Round %d", s.round), 0.5, 0.3, 2, white},
			label{p1.Name, 0.2, 0.9, 2, white},
			label{p2.Name, 0.8, 0.9, 2, white},
			label{"Press SPACE to start", 0.5, 0.95, 1, white},
		)

	case Countdown:
		dashed(img, silver)

		secs := int(math.Ceil(remaining.Seconds()))

		return texts(img,
			label{fmt.Sprintf("%d", max(secs, 0)), 0.5, 0.5, 8, white},
		)

	case PlayingRound:
		s.drawBoard(img, ps)

		return texts(img,
			label{fmt.Sprintf("Round %d: %s", s.round, s.spec.Name), 0.5, 0.06, 2, white},
			label{fmt.Sprintf("%.1f", max(remaining.Seconds(), 0)), 0.5, 0.13, 2, white},
		)

	case PostRound:
		s.drawBoard(img, ps)

		return texts(img,
			label{scoreLine(p1), 0.2, 0.08, 2, p1.Ink},
			label{scoreLine(p2), 0.8, 0.08, 2, p2.Ink},
			label{fmt.Sprintf("Next in %d", max(int(math.Ceil(remaining.Seconds())), 0)), 0.5, 0.95, 1, white},
		)

	case EndGame:
		dashed(img, silver)

		return texts(img,
			label{winner(p1, p2), 0.5, 0.25, 3, white},
			label{fmt.Sprintf("%.0f", p1.Total), 0.2, 0.5, 4, p1.Ink},
			label{fmt.Sprintf("%.0f", p2.Total), 0.8, 0.5, 4, p2.Ink},
			label{"Press R to play again or Q to quit", 0.5, 0.95, 1, white},
		)
	}

	return nil
}

// drawBoard dims both playspaces and draws the target and each stroke in
// them.
func (s *Sequencer) drawBoard(img *image.RGBA, ps vision.Playspace) {
	if ps.Side <= 0 {
		return
	}

	mask := s.scaledTarget(ps.Side)

	for i, p := range s.players {
		r := ps.Region(i)

		xdraw.Draw(img, r, image.NewUniform(shade), image.Point{}, xdraw.Over)
		if mask != nil {
			xdraw.DrawMask(img, r, image.NewUniform(white), image.Point{}, mask, image.Point{}, xdraw.Over)
		}

		drawing := s.raster.Draw(p.Stroke.Path(), ps.Side, ps.Side, p.Ink)
		xdraw.Draw(img, r, drawing, image.Point{}, xdraw.Over)
	}
}

// scaledTarget returns the round's target at side x side as an alpha mask,
// scaling it again only when the playspace changes size.
func (s *Sequencer) scaledTarget(side int) *image.Alpha {
	if s.spec.Target == nil {
		return nil
	}
	if s.targetMask != nil && s.targetMask.Bounds().Dx() == side {
		return s.targetMask
	}

	scaled := image.NewGray(image.Rect(0, 0, side, side))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), s.spec.Target, s.spec.Target.Bounds(), xdraw.Src, nil)

	s.targetMask = &image.Alpha{
		Pix:    scaled.Pix,
		Stride: scaled.Stride,
		Rect:   scaled.Rect,
	}

	return s.targetMask
}

func scoreLine(p *Player) string {
	if p.Score == nil || p.Accuracy == nil {
		return "..."
	}

	return fmt.Sprintf("%.0f pts (%.0f%%)", *p.Score, *p.Accuracy*100)
}

func winner(p1, p2 *Player) string {
	switch {
	case p1.Total > p2.Total:
		return p1.Name + " wins!"
	case p2.Total > p1.Total:
		return p2.Name + " wins!"
	default:
		return "It's a tie!"
	}
}
