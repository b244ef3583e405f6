/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package vision

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

const (
	// DefaultTolerance is the calibration spread applied around a sampled color.
	DefaultTolerance = 10

	// MaxTolerance bounds the calibration spread.
	MaxTolerance = 100
)

var (
	ErrInvalidProfile   = errors.New("invalid color profile")
	ErrInvalidTolerance = errors.New("invalid calibration tolerance")
	ErrInvalidPlayer    = errors.New("invalid player")
	ErrNoSample         = errors.New("no pixel to sample")
)

// ColorProfile is an inclusive HSV range a marker's pixels fall into.
type ColorProfile struct {
	Lower HSV `json:"lower"`
	Upper HSV `json:"upper"`
}

// Contains reports whether c lies within the profile on every channel.
func (p ColorProfile) Contains(c HSV) bool {
	return c.H >= p.Lower.H && c.H <= p.Upper.H &&
		c.S >= p.Lower.S && c.S <= p.Upper.S &&
		c.V >= p.Lower.V && c.V <= p.Upper.V
}

// Validate checks that no lower bound exceeds its upper bound.
func (p ColorProfile) Validate() error {
	if p.Lower.H > p.Upper.H || p.Lower.S > p.Upper.S || p.Lower.V > p.Upper.V {
		return fmt.Errorf("%w: lower bound %s exceeds upper bound %s", ErrInvalidProfile, p.Lower, p.Upper)
	}

	return nil
}

// FromSample builds a profile spanning tolerance on either side of c.
// Lower bounds are floored at zero; upper bounds are left open.
func FromSample(c HSV, tolerance int) (ColorProfile, error) {
	if tolerance < 0 || tolerance > MaxTolerance {
		return ColorProfile{}, fmt.Errorf("%w: %d (must be between 0-%d inclusive)", ErrInvalidTolerance, tolerance, MaxTolerance)
	}

	return ColorProfile{
		Lower: HSV{
			H: max(c.H-tolerance, 0),
			S: max(c.S-tolerance, 0),
			V: max(c.V-tolerance, 0),
		},
		Upper: HSV{
			H: c.H + tolerance,
			S: c.S + tolerance,
			V: c.V + tolerance,
		},
	}, nil
}

// Marker describes one player's wand: the color range it is tracked by and
// the ink its stroke is painted with.
type Marker struct {
	Name    string
	Profile ColorProfile
	Ink     color.RGBA
}

// Built-in markers, in player order.
var (
	Yellow = Marker{
		Name: "yellow",
		Profile: ColorProfile{
			Lower: HSV{155, 0, 245},
			Upper: HSV{175, 12, 265},
		},
		Ink: color.RGBA{R: 255, G: 255, A: 255},
	}

	Green = Marker{
		Name: "green",
		Profile: ColorProfile{
			Lower: HSV{70, 28, 235},
			Upper: HSV{110, 68, 275},
		},
		Ink: color.RGBA{G: 255, A: 255},
	}
)

// ProfileStore holds the active color profile of each player along with
// the calibration tolerance. It is owned by a single game session.
type ProfileStore struct {
	profiles  []ColorProfile
	tolerance int
}

// NewProfileStore seeds a store with one profile per player.
func NewProfileStore(markers ...Marker) *ProfileStore {
	s := &ProfileStore{
		profiles:  make([]ColorProfile, len(markers)),
		tolerance: DefaultTolerance,
	}
	for i, m := range markers {
		s.profiles[i] = m.Profile
	}

	return s
}

// Profile returns the profile for player, or the zero profile if there is none.
func (s *ProfileStore) Profile(player int) ColorProfile {
	if player < 0 || player >= len(s.profiles) {
		return ColorProfile{}
	}

	return s.profiles[player]
}

// Set replaces the profile for player.
func (s *ProfileStore) Set(player int, p ColorProfile) error {
	if player < 0 || player >= len(s.profiles) {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, player)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	s.profiles[player] = p

	return nil
}

func (s *ProfileStore) Tolerance() int { return s.tolerance }

// SetTolerance changes the spread used by later calibrations.
func (s *ProfileStore) SetTolerance(t int) error {
	if t < 0 || t > MaxTolerance {
		return fmt.Errorf("%w: %d (must be between 0-%d inclusive)", ErrInvalidTolerance, t, MaxTolerance)
	}

	s.tolerance = t

	return nil
}

// Calibrate samples the pixel of img at pt (relative to the image origin)
// and makes the surrounding range the player's new profile.
func (s *ProfileStore) Calibrate(player int, img image.Image, pt image.Point) (ColorProfile, error) {
	if img == nil {
		return ColorProfile{}, ErrNoSample
	}

	b := img.Bounds()
	at := b.Min.Add(pt)
	if !at.In(b) {
		return ColorProfile{}, fmt.Errorf("%w: %v is outside %dx%d frame", ErrNoSample, pt, b.Dx(), b.Dy())
	}

	c := color.RGBAModel.Convert(img.At(at.X, at.Y)).(color.RGBA)

	p, err := FromSample(ToHSV(c.R, c.G, c.B), s.tolerance)
	if err != nil {
		return ColorProfile{}, err
	}

	if err := s.Set(player, p); err != nil {
		return ColorProfile{}, err
	}

	return p, nil
}
