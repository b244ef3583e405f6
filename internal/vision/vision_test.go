/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package vision

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

var greenProfile = ColorProfile{
	Lower: HSV{50, 200, 200},
	Upper: HSV{70, 255, 255},
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func fillCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

var (
	black = color.RGBA{A: 255}
	green = color.RGBA{G: 255, A: 255}
)

func TestToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    HSV
	}{
		{"black", 0, 0, 0, HSV{0, 0, 0}},
		{"white", 255, 255, 255, HSV{0, 0, 255}},
		{"red", 255, 0, 0, HSV{0, 255, 255}},
		{"green", 0, 255, 0, HSV{60, 255, 255}},
		{"blue", 0, 0, 255, HSV{120, 255, 255}},
		{"yellow", 255, 255, 0, HSV{30, 255, 255}},
		{"dark cyan", 0, 128, 128, HSV{90, 255, 128}},
		{"grey", 128, 128, 128, HSV{0, 0, 128}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToHSV(tt.r, tt.g, tt.b)
			if got != tt.want {
				t.Errorf("ToHSV(%d, %d, %d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestProfileValidate(t *testing.T) {
	if err := greenProfile.Validate(); err != nil {
		t.Errorf("expected valid profile, got %v", err)
	}

	bad := ColorProfile{Lower: HSV{10, 0, 0}, Upper: HSV{5, 255, 255}}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile, got %v", err)
	}
}

func TestFromSample(t *testing.T) {
	p, err := FromSample(HSV{5, 100, 250}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Lower != (HSV{0, 90, 240}) {
		t.Errorf("expected lower bound floored at zero, got %v", p.Lower)
	}
	if p.Upper != (HSV{15, 110, 260}) {
		t.Errorf("expected upper (15, 110, 260), got %v", p.Upper)
	}

	if _, err := FromSample(HSV{}, -1); !errors.Is(err, ErrInvalidTolerance) {
		t.Errorf("expected ErrInvalidTolerance for negative tolerance, got %v", err)
	}
	if _, err := FromSample(HSV{}, MaxTolerance+1); !errors.Is(err, ErrInvalidTolerance) {
		t.Errorf("expected ErrInvalidTolerance above maximum, got %v", err)
	}
}

func TestProfileStoreCalibrate(t *testing.T) {
	store := NewProfileStore(Yellow, Green)

	frame := solid(20, 20, black)
	frame.SetRGBA(5, 6, green)

	p, err := store.Calibrate(1, frame, image.Pt(5, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Contains(HSV{60, 255, 255}) {
		t.Errorf("calibrated profile %v should contain the sampled color", p)
	}
	if store.Profile(1) != p {
		t.Errorf("expected store to hold the calibrated profile")
	}
	if store.Profile(0) != Yellow.Profile {
		t.Errorf("calibrating player 1 must not touch player 0")
	}

	if _, err := store.Calibrate(2, frame, image.Pt(5, 6)); !errors.Is(err, ErrInvalidPlayer) {
		t.Errorf("expected ErrInvalidPlayer, got %v", err)
	}
	if _, err := store.Calibrate(0, frame, image.Pt(20, 0)); !errors.Is(err, ErrNoSample) {
		t.Errorf("expected ErrNoSample for out of bounds point, got %v", err)
	}
	if _, err := store.Calibrate(0, nil, image.Pt(0, 0)); !errors.Is(err, ErrNoSample) {
		t.Errorf("expected ErrNoSample without a frame, got %v", err)
	}
	if err := store.SetTolerance(MaxTolerance + 1); !errors.Is(err, ErrInvalidTolerance) {
		t.Errorf("expected ErrInvalidTolerance, got %v", err)
	}
}

func TestLocateAbsentOutsideRange(t *testing.T) {
	tr := Tracker{MinArea: DefaultMinArea}

	colors := []color.RGBA{
		black,
		{R: 255, A: 255},
		{B: 255, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
		{G: 100, A: 255},
	}

	for _, c := range colors {
		frame := solid(64, 48, c)
		if tip := tr.Locate(frame, greenProfile); tip.OK {
			t.Errorf("expected no tip for color %v, got %v", c, tip)
		}
	}
}

func TestLocateCircleCentroid(t *testing.T) {
	frame := solid(120, 90, black)
	fillCircle(frame, 47, 38, 12, green)

	tip := Tracker{MinArea: DefaultMinArea}.Locate(frame, greenProfile)
	if !tip.OK {
		t.Fatal("expected a tip")
	}

	if abs(tip.X-47) > 1 || abs(tip.Y-38) > 1 {
		t.Errorf("expected tip near (47, 38), got (%d, %d)", tip.X, tip.Y)
	}
}

func TestLocateLargestBlobWins(t *testing.T) {
	frame := solid(100, 100, black)
	fillRect(frame, image.Rect(5, 5, 10, 10), green)
	fillRect(frame, image.Rect(50, 60, 80, 90), green)

	tip := Tracker{}.Locate(frame, greenProfile)
	if !tip.OK {
		t.Fatal("expected a tip")
	}

	// Boundary through pixel centres 50..79 and 60..89.
	if abs(tip.X-65) > 1 || abs(tip.Y-75) > 1 {
		t.Errorf("expected the large square's centre near (64.5, 74.5), got (%d, %d)", tip.X, tip.Y)
	}
}

func TestLocateMinArea(t *testing.T) {
	frame := solid(60, 60, black)
	fillRect(frame, image.Rect(10, 10, 14, 14), green)

	if tip := (Tracker{MinArea: DefaultMinArea}).Locate(frame, greenProfile); tip.OK {
		t.Errorf("expected a 4x4 blob to be rejected as noise, got %v", tip)
	}
	if tip := (Tracker{}).Locate(frame, greenProfile); !tip.OK {
		t.Error("expected the blob to be found with no minimum area")
	}
}

func TestLocateDegenerateRegions(t *testing.T) {
	tests := []struct {
		name  string
		paint func(*image.RGBA)
	}{
		{"single pixel", func(img *image.RGBA) { img.SetRGBA(10, 10, green) }},
		{"horizontal line", func(img *image.RGBA) { fillRect(img, image.Rect(5, 20, 40, 21), green) }},
		{"vertical line", func(img *image.RGBA) { fillRect(img, image.Rect(30, 2, 31, 40), green) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := solid(50, 50, black)
			tt.paint(frame)

			if tip := (Tracker{}).Locate(frame, greenProfile); tip.OK {
				t.Errorf("expected zero-area region to yield no tip, got %v", tip)
			}
		})
	}
}

func TestLocateSubImageIsRelative(t *testing.T) {
	frame := solid(200, 100, black)
	fillCircle(frame, 150, 50, 10, green)

	sub := frame.SubImage(image.Rect(100, 0, 200, 100))

	tip := Tracker{MinArea: DefaultMinArea}.Locate(sub, greenProfile)
	if !tip.OK {
		t.Fatal("expected a tip")
	}
	if abs(tip.X-50) > 1 || abs(tip.Y-50) > 1 {
		t.Errorf("expected tip relative to the sub-image near (50, 50), got (%d, %d)", tip.X, tip.Y)
	}
}

func TestLocateEmptyFrame(t *testing.T) {
	if tip := (Tracker{}).Locate(nil, greenProfile); tip.OK {
		t.Error("expected no tip for a nil frame")
	}
	if tip := (Tracker{}).Locate(image.NewRGBA(image.Rect(0, 0, 0, 0)), greenProfile); tip.OK {
		t.Error("expected no tip for an empty frame")
	}
}

func TestMask(t *testing.T) {
	frame := solid(10, 10, black)
	frame.SetRGBA(3, 4, green)

	m := Tracker{}.Mask(frame, greenProfile)
	if m.GrayAt(3, 4).Y != 0xff {
		t.Error("expected matching pixel to be on")
	}
	if m.GrayAt(4, 4).Y != 0 {
		t.Error("expected background pixel to be off")
	}
}

func TestMirror(t *testing.T) {
	frame := solid(4, 2, black)
	frame.SetRGBA(0, 1, green)

	m := Mirror(frame)
	if m.RGBAAt(3, 1) != green {
		t.Errorf("expected pixel mirrored to (3, 1), got %v", m.RGBAAt(3, 1))
	}
	if m.RGBAAt(0, 1) != black {
		t.Errorf("expected (0, 1) to be background, got %v", m.RGBAAt(0, 1))
	}
}

func TestSplitPlayspace(t *testing.T) {
	ps := SplitPlayspace(image.Rect(0, 0, 800, 600))

	if ps.Side != 390 {
		t.Errorf("expected side 390, got %d", ps.Side)
	}
	if ps.Left != image.Rect(5, 105, 395, 495) {
		t.Errorf("unexpected left playspace %v", ps.Left)
	}
	if ps.Right != image.Rect(405, 105, 795, 495) {
		t.Errorf("unexpected right playspace %v", ps.Right)
	}
	if ps.Region(0) != ps.Left || ps.Region(1) != ps.Right {
		t.Error("Region should map players to left and right")
	}

	wide := SplitPlayspace(image.Rect(0, 0, 1000, 200))
	if wide.Side != 200 {
		t.Errorf("expected side limited by frame height, got %d", wide.Side)
	}

	if tiny := SplitPlayspace(image.Rect(0, 0, 10, 10)); tiny.Side != 0 {
		t.Errorf("expected no playspace for a tiny frame, got side %d", tiny.Side)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
