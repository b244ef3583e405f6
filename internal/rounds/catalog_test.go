/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package rounds

import (
	"image"
	"testing"
	"time"
)

func TestGetWrapsAround(t *testing.T) {
	c := NewCatalog(0)

	first := c.Get(0)
	wrapped := c.Get(c.Len())

	if wrapped.Index != first.Index || wrapped.Name != first.Name {
		t.Errorf("expected round %d to reuse %q, got %q", c.Len(), first.Name, wrapped.Name)
	}
	if wrapped.Target != first.Target {
		t.Error("expected the wrapped round to share the rendered target")
	}

	if got := c.Get(-1); got.Index != c.Len()-1 {
		t.Errorf("expected negative rounds to wrap to %d, got %d", c.Len()-1, got.Index)
	}
}

func TestGetDurations(t *testing.T) {
	c := NewCatalog(0)

	tests := []struct {
		round int
		name  string
		want  time.Duration
	}{
		{0, "circle", 10 * time.Second},
		{1, "square", 10 * time.Second},
		{2, "rectangle", 10 * time.Second},
		{3, "triangle", 10 * time.Second},
		{4, "star", 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Get(tt.round)
			if got.Name != tt.name {
				t.Errorf("expected %q, got %q", tt.name, got.Name)
			}
			if got.MaxDuration != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got.MaxDuration)
			}
		})
	}
}

func TestGetOverride(t *testing.T) {
	c := NewCatalog(3 * time.Second)

	for round := range c.Len() {
		if got := c.Get(round).MaxDuration; got != 3*time.Second {
			t.Errorf("round %d: expected overridden duration 3s, got %v", round, got)
		}
	}
}

func TestTargetsAreOutlines(t *testing.T) {
	c := NewCatalog(0)

	for round := range c.Len() {
		spec := c.Get(round)

		if spec.Target.Bounds() != image.Rect(0, 0, WorldSize, WorldSize) {
			t.Fatalf("%s: unexpected bounds %v", spec.Name, spec.Target.Bounds())
		}

		on := 0
		for _, v := range spec.Target.Pix {
			if v != 0 {
				on++
			}
		}
		if on == 0 {
			t.Errorf("%s: expected a visible outline", spec.Name)
		}
		if on > WorldSize*WorldSize/4 {
			t.Errorf("%s: expected an outline, not a filled shape (%d pixels on)", spec.Name, on)
		}
		if spec.Target.GrayAt(WorldSize/2, WorldSize/2).Y != 0 {
			t.Errorf("%s: expected the centre to be empty", spec.Name)
		}
	}
}
