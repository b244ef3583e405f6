/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package rounds holds the shapes players are asked to trace.
package rounds

import (
	"image"
	"math"
	"sync"
	"time"

	"github.com/Seednode/drawduel/internal/stroke"
)

const (
	// WorldSize is the side of the square that targets are defined in.
	WorldSize = 400

	outlineWidth = 8
	circleSides  = 96
)

// Spec is one round: the target to trace and how long players get to
// trace it.
type Spec struct {
	Index       int
	Name        string
	Target      *image.Gray
	MaxDuration time.Duration
}

type shape struct {
	name     string
	duration time.Duration
	outline  func() (xs, ys []float64)
}

var shapes = []shape{
	{"circle", 10 * time.Second, circle},
	{"square", 10 * time.Second, square},
	{"rectangle", 10 * time.Second, rectangle},
	{"triangle", 10 * time.Second, triangle},
	{"star", 15 * time.Second, star},
}

// Catalog hands out round specs. Targets are rendered once and shared, so
// callers must treat them as read-only.
type Catalog struct {
	override time.Duration

	mu      sync.Mutex
	targets map[int]*image.Gray
}

// NewCatalog returns the built-in catalog. A positive override replaces
// every shape's own duration.
func NewCatalog(override time.Duration) *Catalog {
	return &Catalog{
		override: override,
		targets:  make(map[int]*image.Gray, len(shapes)),
	}
}

func (c *Catalog) Len() int { return len(shapes) }

// Get returns the settings for a 1-based round number. Rounds cycle through the
// catalog: round N uses shape N mod Len.
func (c *Catalog) Get(round int) Spec {
	i := round % len(shapes)
	if i < 0 {
		i += len(shapes)
	}

	s := shapes[i]

	d := s.duration
	if c.override > 0 {
		d = c.override
	}

	return Spec{
		Index:       i,
		Name:        s.name,
		Target:      c.target(i),
		MaxDuration: d,
	}
}

func (c *Catalog) target(i int) *image.Gray {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.targets[i]; ok {
		return t
	}

	xs, ys := shapes[i].outline()
	t := stroke.Rasterizer{Width: outlineWidth}.Polygon(xs, ys, true, WorldSize, WorldSize)
	c.targets[i] = t

	return t
}

func polygon(pts ...[2]float64) (xs, ys []float64) {
	for _, p := range pts {
		xs = append(xs, p[0])
		ys = append(ys, p[1])
	}

	return xs, ys
}

func circle() (xs, ys []float64) {
	const r = 150

	for k := range circleSides {
		theta := 2 * math.Pi * float64(k) / circleSides
		xs = append(xs, WorldSize/2+r*math.Cos(theta))
		ys = append(ys, WorldSize/2+r*math.Sin(theta))
	}

	return xs, ys
}

func square() (xs, ys []float64) {
	return polygon(
		[2]float64{60, 60},
		[2]float64{340, 60},
		[2]float64{340, 340},
		[2]float64{60, 340},
	)
}

func rectangle() (xs, ys []float64) {
	return polygon(
		[2]float64{30, 110},
		[2]float64{370, 110},
		[2]float64{370, 290},
		[2]float64{30, 290},
	)
}

func triangle() (xs, ys []float64) {
	return polygon(
		[2]float64{200, 50},
		[2]float64{360, 340},
		[2]float64{40, 340},
	)
}

// star is a five-pointed star with its top point up.
func star() (xs, ys []float64) {
	const outer, inner = 170, 70

	for k := range 10 {
		r := float64(outer)
		if k%2 == 1 {
			r = inner
		}

		theta := -math.Pi/2 + math.Pi*float64(k)/5
		xs = append(xs, WorldSize/2+r*math.Cos(theta))
		ys = append(ys, WorldSize/2+10+r*math.Sin(theta))
	}

	return xs, ys
}
