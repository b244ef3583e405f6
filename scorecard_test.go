/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/Seednode/drawduel/internal/game"
	"github.com/Seednode/drawduel/internal/rounds"
	"github.com/Seednode/drawduel/internal/stroke"
)

func TestScorecardEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := writeScorecard(&buf, "abc12345", "session", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("expected a pdf")
	}
}

func TestScorecardRounds(t *testing.T) {
	catalog := rounds.NewCatalog(0)

	path := stroke.Path{
		{Point: image.Pt(60, 60)},
		{Point: image.Pt(340, 60)},
		{Gap: true},
		{Point: image.Pt(340, 340)},
	}

	var history []game.RoundResult
	for i := 1; i <= 6; i++ {
		spec := catalog.Get(i)

		history = append(history, game.RoundResult{
			Round:       i,
			Shape:       spec.Name,
			Target:      spec.Target,
			MaxDuration: spec.MaxDuration,
			Side:        rounds.WorldSize,
			Players: [2]game.PlayerResult{
				{Name: "Player 1", Ink: color.RGBA{255, 255, 0, 255}, Score: 30, Accuracy: 0.6, DrawDuration: 4 * time.Second, Path: path},
				{Name: "Player 2", Ink: color.RGBA{0, 255, 0, 255}, Score: 12.5, Accuracy: 0.25, DrawDuration: time.Second},
			},
		})
	}

	var buf bytes.Buffer
	if err := writeScorecard(&buf, "abc12345", "session", history); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("expected a pdf")
	}
	if buf.Len() < 1000 {
		t.Errorf("expected images and strokes in the pdf, got %d bytes", buf.Len())
	}
}
