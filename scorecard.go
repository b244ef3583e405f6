/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/Seednode/drawduel/internal/game"
)

const (
	cardMargin = 15.0
	cardBox    = 70.0
	cardGutter = 25.0
)

// writeScorecard renders every finished round as an A4 PDF: the target
// outline, both players' strokes on top of it, and the points they got.
func writeScorecard(w io.Writer, gameID, session string, history []game.RoundResult) error {
	p := gofpdf.New("P", "mm", "A4", "")
	p.SetTitle("drawduel scorecard", true)
	p.SetAutoPageBreak(false, cardMargin)
	p.AddPage()

	p.SetFont("Helvetica", "B", 20)
	p.CellFormat(0, 12, "drawduel scorecard", "", 1, "L", false, 0, "")

	p.SetFont("Helvetica", "", 10)
	p.SetTextColor(96, 96, 96)
	p.CellFormat(0, 6, fmt.Sprintf("Game %s, session %s", gameID, session), "", 1, "L", false, 0, "")
	p.SetTextColor(0, 0, 0)
	p.Ln(4)

	if len(history) == 0 {
		p.CellFormat(0, 8, "No rounds have been finished yet.", "", 1, "L", false, 0, "")

		return p.Output(w)
	}

	_, pageHeight := p.GetPageSize()

	var totals [2]float64
	for _, r := range history {
		if p.GetY()+cardBox+24 > pageHeight-cardMargin {
			p.AddPage()
		}

		p.SetFont("Helvetica", "B", 12)
		p.CellFormat(0, 8, fmt.Sprintf("Round %d: %s (%s)", r.Round, r.Shape, r.MaxDuration), "", 1, "L", false, 0, "")

		top := p.GetY()

		target := ""
		if r.Target != nil {
			target = "target-" + strconv.Itoa(r.Round)
			if err := registerTarget(p, target, r.Target); err != nil {
				return err
			}
		}

		for i, pl := range r.Players {
			x := cardMargin + float64(i)*(cardBox+cardGutter)

			drawAttempt(p, target, r.Side, pl, x, top)

			p.SetXY(x, top+cardBox+2)
			p.SetFont("Helvetica", "", 10)
			p.CellFormat(cardBox, 5, fmt.Sprintf("%s: %.1f points", pl.Name, pl.Score), "", 2, "L", false, 0, "")
			p.SetTextColor(96, 96, 96)
			p.CellFormat(cardBox, 5, fmt.Sprintf("%.0f%% accurate, drew for %s", pl.Accuracy*100, pl.DrawDuration.Round(100*time.Millisecond)), "", 0, "L", false, 0, "")
			p.SetTextColor(0, 0, 0)

			totals[i] += pl.Score
		}

		p.SetY(top + cardBox + 16)
	}

	last := history[len(history)-1].Players

	p.SetFont("Helvetica", "B", 12)
	p.CellFormat(0, 8, fmt.Sprintf("Total: %s %.1f, %s %.1f", last[0].Name, totals[0], last[1].Name, totals[1]), "", 1, "L", false, 0, "")

	return p.Output(w)
}

// registerTarget embeds a target as a light outline on white paper.
func registerTarget(p *gofpdf.Fpdf, name string, target *image.Gray) error {
	b := target.Bounds()
	paper := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := 255 - target.GrayAt(x, y).Y/4
			paper.SetGray(x, y, color.Gray{Y: v})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, paper); err != nil {
		return err
	}

	p.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)

	return p.Error()
}

func drawAttempt(p *gofpdf.Fpdf, target string, side int, pl game.PlayerResult, x, y float64) {
	if target != "" {
		p.ImageOptions(target, x, y, cardBox, cardBox, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	p.SetDrawColor(160, 160, 160)
	p.SetLineWidth(0.2)
	p.Rect(x, y, cardBox, cardBox, "D")

	if side <= 0 {
		return
	}
	scale := cardBox / float64(side)

	// Yellow ink barely shows on paper, so darken every ink a little.
	r, g, b := int(pl.Ink.R)*3/4, int(pl.Ink.G)*3/4, int(pl.Ink.B)*3/4
	p.SetDrawColor(r, g, b)
	p.SetFillColor(r, g, b)
	p.SetLineWidth(0.8)
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")

	for _, run := range pl.Path.Runs() {
		if len(run) == 1 {
			p.Circle(x+float64(run[0].X)*scale, y+float64(run[0].Y)*scale, 0.4, "F")

			continue
		}

		for i := 1; i < len(run); i++ {
			p.Line(
				x+float64(run[i-1].X)*scale, y+float64(run[i-1].Y)*scale,
				x+float64(run[i].X)*scale, y+float64(run[i].Y)*scale,
			)
		}
	}
}
