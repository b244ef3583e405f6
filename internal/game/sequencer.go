/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package game runs a two player drawing duel: it tracks both markers
// through each round, scores the strokes, and annotates the frames players
// see.
package game

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	"github.com/Seednode/drawduel/internal/rounds"
	"github.com/Seednode/drawduel/internal/score"
	"github.com/Seednode/drawduel/internal/stroke"
	"github.com/Seednode/drawduel/internal/vision"
)

var ErrUnknownState = errors.New("unknown game state")

// Option customizes a Sequencer.
type Option func(*Sequencer)

// WithClock makes the sequencer read time from now instead of the wall
// clock.
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) {
		s.now = now
	}
}

// Sequencer is the game's state machine. It is not safe for concurrent
// use: a single goroutine must drive it.
type Sequencer struct {
	ID string

	cfg      Config
	now      func() time.Time
	catalog  *rounds.Catalog
	scorer   *score.Scorer
	tracker  vision.Tracker
	profiles *vision.ProfileStore
	raster   stroke.Rasterizer

	state    State
	previous State
	round    int
	spec     rounds.Spec
	players  [2]*Player

	countdownStart time.Time
	roundStart     time.Time
	postRoundStart time.Time

	side      int
	lastFrame *image.RGBA
	history   []RoundResult
	done      bool

	targetMask *image.Alpha
}

// New returns a game waiting to be started.
func New(cfg Config, opts ...Option) (*Sequencer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scorer, err := score.New(cfg.Harshness, cfg.ScoreMode)
	if err != nil {
		return nil, err
	}

	s := &Sequencer{
		cfg:      cfg,
		now:      time.Now,
		catalog:  rounds.NewCatalog(cfg.RoundDuration),
		scorer:   scorer,
		tracker:  vision.Tracker{MinArea: cfg.MinArea},
		profiles: vision.NewProfileStore(vision.Yellow, vision.Green),
		raster:   stroke.Rasterizer{Width: cfg.StrokeWidth, Filter: cfg.StrokeFilter},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.reset()

	return s, nil
}

func (s *Sequencer) reset() {
	s.ID = uuid.NewString()
	s.state = Idle
	s.previous = Idle
	s.round = 1
	s.spec = rounds.Spec{}
	s.history = nil
	s.done = false
	s.targetMask = nil
	s.players = [2]*Player{
		newPlayer("Player 1", vision.Yellow.Ink, s.cfg),
		newPlayer("Player 2", vision.Green.Ink, s.cfg),
	}
}

// Start leaves the idle state. It has no effect once the game is under way.
func (s *Sequencer) Start() {
	if s.state == Idle {
		s.state = PreRound
	}
}

func (s *Sequencer) State() State { return s.state }

func (s *Sequencer) Round() int { return s.round }

func (s *Sequencer) Done() bool { return s.done }

// Player returns player 0 or 1.
func (s *Sequencer) Player(i int) *Player { return s.players[i] }

// History returns the rounds finished so far in this playthrough.
func (s *Sequencer) History() []RoundResult {
	out := make([]RoundResult, len(s.history))
	copy(out, s.history)

	return out
}

// SetProfile replaces the color profile a player's marker is tracked by.
func (s *Sequencer) SetProfile(player int, p vision.ColorProfile) error {
	return s.profiles.Set(player, p)
}

// SetTolerance changes the spread applied by later calibrations.
func (s *Sequencer) SetTolerance(t int) error {
	return s.profiles.SetTolerance(t)
}

// Calibrate samples the latest frame at pt, in the coordinates of the
// frame as players see it, and tracks player by that color from now on.
func (s *Sequencer) Calibrate(player int, pt image.Point) (vision.ColorProfile, error) {
	var frame image.Image
	if s.lastFrame != nil {
		frame = s.lastFrame
	}

	p, err := s.profiles.Calibrate(player, frame, pt)
	if err != nil {
		return vision.ColorProfile{}, err
	}

	logger().Info("calibrated", "session", s.ID, "player", player, "lower", p.Lower.String(), "upper", p.Upper.String())

	return p, nil
}

// Preview returns the pixels of the latest frame that player's profile
// matches, ignoring the minimum blob area. It is nil before any frame.
func (s *Sequencer) Preview(player int) *image.Gray {
	if s.lastFrame == nil {
		return nil
	}

	return vision.Tracker{}.Mask(s.lastFrame, s.profiles.Profile(player))
}

// entered reports whether this is the first tick in the current state.
func (s *Sequencer) entered() bool {
	if s.state == s.previous {
		return false
	}

	logger().Debug("state changed", "session", s.ID, "from", s.previous.String(), "to", s.state.String())
	s.previous = s.state

	return true
}

// Tick advances the game by one frame. frame may be nil when no new image
// arrived; the returned overlay is then nil too. A quit signal ends the game
// before anything else happens.
func (s *Sequencer) Tick(frame image.Image, sig Signal) (Snapshot, *image.RGBA, error) {
	if sig == Quit || s.done {
		s.done = true

		return s.snapshot(0), nil, nil
	}

	s.Start()

	now := s.now()

	img := s.canvas(frame)
	ps := vision.Playspace{}
	if img != nil {
		s.lastFrame = img
		ps = vision.SplitPlayspace(img.Bounds())
		if ps.Side > 0 {
			s.side = ps.Side
		}
	}

	var remaining time.Duration

	switch s.state {
	case PreRound:
		if s.entered() {
			s.spec = s.catalog.Get(s.round)
			s.targetMask = nil

			logger().Info("round ready", "session", s.ID, "round", s.round, "shape", s.spec.Name)
		}

		if sig == Continue {
			s.state = Countdown
		}

	case Countdown:
		if s.entered() {
			s.countdownStart = now
		}

		remaining = s.cfg.Countdown - now.Sub(s.countdownStart)
		if remaining <= 0 {
			s.state = PlayingRound
		}

	case PlayingRound:
		if s.entered() {
			s.roundStart = now
			for _, p := range s.players {
				p.Stroke.Reset()
				p.Score = nil
				p.Accuracy = nil
			}
		}

		s.track(img, ps, now)

		remaining = s.spec.MaxDuration - now.Sub(s.roundStart)
		if remaining <= 0 {
			for _, p := range s.players {
				p.Stroke.Finish(now, s.roundStart, s.spec.MaxDuration)
			}

			s.state = PostRound
		}

	case PostRound:
		if s.entered() {
			s.postRoundStart = now
		}

		s.evaluate()

		remaining = s.cfg.PostRound - now.Sub(s.postRoundStart)
		if remaining <= 0 {
			s.saveRound()
		}

	case EndGame:
		if s.entered() {
			logger().Info("game over", "session", s.ID,
				"player1", s.players[0].Total, "player2", s.players[1].Total)
		}

		if sig == Replay {
			s.reset()
			s.Start()
		}

	default:
		return Snapshot{}, nil, fmt.Errorf("%w: %d", ErrUnknownState, int(s.state))
	}

	var overlay *image.RGBA
	if img != nil {
		// lastFrame keeps the camera pixels for calibration, so the HUD goes
		// on a copy.
		overlay = image.NewRGBA(img.Bounds())
		copy(overlay.Pix, img.Pix)

		if err := s.annotate(overlay, ps, remaining); err != nil {
			return Snapshot{}, nil, err
		}
	}

	return s.snapshot(remaining), overlay, nil
}

// canvas returns a private copy of frame to track in.
func (s *Sequencer) canvas(frame image.Image) *image.RGBA {
	if frame == nil || frame.Bounds().Empty() {
		return nil
	}

	if s.cfg.FlipImage {
		return vision.Mirror(frame)
	}

	b := frame.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(img, img.Bounds(), frame, b.Min, xdraw.Src)

	return img
}

// track locates both markers before feeding either stroke, so that both
// players see the same frame.
func (s *Sequencer) track(img *image.RGBA, ps vision.Playspace, now time.Time) {
	var tips [2]vision.Tip

	if img != nil && ps.Side > 0 {
		for i := range s.players {
			tips[i] = s.tracker.Locate(img.SubImage(ps.Region(i)), s.profiles.Profile(i))
		}
	}

	for i, p := range s.players {
		p.Stroke.Update(tips[i], now, s.roundStart)
	}
}

// drawingSide is the size of the square a player's stroke is drawn in.
func (s *Sequencer) drawingSide() int {
	if s.side > 0 {
		return s.side
	}

	return rounds.WorldSize
}

// evaluate scores each player once per round.
func (s *Sequencer) evaluate() {
	side := s.drawingSide()

	for _, p := range s.players {
		if p.scored() {
			continue
		}

		drawing := s.raster.DrawBinary(p.Stroke.Path(), side, side)
		res := s.scorer.Evaluate(s.spec.Target, drawing, s.spec.MaxDuration, p.Stroke.DrawDuration())

		p.Score = &res.Score
		p.Accuracy = &res.Accuracy

		logger().Info("round scored", "session", s.ID, "round", s.round, "player", p.Name,
			"score", res.Score, "accuracy", res.Accuracy)
	}
}

func (s *Sequencer) saveRound() {
	s.history = append(s.history, RoundResult{
		Round:       s.round,
		Shape:       s.spec.Name,
		Target:      s.spec.Target,
		MaxDuration: s.spec.MaxDuration,
		Side:        s.drawingSide(),
		Players:     [2]PlayerResult{resultOf(s.players[0]), resultOf(s.players[1])},
	})

	for _, p := range s.players {
		p.saveRound()
	}

	if s.round < s.cfg.Rounds {
		s.round++
		s.state = PreRound

		return
	}

	s.state = EndGame
}
