/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/drawduel/internal/game"
	"github.com/Seednode/drawduel/internal/score"
	"github.com/Seednode/drawduel/internal/stroke"
)

type Config struct {
	bind           string
	mdns           bool
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool

	countdown     time.Duration
	drawTimeout   time.Duration
	flipImage     bool
	gapAfter      time.Duration
	harshness     float64
	minArea       float64
	postRound     time.Duration
	roundDuration time.Duration
	rounds        int
	scoreMode     string
	strokeFilter  string
	strokeWidth   float64

	game game.Config
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}

	mode, err := score.ParseMode(c.scoreMode)
	if err != nil {
		return fmt.Errorf("invalid --score-mode: %w", err)
	}

	filter, err := stroke.ParseFilter(c.strokeFilter)
	if err != nil {
		return fmt.Errorf("invalid --stroke-filter: %w", err)
	}

	c.game = game.Config{
		FlipImage:     c.flipImage,
		Countdown:     c.countdown,
		RoundDuration: c.roundDuration,
		PostRound:     c.postRound,
		Rounds:        c.rounds,
		DrawTimeout:   c.drawTimeout,
		GapAfter:      c.gapAfter,
		Harshness:     c.harshness,
		MinArea:       c.minArea,
		ScoreMode:     mode,
		StrokeFilter:  filter,
		StrokeWidth:   c.strokeWidth,
	}

	return c.game.Validate()
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("DRAWDUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "drawduel",
		Short:         "A two player drawing duel, played by waving colored markers at a webcam.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	defaults := game.DefaultConfig()

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: DRAWDUEL_BIND)")
	fs.BoolVar(&cfg.mdns, "mdns", false, "advertise the server on the local network over mDNS (env: DRAWDUEL_MDNS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: DRAWDUEL_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: DRAWDUEL_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: DRAWDUEL_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game sessions are ended (env: DRAWDUEL_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: DRAWDUEL_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: DRAWDUEL_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: DRAWDUEL_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: DRAWDUEL_VERSION)")

	fs.DurationVar(&cfg.countdown, "countdown", defaults.Countdown, "countdown before each round (env: DRAWDUEL_COUNTDOWN)")
	fs.DurationVar(&cfg.drawTimeout, "draw-timeout", defaults.DrawTimeout, "time a marker may go missing before its stroke ends (env: DRAWDUEL_DRAW_TIMEOUT)")
	fs.BoolVar(&cfg.flipImage, "flip-image", defaults.FlipImage, "mirror camera frames horizontally (env: DRAWDUEL_FLIP_IMAGE)")
	fs.DurationVar(&cfg.gapAfter, "gap-after", defaults.GapAfter, "time a marker may go missing before its stroke is broken (env: DRAWDUEL_GAP_AFTER)")
	fs.Float64Var(&cfg.harshness, "harshness", defaults.Harshness, "scoring harshness; above 1 penalizes, below 1 forgives (env: DRAWDUEL_HARSHNESS)")
	fs.Float64Var(&cfg.minArea, "min-area", defaults.MinArea, "smallest blob area, in square pixels, taken for a marker (env: DRAWDUEL_MIN_AREA)")
	fs.DurationVar(&cfg.postRound, "post-round", defaults.PostRound, "time scores are shown after each round (env: DRAWDUEL_POST_ROUND)")
	fs.DurationVar(&cfg.roundDuration, "round-duration", defaults.RoundDuration, "length of every round; 0 uses each shape's own (env: DRAWDUEL_ROUND_DURATION)")
	fs.IntVar(&cfg.rounds, "rounds", defaults.Rounds, "number of rounds per game (env: DRAWDUEL_ROUNDS)")
	fs.StringVar(&cfg.scoreMode, "score-mode", defaults.ScoreMode.String(), "scoring mode: accuracy or timed (env: DRAWDUEL_SCORE_MODE)")
	fs.StringVar(&cfg.strokeFilter, "stroke-filter", defaults.StrokeFilter.String(), "stroke filter: smooth, min-step or none (env: DRAWDUEL_STROKE_FILTER)")
	fs.Float64Var(&cfg.strokeWidth, "stroke-width", defaults.StrokeWidth, "stroke thickness in pixels (env: DRAWDUEL_STROKE_WIDTH)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("drawduel v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
