/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// State is a phase of the game.
type State int

const (
	Idle State = iota
	PreRound
	Countdown
	PlayingRound
	PostRound
	EndGame
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PreRound:
		return "pre-round"
	case Countdown:
		return "countdown"
	case PlayingRound:
		return "playing-round"
	case PostRound:
		return "post-round"
	case EndGame:
		return "end-game"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Signal is a player's request, sent alongside a frame.
type Signal int

const (
	None Signal = iota
	Continue
	Replay
	Quit
)

func (s Signal) String() string {
	switch s {
	case None:
		return "none"
	case Continue:
		return "continue"
	case Replay:
		return "replay"
	case Quit:
		return "quit"
	default:
		return fmt.Sprintf("Signal(%d)", int(s))
	}
}

// ParseSignal maps a message type to a signal. Unknown types are None.
func ParseSignal(s string) Signal {
	switch strings.ToLower(s) {
	case "continue":
		return Continue
	case "replay":
		return Replay
	case "quit":
		return Quit
	default:
		return None
	}
}
