// Package match runs a single game between two agents over the Gomocup
// wire protocol, applying time controls, adjudication rules, and sample
// recording, per spec.md §4.5. Grounded on original_source/src/game.cpp's
// Game::play().
package match

import (
	"time"

	"github.com/nkg114mc/c-gomoku-cli"
)

// NoTimeLimit stands in for "unlimited match time" — original_source sets
// timeLeft to INT32_MAX in this case; a duration this large is effectively
// infinite for a single game without risking time.Time overflow.
const NoTimeLimit = 1000 * time.Hour

// Config carries the tournament-wide rules a game is played under.
type Config struct {
	BoardSize      int
	Rule           gomoku.GameRule
	UseTURN        bool
	ForceDrawAfter int // 0 disables; adjudicate a draw after this many plies

	DrawCount int // consecutive low-score plies from both sides before adjudicating a draw
	DrawScore int

	ResignCount int // consecutive very-low-score plies from one side before adjudicating a resign
	ResignScore int

	Debug bool

	// SampleFreq is the probability (0..1) of recording each played
	// position as a training sample; 0 disables sampling entirely.
	SampleFreq float64
}
