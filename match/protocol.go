package match

import (
	"fmt"
	"strings"
	"time"

	"github.com/nkg114mc/c-gomoku-cli"
	"github.com/nkg114mc/c-gomoku-cli/engine"
	"github.com/nkg114mc/c-gomoku-cli/isolation"
)

// sendGameInfo emits the per-game INFO block Gomocup engines expect right
// after START/OK, grounded on gomocup_game_info_command.
func sendGameInfo(a *engine.Agent, eo gomoku.EngineOptions, rule gomoku.GameRule) {
	a.WriteLine(fmt.Sprintf("INFO rule %d", rule.WireCode()))

	if eo.TimeoutTurn > 0 {
		a.WriteLine(fmt.Sprintf("INFO timeout_turn %d", eo.TimeoutTurn.Milliseconds()))
	}
	a.WriteLine(fmt.Sprintf("INFO timeout_match %d", eo.TimeoutMatch.Milliseconds()))

	if eo.DepthLimit > 0 {
		a.WriteLine(fmt.Sprintf("INFO max_depth %d", eo.DepthLimit))
	}
	if eo.NodeLimit > 0 {
		a.WriteLine(fmt.Sprintf("INFO max_node %d", eo.NodeLimit))
	}
	a.WriteLine(fmt.Sprintf("INFO max_memory %d", eo.MemoryLimit))

	if eo.ThreadHint > 1 {
		a.WriteLine(fmt.Sprintf("INFO thread_num %d", eo.ThreadHint))
	}

	for _, opt := range eo.Options {
		if isolation.IsSandboxOption(opt) {
			continue
		}
		left, right, _ := strings.Cut(opt, "=")
		a.WriteLine(fmt.Sprintf("INFO %s %s", left, right))
	}
}

// sendTurnInfo emits the per-turn remaining-time INFO line.
func sendTurnInfo(a *engine.Agent, timeLeft time.Duration) {
	a.WriteLine(fmt.Sprintf("INFO time_left %d", timeLeft.Milliseconds()))
}

// sendBoard replays the full move history via BOARD...DONE, labeling the
// side that moved last as gomocup stone index 2 and the other side as 1,
// per send_board_command's colorToGomocupStoneIdx convention.
func sendBoard(a *engine.Agent, pos gomoku.Position) {
	history := pos.History()
	a.WriteLine("BOARD")

	lastColor := history[len(history)-1].Color
	for _, m := range history {
		idx := 1
		if m.Color == lastColor {
			idx = 2
		}
		x, y := gomoku.XY(m.Cell, pos.BoardSize())
		a.WriteLine(fmt.Sprintf("%d,%d,%d", x, y, idx))
	}
	a.WriteLine("DONE")
}

// computeTimeLeft applies increment-on-timeout-match-set semantics, or
// resets to NoTimeLimit when no match time control is configured — a
// direct port of compute_time_left, called once per ply.
func computeTimeLeft(eo gomoku.EngineOptions, timeLeft time.Duration) time.Duration {
	if eo.TimeoutMatch > 0 {
		if eo.Increment > 0 {
			return timeLeft + eo.Increment
		}
		return timeLeft
	}
	return NoTimeLimit
}
