package match

import (
	"strconv"
	"time"

	"github.com/nkg114mc/c-gomoku-cli"
	"github.com/nkg114mc/c-gomoku-cli/engine"
	"github.com/nkg114mc/c-gomoku-cli/sample"
)

// Report summarizes a finished game, relative to job.AgentIDs[0].
type Report struct {
	Outcome gomoku.Outcome
	State   gomoku.TerminalState
	Reason  string
	Plies   int
	Samples []sample.Sample
	Final   gomoku.Position
}

// splitMix64 is the same generator opening.Source uses to draw shuffle
// permutations, grounded on original_source/src/util.cpp's prng().
func splitMix64(state *uint64) uint64 {
	*state += 0x9e3779b97f4a7c15
	z := *state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func cellsOf(moves []gomoku.Move) []gomoku.Cell {
	out := make([]gomoku.Cell, len(moves))
	for i, m := range moves {
		out[i] = m.Cell
	}
	return out
}

// Play runs one game to completion between agents[0] and agents[1], seated
// according to job.Reverse (false: agents[0] is Black), starting from
// start (an empty board or a loaded opening). sampleSeed, if non-nil, is
// mutated in place and used to gate sample recording at cfg.SampleFreq.
// Grounded on original_source/src/game.cpp's Game::play().
func Play(cfg Config, opts [2]gomoku.EngineOptions, agents [2]*engine.Agent, start gomoku.Position, reverse bool, sampleSeed *uint64) Report {
	blackSeat, whiteSeat := 0, 1
	if reverse {
		blackSeat, whiteSeat = 1, 0
	}
	seatOf := func(c gomoku.Color) int {
		if c == gomoku.Black {
			return blackSeat
		}
		return whiteSeat
	}

	for ei := 0; ei < 2; ei++ {
		agents[ei].WriteLine("START " + strconv.Itoa(cfg.BoardSize))
		if !agents[ei].WaitForOK() {
			return Report{Outcome: outcomeForLoser(ei), State: stateFor(agents[ei]), Reason: gomoku.StateCrashed.String()}
		}
		sendGameInfo(agents[ei], opts[ei], cfg.Rule)
	}

	pos := start
	var canUseTurn [2]bool
	var lastMove gomoku.Move
	timeLeft := [2]time.Duration{opts[0].TimeoutMatch, opts[1].TimeoutMatch}
	for i := range timeLeft {
		if timeLeft[i] <= 0 {
			timeLeft[i] = NoTimeLimit
		}
	}

	var drawPlyCount int
	var resignCount [2]int
	var samples []sample.Sample
	state := gomoku.StateNone
	var loserSeat int

	for {
		if pos.MovesLeft() == 0 {
			state = gomoku.StateInsufficientSpace
			break
		}
		if cfg.ForceDrawAfter > 0 && pos.MoveCount() >= cfg.ForceDrawAfter {
			state = gomoku.StateDrawAdjudication
			break
		}

		turnColor := pos.Turn()
		seat := seatOf(turnColor)
		agent := agents[seat]

		timeLeft[seat] = computeTimeLeft(opts[seat], timeLeft[seat])
		sendTurnInfo(agent, timeLeft[seat])

		if !canUseTurn[seat] {
			if pos.MoveCount() == 0 {
				agent.WriteLine("BEGIN")
			} else {
				sendBoard(agent, pos)
			}
			canUseTurn[seat] = true
		} else {
			agent.WriteLine("TURN " + pos.FormatMove(lastMove))
		}

		moveStr, info, newTimeLeft, ok := agent.BestMove(timeLeft[seat], opts[seat].TimeoutTurn, pos.MoveCount())
		timeLeft[seat] = newTimeLeft

		if !ok {
			loserSeat = seat
			if agent.IsCrashed() {
				state = gomoku.StateCrashed
			} else {
				state = gomoku.StateTimeLoss
			}
			break
		}

		move, err := pos.ParseMove(moveStr)
		if err != nil || !pos.IsLegal(move) {
			loserSeat = seat
			state = gomoku.StateIllegalMove
			break
		}

		if pos.IsForbidden(move) {
			loserSeat = seat
			state = gomoku.StateForbiddenMove
			break
		}

		if cfg.SampleFreq > 0 && sampleSeed != nil {
			const scale = float64(1 << 53)
			r := float64(splitMix64(sampleSeed)>>11) / scale
			if r <= cfg.SampleFreq {
				samples = append(samples, sample.Sample{
					BoardSize: cfg.BoardSize,
					History:   cellsOf(pos.History()),
					Move:      move.Cell,
				})
			}
		}

		next := pos.Apply(move)
		lastMove = move
		pos = next

		if pos.IsTerminalWinByLastMover(cfg.Rule.AllowsOverline(turnColor)) {
			loserSeat = seatOf(pos.Turn())
			state = gomoku.StateFiveConnect
			break
		}

		if cfg.DrawCount > 0 {
			if absInt(info.Score) <= cfg.DrawScore {
				drawPlyCount++
				if drawPlyCount >= 2*cfg.DrawCount {
					state = gomoku.StateDrawAdjudication
					break
				}
			} else {
				drawPlyCount = 0
			}
		}

		if cfg.ResignCount > 0 {
			if info.Score <= -cfg.ResignScore {
				resignCount[seat]++
				if resignCount[seat] >= cfg.ResignCount {
					loserSeat = seat
					state = gomoku.StateResign
					break
				}
			} else {
				resignCount[seat] = 0
			}
		}
	}

	var wpov gomoku.Outcome
	if state.IsDraw() {
		wpov = gomoku.Draw
	} else if loserSeat == blackSeat {
		wpov = gomoku.Loss // from Black's point of view
	} else {
		wpov = gomoku.Win
	}

	// Discard samples entirely for outcomes that don't reflect the
	// engines' own play quality, matching original_source's Sample
	// discard rule for TimeLoss/Crashed/IllegalMove.
	switch state {
	case gomoku.StateTimeLoss, gomoku.StateCrashed, gomoku.StateIllegalMove:
		samples = nil
	default:
		for i := range samples {
			mover := gomoku.Black
			if len(samples[i].History)%2 == 1 {
				mover = gomoku.White
			}
			if mover == gomoku.White {
				samples[i].Result = wpov.Opponent()
			} else {
				samples[i].Result = wpov
			}
		}
	}

	outcome := blackPovToSeat0(wpov, blackSeat)
	return Report{
		Outcome: outcome,
		State:   state,
		Reason:  state.String(),
		Plies:   pos.MoveCount(),
		Samples: samples,
		Final:   pos,
	}
}

// blackPovToSeat0 reorients a Black-point-of-view outcome to be relative
// to seat 0 (job.AgentIDs[0]).
func blackPovToSeat0(wpov gomoku.Outcome, blackSeat int) gomoku.Outcome {
	if blackSeat == 0 {
		return wpov
	}
	return wpov.Opponent()
}

func outcomeForLoser(loserSeat int) gomoku.Outcome {
	if loserSeat == 0 {
		return gomoku.Loss
	}
	return gomoku.Win
}

func stateFor(a *engine.Agent) gomoku.TerminalState {
	if a.IsCrashed() {
		return gomoku.StateCrashed
	}
	return gomoku.StateTimeLoss
}
