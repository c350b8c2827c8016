package match

import (
	"fmt"
	"strings"
	"time"

	"github.com/nkg114mc/c-gomoku-cli"
)

// Transcript carries everything ExportPGN/ExportSGF need beyond the
// Report itself: the two names in Black/White seating order, and the
// final position (whose History() is the full move list).
type Transcript struct {
	Round, Game int
	BlackName   string
	WhiteName   string
	Rule        gomoku.GameRule
	Final       gomoku.Position
	Report      Report
	When        time.Time
}

// pgnResultTag returns the PGN-style result string from White's point of
// view, matching original_source's ResultTxt convention.
func pgnResultTag(seatOutcome gomoku.Outcome, blackSeat int) string {
	wpov := seatOutcome
	if blackSeat != 0 {
		wpov = wpov.Opponent()
	}
	switch wpov {
	case gomoku.Win:
		return "0-1"
	case gomoku.Loss:
		return "1-0"
	default:
		return "1/2-1/2"
	}
}

func moveToken(pos gomoku.Position, m gomoku.Move) string {
	return pos.FormatMove(m)
}

// ExportPGN renders t as a PGN-style game record. Grounded on
// original_source/src/game.cpp's Game::export_pgn, with the move text
// replaced by the actual coordinate sequence — the original emits a
// fixed placeholder move list here, which does not carry over.
func ExportPGN(t Transcript) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Event \"%d.%d\"]\n", t.Round+1, t.Game+1)
	fmt.Fprintf(&b, "[Date \"%s\"]\n", t.When.Format("2006.01.02 15:04:05"))
	fmt.Fprintf(&b, "[Black \"%s\"]\n", t.BlackName)
	fmt.Fprintf(&b, "[White \"%s\"]\n", t.WhiteName)
	fmt.Fprintf(&b, "[Rule \"%s\"]\n", t.Rule)

	result := pgnResultTag(t.Report.Outcome, 0)
	fmt.Fprintf(&b, "[Result \"%s\"]\n", result)
	fmt.Fprintf(&b, "[Termination \"%s\"]\n", t.Report.Reason)
	fmt.Fprintf(&b, "[PlyCount \"%d\"]\n\n", t.Report.Plies)

	history := t.Final.History()
	for i, m := range history {
		if i%2 == 0 {
			fmt.Fprintf(&b, "%d. ", i/2+1)
		}
		fmt.Fprintf(&b, "%s ", moveToken(t.Final, m))
	}
	b.WriteString(result)
	b.WriteString("\n\n")
	return b.String()
}

func sgfResultTag(seatOutcome gomoku.Outcome, blackSeat int) string {
	wpov := seatOutcome
	if blackSeat != 0 {
		wpov = wpov.Opponent()
	}
	switch wpov {
	case gomoku.Win:
		return "W+1"
	case gomoku.Loss:
		return "B+1"
	default:
		return "0"
	}
}

// ExportSGF renders t as an SGF record with FF[4]GM[4] (generic game)
// headers. Grounded on original_source/src/game.cpp's Game::export_sgf.
func ExportSGF(t Transcript) string {
	var b strings.Builder
	b.WriteString("(;FF[4]GM[4]")
	fmt.Fprintf(&b, "EV[%s x %s]", t.BlackName, t.WhiteName)
	fmt.Fprintf(&b, "DT[%s]", t.When.Format("2006.01.02 15:04:05"))
	fmt.Fprintf(&b, "RO[%d.%d]", t.Round+1, t.Game+1)
	fmt.Fprintf(&b, "RU[%d]", t.Rule.WireCode())
	fmt.Fprintf(&b, "SZ[%d]", t.Final.BoardSize())
	fmt.Fprintf(&b, "PB[%s]", t.BlackName)
	fmt.Fprintf(&b, "PW[%s]", t.WhiteName)
	fmt.Fprintf(&b, "RE[%s]", sgfResultTag(t.Report.Outcome, 0))
	fmt.Fprintf(&b, "TE[%s]", t.Report.Reason)
	b.WriteByte('\n')

	const movesPerLine = 8
	history := t.Final.History()
	for i, m := range history {
		tag := "B"
		if m.Color == gomoku.White {
			tag = "W"
		}
		x, y := gomoku.XY(m.Cell, t.Final.BoardSize())
		fmt.Fprintf(&b, ";%s[%c%c]", tag, byte('a'+x), byte('a'+y))
		if (i+1)%movesPerLine == 0 {
			b.WriteByte('\n')
		}
	}
	b.WriteString(")\n")
	return b.String()
}
