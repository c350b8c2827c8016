package position

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nkg114mc/c-gomoku-cli"
)

// ParseOpening replays an opening string onto an empty board of b's size
// and rule, alternating colors starting with Black. Grounded on
// original_source/src/position.cpp's from_opening_str/to_opening_str.
func (b *Board) ParseOpening(s string, format gomoku.OpeningFormat) (gomoku.Position, error) {
	switch format {
	case gomoku.OpeningOffset:
		return b.parseOpeningOffset(s)
	case gomoku.OpeningPosition:
		return b.parseOpeningPosition(s)
	default:
		return nil, fmt.Errorf("position: unknown opening format %d", format)
	}
}

// parseOpeningOffset handles the comma/space-mixed offset format used by
// original_source's tokenizer, e.g. "-1,-1 0,0" or "-1 -1, 0 0".
func (b *Board) parseOpeningOffset(s string) (gomoku.Position, error) {
	half := b.size / 2
	cur := New(b.size, b.rule)

	repl := strings.NewReplacer(",", " ")
	fields := strings.Fields(repl.Replace(s))
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("position: malformed opening string %q", s)
	}
	for i := 0; i < len(fields); i += 2 {
		dx, err1 := strconv.Atoi(fields[i])
		dy, err2 := strconv.Atoi(fields[i+1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("position: malformed opening string %q", s)
		}
		x, y := dx+half, dy+half
		if !cur.isInBounds(x, y) {
			return nil, fmt.Errorf("position: opening offset (%d,%d) out of bounds", dx, dy)
		}
		mv := gomoku.Move{Cell: gomoku.CellFromXY(x, y, cur.size), Color: cur.turn}
		cur = cur.Apply(mv).(*Board)
	}
	return cur, nil
}

// parseOpeningPosition parses runs of <letter><number>, e.g. "h8i9".
func (b *Board) parseOpeningPosition(s string) (gomoku.Position, error) {
	cur := New(b.size, b.rule)

	i := 0
	for i < len(s) {
		if s[i] == ' ' || s[i] == ',' {
			i++
			continue
		}
		col := s[i]
		if col < 'a' || col > 'z' {
			return nil, fmt.Errorf("position: malformed opening string %q", s)
		}
		x := int(col - 'a')
		i++

		j := i
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == i {
			return nil, fmt.Errorf("position: malformed opening string %q", s)
		}
		row, err := strconv.Atoi(s[i:j])
		if err != nil {
			return nil, fmt.Errorf("position: malformed opening string %q", s)
		}
		y := row - 1
		i = j

		if !cur.isInBounds(x, y) {
			return nil, fmt.Errorf("position: opening position %c%d out of bounds", col, row)
		}
		mv := gomoku.Move{Cell: gomoku.CellFromXY(x, y, cur.size), Color: cur.turn}
		cur = cur.Apply(mv).(*Board)
	}
	return cur, nil
}

// FormatOpening renders b's history in the requested format.
func (b *Board) FormatOpening(format gomoku.OpeningFormat) (string, error) {
	switch format {
	case gomoku.OpeningOffset:
		half := b.size / 2
		var sb strings.Builder
		for i, m := range b.history {
			x, y := gomoku.XY(m.Cell, b.size)
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%d,%d", x-half, y-half)
		}
		return sb.String(), nil
	case gomoku.OpeningPosition:
		var sb strings.Builder
		for _, m := range b.history {
			x, y := gomoku.XY(m.Cell, b.size)
			fmt.Fprintf(&sb, "%c%d", 'a'+x, y+1)
		}
		return sb.String(), nil
	default:
		return "", fmt.Errorf("position: unknown opening format %d", format)
	}
}

func (b *Board) isInBounds(x, y int) bool {
	return x >= 0 && x < b.size && y >= 0 && y < b.size
}
