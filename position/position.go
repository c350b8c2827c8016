// Package position implements the concrete board-state contract that
// gomoku.Position specifies opaquely. Grounded on
// original_source/src/position.cpp (five-in-a-row scan, forbidden-move
// detection, opening formats) and go-kgp/board.go (immutable-by-copy
// value semantics, dihedral Mirror/transform).
package position

import (
	"fmt"

	"github.com/nkg114mc/c-gomoku-cli"
)

// empty is the zero value for an unoccupied cell; Black/White are 0/1 so
// we reserve 2 for "empty".
const empty gomoku.Color = 2

// Board is a cheaply-copyable, immutable-in-transit Gomoku position.
type Board struct {
	size    int
	cells   []gomoku.Color // len == size*size
	history []gomoku.Move
	turn    gomoku.Color
	rule    gomoku.GameRule
}

// New returns an empty board of the given size with Black to move.
func New(size int, rule gomoku.GameRule) *Board {
	cells := make([]gomoku.Color, size*size)
	for i := range cells {
		cells[i] = empty
	}
	return &Board{size: size, cells: cells, turn: gomoku.Black, rule: rule}
}

var _ gomoku.Position = (*Board)(nil)
var _ gomoku.OpeningParser = (*Board)(nil)

func (b *Board) Turn() gomoku.Color   { return b.turn }
func (b *Board) MoveCount() int       { return len(b.history) }
func (b *Board) BoardSize() int       { return b.size }

func (b *Board) History() []gomoku.Move {
	out := make([]gomoku.Move, len(b.history))
	copy(out, b.history)
	return out
}

func (b *Board) at(c gomoku.Cell) gomoku.Color {
	return b.cells[c]
}

func (b *Board) inBounds(c gomoku.Cell) bool {
	return c >= 0 && int(c) < len(b.cells)
}

func (b *Board) IsLegal(m gomoku.Move) bool {
	if !b.inBounds(m.Cell) {
		return false
	}
	if m.Color != b.turn {
		return false
	}
	return b.at(m.Cell) == empty
}

// Apply returns a new Board with m played. Only valid when IsLegal(m).
func (b *Board) Apply(m gomoku.Move) gomoku.Position {
	next := &Board{
		size:    b.size,
		cells:   append([]gomoku.Color(nil), b.cells...),
		history: append([]gomoku.Move(nil), b.history...),
		turn:    b.turn.Opponent(),
		rule:    b.rule,
	}
	next.cells[m.Cell] = m.Color
	next.history = append(next.history, m)
	return next
}

func (b *Board) MovesLeft() int {
	n := 0
	for _, c := range b.cells {
		if c == empty {
			n++
		}
	}
	return n
}

// directions to scan for alignments: horizontal, vertical, both diagonals.
var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// runLength counts the contiguous same-colored run through cell in
// direction (dx,dy), counting cell itself.
func (b *Board) runLength(cell gomoku.Cell, dx, dy int, color gomoku.Color) int {
	x, y := gomoku.XY(cell, b.size)
	count := 1

	for _, sign := range [2]int{1, -1} {
		cx, cy := x+sign*dx, y+sign*dy
		for cx >= 0 && cx < b.size && cy >= 0 && cy < b.size {
			if b.at(gomoku.CellFromXY(cx, cy, b.size)) != color {
				break
			}
			count++
			cx += sign * dx
			cy += sign * dy
		}
	}
	return count
}

// IsTerminalWinByLastMover reports whether the most recent move produced
// a winning alignment for its mover.
func (b *Board) IsTerminalWinByLastMover(longOverlineAllowed bool) bool {
	if len(b.history) == 0 {
		return false
	}
	last := b.history[len(b.history)-1]
	for _, d := range directions {
		n := b.runLength(last.Cell, d[0], d[1], last.Color)
		if n == 5 {
			return true
		}
		if n > 5 && longOverlineAllowed {
			return true
		}
	}
	return false
}

func (b *Board) IsForbidden(m gomoku.Move) bool {
	if !b.rule.ForbidsPatterns(m.Color) {
		return false
	}
	return b.classifyForbidden(m.Cell, m.Color) != ForbiddenNone
}

func (b *Board) FormatMove(m gomoku.Move) string {
	if m.IsNone() {
		return "-1,-1"
	}
	x, y := gomoku.XY(m.Cell, b.size)
	return fmt.Sprintf("%d,%d", x, y)
}

func (b *Board) ParseMove(s string) (gomoku.Move, error) {
	var x, y int
	n, err := fmt.Sscanf(s, "%d,%d", &x, &y)
	if err != nil || n != 2 {
		return gomoku.NoMove, fmt.Errorf("position: malformed move %q", s)
	}
	if x < 0 || y < 0 || x >= b.size || y >= b.size {
		return gomoku.NoMove, fmt.Errorf("position: move %q out of bounds", s)
	}
	return gomoku.Move{Cell: gomoku.CellFromXY(x, y, b.size), Color: b.turn}, nil
}

// Copy returns a deep copy of b.
func (b *Board) Copy() *Board {
	return &Board{
		size:    b.size,
		cells:   append([]gomoku.Color(nil), b.cells...),
		history: append([]gomoku.Move(nil), b.history...),
		turn:    b.turn,
		rule:    b.rule,
	}
}
