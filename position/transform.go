package position

import "github.com/nkg114mc/c-gomoku-cli"

// transformXY maps (x, y) on a size x size board through one of the eight
// elements of the dihedral group, grounded on go-kgp/board.go's Mirror.
func transformXY(sym gomoku.Symmetry, x, y, size int) (int, int) {
	last := size - 1
	switch sym {
	case gomoku.Identity:
		return x, y
	case gomoku.Rotate90:
		return y, last - x
	case gomoku.Rotate180:
		return last - x, last - y
	case gomoku.Rotate270:
		return last - y, x
	case gomoku.FlipHorizontal:
		return last - x, y
	case gomoku.FlipVertical:
		return x, last - y
	case gomoku.FlipDiagonal:
		return y, x
	case gomoku.FlipAntiDiagonal:
		return last - y, last - x
	default:
		return x, y
	}
}

// Transform returns a copy of b with every move (history included) mapped
// through sym. The match runner and supervisor do not call it: openings
// are always played as parsed, with no symmetry applied.
func (b *Board) Transform(sym gomoku.Symmetry) gomoku.Position {
	next := New(b.size, b.rule)
	next.turn = b.turn
	for _, m := range b.history {
		x, y := gomoku.XY(m.Cell, b.size)
		tx, ty := transformXY(sym, x, y, b.size)
		tc := gomoku.CellFromXY(tx, ty, b.size)
		next.cells[tc] = m.Color
		next.history = append(next.history, gomoku.Move{Cell: tc, Color: m.Color})
	}
	return next
}
