package position

import "github.com/nkg114mc/c-gomoku-cli"

// forbidden.go ports original_source/src/position.cpp's Renju forbidden-move
// finder (isDoubleThree/isDoubleFour/isOverline and their isFour/isOpenFour/
// isOpenThree helpers) onto a scratch mutable copy of the board's cells.

type scratch struct {
	size  int
	cells []gomoku.Color
}

func (b *Board) scratchAt(pos gomoku.Cell) *scratch {
	return &scratch{size: b.size, cells: append([]gomoku.Color(nil), b.cells...)}
}

func (s *scratch) get(pos gomoku.Cell) gomoku.Color {
	if pos < 0 || int(pos) >= len(s.cells) {
		return empty // out of board reads as empty; original uses a walled border, we clip instead
	}
	return s.cells[pos]
}

func (s *scratch) set(pos gomoku.Cell, c gomoku.Color)  { s.cells[pos] = c }
func (s *scratch) clear(pos gomoku.Cell)                { s.cells[pos] = empty }

// step returns pos shifted by n steps of direction dir, or -1 if it would
// leave the board (which also makes get() report empty, matching the
// original's walled sentinel well enough for these bounded-radius scans).
func (s *scratch) step(pos gomoku.Cell, dir [2]int, n int) gomoku.Cell {
	x, y := gomoku.XY(pos, s.size)
	x += dir[0] * n
	y += dir[1] * n
	if x < 0 || x >= s.size || y < 0 || y >= s.size {
		return -1
	}
	return gomoku.CellFromXY(x, y, s.size)
}

func (s *scratch) isFiveDir(pos gomoku.Cell, piece gomoku.Color, dir [2]int) bool {
	if s.get(pos) != empty {
		return false
	}
	count := 1
	i := 1
	for ; i < 6; i++ {
		p := s.step(pos, dir, -i)
		if p != -1 && s.get(p) == piece {
			count++
		} else {
			break
		}
	}
	for j := 1; j < 7-i; j++ {
		p := s.step(pos, dir, j)
		if p != -1 && s.get(p) == piece {
			count++
		} else {
			break
		}
	}
	return count == 5
}

func (s *scratch) isFive(pos gomoku.Cell, piece gomoku.Color) bool {
	if s.get(pos) != empty {
		return false
	}
	for _, d := range directions {
		if s.isFiveDir(pos, piece, d) {
			return true
		}
	}
	return false
}

func (s *scratch) isOverline(pos gomoku.Cell, piece gomoku.Color) bool {
	if s.get(pos) != empty {
		return false
	}
	for _, dir := range directions {
		count := 1
		i := 1
		for ; i < 6; i++ {
			p := s.step(pos, dir, -i)
			if p != -1 && s.get(p) == piece {
				count++
			} else {
				break
			}
		}
		for j := 1; j < 7-i; j++ {
			p := s.step(pos, dir, j)
			if p != -1 && s.get(p) == piece {
				count++
			} else {
				break
			}
		}
		if count > 5 {
			return true
		}
	}
	return false
}

func (s *scratch) isFour(pos gomoku.Cell, piece gomoku.Color, dir [2]int) bool {
	if s.get(pos) != empty || s.isFive(pos, piece) {
		return false
	}
	if piece == gomoku.Black && s.isOverline(pos, gomoku.Black) {
		return false
	}

	s.set(pos, piece)
	defer s.clear(pos)

	four := false
	i := 1
	for ; i < 5; i++ {
		posi := s.step(pos, dir, -i)
		if posi != -1 && s.get(posi) == piece {
			continue
		}
		if posi != -1 && s.get(posi) == empty && s.isFiveDir(posi, piece, dir) {
			four = true
		}
		break
	}
	for j := 1; !four && j < 6-i; j++ {
		posi := s.step(pos, dir, j)
		if posi != -1 && s.get(posi) == piece {
			continue
		}
		if posi != -1 && s.get(posi) == empty && s.isFiveDir(posi, piece, dir) {
			four = true
		}
		break
	}
	return four
}

type openFourType int

const (
	openFourNone openFourType = iota
	openFourTrue
	openFourLong
)

func (s *scratch) isOpenFour(pos gomoku.Cell, piece gomoku.Color, dir [2]int) openFourType {
	if s.get(pos) != empty || s.isFive(pos, piece) {
		return openFourNone
	}
	if piece == gomoku.Black && s.isOverline(pos, gomoku.Black) {
		return openFourNone
	}

	s.set(pos, piece)
	defer s.clear(pos)

	count := 1
	five := 0
	i := 1
	for ; i < 5; i++ {
		posi := s.step(pos, dir, -i)
		if posi != -1 && s.get(posi) == piece {
			count++
			continue
		}
		if posi != -1 && s.get(posi) == empty && s.isFiveDir(posi, piece, dir) {
			five++
		}
		break
	}
	for j := 1; five > 0 && j < 6-i; j++ {
		posi := s.step(pos, dir, j)
		if posi != -1 && s.get(posi) == piece {
			count++
			continue
		}
		if posi != -1 && s.get(posi) == empty && s.isFiveDir(posi, piece, dir) {
			five++
		}
		break
	}

	if five != 2 {
		return openFourNone
	}
	if count == 4 {
		return openFourTrue
	}
	return openFourLong
}

func (s *scratch) isOpenThree(pos gomoku.Cell, piece gomoku.Color, dir [2]int) bool {
	if s.get(pos) != empty || s.isFive(pos, piece) {
		return false
	}
	if piece == gomoku.Black && s.isOverline(pos, gomoku.Black) {
		return false
	}

	s.set(pos, piece)
	defer s.clear(pos)

	openthree := false
	i := 1
	for ; i < 5; i++ {
		posi := s.step(pos, dir, -i)
		if posi != -1 && s.get(posi) == piece {
			continue
		}
		if posi != -1 && s.get(posi) == empty &&
			s.isOpenFour(posi, piece, dir) == openFourTrue &&
			!s.isDoubleFour(posi, piece) && !s.isDoubleThree(posi, piece) {
			openthree = true
		}
		break
	}
	for j := 1; !openthree && j < 6-i; j++ {
		posi := s.step(pos, dir, j)
		if posi != -1 && s.get(posi) == piece {
			continue
		}
		if posi != -1 && s.get(posi) == empty &&
			s.isOpenFour(posi, piece, dir) == openFourTrue &&
			!s.isDoubleFour(posi, piece) && !s.isDoubleThree(posi, piece) {
			openthree = true
		}
		break
	}
	return openthree
}

func (s *scratch) isDoubleFour(pos gomoku.Cell, piece gomoku.Color) bool {
	if s.get(pos) != empty || s.isFive(pos, piece) {
		return false
	}
	nFour := 0
	for _, d := range directions {
		switch s.isOpenFour(pos, piece, d) {
		case openFourLong:
			nFour += 2
		default:
			if s.isFour(pos, piece, d) {
				nFour++
			}
		}
		if nFour >= 2 {
			return true
		}
	}
	return false
}

func (s *scratch) isDoubleThree(pos gomoku.Cell, piece gomoku.Color) bool {
	if s.get(pos) != empty || s.isFive(pos, piece) {
		return false
	}
	nThree := 0
	for _, d := range directions {
		if s.isOpenThree(pos, piece, d) {
			nThree++
		}
		if nThree >= 2 {
			return true
		}
	}
	return false
}

// ForbiddenType classifies which Renju forbidden pattern, if any, a Black
// move at an otherwise-empty point would create.
type ForbiddenType int

const (
	ForbiddenNone ForbiddenType = iota
	ForbiddenDoubleThree
	ForbiddenDoubleFour
	ForbiddenOverline
)

// classifyForbidden reports which forbidden pattern, if any, playing piece
// (always Black under Renju) at pos would create on b's current position.
func (b *Board) classifyForbidden(pos gomoku.Cell, piece gomoku.Color) ForbiddenType {
	s := b.scratchAt(pos)
	switch {
	case s.isDoubleThree(pos, piece):
		return ForbiddenDoubleThree
	case s.isDoubleFour(pos, piece):
		return ForbiddenDoubleFour
	case s.isOverline(pos, piece):
		return ForbiddenOverline
	default:
		return ForbiddenNone
	}
}
