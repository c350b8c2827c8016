package position

import (
	"testing"

	"github.com/nkg114mc/c-gomoku-cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func play(t *testing.T, b *Board, xs, ys []int) *Board {
	t.Helper()
	require.Equal(t, len(xs), len(ys))
	cur := b
	for i := range xs {
		mv := gomoku.Move{Cell: gomoku.CellFromXY(xs[i], ys[i], cur.size), Color: cur.turn}
		require.True(t, cur.IsLegal(mv), "move %d,%d illegal at ply %d", xs[i], ys[i], i)
		cur = cur.Apply(mv).(*Board)
	}
	return cur
}

func TestHorizontalFiveWins(t *testing.T) {
	b := New(15, gomoku.FiveOrMore)
	// Black plays a horizontal five; White plays elsewhere.
	b = play(t, b, []int{0, 0, 1, 1, 2, 2, 3, 3, 4}, []int{0, 5, 0, 5, 0, 5, 0, 5, 0})
	assert.True(t, b.IsTerminalWinByLastMover(true))
}

func TestNoWinBeforeFive(t *testing.T) {
	b := New(15, gomoku.FiveOrMore)
	b = play(t, b, []int{0, 0, 1, 1, 2, 2}, []int{0, 5, 0, 5, 0, 5})
	assert.False(t, b.IsTerminalWinByLastMover(true))
}

func TestExactFiveRejectsOverline(t *testing.T) {
	b := New(15, gomoku.ExactFive)
	// Black stones at (0..5,0) form a run of six; last move at x=5.
	b = play(t, b, []int{0, 10, 1, 10, 2, 10, 3, 10, 4, 10, 5}, []int{0, 0, 0, 1, 0, 2, 0, 3, 0, 4, 0})
	assert.False(t, b.IsTerminalWinByLastMover(gomoku.ExactFive.AllowsOverline(gomoku.Black)))
}

func TestFiveOrMoreAcceptsOverline(t *testing.T) {
	b := New(15, gomoku.FiveOrMore)
	b = play(t, b, []int{0, 10, 1, 10, 2, 10, 3, 10, 4, 10, 5}, []int{0, 0, 0, 1, 0, 2, 0, 3, 0, 4, 0})
	assert.True(t, b.IsTerminalWinByLastMover(gomoku.FiveOrMore.AllowsOverline(gomoku.Black)))
}

func TestMoveFormatRoundTrip(t *testing.T) {
	b := New(15, gomoku.FiveOrMore)
	mv := gomoku.Move{Cell: gomoku.CellFromXY(3, 7, 15), Color: gomoku.Black}
	s := b.FormatMove(mv)
	assert.Equal(t, "3,7", s)

	parsed, err := b.ParseMove(s)
	require.NoError(t, err)
	assert.Equal(t, mv.Cell, parsed.Cell)
}

func TestParseMoveRejectsOutOfBounds(t *testing.T) {
	b := New(15, gomoku.FiveOrMore)
	_, err := b.ParseMove("15,0")
	assert.Error(t, err)
	_, err = b.ParseMove("garbage")
	assert.Error(t, err)
}

func TestTransformIdentityIsNoop(t *testing.T) {
	b := New(15, gomoku.FiveOrMore)
	b = play(t, b, []int{3, 4}, []int{5, 6})
	same := b.Transform(gomoku.Identity).(*Board)
	assert.Equal(t, b.History(), same.History())
}

// Rotate90 four times returns to the original board.
func TestTransformRotate90x4IsIdentity(t *testing.T) {
	b := New(15, gomoku.FiveOrMore)
	b = play(t, b, []int{3, 11, 2}, []int{4, 12, 0})

	cur := gomoku.Position(b)
	for i := 0; i < 4; i++ {
		cur = cur.Transform(gomoku.Rotate90)
	}
	assert.ElementsMatch(t, b.History(), cur.(*Board).History())
}

// Each self-inverse reflection applied twice returns to the original board.
func TestTransformReflectionsAreInvolutions(t *testing.T) {
	syms := []gomoku.Symmetry{
		gomoku.Rotate180,
		gomoku.FlipHorizontal,
		gomoku.FlipVertical,
		gomoku.FlipDiagonal,
		gomoku.FlipAntiDiagonal,
	}
	for _, sym := range syms {
		b := New(15, gomoku.FiveOrMore)
		b = play(t, b, []int{3, 11, 2}, []int{4, 12, 0})

		twice := b.Transform(sym).Transform(sym).(*Board)
		assert.ElementsMatch(t, b.History(), twice.History(), "symmetry %v is not an involution", sym)
	}
}

func TestOpeningOffsetRoundTrip(t *testing.T) {
	b := New(15, gomoku.FiveOrMore)
	pos, err := b.ParseOpening("0,0 1,1 -1,-1", gomoku.OpeningOffset)
	require.NoError(t, err)
	board := pos.(*Board)
	assert.Equal(t, 3, board.MoveCount())

	s, err := board.FormatOpening(gomoku.OpeningOffset)
	require.NoError(t, err)

	reparsed, err := b.ParseOpening(s, gomoku.OpeningOffset)
	require.NoError(t, err)
	assert.Equal(t, board.History(), reparsed.(*Board).History())
}

func TestOpeningPositionRoundTrip(t *testing.T) {
	b := New(15, gomoku.FiveOrMore)
	pos, err := b.ParseOpening("h8i9", gomoku.OpeningPosition)
	require.NoError(t, err)
	board := pos.(*Board)
	require.Equal(t, 2, board.MoveCount())

	s, err := board.FormatOpening(gomoku.OpeningPosition)
	require.NoError(t, err)
	assert.Equal(t, "h8i9", s)
}

func TestRenjuForbidsDoubleThree(t *testing.T) {
	b := New(15, gomoku.Renju)
	// Black stones at (7,5),(7,6) and (5,7),(6,7); White plays far away.
	// A Black stone at (7,7) makes two open threes at once, a vertical
	// and a horizontal one.
	b = play(t, b,
		[]int{7, 0, 7, 2, 5, 4, 6, 0},
		[]int{5, 0, 6, 0, 7, 0, 7, 14},
	)
	mv := gomoku.Move{Cell: gomoku.CellFromXY(7, 7, b.size), Color: gomoku.Black}
	assert.True(t, b.IsForbidden(mv))
}

func TestGameRuleForbidsPatternsOnlyForRenjuBlack(t *testing.T) {
	assert.False(t, gomoku.FiveOrMore.ForbidsPatterns(gomoku.Black))
	assert.False(t, gomoku.Renju.ForbidsPatterns(gomoku.White))
	assert.True(t, gomoku.Renju.ForbidsPatterns(gomoku.Black))
}
