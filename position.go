package gomoku

// Symmetry is one of the eight dihedral transforms of a square board.
type Symmetry uint8

const (
	Identity Symmetry = iota
	Rotate90
	Rotate180
	Rotate270
	FlipHorizontal
	FlipVertical
	FlipDiagonal
	FlipAntiDiagonal
)

// OpeningFormat selects how an opening string is parsed/formatted.
type OpeningFormat uint8

const (
	// OpeningOffset: signed dx,dy pairs relative to the board center.
	OpeningOffset OpeningFormat = iota
	// OpeningPosition: runs of <letter><number>, e.g. "h8i9".
	OpeningPosition
)

// Position is the opaque board-state contract the concurrency engine
// depends on. The concrete implementation lives in package position;
// nothing outside that package should need to know its internal layout.
type Position interface {
	// Turn returns the color to move.
	Turn() Color
	// MoveCount returns the number of stones played so far.
	MoveCount() int
	// History returns the moves played to reach this position, in order.
	History() []Move
	// Apply returns a new Position after playing move m. Only defined
	// when IsLegal(m).
	Apply(m Move) Position
	// IsLegal reports whether m may be played in this position.
	IsLegal(m Move) bool
	// IsTerminalWinByLastMover reports whether the last move produced a
	// winning alignment for its mover, honoring longOverlineAllowed.
	IsTerminalWinByLastMover(longOverlineAllowed bool) bool
	// IsForbidden reports whether m is a forbidden pattern for its color
	// (Renju double-three/double-four/overline at the candidate cell).
	IsForbidden(m Move) bool
	// BoardSize returns the board's side length.
	BoardSize() int
	// MovesLeft returns the number of empty cells.
	MovesLeft() int
	// ParseMove parses a wire-format move string ("x,y").
	ParseMove(s string) (Move, error)
	// FormatMove formats a move to wire format.
	FormatMove(m Move) string
	// Transform returns a copy of the position under the given symmetry.
	Transform(sym Symmetry) Position
}

// OpeningParser is implemented by concrete positions that can seed
// themselves from an opening string.
type OpeningParser interface {
	Position
	// ParseOpening replays an opening string onto an empty board of this
	// position's size, returning the resulting position.
	ParseOpening(s string, format OpeningFormat) (Position, error)
	// FormatOpening renders this position's history as an opening string.
	FormatOpening(format OpeningFormat) (string, error)
}
