// Package engine holds the authoritative gomoku board state per room:
// stone placement legality, turn order, player cursors and AI move
// selection. The relay layer only talks to it through the Engine
// interface, so a different rules backend can be swapped in without
// touching room coordination.
package engine

// BoardSize is the edge length of the square board.
const BoardSize = 15

// Stone colors. Black always places first.
const (
	Black = 1
	White = 2
)

// Stone is a placed mark. Stones accumulate until a reset.
type Stone struct {
	Row   int
	Col   int
	Color int
}

// PlayerPos is a player's cursor position on the board.
type PlayerPos struct {
	ID  int
	Row int
	Col int
}

// State is a full read of one room at one instant.
type State struct {
	Players   []PlayerPos
	Stones    []Stone
	NextColor int // color allowed to place next, Black or White
}

// Engine is the rules boundary consumed by the relay layer. Calls are
// synchronous and complete on return; Place is the only operation that
// can fail, and it reports failure as false rather than an error.
type Engine interface {
	// Init creates the room state if absent. Safe to call on every join.
	Init(roomID int)

	// Move applies a relative cursor displacement for a player, creating
	// the cursor at the board center on first touch, and returns the
	// resulting absolute position.
	Move(roomID, playerID, dx, dy int) (row, col int)

	// Place attempts to put a stone at (row, col). It fails if the cell
	// is occupied, the color is out of turn, or the cell is off the board.
	Place(roomID, row, col, color int) bool

	// Reset clears all stones and hands the turn back to black. Player
	// cursors are re-centered; membership is untouched.
	Reset(roomID int)

	// AIMove returns a suggested move for the given color. It does not
	// place the stone.
	AIMove(roomID, color int) (row, col int)

	// Snapshot reads the full current room state.
	Snapshot(roomID int) State

	// Destroy drops the room state entirely. Called when the last member
	// leaves so a later join starts from a fresh board.
	Destroy(roomID int)
}
