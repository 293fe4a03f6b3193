package domain

import "errors"

// Player is one of the two sides, X or O. X always moves first.
type Player uint8

const (
	X Player = iota + 1
	O
)

// Opponent returns the other side.
func (p Player) Opponent() Player {
	if p == X {
		return O
	}
	return X
}

func (p Player) String() string {
	if p == X {
		return "X"
	}
	return "O"
}

// Cell is a board cell: Empty, or a player's mark. The non-empty values
// coincide with the Player values so that narrowing a marked cell back
// to its player is total.
type Cell uint8

const Empty Cell = 0

// Mark returns the cell holding p's mark.
func (p Player) Mark() Cell { return Cell(p) }

// Player narrows a cell to the player who marked it. The second return
// is false for an empty cell.
func (c Cell) Player() (Player, bool) {
	if c == Empty {
		return 0, false
	}
	return Player(c), true
}

func (c Cell) String() string {
	if p, ok := c.Player(); ok {
		return p.String()
	}
	return "."
}

// Board is a fixed 3x3 board stored row-major (index = row*3 + col).
// It is a value type: assigning or passing a Board copies it, so
// hypothetical boards explored by search never alias the live game.
type Board [9]Cell

// Outcome classifies a board: still in progress, won, or drawn.
type Outcome uint8

const (
	InProgress Outcome = iota
	Won
	Draw
)

func (o Outcome) String() string {
	switch o {
	case Won:
		return "won"
	case Draw:
		return "draw"
	default:
		return "in progress"
	}
}

// winningLines are the 8 triples that decide a game: 3 rows, 3 columns,
// 2 diagonals. Scanned in this fixed order.
var winningLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Classify returns the outcome of any board snapshot and, when the
// outcome is Won, the winning player. It is a pure function: the same
// routine scores the live game and every hypothetical position visited
// by search.
func Classify(b Board) (Outcome, Player) {
	for _, ln := range winningLines {
		p, ok := b[ln[0]].Player()
		if ok && b[ln[1]] == b[ln[0]] && b[ln[2]] == b[ln[0]] {
			return Won, p
		}
	}
	for _, c := range b {
		if c == Empty {
			return InProgress, 0
		}
	}
	return Draw, 0
}

// Errors returned by Engine.ApplyMove. These are the only two ways a
// move can fail; the engine itself never reaches an invalid state.
var (
	ErrOutOfRange = errors.New("cell index out of range")
	ErrOccupied   = errors.New("cell occupied")
)

// Engine holds the live state of one match: the board, whose turn it
// is, and whether the built-in AI opponent is enabled.
type Engine struct {
	board   Board
	current Player
	ai      bool
}

// New returns a fresh engine with an empty board, X to move, and the AI
// opponent enabled.
func New() *Engine { return NewWithAI(true) }

// NewWithAI is like New but sets the AI-enabled flag explicitly.
func NewWithAI(ai bool) *Engine {
	return &Engine{current: X, ai: ai}
}

// ApplyMove marks cell index (0..8) for the current player and flips
// the turn. It is the engine's only mutator. The index is range-checked
// before occupancy; on any error the engine is left unchanged. The
// engine does not police terminal boards: callers check IsOver before
// moving (a full board rejects everything with ErrOccupied anyway).
func (e *Engine) ApplyMove(index int) error {
	if index < 0 || index >= len(e.board) {
		return ErrOutOfRange
	}
	if e.board[index] != Empty {
		return ErrOccupied
	}
	e.board[index] = e.current.Mark()
	e.current = e.current.Opponent()
	return nil
}

// Classify reports the live board's outcome.
func (e *Engine) Classify() (Outcome, Player) {
	return Classify(e.board)
}

// IsOver reports whether the game has ended in a win or a draw.
func (e *Engine) IsOver() bool {
	o, _ := Classify(e.board)
	return o != InProgress
}

// Board returns a copy of the live board.
func (e *Engine) Board() Board { return e.board }

// CurrentPlayer returns the side to move.
func (e *Engine) CurrentPlayer() Player { return e.current }

// AIEnabled reports whether the AI opponent is enabled for this match.
func (e *Engine) AIEnabled() bool { return e.ai }
