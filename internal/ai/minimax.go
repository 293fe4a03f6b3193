// Package ai implements an exhaustive minimax searcher with alpha-beta
// pruning. Tic-Tac-Toe is small enough to search to terminal states on
// every call, so there is no depth limit and no heuristic evaluation.
package ai

import (
	"github.com/rs/zerolog/log"

	"github.com/avandren/tictactoe/internal/domain"
)

// thanks Wikipedia:
/**function alphabeta(node, depth, α, β, maximizingPlayer) is
    if node is a terminal node then
        return the value of node
    if maximizingPlayer then
        value := −∞
        for each child of node do
            value := max(value, alphabeta(child, depth − 1, α, β, FALSE))
            α := max(α, value)
            if α ≥ β then
                break (* β cut-off *)
        return value
    else
        value := +∞
        for each child of node do
            value := min(value, alphabeta(child, depth − 1, α, β, TRUE))
            β := min(β, value)
            if α ≥ β then
                break (* α cut-off *)
        return value
**/

// Terminal scores, from the root mover's perspective. scoreInfinity
// seeds alpha/beta and the running best; it only needs to sit outside
// the real score range, so 11 does (negating a max-int constant here
// would overflow).
const (
	winScore      = 10
	lossScore     = -10
	drawScore     = 0
	scoreInfinity = 11
)

// Searcher computes optimal moves. The zero value is ready to use; one
// Searcher may be reused across games. The search never mutates the
// engine: it reads the board once and explores copies.
type Searcher struct {
	disablePruning bool
}

// NewSearcher returns a Searcher with pruning enabled.
func NewSearcher() *Searcher { return &Searcher{} }

// SetPruningDisabled turns alpha-beta cutoffs off. Pruning is strictly
// an optimization; disabling it must not change any score or chosen
// move, which the tests rely on.
func (s *Searcher) SetPruningDisabled(d bool) { s.disablePruning = d }

// BestMove returns the optimal cell index for the side to move on e's
// live board. The second return is false when the AI is disabled for
// this engine or the game is already over. Among equally scored moves
// the lowest index wins: cells are scanned in ascending order and only
// a strictly greater score replaces the incumbent, which also makes the
// result deterministic for a fixed position.
func (s *Searcher) BestMove(e *domain.Engine) (int, bool) {
	if !e.AIEnabled() || e.IsOver() {
		return 0, false
	}
	board := e.Board()
	root := e.CurrentPlayer()

	bestScore := -scoreInfinity
	bestMove := -1
	for i := range board {
		if board[i] != domain.Empty {
			continue
		}
		child := board
		child[i] = root.Mark()
		score := s.minimax(child, root.Opponent(), root, -scoreInfinity, scoreInfinity)
		if score > bestScore {
			bestScore = score
			bestMove = i
		}
	}
	log.Debug().
		Stringer("player", root).
		Int("cell", bestMove).
		Int("score", bestScore).
		Msg("minimax search complete")
	return bestMove, true
}

// minimax scores a hypothetical position from the root mover's
// perspective: mover is the side to place next, root is the side the
// whole search is for. Maximizing plies are those where mover == root.
func (s *Searcher) minimax(b domain.Board, mover, root domain.Player, alpha, beta int) int {
	switch out, winner := domain.Classify(b); out {
	case domain.Won:
		if winner == root {
			return winScore
		}
		return lossScore
	case domain.Draw:
		return drawScore
	}

	if mover == root {
		best := -scoreInfinity
		for i := range b {
			if b[i] != domain.Empty {
				continue
			}
			child := b
			child[i] = mover.Mark()
			score := s.minimax(child, mover.Opponent(), root, alpha, beta)
			if score > best {
				best = score
			}
			if score > alpha {
				alpha = score
			}
			if beta <= alpha && !s.disablePruning {
				break
			}
		}
		return best
	}

	best := scoreInfinity
	for i := range b {
		if b[i] != domain.Empty {
			continue
		}
		child := b
		child[i] = mover.Mark()
		score := s.minimax(child, mover.Opponent(), root, alpha, beta)
		if score < best {
			best = score
		}
		if score < beta {
			beta = score
		}
		if beta <= alpha && !s.disablePruning {
			break
		}
	}
	return best
}
