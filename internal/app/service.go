package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avandren/tictactoe/internal/ai"
	"github.com/avandren/tictactoe/internal/domain"
)

// Errors exposed by the service layer.
var (
	ErrNotFound     = errors.New("game not found")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrNotAPlayer   = errors.New("not a player")
	ErrGameFinished = errors.New("game already finished")
)

// aiSeatID occupies the O seat in games against the computer.
const aiSeatID = "ai"

// GameState is a point-in-time snapshot of one game, safe to hand out
// and render without holding the service lock.
type GameState struct {
	ID      string
	Board   domain.Board
	Turn    domain.Player
	Outcome domain.Outcome
	Winner  domain.Player
	VsAI    bool
	X       string
	O       string
	Created time.Time
	Updated time.Time
}

// Over reports whether the snapshot shows a finished game.
func (gs GameState) Over() bool { return gs.Outcome != domain.InProgress }

// game is the live, mutable record behind a GameState snapshot.
type game struct {
	id      string
	engine  *domain.Engine
	vsAI    bool
	x, o    string
	created time.Time
	updated time.Time
}

func (g *game) snapshot() GameState {
	out, winner := g.engine.Classify()
	return GameState{
		ID:      g.id,
		Board:   g.engine.Board(),
		Turn:    g.engine.CurrentPlayer(),
		Outcome: out,
		Winner:  winner,
		VsAI:    g.vsAI,
		X:       g.x,
		O:       g.o,
		Created: g.created,
		Updated: g.updated,
	}
}

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages games and subscribers.
type Service struct {
	mu       sync.Mutex
	games    map[string]*game
	subs     map[string]map[*subscriber]struct{}
	render   func(GameState) []byte
	searcher *ai.Searcher
}

// NewService creates a service with a no-op broadcast renderer.
func NewService() *Service {
	return NewServiceWithRenderer(func(gs GameState) []byte { return nil })
}

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(renderer func(GameState) []byte) *Service {
	if renderer == nil {
		renderer = func(gs GameState) []byte { return nil }
	}
	return &Service{
		games:    make(map[string]*game),
		subs:     make(map[string]map[*subscriber]struct{}),
		render:   renderer,
		searcher: ai.NewSearcher(),
	}
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(gs GameState) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreateGame creates and registers a new game. When vsAI is set the O
// seat belongs to the computer and only X is claimable.
func (s *Service) CreateGame(vsAI bool) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	g := &game{
		id:      newGameID(),
		engine:  domain.NewWithAI(vsAI),
		vsAI:    vsAI,
		created: now,
		updated: now,
	}
	if vsAI {
		g.o = aiSeatID
	}
	s.games[g.id] = g
	log.Info().Str("game", g.id).Bool("vs_ai", vsAI).Msg("game created")
	cp := g.snapshot()
	return &cp, nil
}

// Get returns a snapshot of the game if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := g.snapshot()
	return &cp, true
}

// Join assigns a seat to the player if available; returns Empty for
// spectators. Rejoining keeps the seat already held.
func (s *Service) Join(id, playerID string) (domain.Cell, *GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return domain.Empty, nil, ErrNotFound
	}
	seat := domain.Empty
	if g.x == "" || g.x == playerID {
		g.x = playerID
		seat = domain.X.Mark()
	} else if g.o == "" || g.o == playerID {
		g.o = playerID
		seat = domain.O.Mark()
	}
	g.updated = time.Now()
	cp := g.snapshot()
	return seat, &cp, nil
}

// Play validates seat and turn, applies the move at the given cell
// index, lets the AI answer in a vsAI game, updates timestamps, and
// broadcasts once with both moves applied.
func (s *Service) Play(id, playerID string, index int) (*GameState, error) {
	var payload []byte
	var cp GameState
	var toDrop []*subscriber

	s.mu.Lock()
	g, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	// Validate player is seated
	var seat domain.Player
	if g.x == playerID {
		seat = domain.X
	} else if g.o == playerID {
		seat = domain.O
	} else {
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	if g.engine.IsOver() {
		s.mu.Unlock()
		return nil, ErrGameFinished
	}
	if seat != g.engine.CurrentPlayer() {
		s.mu.Unlock()
		return nil, ErrNotYourTurn
	}
	if err := g.engine.ApplyMove(index); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	// The computer answers immediately so the human sees one update
	// covering both plies.
	if g.vsAI && !g.engine.IsOver() && g.engine.CurrentPlayer() == domain.O {
		if mv, ok := s.searcher.BestMove(g.engine); ok {
			// BestMove always targets an empty cell.
			_ = g.engine.ApplyMove(mv)
			log.Debug().Str("game", g.id).Int("cell", mv).Msg("ai replied")
		}
	}
	g.updated = time.Now()

	// Snapshot state and subscribers
	cp = g.snapshot()
	subs := s.copySubsLocked(id)
	payload = s.render(cp)
	s.mu.Unlock()

	// Fan-out; drop slow subscribers by closing and marking for deletion
	for sub := range subs {
		select {
		case sub.ch <- payload:
		default:
			// drop slow subscriber
			sub.close()
			toDrop = append(toDrop, sub)
		}
	}
	if len(toDrop) > 0 {
		s.mu.Lock()
		for _, sub := range toDrop {
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
		}
		s.mu.Unlock()
	}
	return &cp, nil
}

// Subscribe registers a subscriber for a game. Returns a channel and an
// unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		// create lazily to allow subscriptions before CreateGame in some flows
		now := time.Now()
		s.games[id] = &game{id: id, engine: domain.NewWithAI(false), created: now, updated: now}
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}
