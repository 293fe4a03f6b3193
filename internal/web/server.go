package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avandren/tictactoe/internal/app"
)

// NewServer wires routes and returns an http.Handler. New games play
// the computer unless the creator picks otherwise.
func NewServer(s *app.Service) http.Handler {
	return NewServerWithAIDefault(s, true)
}

// NewServerWithAIDefault is like NewServer but sets the game mode used
// when the create form does not name one.
func NewServerWithAIDefault(s *app.Service, aiDefault bool) http.Handler {
	r := chi.NewRouter()
	h := &handlers{svc: s, tpl: loadTemplates(), aiDefault: aiDefault}
	// SSE broadcasts carry the same board fragment the play endpoint returns.
	s.SetRenderer(func(gs app.GameState) []byte { return h.renderBoard(gs, "") })
	r.Get("/", h.index)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Post("/join", h.join)
		r.Post("/play", h.play)
		r.Get("/events", h.events)
	})
	return r
}
