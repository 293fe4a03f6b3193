package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/avandren/tictactoe/internal/app"
	"github.com/avandren/tictactoe/internal/domain"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
	t.Helper()
	s := app.NewService()
	h := NewServer(s)
	return s, h
}

func TestIndexPage(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "action=\"/game\"") {
		t.Fatalf("index should contain create forms; got body: %q", body)
	}
	if !strings.Contains(body, "value=\"ai\"") || !strings.Contains(body, "value=\"pvp\"") {
		t.Fatalf("index should offer both modes; got body: %q", body)
	}
}

func TestCreateRedirectsToGame(t *testing.T) {
	svc, h := newTestServer(t)
	form := url.Values{"mode": {"pvp"}}
	req := httptest.NewRequest("POST", "/game", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther && rr.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	loc := rr.Result().Header.Get("Location")
	if !strings.HasPrefix(loc, "/game/") {
		t.Fatalf("expected redirect to /game/{id}, got %q", loc)
	}
	gs, ok := svc.Get(strings.TrimPrefix(loc, "/game/"))
	if !ok || gs.VsAI {
		t.Fatalf("expected a registered two-player game, got %+v ok=%v", gs, ok)
	}
}

func TestCreateDefaultsToAIGame(t *testing.T) {
	svc, h := newTestServer(t)
	req := httptest.NewRequest("POST", "/game", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	loc := rr.Result().Header.Get("Location")
	gs, ok := svc.Get(strings.TrimPrefix(loc, "/game/"))
	if !ok || !gs.VsAI {
		t.Fatalf("expected an AI game by default, got %+v ok=%v", gs, ok)
	}
}

// The configured default decides the mode when the create form does
// not name one; an explicit mode always wins over it.
func TestCreateUsesConfiguredAIDefault(t *testing.T) {
	svc := app.NewService()
	h := NewServerWithAIDefault(svc, false)

	req := httptest.NewRequest("POST", "/game", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	loc := rr.Result().Header.Get("Location")
	gs, ok := svc.Get(strings.TrimPrefix(loc, "/game/"))
	if !ok || gs.VsAI {
		t.Fatalf("expected a two-player game from the default, got %+v ok=%v", gs, ok)
	}

	form := url.Values{"mode": {"ai"}}
	req = httptest.NewRequest("POST", "/game", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	loc = rr.Result().Header.Get("Location")
	gs, ok = svc.Get(strings.TrimPrefix(loc, "/game/"))
	if !ok || !gs.VsAI {
		t.Fatalf("expected explicit mode=ai to win over the default, got %+v ok=%v", gs, ok)
	}
}

func TestGamePageSetsCookieAndAutoClaims(t *testing.T) {
	svc, h := newTestServer(t)
	// Create a game via service to know ID
	gs, _ := svc.CreateGame(false)

	req := httptest.NewRequest("GET", "/game/"+url.PathEscape(gs.ID), nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	// Cookie set
	cookies := rr.Result().Cookies()
	var playerID string
	for _, c := range cookies {
		if c.Name == "player_id" {
			playerID = c.Value
			break
		}
	}
	if playerID == "" {
		t.Fatalf("expected player_id cookie to be set")
	}
	// Auto-claimed seat
	latest, ok := svc.Get(gs.ID)
	if !ok || (latest.X != playerID && latest.O != playerID) {
		t.Fatalf("expected auto-claim X or O; have X=%q O=%q pid=%q", latest.X, latest.O, playerID)
	}
	// SSE wiring present
	body := rr.Body.String()
	if !strings.Contains(body, "hx-ext=\"sse\"") || !strings.Contains(body, "/game/"+gs.ID+"/events") {
		t.Fatalf("expected SSE wiring in page; got body: %q", body)
	}
}

func TestJoinEndpointReturnsBoardFragment(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(false)
	// First GET to auto-claim X for p1
	req1 := httptest.NewRequest("GET", "/game/"+gs.ID, nil)
	rr1 := httptest.NewRecorder()
	h.ServeHTTP(rr1, req1)
	// Second player joins with their own cookie
	p2 := &http.Cookie{Name: "player_id", Value: "p2"}
	req := httptest.NewRequest("POST", "/game/"+gs.ID+"/join", nil)
	req.AddCookie(p2)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "id=\"board\"") {
		t.Fatalf("expected board fragment, got %q", rr.Body.String())
	}
	latest, _ := svc.Get(gs.ID)
	if latest.O != "p2" && latest.X != "p2" { // allow if X was free
		t.Fatalf("expected seat for p2, got X=%q O=%q", latest.X, latest.O)
	}
}

func playCell(t *testing.T, h http.Handler, gameID, playerID string, cell string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"cell": {cell}}
	req := httptest.NewRequest("POST", "/game/"+gameID+"/play", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "player_id", Value: playerID})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestPlayEndpointUpdatesStateAndReturnsFragment(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(false)
	// Assign X and O
	svc.Join(gs.ID, "p1")
	svc.Join(gs.ID, "p2")

	rr := playCell(t, h, gs.ID, "p1", "4")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "id=\"board\"") {
		t.Fatalf("expected board fragment, got %q", body)
	}
	if !strings.Contains(body, "O to move") {
		t.Fatalf("expected status line for O's turn, got %q", body)
	}
	latest, _ := svc.Get(gs.ID)
	if latest.Board[4] != domain.X.Mark() {
		t.Fatalf("expected move applied, board=%v", latest.Board)
	}
}

func TestPlayEndpointRendersErrors(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(false)
	svc.Join(gs.ID, "p1")
	svc.Join(gs.ID, "p2")

	rr := playCell(t, h, gs.ID, "p2", "0")
	if !strings.Contains(rr.Body.String(), "Not your turn") {
		t.Fatalf("expected turn error, got %q", rr.Body.String())
	}

	playCell(t, h, gs.ID, "p1", "0")
	// O to move from here on
	rr = playCell(t, h, gs.ID, "p2", "0")
	if !strings.Contains(rr.Body.String(), "Cell is occupied") {
		t.Fatalf("expected occupied error, got %q", rr.Body.String())
	}

	rr = playCell(t, h, gs.ID, "p2", "9")
	if !strings.Contains(rr.Body.String(), "Out of range") {
		t.Fatalf("expected range error, got %q", rr.Body.String())
	}

	rr = playCell(t, h, gs.ID, "p2", "not-a-number")
	if !strings.Contains(rr.Body.String(), "Out of range") {
		t.Fatalf("expected range error for junk input, got %q", rr.Body.String())
	}
}

func TestPlayAgainstAIShowsReply(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(true)
	svc.Join(gs.ID, "p1")

	rr := playCell(t, h, gs.ID, "p1", "4")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	latest, _ := svc.Get(gs.ID)
	marks := 0
	for _, c := range latest.Board {
		if c != domain.Empty {
			marks++
		}
	}
	if marks != 2 {
		t.Fatalf("expected AI reply on the board, board=%v", latest.Board)
	}
	if !strings.Contains(rr.Body.String(), "X to move") {
		t.Fatalf("expected turn back with the human, got %q", rr.Body.String())
	}
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
	_, h := newTestServer(t)
	// create a game via POST
	reqCreate := httptest.NewRequest("POST", "/game", nil)
	rrCreate := httptest.NewRecorder()
	h.ServeHTTP(rrCreate, reqCreate)
	loc := rrCreate.Result().Header.Get("Location")
	if loc == "" {
		t.Fatalf("missing redirect location")
	}
	// Request SSE
	req := httptest.NewRequest("GET", loc+"/events", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	ct := rr.Result().Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/event-stream") {
		io.Copy(io.Discard, rr.Result().Body)
		t.Fatalf("expected text/event-stream, got %q", ct)
	}
}
