package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/peachsweeper/internal/board"
	"github.com/vancomm/peachsweeper/internal/config"
	"github.com/vancomm/peachsweeper/internal/game"
	"github.com/vancomm/peachsweeper/internal/hint"
	"github.com/vancomm/peachsweeper/internal/middleware"
	"github.com/vancomm/peachsweeper/internal/repository"
)

// maxAttempts bounds the fetch-apply-update loop when concurrent writers
// keep bumping a session's version.
const maxAttempts = 3

type GameHandler struct {
	logger       logrus.FieldLogger
	store        repository.Store
	sessions     *config.Sessions
	difficulties *config.Difficulties
	ws           *config.WebSocket
	hints        *hint.Service
	rnd          board.Source
	now          func() time.Time
}

func NewGameHandler(
	logger logrus.FieldLogger,
	store repository.Store,
	sessions *config.Sessions,
	difficulties *config.Difficulties,
	ws *config.WebSocket,
	hints *hint.Service,
	rnd board.Source,
) *GameHandler {
	handler := &GameHandler{
		logger:       logger,
		store:        store,
		sessions:     sessions,
		difficulties: difficulties,
		ws:           ws,
		hints:        hints,
		rnd:          &lockedSource{src: rnd},
		now:          time.Now,
	}

	return handler
}

// lockedSource serializes access to a Source shared between requests.
type lockedSource struct {
	mu  sync.Mutex
	src board.Source
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.IntN(n)
}

func parseSessionID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid game session id", ErrBadRequest)
	}
	return id, nil
}

// authorize checks that the request carries a token for gameSessionID.
func authorize(r *http.Request, gameSessionID int64) error {
	claims, ok := middleware.SessionClaims(r.Context())
	if !ok {
		return ErrUnauthorized
	}
	if claims.GameSessionID != gameSessionID {
		return ErrForbidden
	}
	return nil
}

// mutate applies fn to the stored state of a session and saves the result.
// fn reports whether it changed anything; unchanged states are not written.
// On a version conflict the whole cycle is retried against fresh state.
func (g GameHandler) mutate(
	ctx context.Context,
	gameSessionID int64,
	fn func(state *game.State) (bool, error),
) (*repository.GameSession, error) {
	for attempt := 1; ; attempt++ {
		session, err := g.store.FetchGameSession(ctx, gameSessionID)
		if err != nil {
			return nil, err
		}
		changed, err := fn(session.State)
		if err != nil {
			return nil, err
		}
		if !changed {
			return session, nil
		}
		updated, err := g.store.UpdateGameSession(ctx, session)
		if errors.Is(err, repository.ErrConflict) && attempt < maxAttempts {
			g.logger.WithFields(logrus.Fields{
				"game_session_id": gameSessionID,
				"attempt":         attempt,
			}).Debug("retrying conflicting update")
			continue
		}
		return updated, err
	}
}

func (g GameHandler) Difficulties(w http.ResponseWriter, r *http.Request) {
	sendJSONOrLog(w, g.logger, g.difficulties.List())
}

func (g GameHandler) difficulty(dto CreateNewGameDTO) (game.Difficulty, error) {
	if dto.Difficulty != "" {
		return g.difficulties.Lookup(dto.Difficulty)
	}
	d := game.Difficulty{
		Name:  "custom",
		Rows:  dto.Rows,
		Cols:  dto.Cols,
		Mines: dto.Mines,
	}
	if err := config.ValidateDifficulty(d); err != nil {
		return d, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return d, nil
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseCreateNewGameDTO(r.URL.Query())
	if err != nil {
		sendError(w, r, g.logger, err)
		return
	}

	d, err := g.difficulty(dto)
	if err != nil {
		sendError(w, r, g.logger, err)
		return
	}

	session, err := g.store.CreateGameSession(r.Context(), game.New(d))
	if err != nil {
		sendError(w, r, g.logger, err)
		return
	}

	now := g.now()
	token, err := g.sessions.Sign(session.GameSessionID, now)
	if err != nil {
		sendError(w, r, g.logger, fmt.Errorf("unable to sign session token: %w", err))
		return
	}

	middleware.RequestLogger(r.Context(), g.logger).WithFields(logrus.Fields{
		"game_session_id": session.GameSessionID,
		"difficulty":      d.Name,
	}).Debug("created game session")

	res := NewGameSessionDTO(session, now)
	res.Token = token
	w.WriteHeader(http.StatusCreated)
	sendJSONOrLog(w, g.logger, res)
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	id, err := parseSessionID(r)
	if err != nil {
		sendError(w, r, g.logger, err)
		return
	}

	session, err := g.store.FetchGameSession(r.Context(), id)
	if err != nil {
		sendError(w, r, g.logger, err)
		return
	}

	sendJSONOrLog(w, g.logger, NewGameSessionDTO(session, g.now()))
}

// applyMove runs one engine operation. Positions outside the grid are
// rejected here; the engine itself ignores them.
func (g GameHandler) applyMove(state *game.State, move Move, x, y int) (bool, error) {
	if !state.Grid.InBounds(x, y) {
		return false, fmt.Errorf("%w: invalid cell position", ErrBadRequest)
	}
	now := g.now().UTC()
	switch move {
	case Open:
		return state.Open(x, y, g.rnd, now).Changed, nil
	case Flag:
		return state.Flag(x, y, now), nil
	}
	return false, fmt.Errorf("%w: unknown move", ErrBadRequest)
}

// handleMutation authorizes the request, applies fn and answers with the
// resulting session.
func (g GameHandler) handleMutation(
	w http.ResponseWriter,
	r *http.Request,
	fn func(state *game.State) (bool, error),
) {
	id, err := parseSessionID(r)
	if err != nil {
		sendError(w, r, g.logger, err)
		return
	}
	if err := authorize(r, id); err != nil {
		sendError(w, r, g.logger, err)
		return
	}

	session, err := g.mutate(r.Context(), id, fn)
	if err != nil {
		sendError(w, r, g.logger, err)
		return
	}

	sendJSONOrLog(w, g.logger, NewGameSessionDTO(session, g.now()))
}

func (g GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		sendError(w, r, g.logger, err)
		return
	}
	move, err := ParseGameMove(dto.Move)
	if err != nil {
		sendError(w, r, g.logger, err)
		return
	}

	g.handleMutation(w, r, func(state *game.State) (bool, error) {
		return g.applyMove(state, move, dto.X, dto.Y)
	})
}

func (g GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	g.handleMutation(w, r, func(state *game.State) (bool, error) {
		state.Reset()
		return true, nil
	})
}

func (g GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	g.handleMutation(w, r, func(state *game.State) (bool, error) {
		return state.Forfeit(g.now().UTC()), nil
	})
}

func (g GameHandler) Hint(w http.ResponseWriter, r *http.Request) {
	id, err := parseSessionID(r)
	if err != nil {
		sendError(w, r, g.logger, err)
		return
	}
	if err := authorize(r, id); err != nil {
		sendError(w, r, g.logger, err)
		return
	}

	session, err := g.store.FetchGameSession(r.Context(), id)
	if err != nil {
		sendError(w, r, g.logger, err)
		return
	}

	// callers asking about the same board share one advisor call
	key := fmt.Sprintf("%d:%d", session.GameSessionID, session.Version)
	text, err := g.hints.Hint(r.Context(), key, session.State)
	if err != nil {
		sendError(w, r, g.logger, err)
		return
	}

	sendJSONOrLog(w, g.logger, HintDTO{Hint: text})
}
