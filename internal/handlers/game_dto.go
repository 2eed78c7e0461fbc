package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/schema"

	"github.com/vancomm/peachsweeper/internal/board"
	"github.com/vancomm/peachsweeper/internal/game"
	"github.com/vancomm/peachsweeper/internal/repository"
)

var decoder = func() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}()

// CreateNewGameDTO names a preset, or gives custom board parameters when
// Difficulty is empty.
type CreateNewGameDTO struct {
	Difficulty string `schema:"difficulty"`
	Rows       int    `schema:"rows"`
	Cols       int    `schema:"cols"`
	Mines      int    `schema:"mines"`
}

func ParseCreateNewGameDTO(src url.Values) (CreateNewGameDTO, error) {
	var dto CreateNewGameDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if dto.Difficulty == "" && (!src.Has("rows") || !src.Has("cols") || !src.Has("mines")) {
		return dto, fmt.Errorf("%w: difficulty or rows, cols and mines required", ErrBadRequest)
	}
	return dto, nil
}

type Move int

const (
	Open Move = iota
	Flag
)

func ParseGameMove(s string) (Move, error) {
	switch strings.ToLower(s) {
	case "open", "o":
		return Open, nil
	case "flag", "f":
		return Flag, nil
	}
	return 0, fmt.Errorf("%w: unknown move %q", ErrBadRequest, s)
}

type MoveDTO struct {
	Move string `schema:"move,required"`
	X    int    `schema:"x,required"`
	Y    int    `schema:"y,required"`
}

func ParseMoveDTO(src url.Values) (MoveDTO, error) {
	var dto MoveDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return dto, nil
}

type GameSessionDTO struct {
	GameSessionID string            `json:"game_session_id"`
	Difficulty    game.Difficulty   `json:"difficulty"`
	Phase         game.Phase        `json:"phase"`
	Grid          []board.CellState `json:"grid"`
	MinesLeft     int               `json:"mines_left"`
	Elapsed       int64             `json:"elapsed"`
	StartedAt     *int64            `json:"started_at,omitempty"`
	EndedAt       *int64            `json:"ended_at,omitempty"`
	Token         string            `json:"token,omitempty"`
}

func unixMilli(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func NewGameSessionDTO(session *repository.GameSession, now time.Time) *GameSessionDTO {
	state := session.State
	return &GameSessionDTO{
		GameSessionID: strconv.FormatInt(session.GameSessionID, 10),
		Difficulty:    state.Difficulty,
		Phase:         state.Phase,
		Grid:          state.Grid.States(),
		MinesLeft:     state.MinesLeft(),
		Elapsed:       state.Elapsed(now),
		StartedAt:     unixMilli(state.StartedAt),
		EndedAt:       unixMilli(state.EndedAt),
	}
}

type HintDTO struct {
	Hint string `json:"hint"`
}
