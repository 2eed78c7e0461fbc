package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/peachsweeper/internal/game"
	"github.com/vancomm/peachsweeper/internal/middleware"
)

type wsCommand string

const (
	wsNoop    wsCommand = "g"
	wsOpen    wsCommand = "o"
	wsFlag    wsCommand = "f"
	wsReset   wsCommand = "n"
	wsForfeit wsCommand = "r"
)

var commandNargs = map[wsCommand]int{
	wsNoop:    0,
	wsOpen:    2,
	wsFlag:    2,
	wsReset:   0,
	wsForfeit: 0,
}

func parseXY(args []string) (x int, y int, err error) {
	if x, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, fmt.Errorf("%w: first argument must be an int", ErrBadRequest)
	}
	if y, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, fmt.Errorf("%w: second argument must be an int", ErrBadRequest)
	}
	return x, y, nil
}

// applyCommand runs one line of the websocket protocol against state.
func (g GameHandler) applyCommand(state *game.State, line string) (bool, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}

	cmd := wsCommand(parts[0])
	nargs, ok := commandNargs[cmd]
	if !ok {
		return false, fmt.Errorf("%w: unknown command %q", ErrBadRequest, parts[0])
	}
	if nargs != len(parts)-1 {
		return false, fmt.Errorf("%w: invalid number of arguments", ErrBadRequest)
	}

	switch cmd {
	case wsOpen, wsFlag:
		x, y, err := parseXY(parts[1:])
		if err != nil {
			return false, err
		}
		move := Open
		if cmd == wsFlag {
			move = Flag
		}
		return g.applyMove(state, move, x, y)
	case wsReset:
		state.Reset()
		return true, nil
	case wsForfeit:
		return state.Forfeit(g.now().UTC()), nil
	}
	return false, nil
}

// applyCommands runs every line of a message in order and stops at the
// first invalid one; the lines before it still count.
func (g GameHandler) applyCommands(state *game.State, text string) (bool, error) {
	changed := false
	for _, line := range strings.Split(text, "\n") {
		c, err := g.applyCommand(state, line)
		changed = changed || c
		if err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// ConnectWS streams a game over a websocket. Every text message holds one
// command per line; the reply is the session after the commands ran, or an
// error object when one of them was rejected.
func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	id, err := parseSessionID(r)
	if err != nil {
		sendError(w, r, g.logger, err)
		return
	}
	if err := authorize(r, id); err != nil {
		sendError(w, r, g.logger, err)
		return
	}
	if _, err := g.store.FetchGameSession(r.Context(), id); err != nil {
		sendError(w, r, g.logger, err)
		return
	}

	log := middleware.RequestLogger(r.Context(), g.logger).
		WithField("game_session_id", id)

	c, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("unable to upgrade")
		return
	}
	defer c.Close()
	c.SetReadLimit(g.ws.ReadLimit)

	ctx := r.Context()
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("abnormal ws break")
			}
			return
		}
		if mt != websocket.TextMessage {
			return
		}
		text := strings.TrimSpace(string(message))
		log.Debugf("\t> %s", text)

		var cmdErr error
		session, err := g.mutate(ctx, id, func(state *game.State) (bool, error) {
			cmdErr = nil
			changed, err := g.applyCommands(state, text)
			if errors.Is(err, ErrBadRequest) {
				cmdErr = err
				return changed, nil
			}
			return changed, err
		})
		if err != nil {
			if statusOf(err) == http.StatusInternalServerError {
				log.WithError(err).Error("unable to apply commands")
				return
			}
			log.WithError(err).Warn("unable to apply commands")
			if err := c.WriteJSON(wrapError(err)); err != nil {
				return
			}
			continue
		}

		if cmdErr != nil {
			log.WithError(cmdErr).WithFields(logrus.Fields{"text": text}).Debug("rejected command")
			if err := c.WriteJSON(wrapError(cmdErr)); err != nil {
				log.WithError(err).Error("unable to write json")
				return
			}
			continue
		}

		if err := c.WriteJSON(NewGameSessionDTO(session, g.now())); err != nil {
			log.WithError(err).Error("unable to write json")
			return
		}
		log.Debug("\t< <session data>")
	}
}
