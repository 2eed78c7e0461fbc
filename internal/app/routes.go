package app

import (
	"hash/maphash"
	"math/rand/v2"

	"github.com/vancomm/peachsweeper/internal/handlers"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) loadRoutes() {
	game := handlers.NewGameHandler(
		a.logger, a.store, a.sessions, a.difficulties, a.ws, a.hints, createRand(),
	)

	a.router.HandleFunc("GET /difficulties", game.Difficulties)
	a.router.HandleFunc("POST /game", game.NewGame)
	a.router.HandleFunc("GET /game/{id}", game.Fetch)
	a.router.HandleFunc("POST /game/{id}/move", game.Move)
	a.router.HandleFunc("POST /game/{id}/reset", game.Reset)
	a.router.HandleFunc("POST /game/{id}/forfeit", game.Forfeit)
	a.router.HandleFunc("POST /game/{id}/hint", game.Hint)
	a.router.HandleFunc("/game/{id}/connect", game.ConnectWS)
}
