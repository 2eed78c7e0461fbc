package config

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader  websocket.Upgrader
	ReadLimit int64
}

// NewWebSocket accepts every origin unless WS_ALLOWED_ORIGINS lists them.
func NewWebSocket() (*WebSocket, error) {
	origins := lookupList("WS_ALLOWED_ORIGINS")

	readLimit, err := lookupInt("WS_READ_LIMIT", 4096)
	if err != nil {
		return nil, err
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if origins == nil {
				return true
			}
			return slices.Contains(origins, r.Header.Get("Origin"))
		},
	}

	ws := &WebSocket{
		Upgrader:  upgrader,
		ReadLimit: int64(readLimit),
	}

	return ws, nil
}
