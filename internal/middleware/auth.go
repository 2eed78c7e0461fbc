package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/peachsweeper/internal/config"
)

type CtxKey int

const (
	CtxSessionClaims CtxKey = iota
	CtxRequestID
)

// Auth attaches valid session claims to the request context. Requests
// without a usable token pass through untouched; handlers decide whether
// they need one.
func Auth(logger logrus.FieldLogger, sessions *config.Sessions) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessions.ParseRequest(r)
			if err != nil {
				if !errors.Is(err, config.ErrNoToken) {
					RequestLogger(r.Context(), logger).
						WithError(err).
						Debug("rejected session token")
				}
				h.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), CtxSessionClaims, claims)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionClaims(ctx context.Context) (*config.SessionClaims, bool) {
	claims, ok := ctx.Value(CtxSessionClaims).(*config.SessionClaims)
	return claims, ok
}
