package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/peachsweeper/internal/config"
)

func TestLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	var seen string
	h := Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = r.Context().Value(CtxRequestID).(string)
			w.WriteHeader(http.StatusTeapot)
		}),
		Logging(logger),
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/difficulties", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "handled request", entry.Message)
	assert.Equal(t, http.StatusTeapot, entry.Data["status"])
	assert.Equal(t, seen, entry.Data["request_id"])
}

func TestLoggingKeepsIncomingRequestID(t *testing.T) {
	logger, _ := test.NewNullLogger()
	h := Wrap(http.NotFoundHandler(), Logging(logger))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-Id", "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, "abc", rec.Header().Get("X-Request-Id"))
}

func TestAuth(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sessions := config.NewSessionsWithKey([]byte("secret"), time.Hour)

	var (
		claims *config.SessionClaims
		ok     bool
	)
	h := Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok = SessionClaims(r.Context())
		}),
		Auth(logger, sessions),
	)

	token, err := sessions.Sign(3, time.Now())
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/game/3/move", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), r)
	require.True(t, ok)
	assert.Equal(t, int64(3), claims.GameSessionID)

	r = httptest.NewRequest(http.MethodPost, "/game/3/move", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.False(t, ok)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/game/3", nil))
	assert.False(t, ok)
}

func TestCors(t *testing.T) {
	h := Wrap(http.NotFoundHandler(), Cors([]string{"https://peach.example"}))

	r := httptest.NewRequest(http.MethodGet, "/difficulties", nil)
	r.Header.Set("Origin", "https://peach.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, "https://peach.example", rec.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/difficulties", nil)
	r.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
