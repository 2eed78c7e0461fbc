package config

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/peachsweeper/internal/board"
	"github.com/vancomm/peachsweeper/internal/game"
)

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestDifficultiesDefaults(t *testing.T) {
	unsetenv(t, "DIFFICULTIES_FILE")
	d, err := NewDifficulties()
	require.NoError(t, err)

	expert, err := d.Lookup("Expert")
	require.NoError(t, err)
	assert.Equal(t, game.Difficulty{Name: "expert", Rows: 16, Cols: 30, Mines: 99}, expert)

	_, err = d.Lookup("nightmare")
	assert.ErrorIs(t, err, ErrUnknownDifficulty)

	assert.Len(t, d.List(), 3)
}

func TestDifficultiesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "difficulties.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
difficulties:
  - name: Expert
    rows: 20
    cols: 40
    mines: 160
  - name: tiny
    rows: 4
    cols: 4
    mines: 2
`), 0o600))
	t.Setenv("DIFFICULTIES_FILE", path)

	d, err := NewDifficulties()
	require.NoError(t, err)

	list := d.List()
	require.Len(t, list, 4)
	assert.Equal(t, game.Difficulty{Name: "expert", Rows: 20, Cols: 40, Mines: 160}, list[2])
	assert.Equal(t, game.Difficulty{Name: "tiny", Rows: 4, Cols: 4, Mines: 2}, list[3])
}

func TestDifficultiesFileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"too many mines", "difficulties:\n  - {name: full, rows: 3, cols: 3, mines: 9}\n"},
		{"too large", "difficulties:\n  - {name: huge, rows: 101, cols: 3, mines: 9}\n"},
		{"no name", "difficulties:\n  - {rows: 3, cols: 3, mines: 1}\n"},
		{"not yaml", "difficulties: [\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := DefaultDifficulties()
			assert.Error(t, d.merge([]byte(test.yaml)))
		})
	}
}

func TestValidateDifficulty(t *testing.T) {
	assert.NoError(t, ValidateDifficulty(game.Difficulty{Rows: 100, Cols: 100, Mines: 9999}))
	assert.ErrorIs(t,
		ValidateDifficulty(game.Difficulty{Rows: 2, Cols: 2, Mines: 4}),
		board.ErrTooManyMines,
	)
	assert.Error(t, ValidateDifficulty(game.Difficulty{Rows: 2, Cols: 101, Mines: 1}))
}

func TestSessions(t *testing.T) {
	now := time.Now()
	s := NewSessionsWithKey([]byte("secret"), time.Hour)

	token, err := s.Sign(42, now)
	require.NoError(t, err)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.GameSessionID)

	other := NewSessionsWithKey([]byte("other secret"), time.Hour)
	_, err = other.Parse(token)
	assert.Error(t, err)

	expired, err := s.Sign(42, now.Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = s.Parse(expired)
	assert.Error(t, err)
}

func TestSessionsParseRequest(t *testing.T) {
	s := NewSessionsWithKey([]byte("secret"), time.Hour)
	token, err := s.Sign(7, time.Now())
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/game/7/move", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	claims, err := s.ParseRequest(r)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.GameSessionID)

	r = httptest.NewRequest("GET", "/game/7/connect?token="+token, nil)
	claims, err = s.ParseRequest(r)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.GameSessionID)

	r = httptest.NewRequest("GET", "/game/7", nil)
	_, err = s.ParseRequest(r)
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestNewSessionsRequiresSecret(t *testing.T) {
	unsetenv(t, "SESSION_SECRET", "SESSION_SECRET_FILE", "SESSION_TOKEN_LIFETIME")
	t.Setenv("DEVELOPMENT", "0")
	_, err := NewSessions()
	assert.Error(t, err)

	t.Setenv("DEVELOPMENT", "1")
	s, err := NewSessions()
	require.NoError(t, err)
	assert.Len(t, s.key, 32)

	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte("from file\n"), 0o600))
	t.Setenv("SESSION_SECRET_FILE", path)
	s, err = NewSessions()
	require.NoError(t, err)
	assert.Equal(t, []byte("from file"), s.key)
}

func TestNewDatabase(t *testing.T) {
	unsetenv(t, "DATABASE_URL", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_SSLMODE")
	_, err := DbURL()
	assert.ErrorIs(t, err, ErrNoDatabase)

	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_USER", "peach")
	t.Setenv("POSTGRES_PASSWORD", "p@ss word")
	t.Setenv("POSTGRES_DB", "orchard")

	url, err := DbURL()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://peach:p%40ss%20word@db:5432/orchard?sslmode=disable", url)

	t.Setenv("DATABASE_URL", "postgres://elsewhere/db")
	url, err = DbURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://elsewhere/db", url)
}

func TestNewHint(t *testing.T) {
	unsetenv(t,
		"GEMINI_API_KEY", "GEMINI_API_KEY_FILE", "API_KEY", "API_KEY_FILE",
		"HINT_TIMEOUT", "HINT_MAX_INFLIGHT", "HINT_MODEL",
	)
	h, err := NewHint()
	require.NoError(t, err)
	assert.False(t, h.Enabled())
	assert.Equal(t, 15*time.Second, h.Timeout)
	assert.Equal(t, int64(4), h.MaxInflight)

	t.Setenv("API_KEY", "legacy")
	t.Setenv("HINT_TIMEOUT", "3s")
	h, err = NewHint()
	require.NoError(t, err)
	assert.Equal(t, "legacy", h.APIKey)
	assert.Equal(t, 3*time.Second, h.Timeout)

	t.Setenv("GEMINI_API_KEY", "")
	h, err = NewHint()
	require.NoError(t, err)
	assert.Equal(t, "legacy", h.APIKey)
	assert.True(t, h.Enabled())

	t.Setenv("GEMINI_API_KEY", "preferred")
	h, err = NewHint()
	require.NoError(t, err)
	assert.Equal(t, "preferred", h.APIKey)

	t.Setenv("HINT_MAX_INFLIGHT", "many")
	_, err = NewHint()
	assert.Error(t, err)
}

func TestNewLogging(t *testing.T) {
	unsetenv(t, "LOG_LEVEL", "LOG_FILE")
	t.Setenv("DEVELOPMENT", "1")
	l, err := NewLogging()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.Level)

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FILE", "/var/log/peach.log")
	l, err = NewLogging()
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, l.Level)
	assert.Equal(t, "/var/log/peach.log", l.File)

	t.Setenv("LOG_LEVEL", "loud")
	_, err = NewLogging()
	assert.Error(t, err)
}

func TestAllowedOrigins(t *testing.T) {
	unsetenv(t, "CORS_ALLOWED_ORIGINS")
	assert.Nil(t, AllowedOrigins())

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, AllowedOrigins())
}

func TestWebSocketOrigins(t *testing.T) {
	t.Setenv("WS_ALLOWED_ORIGINS", "https://peach.example")
	ws, err := NewWebSocket()
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/game/1/connect", nil)
	r.Header.Set("Origin", "https://peach.example")
	assert.True(t, ws.Upgrader.CheckOrigin(r))

	r.Header.Set("Origin", "https://elsewhere.example")
	assert.False(t, ws.Upgrader.CheckOrigin(r))
}
