package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("no session token")

// SessionClaims grant control over one game session.
type SessionClaims struct {
	GameSessionID int64 `json:"game_session_id"`
	jwt.RegisteredClaims
}

type Sessions struct {
	key           []byte
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

// NewSessions loads the token signing key from SESSION_SECRET or
// SESSION_SECRET_FILE. In development a missing secret is replaced by a
// random one, so tokens do not survive a restart.
func NewSessions() (*Sessions, error) {
	secret, ok, err := readSecret("SESSION_SECRET")
	if err != nil {
		return nil, err
	}
	key := []byte(secret)
	if !ok || secret == "" {
		if !Development() {
			return nil, fmt.Errorf("no SESSION_SECRET or SESSION_SECRET_FILE env variable set")
		}
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("unable to generate session secret: %w", err)
		}
	}

	lifetime, err := lookupDuration("SESSION_TOKEN_LIFETIME", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	return NewSessionsWithKey(key, lifetime), nil
}

func NewSessionsWithKey(key []byte, lifetime time.Duration) *Sessions {
	return &Sessions{
		key:           key,
		signingMethod: jwt.SigningMethodHS256,
		tokenLifetime: lifetime,
	}
}

func (s *Sessions) Sign(gameSessionID int64, now time.Time) (string, error) {
	claims := &SessionClaims{
		GameSessionID: gameSessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(gameSessionID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenLifetime)),
		},
	}
	return jwt.NewWithClaims(s.signingMethod, claims).SignedString(s.key)
}

func (s *Sessions) Parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return s.key, nil
		},
		jwt.WithValidMethods([]string{s.signingMethod.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}

// ParseRequest reads the token from an "Authorization: Bearer" header or,
// for websocket handshakes, the token query parameter.
func (s *Sessions) ParseRequest(r *http.Request) (*SessionClaims, error) {
	tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		tokenString = r.URL.Query().Get("token")
	}
	if tokenString == "" {
		return nil, ErrNoToken
	}
	return s.Parse(tokenString)
}
