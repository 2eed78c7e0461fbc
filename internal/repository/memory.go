package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vancomm/peachsweeper/internal/game"
)

type memoryEntry struct {
	version   int64
	state     []byte
	createdAt time.Time
	updatedAt time.Time
}

// Memory keeps sessions in process memory. States are stored encoded, so
// callers never share a grid with the store.
type Memory struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[int64]*memoryEntry
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[int64]*memoryEntry),
		now:      time.Now,
	}
}

func (e *memoryEntry) session(id int64) (*GameSession, error) {
	state, err := game.Decode(e.state)
	if err != nil {
		return nil, err
	}
	return &GameSession{
		GameSessionID: id,
		Version:       e.version,
		State:         state,
		CreatedAt:     e.createdAt,
		UpdatedAt:     e.updatedAt,
	}, nil
}

func (m *Memory) CreateGameSession(_ context.Context, state *game.State) (*GameSession, error) {
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	b, err := state.Bytes()
	if err != nil {
		return nil, fmt.Errorf("unable to encode game state: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	now := m.now().UTC()
	entry := &memoryEntry{version: 1, state: b, createdAt: now, updatedAt: now}
	m.sessions[m.nextID] = entry
	return entry.session(m.nextID)
}

func (m *Memory) FetchGameSession(_ context.Context, gameSessionID int64) (*GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[gameSessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return entry.session(gameSessionID)
}

func (m *Memory) UpdateGameSession(_ context.Context, session *GameSession) (*GameSession, error) {
	b, err := session.State.Bytes()
	if err != nil {
		return nil, fmt.Errorf("unable to encode game state: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[session.GameSessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if entry.version != session.Version {
		return nil, ErrConflict
	}
	entry.version++
	entry.state = b
	entry.updatedAt = m.now().UTC()
	return entry.session(session.GameSessionID)
}

func (m *Memory) DeleteGameSession(_ context.Context, gameSessionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[gameSessionID]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, gameSessionID)
	return nil
}
