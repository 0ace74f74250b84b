// Package session stores game-state snapshots keyed by opaque ids. The rules
// engine itself persists nothing; sessions exist so a client can replay
// decisions against a server-held state.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"uno-arbiter/server/engine"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	Create(ctx context.Context, state *engine.GameState) (string, error)
	Get(ctx context.Context, id string) (*engine.GameState, error)
	Save(ctx context.Context, id string, state *engine.GameState) error
	Delete(ctx context.Context, id string) error
	Len(ctx context.Context) (int, error)
}

// MemoryStore is the default in-process backend.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*engine.GameState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*engine.GameState)}
}

func (s *MemoryStore) Create(_ context.Context, state *engine.GameState) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = state
	s.mu.Unlock()
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*engine.GameState, error) {
	s.mu.RLock()
	state, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return state, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, state *engine.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	s.sessions[id] = state
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) Len(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}
