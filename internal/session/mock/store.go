package mock

import (
	"context"
	"sync"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/session"
)

// Ensure MockConnectionStore implements session.ConnectionStore.
var _ session.ConnectionStore = (*MockConnectionStore)(nil)

// MockConnectionStore is an in-memory connection store for testing.
type MockConnectionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session

	// Hook functions for injecting errors
	CreateFunc func(ctx context.Context, s *domain.Session) error
	GetFunc    func(ctx context.Context, connectionID string) (*domain.Session, error)
	DeleteFunc func(ctx context.Context, connectionID string) error
}

// NewMockConnectionStore creates a new mock connection store.
func NewMockConnectionStore() *MockConnectionStore {
	return &MockConnectionStore{sessions: make(map[string]*domain.Session)}
}

func (m *MockConnectionStore) Create(ctx context.Context, s *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ConnectionID] = &cp
	return nil
}

func (m *MockConnectionStore) Get(ctx context.Context, connectionID string) (*domain.Session, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, connectionID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[connectionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockConnectionStore) Delete(ctx context.Context, connectionID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, connectionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, connectionID)
	return nil
}

// Count returns the number of stored sessions (for test assertions).
func (m *MockConnectionStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
