package mock

import (
	"context"
	"sync"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/registry"
)

// Ensure MockRegistry implements registry.Registry.
var _ registry.Registry = (*MockRegistry)(nil)

// MockRegistry is an in-memory execution registry for testing.
type MockRegistry struct {
	mu    sync.RWMutex
	execs map[string]*domain.Execution

	// Hook functions for injecting errors
	CreateFunc func(ctx context.Context, exec *domain.Execution) error
	UpdateFunc func(ctx context.Context, exec *domain.Execution) error
	GetFunc    func(ctx context.Context, handle string) (*domain.Execution, error)
	DeleteFunc func(ctx context.Context, handle string) error
}

// NewMockRegistry creates a new mock registry.
func NewMockRegistry() *MockRegistry {
	return &MockRegistry{execs: make(map[string]*domain.Execution)}
}

func (m *MockRegistry) Create(ctx context.Context, exec *domain.Execution) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, exec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *exec
	m.execs[exec.Handle] = &cp
	return nil
}

func (m *MockRegistry) Update(ctx context.Context, exec *domain.Execution) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, exec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *exec
	m.execs[exec.Handle] = &cp
	return nil
}

func (m *MockRegistry) Get(ctx context.Context, handle string) (*domain.Execution, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, handle)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	exec, ok := m.execs[handle]
	if !ok {
		return nil, domain.ErrUnknownHandle
	}
	cp := *exec
	return &cp, nil
}

func (m *MockRegistry) Delete(ctx context.Context, handle string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, handle)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.execs, handle)
	return nil
}

// States returns the recorded state for a handle (for test assertions).
func (m *MockRegistry) States(handle string) (domain.ExecutionState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exec, ok := m.execs[handle]
	if !ok {
		return "", false
	}
	return exec.State, true
}
