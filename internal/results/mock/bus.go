package mock

import (
	"context"
	"sync"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/results"
)

// Ensure MockBus implements results.Bus.
var _ results.Bus = (*MockBus)(nil)

// MockBus is an in-process result bus for testing: Publish synchronously
// invokes every subscriber.
type MockBus struct {
	mu          sync.Mutex
	subscribers []func(*results.Delivery)
	Published   []*results.Delivery

	PublishFunc func(ctx context.Context, d *results.Delivery) error
}

// NewMockBus creates a new mock bus.
func NewMockBus() *MockBus {
	return &MockBus{}
}

func (m *MockBus) Publish(ctx context.Context, d *results.Delivery) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, d)
	}
	m.mu.Lock()
	m.Published = append(m.Published, d)
	subs := append([]func(*results.Delivery){}, m.subscribers...)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(d)
	}
	return nil
}

func (m *MockBus) Subscribe(ctx context.Context, fn func(*results.Delivery)) error {
	m.mu.Lock()
	m.subscribers = append(m.subscribers, fn)
	m.mu.Unlock()
	<-ctx.Done()
	return nil
}
