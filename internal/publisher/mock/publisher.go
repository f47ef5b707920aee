package mock

import (
	"context"
	"sync"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/publisher"
)

// Ensure MockPublisher implements publisher.Publisher.
var _ publisher.Publisher = (*MockPublisher)(nil)

// MockPublisher is a mock message publisher for testing.
type MockPublisher struct {
	mu        sync.Mutex
	Published []*domain.Job
	PublishFn func(ctx context.Context, job *domain.Job) error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, job *domain.Job) error {
	if m.PublishFn != nil {
		return m.PublishFn(ctx, job)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, job)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// Last returns the most recently published job, or nil.
func (m *MockPublisher) Last() *domain.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Published) == 0 {
		return nil
	}
	return m.Published[len(m.Published)-1]
}
