package registry

import (
	"context"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
)

// Registry tracks in-flight and completed executions by handle so a
// stateless client can resume polling after disconnecting.
// Implementations must be safe for concurrent use; contention is limited to
// operations on the same handle, which never occur concurrently (a single
// engine run owns each execution).
type Registry interface {
	// Create registers a new execution under its handle.
	Create(ctx context.Context, exec *domain.Execution) error

	// Update overwrites the execution record for its handle.
	Update(ctx context.Context, exec *domain.Execution) error

	// Get retrieves an execution by handle. Returns domain.ErrUnknownHandle
	// if the handle never existed or was evicted.
	Get(ctx context.Context, handle string) (*domain.Execution, error)

	// Delete evicts an execution after its terminal result was delivered.
	// Deleting an absent handle is a no-op.
	Delete(ctx context.Context, handle string) error
}
