package session

import (
	"context"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
)

// ConnectionStore is the durable key/value mapping from connection id to
// session metadata. It is the sole source of truth for open sessions: the
// session manager runs as multiple instances and keeps no authoritative
// in-memory state.
type ConnectionStore interface {
	// Create writes a new session record.
	Create(ctx context.Context, s *domain.Session) error

	// Get looks up the most recent session record for a connection id.
	// Returns domain.ErrSessionNotFound if none exists.
	Get(ctx context.Context, connectionID string) (*domain.Session, error)

	// Delete removes the session records for a connection id. Deleting an
	// unknown connection is a no-op, not an error.
	Delete(ctx context.Context, connectionID string) error
}
