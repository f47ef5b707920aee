package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/session"
)

// Ensure pgConnectionStore implements session.ConnectionStore.
var _ session.ConnectionStore = (*pgConnectionStore)(nil)

type pgConnectionStore struct {
	pool *pgxpool.Pool
}

// NewPostgresConnectionStore creates a PostgreSQL-backed connection store.
// The sessions table is keyed by (connection_id, epoch) so historical records
// for one logical client never overwrite each other.
func NewPostgresConnectionStore(pool *pgxpool.Pool) session.ConnectionStore {
	return &pgConnectionStore{pool: pool}
}

func (r *pgConnectionStore) Create(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (connection_id, epoch, state, created_at)
		VALUES ($1, $2, $3, $4)`

	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, query, s.ConnectionID, s.Epoch, s.State, now)
	if err != nil {
		return fmt.Errorf("postgres: create session: %w", err)
	}
	s.CreatedAt = now
	return nil
}

func (r *pgConnectionStore) Get(ctx context.Context, connectionID string) (*domain.Session, error) {
	query := `
		SELECT connection_id, epoch, state, created_at
		FROM sessions
		WHERE connection_id = $1
		ORDER BY epoch DESC
		LIMIT 1`

	s := &domain.Session{}
	err := r.pool.QueryRow(ctx, query, connectionID).Scan(
		&s.ConnectionID, &s.Epoch, &s.State, &s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get session: %w", err)
	}
	return s, nil
}

func (r *pgConnectionStore) Delete(ctx context.Context, connectionID string) error {
	// Zero rows affected is fine: closing an unknown session is a no-op.
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE connection_id = $1`, connectionID)
	if err != nil {
		return fmt.Errorf("postgres: delete session: %w", err)
	}
	return nil
}
