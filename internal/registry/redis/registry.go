package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/registry"
)

var _ registry.Registry = (*redisRegistry)(nil)

const keyPrefix = "genasl:execution:"

type redisRegistry struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisRegistry creates a Redis-backed execution registry. Records carry
// a TTL so executions whose clients never poll cannot grow unbounded.
func NewRedisRegistry(client *goredis.Client, ttl time.Duration) registry.Registry {
	return &redisRegistry{client: client, ttl: ttl}
}

func (r *redisRegistry) set(ctx context.Context, exec *domain.Execution) error {
	body, err := json.Marshal(exec)
	if err != nil {
		return fmt.Errorf("redis: marshal execution: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+exec.Handle, body, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set execution: %w", err)
	}
	return nil
}

func (r *redisRegistry) Create(ctx context.Context, exec *domain.Execution) error {
	return r.set(ctx, exec)
}

func (r *redisRegistry) Update(ctx context.Context, exec *domain.Execution) error {
	return r.set(ctx, exec)
}

func (r *redisRegistry) Get(ctx context.Context, handle string) (*domain.Execution, error) {
	body, err := r.client.Get(ctx, keyPrefix+handle).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrUnknownHandle
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get execution: %w", err)
	}

	exec := &domain.Execution{}
	if err := json.Unmarshal(body, exec); err != nil {
		return nil, fmt.Errorf("redis: unmarshal execution: %w", err)
	}
	return exec, nil
}

func (r *redisRegistry) Delete(ctx context.Context, handle string) error {
	if err := r.client.Del(ctx, keyPrefix+handle).Err(); err != nil {
		return fmt.Errorf("redis: delete execution: %w", err)
	}
	return nil
}
