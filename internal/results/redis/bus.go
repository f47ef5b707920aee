package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/results"
)

var _ results.Bus = (*redisBus)(nil)

const channelName = "genasl:results"

type redisBus struct {
	client *goredis.Client
	logger *zap.Logger
}

// NewRedisBus creates a Redis pub/sub result bus.
func NewRedisBus(client *goredis.Client, logger *zap.Logger) results.Bus {
	return &redisBus{client: client, logger: logger}
}

func (b *redisBus) Publish(ctx context.Context, d *results.Delivery) error {
	body, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("redis: marshal delivery: %w", err)
	}
	if err := b.client.Publish(ctx, channelName, body).Err(); err != nil {
		return fmt.Errorf("redis: publish delivery: %w", err)
	}
	return nil
}

func (b *redisBus) Subscribe(ctx context.Context, fn func(*results.Delivery)) error {
	sub := b.client.Subscribe(ctx, channelName)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("redis: subscription channel closed")
			}
			d := &results.Delivery{}
			if err := json.Unmarshal([]byte(msg.Payload), d); err != nil {
				b.logger.Error("Failed to unmarshal result delivery", zap.Error(err))
				continue
			}
			fn(d)
		}
	}
}
