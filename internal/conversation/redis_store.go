package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"consumo_wpp_backend/internal/consumption"
)

// RedisStore persists conversation history in Redis with a sliding
// TTL. Expired conversations raise keyspace notifications that the
// expiry listener turns into farewell messages.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, phone string) ([]consumption.Turn, error) {
	raw, err := s.client.Get(ctx, MemoryKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", phone, err)
	}

	var history []consumption.Turn
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", phone, err)
	}

	// reading counts as activity
	if err := s.client.Expire(ctx, MemoryKey(phone), s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("refresh conversation ttl %s: %w", phone, err)
	}
	return history, nil
}

func (s *RedisStore) Save(ctx context.Context, phone string, history []consumption.Turn) error {
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", phone, err)
	}
	if err := s.client.Set(ctx, MemoryKey(phone), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save conversation %s: %w", phone, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, phone string) error {
	if err := s.client.Del(ctx, MemoryKey(phone)).Err(); err != nil {
		return fmt.Errorf("clear conversation %s: %w", phone, err)
	}
	return nil
}
