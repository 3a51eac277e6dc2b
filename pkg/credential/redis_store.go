package credential

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store with a single Redis key.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	owned  bool
}

// NewRedisStore creates a store writing to key. A zero ttl keeps the token
// until it is cleared. The caller keeps ownership of client.
func NewRedisStore(client redis.UniversalClient, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", errors.Join(ErrStorage, err)
	}
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

func (s *RedisStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// Close closes the client when the store opened it itself (see New).
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
