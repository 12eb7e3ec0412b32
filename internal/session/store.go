// AngelaMos | 2026
// store.go

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
)

type Store interface {
	Get(ctx context.Context, token string) (*Session, error)
	Put(ctx context.Context, token string, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore keys sessions by the sha256 of the cookie token so a Redis
// dump does not leak usable cookies.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func key(token string) string {
	return "session:" + core.HashToken(token)
}

func (s *redisStore) Get(ctx context.Context, token string) (*Session, error) {
	raw, err := s.client.Get(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	sess.token = token

	return &sess, nil
}

func (s *redisStore) Put(
	ctx context.Context,
	token string,
	sess *Session,
	ttl time.Duration,
) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.client.Set(ctx, key(token), raw, ttl).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}

	return nil
}

func (s *redisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, key(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
