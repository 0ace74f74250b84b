package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"uno-arbiter/server/engine"
)

const keyPrefix = "uno:session:"

// RedisStore keeps session snapshots in Redis with a TTL, for deployments
// where the service itself must stay stateless.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects and pings before returning; a dead Redis is a boot
// error, not a per-request surprise.
func NewRedisStore(addr string, db int, ttl time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

func (s *RedisStore) Create(ctx context.Context, state *engine.GameState) (string, error) {
	id := uuid.NewString()
	if err := s.set(ctx, id, state); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*engine.GameState, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var state engine.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", id, err)
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, state *engine.GameState) error {
	exists, err := s.rdb.Exists(ctx, keyPrefix+id).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return s.set(ctx, id, state)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Len(ctx context.Context) (int, error) {
	var count int
	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	return count, iter.Err()
}

func (s *RedisStore) set(ctx context.Context, id string, state *engine.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	return s.rdb.Set(ctx, keyPrefix+id, data, s.ttl).Err()
}
