package journal

import (
	"context"
	"fmt"
	"sync/atomic"

	redis "github.com/redis/go-redis/v9"
)

// ListClient is the subset of Redis list commands the journal needs.
type ListClient interface {
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Del(ctx context.Context, key string) error
	Close() error
}

// GoRedisList implements ListClient on github.com/redis/go-redis/v9.
type GoRedisList struct {
	c *redis.Client
}

// NewGoRedisList connects lazily to the Redis server at addr.
func NewGoRedisList(addr string) *GoRedisList {
	return &GoRedisList{c: redis.NewClient(&redis.Options{Addr: addr})}
}

// Ping checks the connection.
func (g *GoRedisList) Ping(ctx context.Context) error {
	return g.c.Ping(ctx).Err()
}

func (g *GoRedisList) RPush(ctx context.Context, key string, values ...string) error {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return g.c.RPush(ctx, key, args...).Err()
}

func (g *GoRedisList) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return g.c.LRange(ctx, key, start, stop).Result()
}

func (g *GoRedisList) Del(ctx context.Context, key string) error {
	return g.c.Del(ctx, key).Err()
}

func (g *GoRedisList) Close() error {
	return g.c.Close()
}

// RedisStore keeps records in a Redis list, one JSON document per element.
type RedisStore struct {
	client ListClient
	key    string
	closed atomic.Bool
}

// NewRedisStore returns a store writing to the list at key.
func NewRedisStore(client ListClient, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Key returns the Redis list key.
func (s *RedisStore) Key() string {
	return s.key
}

// Append pushes r onto the tail of the list.
func (s *RedisStore) Append(ctx context.Context, r Record) error {
	if s.closed.Load() {
		return ErrClosed
	}
	line, err := Encode(r)
	if err != nil {
		return err
	}
	if err := s.client.RPush(ctx, s.key, line); err != nil {
		return fmt.Errorf("journal rpush %s: %w", s.key, err)
	}
	return nil
}

// Records reads and decodes the whole list.
func (s *RedisStore) Records(ctx context.Context) ([]Record, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	lines, err := s.client.LRange(ctx, s.key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("journal lrange %s: %w", s.key, err)
	}
	return decodeAll(lines)
}

// Clear deletes the list.
func (s *RedisStore) Clear(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := s.client.Del(ctx, s.key); err != nil {
		return fmt.Errorf("journal del %s: %w", s.key, err)
	}
	return nil
}

// Close closes the underlying client once.
func (s *RedisStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.client.Close()
}
