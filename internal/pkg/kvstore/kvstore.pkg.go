// Package kvstore is the string key/value store invoice counters live in.
package kvstore

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"order-ledger/internal/pkg/redis"
)

type Store interface {
	// Get returns ok=false when key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Incr atomically adds one to the integer at key, starting from 0.
	Incr(ctx context.Context, key string) (int64, error)
}

type redisStore struct {
	rds redis.IRedis
}

// NewRedis stores keys in redis without expiry.
func NewRedis(rds redis.IRedis) Store {
	return &redisStore{rds: rds}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.rds.Get(ctx, key)
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	return s.rds.Set(ctx, key, value, 0)
}

func (s *redisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.rds.Incr(ctx, key)
}

// Memory is a process-local Store.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: map[string]string{}}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	if v, ok := m.data[key]; ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value of %s is not an integer: %w", key, err)
		}
		n = parsed
	}
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}
