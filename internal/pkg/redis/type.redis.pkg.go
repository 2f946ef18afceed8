package redis

import (
	"context"
	"time"

	_redis "github.com/redis/go-redis/v9"
)

// NilType is returned by go-redis when a key does not exist.
var NilType = _redis.Nil

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	PoolSize int
	DB       int
}

type Client struct {
	Client *_redis.Client
	ctx    context.Context
	cancel context.CancelFunc
	config *Config
}

type IRedis interface {
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	Del(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Close() error
}
