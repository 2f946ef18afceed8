package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"order-ledger/internal/pkg/logger"

	_redis "github.com/redis/go-redis/v9"
)

func Setup(ctx context.Context, config *Config) (*Client, error) {
	clientCtx, cancel := context.WithCancel(ctx)

	r := &Client{
		cancel: cancel,
		ctx:    clientCtx,
		config: config,
	}

	if err := r.connect(); err != nil {
		cancel()
		logger.Error.Println(err)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	go r.reconnectHandler()

	return r, nil
}

func (r *Client) connect() error {
	r.Client = _redis.NewClient(&_redis.Options{
		Addr:     fmt.Sprintf("%s:%d", r.config.Host, r.config.Port),
		Username: r.config.Username,
		Password: r.config.Password,
		PoolSize: r.config.PoolSize,
		DB:       r.config.DB,
	})

	if err := r.Client.Ping(r.ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	return nil
}

func (r *Client) reconnect() error {
	if err := r.Client.Ping(r.ctx).Err(); err != nil {
		return r.connect()
	}
	return nil
}

func (r *Client) reconnectHandler() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			logger.Info.Println("Redis reconnect handler shutting down...")
			return
		case <-ticker.C:
			err := r.Client.Ping(r.ctx).Err()
			if err == nil {
				continue
			}
			logger.Warning.Printf("Redis connection lost: %v. Attempting to reconnect...", err)

			for attempt := 1; r.ctx.Err() == nil; attempt++ {
				logger.Warning.Printf("Reconnect attempt #%d...", attempt)
				if err = r.reconnect(); err == nil {
					logger.Info.Println("Reconnected to redis.")
					break
				}
				logger.Warning.Printf("Reconnect attempt failed: %v", err)
				time.Sleep(time.Duration(attempt) * time.Second)
			}
		}
	}
}

// Close gracefully shuts down the redis connection.
func (r *Client) Close() error {
	r.cancel()
	return r.Client.Close()
}

// Ping reports whether the server answers.
func (r *Client) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// Set stores a raw string value. Zero expiration keeps the key forever.
func (r *Client) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	if err := r.Client.Set(ctx, key, value, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Get retrieves the value of a key; ok is false when the key does not exist.
func (r *Client) Get(ctx context.Context, key string) (string, bool, error) {
	result, err := r.Client.Get(ctx, key).Result()
	if errors.Is(err, NilType) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return result, true, nil
}

// Incr atomically increments the integer stored at key and returns the new value.
func (r *Client) Incr(ctx context.Context, key string) (int64, error) {
	v, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment key %s: %w", key, err)
	}
	return v, nil
}

// Del deletes a key from redis.
func (r *Client) Del(ctx context.Context, key string) error {
	if err := r.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Expire sets a timeout on a key.
func (r *Client) Expire(ctx context.Context, key string, expiration time.Duration) error {
	if err := r.Client.Expire(ctx, key, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set expiration on key %s: %w", key, err)
	}
	return nil
}
