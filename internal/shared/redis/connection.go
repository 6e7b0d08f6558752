package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"empires-server/internal/shared/config"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 5 * time.Second
	ioTimeout   = 3 * time.Second
)

// Client is the shared Redis connection. Every key the server writes goes
// through Key so deployments sharing one Redis stay apart.
type Client struct {
	*redis.Client
	prefix string
}

// Connect opens the connection described by cfg. A disabled config returns a
// nil client and callers fall back to process-local state.
func Connect(cfg config.RedisConfig, logger *slog.Logger) (*Client, error) {
	logger = logger.With("component", "redis", "operation", "connect")

	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-memory fallback")
		return nil, nil
	}

	opts, err := Options(cfg)
	if err != nil {
		logger.Error("Failed to build Redis options", "error", err)
		return nil, err
	}
	logger.Debug("Connecting to Redis", "addr", opts.Addr, "db", opts.DB, "pool_size", opts.PoolSize)

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to ping Redis", "error", err)
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	client := NewClient(rdb, cfg.KeyPrefix)
	logger.Info("Redis connection established successfully", "key_prefix", client.prefix)
	return client, nil
}

// Options translates cfg into client options. A URL wins over host and port,
// but the pool size always comes from cfg.
func Options(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = ioTimeout
	opts.WriteTimeout = ioTimeout
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
		opts.MinIdleConns = max(1, cfg.PoolSize/5)
	}
	return opts, nil
}

// NewClient wraps an existing connection under prefix.
func NewClient(rdb *redis.Client, prefix string) *Client {
	return &Client{Client: rdb, prefix: strings.Trim(prefix, ":")}
}

// Key joins parts under the client's namespace: Key("battle", "ab12") is
// "empires:battle:ab12" for the prefix "empires".
func (c *Client) Key(parts ...string) string {
	if c.prefix == "" {
		return strings.Join(parts, ":")
	}
	return c.prefix + ":" + strings.Join(parts, ":")
}

func (c *Client) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
