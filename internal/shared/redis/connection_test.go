package redis

import (
	"log/slog"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empires-server/internal/shared/config"
)

func TestOptions_HostAndPort(t *testing.T) {
	opts, err := Options(config.RedisConfig{Host: "cache", Port: "6380", Password: "pw", DB: 2, PoolSize: 20})
	require.NoError(t, err)

	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, 4, opts.MinIdleConns)
	assert.Equal(t, dialTimeout, opts.DialTimeout)
	assert.Equal(t, ioTimeout, opts.ReadTimeout)
}

func TestOptions_URLWins(t *testing.T) {
	opts, err := Options(config.RedisConfig{URL: "redis://:secret@redis.internal:6390/5", Host: "ignored", Port: "1", PoolSize: 3})
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6390", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 5, opts.DB)
	assert.Equal(t, 3, opts.PoolSize)
	assert.Equal(t, 1, opts.MinIdleConns)
}

func TestOptions_BadURL(t *testing.T) {
	_, err := Options(config.RedisConfig{URL: "http://nope"})
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}

func TestConnect_Disabled(t *testing.T) {
	client, err := Connect(config.RedisConfig{Enabled: false}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.NoError(t, client.Close())
}

func TestClient_Key(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer rdb.Close()

	assert.Equal(t, "empires:battle:ab12", NewClient(rdb, "empires").Key("battle", "ab12"))
	assert.Equal(t, "staging:battle:ab12", NewClient(rdb, "staging:").Key("battle", "ab12"))
	assert.Equal(t, "battle:ab12", NewClient(rdb, "").Key("battle", "ab12"))
}
