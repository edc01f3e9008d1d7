package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mmhmddd/qatra-8eth-sub000/pkg/config"
)

func TestAddrDefaults(t *testing.T) {
	assert.Equal(t, "localhost:6379", Addr(config.RedisConfig{}))
	assert.Equal(t, "cache.internal:6380", Addr(config.RedisConfig{Host: "cache.internal", Port: 6380}))
}

func TestNewRedisFailsWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client, err := NewRedis(ctx, config.RedisConfig{Host: "127.0.0.1", Port: 1}, nil)

	assert.Error(t, err)
	assert.Nil(t, client)
}
