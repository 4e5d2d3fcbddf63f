package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPingTimeout = 2 * time.Second

// ErrRedisDisabled - redis.url не задан, кэш реквизитов не используется
var ErrRedisDisabled = errors.New("redis is not configured")

// RedisOptions - подключение для кэша реквизитов компании
type RedisOptions struct {
	URL         string
	PingTimeout time.Duration // 0 = defaultPingTimeout
}

// Connect открывает клиент по URL и проверяет его PING-ом.
// Если PING не прошел, клиент закрывается.
func Connect(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, ErrRedisDisabled
	}

	parsed, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	parsed.DialTimeout = timeout

	rdb := redis.NewClient(parsed)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping %s: %w", parsed.Addr, err)
	}

	return rdb, nil
}
