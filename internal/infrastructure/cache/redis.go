package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// OpenRedis connects to the idempotency store and pings it once.
func OpenRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{
		Addr:        addr,
		DB:          db,
		DialTimeout: pingTimeout,
	})
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := r.Ping(pctx).Err(); err != nil {
		_ = r.Close()
		return nil, eris.Wrapf(err, "redis: ping %s", addr)
	}
	zap.L().Info("redis connected", zap.String("addr", addr), zap.Int("db", db))
	return r, nil
}
