package lock

import (
	"context"
	"fmt"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// releaseScript borra la key sólo si el valor sigue siendo el token del holder.
var releaseScript = rdb.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis es un Locker distribuido (SET NX PX + compare-and-delete).
type Redis struct {
	c      rdb.UniversalClient
	prefix string
}

// NewRedis crea un Locker sobre un cliente Redis nuevo.
func NewRedis(cfg Config) *Redis {
	return &Redis{
		c:      rdb.NewClient(&rdb.Options{Addr: cfg.Addr, DB: cfg.DB}),
		prefix: cfg.Prefix,
	}
}

// NewRedisWithClient usa un cliente existente (útil para tests y pools compartidos).
func NewRedisWithClient(c rdb.UniversalClient, prefix string) *Redis {
	return &Redis{c: c, prefix: prefix}
}

func (r *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token, err := newToken()
	if err != nil {
		return "", false, err
	}
	ok, err := r.c.SetNX(ctx, r.prefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("lock: redis setnx %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (r *Redis) Unlock(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, r.c, []string{r.prefix + key}, token).Err(); err != nil && err != rdb.Nil {
		return fmt.Errorf("lock: redis release %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error { return r.c.Close() }
