package lock

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory es un Locker in-process sobre go-cache. Add falla si la key ya
// existe y no expiró, lo que da la semántica de "set if not exists".
type Memory struct {
	mu     sync.Mutex
	c      *gocache.Cache
	prefix string
}

// NewMemory crea un Locker en memoria.
func NewMemory(prefix string) *Memory {
	return &Memory{c: gocache.New(gocache.NoExpiration, time.Minute), prefix: prefix}
}

func (m *Memory) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	token, err := newToken()
	if err != nil {
		return "", false, err
	}
	// mu también cubre Add: Unlock hace Get+Delete y no debe intercalarse
	// con un Add que tome una key recién vencida.
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.c.Add(m.prefix+key, token, ttl); err != nil {
		return "", false, nil
	}
	return token, true, nil
}

// Unlock borra la key sólo si sigue guardando token.
func (m *Memory) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.c.Get(m.prefix + key); ok && v.(string) == token {
		m.c.Delete(m.prefix + key)
	}
	return nil
}

func (m *Memory) Close() error {
	m.c.Flush()
	return nil
}
