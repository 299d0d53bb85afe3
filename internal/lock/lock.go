// Package lock provee locks con TTL para serializar el check-then-insert
// del seed entre runs concurrentes.
//
// Soporta:
//   - Memory (in-process, go-cache): serializa runs dentro del mismo proceso
//   - Redis (distribuido): serializa procesos que comparten el mismo Redis
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Locker adquiere y libera locks por key.
type Locker interface {
	// TryLock intenta tomar el lock sin bloquear. Retorna ok=false si otro
	// holder lo tiene. El token identifica al holder para Unlock.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)

	// Unlock libera el lock sólo si sigue perteneciendo a token.
	Unlock(ctx context.Context, key, token string) error

	// Close libera recursos del backend.
	Close() error
}

// Config configuración para crear un Locker.
type Config struct {
	Kind   string // "none" | "memory" | "redis"
	Addr   string // host:port de Redis
	DB     int
	Prefix string // Prefijo para todas las keys
}

// New crea un Locker según la configuración. Kind "none" (o vacío) retorna nil:
// el seed corre sin guard y conserva la carrera check-then-insert.
func New(cfg Config) (Locker, error) {
	switch cfg.Kind {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemory(cfg.Prefix), nil
	case "redis":
		if cfg.Addr == "" {
			return nil, fmt.Errorf("lock: redis addr is required")
		}
		return NewRedis(cfg), nil
	default:
		return nil, fmt.Errorf("lock: unknown kind %q", cfg.Kind)
	}
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("lock: token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
