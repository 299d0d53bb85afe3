// Package store provee el registry de adaptadores de almacenamiento.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/socialseed/internal/domain/repository"
)

// Adapter representa un adaptador de almacenamiento capaz de abrir conexiones.
type Adapter interface {
	// Name retorna el nombre del adapter (ej: "mongo", "postgres", "memory").
	Name() string

	// Connect establece conexión con el almacenamiento.
	Connect(ctx context.Context, cfg AdapterConfig) (Connection, error)
}

// Connection representa una conexión activa.
type Connection interface {
	// Name retorna el nombre del adapter.
	Name() string

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close cierra la conexión.
	Close() error

	// ─── Repositorios (nil si no soportado) ───

	Documents() repository.DocumentStore
	Users() repository.UserRepository
}

// AdapterConfig configuración para conectar a un almacenamiento.
type AdapterConfig struct {
	// Name del adapter: "mongo", "postgres", "memory"
	Name string

	// DSN connection string (URI de Mongo o DSN de Postgres)
	DSN string

	// ConnectTimeout acota el dial + ping inicial. 0 = default del driver.
	ConnectTimeout time.Duration

	// Pool settings (para Postgres)
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ─── Registry Global ───

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
	aliases    = map[string]string{
		"mongodb":    "mongo",
		"pg":         "postgres",
		"postgresql": "postgres",
		"mem":        "memory",
	}
)

// RegisterAdapter registra un adapter en el registry global.
// Llamar en init() de cada adapter.
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("adapter: %q already registered", name))
	}
	adapters[name] = a
}

// Canonical resuelve alias de driver ("pg" → "postgres", "mongodb" → "mongo").
func Canonical(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if c, ok := aliases[name]; ok {
		return c
	}
	return name
}

// GetAdapter obtiene un adapter por nombre (acepta alias).
func GetAdapter(name string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[Canonical(name)]
	return a, ok
}

// ListAdapters retorna los nombres de todos los adapters registrados, ordenados.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenAdapter abre una conexión usando el adapter especificado en la config.
func OpenAdapter(ctx context.Context, cfg AdapterConfig) (Connection, error) {
	a, ok := GetAdapter(cfg.Name)
	if !ok {
		return nil, fmt.Errorf("adapter: %q not registered (available: %v)", cfg.Name, ListAdapters())
	}
	return a.Connect(ctx, cfg)
}

// DocumentsOf retorna el DocumentStore de la conexión o ErrNotSupported.
func DocumentsOf(conn Connection) (repository.DocumentStore, error) {
	if ds := conn.Documents(); ds != nil {
		return ds, nil
	}
	return nil, fmt.Errorf("adapter %s: documents: %w", conn.Name(), repository.ErrNotSupported)
}

// UsersOf retorna el UserRepository de la conexión o ErrNotSupported.
func UsersOf(conn Connection) (repository.UserRepository, error) {
	if ur := conn.Users(); ur != nil {
		return ur, nil
	}
	return nil, fmt.Errorf("adapter %s: users: %w", conn.Name(), repository.ErrNotSupported)
}
