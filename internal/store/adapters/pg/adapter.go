// Package pg implementa el adapter PostgreSQL sobre pgx/v5.
//
// Expone:
//   - DocumentStore: cada "database" es un schema y cada colección una tabla
//     (id bigserial, doc jsonb). Los índices son expresiones btree sobre doc->>'campo'.
//   - UserRepository: la tabla users (id, username, hashed_password).
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/socialseed/internal/domain/repository"
	store "github.com/dropDatabas3/socialseed/internal/store"
)

func init() {
	store.RegisterAdapter(&pgAdapter{})
}

// Códigos SQLSTATE que el adapter traduce.
const (
	codeUniqueViolation = "23505"
	codeDuplicateTable  = "42P07" // también aplica a índices duplicados
	codeUndefinedTable  = "42P01"
)

type pgAdapter struct{}

func (a *pgAdapter) Name() string { return "postgres" }

func (a *pgAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres: DSN is required")
	}
	pool, err := openPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &pgConnection{pool: pool}, nil
}

// openPool crea un *pgxpool.Pool aplicando parámetros básicos.
// Nota: pgxpool no tiene MaxOpen/MaxIdle; MaxOpenConns → MaxConns y
// MaxIdleConns → MinConns.
func openPool(ctx context.Context, ac store.AdapterConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(ac.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse pool config: %w", err)
	}
	if ac.MaxOpenConns > 0 {
		cfg.MaxConns = int32(ac.MaxOpenConns)
	}
	if ac.MaxIdleConns > 0 {
		cfg.MinConns = int32(ac.MaxIdleConns)
	}
	if ac.ConnMaxLifetime > 0 {
		cfg.MaxConnLifetime = ac.ConnMaxLifetime
		cfg.MaxConnIdleTime = ac.ConnMaxLifetime
	}
	if ac.ConnectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = ac.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	// Conectar para fallar rápido si hay problema
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

type pgConnection struct {
	pool *pgxpool.Pool
}

func (c *pgConnection) Name() string                   { return "postgres" }
func (c *pgConnection) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }
func (c *pgConnection) Close() error                   { c.pool.Close(); return nil }

func (c *pgConnection) Documents() repository.DocumentStore { return &documentStore{pool: c.pool} }
func (c *pgConnection) Users() repository.UserRepository    { return &userRepo{pool: c.pool} }

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
