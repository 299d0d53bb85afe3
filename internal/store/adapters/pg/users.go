package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/socialseed/internal/domain/repository"
)

// ─── UserRepository ───

type userRepo struct{ pool *pgxpool.Pool }

// EnsureSchema crea la tabla users que usa la app social: no agrega
// columnas para seguir siendo compatible con tablas ya existentes.
func (r *userRepo) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS users (
			id              SERIAL PRIMARY KEY,
			username        VARCHAR NOT NULL UNIQUE,
			hashed_password VARCHAR NOT NULL
		)
	`
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: ensure users table: %w", err)
	}
	return nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*repository.User, error) {
	const query = `SELECT id, username, hashed_password FROM users WHERE username = $1 LIMIT 1`
	var u repository.User
	err := r.pool.QueryRow(ctx, query, username).Scan(&u.ID, &u.Username, &u.HashedPassword)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get user %q: %w", username, err)
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *repository.User) error {
	const query = `INSERT INTO users (username, hashed_password) VALUES ($1, $2) RETURNING id`
	if err := r.pool.QueryRow(ctx, query, u.Username, u.HashedPassword).Scan(&u.ID); err != nil {
		if pgCode(err) == codeUniqueViolation {
			return fmt.Errorf("postgres: user %q: %w", u.Username, repository.ErrConflict)
		}
		return fmt.Errorf("postgres: create user %q: %w", u.Username, err)
	}
	return nil
}
