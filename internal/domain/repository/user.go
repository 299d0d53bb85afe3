package repository

import "context"

// User representa una cuenta de la tabla users (id, username, hashed_password).
type User struct {
	ID             int64
	Username       string
	HashedPassword string
}

// UserRepository define las operaciones sobre usuarios que usa el seed de admin.
type UserRepository interface {
	// EnsureSchema crea la tabla/colección de usuarios si falta.
	EnsureSchema(ctx context.Context) error

	// GetByUsername busca un usuario por username.
	// Retorna ErrNotFound si no existe.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Create inserta el usuario y completa ID.
	// Retorna ErrConflict si el username ya existe.
	Create(ctx context.Context, u *User) error
}
