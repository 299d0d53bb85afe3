package repository

import (
	"context"

	"github.com/dropDatabas3/socialseed/internal/domain/types"
)

// DocumentStore es el punto de entrada a un almacenamiento orientado a documentos.
type DocumentStore interface {
	// Database selecciona una base por nombre. No falla si no existe:
	// la creación es lazy en el store subyacente.
	Database(name string) DocumentDatabase
}

// DocumentDatabase agrupa las operaciones que consume el seed initializer.
type DocumentDatabase interface {
	// Name retorna el nombre de la base seleccionada.
	Name() string

	// HasCollection verifica si la colección existe.
	HasCollection(ctx context.Context, collection string) (bool, error)

	// CreateCollection crea la colección.
	// Retorna ErrConflict si ya existe.
	CreateCollection(ctx context.Context, collection string) error

	// Indexes lista los índices secundarios de la colección (sin el de _id / PK).
	Indexes(ctx context.Context, collection string) ([]types.IndexSpec, error)

	// CreateIndex crea un índice sobre un campo.
	// Retorna ErrConflict si choca con un índice existente.
	CreateIndex(ctx context.Context, collection string, spec types.IndexSpec) error

	// FindOne retorna un documento que matchee el filtro.
	// Retorna ErrNotFound si no hay ninguno.
	FindOne(ctx context.Context, collection string, filter types.Filter) (types.Document, error)

	// InsertMany inserta los documentos en orden y retorna cuántos se insertaron.
	// Ante un error a mitad de camino, los ya insertados quedan persistidos.
	InsertMany(ctx context.Context, collection string, docs []types.Document) (int, error)

	// Count retorna la cantidad de documentos de la colección.
	Count(ctx context.Context, collection string) (int64, error)
}
