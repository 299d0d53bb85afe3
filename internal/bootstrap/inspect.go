package bootstrap

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/socialseed/internal/domain/repository"
	"github.com/dropDatabas3/socialseed/internal/domain/types"
)

// Status estado observado de la colección objetivo.
type Status struct {
	Database     string            `yaml:"database"`
	Collection   string            `yaml:"collection"`
	Exists       bool              `yaml:"exists"`
	Count        int64             `yaml:"count"`
	Indexes      []types.IndexSpec `yaml:"indexes"`
	IndexPresent bool              `yaml:"index_present"`
}

// Inspect lee el estado sin modificar nada. Si la colección no existe
// retorna Exists=false sin error.
func Inspect(ctx context.Context, docs repository.DocumentStore, plan MessagesPlan) (Status, error) {
	st := Status{Database: plan.Database, Collection: plan.Collection}
	if docs == nil {
		return st, repository.ErrNotSupported
	}
	db := docs.Database(plan.Database)

	exists, err := db.HasCollection(ctx, plan.Collection)
	if err != nil {
		return st, fmt.Errorf("inspect: has collection: %w", err)
	}
	st.Exists = exists
	if !exists {
		return st, nil
	}

	if st.Count, err = db.Count(ctx, plan.Collection); err != nil {
		return st, fmt.Errorf("inspect: count: %w", err)
	}
	if st.Indexes, err = db.Indexes(ctx, plan.Collection); err != nil {
		return st, fmt.Errorf("inspect: indexes: %w", err)
	}
	for _, ix := range st.Indexes {
		if ix.SameKeys(plan.Index) {
			st.IndexPresent = true
			break
		}
	}
	return st, nil
}
