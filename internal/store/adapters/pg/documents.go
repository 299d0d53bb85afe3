package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/socialseed/internal/domain/repository"
	"github.com/dropDatabas3/socialseed/internal/domain/types"
)

type documentStore struct{ pool *pgxpool.Pool }

// Database mapea el nombre de base a un schema. El schema se crea recién
// al crear la primera colección.
func (s *documentStore) Database(name string) repository.DocumentDatabase {
	return &database{pool: s.pool, schema: name}
}

type database struct {
	pool   *pgxpool.Pool
	schema string
}

func (d *database) Name() string { return d.schema }

func (d *database) table(coll string) string {
	return pgx.Identifier{d.schema, coll}.Sanitize()
}

func (d *database) HasCollection(ctx context.Context, coll string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2
		)
	`
	var ok bool
	if err := d.pool.QueryRow(ctx, query, d.schema, coll).Scan(&ok); err != nil {
		return false, fmt.Errorf("postgres: has collection %s.%s: %w", d.schema, coll, err)
	}
	return ok, nil
}

// CreateCollection no usa IF NOT EXISTS: una tabla existente devuelve 42P07,
// que se traduce a ErrConflict.
func (d *database) CreateCollection(ctx context.Context, coll string) error {
	if _, err := d.pool.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS `+pgx.Identifier{d.schema}.Sanitize()); err != nil {
		return fmt.Errorf("postgres: create schema %s: %w", d.schema, err)
	}
	ddl := fmt.Sprintf(`CREATE TABLE %s (id BIGSERIAL PRIMARY KEY, doc JSONB NOT NULL)`, d.table(coll))
	if _, err := d.pool.Exec(ctx, ddl); err != nil {
		if pgCode(err) == codeDuplicateTable {
			return fmt.Errorf("postgres: collection %s.%s: %w", d.schema, coll, repository.ErrConflict)
		}
		return fmt.Errorf("postgres: create collection %s.%s: %w", d.schema, coll, err)
	}
	return nil
}

// indexExpr matchea la definición de columna que devuelve pg_get_indexdef
// para índices creados por CreateIndex: (doc ->> 'recipient'::text)
var indexExpr = regexp.MustCompile(`^\(*doc ->> '((?:[^']|'')+)'::text\)*$`)

func (d *database) Indexes(ctx context.Context, coll string) ([]types.IndexSpec, error) {
	const query = `
		SELECT ic.relname, pg_get_indexdef(i.indexrelid, 1, true), (i.indoption[0] & 1) = 1
		FROM pg_index i
		JOIN pg_class ic ON ic.oid = i.indexrelid
		JOIN pg_class t ON t.oid = i.indrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE n.nspname = $1 AND t.relname = $2
		  AND NOT i.indisprimary AND i.indnatts = 1
		ORDER BY ic.relname
	`
	rows, err := d.pool.Query(ctx, query, d.schema, coll)
	if err != nil {
		return nil, fmt.Errorf("postgres: list indexes %s.%s: %w", d.schema, coll, err)
	}
	defer rows.Close()

	var out []types.IndexSpec
	for rows.Next() {
		var name, expr string
		var desc bool
		if err := rows.Scan(&name, &expr, &desc); err != nil {
			return nil, fmt.Errorf("postgres: scan index: %w", err)
		}
		m := indexExpr.FindStringSubmatch(strings.TrimSpace(expr))
		if m == nil {
			continue
		}
		spec := types.IndexSpec{
			Field: strings.ReplaceAll(m[1], "''", "'"),
			Order: types.Ascending,
			Name:  strings.TrimPrefix(name, coll+"_"),
		}
		if desc {
			spec.Order = types.Descending
		}
		out = append(out, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate indexes: %w", err)
	}
	return out, nil
}

// CreateIndex crea "<coll>_<name>" porque en Postgres los nombres de índice
// son únicos por schema, no por tabla.
func (d *database) CreateIndex(ctx context.Context, coll string, spec types.IndexSpec) error {
	dir := "ASC"
	if spec.Order == types.Descending {
		dir = "DESC"
	}
	ddl := fmt.Sprintf(`CREATE INDEX %s ON %s ((doc ->> %s) %s)`,
		pgx.Identifier{coll + "_" + spec.IndexName()}.Sanitize(),
		d.table(coll),
		quoteLiteral(spec.Field),
		dir,
	)
	if _, err := d.pool.Exec(ctx, ddl); err != nil {
		if pgCode(err) == codeDuplicateTable {
			return fmt.Errorf("postgres: index %s on %s.%s: %w", spec.IndexName(), d.schema, coll, repository.ErrConflict)
		}
		return fmt.Errorf("postgres: create index %s on %s.%s: %w", spec.IndexName(), d.schema, coll, err)
	}
	return nil
}

// FindOne usa containment jsonb; una tabla inexistente se trata como vacía.
func (d *database) FindOne(ctx context.Context, coll string, filter types.Filter) (types.Document, error) {
	if filter == nil {
		filter = types.Filter{}
	}
	b, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode filter: %w", err)
	}
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE doc @> $1::jsonb LIMIT 1`, d.table(coll))
	var doc map[string]any
	err = d.pool.QueryRow(ctx, query, string(b)).Scan(&doc)
	switch {
	case errors.Is(err, pgx.ErrNoRows), pgCode(err) == codeUndefinedTable:
		return nil, repository.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("postgres: find one %s.%s: %w", d.schema, coll, err)
	}
	return types.Document(doc), nil
}

// InsertMany inserta fila por fila, sin transacción: ante un error quedan
// persistidas las filas anteriores.
func (d *database) InsertMany(ctx context.Context, coll string, docs []types.Document) (int, error) {
	query := fmt.Sprintf(`INSERT INTO %s (doc) VALUES ($1::jsonb)`, d.table(coll))
	for i, doc := range docs {
		b, err := json.Marshal(doc)
		if err != nil {
			return i, fmt.Errorf("postgres: encode document %d: %w", i, err)
		}
		if _, err := d.pool.Exec(ctx, query, string(b)); err != nil {
			return i, fmt.Errorf("postgres: insert into %s.%s: %w", d.schema, coll, err)
		}
	}
	return len(docs), nil
}

func (d *database) Count(ctx context.Context, coll string) (int64, error) {
	var n int64
	err := d.pool.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, d.table(coll))).Scan(&n)
	if pgCode(err) == codeUndefinedTable {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("postgres: count %s.%s: %w", d.schema, coll, err)
	}
	return n, nil
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
