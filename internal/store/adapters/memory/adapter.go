// Package memory implementa un adapter en memoria del store.
//
// Cumple el mismo contrato que los adapters de Mongo y Postgres y se usa
// para dry-runs (--driver memory) y como fake en los tests. Incluye hooks de
// fault injection para reproducir inserciones parciales y carreras
// check-then-insert de forma determinística.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dropDatabas3/socialseed/internal/domain/repository"
	"github.com/dropDatabas3/socialseed/internal/domain/types"
	store "github.com/dropDatabas3/socialseed/internal/store"
)

func init() {
	store.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return "memory" }

// Connect retorna un Store vacío. Si cfg.DSN no está vacío, el Store es
// compartido por todas las conexiones del proceso con ese mismo DSN.
func (a *memoryAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	if cfg.DSN == "" {
		return New(), nil
	}
	sharedMu.Lock()
	defer sharedMu.Unlock()
	s, ok := shared[cfg.DSN]
	if !ok {
		s = New()
		shared[cfg.DSN] = s
	}
	return s, nil
}

var (
	sharedMu sync.Mutex
	shared   = map[string]*Store{}
)

// Option configura un Store.
type Option func(*Store)

// WithInsertFault hace que InsertMany falle con err después de insertar
// `after` documentos (acumulado entre llamadas).
func WithInsertFault(after int, err error) Option {
	return func(s *Store) {
		s.failAfter = after
		s.failErr = err
	}
}

// WithBeforeInsert registra un hook que corre al entrar a InsertMany,
// antes de tomar el lock interno.
func WithBeforeInsert(fn func()) Option {
	return func(s *Store) { s.beforeInsert = fn }
}

// WithFailure hace que la operación nombrada ("create_collection",
// "create_index", "find_one", "has_collection", "indexes") retorne err.
func WithFailure(op string, err error) Option {
	return func(s *Store) { s.failures[op] = err }
}

// Store es un almacenamiento en memoria seguro para uso concurrente.
type Store struct {
	mu       sync.Mutex
	dbs      map[string]map[string]*collection
	users    map[string]repository.User
	usersOK  bool
	nextUser int64

	inserted     int
	failAfter    int
	failErr      error
	beforeInsert func()
	failures     map[string]error
}

type collection struct {
	docs    []types.Document
	indexes []types.IndexSpec
}

// New crea un Store vacío.
func New(opts ...Option) *Store {
	s := &Store{
		dbs:       map[string]map[string]*collection{},
		users:     map[string]repository.User{},
		failAfter: -1,
		failures:  map[string]error{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Name() string                   { return "memory" }
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

func (s *Store) Documents() repository.DocumentStore { return s }
func (s *Store) Users() repository.UserRepository    { return &userRepo{s: s} }

// Database implementa repository.DocumentStore. La base se materializa
// recién con la primera escritura.
func (s *Store) Database(name string) repository.DocumentDatabase {
	return &database{s: s, name: name}
}

// Snapshot retorna una copia de los documentos de una colección.
func (s *Store) Snapshot(db, coll string) []types.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(db, coll)
	if c == nil {
		return nil
	}
	out := make([]types.Document, len(c.docs))
	for i, d := range c.docs {
		out[i] = clone(d)
	}
	return out
}

// Seed inserta documentos sin pasar por hooks ni fault injection.
func (s *Store) Seed(db, coll string, docs ...types.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.ensure(db, coll)
	for _, d := range docs {
		c.docs = append(c.docs, clone(d))
	}
}

func (s *Store) lookup(db, coll string) *collection {
	cs, ok := s.dbs[db]
	if !ok {
		return nil
	}
	return cs[coll]
}

func (s *Store) ensure(db, coll string) *collection {
	cs, ok := s.dbs[db]
	if !ok {
		cs = map[string]*collection{}
		s.dbs[db] = cs
	}
	c, ok := cs[coll]
	if !ok {
		c = &collection{}
		cs[coll] = c
	}
	return c
}

func (s *Store) fail(op string) error {
	if err, ok := s.failures[op]; ok {
		return fmt.Errorf("memory: %s: %w", op, err)
	}
	return nil
}

func clone(d types.Document) types.Document {
	out := make(types.Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// ─── DocumentDatabase ───

type database struct {
	s    *Store
	name string
}

func (d *database) Name() string { return d.name }

func (d *database) HasCollection(ctx context.Context, coll string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if err := d.s.fail("has_collection"); err != nil {
		return false, err
	}
	return d.s.lookup(d.name, coll) != nil, nil
}

func (d *database) CreateCollection(ctx context.Context, coll string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if err := d.s.fail("create_collection"); err != nil {
		return err
	}
	if d.s.lookup(d.name, coll) != nil {
		return fmt.Errorf("memory: collection %s.%s: %w", d.name, coll, repository.ErrConflict)
	}
	d.s.ensure(d.name, coll)
	return nil
}

func (d *database) Indexes(ctx context.Context, coll string) ([]types.IndexSpec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if err := d.s.fail("indexes"); err != nil {
		return nil, err
	}
	c := d.s.lookup(d.name, coll)
	if c == nil {
		return nil, nil
	}
	return append([]types.IndexSpec(nil), c.indexes...), nil
}

func (d *database) CreateIndex(ctx context.Context, coll string, spec types.IndexSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if err := d.s.fail("create_index"); err != nil {
		return err
	}
	c := d.s.ensure(d.name, coll)
	for _, ix := range c.indexes {
		sameName := ix.IndexName() == spec.IndexName()
		sameKeys := ix.SameKeys(spec)
		switch {
		case sameName && sameKeys:
			return nil
		case sameName || sameKeys:
			return fmt.Errorf("memory: index %s on %s.%s: %w", spec.IndexName(), d.name, coll, repository.ErrConflict)
		}
	}
	spec.Name = spec.IndexName()
	c.indexes = append(c.indexes, spec)
	return nil
}

func (d *database) FindOne(ctx context.Context, coll string, filter types.Filter) (types.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if err := d.s.fail("find_one"); err != nil {
		return nil, err
	}
	if c := d.s.lookup(d.name, coll); c != nil {
		for _, doc := range c.docs {
			if filter.Matches(doc) {
				return clone(doc), nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (d *database) InsertMany(ctx context.Context, coll string, docs []types.Document) (int, error) {
	if d.s.beforeInsert != nil {
		d.s.beforeInsert()
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	c := d.s.ensure(d.name, coll)
	n := 0
	for _, doc := range docs {
		if d.s.failAfter >= 0 && d.s.inserted >= d.s.failAfter {
			return n, fmt.Errorf("memory: insert into %s.%s: %w", d.name, coll, d.s.failErr)
		}
		c.docs = append(c.docs, clone(doc))
		d.s.inserted++
		n++
	}
	return n, nil
}

func (d *database) Count(ctx context.Context, coll string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	c := d.s.lookup(d.name, coll)
	if c == nil {
		return 0, nil
	}
	return int64(len(c.docs)), nil
}

// ─── UserRepository ───

type userRepo struct{ s *Store }

var errNoUsersTable = fmt.Errorf("memory: users table does not exist")

func (r *userRepo) EnsureSchema(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.usersOK = true
	return nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.usersOK {
		return nil, errNoUsersTable
	}
	u, ok := r.s.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *repository.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.usersOK {
		return errNoUsersTable
	}
	if _, exists := r.s.users[u.Username]; exists {
		return fmt.Errorf("memory: user %q: %w", u.Username, repository.ErrConflict)
	}
	r.s.nextUser++
	u.ID = r.s.nextUser
	r.s.users[u.Username] = *u
	return nil
}
