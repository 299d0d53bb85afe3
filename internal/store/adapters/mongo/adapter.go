// Package mongo implementa el adapter MongoDB sobre go.mongodb.org/mongo-driver.
//
// Sólo expone el DocumentStore; los usuarios viven en Postgres.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/dropDatabas3/socialseed/internal/domain/repository"
	"github.com/dropDatabas3/socialseed/internal/domain/types"
	store "github.com/dropDatabas3/socialseed/internal/store"
)

func init() {
	store.RegisterAdapter(&mongoAdapter{})
}

const defaultConnectTimeout = 10 * time.Second

// Códigos de error del servidor que indican "ya existe".
const (
	codeNamespaceExists       = 48
	codeIndexOptionsConflict  = 85
	codeIndexKeySpecsConflict = 86
)

type mongoAdapter struct{}

func (a *mongoAdapter) Name() string { return "mongo" }

func (a *mongoAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("mongo: URI is required")
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.DSN).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	if cfg.MaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxOpenConns))
	}
	if cfg.MaxIdleConns > 0 {
		opts.SetMinPoolSize(uint64(cfg.MaxIdleConns))
	}
	if cfg.ConnMaxLifetime > 0 {
		opts.SetMaxConnIdleTime(cfg.ConnMaxLifetime)
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	// Conectar para fallar rápido si hay problema
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return &mongoConnection{client: client}, nil
}

type mongoConnection struct {
	client *mongo.Client
}

func (c *mongoConnection) Name() string { return "mongo" }

func (c *mongoConnection) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *mongoConnection) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

func (c *mongoConnection) Documents() repository.DocumentStore { return c }
func (c *mongoConnection) Users() repository.UserRepository    { return nil }

// Database es lazy: Mongo crea la base con la primera escritura.
func (c *mongoConnection) Database(name string) repository.DocumentDatabase {
	return &database{db: c.client.Database(name)}
}

type database struct {
	db *mongo.Database
}

func (d *database) Name() string { return d.db.Name() }

func (d *database) HasCollection(ctx context.Context, coll string) (bool, error) {
	names, err := d.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: coll}})
	if err != nil {
		return false, fmt.Errorf("mongo: list collections %s: %w", d.db.Name(), err)
	}
	return len(names) > 0, nil
}

func (d *database) CreateCollection(ctx context.Context, coll string) error {
	if err := d.db.CreateCollection(ctx, coll); err != nil {
		if hasCode(err, codeNamespaceExists) {
			return fmt.Errorf("mongo: collection %s.%s: %w", d.db.Name(), coll, repository.ErrConflict)
		}
		return fmt.Errorf("mongo: create collection %s.%s: %w", d.db.Name(), coll, err)
	}
	return nil
}

// Indexes lista los índices de un solo campo con dirección numérica.
// El índice de _id y los compuestos/text/hashed se omiten.
func (d *database) Indexes(ctx context.Context, coll string) ([]types.IndexSpec, error) {
	cur, err := d.db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("mongo: list indexes %s.%s: %w", d.db.Name(), coll, err)
	}
	defer cur.Close(ctx)

	var out []types.IndexSpec
	for cur.Next(ctx) {
		var ix struct {
			Name string `bson:"name"`
			Key  bson.D `bson:"key"`
		}
		if err := cur.Decode(&ix); err != nil {
			return nil, fmt.Errorf("mongo: decode index: %w", err)
		}
		if len(ix.Key) != 1 || ix.Key[0].Key == "_id" {
			continue
		}
		order, ok := toOrder(ix.Key[0].Value)
		if !ok {
			continue
		}
		out = append(out, types.IndexSpec{Field: ix.Key[0].Key, Order: order, Name: ix.Name})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo: iterate indexes: %w", err)
	}
	return out, nil
}

func (d *database) CreateIndex(ctx context.Context, coll string, spec types.IndexSpec) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: spec.Field, Value: int32(spec.Order)}},
		Options: options.Index().SetName(spec.IndexName()),
	}
	if _, err := d.db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
		if hasCode(err, codeIndexOptionsConflict) || hasCode(err, codeIndexKeySpecsConflict) {
			return fmt.Errorf("mongo: index %s on %s.%s: %w", spec.IndexName(), d.db.Name(), coll, repository.ErrConflict)
		}
		return fmt.Errorf("mongo: create index %s on %s.%s: %w", spec.IndexName(), d.db.Name(), coll, err)
	}
	return nil
}

func (d *database) FindOne(ctx context.Context, coll string, filter types.Filter) (types.Document, error) {
	var raw bson.M
	err := d.db.Collection(coll).FindOne(ctx, toBSON(filter)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: find one %s.%s: %w", d.db.Name(), coll, err)
	}
	return fromBSON(raw), nil
}

// InsertMany hace un insert ordenado: ante un error, los documentos previos
// al primer write error quedan insertados.
func (d *database) InsertMany(ctx context.Context, coll string, docs []types.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	batch := make([]interface{}, len(docs))
	for i, doc := range docs {
		batch[i] = bson.M(doc)
	}
	res, err := d.db.Collection(coll).InsertMany(ctx, batch, options.InsertMany().SetOrdered(true))
	if err != nil {
		return insertedBefore(err), fmt.Errorf("mongo: insert many %s.%s: %w", d.db.Name(), coll, err)
	}
	return len(res.InsertedIDs), nil
}

func (d *database) Count(ctx context.Context, coll string) (int64, error) {
	n, err := d.db.Collection(coll).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("mongo: count %s.%s: %w", d.db.Name(), coll, err)
	}
	return n, nil
}

// ─── helpers ───

func hasCode(err error, code int) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(code)
}

// insertedBefore estima cuántos documentos entraron antes del primer write
// error. Sin write errors (ej: red caída) no se puede saber: retorna 0.
func insertedBefore(err error) int {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
		return 0
	}
	first := bwe.WriteErrors[0].Index
	for _, we := range bwe.WriteErrors[1:] {
		if we.Index < first {
			first = we.Index
		}
	}
	return first
}

func toOrder(v interface{}) (types.IndexOrder, bool) {
	var n float64
	switch x := v.(type) {
	case int32:
		n = float64(x)
	case int64:
		n = float64(x)
	case float64:
		n = x
	default:
		return 0, false
	}
	switch {
	case n > 0:
		return types.Ascending, true
	case n < 0:
		return types.Descending, true
	}
	return 0, false
}

func toBSON(f types.Filter) bson.M {
	out := bson.M{}
	for k, v := range f {
		out[k] = v
	}
	return out
}

func fromBSON(m bson.M) types.Document {
	out := make(types.Document, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case primitive.DateTime:
			out[k] = x.Time().UTC()
		case primitive.ObjectID:
			out[k] = x.Hex()
		default:
			out[k] = v
		}
	}
	return out
}
