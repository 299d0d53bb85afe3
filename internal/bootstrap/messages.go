package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/socialseed/internal/config"
	"github.com/dropDatabas3/socialseed/internal/domain/repository"
	"github.com/dropDatabas3/socialseed/internal/domain/types"
	"github.com/dropDatabas3/socialseed/internal/lock"
	"github.com/dropDatabas3/socialseed/internal/metrics"
	"github.com/dropDatabas3/socialseed/internal/observability/logger"
)

// Pasos del seed de mensajes, en orden.
const (
	StepSelectDatabase   = "select_database"
	StepEnsureCollection = "ensure_collection"
	StepEnsureIndex      = "ensure_index"
	StepAcquireGuard     = "acquire_guard"
	StepCheckEmpty       = "check_empty"
	StepInsertSeeds      = "insert_seeds"
)

// SkipReason explica por qué un seed no insertó nada.
type SkipReason string

const (
	SkipNone     SkipReason = ""
	SkipNotEmpty SkipReason = "not_empty" // la colección ya tenía documentos
	SkipLocked   SkipReason = "locked"    // otro seeder tiene el guard
	SkipExists   SkipReason = "exists"    // el usuario admin ya existe
)

// StepError indica en qué paso falló el seed. Unwrap llega al error del driver.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("seed %s: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

// Clock retorna el instante actual. nil ⇒ time.Now() en UTC truncado a
// milisegundos, la precisión de BSON DateTime: lo que se lee de vuelta del
// store nunca queda antes de StartedAt.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC().Truncate(time.Millisecond)
	}
	return c()
}

// MessagesPlan son los literales del seed: base, colección, índice y registros.
type MessagesPlan struct {
	Database   string
	Collection string
	Index      types.IndexSpec
	Records    []types.Message
	Timestamps types.TimestampMode
}

// MessagesPlanFrom arma el plan desde la configuración.
func MessagesPlanFrom(cfg *config.Config) MessagesPlan {
	return MessagesPlan{
		Database:   cfg.Messages.Database,
		Collection: cfg.Messages.Collection,
		Index:      cfg.Messages.Index,
		Records:    append([]types.Message(nil), cfg.Messages.Seeds...),
		Timestamps: cfg.Messages.Timestamps,
	}
}

// GuardKey es la key del lock que serializa check-then-insert para el plan.
func (p MessagesPlan) GuardKey() string {
	return "seed:" + p.Database + "." + p.Collection
}

// MessagesConfig dependencias del seed de mensajes.
type MessagesConfig struct {
	Store repository.DocumentStore
	Plan  MessagesPlan
	Clock Clock

	// Locker opcional. nil ⇒ check-then-insert sin guard: dos corridas
	// concurrentes sobre una colección vacía pueden insertar el lote dos veces.
	Locker  lock.Locker
	LockTTL time.Duration
}

// MessagesResult resume lo que hizo una corrida.
type MessagesResult struct {
	Database          string          `yaml:"database"`
	Collection        string          `yaml:"collection"`
	Index             types.IndexSpec `yaml:"index"`
	CollectionCreated bool            `yaml:"collection_created"`
	IndexCreated      bool            `yaml:"index_created"`
	Seeded            bool            `yaml:"seeded"`
	Inserted          int             `yaml:"inserted"`
	Skipped           SkipReason      `yaml:"skipped,omitempty"`
	StartedAt         time.Time       `yaml:"started_at"`
	FinishedAt        time.Time       `yaml:"finished_at"`
}

// SeedMessages asegura colección + índice y siembra los registros del plan
// si y sólo si la colección está vacía. Es idempotente para corridas
// secuenciales. Ante un error corta en el paso que falló, sin rollback:
// lo ya creado/insertado queda persistido (ver MessagesResult.Inserted).
func SeedMessages(ctx context.Context, cfg MessagesConfig) (res MessagesResult, err error) {
	plan := cfg.Plan
	res = MessagesResult{
		Database:   plan.Database,
		Collection: plan.Collection,
		Index:      plan.Index,
		StartedAt:  cfg.Clock.now(),
	}
	log := logger.From(ctx).With(
		logger.Target("messages"),
		logger.Database(plan.Database),
		logger.Collection(plan.Collection),
	)

	defer func() {
		res.FinishedAt = cfg.Clock.now()
		record("messages", res.Seeded, err, res.Inserted)
	}()

	// 1) Seleccionar base (lazy: no falla si no existe)
	if cfg.Store == nil {
		return res, &StepError{Step: StepSelectDatabase, Err: errors.New("no document store configured")}
	}
	db := cfg.Store.Database(plan.Database)

	// 2) Colección
	created, err := timed(StepEnsureCollection, func() (bool, error) {
		return ensureCollection(ctx, db, plan.Collection)
	})
	if err != nil {
		return res, &StepError{Step: StepEnsureCollection, Err: err}
	}
	res.CollectionCreated = created
	log.Debug("collection ready", logger.Step(StepEnsureCollection), logger.Bool("created", created))

	// 3) Índice
	created, err = timed(StepEnsureIndex, func() (bool, error) {
		return ensureIndex(ctx, db, plan.Collection, plan.Index)
	})
	if err != nil {
		return res, &StepError{Step: StepEnsureIndex, Err: err}
	}
	res.IndexCreated = created
	log.Debug("index ready", logger.Step(StepEnsureIndex), logger.Index(plan.Index.IndexName()), logger.Bool("created", created))

	// Guard opcional alrededor de 4) + 5)
	if cfg.Locker != nil {
		key := plan.GuardKey()
		token, ok, lerr := cfg.Locker.TryLock(ctx, key, cfg.LockTTL)
		if lerr != nil {
			return res, &StepError{Step: StepAcquireGuard, Err: lerr}
		}
		if !ok {
			res.Skipped = SkipLocked
			log.Info("seed skipped: guard held by another run", logger.String("guard", key))
			return res, nil
		}
		defer func() {
			// El ctx puede estar cancelado; el unlock igual debe intentarse.
			uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if uerr := cfg.Locker.Unlock(uctx, key, token); uerr != nil {
				log.Warn("guard release failed", logger.String("guard", key), logger.Err(uerr))
			}
		}()
	}

	// 4) Check de vacío (point-in-time, sin aislamiento)
	empty, err := timed(StepCheckEmpty, func() (bool, error) {
		_, ferr := db.FindOne(ctx, plan.Collection, nil)
		if repository.IsNotFound(ferr) {
			return true, nil
		}
		return false, ferr
	})
	if err != nil {
		return res, &StepError{Step: StepCheckEmpty, Err: err}
	}
	if !empty {
		res.Skipped = SkipNotEmpty
		log.Info("seed skipped: collection not empty")
		return res, nil
	}

	// 5) Insert condicional
	docs := buildDocuments(plan, cfg.Clock)
	_, err = timed(StepInsertSeeds, func() (bool, error) {
		n, ierr := db.InsertMany(ctx, plan.Collection, docs)
		res.Inserted = n
		return n > 0, ierr
	})
	if err != nil {
		log.Error("seed insert failed; partial inserts are not rolled back",
			logger.Count(res.Inserted), logger.Err(err))
		return res, &StepError{Step: StepInsertSeeds, Err: err}
	}
	res.Seeded = true
	log.Info("seed inserted", logger.Count(res.Inserted))
	return res, nil
}

// ensureCollection hace check explícito + create. Un conflicto en el create
// (otro proceso la creó entre medio) cuenta como éxito.
func ensureCollection(ctx context.Context, db repository.DocumentDatabase, coll string) (bool, error) {
	exists, err := db.HasCollection(ctx, coll)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := db.CreateCollection(ctx, coll); err != nil {
		if repository.IsConflict(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ensureIndex busca un índice con los mismos keys (el nombre no importa).
// Si el create da conflicto se vuelve a listar: sólo es éxito si ahora existe
// un índice equivalente; si no, el conflicto es por nombre y se propaga.
func ensureIndex(ctx context.Context, db repository.DocumentDatabase, coll string, spec types.IndexSpec) (bool, error) {
	present, err := hasIndex(ctx, db, coll, spec)
	if err != nil || present {
		return false, err
	}
	cerr := db.CreateIndex(ctx, coll, spec)
	if cerr == nil {
		return true, nil
	}
	if !repository.IsConflict(cerr) {
		return false, cerr
	}
	present, err = hasIndex(ctx, db, coll, spec)
	if err != nil {
		return false, err
	}
	if !present {
		return false, cerr
	}
	return false, nil
}

func hasIndex(ctx context.Context, db repository.DocumentDatabase, coll string, spec types.IndexSpec) (bool, error) {
	indexes, err := db.Indexes(ctx, coll)
	if err != nil {
		return false, err
	}
	for _, ix := range indexes {
		if ix.SameKeys(spec) {
			return true, nil
		}
	}
	return false, nil
}

func buildDocuments(plan MessagesPlan, clock Clock) []types.Document {
	var snapshot time.Time
	if plan.Timestamps == types.TimestampSnapshot {
		snapshot = clock.now()
	}
	docs := make([]types.Document, len(plan.Records))
	for i, rec := range plan.Records {
		if plan.Timestamps == types.TimestampSnapshot {
			rec.Timestamp = snapshot
		} else {
			rec.Timestamp = clock.now()
		}
		docs[i] = rec.Document()
	}
	return docs
}

func timed[T any](step string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	metrics.SeedStepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	return v, err
}

func record(target string, seeded bool, err error, inserted int) {
	outcome := metrics.OutcomeSkipped
	switch {
	case err != nil:
		outcome = metrics.OutcomeFailed
	case seeded:
		outcome = metrics.OutcomeSeeded
	}
	metrics.SeedRuns.WithLabelValues(target, outcome).Inc()
	if inserted > 0 {
		metrics.SeedDocumentsInserted.WithLabelValues(target).Add(float64(inserted))
	}
	metrics.SeedLastRunTimestamp.WithLabelValues(target).SetToCurrentTime()
}
