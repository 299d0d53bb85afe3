package bootstrap_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialseed/internal/bootstrap"
	"github.com/dropDatabas3/socialseed/internal/config"
	"github.com/dropDatabas3/socialseed/internal/domain/repository"
	"github.com/dropDatabas3/socialseed/internal/domain/types"
	"github.com/dropDatabas3/socialseed/internal/lock"
	"github.com/dropDatabas3/socialseed/internal/store/adapters/memory"
)

var base = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

// tickClock avanza un segundo por llamada.
func tickClock() bootstrap.Clock {
	n := 0
	return func() time.Time {
		t := base.Add(time.Duration(n) * time.Second)
		n++
		return t
	}
}

func defaultPlan() bootstrap.MessagesPlan {
	return bootstrap.MessagesPlanFrom(config.Default())
}

func seed(t *testing.T, st *memory.Store, opts ...func(*bootstrap.MessagesConfig)) (bootstrap.MessagesResult, error) {
	t.Helper()
	cfg := bootstrap.MessagesConfig{Store: st, Plan: defaultPlan(), Clock: tickClock()}
	for _, o := range opts {
		o(&cfg)
	}
	return bootstrap.SeedMessages(context.Background(), cfg)
}

func TestSeedMessages_EmptyStore(t *testing.T) {
	st := memory.New()

	res, err := seed(t, st)
	require.NoError(t, err)

	assert.True(t, res.CollectionCreated)
	assert.True(t, res.IndexCreated)
	assert.True(t, res.Seeded)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, bootstrap.SkipNone, res.Skipped)

	docs := st.Snapshot("messages_db", "messages")
	require.Len(t, docs, 3)

	want := []string{"tralalelo tralala", "lirili larila", "fruli frula"}
	for i, d := range docs {
		m := types.MessageFromDocument(d)
		assert.Equal(t, "admin", m.Sender)
		assert.Equal(t, "admin", m.Recipient)
		assert.Equal(t, want[i], m.Message)
		// StartedAt consume la primera lectura del reloj
		assert.Equal(t, base.Add(time.Duration(i+1)*time.Second), m.Timestamp)
		assert.False(t, m.Timestamp.Before(res.StartedAt))
	}
}

func TestSeedMessages_SnapshotTimestamps(t *testing.T) {
	st := memory.New()
	plan := defaultPlan()
	plan.Timestamps = types.TimestampSnapshot

	_, err := seed(t, st, func(c *bootstrap.MessagesConfig) { c.Plan = plan })
	require.NoError(t, err)

	docs := st.Snapshot("messages_db", "messages")
	require.Len(t, docs, 3)
	for _, d := range docs {
		assert.Equal(t, base.Add(time.Second), types.MessageFromDocument(d).Timestamp)
	}
}

func TestSeedMessages_RealClockTimestampsAfterStart(t *testing.T) {
	st := memory.New()
	before := time.Now().UTC().Truncate(time.Millisecond)

	res, err := seed(t, st, func(c *bootstrap.MessagesConfig) { c.Clock = nil })
	require.NoError(t, err)

	for _, d := range st.Snapshot("messages_db", "messages") {
		ts := types.MessageFromDocument(d).Timestamp
		assert.False(t, ts.Before(before))
		assert.False(t, ts.Before(res.StartedAt))
		assert.True(t, ts.Equal(ts.Truncate(time.Millisecond)), "timestamp con precisión sub-ms: %v", ts)
	}
	assert.True(t, res.StartedAt.Equal(res.StartedAt.Truncate(time.Millisecond)))
}

func TestSeedMessages_SequentialRunsAreIdempotent(t *testing.T) {
	st := memory.New()

	_, err := seed(t, st)
	require.NoError(t, err)
	first := st.Snapshot("messages_db", "messages")

	res, err := seed(t, st)
	require.NoError(t, err)
	assert.False(t, res.CollectionCreated)
	assert.False(t, res.IndexCreated)
	assert.False(t, res.Seeded)
	assert.Equal(t, bootstrap.SkipNotEmpty, res.Skipped)

	assert.Equal(t, first, st.Snapshot("messages_db", "messages"))

	idx, err := st.Database("messages_db").Indexes(context.Background(), "messages")
	require.NoError(t, err)
	assert.Equal(t, []types.IndexSpec{{Field: "recipient", Order: types.Ascending, Name: "recipient_1"}}, idx)
}

func TestSeedMessages_NonEmptyTargetUntouched(t *testing.T) {
	st := memory.New()
	st.Seed("messages_db", "messages", types.Document{"sender": "bob", "recipient": "alice", "message": "hi"})

	res, err := seed(t, st)
	require.NoError(t, err)
	assert.False(t, res.CollectionCreated)
	assert.True(t, res.IndexCreated)
	assert.Equal(t, bootstrap.SkipNotEmpty, res.Skipped)
	assert.Equal(t, 0, res.Inserted)

	docs := st.Snapshot("messages_db", "messages")
	require.Len(t, docs, 1)
	assert.Equal(t, "bob", docs[0]["sender"])
}

func TestSeedMessages_ExistingEquivalentIndexUnderOtherName(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	db := st.Database("messages_db")
	require.NoError(t, db.CreateCollection(ctx, "messages"))
	require.NoError(t, db.CreateIndex(ctx, "messages", types.IndexSpec{Field: "recipient", Order: types.Ascending, Name: "by_recipient"}))

	res, err := seed(t, st)
	require.NoError(t, err)
	assert.False(t, res.IndexCreated)

	idx, err := db.Indexes(ctx, "messages")
	require.NoError(t, err)
	assert.Len(t, idx, 1)
}

func TestSeedMessages_IndexNameClashSurfaces(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	db := st.Database("messages_db")
	require.NoError(t, db.CreateIndex(ctx, "messages", types.IndexSpec{Field: "sender", Order: types.Ascending, Name: "recipient_1"}))

	_, err := seed(t, st)
	require.Error(t, err)

	var se *bootstrap.StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, bootstrap.StepEnsureIndex, se.Step)
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Empty(t, st.Snapshot("messages_db", "messages"))
}

func TestSeedMessages_CollectionConflictIsSuccess(t *testing.T) {
	// El store reporta "no existe" pero el create choca: otro proceso la creó.
	st := memory.New(memory.WithFailure("create_collection", repository.ErrConflict))

	res, err := seed(t, st)
	require.NoError(t, err)
	assert.False(t, res.CollectionCreated)
	assert.True(t, res.Seeded)
	assert.Len(t, st.Snapshot("messages_db", "messages"), 3)
}

func TestSeedMessages_StepFailuresStopTheRun(t *testing.T) {
	boom := errors.New("connection reset")
	cases := []struct {
		op   string
		step string
	}{
		{"has_collection", bootstrap.StepEnsureCollection},
		{"create_collection", bootstrap.StepEnsureCollection},
		{"indexes", bootstrap.StepEnsureIndex},
		{"create_index", bootstrap.StepEnsureIndex},
		{"find_one", bootstrap.StepCheckEmpty},
	}
	for _, tc := range cases {
		t.Run(tc.op, func(t *testing.T) {
			st := memory.New(memory.WithFailure(tc.op, boom))

			res, err := seed(t, st)
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)

			var se *bootstrap.StepError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.step, se.Step)
			assert.False(t, res.Seeded)
			assert.Empty(t, st.Snapshot("messages_db", "messages"))
		})
	}
}

func TestSeedMessages_PartialInsertIsNotRolledBack(t *testing.T) {
	boom := errors.New("write concern timeout")
	st := memory.New(memory.WithInsertFault(1, boom))

	res, err := seed(t, st)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var se *bootstrap.StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, bootstrap.StepInsertSeeds, se.Step)
	assert.Equal(t, 1, res.Inserted)
	assert.False(t, res.Seeded)

	docs := st.Snapshot("messages_db", "messages")
	require.Len(t, docs, 1)
	assert.Equal(t, "tralalelo tralala", docs[0]["message"])
}

func TestSeedMessages_CustomPlan(t *testing.T) {
	st := memory.New()
	plan := bootstrap.MessagesPlan{
		Database:   "chat",
		Collection: "inbox",
		Index:      types.IndexSpec{Field: "sender", Order: types.Descending},
		Records:    []types.Message{{Sender: "a", Recipient: "b", Message: "hola"}},
	}

	res, err := seed(t, st, func(c *bootstrap.MessagesConfig) { c.Plan = plan })
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Len(t, st.Snapshot("chat", "inbox"), 1)

	idx, err := st.Database("chat").Indexes(context.Background(), "inbox")
	require.NoError(t, err)
	require.Len(t, idx, 1)
	assert.Equal(t, "sender_-1", idx[0].IndexName())
}

func TestSeedMessages_NilStore(t *testing.T) {
	_, err := bootstrap.SeedMessages(context.Background(), bootstrap.MessagesConfig{Plan: defaultPlan()})
	var se *bootstrap.StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, bootstrap.StepSelectDatabase, se.Step)
}

// Sin guard, una segunda corrida que se cuela entre el check y el insert
// también ve la colección vacía: el lote queda duplicado.
func TestSeedMessages_ConcurrentRunsWithoutGuardDuplicate(t *testing.T) {
	var st *memory.Store
	fired := false
	var nested bootstrap.MessagesResult
	var nestedErr error
	st = memory.New(memory.WithBeforeInsert(func() {
		if fired {
			return
		}
		fired = true
		nested, nestedErr = seed(t, st)
	}))

	res, err := seed(t, st)
	require.NoError(t, err)
	require.NoError(t, nestedErr)

	assert.True(t, res.Seeded)
	assert.True(t, nested.Seeded)
	assert.Len(t, st.Snapshot("messages_db", "messages"), 6)
}

func TestSeedMessages_GuardSerializesCheckThenInsert(t *testing.T) {
	locker := lock.NewMemory("test:")
	defer locker.Close()

	withGuard := func(c *bootstrap.MessagesConfig) {
		c.Locker = locker
		c.LockTTL = time.Minute
	}

	var st *memory.Store
	fired := false
	var nested bootstrap.MessagesResult
	var nestedErr error
	st = memory.New(memory.WithBeforeInsert(func() {
		if fired {
			return
		}
		fired = true
		nested, nestedErr = seed(t, st, withGuard)
	}))

	res, err := seed(t, st, withGuard)
	require.NoError(t, err)
	require.NoError(t, nestedErr)

	assert.True(t, res.Seeded)
	assert.Equal(t, bootstrap.SkipLocked, nested.Skipped)
	assert.Len(t, st.Snapshot("messages_db", "messages"), 3)

	// El guard se libera al terminar: la corrida siguiente ve la colección llena.
	res, err = seed(t, st, withGuard)
	require.NoError(t, err)
	assert.Equal(t, bootstrap.SkipNotEmpty, res.Skipped)
}

func TestMessagesPlan_GuardKey(t *testing.T) {
	assert.Equal(t, "seed:messages_db.messages", defaultPlan().GuardKey())
}
