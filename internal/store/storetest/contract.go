// Package storetest tiene la suite de contrato que todo adapter de
// repository.DocumentStore / UserRepository debe pasar.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialseed/internal/domain/repository"
	"github.com/dropDatabas3/socialseed/internal/domain/types"
)

// Documents corre el contrato sobre una base vacía. dbName debe ser único
// por corrida para no chocar con datos previos en servidores reales.
func Documents(t *testing.T, ds repository.DocumentStore, dbName string) {
	t.Helper()
	ctx := context.Background()
	db := ds.Database(dbName)
	const coll = "messages"

	t.Run("missing collection", func(t *testing.T) {
		ok, err := db.HasCollection(ctx, coll)
		require.NoError(t, err)
		assert.False(t, ok)

		n, err := db.Count(ctx, coll)
		require.NoError(t, err)
		assert.Zero(t, n)

		_, err = db.FindOne(ctx, coll, nil)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("create collection", func(t *testing.T) {
		require.NoError(t, db.CreateCollection(ctx, coll))
		ok, err := db.HasCollection(ctx, coll)
		require.NoError(t, err)
		assert.True(t, ok)

		err = db.CreateCollection(ctx, coll)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	spec := types.IndexSpec{Field: types.FieldRecipient, Order: types.Ascending}
	t.Run("create index", func(t *testing.T) {
		idx, err := db.Indexes(ctx, coll)
		require.NoError(t, err)
		assert.Empty(t, idx)

		require.NoError(t, db.CreateIndex(ctx, coll, spec))
		idx, err = db.Indexes(ctx, coll)
		require.NoError(t, err)
		require.Len(t, idx, 1)
		assert.True(t, idx[0].SameKeys(spec))
		assert.Equal(t, "recipient_1", idx[0].IndexName())

		// mismo nombre, otros keys
		err = db.CreateIndex(ctx, coll, types.IndexSpec{Field: types.FieldSender, Order: types.Ascending, Name: "recipient_1"})
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("insert and find", func(t *testing.T) {
		at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
		docs := []types.Document{
			types.Message{Sender: "admin", Recipient: "admin", Message: "uno", Timestamp: at}.Document(),
			types.Message{Sender: "bob", Recipient: "alice", Message: "dos", Timestamp: at}.Document(),
		}
		n, err := db.InsertMany(ctx, coll, docs)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		cnt, err := db.Count(ctx, coll)
		require.NoError(t, err)
		assert.Equal(t, int64(2), cnt)

		got, err := db.FindOne(ctx, coll, types.Filter{types.FieldRecipient: "alice"})
		require.NoError(t, err)
		m := types.MessageFromDocument(got)
		assert.Equal(t, "bob", m.Sender)
		assert.Equal(t, "dos", m.Message)
		assert.True(t, at.Equal(m.Timestamp), "timestamp %v", m.Timestamp)

		_, err = db.FindOne(ctx, coll, types.Filter{types.FieldRecipient: "nobody"})
		assert.ErrorIs(t, err, repository.ErrNotFound)

		_, err = db.FindOne(ctx, coll, nil)
		assert.NoError(t, err)
	})
}

// Users corre el contrato de UserRepository.
func Users(t *testing.T, users repository.UserRepository, username string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, users.EnsureSchema(ctx))
	require.NoError(t, users.EnsureSchema(ctx))

	_, err := users.GetByUsername(ctx, username)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	u := &repository.User{Username: username, HashedPassword: "$2b$04$x"}
	require.NoError(t, users.Create(ctx, u))
	assert.NotZero(t, u.ID)

	got, err := users.GetByUsername(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "$2b$04$x", got.HashedPassword)

	err = users.Create(ctx, &repository.User{Username: username, HashedPassword: "y"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}
