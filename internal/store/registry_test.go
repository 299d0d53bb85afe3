package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialseed/internal/domain/repository"
)

type stubAdapter struct{ name string }

func (s stubAdapter) Name() string { return s.name }
func (s stubAdapter) Connect(ctx context.Context, cfg AdapterConfig) (Connection, error) {
	return stubConn{}, nil
}

type stubConn struct{}

func (stubConn) Name() string                        { return "stub" }
func (stubConn) Ping(context.Context) error          { return nil }
func (stubConn) Close() error                        { return nil }
func (stubConn) Documents() repository.DocumentStore { return nil }
func (stubConn) Users() repository.UserRepository    { return nil }

func TestRegistry(t *testing.T) {
	RegisterAdapter(stubAdapter{name: "stub-registry"})

	a, ok := GetAdapter("STUB-REGISTRY")
	require.True(t, ok)
	assert.Equal(t, "stub-registry", a.Name())
	assert.Contains(t, ListAdapters(), "stub-registry")

	conn, err := OpenAdapter(context.Background(), AdapterConfig{Name: "stub-registry"})
	require.NoError(t, err)

	_, err = DocumentsOf(conn)
	assert.ErrorIs(t, err, repository.ErrNotSupported)
	_, err = UsersOf(conn)
	assert.ErrorIs(t, err, repository.ErrNotSupported)

	_, err = OpenAdapter(context.Background(), AdapterConfig{Name: "nope"})
	assert.Error(t, err)
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "mongo", Canonical("MongoDB"))
	assert.Equal(t, "postgres", Canonical("pg"))
	assert.Equal(t, "postgres", Canonical("postgresql"))
	assert.Equal(t, "memory", Canonical("mem"))
	assert.Equal(t, "mongo", Canonical(" mongo "))
}
