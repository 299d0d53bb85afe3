package bootstrap_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialseed/internal/bootstrap"
	"github.com/dropDatabas3/socialseed/internal/config"
	"github.com/dropDatabas3/socialseed/internal/domain/repository"
	"github.com/dropDatabas3/socialseed/internal/security/password"
	"github.com/dropDatabas3/socialseed/internal/store/adapters/memory"
)

func TestSeedAdmin_CreatesOnce(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	cfg := bootstrap.AdminConfig{Users: st.Users(), Plan: bootstrap.AdminPlanFrom(config.Default())}

	res, err := bootstrap.SeedAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "admin", res.Username)
	assert.NotZero(t, res.UserID)

	u, err := st.Users().GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, password.Verify("secret", u.HashedPassword))
	assert.NotEqual(t, "secret", u.HashedPassword)

	res2, err := bootstrap.SeedAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, res2.Created)
	assert.Equal(t, bootstrap.SkipExists, res2.Skipped)
	assert.Equal(t, res.UserID, res2.UserID)
}

func TestSeedAdmin_Argon2id(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	plan := bootstrap.AdminPlan{Username: "root", Password: "Sup3rSecretPass", Hash: password.Argon2id}

	_, err := bootstrap.SeedAdmin(ctx, bootstrap.AdminConfig{Users: st.Users(), Plan: plan})
	require.NoError(t, err)

	u, err := st.Users().GetByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Contains(t, u.HashedPassword, "$argon2id$")
	assert.True(t, password.Verify("Sup3rSecretPass", u.HashedPassword))
}

// conflictUsers simula un seeder concurrente que crea el usuario entre el
// lookup y el insert.
type conflictUsers struct{ repository.UserRepository }

func (conflictUsers) GetByUsername(context.Context, string) (*repository.User, error) {
	return nil, repository.ErrNotFound
}

func (conflictUsers) Create(context.Context, *repository.User) error {
	return repository.ErrConflict
}

func TestSeedAdmin_ConflictOnCreateIsExists(t *testing.T) {
	users := conflictUsers{memory.New().Users()}

	res, err := bootstrap.SeedAdmin(context.Background(), bootstrap.AdminConfig{
		Users: users,
		Plan:  bootstrap.AdminPlan{Username: "admin", Password: "secret"},
	})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, bootstrap.SkipExists, res.Skipped)
}

type failingUsers struct {
	repository.UserRepository
	err error
}

func (f failingUsers) EnsureSchema(context.Context) error { return f.err }

func TestSeedAdmin_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := bootstrap.SeedAdmin(ctx, bootstrap.AdminConfig{Plan: bootstrap.AdminPlan{Username: "admin", Password: "x"}})
	assert.ErrorIs(t, err, repository.ErrNotSupported)

	_, err = bootstrap.SeedAdmin(ctx, bootstrap.AdminConfig{Users: memory.New().Users(), Plan: bootstrap.AdminPlan{Password: "x"}})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	boom := errors.New("relation lock timeout")
	_, err = bootstrap.SeedAdmin(ctx, bootstrap.AdminConfig{
		Users: failingUsers{UserRepository: memory.New().Users(), err: boom},
		Plan:  bootstrap.AdminPlan{Username: "admin", Password: "x"},
	})
	var se *bootstrap.StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, bootstrap.StepEnsureUsers, se.Step)
	assert.ErrorIs(t, err, boom)

	_, err = bootstrap.SeedAdmin(ctx, bootstrap.AdminConfig{
		Users: memory.New().Users(),
		Plan:  bootstrap.AdminPlan{Username: "admin", Password: ""},
	})
	require.ErrorAs(t, err, &se)
	assert.Equal(t, bootstrap.StepHashPassword, se.Step)
	assert.ErrorIs(t, err, password.ErrEmpty)
}
