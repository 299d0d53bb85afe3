package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/socialseed/internal/config"
	"github.com/dropDatabas3/socialseed/internal/domain/repository"
	"github.com/dropDatabas3/socialseed/internal/observability/logger"
	"github.com/dropDatabas3/socialseed/internal/security/password"
)

// Pasos del seed de admin.
const (
	StepEnsureUsers  = "ensure_users"
	StepLookupAdmin  = "lookup_admin"
	StepHashPassword = "hash_password"
	StepCreateAdmin  = "create_admin"
)

// AdminPlan credenciales del usuario admin a sembrar.
type AdminPlan struct {
	Username string
	Password string
	Hash     password.Algorithm
}

// AdminPlanFrom arma el plan desde la configuración.
func AdminPlanFrom(cfg *config.Config) AdminPlan {
	return AdminPlan{
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
		Hash:     password.Algorithm(cfg.Admin.Hash),
	}
}

// AdminConfig dependencias del seed de admin.
type AdminConfig struct {
	Users repository.UserRepository
	Plan  AdminPlan
}

// AdminResult resume el seed de admin.
type AdminResult struct {
	Username string     `yaml:"username"`
	UserID   int64      `yaml:"user_id,omitempty"`
	Created  bool       `yaml:"created"`
	Skipped  SkipReason `yaml:"skipped,omitempty"`
}

// SeedAdmin crea el usuario admin si no existe. Un username duplicado al
// crear (otro seeder ganó la carrera) se reporta como SkipExists.
func SeedAdmin(ctx context.Context, cfg AdminConfig) (res AdminResult, err error) {
	plan := cfg.Plan
	res.Username = plan.Username
	log := logger.From(ctx).With(logger.Target("admin"), logger.Username(plan.Username))

	defer func() { record("admin", res.Created, err, boolToInt(res.Created)) }()

	if cfg.Users == nil {
		return res, &StepError{Step: StepEnsureUsers, Err: repository.ErrNotSupported}
	}
	if plan.Username == "" {
		return res, &StepError{Step: StepLookupAdmin, Err: fmt.Errorf("%w: empty username", repository.ErrInvalidInput)}
	}

	if _, err := timed(StepEnsureUsers, func() (bool, error) {
		return true, cfg.Users.EnsureSchema(ctx)
	}); err != nil {
		return res, &StepError{Step: StepEnsureUsers, Err: err}
	}

	existing, err := cfg.Users.GetByUsername(ctx, plan.Username)
	switch {
	case err == nil:
		res.UserID = existing.ID
		res.Skipped = SkipExists
		log.Info("admin already exists, skipping")
		return res, nil
	case !repository.IsNotFound(err):
		return res, &StepError{Step: StepLookupAdmin, Err: err}
	}

	if weak := password.DefaultPolicy.Weaknesses(plan.Password); len(weak) > 0 {
		log.Warn("admin password does not meet policy", logger.Strings("reasons", weak))
	}
	hashed, err := timed(StepHashPassword, func() (string, error) {
		return password.Hash(plan.Hash, plan.Password)
	})
	if err != nil {
		return res, &StepError{Step: StepHashPassword, Err: err}
	}

	u := &repository.User{Username: plan.Username, HashedPassword: hashed}
	if _, err := timed(StepCreateAdmin, func() (bool, error) {
		return true, cfg.Users.Create(ctx, u)
	}); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			res.Skipped = SkipExists
			log.Info("admin created concurrently, skipping")
			return res, nil
		}
		return res, &StepError{Step: StepCreateAdmin, Err: err}
	}

	res.UserID = u.ID
	res.Created = true
	log.Info("admin created", logger.String("hash", string(orDefault(plan.Hash))))
	return res, nil
}

func orDefault(a password.Algorithm) password.Algorithm {
	if a == "" {
		return password.Bcrypt
	}
	return a
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
